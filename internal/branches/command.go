package branches

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/mergix/internal/dependencies"
	"github.com/temirov/mergix/internal/execshell"
	"github.com/temirov/mergix/internal/prompt"
	"github.com/temirov/mergix/internal/utils"
)

const (
	commandUseConstant               = "branches"
	commandShortDescriptionConstant  = "List local branches with the numbers used by interactive selection"
	currentMarkerConstant            = "*"
	otherMarkerConstant              = " "
	branchLineTemplateConstant       = "%s %d. %s"
	noBranchesMessageConstant        = "No local branches found."
	branchesListedLogMessageConstant = "branches listed"
	logFieldCountConstant            = "count"
	logFieldCurrentBranchConstant    = "current_branch"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// BranchLister exposes the repository queries the listing needs.
type BranchLister interface {
	GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error)
	ListBranches(executionContext context.Context, repositoryPath string) ([]string, error)
}

// CommandBuilder assembles the branches command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	GitExecutor                  execshell.GitExecutor
	BranchLister                 BranchLister
}

// Build constructs the branches command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}
	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	logger := builder.resolveLogger()
	lister, listerError := builder.resolveBranchLister(logger)
	if listerError != nil {
		return listerError
	}

	executionContext := command.Context()
	repositoryPath := utils.NewCommandContextAccessor().RepositoryPath(executionContext)

	branchNames, listError := lister.ListBranches(executionContext, repositoryPath)
	if listError != nil {
		return listError
	}
	console := prompt.NewConsole(command.InOrStdin(), command.OutOrStdout())
	if len(branchNames) == 0 {
		return console.Println(noBranchesMessageConstant)
	}

	// A detached HEAD has no current branch; the listing still works.
	currentBranch, currentError := lister.GetCurrentBranch(executionContext, repositoryPath)
	if currentError != nil {
		currentBranch = ""
	}

	lines := make([]string, 0, len(branchNames))
	for branchIndex, branchName := range branchNames {
		marker := otherMarkerConstant
		line := fmt.Sprintf(branchLineTemplateConstant, marker, branchIndex+1, branchName)
		if branchName == currentBranch {
			line = console.Styles().Ours.Render(fmt.Sprintf(branchLineTemplateConstant, currentMarkerConstant, branchIndex+1, branchName))
		}
		lines = append(lines, line)
	}

	logger.Debug(branchesListedLogMessageConstant, zap.Int(logFieldCountConstant, len(branchNames)), zap.String(logFieldCurrentBranchConstant, currentBranch))
	return console.Println(strings.Join(lines, "\n"))
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

func (builder *CommandBuilder) resolveBranchLister(logger *zap.Logger) (BranchLister, error) {
	if builder.BranchLister != nil {
		return builder.BranchLister, nil
	}

	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}

	gitExecutor, executorError := dependencies.ResolveGitExecutor(builder.GitExecutor, logger, humanReadableLogging)
	if executorError != nil {
		return nil, executorError
	}
	return dependencies.ResolveRepositoryManager(gitExecutor)
}
