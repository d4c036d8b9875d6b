package merge

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/mergix/internal/prompt"
	"github.com/temirov/mergix/internal/utils"
)

const (
	resolveCommandUseConstant              = "resolve <file>"
	resolveCommandShortDescriptionConstant = "Resolve the conflict markers in one working tree file"
	resolveCommandLongDescriptionConstant  = "resolve rewrites a file that contains conflict markers, asking for each region or applying a fixed strategy, and optionally stages the result."
	stageFlagNameConstant                  = "stage"
	stageFlagUsageConstant                 = "Stage the file after resolving it"
	resolveArgumentMessageConstant         = "resolve requires exactly one file path"
	resolvedWrittenMessageTemplateConstant = "Resolved conflicts in %s"
	stagedMessageTemplateConstant          = "Staged %s"
	resolveCommandErrorTemplateConstant    = "unable to resolve %s: %w"
	fileResolvedLogMessageConstant         = "file resolved"
	logFieldStagedConstant                 = "staged"
)

// ErrResolveArgument indicates that resolve did not receive exactly one file path.
var ErrResolveArgument = errors.New(resolveArgumentMessageConstant)

// ResolveCommandBuilder assembles the resolve command.
type ResolveCommandBuilder struct {
	CommandDependencies
}

// Build constructs the resolve command.
func (builder *ResolveCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   resolveCommandUseConstant,
		Short: resolveCommandShortDescriptionConstant,
		Long:  resolveCommandLongDescriptionConstant,
		Args: func(command *cobra.Command, arguments []string) error {
			if len(arguments) != 1 || len(strings.TrimSpace(arguments[0])) == 0 {
				return ErrResolveArgument
			}
			return nil
		},
		RunE: builder.run,
	}

	command.Flags().Bool(aiFlagNameConstant, false, aiFlagUsageConstant)
	command.Flags().String(strategyFlagNameConstant, "", strategyFlagUsageConstant)
	command.Flags().Bool(stageFlagNameConstant, false, stageFlagUsageConstant)

	return command, nil
}

func (builder *ResolveCommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()
	resolution, resolutionError := parseResolutionFlags(command, configuration)
	if resolutionError != nil {
		return resolutionError
	}
	stage, _ := command.Flags().GetBool(stageFlagNameConstant)

	logger := builder.resolveLogger()
	executionContext := command.Context()
	repositoryPath := utils.NewCommandContextAccessor().RepositoryPath(executionContext)
	filePath := strings.TrimSpace(arguments[0])
	absolutePath := filePath
	if !filepath.IsAbs(absolutePath) {
		absolutePath = filepath.Join(repositoryPath, filePath)
	}

	fileSystem := builder.FileSystem
	if fileSystem == nil {
		fileSystem = OSFileSystem{}
	}

	contentBytes, readError := fileSystem.ReadFile(absolutePath)
	if readError != nil {
		return fmt.Errorf(resolveCommandErrorTemplateConstant, filePath, readError)
	}

	console := prompt.NewConsole(command.InOrStdin(), command.OutOrStdout())
	var aiResolver AIConflictResolver
	if resolution.UseAI {
		aiResolver = builder.resolveAIResolver(executionContext, logger)
	}
	if aiResolver == nil && aiFlagRequested(command, resolution) {
		aiResolver = builder.promptedAIResolver(executionContext, console, logger)
	}

	fileResolver := NewFileResolver(logger, aiResolver, interactiveResolverFactory(console), console.Writer())
	resolved, resolveError := fileResolver.ResolveFile(executionContext, filePath, string(contentBytes), resolution)
	if resolveError != nil {
		return resolveError
	}

	if resolved != string(contentBytes) {
		permissions := filePermissions(fileSystem, absolutePath)
		if writeError := fileSystem.WriteFile(absolutePath, []byte(resolved), permissions); writeError != nil {
			return fmt.Errorf(resolveCommandErrorTemplateConstant, filePath, writeError)
		}
		if printError := console.Println(fmt.Sprintf(resolvedWrittenMessageTemplateConstant, filePath)); printError != nil {
			return printError
		}
	}

	if stage {
		gitManager, managerError := builder.resolveGitManager(logger)
		if managerError != nil {
			return managerError
		}
		if stageError := gitManager.StageFile(executionContext, repositoryPath, filePath); stageError != nil {
			return fmt.Errorf(resolveCommandErrorTemplateConstant, filePath, stageError)
		}
		if printError := console.Println(fmt.Sprintf(stagedMessageTemplateConstant, filePath)); printError != nil {
			return printError
		}
	}

	logger.Info(fileResolvedLogMessageConstant, zap.String(logFieldFilePathConstant, filePath), zap.Bool(logFieldStagedConstant, stage))
	return nil
}
