package merge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/mergix/internal/conflicts"
	"github.com/temirov/mergix/internal/dependencies"
	"github.com/temirov/mergix/internal/execshell"
	"github.com/temirov/mergix/internal/prompt"
	"github.com/temirov/mergix/internal/utils"
)

const (
	mergeCommandUseConstant              = "merge-multi [branches...]"
	mergeCommandShortDescriptionConstant = "Merge several branches into a new temporary branch"
	mergeCommandLongDescriptionConstant  = "merge-multi creates a temporary branch from the base branch and merges each listed branch into it, resolving conflicts manually, with a fixed strategy, or with Gemini. Without branch arguments it asks which branches to merge."
	baseFlagNameConstant                 = "base"
	baseFlagShorthandConstant            = "b"
	baseFlagUsageConstant                = "Base branch to merge into (default: current branch)"
	aiFlagNameConstant                   = "ai"
	aiFlagUsageConstant                  = "Use AI to resolve conflicts before falling back to manual resolution"
	strategyFlagNameConstant             = "strategy"
	strategyFlagUsageConstant            = "Resolve every conflict region without prompting: ours, theirs, or both"
	yesFlagNameConstant                  = "yes"
	yesFlagUsageConstant                 = "Skip the confirmation in interactive branch selection"
	mergeUnsuccessfulMessageConstant     = "merge did not complete for every branch"
	aiUnavailableLogMessageConstant      = "ai conflict resolver unavailable"
	aiKeyNotProvidedLogMessageConstant   = "gemini api key not provided"
	geminiKeyPromptConstant              = "Enter your Gemini API Key: "
	mergeCommandErrorTemplateConstant    = "multi-branch merge failed: %w"
)

// ErrMergeUnsuccessful indicates that at least one branch could not be merged; the summary has details.
var ErrMergeUnsuccessful = errors.New(mergeUnsuccessfulMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the merge configuration.
type ConfigurationProvider func() Configuration

// AIResolverProvider returns the AI conflict resolver. A nil resolver with a nil error means no API key is available.
type AIResolverProvider func(executionContext context.Context) (AIConflictResolver, error)

// KeyedAIResolverProvider builds the AI conflict resolver from an API key entered at the prompt.
type KeyedAIResolverProvider func(executionContext context.Context, apiKey string) (AIConflictResolver, error)

// CommandDependencies lists the collaborators shared by merge-multi and resolve.
type CommandDependencies struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        ConfigurationProvider
	AIResolverProvider           AIResolverProvider
	KeyedAIResolverProvider      KeyedAIResolverProvider
	GitExecutor                  execshell.GitExecutor
	GitManager                   GitRepositoryManager
	FileSystem                   FileSystem
}

// CommandBuilder assembles the merge-multi command.
type CommandBuilder struct {
	CommandDependencies
	ProcessIdentifier ProcessIdentifier
}

// Build constructs the merge-multi command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   mergeCommandUseConstant,
		Short: mergeCommandShortDescriptionConstant,
		Long:  mergeCommandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().StringP(baseFlagNameConstant, baseFlagShorthandConstant, "", baseFlagUsageConstant)
	command.Flags().Bool(aiFlagNameConstant, false, aiFlagUsageConstant)
	command.Flags().String(strategyFlagNameConstant, "", strategyFlagUsageConstant)
	command.Flags().Bool(yesFlagNameConstant, false, yesFlagUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()

	resolution, resolutionError := parseResolutionFlags(command, configuration)
	if resolutionError != nil {
		return resolutionError
	}
	baseBranch, _ := command.Flags().GetString(baseFlagNameConstant)
	assumeYes, _ := command.Flags().GetBool(yesFlagNameConstant)

	logger := builder.resolveLogger()
	gitManager, managerError := builder.resolveGitManager(logger)
	if managerError != nil {
		return managerError
	}

	executionContext := command.Context()
	repositoryPath := utils.NewCommandContextAccessor().RepositoryPath(executionContext)
	console := prompt.NewConsole(command.InOrStdin(), command.OutOrStdout())

	var aiResolver AIConflictResolver
	aiResolved := false
	loadAIResolver := func() AIConflictResolver {
		if !aiResolved {
			aiResolver = builder.resolveAIResolver(executionContext, logger)
			aiResolved = true
		}
		return aiResolver
	}

	if aiFlagRequested(command, resolution) && loadAIResolver() == nil {
		aiResolver = builder.promptedAIResolver(executionContext, console, logger)
	}

	branches := append([]string{}, arguments...)
	if len(sanitizeBranches(branches)) == 0 {
		currentBranch, currentError := gitManager.GetCurrentBranch(executionContext, repositoryPath)
		if currentError != nil {
			return currentError
		}
		availableBranches, listError := gitManager.ListBranches(executionContext, repositoryPath)
		if listError != nil {
			return listError
		}

		selection, selectionError := NewBranchSelector(console).Select(SelectionRequest{
			AvailableBranches: availableBranches,
			CurrentBranch:     currentBranch,
			AIAvailable:       loadAIResolver() != nil,
			UseAIDefault:      resolution.UseAI,
			AssumeYes:         assumeYes,
		})
		if selectionError != nil {
			return selectionError
		}
		if !selection.Confirmed {
			return nil
		}
		branches = selection.Branches
		baseBranch = selection.BaseBranch
		resolution.UseAI = selection.UseAI
	}

	if resolution.UseAI {
		loadAIResolver()
	}

	fileResolver := NewFileResolver(logger, aiResolver, interactiveResolverFactory(console), console.Writer())
	service, serviceError := NewService(ServiceDependencies{
		Logger:            logger,
		GitManager:        gitManager,
		FileSystem:        builder.FileSystem,
		FileResolver:      fileResolver,
		Output:            console.Writer(),
		ProcessIdentifier: builder.ProcessIdentifier,
		Configuration:     configuration,
	})
	if serviceError != nil {
		return serviceError
	}

	result, mergeError := service.Merge(executionContext, Options{
		RepositoryPath: repositoryPath,
		Branches:       branches,
		BaseBranch:     baseBranch,
		Resolution:     resolution,
	})
	if mergeError != nil {
		if errors.Is(mergeError, ErrInsufficientBranches) {
			return mergeError
		}
		return fmt.Errorf(mergeCommandErrorTemplateConstant, mergeError)
	}

	if summaryError := WriteSummary(console.Writer(), result); summaryError != nil {
		return summaryError
	}
	if !result.Succeeded {
		return ErrMergeUnsuccessful
	}
	return nil
}

func parseResolutionFlags(command *cobra.Command, configuration Configuration) (ResolutionOptions, error) {
	resolution := ResolutionOptions{UseAI: configuration.UseAI}
	if command.Flags().Changed(aiFlagNameConstant) {
		resolution.UseAI, _ = command.Flags().GetBool(aiFlagNameConstant)
	}

	strategyValue, _ := command.Flags().GetString(strategyFlagNameConstant)
	if len(strings.TrimSpace(strategyValue)) == 0 {
		return resolution, nil
	}
	strategy, parseError := conflicts.ParseChoice(strategyValue)
	if parseError != nil {
		return ResolutionOptions{}, parseError
	}
	if strategy == conflicts.ChoiceCustom {
		return ResolutionOptions{}, ErrCustomStrategy
	}
	resolution.Strategy = strategy
	return resolution, nil
}

func interactiveResolverFactory(console *prompt.Console) RegionResolverFactory {
	return func(filePath string) conflicts.RegionResolver {
		return prompt.NewRegionPrompter(console, filePath)
	}
}

func (commandDependencies *CommandDependencies) resolveConfiguration() Configuration {
	if commandDependencies.ConfigurationProvider == nil {
		return DefaultConfiguration()
	}
	return commandDependencies.ConfigurationProvider().sanitize()
}

func (commandDependencies *CommandDependencies) resolveLogger() *zap.Logger {
	if commandDependencies.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := commandDependencies.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (commandDependencies *CommandDependencies) resolveGitManager(logger *zap.Logger) (GitRepositoryManager, error) {
	if commandDependencies.GitManager != nil {
		return commandDependencies.GitManager, nil
	}

	humanReadableLogging := false
	if commandDependencies.HumanReadableLoggingProvider != nil {
		humanReadableLogging = commandDependencies.HumanReadableLoggingProvider()
	}

	gitExecutor, executorError := dependencies.ResolveGitExecutor(commandDependencies.GitExecutor, logger, humanReadableLogging)
	if executorError != nil {
		return nil, executorError
	}
	return dependencies.ResolveRepositoryManager(gitExecutor)
}

// resolveAIResolver degrades to nil when the provider is missing or fails; conflicts are then resolved manually.
func (commandDependencies *CommandDependencies) resolveAIResolver(executionContext context.Context, logger *zap.Logger) AIConflictResolver {
	if commandDependencies.AIResolverProvider == nil {
		return nil
	}
	aiResolver, providerError := commandDependencies.AIResolverProvider(executionContext)
	if providerError != nil {
		logger.Warn(aiUnavailableLogMessageConstant, zap.Error(providerError))
		return nil
	}
	return aiResolver
}

func aiFlagRequested(command *cobra.Command, resolution ResolutionOptions) bool {
	return resolution.UseAI && command.Flags().Changed(aiFlagNameConstant)
}

// promptedAIResolver asks for a Gemini API key when --ai was given and none is stored.
// The key is used for this run only.
func (commandDependencies *CommandDependencies) promptedAIResolver(executionContext context.Context, console *prompt.Console, logger *zap.Logger) AIConflictResolver {
	if commandDependencies.KeyedAIResolverProvider == nil {
		return nil
	}
	apiKey, readError := console.ReadSecret(geminiKeyPromptConstant)
	if readError != nil && !errors.Is(readError, prompt.ErrInputClosed) {
		logger.Warn(aiUnavailableLogMessageConstant, zap.Error(readError))
		return nil
	}
	if len(apiKey) == 0 {
		logger.Warn(aiKeyNotProvidedLogMessageConstant)
		return nil
	}
	aiResolver, providerError := commandDependencies.KeyedAIResolverProvider(executionContext, apiKey)
	if providerError != nil {
		logger.Warn(aiUnavailableLogMessageConstant, zap.Error(providerError))
		return nil
	}
	return aiResolver
}
