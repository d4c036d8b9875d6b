package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/mergix/internal/assistant"
	"github.com/temirov/mergix/internal/branches"
	"github.com/temirov/mergix/internal/credentials"
	"github.com/temirov/mergix/internal/generative"
	"github.com/temirov/mergix/internal/githubapi"
	"github.com/temirov/mergix/internal/merge"
	"github.com/temirov/mergix/internal/utils"
)

const (
	applicationNameConstant                 = "mergix"
	applicationShortDescriptionConstant     = "Merge several git branches at once and resolve their conflicts"
	applicationLongDescriptionConstant      = "mergix merges a set of branches into a temporary branch, resolving conflict markers manually, with a fixed strategy, or with Gemini. It also lists branches, queries GitHub, and manages the API keys it needs."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (structured or console)."
	repositoryFlagNameConstant              = "repository"
	repositoryFlagShorthandConstant         = "C"
	repositoryFlagUsageConstant             = "Path to the git repository to operate on."
	defaultRepositoryPathConstant           = "."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	environmentPrefixConstant               = "MERGIX"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationRepositoryFieldConstant    = "repository"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	commandBuildErrorTemplateConstant       = "unable to build %s command: %w"
	credentialsLoadErrorTemplateConstant    = "unable to load credentials: %w"
	rootCommandInfoMessageConstant          = "mergix CLI executed"
	rootCommandDebugMessageConstant         = "mergix CLI diagnostics"
	logFieldCommandNameConstant             = "command_name"
	logFieldArgumentCountConstant           = "argument_count"
	logFieldArgumentsConstant               = "arguments"
	loggerNotInitializedMessageConstant     = "logger not initialized"
	defaultConfigurationSearchPathConstant  = "."
	userConfigurationSearchPathConstant     = "~/.mergix"
	credentialsConfigurationKeyConstant     = "credentials"
	toolsConfigurationKeyConstant           = "tools"
	mergeConfigurationKeyConstant           = toolsConfigurationKeyConstant + ".merge"
	aiConfigurationKeyConstant              = toolsConfigurationKeyConstant + ".ai"
	githubConfigurationKeyConstant          = toolsConfigurationKeyConstant + ".github"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common      ApplicationCommonConfiguration `mapstructure:"common"`
	Credentials credentials.Configuration      `mapstructure:"credentials"`
	Tools       ApplicationToolsConfiguration  `mapstructure:"tools"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationToolsConfiguration holds configuration for CLI subcommands grouped by tool family.
type ApplicationToolsConfiguration struct {
	Merge  merge.Configuration      `mapstructure:"merge"`
	AI     generative.Configuration `mapstructure:"ai"`
	GitHub githubapi.Configuration  `mapstructure:"github"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand            *cobra.Command
	configurationLoader    *utils.ConfigurationLoader
	loggerFactory          *utils.LoggerFactory
	logger                 *zap.Logger
	configuration          ApplicationConfiguration
	configurationMetadata  utils.LoadedConfiguration
	configurationFilePath  string
	logLevelFlagValue      string
	logFormatFlagValue     string
	repositoryFlagValue    string
	commandContextAccessor utils.CommandContextAccessor
	environmentLookup      credentials.EnvironmentLookup
	resolvedCredentials    *credentials.Credentials
	generativeClient       *generative.Client
	githubClient           *githubapi.Client
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant, userConfigurationSearchPathConstant},
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader:    configurationLoader,
		loggerFactory:          utils.NewLoggerFactory(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVarP(&application.repositoryFlagValue, repositoryFlagNameConstant, repositoryFlagShorthandConstant, defaultRepositoryPathConstant, repositoryFlagUsageConstant)

	mergeDependencies := merge.CommandDependencies{
		LoggerProvider:               application.provideLogger,
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ConfigurationProvider:        application.mergeConfiguration,
		AIResolverProvider:           application.conflictResolver,
		KeyedAIResolverProvider:      application.conflictResolverForKey,
	}

	builders := []commandBuilder{
		&merge.CommandBuilder{CommandDependencies: mergeDependencies},
		&merge.ResolveCommandBuilder{CommandDependencies: mergeDependencies},
		&branches.CommandBuilder{
			LoggerProvider:               application.provideLogger,
			HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		},
		&credentials.CommandBuilder{
			LoggerProvider:        application.provideLogger,
			ConfigurationProvider: application.credentialsConfiguration,
		},
		&assistant.GitHubCommandBuilder{
			LoggerProvider:               application.provideLogger,
			HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
			ConfigurationProvider:        application.githubConfiguration,
			CatalogProvider:              application.repositoryCatalog,
		},
		&assistant.AskCommandBuilder{
			LoggerProvider:    application.provideLogger,
			GeneratorProvider: application.textGenerator,
		},
	}

	for _, builder := range builders {
		subcommand, buildError := builder.Build()
		if buildError != nil {
			panic(fmt.Errorf(commandBuildErrorTemplateConstant, fmt.Sprintf("%T", builder), buildError))
		}
		cobraCommand.AddCommand(subcommand)
	}

	application.rootCommand = cobraCommand

	return application
}

type commandBuilder interface {
	Build() (*cobra.Command, error)
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// SetOutput directs command output and errors to writer.
func (application *Application) SetOutput(writer io.Writer) {
	application.rootCommand.SetOut(writer)
	application.rootCommand.SetErr(writer)
}

// SetInput replaces standard input for interactive prompts.
func (application *Application) SetInput(reader io.Reader) {
	application.rootCommand.SetIn(reader)
}

// SetArguments replaces the process arguments parsed by Execute.
func (application *Application) SetArguments(arguments []string) {
	application.rootCommand.SetArgs(arguments)
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatStructured),
	}
	defaultSources := []map[string]any{
		credentials.DefaultConfigurationValues(credentialsConfigurationKeyConstant),
		merge.DefaultConfigurationValues(mergeConfigurationKeyConstant),
		generative.DefaultConfigurationValues(aiConfigurationKeyConstant),
		githubapi.DefaultConfigurationValues(githubConfigurationKeyConstant),
	}
	for _, defaultSource := range defaultSources {
		for configurationKey, configurationValue := range defaultSource {
			defaultValues[configurationKey] = configurationValue
		}
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logLevel, logLevelError := utils.ParseLogLevel(application.configuration.Common.LogLevel)
	if logLevelError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, logLevelError)
	}
	logFormat, logFormatError := utils.ParseLogFormat(application.configuration.Common.LogFormat)
	if logFormatError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, logFormatError)
	}
	application.configuration.Common.LogLevel = string(logLevel)
	application.configuration.Common.LogFormat = string(logFormat)

	logger, loggerCreationError := application.loggerFactory.CreateLogger(logLevel, logFormat)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	repositoryPath := strings.TrimSpace(application.repositoryFlagValue)
	if len(repositoryPath) == 0 {
		repositoryPath = defaultRepositoryPathConstant
	}

	application.logger.Info(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
		zap.String(configurationRepositoryFieldConstant, repositoryPath),
	)

	if command != nil {
		parentContext := command.Context()
		if parentContext == nil {
			parentContext = context.Background()
		}
		updatedContext := application.commandContextAccessor.WithConfigurationFilePath(
			parentContext,
			application.configurationMetadata.ConfigFileUsed,
		)
		updatedContext = application.commandContextAccessor.WithRepositoryPath(updatedContext, repositoryPath)
		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

func (application *Application) provideLogger() *zap.Logger {
	return application.logger
}

func (application *Application) mergeConfiguration() merge.Configuration {
	return application.configuration.Tools.Merge
}

func (application *Application) credentialsConfiguration() credentials.Configuration {
	return application.configuration.Credentials
}

func (application *Application) githubConfiguration() githubapi.Configuration {
	return application.configuration.Tools.GitHub
}

// loadCredentials reads the credential store once per process and overlays the environment.
func (application *Application) loadCredentials() (credentials.Credentials, error) {
	if application.resolvedCredentials != nil {
		return *application.resolvedCredentials, nil
	}
	resolved, loadError := credentials.LoadResolved(application.configuration.Credentials, application.environmentLookup)
	if loadError != nil {
		return credentials.Credentials{}, fmt.Errorf(credentialsLoadErrorTemplateConstant, loadError)
	}
	application.resolvedCredentials = &resolved
	return resolved, nil
}

func (application *Application) geminiClient(executionContext context.Context) (*generative.Client, error) {
	if application.generativeClient != nil {
		return application.generativeClient, nil
	}
	resolved, loadError := application.loadCredentials()
	if loadError != nil {
		return nil, loadError
	}
	client, clientError := generative.NewClient(executionContext, resolved.GeminiAPIKey, application.configuration.Tools.AI, application.logger)
	if clientError != nil {
		return nil, clientError
	}
	application.generativeClient = client
	return client, nil
}

func (application *Application) textGenerator(executionContext context.Context) (generative.TextGenerator, error) {
	client, clientError := application.geminiClient(executionContext)
	if clientError != nil {
		return nil, clientError
	}
	return client, nil
}

// conflictResolver returns an untyped nil when no Gemini key is configured so merges fall back to manual resolution.
func (application *Application) conflictResolver(executionContext context.Context) (merge.AIConflictResolver, error) {
	client, clientError := application.geminiClient(executionContext)
	if errors.Is(clientError, generative.ErrAPIKeyRequired) {
		return nil, nil
	}
	if clientError != nil {
		return nil, clientError
	}
	return generative.NewConflictResolver(client), nil
}

// conflictResolverForKey builds the process-wide Gemini client from a key entered at the prompt.
// Later providers in the same run reuse that client.
func (application *Application) conflictResolverForKey(executionContext context.Context, apiKey string) (merge.AIConflictResolver, error) {
	if application.generativeClient == nil {
		client, clientError := generative.NewClient(executionContext, apiKey, application.configuration.Tools.AI, application.logger)
		if clientError != nil {
			return nil, clientError
		}
		application.generativeClient = client
	}
	return generative.NewConflictResolver(application.generativeClient), nil
}

func (application *Application) repositoryCatalog(context.Context) (assistant.RepositoryCatalog, error) {
	if application.githubClient != nil {
		return application.githubClient, nil
	}
	resolved, loadError := application.loadCredentials()
	if loadError != nil {
		return nil, loadError
	}
	client, clientError := githubapi.NewClient(resolved.GitHubAPIKey, application.configuration.Tools.GitHub)
	if clientError != nil {
		return nil, clientError
	}
	application.githubClient = client
	return client, nil
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	application.logger.Info(
		rootCommandInfoMessageConstant,
		zap.String(logFieldCommandNameConstant, command.Name()),
		zap.Int(logFieldArgumentCountConstant, len(arguments)),
	)

	application.logger.Debug(
		rootCommandDebugMessageConstant,
		zap.Strings(logFieldArgumentsConstant, arguments),
	)

	if len(arguments) == 0 {
		return command.Help()
	}

	return nil
}

func (application *Application) flushLogger() error {
	return utils.SyncLogger(application.logger)
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}
		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
