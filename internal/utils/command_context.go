package utils

import "context"

const (
	configurationFilePathContextKeyConstant = commandContextKey("configurationFilePath")
	repositoryPathContextKeyConstant        = commandContextKey("repositoryPath")
	defaultRepositoryPathConstant           = "."
)

type commandContextKey string

// CommandContextAccessor manages values the root command stores for its subcommands.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor instance.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationFilePath attaches the configuration file path to the provided context.
func (accessor CommandContextAccessor) WithConfigurationFilePath(parentContext context.Context, configurationFilePath string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, configurationFilePathContextKeyConstant, configurationFilePath)
}

// ConfigurationFilePath extracts the configuration file path from the provided context.
func (accessor CommandContextAccessor) ConfigurationFilePath(executionContext context.Context) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	configurationFilePath, configurationFilePathAvailable := executionContext.Value(configurationFilePathContextKeyConstant).(string)
	if !configurationFilePathAvailable {
		return "", false
	}
	return configurationFilePath, true
}

// WithRepositoryPath records the working tree git commands should run in.
func (accessor CommandContextAccessor) WithRepositoryPath(parentContext context.Context, repositoryPath string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, repositoryPathContextKeyConstant, repositoryPath)
}

// RepositoryPath returns the recorded working tree, defaulting to the current directory.
func (accessor CommandContextAccessor) RepositoryPath(executionContext context.Context) string {
	if executionContext == nil {
		return defaultRepositoryPathConstant
	}
	repositoryPath, available := executionContext.Value(repositoryPathContextKeyConstant).(string)
	if !available || len(repositoryPath) == 0 {
		return defaultRepositoryPathConstant
	}
	return repositoryPath
}
