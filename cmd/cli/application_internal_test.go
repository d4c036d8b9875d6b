package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/mergix/internal/credentials"
	"github.com/temirov/mergix/internal/generative"
)

const (
	testConfigurationFileNameConstant = "config.yaml"
	testCredentialsFileNameConstant   = "credentials.yaml"
	testRepositoryPathConstant        = "/work/project"
	testGeminiKeyConstant             = "gemini-test-key"
	testConfigurationTemplateConstant = "common:\n  log_level: debug\n  log_format: console\ncredentials:\n  path: %s\n  legacy_path: \"\"\ntools:\n  merge:\n    temporary_branch_prefix: integration_\n    use_ai: true\n  github:\n    repository_limit: 5\n"
)

func writeTestConfiguration(testInstance *testing.T) (string, string) {
	testInstance.Helper()

	temporaryDirectory := testInstance.TempDir()
	credentialsPath := filepath.Join(temporaryDirectory, testCredentialsFileNameConstant)
	configurationPath := filepath.Join(temporaryDirectory, testConfigurationFileNameConstant)
	content := fmt.Sprintf(testConfigurationTemplateConstant, credentialsPath)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(content), 0o600))
	return configurationPath, credentialsPath
}

func TestInitializeConfigurationAppliesFileAndFlags(testInstance *testing.T) {
	configurationPath, credentialsPath := writeTestConfiguration(testInstance)

	application := NewApplication()
	rootCommand := application.rootCommand
	rootCommand.SetContext(context.Background())
	require.NoError(testInstance, rootCommand.PersistentFlags().Set(configFileFlagNameConstant, configurationPath))
	require.NoError(testInstance, rootCommand.PersistentFlags().Set(repositoryFlagNameConstant, testRepositoryPathConstant))
	require.NoError(testInstance, rootCommand.PersistentFlags().Set(logLevelFlagNameConstant, "warn"))

	require.NoError(testInstance, application.initializeConfiguration(rootCommand))

	require.Equal(testInstance, "warn", application.configuration.Common.LogLevel)
	require.True(testInstance, application.humanReadableLoggingEnabled())
	require.Equal(testInstance, credentialsPath, application.credentialsConfiguration().Path)
	require.Equal(testInstance, "integration_", application.mergeConfiguration().TemporaryBranchPrefix)
	require.True(testInstance, application.mergeConfiguration().UseAI)
	require.Equal(testInstance, 5, application.githubConfiguration().RepositoryLimit)
	require.Equal(testInstance, "gemini-2.5-flash", application.configuration.Tools.AI.Model)

	require.Equal(testInstance, testRepositoryPathConstant, application.commandContextAccessor.RepositoryPath(rootCommand.Context()))
	configurationFile, found := application.commandContextAccessor.ConfigurationFilePath(rootCommand.Context())
	require.True(testInstance, found)
	require.Equal(testInstance, configurationPath, configurationFile)
}

func TestInitializeConfigurationRejectsUnknownLogLevel(testInstance *testing.T) {
	application := NewApplication()
	rootCommand := application.rootCommand
	rootCommand.SetContext(context.Background())
	require.NoError(testInstance, rootCommand.PersistentFlags().Set(logLevelFlagNameConstant, "verbose"))

	require.Error(testInstance, application.initializeConfiguration(rootCommand))
}

func TestConflictResolverWithoutKeyIsNil(testInstance *testing.T) {
	configurationPath, _ := writeTestConfiguration(testInstance)

	application := NewApplication()
	application.environmentLookup = credentials.MapLookup(map[string]string{})
	rootCommand := application.rootCommand
	rootCommand.SetContext(context.Background())
	require.NoError(testInstance, rootCommand.PersistentFlags().Set(configFileFlagNameConstant, configurationPath))
	require.NoError(testInstance, application.initializeConfiguration(rootCommand))

	resolver, resolverError := application.conflictResolver(context.Background())
	require.NoError(testInstance, resolverError)
	require.Nil(testInstance, resolver)

	_, generatorError := application.textGenerator(context.Background())
	require.Error(testInstance, generatorError)
}

func TestProvidersUseEnvironmentCredentials(testInstance *testing.T) {
	configurationPath, _ := writeTestConfiguration(testInstance)

	application := NewApplication()
	application.environmentLookup = credentials.MapLookup(map[string]string{
		credentials.EnvGeminiAPIKey: testGeminiKeyConstant,
	})
	rootCommand := application.rootCommand
	rootCommand.SetContext(context.Background())
	require.NoError(testInstance, rootCommand.PersistentFlags().Set(configFileFlagNameConstant, configurationPath))
	require.NoError(testInstance, application.initializeConfiguration(rootCommand))

	resolver, resolverError := application.conflictResolver(context.Background())
	require.NoError(testInstance, resolverError)
	require.NotNil(testInstance, resolver)

	firstCatalog, firstError := application.repositoryCatalog(context.Background())
	require.NoError(testInstance, firstError)
	secondCatalog, secondError := application.repositoryCatalog(context.Background())
	require.NoError(testInstance, secondError)
	require.Same(testInstance, firstCatalog, secondCatalog)
}

func TestConflictResolverForPromptedKeySharesClient(testInstance *testing.T) {
	configurationPath, _ := writeTestConfiguration(testInstance)

	application := NewApplication()
	application.environmentLookup = credentials.MapLookup(map[string]string{})
	rootCommand := application.rootCommand
	rootCommand.SetContext(context.Background())
	require.NoError(testInstance, rootCommand.PersistentFlags().Set(configFileFlagNameConstant, configurationPath))
	require.NoError(testInstance, application.initializeConfiguration(rootCommand))

	_, emptyKeyError := application.conflictResolverForKey(context.Background(), "  ")
	require.ErrorIs(testInstance, emptyKeyError, generative.ErrAPIKeyRequired)
	require.Nil(testInstance, application.generativeClient)

	resolver, resolverError := application.conflictResolverForKey(context.Background(), testGeminiKeyConstant)
	require.NoError(testInstance, resolverError)
	require.NotNil(testInstance, resolver)
	require.NotNil(testInstance, application.generativeClient)

	generator, generatorError := application.textGenerator(context.Background())
	require.NoError(testInstance, generatorError)
	require.Same(testInstance, application.generativeClient, generator)
}
