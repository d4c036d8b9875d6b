package utils_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/mergix/internal/utils"
)

const (
	testEnvironmentPrefixConstant     = "TESTMERGIX"
	testConfigurationNameConstant     = "config"
	testConfigurationTypeConstant     = "yaml"
	testConfigFileNameConstant        = "config.yaml"
	testPrefixKeyConstant             = "tools.merge.temporary_branch_prefix"
	testPrefixEnvironmentNameConstant = testEnvironmentPrefixConstant + "_TOOLS_MERGE_TEMPORARY_BRANCH_PREFIX"
	testMergeSectionTemplateConstant  = "tools:\n  merge:\n    temporary_branch_prefix: %s\n"
	testUserDirectoryConstant         = "~/.mergix"
)

type mergeConfigurationFixture struct {
	Tools struct {
		Merge struct {
			TemporaryBranchPrefix string `mapstructure:"temporary_branch_prefix"`
		} `mapstructure:"merge"`
	} `mapstructure:"tools"`
}

func writeMergeSection(testInstance *testing.T, directory string, prefix string) string {
	testInstance.Helper()
	require.NoError(testInstance, os.MkdirAll(directory, 0o755))
	configurationFilePath := filepath.Join(directory, testConfigFileNameConstant)
	content := fmt.Sprintf(testMergeSectionTemplateConstant, prefix)
	require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte(content), 0o600))
	return configurationFilePath
}

func TestConfigurationLoaderLayerPriority(testInstance *testing.T) {
	testCases := []struct {
		name           string
		embeddedPrefix string
		filePrefix     string
		environment    string
		expectedPrefix string
	}{
		{name: "default_only", expectedPrefix: "default_"},
		{name: "embedded_over_default", embeddedPrefix: "embedded_", expectedPrefix: "embedded_"},
		{name: "file_over_embedded", embeddedPrefix: "embedded_", filePrefix: "file_", expectedPrefix: "file_"},
		{name: "environment_over_file", embeddedPrefix: "embedded_", filePrefix: "file_", environment: "env_", expectedPrefix: "env_"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			configurationFilePath := ""
			if len(testCase.filePrefix) > 0 {
				configurationFilePath = writeMergeSection(testInstance, testInstance.TempDir(), testCase.filePrefix)
			}
			if len(testCase.environment) > 0 {
				testInstance.Setenv(testPrefixEnvironmentNameConstant, testCase.environment)
			}

			configurationLoader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, []string{testInstance.TempDir()})
			if len(testCase.embeddedPrefix) > 0 {
				configurationLoader.SetEmbeddedConfiguration([]byte(fmt.Sprintf(testMergeSectionTemplateConstant, testCase.embeddedPrefix)), testConfigurationTypeConstant)
			}

			loadedConfiguration := mergeConfigurationFixture{}
			metadata, loadError := configurationLoader.LoadConfiguration(configurationFilePath, map[string]any{testPrefixKeyConstant: "default_"}, &loadedConfiguration)
			require.NoError(testInstance, loadError)
			require.Equal(testInstance, testCase.expectedPrefix, loadedConfiguration.Tools.Merge.TemporaryBranchPrefix)
			require.Equal(testInstance, configurationFilePath, metadata.ConfigFileUsed)
		})
	}
}

func TestConfigurationLoaderSearchPaths(testInstance *testing.T) {
	testCases := []struct {
		name             string
		inHomeDirectory  bool
		inWorkingTree    bool
		expectedPrefix   string
		expectHomeResult bool
	}{
		{name: "working_directory", inWorkingTree: true, expectedPrefix: "local_"},
		{name: "home_directory", inHomeDirectory: true, expectedPrefix: "home_", expectHomeResult: true},
		{name: "working_directory_first", inWorkingTree: true, inHomeDirectory: true, expectedPrefix: "local_"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			homeDirectory := testInstance.TempDir()
			workingDirectory := testInstance.TempDir()
			testInstance.Setenv("HOME", homeDirectory)

			expectedFile := ""
			if testCase.inHomeDirectory {
				expectedFile = writeMergeSection(testInstance, filepath.Join(homeDirectory, ".mergix"), "home_")
			}
			if testCase.inWorkingTree {
				expectedFile = writeMergeSection(testInstance, workingDirectory, "local_")
			}

			configurationLoader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, []string{workingDirectory, testUserDirectoryConstant})
			loadedConfiguration := mergeConfigurationFixture{}
			metadata, loadError := configurationLoader.LoadConfiguration("", nil, &loadedConfiguration)
			require.NoError(testInstance, loadError)
			require.Equal(testInstance, testCase.expectedPrefix, loadedConfiguration.Tools.Merge.TemporaryBranchPrefix)
			require.Equal(testInstance, expectedFile, metadata.ConfigFileUsed)
			if testCase.expectHomeResult {
				require.True(testInstance, strings.HasPrefix(metadata.ConfigFileUsed, homeDirectory))
			}
		})
	}
}

type toolConfigurationFixture struct {
	Tools toolSectionFixture `mapstructure:"tools"`
}

type toolSectionFixture struct {
	AI aiSectionFixture `mapstructure:"ai"`
}

type aiSectionFixture struct {
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
	Labels  []string      `mapstructure:"labels"`
}

func TestConfigurationLoaderDecodesDurationsAndLists(testInstance *testing.T) {
	configurationLoader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, []string{testInstance.TempDir()})
	configurationLoader.SetEmbeddedConfiguration([]byte("tools:\n  ai:\n    model: gemini-2.0-flash\n    timeout: 45s\n"), testConfigurationTypeConstant)

	environmentVariableName := testEnvironmentPrefixConstant + "_TOOLS_AI_LABELS"
	testInstance.Setenv(environmentVariableName, "merge,conflict")

	loadedConfiguration := toolConfigurationFixture{}
	_, loadError := configurationLoader.LoadConfiguration("", map[string]any{"tools.ai.labels": []string{}}, &loadedConfiguration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, "gemini-2.0-flash", loadedConfiguration.Tools.AI.Model)
	require.Equal(testInstance, 45*time.Second, loadedConfiguration.Tools.AI.Timeout)
	require.Equal(testInstance, []string{"merge", "conflict"}, loadedConfiguration.Tools.AI.Labels)
}

func TestConfigurationLoaderRejectsMalformedFile(testInstance *testing.T) {
	configurationFilePath := filepath.Join(testInstance.TempDir(), testConfigFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte("common: [unterminated"), 0o600))

	configurationLoader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, nil)
	loadedConfiguration := mergeConfigurationFixture{}
	_, loadError := configurationLoader.LoadConfiguration(configurationFilePath, nil, &loadedConfiguration)
	require.Error(testInstance, loadError)
}
