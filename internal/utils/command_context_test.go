package utils_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/mergix/internal/utils"
)

func TestCommandContextAccessor(testInstance *testing.T) {
	accessor := utils.NewCommandContextAccessor()

	_, available := accessor.ConfigurationFilePath(context.Background())
	require.False(testInstance, available)
	require.Equal(testInstance, ".", accessor.RepositoryPath(context.Background()))

	executionContext := accessor.WithConfigurationFilePath(context.Background(), "/etc/mergix/config.yaml")
	executionContext = accessor.WithRepositoryPath(executionContext, "/work/project")

	configurationFilePath, available := accessor.ConfigurationFilePath(executionContext)
	require.True(testInstance, available)
	require.Equal(testInstance, "/etc/mergix/config.yaml", configurationFilePath)
	require.Equal(testInstance, "/work/project", accessor.RepositoryPath(executionContext))
}
