package assistant

import (
	"context"

	"go.uber.org/zap"

	"github.com/temirov/mergix/internal/generative"
	"github.com/temirov/mergix/internal/githubapi"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// RepositoryCatalog lists and describes repositories on the hosting service.
type RepositoryCatalog interface {
	ListRepositories(executionContext context.Context, limit int) ([]githubapi.Repository, error)
	GetRepository(executionContext context.Context, identifier string) (githubapi.Repository, error)
}

// RepositoryCatalogProvider returns the catalog, building it on first use.
type RepositoryCatalogProvider func(executionContext context.Context) (RepositoryCatalog, error)

// TextGeneratorProvider returns the generative client, building it on first use.
type TextGeneratorProvider func(executionContext context.Context) (generative.TextGenerator, error)

// RemoteLocator reports the fetch URL of a git remote.
type RemoteLocator interface {
	GetRemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error)
}

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
