package merge

import (
	"context"
	"io/fs"
	"os"

	"github.com/temirov/mergix/internal/gitrepo"
)

// GitRepositoryManager exposes the repository operations the merge workflow performs.
type GitRepositoryManager interface {
	RepositoryRoot(executionContext context.Context, repositoryPath string) (string, error)
	GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error)
	ListBranches(executionContext context.Context, repositoryPath string) ([]string, error)
	CheckoutBranch(executionContext context.Context, repositoryPath string, branchName string) error
	CreateBranch(executionContext context.Context, repositoryPath string, branchName string, startPoint string) error
	MergeWithoutCommit(executionContext context.Context, repositoryPath string, branchName string) (gitrepo.MergeOutcome, error)
	AbortMerge(executionContext context.Context, repositoryPath string) error
	UnmergedFiles(executionContext context.Context, repositoryPath string) ([]gitrepo.UnmergedPath, error)
	CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error)
	StageFile(executionContext context.Context, repositoryPath string, filePath string) error
	Commit(executionContext context.Context, repositoryPath string, message string) error
}

// FileSystem provides the file access required to rewrite conflicted files.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, permissions fs.FileMode) error
	Stat(path string) (fs.FileInfo, error)
}

// OSFileSystem implements FileSystem with the os package.
type OSFileSystem struct{}

// ReadFile reads the named file.
func (OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile writes data to the named file.
func (OSFileSystem) WriteFile(path string, data []byte, permissions fs.FileMode) error {
	return os.WriteFile(path, data, permissions)
}

// Stat describes the named file.
func (OSFileSystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

const defaultFilePermissionsConstant fs.FileMode = 0o644

// filePermissions keeps the existing mode of a rewritten file.
func filePermissions(fileSystem FileSystem, path string) fs.FileMode {
	fileInfo, statError := fileSystem.Stat(path)
	if statError != nil || fileInfo == nil {
		return defaultFilePermissionsConstant
	}
	return fileInfo.Mode().Perm()
}

// ConflictFileResolver turns the content of a conflicted file into resolved content.
type ConflictFileResolver interface {
	ResolveFile(executionContext context.Context, filePath string, content string, options ResolutionOptions) (string, error)
}

// AIConflictResolver rewrites a whole conflicted file with a generative model.
type AIConflictResolver interface {
	ResolveFile(executionContext context.Context, filePath string, content string) (string, error)
}

// ProcessIdentifier reports the identifier used to name the temporary branch.
type ProcessIdentifier func() int
