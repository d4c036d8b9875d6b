package dependencies

import (
	"go.uber.org/zap"

	"github.com/temirov/mergix/internal/execshell"
	"github.com/temirov/mergix/internal/gitrepo"
	"github.com/temirov/mergix/internal/ui"
)

// ResolveGitExecutor returns the provided executor or constructs a shell-backed default.
// Human-readable logging attaches the console command event logger.
func ResolveGitExecutor(existing execshell.GitExecutor, logger *zap.Logger, humanReadableLogging bool) (execshell.GitExecutor, error) {
	if existing != nil {
		return existing, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	executorOptions := []execshell.ShellExecutorOption{}
	if humanReadableLogging {
		executorOptions = append(executorOptions, execshell.WithCommandEventObserver(ui.NewConsoleCommandEventLogger(logger)))
	}

	shellExecutor, creationError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), executorOptions...)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

// ResolveRepositoryManager constructs a repository manager backed by the executor.
func ResolveRepositoryManager(executor execshell.GitExecutor) (*gitrepo.RepositoryManager, error) {
	return gitrepo.NewRepositoryManager(executor)
}
