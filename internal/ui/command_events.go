package ui

import (
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/mergix/internal/execshell"
)

const (
	gitMergeSubcommandConstant = "merge"
	gitAbortFlagConstant       = "--abort"
)

// ConsoleCommandEventLogger renders git lifecycle events using a zap logger configured for human-readable output.
type ConsoleCommandEventLogger struct {
	logger    *zap.Logger
	formatter execshell.CommandMessageFormatter
}

// NewConsoleCommandEventLogger constructs a console event logger backed by the provided zap logger.
func NewConsoleCommandEventLogger(logger *zap.Logger) *ConsoleCommandEventLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleCommandEventLogger{logger: logger, formatter: execshell.CommandMessageFormatter{}}
}

// CommandStarted implements execshell.CommandEventObserver by logging command start notifications.
func (eventLogger *ConsoleCommandEventLogger) CommandStarted(command execshell.ShellCommand) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Info(eventLogger.formatter.BuildStartedMessage(command))
}

// CommandCompleted implements execshell.CommandEventObserver by logging command completion notifications.
// A merge that stops on conflicts is expected during conflict resolution and is reported at info level.
func (eventLogger *ConsoleCommandEventLogger) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	if eventLogger == nil {
		return
	}
	if result.ExitCode == 0 {
		eventLogger.logger.Info(eventLogger.formatter.BuildSuccessMessage(command, result))
		return
	}
	if isMergeAttempt(command) {
		eventLogger.logger.Info(eventLogger.formatter.BuildFailureMessage(command, result))
		return
	}
	eventLogger.logger.Warn(eventLogger.formatter.BuildFailureMessage(command, result))
}

// CommandExecutionFailed implements execshell.CommandEventObserver by logging unexpected execution failures.
func (eventLogger *ConsoleCommandEventLogger) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Error(eventLogger.formatter.BuildExecutionFailureMessage(command, failure))
}

func isMergeAttempt(command execshell.ShellCommand) bool {
	arguments := command.Details.Arguments
	if command.Name != execshell.CommandGit || len(arguments) == 0 {
		return false
	}
	if strings.TrimSpace(arguments[0]) != gitMergeSubcommandConstant {
		return false
	}
	for _, argument := range arguments[1:] {
		if strings.TrimSpace(argument) == gitAbortFlagConstant {
			return false
		}
	}
	return true
}
