package ui_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/mergix/internal/execshell"
	"github.com/temirov/mergix/internal/ui"
)

const (
	testCommandWorkingDirectoryConstant    = "/tmp/project"
	testExecutionFailureReasonConstant     = "execution failed"
	testStandardErrorMessageConstant       = "fatal: pathspec did not match"
	testStartMessageExpectationConstant    = "Switching /tmp/project to branch feature"
	testSuccessMessageExpectationConstant  = "/tmp/project now on branch feature"
	testFailureMessageExpectationConstant  = "Failed to switch /tmp/project to branch feature (exit code 1: " + testStandardErrorMessageConstant + ")"
	testExecutionFailureMessageExpectation = "Unable to switch /tmp/project to branch feature: " + testExecutionFailureReasonConstant
	testMergeStoppedMessageExpectation     = "Merging feature in /tmp/project stopped (exit code 1)"
	testAbortFailureMessageExpectation     = "Failed to abort merge in /tmp/project (exit code 128)"
)

func TestConsoleCommandEventLoggerEmitsMessages(testInstance *testing.T) {
	checkoutCommand := execshell.ShellCommand{
		Name: execshell.CommandGit,
		Details: execshell.CommandDetails{
			Arguments:        []string{"checkout", "feature"},
			WorkingDirectory: testCommandWorkingDirectoryConstant,
		},
	}
	mergeCommand := execshell.ShellCommand{
		Name: execshell.CommandGit,
		Details: execshell.CommandDetails{
			Arguments:        []string{"merge", "--no-commit", "--no-ff", "feature"},
			WorkingDirectory: testCommandWorkingDirectoryConstant,
		},
	}
	abortCommand := execshell.ShellCommand{
		Name: execshell.CommandGit,
		Details: execshell.CommandDetails{
			Arguments:        []string{"merge", "--abort"},
			WorkingDirectory: testCommandWorkingDirectoryConstant,
		},
	}

	testCases := []struct {
		name            string
		invoke          func(logger *ui.ConsoleCommandEventLogger)
		expectedLevel   zapcore.Level
		expectedMessage string
	}{
		{
			name: "command_started",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandStarted(checkoutCommand)
			},
			expectedLevel:   zapcore.InfoLevel,
			expectedMessage: testStartMessageExpectationConstant,
		},
		{
			name: "command_completed_success",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandCompleted(checkoutCommand, execshell.ExecutionResult{ExitCode: 0})
			},
			expectedLevel:   zapcore.InfoLevel,
			expectedMessage: testSuccessMessageExpectationConstant,
		},
		{
			name: "command_completed_failure",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandCompleted(checkoutCommand, execshell.ExecutionResult{ExitCode: 1, StandardError: testStandardErrorMessageConstant})
			},
			expectedLevel:   zapcore.WarnLevel,
			expectedMessage: testFailureMessageExpectationConstant,
		},
		{
			name: "merge_stopping_on_conflicts_is_informational",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandCompleted(mergeCommand, execshell.ExecutionResult{ExitCode: 1})
			},
			expectedLevel:   zapcore.InfoLevel,
			expectedMessage: testMergeStoppedMessageExpectation,
		},
		{
			name: "abort_failure_warns",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandCompleted(abortCommand, execshell.ExecutionResult{ExitCode: 128})
			},
			expectedLevel:   zapcore.WarnLevel,
			expectedMessage: testAbortFailureMessageExpectation,
		},
		{
			name: "command_execution_failure",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandExecutionFailed(checkoutCommand, errors.New(testExecutionFailureReasonConstant))
			},
			expectedLevel:   zapcore.ErrorLevel,
			expectedMessage: testExecutionFailureMessageExpectation,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observedLogs := observer.New(zapcore.DebugLevel)
			consoleLogger := zap.New(observerCore)
			eventLogger := ui.NewConsoleCommandEventLogger(consoleLogger)

			testCase.invoke(eventLogger)

			entries := observedLogs.All()
			require.Len(testInstance, entries, 1)
			require.Equal(testInstance, testCase.expectedLevel, entries[0].Level)
			require.Equal(testInstance, testCase.expectedMessage, entries[0].Message)
		})
	}
}
