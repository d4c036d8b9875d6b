package execshell_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/mergix/internal/execshell"
)

const (
	testExecutionSuccessCaseNameConstant         = "success"
	testExecutionFailureCaseNameConstant         = "failure_exit_code"
	testExecutionRunnerErrorCaseNameConstant     = "runner_error"
	testCommandArgumentConstant                  = "--version"
	testWorkingDirectoryConstant                 = "."
	testStandardErrorOutputConstant              = "failure"
	testLoggerInitializationCaseNameConstant     = "logger_validation"
	testRunnerInitializationCaseNameConstant     = "runner_validation"
	testSuccessfulInitializationCaseNameConstant = "successful_initialization"
)

type recordingCommandRunner struct {
	executionResult  execshell.ExecutionResult
	executionError   error
	recordedCommands []execshell.ShellCommand
}

func (runner *recordingCommandRunner) Run(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.recordedCommands = append(runner.recordedCommands, command)
	return runner.executionResult, runner.executionError
}

func TestShellExecutorInitializationValidation(testInstance *testing.T) {
	testCases := []struct {
		name          string
		logger        *zap.Logger
		runner        execshell.CommandRunner
		expectError   error
		expectSuccess bool
	}{
		{
			name:        testLoggerInitializationCaseNameConstant,
			logger:      nil,
			runner:      &recordingCommandRunner{},
			expectError: execshell.ErrLoggerNotConfigured,
		},
		{
			name:        testRunnerInitializationCaseNameConstant,
			logger:      zap.NewNop(),
			runner:      nil,
			expectError: execshell.ErrCommandRunnerNotConfigured,
		},
		{
			name:          testSuccessfulInitializationCaseNameConstant,
			logger:        zap.NewNop(),
			runner:        &recordingCommandRunner{},
			expectSuccess: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor, creationError := execshell.NewShellExecutor(testCase.logger, testCase.runner)
			if testCase.expectSuccess {
				require.NoError(testInstance, creationError)
				require.NotNil(testInstance, executor)
			} else {
				require.Error(testInstance, creationError)
				require.ErrorIs(testInstance, creationError, testCase.expectError)
			}
		})
	}
}

func TestShellExecutorExecuteBehavior(testInstance *testing.T) {
	testCases := []struct {
		name             string
		runnerResult     execshell.ExecutionResult
		runnerError      error
		expectErrorType  any
		expectedLogCount int
	}{
		{
			name: testExecutionSuccessCaseNameConstant,
			runnerResult: execshell.ExecutionResult{
				StandardOutput: "ok",
				ExitCode:       0,
			},
			expectedLogCount: 2,
		},
		{
			name: testExecutionFailureCaseNameConstant,
			runnerResult: execshell.ExecutionResult{
				StandardError: testStandardErrorOutputConstant,
				ExitCode:      1,
			},
			expectErrorType:  execshell.CommandFailedError{},
			expectedLogCount: 2,
		},
		{
			name:             testExecutionRunnerErrorCaseNameConstant,
			runnerError:      errors.New("runner failure"),
			expectErrorType:  execshell.CommandExecutionError{},
			expectedLogCount: 2,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observerLogs := observer.New(zap.DebugLevel)
			logger := zap.New(observerCore)

			recordingRunner := &recordingCommandRunner{
				executionResult: testCase.runnerResult,
				executionError:  testCase.runnerError,
			}

			shellExecutor, creationError := execshell.NewShellExecutor(logger, recordingRunner)
			require.NoError(testInstance, creationError)

			commandDetails := execshell.CommandDetails{Arguments: []string{testCommandArgumentConstant}, WorkingDirectory: testWorkingDirectoryConstant}
			executionResult, executionError := shellExecutor.ExecuteGit(context.Background(), commandDetails)

			if testCase.expectErrorType != nil {
				require.Error(testInstance, executionError)
				require.IsType(testInstance, testCase.expectErrorType, executionError)
				require.Empty(testInstance, executionResult.StandardOutput)
			} else {
				require.NoError(testInstance, executionError)
				require.Equal(testInstance, testCase.runnerResult.StandardOutput, executionResult.StandardOutput)
			}

			require.Len(testInstance, observerLogs.All(), testCase.expectedLogCount)
		})
	}
}

func TestShellExecutorGitDisablesTerminalPrompts(testInstance *testing.T) {
	recordingRunner := &recordingCommandRunner{executionResult: execshell.ExecutionResult{StandardOutput: "main\n"}}
	executor, creationError := execshell.NewShellExecutor(zap.NewNop(), recordingRunner)
	require.NoError(testInstance, creationError)

	callerEnvironment := map[string]string{"GIT_AUTHOR_NAME": "Mergix"}
	_, executionError := executor.ExecuteGit(context.Background(), execshell.CommandDetails{
		Arguments:            []string{"rev-parse", "--abbrev-ref", "HEAD"},
		EnvironmentVariables: callerEnvironment,
	})
	require.NoError(testInstance, executionError)

	require.Len(testInstance, recordingRunner.recordedCommands, 1)
	recordedCommand := recordingRunner.recordedCommands[0]
	require.Equal(testInstance, execshell.CommandGit, recordedCommand.Name)
	require.Equal(testInstance, "0", recordedCommand.Details.EnvironmentVariables["GIT_TERMINAL_PROMPT"])
	require.Equal(testInstance, "Mergix", recordedCommand.Details.EnvironmentVariables["GIT_AUTHOR_NAME"])
	require.NotContains(testInstance, callerEnvironment, "GIT_TERMINAL_PROMPT")
}

func recordingHooks(events *[]string) execshell.CommandEventHooks {
	return execshell.CommandEventHooks{
		OnStarted: func(execshell.ShellCommand) {
			*events = append(*events, "started")
		},
		OnCompleted: func(_ execshell.ShellCommand, result execshell.ExecutionResult) {
			if result.ExitCode == 0 {
				*events = append(*events, "completed")
				return
			}
			*events = append(*events, "completed_with_failure")
		},
		OnFailed: func(execshell.ShellCommand, error) {
			*events = append(*events, "execution_failed")
		},
	}
}

func TestShellExecutorNotifiesObserver(testInstance *testing.T) {
	testCases := []struct {
		name           string
		runnerResult   execshell.ExecutionResult
		runnerError    error
		expectedEvents []string
	}{
		{
			name:           testExecutionSuccessCaseNameConstant,
			expectedEvents: []string{"started", "completed"},
		},
		{
			name:           testExecutionFailureCaseNameConstant,
			runnerResult:   execshell.ExecutionResult{ExitCode: 1},
			expectedEvents: []string{"started", "completed_with_failure"},
		},
		{
			name:           testExecutionRunnerErrorCaseNameConstant,
			runnerError:    errors.New("runner failure"),
			expectedEvents: []string{"started", "execution_failed"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			events := []string{}
			recordingRunner := &recordingCommandRunner{executionResult: testCase.runnerResult, executionError: testCase.runnerError}
			executor, creationError := execshell.NewShellExecutor(zap.NewNop(), recordingRunner, execshell.WithCommandEventObserver(recordingHooks(&events)))
			require.NoError(testInstance, creationError)

			_, _ = executor.ExecuteGit(context.Background(), execshell.CommandDetails{Arguments: []string{"status"}})
			require.Equal(testInstance, testCase.expectedEvents, events)
		})
	}
}

func TestShellExecutorSkipsMissingHooks(testInstance *testing.T) {
	recordingRunner := &recordingCommandRunner{}
	executor, creationError := execshell.NewShellExecutor(zap.NewNop(), recordingRunner, execshell.WithCommandEventObserver(execshell.CommandEventHooks{}))
	require.NoError(testInstance, creationError)

	_, executionError := executor.ExecuteGit(context.Background(), execshell.CommandDetails{Arguments: []string{"status"}})
	require.NoError(testInstance, executionError)
}

func TestCommandFailedErrorExposesResult(testInstance *testing.T) {
	recordingRunner := &recordingCommandRunner{executionResult: execshell.ExecutionResult{StandardOutput: "CONFLICT", StandardError: " merge failed \n", ExitCode: 1}}
	executor, creationError := execshell.NewShellExecutor(zap.NewNop(), recordingRunner)
	require.NoError(testInstance, creationError)

	_, executionError := executor.ExecuteGit(context.Background(), execshell.CommandDetails{Arguments: []string{"merge", "--no-commit", "--no-ff", "feature"}})

	var failedError execshell.CommandFailedError
	require.True(testInstance, errors.As(executionError, &failedError))
	require.Equal(testInstance, "CONFLICT", failedError.Result.StandardOutput)
	require.Equal(testInstance, "git exited with code 1: merge failed", failedError.Error())
}
