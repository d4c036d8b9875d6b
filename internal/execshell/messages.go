package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	commandWithArgumentsTemplateConstant    = "%s %s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	flagPrefixConstant                      = "-"
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
)

const (
	gitRevParseSubcommandNameConstant     = "rev-parse"
	gitAbbrevRefFlagConstant              = "--abbrev-ref"
	gitHeadReferenceConstant              = "HEAD"
	gitRemoteSubcommandNameConstant       = "remote"
	gitRemoteGetURLSubcommandNameConstant = "get-url"
	gitStatusSubcommandNameConstant       = "status"
	gitCheckoutSubcommandNameConstant     = "checkout"
	gitCreateBranchFlagConstant           = "-b"
	gitBranchSubcommandNameConstant       = "branch"
	gitMergeSubcommandNameConstant        = "merge"
	gitAbortFlagConstant                  = "--abort"
	gitAddSubcommandNameConstant          = "add"
	gitCommitSubcommandNameConstant       = "commit"
	gitMessageFlagConstant                = "-m"
)

const (
	gitCurrentBranchStartTemplateConstant             = "Identifying current branch in %s"
	gitCurrentBranchSuccessTemplateConstant           = "Current branch in %s is %s"
	gitCurrentBranchDetachedSuccessTemplateConstant   = "%s is in a detached HEAD state"
	gitCurrentBranchFailureTemplateConstant           = "Failed to identify current branch in %s (exit code %d%s)"
	gitCurrentBranchExecutionFailureTemplateConstant  = "Unable to identify current branch in %s: %s"
	gitRemoteLookupStartTemplateConstant              = "Checking %s remote for %s"
	gitRemoteLookupSuccessTemplateConstant            = "%s remote for %s points to %s"
	gitRemoteLookupFailureTemplateConstant            = "Failed to read %s remote for %s (exit code %d%s)"
	gitRemoteLookupExecutionFailureTemplateConstant   = "Unable to read %s remote for %s: %s"
	gitStatusStartTemplateConstant                    = "Reviewing working tree status in %s"
	gitStatusSuccessTemplateConstant                  = "Collected working tree status for %s"
	gitStatusFailureTemplateConstant                  = "Failed to review working tree status in %s (exit code %d%s)"
	gitStatusExecutionFailureTemplateConstant         = "Unable to review working tree status in %s: %s"
	gitCheckoutStartTemplateConstant                  = "Switching %s to branch %s"
	gitCheckoutSuccessTemplateConstant                = "%s now on branch %s"
	gitCheckoutFailureTemplateConstant                = "Failed to switch %s to branch %s (exit code %d%s)"
	gitCheckoutExecutionFailureTemplateConstant       = "Unable to switch %s to branch %s: %s"
	gitBranchCreationStartTemplateConstant            = "Creating branch %s in %s"
	gitBranchCreationSuccessTemplateConstant          = "Created branch %s in %s"
	gitBranchCreationFailureTemplateConstant          = "Failed to create branch %s in %s (exit code %d%s)"
	gitBranchCreationExecutionFailureTemplateConstant = "Unable to create branch %s in %s: %s"
	gitBranchListStartTemplateConstant                = "Listing local branches in %s"
	gitBranchListSuccessTemplateConstant              = "Listed local branches in %s"
	gitBranchListFailureTemplateConstant              = "Failed to list local branches in %s (exit code %d%s)"
	gitBranchListExecutionFailureTemplateConstant     = "Unable to list local branches in %s: %s"
	gitMergeStartTemplateConstant                     = "Merging %s into the current branch in %s"
	gitMergeSuccessTemplateConstant                   = "Merged %s in %s without conflicts"
	gitMergeFailureTemplateConstant                   = "Merging %s in %s stopped (exit code %d%s)"
	gitMergeExecutionFailureTemplateConstant          = "Unable to merge %s in %s: %s"
	gitMergeAbortStartTemplateConstant                = "Aborting merge in %s"
	gitMergeAbortSuccessTemplateConstant              = "Aborted merge in %s"
	gitMergeAbortFailureTemplateConstant              = "Failed to abort merge in %s (exit code %d%s)"
	gitMergeAbortExecutionFailureTemplateConstant     = "Unable to abort merge in %s: %s"
	gitAddStartTemplateConstant                       = "Staging %s in %s"
	gitAddSuccessTemplateConstant                     = "Staged %s in %s"
	gitAddFailureTemplateConstant                     = "Failed to stage %s in %s (exit code %d%s)"
	gitAddExecutionFailureTemplateConstant            = "Unable to stage %s in %s: %s"
	gitCommitStartTemplateConstant                    = "Creating commit in %s with message %q"
	gitCommitSuccessTemplateConstant                  = "Created commit in %s with message %q"
	gitCommitFailureTemplateConstant                  = "Failed to create commit in %s with message %q (exit code %d%s)"
	gitCommitExecutionFailureTemplateConstant         = "Unable to create commit in %s with message %q: %s"
)

// stageTemplates groups the four lifecycle templates of one git operation.
type stageTemplates struct {
	start            string
	success          string
	failure          string
	executionFailure string
}

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a command that exited with a zero code.
// Some messages quote the command output, such as the resolved branch name.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if command.Name != CommandGit || len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	arguments := command.Details.Arguments
	workingDirectory := formatter.describeWorkingDirectory(command)

	switch strings.TrimSpace(arguments[0]) {
	case gitRevParseSubcommandNameConstant:
		if containsArgument(arguments, gitAbbrevRefFlagConstant) {
			return formatter.describeCurrentBranchMessage(workingDirectory, result, failure, stage)
		}
	case gitRemoteSubcommandNameConstant:
		if formatter.argumentAtIndex(arguments, 1) == gitRemoteGetURLSubcommandNameConstant {
			return formatter.describeRemoteLookupMessage(command, result, failure, stage)
		}
	case gitStatusSubcommandNameConstant:
		templates := stageTemplates{gitStatusStartTemplateConstant, gitStatusSuccessTemplateConstant, gitStatusFailureTemplateConstant, gitStatusExecutionFailureTemplateConstant}
		return formatter.formatStage(templates, []any{workingDirectory}, result, failure, stage)
	case gitCheckoutSubcommandNameConstant:
		branchName := formatter.ensureValue(formatter.extractFirstNonFlagArgument(arguments[1:]))
		if containsArgument(arguments, gitCreateBranchFlagConstant) {
			branchName = formatter.ensureValue(formatter.flagValue(arguments, gitCreateBranchFlagConstant))
			templates := stageTemplates{gitBranchCreationStartTemplateConstant, gitBranchCreationSuccessTemplateConstant, gitBranchCreationFailureTemplateConstant, gitBranchCreationExecutionFailureTemplateConstant}
			return formatter.formatStage(templates, []any{branchName, workingDirectory}, result, failure, stage)
		}
		templates := stageTemplates{gitCheckoutStartTemplateConstant, gitCheckoutSuccessTemplateConstant, gitCheckoutFailureTemplateConstant, gitCheckoutExecutionFailureTemplateConstant}
		return formatter.formatStage(templates, []any{workingDirectory, branchName}, result, failure, stage)
	case gitBranchSubcommandNameConstant:
		templates := stageTemplates{gitBranchListStartTemplateConstant, gitBranchListSuccessTemplateConstant, gitBranchListFailureTemplateConstant, gitBranchListExecutionFailureTemplateConstant}
		return formatter.formatStage(templates, []any{workingDirectory}, result, failure, stage)
	case gitMergeSubcommandNameConstant:
		if containsArgument(arguments, gitAbortFlagConstant) {
			templates := stageTemplates{gitMergeAbortStartTemplateConstant, gitMergeAbortSuccessTemplateConstant, gitMergeAbortFailureTemplateConstant, gitMergeAbortExecutionFailureTemplateConstant}
			return formatter.formatStage(templates, []any{workingDirectory}, result, failure, stage)
		}
		branchName := formatter.ensureValue(formatter.extractLastNonFlagArgument(arguments[1:]))
		templates := stageTemplates{gitMergeStartTemplateConstant, gitMergeSuccessTemplateConstant, gitMergeFailureTemplateConstant, gitMergeExecutionFailureTemplateConstant}
		return formatter.formatStage(templates, []any{branchName, workingDirectory}, result, failure, stage)
	case gitAddSubcommandNameConstant:
		targetPath := formatter.ensureValue(formatter.extractLastNonFlagArgument(arguments[1:]))
		templates := stageTemplates{gitAddStartTemplateConstant, gitAddSuccessTemplateConstant, gitAddFailureTemplateConstant, gitAddExecutionFailureTemplateConstant}
		return formatter.formatStage(templates, []any{targetPath, workingDirectory}, result, failure, stage)
	case gitCommitSubcommandNameConstant:
		commitMessage := formatter.ensureValue(formatter.flagValue(arguments, gitMessageFlagConstant))
		templates := stageTemplates{gitCommitStartTemplateConstant, gitCommitSuccessTemplateConstant, gitCommitFailureTemplateConstant, gitCommitExecutionFailureTemplateConstant}
		return formatter.formatStage(templates, []any{workingDirectory, commitMessage}, result, failure, stage)
	}

	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) describeCurrentBranchMessage(workingDirectory string, result ExecutionResult, failure error, stage messageStage) string {
	if stage == messageStageSuccess {
		trimmed := strings.TrimSpace(result.StandardOutput)
		if len(trimmed) == 0 || strings.EqualFold(trimmed, gitHeadReferenceConstant) {
			return fmt.Sprintf(gitCurrentBranchDetachedSuccessTemplateConstant, workingDirectory)
		}
		return fmt.Sprintf(gitCurrentBranchSuccessTemplateConstant, workingDirectory, trimmed)
	}
	templates := stageTemplates{gitCurrentBranchStartTemplateConstant, emptyStringConstant, gitCurrentBranchFailureTemplateConstant, gitCurrentBranchExecutionFailureTemplateConstant}
	return formatter.formatStage(templates, []any{workingDirectory}, result, failure, stage)
}

func (formatter CommandMessageFormatter) describeRemoteLookupMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	remoteName := formatter.ensureValue(formatter.argumentAtIndex(command.Details.Arguments, 2))
	if stage == messageStageSuccess {
		return fmt.Sprintf(gitRemoteLookupSuccessTemplateConstant, remoteName, workingDirectory, formatter.ensureValue(result.StandardOutput))
	}
	templates := stageTemplates{gitRemoteLookupStartTemplateConstant, emptyStringConstant, gitRemoteLookupFailureTemplateConstant, gitRemoteLookupExecutionFailureTemplateConstant}
	return formatter.formatStage(templates, []any{remoteName, workingDirectory}, result, failure, stage)
}

// formatStage renders the template for stage. Failure templates receive the exit code and
// standard error suffix after the subject values; execution failures receive the cause.
func (formatter CommandMessageFormatter) formatStage(templates stageTemplates, subjects []any, result ExecutionResult, failure error, stage messageStage) string {
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(templates.start, subjects...)
	case messageStageSuccess:
		return fmt.Sprintf(templates.success, subjects...)
	case messageStageFailure:
		failureValues := append(append([]any{}, subjects...), result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		return fmt.Sprintf(templates.failure, failureValues...)
	case messageStageExecutionFailure:
		failureValues := append(append([]any{}, subjects...), formatter.describeFailure(failure))
		return fmt.Sprintf(templates.executionFailure, failureValues...)
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = fmt.Sprintf(commandWithArgumentsTemplateConstant, commandLabel, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index >= 0 && index < len(arguments) {
		return strings.TrimSpace(arguments[index])
	}
	return emptyStringConstant
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmed
}

func (formatter CommandMessageFormatter) flagValue(arguments []string, flag string) string {
	for index := 0; index < len(arguments); index++ {
		if strings.TrimSpace(arguments[index]) == flag && index+1 < len(arguments) {
			return strings.TrimSpace(arguments[index+1])
		}
	}
	return emptyStringConstant
}

func (formatter CommandMessageFormatter) extractFirstNonFlagArgument(arguments []string) string {
	for _, argument := range arguments {
		trimmed := strings.TrimSpace(argument)
		if len(trimmed) == 0 || strings.HasPrefix(trimmed, flagPrefixConstant) {
			continue
		}
		return trimmed
	}
	return emptyStringConstant
}

func (formatter CommandMessageFormatter) extractLastNonFlagArgument(arguments []string) string {
	for index := len(arguments) - 1; index >= 0; index-- {
		trimmed := strings.TrimSpace(arguments[index])
		if len(trimmed) == 0 || strings.HasPrefix(trimmed, flagPrefixConstant) {
			continue
		}
		return trimmed
	}
	return emptyStringConstant
}
