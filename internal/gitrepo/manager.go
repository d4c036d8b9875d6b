package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/temirov/mergix/internal/execshell"
)

const (
	gitRevParseSubcommandConstant        = "rev-parse"
	gitAbbrevRefFlagConstant             = "--abbrev-ref"
	gitHeadReferenceConstant             = "HEAD"
	gitShowToplevelFlagConstant          = "--show-toplevel"
	gitBranchSubcommandConstant          = "branch"
	gitBranchFormatFlagConstant          = "--format=%(refname:short)"
	gitCheckoutSubcommandConstant        = "checkout"
	gitCreateBranchFlagConstant          = "-b"
	gitMergeSubcommandConstant           = "merge"
	gitNoCommitFlagConstant              = "--no-commit"
	gitNoFastForwardFlagConstant         = "--no-ff"
	gitAbortFlagConstant                 = "--abort"
	gitStatusSubcommandConstant          = "status"
	gitPorcelainFlagConstant             = "--porcelain"
	gitAddSubcommandConstant             = "add"
	gitPathSeparatorArgumentConstant     = "--"
	gitCommitSubcommandConstant          = "commit"
	gitMessageFlagConstant               = "-m"
	gitRemoteSubcommandConstant          = "remote"
	gitGetURLSubcommandConstant          = "get-url"
	porcelainStatusWidthConstant         = 2
	porcelainPathOffsetConstant          = 3
	porcelainQuoteConstant               = `"`
	lineSeparatorConstant                = "\n"
	carriageReturnConstant               = "\r"
	requiredValueMessageConstant         = "value required"
	executorNotConfiguredMessageConstant = "git executor not configured"
	detachedHeadMessageConstant          = "repository is in a detached HEAD state"
	branchNameFieldConstant              = "branch name"
	filePathFieldConstant                = "file path"
	commitMessageFieldConstant           = "commit message"
	remoteNameFieldConstant              = "remote name"
	invalidInputErrorTemplateConstant    = "%s: %s"
	operationErrorTemplateConstant       = "%s failed: %w"
	currentBranchOperationConstant       = "current branch lookup"
	listBranchesOperationConstant        = "branch listing"
	checkoutOperationConstant            = "checkout"
	createBranchOperationConstant        = "branch creation"
	mergeOperationConstant               = "merge"
	abortMergeOperationConstant          = "merge abort"
	statusOperationConstant              = "status"
	stageOperationConstant               = "staging"
	commitOperationConstant              = "commit"
	remoteLookupOperationConstant        = "remote lookup"
	repositoryRootOperationConstant      = "repository root lookup"
)

var (
	// ErrGitExecutorNotConfigured indicates NewRepositoryManager received a nil executor.
	ErrGitExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
	// ErrDetachedHead indicates HEAD does not point at a branch.
	ErrDetachedHead = errors.New(detachedHeadMessageConstant)
)

// Unmerged porcelain status codes.
const (
	UnmergedBothModified  = "UU"
	UnmergedBothAdded     = "AA"
	UnmergedBothDeleted   = "DD"
	UnmergedAddedByUs     = "AU"
	UnmergedAddedByThem   = "UA"
	UnmergedDeletedByUs   = "DU"
	UnmergedDeletedByThem = "UD"
)

var unmergedStatusDescriptions = map[string]string{
	UnmergedBothModified:  "both modified",
	UnmergedBothAdded:     "both added",
	UnmergedBothDeleted:   "both deleted",
	UnmergedAddedByUs:     "added by us",
	UnmergedAddedByThem:   "added by them",
	UnmergedDeletedByUs:   "deleted by us",
	UnmergedDeletedByThem: "deleted by them",
}

// UnmergedPath is one unmerged index entry.
type UnmergedPath struct {
	Path   string
	Status string
}

// HasConflictMarkers reports whether git wrote both sides of the entry into the working tree
// file. The remaining codes describe a deletion or rename on one side and leave no markers.
func (entry UnmergedPath) HasConflictMarkers() bool {
	return entry.Status == UnmergedBothModified || entry.Status == UnmergedBothAdded
}

// Description names the status code the way git status does.
func (entry UnmergedPath) Description() string {
	if description, found := unmergedStatusDescriptions[entry.Status]; found {
		return description
	}
	return entry.Status
}

// InvalidInputError reports a missing or malformed argument.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// MergeOutcome describes the result of a merge attempt that git was able to run.
type MergeOutcome struct {
	Clean          bool
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// RepositoryManager runs the git operations needed to merge branches in a working tree.
type RepositoryManager struct {
	executor execshell.GitExecutor
}

// NewRepositoryManager constructs a RepositoryManager backed by executor.
func NewRepositoryManager(executor execshell.GitExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// GetCurrentBranch returns the checked out branch name.
func (manager *RepositoryManager) GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error) {
	result, executionError := manager.run(executionContext, repositoryPath, gitRevParseSubcommandConstant, gitAbbrevRefFlagConstant, gitHeadReferenceConstant)
	if executionError != nil {
		return "", fmt.Errorf(operationErrorTemplateConstant, currentBranchOperationConstant, executionError)
	}
	branchName := strings.TrimSpace(result.StandardOutput)
	if len(branchName) == 0 || branchName == gitHeadReferenceConstant {
		return "", ErrDetachedHead
	}
	return branchName, nil
}

// ListBranches returns local branch names in the order git reports them.
func (manager *RepositoryManager) ListBranches(executionContext context.Context, repositoryPath string) ([]string, error) {
	result, executionError := manager.run(executionContext, repositoryPath, gitBranchSubcommandConstant, gitBranchFormatFlagConstant)
	if executionError != nil {
		return nil, fmt.Errorf(operationErrorTemplateConstant, listBranchesOperationConstant, executionError)
	}

	branches := []string{}
	for _, line := range strings.Split(result.StandardOutput, lineSeparatorConstant) {
		branchName := strings.TrimSpace(line)
		if len(branchName) == 0 {
			continue
		}
		branches = append(branches, branchName)
	}
	return branches, nil
}

// CheckoutBranch switches the working tree to branchName.
func (manager *RepositoryManager) CheckoutBranch(executionContext context.Context, repositoryPath string, branchName string) error {
	trimmedBranch := strings.TrimSpace(branchName)
	if len(trimmedBranch) == 0 {
		return InvalidInputError{FieldName: branchNameFieldConstant, Message: requiredValueMessageConstant}
	}
	if _, executionError := manager.run(executionContext, repositoryPath, gitCheckoutSubcommandConstant, trimmedBranch); executionError != nil {
		return fmt.Errorf(operationErrorTemplateConstant, checkoutOperationConstant, executionError)
	}
	return nil
}

// CreateBranch creates branchName and checks it out. An empty startPoint branches from HEAD.
func (manager *RepositoryManager) CreateBranch(executionContext context.Context, repositoryPath string, branchName string, startPoint string) error {
	trimmedBranch := strings.TrimSpace(branchName)
	if len(trimmedBranch) == 0 {
		return InvalidInputError{FieldName: branchNameFieldConstant, Message: requiredValueMessageConstant}
	}

	arguments := []string{gitCheckoutSubcommandConstant, gitCreateBranchFlagConstant, trimmedBranch}
	if trimmedStartPoint := strings.TrimSpace(startPoint); len(trimmedStartPoint) > 0 {
		arguments = append(arguments, trimmedStartPoint)
	}
	if _, executionError := manager.run(executionContext, repositoryPath, arguments...); executionError != nil {
		return fmt.Errorf(operationErrorTemplateConstant, createBranchOperationConstant, executionError)
	}
	return nil
}

// MergeWithoutCommit merges branchName into the current branch with --no-commit --no-ff.
// A non-zero git exit is reported through MergeOutcome rather than as an error so the
// caller can inspect unmerged files.
func (manager *RepositoryManager) MergeWithoutCommit(executionContext context.Context, repositoryPath string, branchName string) (MergeOutcome, error) {
	trimmedBranch := strings.TrimSpace(branchName)
	if len(trimmedBranch) == 0 {
		return MergeOutcome{}, InvalidInputError{FieldName: branchNameFieldConstant, Message: requiredValueMessageConstant}
	}

	result, executionError := manager.run(executionContext, repositoryPath, gitMergeSubcommandConstant, gitNoCommitFlagConstant, gitNoFastForwardFlagConstant, trimmedBranch)
	if executionError != nil {
		var failedError execshell.CommandFailedError
		if errors.As(executionError, &failedError) {
			return MergeOutcome{
				Clean:          false,
				StandardOutput: failedError.Result.StandardOutput,
				StandardError:  failedError.Result.StandardError,
				ExitCode:       failedError.Result.ExitCode,
			}, nil
		}
		return MergeOutcome{}, fmt.Errorf(operationErrorTemplateConstant, mergeOperationConstant, executionError)
	}

	return MergeOutcome{Clean: true, StandardOutput: result.StandardOutput, StandardError: result.StandardError}, nil
}

// AbortMerge restores the state before the in-progress merge.
func (manager *RepositoryManager) AbortMerge(executionContext context.Context, repositoryPath string) error {
	if _, executionError := manager.run(executionContext, repositoryPath, gitMergeSubcommandConstant, gitAbortFlagConstant); executionError != nil {
		return fmt.Errorf(operationErrorTemplateConstant, abortMergeOperationConstant, executionError)
	}
	return nil
}

// RepositoryRoot returns the top-level directory of the working tree containing repositoryPath.
func (manager *RepositoryManager) RepositoryRoot(executionContext context.Context, repositoryPath string) (string, error) {
	result, executionError := manager.run(executionContext, repositoryPath, gitRevParseSubcommandConstant, gitShowToplevelFlagConstant)
	if executionError != nil {
		return "", fmt.Errorf(operationErrorTemplateConstant, repositoryRootOperationConstant, executionError)
	}
	return strings.TrimSpace(result.StandardOutput), nil
}

// UnmergedFiles lists the entries git reports as unmerged in porcelain status output.
func (manager *RepositoryManager) UnmergedFiles(executionContext context.Context, repositoryPath string) ([]UnmergedPath, error) {
	result, executionError := manager.run(executionContext, repositoryPath, gitStatusSubcommandConstant, gitPorcelainFlagConstant)
	if executionError != nil {
		return nil, fmt.Errorf(operationErrorTemplateConstant, statusOperationConstant, executionError)
	}
	return ParseUnmergedPaths(result.StandardOutput), nil
}

// CheckCleanWorktree reports whether git status lists no changes at all.
func (manager *RepositoryManager) CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error) {
	result, executionError := manager.run(executionContext, repositoryPath, gitStatusSubcommandConstant, gitPorcelainFlagConstant)
	if executionError != nil {
		return false, fmt.Errorf(operationErrorTemplateConstant, statusOperationConstant, executionError)
	}
	return len(strings.TrimSpace(result.StandardOutput)) == 0, nil
}

// StageFile adds filePath to the index.
func (manager *RepositoryManager) StageFile(executionContext context.Context, repositoryPath string, filePath string) error {
	if len(strings.TrimSpace(filePath)) == 0 {
		return InvalidInputError{FieldName: filePathFieldConstant, Message: requiredValueMessageConstant}
	}
	if _, executionError := manager.run(executionContext, repositoryPath, gitAddSubcommandConstant, gitPathSeparatorArgumentConstant, filePath); executionError != nil {
		return fmt.Errorf(operationErrorTemplateConstant, stageOperationConstant, executionError)
	}
	return nil
}

// Commit records the index with message.
func (manager *RepositoryManager) Commit(executionContext context.Context, repositoryPath string, message string) error {
	if len(strings.TrimSpace(message)) == 0 {
		return InvalidInputError{FieldName: commitMessageFieldConstant, Message: requiredValueMessageConstant}
	}
	if _, executionError := manager.run(executionContext, repositoryPath, gitCommitSubcommandConstant, gitMessageFlagConstant, message); executionError != nil {
		return fmt.Errorf(operationErrorTemplateConstant, commitOperationConstant, executionError)
	}
	return nil
}

// GetRemoteURL returns the fetch URL configured for remoteName.
func (manager *RepositoryManager) GetRemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error) {
	trimmedRemote := strings.TrimSpace(remoteName)
	if len(trimmedRemote) == 0 {
		return "", InvalidInputError{FieldName: remoteNameFieldConstant, Message: requiredValueMessageConstant}
	}
	result, executionError := manager.run(executionContext, repositoryPath, gitRemoteSubcommandConstant, gitGetURLSubcommandConstant, trimmedRemote)
	if executionError != nil {
		return "", fmt.Errorf(operationErrorTemplateConstant, remoteLookupOperationConstant, executionError)
	}
	return strings.TrimSpace(result.StandardOutput), nil
}

func (manager *RepositoryManager) run(executionContext context.Context, repositoryPath string, arguments ...string) (execshell.ExecutionResult, error) {
	return manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: repositoryPath,
	})
}

// ParseUnmergedPaths extracts the unmerged entries from `git status --porcelain` output.
// Quoted paths are unquoted.
func ParseUnmergedPaths(porcelainOutput string) []UnmergedPath {
	entries := []UnmergedPath{}
	for _, line := range strings.Split(porcelainOutput, lineSeparatorConstant) {
		trimmedLine := strings.TrimRight(line, carriageReturnConstant)
		if len(trimmedLine) <= porcelainPathOffsetConstant {
			continue
		}
		statusCode := trimmedLine[:porcelainStatusWidthConstant]
		if _, unmerged := unmergedStatusDescriptions[statusCode]; !unmerged {
			continue
		}
		entries = append(entries, UnmergedPath{
			Path:   unquotePorcelainPath(trimmedLine[porcelainPathOffsetConstant:]),
			Status: statusCode,
		})
	}
	return entries
}

func unquotePorcelainPath(path string) string {
	if !strings.HasPrefix(path, porcelainQuoteConstant) || !strings.HasSuffix(path, porcelainQuoteConstant) {
		return path
	}
	unquoted, unquoteError := strconv.Unquote(path)
	if unquoteError != nil {
		return path
	}
	return unquoted
}
