package merge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/mergix/internal/gitrepo"
)

const (
	insufficientBranchesMessageConstant      = "at least two branches are required to merge"
	gitManagerNotConfiguredMessageConstant   = "git repository manager not configured"
	fileResolverNotConfiguredMessageConstant = "conflict file resolver not configured"
	currentBranchErrorTemplateConstant       = "failed to determine the current branch: %w"
	repositoryRootErrorTemplateConstant      = "failed to locate the repository root: %w"
	temporaryBranchErrorTemplateConstant     = "failed to create temporary branch %s: %w"
	baseCheckoutErrorTemplateConstant        = "failed to check out base branch %s: %w"
	cleanCommitMessageTemplateConstant       = "Merge branch '%s' without conflicts"
	resolvedCommitMessageTemplateConstant    = "Merge branch '%s' with resolved conflicts"
	baseBranchMessageTemplateConstant        = "Base branch: %s"
	branchesMessageTemplateConstant          = "Branches to merge: %s"
	temporaryBranchMessageTemplateConstant   = "Created temporary branch: %s"
	mergingBranchMessageTemplateConstant     = "\nMerging branch: %s"
	skippingBranchMessageTemplateConstant    = "Skipping %s: it is the base or temporary branch"
	conflictsDetectedMessageTemplateConstant = "Conflicts detected in %d files:"
	conflictedFileMessageTemplateConstant    = "  - %s"
	resolvedFileMessageTemplateConstant      = "Resolved conflicts in %s"
	failedFileMessageTemplateConstant        = "Failed to resolve conflicts in %s: %v"
	unexpectedMergeFailureMessageConstant    = "Unexpected error during merge."
	deletionConflictMessageTemplateConstant  = "Cannot resolve %s: %s. Resolve it by hand and commit, or delete the temporary branch."
	deletionConflictErrorTemplateConstant    = "%d files have deletion conflicts without conflict markers: %s"
	nothingToCommitMessageTemplateConstant   = "Nothing to commit for %s; the base already contains it."
	branchListSeparatorConstant              = ", "
	readFileErrorTemplateConstant            = "unable to read %s: %w"
	writeFileErrorTemplateConstant           = "unable to write %s: %w"
	stageFileErrorTemplateConstant           = "unable to stage %s: %w"
	commitErrorTemplateConstant              = "unable to commit merge of %s: %w"
	mergeErrorTemplateConstant               = "unable to merge %s: %w"
	abortErrorTemplateConstant               = "unable to abort merge of %s: %w"
	temporaryBranchTemplateConstant          = "%s%d"
	mergeStartedLogMessageConstant           = "multi-branch merge started"
	branchMergedLogMessageConstant           = "branch merged"
	branchFailedLogMessageConstant           = "branch merge failed"
	abortFailedLogMessageConstant            = "merge abort failed"
	mergeFinishedLogMessageConstant          = "multi-branch merge finished"
	logFieldBaseBranchConstant               = "base_branch"
	logFieldTemporaryBranchConstant          = "temporary_branch"
	logFieldBranchesConstant                 = "branches"
	logFieldBranchConstant                   = "branch"
	logFieldStatusConstant                   = "status"
	logFieldSucceededConstant                = "succeeded"
)

var (
	// ErrInsufficientBranches indicates that fewer than two branches were requested.
	ErrInsufficientBranches = errors.New(insufficientBranchesMessageConstant)
	// ErrGitManagerNotConfigured indicates that NewService received no repository manager.
	ErrGitManagerNotConfigured = errors.New(gitManagerNotConfiguredMessageConstant)
	// ErrFileResolverNotConfigured indicates that NewService received no conflict file resolver.
	ErrFileResolverNotConfigured = errors.New(fileResolverNotConfiguredMessageConstant)
)

// BranchStatus describes what happened to one requested branch.
type BranchStatus string

// Branch outcome statuses.
const (
	StatusMerged                      BranchStatus = "merged"
	StatusMergedWithResolvedConflicts BranchStatus = "merged_with_resolved_conflicts"
	StatusConflictResolutionFailed    BranchStatus = "conflict_resolution_failed"
	StatusMergeFailed                 BranchStatus = "merge_failed"
	StatusSkipped                     BranchStatus = "skipped"
)

// Options describes a multi-branch merge request.
type Options struct {
	RepositoryPath string
	Branches       []string
	BaseBranch     string
	Resolution     ResolutionOptions
}

// BranchOutcome records the result of merging one branch.
type BranchOutcome struct {
	Branch          string
	Status          BranchStatus
	ConflictedFiles []string
	Detail          string
}

// Result summarizes a multi-branch merge.
type Result struct {
	BaseBranch      string
	TemporaryBranch string
	Outcomes        []BranchOutcome
	Succeeded       bool
}

// ServiceDependencies lists the collaborators of Service.
type ServiceDependencies struct {
	Logger            *zap.Logger
	GitManager        GitRepositoryManager
	FileSystem        FileSystem
	FileResolver      ConflictFileResolver
	Output            io.Writer
	ProcessIdentifier ProcessIdentifier
	Configuration     Configuration
}

// Service merges several branches into a fresh temporary branch.
type Service struct {
	logger                *zap.Logger
	gitManager            GitRepositoryManager
	fileSystem            FileSystem
	fileResolver          ConflictFileResolver
	output                io.Writer
	processIdentifier     ProcessIdentifier
	temporaryBranchPrefix string
}

// NewService validates dependencies and constructs a Service.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.GitManager == nil {
		return nil, ErrGitManagerNotConfigured
	}
	if dependencies.FileResolver == nil {
		return nil, ErrFileResolverNotConfigured
	}

	service := &Service{
		logger:                dependencies.Logger,
		gitManager:            dependencies.GitManager,
		fileSystem:            dependencies.FileSystem,
		fileResolver:          dependencies.FileResolver,
		output:                dependencies.Output,
		processIdentifier:     dependencies.ProcessIdentifier,
		temporaryBranchPrefix: dependencies.Configuration.sanitize().TemporaryBranchPrefix,
	}
	if service.logger == nil {
		service.logger = zap.NewNop()
	}
	if service.fileSystem == nil {
		service.fileSystem = OSFileSystem{}
	}
	if service.output == nil {
		service.output = io.Discard
	}
	if service.processIdentifier == nil {
		service.processIdentifier = os.Getpid
	}
	return service, nil
}

// Merge creates the temporary branch from the base and merges each branch into it in order.
// The first branch that cannot be merged cleanly or resolved stops the run; its merge is aborted.
func (service *Service) Merge(executionContext context.Context, options Options) (Result, error) {
	branches := sanitizeBranches(options.Branches)
	if len(branches) < 2 {
		return Result{}, ErrInsufficientBranches
	}

	repositoryRoot, rootError := service.gitManager.RepositoryRoot(executionContext, options.RepositoryPath)
	if rootError != nil {
		return Result{}, fmt.Errorf(repositoryRootErrorTemplateConstant, rootError)
	}
	if len(repositoryRoot) == 0 {
		repositoryRoot = options.RepositoryPath
	}

	baseBranch := strings.TrimSpace(options.BaseBranch)
	if len(baseBranch) == 0 {
		currentBranch, branchError := service.gitManager.GetCurrentBranch(executionContext, repositoryRoot)
		if branchError != nil {
			return Result{}, fmt.Errorf(currentBranchErrorTemplateConstant, branchError)
		}
		baseBranch = currentBranch
	}

	temporaryBranch := fmt.Sprintf(temporaryBranchTemplateConstant, service.temporaryBranchPrefix, service.processIdentifier())
	result := Result{BaseBranch: baseBranch, TemporaryBranch: temporaryBranch, Outcomes: []BranchOutcome{}}

	service.printf(baseBranchMessageTemplateConstant, baseBranch)
	service.printf(branchesMessageTemplateConstant, strings.Join(branches, branchListSeparatorConstant))
	service.logger.Info(mergeStartedLogMessageConstant,
		zap.String(logFieldBaseBranchConstant, baseBranch),
		zap.String(logFieldTemporaryBranchConstant, temporaryBranch),
		zap.Strings(logFieldBranchesConstant, branches),
	)

	if checkoutError := service.gitManager.CheckoutBranch(executionContext, repositoryRoot, baseBranch); checkoutError != nil {
		return result, fmt.Errorf(baseCheckoutErrorTemplateConstant, baseBranch, checkoutError)
	}
	if createError := service.gitManager.CreateBranch(executionContext, repositoryRoot, temporaryBranch, ""); createError != nil {
		return result, fmt.Errorf(temporaryBranchErrorTemplateConstant, temporaryBranch, createError)
	}
	service.printf(temporaryBranchMessageTemplateConstant, temporaryBranch)

	result.Succeeded = true
	for _, branch := range branches {
		if contextError := executionContext.Err(); contextError != nil {
			result.Succeeded = false
			return result, contextError
		}

		if branch == baseBranch || branch == temporaryBranch {
			service.printf(skippingBranchMessageTemplateConstant, branch)
			result.Outcomes = append(result.Outcomes, BranchOutcome{Branch: branch, Status: StatusSkipped})
			continue
		}

		outcome := service.mergeBranch(executionContext, repositoryRoot, branch, options.Resolution)
		result.Outcomes = append(result.Outcomes, outcome)

		switch outcome.Status {
		case StatusMerged, StatusMergedWithResolvedConflicts:
			service.logger.Info(branchMergedLogMessageConstant, zap.String(logFieldBranchConstant, branch), zap.String(logFieldStatusConstant, string(outcome.Status)))
		default:
			service.logger.Warn(branchFailedLogMessageConstant, zap.String(logFieldBranchConstant, branch), zap.String(logFieldStatusConstant, string(outcome.Status)))
			result.Succeeded = false
		}
		if !result.Succeeded {
			break
		}
	}

	service.logger.Info(mergeFinishedLogMessageConstant, zap.Bool(logFieldSucceededConstant, result.Succeeded))
	return result, nil
}

func (service *Service) mergeBranch(executionContext context.Context, repositoryRoot string, branch string, resolution ResolutionOptions) BranchOutcome {
	service.printf(mergingBranchMessageTemplateConstant, branch)

	mergeOutcome, mergeError := service.gitManager.MergeWithoutCommit(executionContext, repositoryRoot, branch)
	if mergeError != nil {
		service.abort(executionContext, repositoryRoot, branch)
		return BranchOutcome{Branch: branch, Status: StatusMergeFailed, Detail: fmt.Errorf(mergeErrorTemplateConstant, branch, mergeError).Error()}
	}

	if mergeOutcome.Clean {
		return service.commitCleanMerge(executionContext, repositoryRoot, branch)
	}

	unmergedEntries, statusError := service.gitManager.UnmergedFiles(executionContext, repositoryRoot)
	if statusError != nil || len(unmergedEntries) == 0 {
		service.printf(unexpectedMergeFailureMessageConstant)
		service.abort(executionContext, repositoryRoot, branch)
		detail := strings.TrimSpace(mergeOutcome.StandardError)
		if len(detail) == 0 {
			detail = strings.TrimSpace(mergeOutcome.StandardOutput)
		}
		if statusError != nil {
			detail = statusError.Error()
		}
		return BranchOutcome{Branch: branch, Status: StatusMergeFailed, Detail: detail}
	}

	conflictedFiles := make([]string, 0, len(unmergedEntries))
	for _, entry := range unmergedEntries {
		conflictedFiles = append(conflictedFiles, entry.Path)
	}
	service.printf(conflictsDetectedMessageTemplateConstant, len(conflictedFiles))
	for _, conflictedFile := range conflictedFiles {
		service.printf(conflictedFileMessageTemplateConstant, conflictedFile)
	}

	outcome := BranchOutcome{Branch: branch, ConflictedFiles: conflictedFiles}
	if deletionError := service.rejectDeletionConflicts(unmergedEntries); deletionError != nil {
		service.abort(executionContext, repositoryRoot, branch)
		outcome.Status = StatusConflictResolutionFailed
		outcome.Detail = deletionError.Error()
		return outcome
	}

	for _, conflictedFile := range conflictedFiles {
		if resolveError := service.resolveFile(executionContext, repositoryRoot, conflictedFile, resolution); resolveError != nil {
			service.printf(failedFileMessageTemplateConstant, conflictedFile, resolveError)
			service.abort(executionContext, repositoryRoot, branch)
			outcome.Status = StatusConflictResolutionFailed
			outcome.Detail = resolveError.Error()
			return outcome
		}
		service.printf(resolvedFileMessageTemplateConstant, conflictedFile)
	}

	if commitError := service.gitManager.Commit(executionContext, repositoryRoot, fmt.Sprintf(resolvedCommitMessageTemplateConstant, branch)); commitError != nil {
		service.abort(executionContext, repositoryRoot, branch)
		outcome.Status = StatusMergeFailed
		outcome.Detail = fmt.Errorf(commitErrorTemplateConstant, branch, commitError).Error()
		return outcome
	}

	outcome.Status = StatusMergedWithResolvedConflicts
	return outcome
}

// rejectDeletionConflicts fails when an entry was deleted or added on only one side. Such files
// carry no conflict markers, so staging them would silently pick one side.
func (service *Service) rejectDeletionConflicts(unmergedEntries []gitrepo.UnmergedPath) error {
	rejectedPaths := []string{}
	for _, entry := range unmergedEntries {
		if entry.HasConflictMarkers() {
			continue
		}
		service.printf(deletionConflictMessageTemplateConstant, entry.Path, entry.Description())
		rejectedPaths = append(rejectedPaths, entry.Path)
	}
	if len(rejectedPaths) == 0 {
		return nil
	}
	return fmt.Errorf(deletionConflictErrorTemplateConstant, len(rejectedPaths), strings.Join(rejectedPaths, branchListSeparatorConstant))
}

// commitCleanMerge commits a conflict-free merge. A failed commit on a clean worktree means the
// base already contained the branch, which counts as merged.
func (service *Service) commitCleanMerge(executionContext context.Context, repositoryRoot string, branch string) BranchOutcome {
	commitError := service.gitManager.Commit(executionContext, repositoryRoot, fmt.Sprintf(cleanCommitMessageTemplateConstant, branch))
	if commitError == nil {
		return BranchOutcome{Branch: branch, Status: StatusMerged}
	}

	clean, cleanError := service.gitManager.CheckCleanWorktree(executionContext, repositoryRoot)
	if cleanError == nil && clean {
		service.printf(nothingToCommitMessageTemplateConstant, branch)
		return BranchOutcome{Branch: branch, Status: StatusMerged}
	}

	service.abort(executionContext, repositoryRoot, branch)
	return BranchOutcome{Branch: branch, Status: StatusMergeFailed, Detail: fmt.Errorf(commitErrorTemplateConstant, branch, commitError).Error()}
}

func (service *Service) resolveFile(executionContext context.Context, repositoryRoot string, relativePath string, resolution ResolutionOptions) error {
	absolutePath := filepath.Join(repositoryRoot, filepath.FromSlash(relativePath))

	contentBytes, readError := service.fileSystem.ReadFile(absolutePath)
	if readError != nil {
		return fmt.Errorf(readFileErrorTemplateConstant, relativePath, readError)
	}

	resolved, resolveError := service.fileResolver.ResolveFile(executionContext, relativePath, string(contentBytes), resolution)
	if resolveError != nil {
		return resolveError
	}

	if writeError := service.fileSystem.WriteFile(absolutePath, []byte(resolved), filePermissions(service.fileSystem, absolutePath)); writeError != nil {
		return fmt.Errorf(writeFileErrorTemplateConstant, relativePath, writeError)
	}
	if stageError := service.gitManager.StageFile(executionContext, repositoryRoot, relativePath); stageError != nil {
		return fmt.Errorf(stageFileErrorTemplateConstant, relativePath, stageError)
	}
	return nil
}

func (service *Service) abort(executionContext context.Context, repositoryRoot string, branch string) {
	if abortError := service.gitManager.AbortMerge(executionContext, repositoryRoot); abortError != nil {
		service.logger.Warn(abortFailedLogMessageConstant, zap.String(logFieldBranchConstant, branch), zap.Error(fmt.Errorf(abortErrorTemplateConstant, branch, abortError)))
	}
}

func (service *Service) printf(format string, arguments ...any) {
	_, _ = fmt.Fprintf(service.output, format+"\n", arguments...)
}

func sanitizeBranches(branches []string) []string {
	sanitized := make([]string, 0, len(branches))
	for _, branch := range branches {
		trimmedBranch := strings.TrimSpace(branch)
		if len(trimmedBranch) == 0 {
			continue
		}
		sanitized = append(sanitized, trimmedBranch)
	}
	return sanitized
}
