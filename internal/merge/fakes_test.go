package merge_test

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	"github.com/temirov/mergix/internal/gitrepo"
)

const (
	testRepositoryRootConstant  = "/repo"
	testBaseBranchConstant      = "main"
	testProcessIDConstant       = 42
	testTemporaryBranchConstant = "temp_merge_42"
)

type fakeGitManager struct {
	currentBranch  string
	branches       []string
	conflicted     map[string][]string
	deletions      map[string][]gitrepo.UnmergedPath
	failedMerges   map[string]gitrepo.MergeOutcome
	mergeErrors    map[string]error
	commitErrors   map[string]error
	cleanWorktree  bool
	lastMerged     string
	operations     []string
	stagedFiles    []string
	commitMessages []string
}

func newFakeGitManager() *fakeGitManager {
	return &fakeGitManager{
		currentBranch: testBaseBranchConstant,
		branches:      []string{testBaseBranchConstant, "feature-a", "feature-b", "feature-c"},
		conflicted:    map[string][]string{},
		deletions:     map[string][]gitrepo.UnmergedPath{},
		failedMerges:  map[string]gitrepo.MergeOutcome{},
		mergeErrors:   map[string]error{},
		commitErrors:  map[string]error{},
	}
}

func (manager *fakeGitManager) record(format string, arguments ...any) {
	manager.operations = append(manager.operations, fmt.Sprintf(format, arguments...))
}

func (manager *fakeGitManager) RepositoryRoot(context.Context, string) (string, error) {
	return testRepositoryRootConstant, nil
}

func (manager *fakeGitManager) GetCurrentBranch(context.Context, string) (string, error) {
	return manager.currentBranch, nil
}

func (manager *fakeGitManager) ListBranches(context.Context, string) ([]string, error) {
	return manager.branches, nil
}

func (manager *fakeGitManager) CheckoutBranch(_ context.Context, _ string, branchName string) error {
	manager.record("checkout %s", branchName)
	return nil
}

func (manager *fakeGitManager) CreateBranch(_ context.Context, _ string, branchName string, _ string) error {
	manager.record("create %s", branchName)
	return nil
}

func (manager *fakeGitManager) MergeWithoutCommit(_ context.Context, _ string, branchName string) (gitrepo.MergeOutcome, error) {
	manager.record("merge %s", branchName)
	manager.lastMerged = branchName
	if mergeError, found := manager.mergeErrors[branchName]; found {
		return gitrepo.MergeOutcome{}, mergeError
	}
	if outcome, found := manager.failedMerges[branchName]; found {
		return outcome, nil
	}
	if len(manager.conflicted[branchName]) > 0 || len(manager.deletions[branchName]) > 0 {
		return gitrepo.MergeOutcome{Clean: false, ExitCode: 1}, nil
	}
	return gitrepo.MergeOutcome{Clean: true}, nil
}

func (manager *fakeGitManager) AbortMerge(context.Context, string) error {
	manager.record("abort")
	return nil
}

func (manager *fakeGitManager) UnmergedFiles(context.Context, string) ([]gitrepo.UnmergedPath, error) {
	entries := []gitrepo.UnmergedPath{}
	for _, conflictedFile := range manager.conflicted[manager.lastMerged] {
		entries = append(entries, gitrepo.UnmergedPath{Path: conflictedFile, Status: gitrepo.UnmergedBothModified})
	}
	return append(entries, manager.deletions[manager.lastMerged]...), nil
}

func (manager *fakeGitManager) CheckCleanWorktree(context.Context, string) (bool, error) {
	return manager.cleanWorktree, nil
}

func (manager *fakeGitManager) StageFile(_ context.Context, _ string, filePath string) error {
	manager.record("stage %s", filePath)
	manager.stagedFiles = append(manager.stagedFiles, filePath)
	return nil
}

func (manager *fakeGitManager) Commit(_ context.Context, _ string, message string) error {
	manager.record("commit %s", manager.lastMerged)
	if commitError, found := manager.commitErrors[manager.lastMerged]; found {
		return commitError
	}
	manager.commitMessages = append(manager.commitMessages, message)
	return nil
}

func (manager *fakeGitManager) mergedBranches() []string {
	merged := []string{}
	for _, operation := range manager.operations {
		if strings.HasPrefix(operation, "merge ") {
			merged = append(merged, strings.TrimPrefix(operation, "merge "))
		}
	}
	return merged
}

type memoryFileSystem struct {
	files map[string]string
}

func newMemoryFileSystem(files map[string]string) *memoryFileSystem {
	return &memoryFileSystem{files: files}
}

func (fileSystem *memoryFileSystem) ReadFile(path string) ([]byte, error) {
	content, found := fileSystem.files[path]
	if !found {
		return nil, fs.ErrNotExist
	}
	return []byte(content), nil
}

func (fileSystem *memoryFileSystem) WriteFile(path string, data []byte, _ fs.FileMode) error {
	fileSystem.files[path] = string(data)
	return nil
}

func (fileSystem *memoryFileSystem) Stat(string) (fs.FileInfo, error) {
	return nil, fs.ErrNotExist
}

type stubAIResolver struct {
	resolved string
	err      error
	calls    int
}

func (resolver *stubAIResolver) ResolveFile(context.Context, string, string) (string, error) {
	resolver.calls++
	return resolver.resolved, resolver.err
}

const conflictedFileContentConstant = "header\n<<<<<<< HEAD\nours line\n=======\ntheirs line\n>>>>>>> feature-a\nfooter\n"
