// Package gitrepo runs the git operations behind multi-branch merges.
//
// RepositoryManager wraps an execshell.GitExecutor with typed methods for
// branch listing, checkout, no-commit merges, unmerged-path detection,
// staging, and commits. ParseRemoteURL turns an origin URL into the
// owner/repository pair used by the hosting API.
package gitrepo
