// Package execshell provides structured helpers for invoking git.
//
// ShellExecutor wraps a CommandRunner with zap logging and lifecycle events,
// OSCommandRunner performs the actual os/exec invocation, and
// CommandMessageFormatter turns merge, checkout, staging, and commit
// invocations into readable progress messages.
package execshell
