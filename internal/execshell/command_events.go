package execshell

// CommandEventObserver is told about every git invocation the executor makes.
type CommandEventObserver interface {
	CommandStarted(command ShellCommand)
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed fires when the process could not be run at all, so there is no result.
	CommandExecutionFailed(command ShellCommand, failure error)
}

// CommandEventHooks adapts optional callbacks to CommandEventObserver. Nil hooks are skipped.
type CommandEventHooks struct {
	OnStarted   func(command ShellCommand)
	OnCompleted func(command ShellCommand, result ExecutionResult)
	OnFailed    func(command ShellCommand, failure error)
}

// CommandStarted invokes OnStarted.
func (hooks CommandEventHooks) CommandStarted(command ShellCommand) {
	if hooks.OnStarted != nil {
		hooks.OnStarted(command)
	}
}

// CommandCompleted invokes OnCompleted.
func (hooks CommandEventHooks) CommandCompleted(command ShellCommand, result ExecutionResult) {
	if hooks.OnCompleted != nil {
		hooks.OnCompleted(command, result)
	}
}

// CommandExecutionFailed invokes OnFailed.
func (hooks CommandEventHooks) CommandExecutionFailed(command ShellCommand, failure error) {
	if hooks.OnFailed != nil {
		hooks.OnFailed(command, failure)
	}
}
