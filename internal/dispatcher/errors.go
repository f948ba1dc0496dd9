package dispatcher

import "errors"

// Dispatcher errors.
var (
	// ErrUnknownCommand is returned for a command name outside the closed
	// command set, or a declared name with no handler bound.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrDuplicateHandler is returned when a command is bound twice.
	ErrDuplicateHandler = errors.New("command already has a handler")

	// ErrIncompleteTable is returned by Validate when declared commands
	// have no handler.
	ErrIncompleteTable = errors.New("dispatch table incomplete")

	// ErrDispatcherStopped is returned when dispatching after Shutdown.
	ErrDispatcherStopped = errors.New("dispatcher is stopped")

	// ErrCommandCancelled is returned when a pre-dispatch hook cancels a command.
	ErrCommandCancelled = errors.New("command was cancelled")

	// ErrPanic is returned when a handler panics.
	ErrPanic = errors.New("handler panicked")
)
