package osapi

import "errors"

var (
	// ErrProcessNotRunning is returned when signalling a program that is
	// not running.
	ErrProcessNotRunning = errors.New("osapi: process not running")

	// ErrSupervisorShutdown is returned by Run after Shutdown.
	ErrSupervisorShutdown = errors.New("osapi: supervisor is shutting down")

	// ErrTooManyProcesses is returned when the process limit is reached.
	ErrTooManyProcesses = errors.New("osapi: process limit reached")

	// ErrUnsupported is returned for actions with no implementation on
	// the current platform.
	ErrUnsupported = errors.New("osapi: unsupported on this platform")

	// ErrUnknownPath is returned for unrecognized well-known path names.
	ErrUnknownPath = errors.New("osapi: unknown path name")
)
