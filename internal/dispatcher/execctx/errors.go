package execctx

import "errors"

// Errors for execution context operations.
var (
	// ErrNoWindow indicates the command's origin window could not be resolved.
	ErrNoWindow = errors.New("no origin window")

	// ErrMissingParam indicates a required data field is absent.
	ErrMissingParam = errors.New("missing parameter")
)
