// Package dispatcher routes command messages to handlers.
//
// The dispatch table is closed: every name in package command is bound
// to exactly one handler before the application starts, and Validate
// reports any name left unbound. A message names a command, carries a
// JSON payload and optionally the id of the window it came from.
//
// # Calling conventions
//
// Dispatch runs the handler to completion and returns its result. It is
// used by callers that want the value inline:
//
//	res := d.Dispatch(ctx, command.Message{Type: command.GetFeatures})
//
// DispatchAsync starts the handler and returns a Pending handle that
// resolves to the same result. Deferred commands complete in whatever
// order their handlers finish:
//
//	p := d.DispatchAsync(ctx, msg)
//	res, err := p.Wait(ctx)
//
// Both conventions resolve the origin window the same way. A message
// without a window id, or with the host window's id, targets the host
// window. Any other id is looked up among the detached plugin windows;
// when it names no window, handlers receive a nil Window and treat the
// command as a no-op.
//
// # Execution
//
// When a command is dispatched:
//
//  1. The origin window is resolved
//  2. Pre-dispatch hooks are called (any may cancel)
//  3. The handler runs, with panic recovery when configured
//  4. Post-dispatch hooks are called
//  5. Metrics are recorded (if enabled)
//
// An unknown command name is an integration defect. It is logged at
// error level and answered with an ErrUnknownCommand result.
package dispatcher
