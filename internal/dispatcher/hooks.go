package dispatcher

import (
	"github.com/hashicorp/go-hclog"

	"github.com/dshills/quickbar/internal/dispatcher/execctx"
	"github.com/dshills/quickbar/internal/dispatcher/handler"
)

// PreDispatchHook is called before a command is dispatched.
// Returning false cancels the dispatch.
type PreDispatchHook interface {
	PreDispatch(ec *execctx.Context) bool
}

// PostDispatchHook is called after a command is dispatched. It may
// inspect or modify the result.
type PostDispatchHook interface {
	PostDispatch(ec *execctx.Context, result *handler.Result)
}

// PreDispatchFunc is a function adapter for PreDispatchHook.
type PreDispatchFunc func(ec *execctx.Context) bool

// PreDispatch implements PreDispatchHook.
func (f PreDispatchFunc) PreDispatch(ec *execctx.Context) bool {
	return f(ec)
}

// PostDispatchFunc is a function adapter for PostDispatchHook.
type PostDispatchFunc func(ec *execctx.Context, result *handler.Result)

// PostDispatch implements PostDispatchHook.
func (f PostDispatchFunc) PostDispatch(ec *execctx.Context, result *handler.Result) {
	f(ec, result)
}

// LoggingHook traces every dispatch at debug level.
type LoggingHook struct {
	Logger hclog.Logger
}

// NewLoggingHook creates a logging hook writing to l.
func NewLoggingHook(l hclog.Logger) *LoggingHook {
	return &LoggingHook{Logger: l}
}

// PreDispatch logs the command being dispatched.
func (h *LoggingHook) PreDispatch(ec *execctx.Context) bool {
	h.Logger.Trace("dispatching", "command", ec.Command, "window", ec.WinID, "deferred", ec.Deferred)
	return true
}

// PostDispatch logs the dispatch result.
func (h *LoggingHook) PostDispatch(ec *execctx.Context, result *handler.Result) {
	if result.IsError() {
		h.Logger.Warn("command failed", "command", ec.Command, "error", result.Error)
		return
	}
	h.Logger.Debug("dispatch complete", "command", ec.Command, "status", result.Status.String())
}
