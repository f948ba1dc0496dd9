// Package execctx provides the execution context for command handlers.
package execctx

import (
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/tidwall/gjson"

	"github.com/dshills/quickbar/internal/dispatcher/command"
	"github.com/dshills/quickbar/internal/view"
)

// Context carries one command through its handler.
type Context struct {
	// Command is the command being handled.
	Command command.Name

	// Data is the raw message payload.
	Data json.RawMessage

	// WinID is the window id named by the message, zero for none.
	WinID int

	// Host is the host window the dispatch table was built with.
	Host view.Window

	// Window is the resolved origin window. It is nil when the message
	// named a window that no longer exists.
	Window view.Window

	// Deferred is set when the caller waits on a pending handle.
	Deferred bool

	// Logger is scoped to the command.
	Logger hclog.Logger
}

// New creates a context for msg originating in window.
func New(msg command.Message, host, window view.Window) *Context {
	return &Context{
		Command: msg.Type,
		Data:    msg.Data,
		WinID:   msg.WinID,
		Host:    host,
		Window:  window,
		Logger:  hclog.NewNullLogger(),
	}
}

// Param returns the data field at path.
func (c *Context) Param(path string) gjson.Result {
	if len(c.Data) == 0 {
		return gjson.Result{}
	}
	return gjson.GetBytes(c.Data, path)
}

// RequireString returns the non-empty string at path.
func (c *Context) RequireString(path string) (string, error) {
	v := c.Param(path)
	if !v.Exists() || v.String() == "" {
		return "", fmt.Errorf("%s: %w: %s", c.Command, ErrMissingParam, path)
	}
	return v.String(), nil
}

// Decode unmarshals the data field at path into v. An empty path decodes
// the whole payload.
func (c *Context) Decode(path string, v any) error {
	raw := []byte(c.Data)
	if path != "" {
		res := c.Param(path)
		if !res.Exists() {
			return fmt.Errorf("%s: %w: %s", c.Command, ErrMissingParam, path)
		}
		raw = []byte(res.Raw)
	}
	if len(raw) == 0 {
		return fmt.Errorf("%s: %w", c.Command, ErrMissingParam)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%s: decode data: %w", c.Command, err)
	}
	return nil
}

// HasWindow reports whether the origin window was resolved.
func (c *Context) HasWindow() bool {
	return c.Window != nil
}

// FromHost reports whether the command originated in the host window.
func (c *Context) FromHost() bool {
	return c.Window != nil && c.Host != nil && c.Window.ID() == c.Host.ID()
}
