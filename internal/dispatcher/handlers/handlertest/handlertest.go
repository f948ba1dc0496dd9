// Package handlertest wires handlers to a real dispatcher over in-memory
// windows for handler package tests.
package handlertest

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/dshills/quickbar/internal/dispatcher"
	"github.com/dshills/quickbar/internal/dispatcher/command"
	"github.com/dshills/quickbar/internal/dispatcher/handler"
	"github.com/dshills/quickbar/internal/plugin"
	"github.com/dshills/quickbar/internal/view"
	"github.com/dshills/quickbar/internal/view/viewtest"
)

// Env is a host window, view controller, plugin manager and dispatcher.
type Env struct {
	Host     *viewtest.Window
	Factory  *viewtest.Factory
	Views    *view.Controller
	Manager  *plugin.Manager
	Registry *dispatcher.Registry
	D        *dispatcher.Dispatcher
}

// Registerer is implemented by every handler package's Handler.
type Registerer interface {
	Register(r handler.Registrar) error
}

// New builds an environment and registers hs.
func New(t *testing.T, opts []plugin.ManagerOption, hs ...Registerer) *Env {
	t.Helper()
	e := &Env{
		Host:     viewtest.NewWindow(1, view.Rect{Width: 800, Height: 60}),
		Factory:  viewtest.NewFactory(),
		Registry: dispatcher.NewRegistry(),
	}
	e.Views = view.NewController(view.DefaultConfig(), e.Factory)
	e.Manager = plugin.NewManager(plugin.Config{Platform: plugin.PlatformLinux, CollapsedHeight: 60}, e.Views, opts...)
	e.D = dispatcher.New(dispatcher.DefaultConfig(), e.Registry, e.Host, dispatcher.WithWindows(e.Views))
	for _, h := range hs {
		if err := h.Register(e.Registry); err != nil {
			t.Fatalf("Register() error = %v", err)
		}
	}
	return e
}

// Add registers more handlers after construction.
func (e *Env) Add(t *testing.T, hs ...Registerer) {
	t.Helper()
	for _, h := range hs {
		if err := h.Register(e.Registry); err != nil {
			t.Fatalf("Register() error = %v", err)
		}
	}
}

// Send dispatches name with data from the window winID, blocking.
func (e *Env) Send(t *testing.T, name command.Name, data any, winID int) handler.Result {
	t.Helper()
	msg := command.Message{Type: name, WinID: winID}
	switch v := data.(type) {
	case nil:
	case string:
		msg.Data = json.RawMessage(v)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("Marshal(data) error = %v", err)
		}
		msg.Data = raw
	}
	return e.D.Dispatch(context.Background(), msg)
}
