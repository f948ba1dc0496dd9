// Package keyboard provides handlers that synthesize key input into the
// active plugin surface.
package keyboard

import (
	"context"

	"github.com/dshills/quickbar/internal/dispatcher/command"
	"github.com/dshills/quickbar/internal/dispatcher/execctx"
	"github.com/dshills/quickbar/internal/dispatcher/handler"
)

// Synthesizer delivers synthetic key presses. Requests it cannot serve
// are dropped and reported as false.
type Synthesizer interface {
	Tap(ctx context.Context, key string, modifiers []string) bool
	KeyDown(ctx context.Context, keyCode int, modifiers []string) bool
}

// Handler binds keyboard commands.
type Handler struct {
	synth Synthesizer
}

// NewHandler creates a keyboard handler.
func NewHandler(synth Synthesizer) *Handler {
	return &Handler{synth: synth}
}

// Register binds the handler's commands.
func (h *Handler) Register(r handler.Registrar) error {
	return handler.RegisterAll(r, handler.Table{
		command.SimulateKeyTap:   h.tap,
		command.SendKeyDownEvent: h.keyDown,
	})
}

func (h *Handler) tap(ctx context.Context, ec *execctx.Context) handler.Result {
	key := ec.Param("key").String()
	if !h.synth.Tap(ctx, key, stringList(ec, "modifier")) {
		return handler.NoOp()
	}
	return handler.Success()
}

func (h *Handler) keyDown(ctx context.Context, ec *execctx.Context) handler.Result {
	code := int(ec.Param("keyCode").Int())
	if !h.synth.KeyDown(ctx, code, stringList(ec, "modifiers")) {
		return handler.NoOp()
	}
	return handler.Success()
}

func stringList(ec *execctx.Context, path string) []string {
	var out []string
	for _, v := range ec.Param(path).Array() {
		out = append(out, v.String())
	}
	return out
}
