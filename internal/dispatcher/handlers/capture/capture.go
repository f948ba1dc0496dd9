// Package capture provides the screen capture handler. The capture runs
// in the background; the selected region is delivered to the requesting
// plugin through its ScreenCapture hook.
package capture

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/dshills/quickbar/internal/dispatcher/command"
	"github.com/dshills/quickbar/internal/dispatcher/execctx"
	"github.com/dshills/quickbar/internal/dispatcher/handler"
	"github.com/dshills/quickbar/internal/view"
)

// HookScreenCapture is the plugin hook that receives a capture.
const HookScreenCapture = "ScreenCapture"

// DefaultTimeout bounds an interactive selection.
const DefaultTimeout = 2 * time.Minute

// Screen captures a user-selected screen region as PNG.
type Screen interface {
	CaptureScreen(ctx context.Context) ([]byte, error)
}

// Handler binds the screen capture command.
type Handler struct {
	views   *view.Controller
	screen  Screen
	timeout time.Duration
}

// NewHandler creates a capture handler.
func NewHandler(views *view.Controller, screen Screen, timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Handler{views: views, screen: screen, timeout: timeout}
}

// Register binds the handler's commands.
func (h *Handler) Register(r handler.Registrar) error {
	return handler.RegisterAll(r, handler.Table{
		command.ScreenCapture: h.capture,
	})
}

func (h *Handler) capture(ctx context.Context, ec *execctx.Context) handler.Result {
	s := h.views.SurfaceOf(ec.Window)
	if s == nil {
		return handler.NoOp()
	}
	go h.run(s, ec)
	return handler.Success()
}

func (h *Handler) run(s view.Surface, ec *execctx.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	img, err := h.screen.CaptureScreen(ctx)
	if err != nil {
		ec.Logger.Warn("screen capture failed", "error", err)
		return
	}
	if len(img) == 0 {
		ec.Logger.Debug("screen capture cancelled")
		return
	}
	h.views.NotifySurface(ctx, s, view.CallExecuteHook, map[string]any{
		"hook": HookScreenCapture,
		"data": map[string]string{"data": "data:image/png;base64," + base64.StdEncoding.EncodeToString(img)},
	})
}
