package window

import (
	"context"

	"github.com/tidwall/gjson"

	"github.com/dshills/quickbar/internal/dispatcher/command"
	"github.com/dshills/quickbar/internal/dispatcher/execctx"
	"github.com/dshills/quickbar/internal/dispatcher/handler"
	"github.com/dshills/quickbar/internal/view"
)

// HookSubInputChange is the plugin hook fired when sub-input text changes.
const HookSubInputChange = "SubInputChange"

// Handler binds window commands to the view controller.
type Handler struct {
	views  *view.Controller
	screen view.Screen
}

// NewHandler creates a window handler.
func NewHandler(views *view.Controller, screen view.Screen) *Handler {
	return &Handler{views: views, screen: screen}
}

// Register binds the handler's commands.
func (h *Handler) Register(r handler.Registrar) error {
	return handler.RegisterAll(r, handler.Table{
		command.SetExpandHeight:         h.setExpandHeight,
		command.SetSubInput:             h.setSubInput,
		command.RemoveSubInput:          h.removeSubInput,
		command.SetSubInputValue:        h.setSubInputValue,
		command.SubInputBlur:            h.subInputBlur,
		command.SendSubInputChangeEvent: h.sendSubInputChange,
		command.DetachInputChange:       h.detachInputChange,
		command.HideMainWindow:          h.hideMain,
		command.ShowMainWindow:          h.showMain,
		command.WindowMoving:            h.windowMoving,
	})
}

// setExpandHeight resizes the origin window and tells its UI where the
// search field sits: at the bottom when the grown window would run off
// the display, otherwise at the top.
func (h *Handler) setExpandHeight(ctx context.Context, ec *execctx.Context) handler.Result {
	w := ec.Window
	if w == nil {
		return handler.NoOp()
	}
	height := expandHeight(ec)
	if height <= 0 {
		return handler.Errorf("%s: invalid height", ec.Command)
	}

	b := w.Bounds()
	w.SetSize(b.Width, height)

	position := 0
	if h.screen != nil {
		display := h.screen.DisplayBounds(h.screen.CursorPoint())
		if b.Y+height > display.Height {
			position = height - h.views.Config().InputHeight
		}
	}
	h.views.Notify(ctx, w, view.CallSetPosition, position)
	return handler.Value(position)
}

// expandHeight accepts the height as the bare payload or as data.height.
func expandHeight(ec *execctx.Context) int {
	raw := gjson.ParseBytes(ec.Data)
	if raw.Type == gjson.Number {
		return int(raw.Int())
	}
	return int(ec.Param("height").Int())
}

func (h *Handler) setSubInput(ctx context.Context, ec *execctx.Context) handler.Result {
	if ec.Window == nil {
		return handler.NoOp()
	}
	h.views.Notify(ctx, ec.Window, view.CallSetSubInput, map[string]string{
		"placeholder": ec.Param("placeholder").String(),
	})
	return handler.Value(true)
}

func (h *Handler) removeSubInput(ctx context.Context, ec *execctx.Context) handler.Result {
	if ec.Window == nil {
		return handler.NoOp()
	}
	h.views.Notify(ctx, ec.Window, view.CallRemoveSubInput, nil)
	return handler.Value(true)
}

func (h *Handler) setSubInputValue(ctx context.Context, ec *execctx.Context) handler.Result {
	if ec.Window == nil {
		return handler.NoOp()
	}
	text := ec.Param("text").String()
	h.views.Notify(ctx, ec.Window, view.CallSetSubInputValue, map[string]string{"value": text})
	h.fireSubInputChange(ctx, ec, text)
	return handler.Value(true)
}

func (h *Handler) subInputBlur(ctx context.Context, ec *execctx.Context) handler.Result {
	s := h.views.SurfaceOf(ec.Window)
	if s == nil {
		return handler.NoOp()
	}
	s.Focus()
	return handler.Success()
}

func (h *Handler) sendSubInputChange(ctx context.Context, ec *execctx.Context) handler.Result {
	if !h.fireSubInputChange(ctx, ec, ec.Param("text").String()) {
		return handler.NoOp()
	}
	return handler.Success()
}

// detachInputChange forwards the change and remembers the text so a
// later reattach restores it.
func (h *Handler) detachInputChange(ctx context.Context, ec *execctx.Context) handler.Result {
	text := ec.Param("text").String()
	if ec.Window != nil {
		h.views.RecordSubInput(ec.Window.ID(), text)
	}
	if !h.fireSubInputChange(ctx, ec, text) {
		return handler.NoOp()
	}
	return handler.Success()
}

func (h *Handler) fireSubInputChange(ctx context.Context, ec *execctx.Context, text string) bool {
	s := h.views.SurfaceOf(ec.Window)
	if s == nil {
		return false
	}
	h.views.NotifySurface(ctx, s, view.CallExecuteHook, map[string]any{
		"hook": HookSubInputChange,
		"data": map[string]string{"text": text},
	})
	return true
}

func (h *Handler) hideMain(ctx context.Context, ec *execctx.Context) handler.Result {
	if ec.Host == nil {
		return handler.NoOp()
	}
	ec.Host.Hide()
	return handler.Success()
}

func (h *Handler) showMain(ctx context.Context, ec *execctx.Context) handler.Result {
	if ec.Host == nil {
		return handler.NoOp()
	}
	ec.Host.Show()
	return handler.Success()
}

// windowMoving drags the origin window so the grab point stays under the
// cursor.
func (h *Handler) windowMoving(ctx context.Context, ec *execctx.Context) handler.Result {
	if ec.Window == nil || h.screen == nil {
		return handler.NoOp()
	}
	cursor := h.screen.CursorPoint()
	r := view.Rect{
		X:      cursor.X - int(ec.Param("mouseX").Int()),
		Y:      cursor.Y - int(ec.Param("mouseY").Int()),
		Width:  int(ec.Param("width").Int()),
		Height: int(ec.Param("height").Int()),
	}
	ec.Window.SetBounds(r)
	return handler.Value(view.Point{X: r.X, Y: r.Y})
}
