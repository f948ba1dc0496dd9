package window_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/dshills/quickbar/internal/dispatcher/command"
	"github.com/dshills/quickbar/internal/dispatcher/handler"
	"github.com/dshills/quickbar/internal/dispatcher/handlers/handlertest"
	"github.com/dshills/quickbar/internal/dispatcher/handlers/window"
	"github.com/dshills/quickbar/internal/plugin/manifest"
	"github.com/dshills/quickbar/internal/view"
	"github.com/dshills/quickbar/internal/view/viewtest"
)

func setup(t *testing.T, screen viewtest.Screen) *handlertest.Env {
	t.Helper()
	env := handlertest.New(t, nil)
	env.Add(t, window.NewHandler(env.Views, screen))
	return env
}

func TestSetExpandHeightPosition(t *testing.T) {
	tests := []struct {
		name     string
		y        int
		data     string
		position int
	}{
		{"fits below", 100, `400`, 0},
		{"object payload", 100, `{"height":400}`, 0},
		{"runs off display", 800, `400`, 340},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setup(t, viewtest.Screen{Display: view.Rect{Width: 1920, Height: 1080}})
			env.Host.SetBounds(view.Rect{X: 10, Y: tt.y, Width: 800, Height: 60})

			res := env.Send(t, command.SetExpandHeight, tt.data, 0)
			if res.Value != tt.position {
				t.Errorf("position = %v, want %d", res.Value, tt.position)
			}
			if h := env.Host.Bounds().Height; h != 400 {
				t.Errorf("height = %d, want 400", h)
			}
			call, ok := env.Host.LastCall(view.CallSetPosition)
			if !ok || string(call.Args) != jsonInt(tt.position) {
				t.Errorf("setPosition call = %+v", call)
			}
		})
	}
}

func jsonInt(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func TestMissingOriginIsNoOp(t *testing.T) {
	env := setup(t, viewtest.Screen{})
	for _, name := range []command.Name{
		command.SetExpandHeight, command.SetSubInput, command.RemoveSubInput,
		command.SetSubInputValue, command.SubInputBlur, command.WindowMoving,
	} {
		res := env.Send(t, name, `{"height":300,"placeholder":"x","text":"y"}`, 4242)
		if res.Status != handler.StatusNoOp {
			t.Errorf("%s from unknown window = %+v, want no-op", name, res)
		}
	}
	if len(env.Host.Calls()) != 0 {
		t.Errorf("host received calls: %+v", env.Host.Calls())
	}
}

func TestSubInputTargetsOriginWindow(t *testing.T) {
	env := setup(t, viewtest.Screen{})
	ctx := context.Background()
	if err := env.Manager.Open(ctx, &manifest.Descriptor{Name: "p"}, env.Host); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	det, err := env.Manager.Detach(ctx, env.Host)
	if err != nil {
		t.Fatalf("Detach() error = %v", err)
	}
	floating := det.Window.(*viewtest.Window)
	surface := det.Surface.(*viewtest.Surface)

	env.Send(t, command.SetSubInput, `{"placeholder":"filter"}`, floating.ID())
	call, ok := floating.LastCall(view.CallSetSubInput)
	if !ok || string(call.Args) != `{"placeholder":"filter"}` {
		t.Errorf("floating setSubInput = %+v", call)
	}

	env.Send(t, command.SetSubInputValue, `{"text":"abc"}`, floating.ID())
	hook, ok := surface.LastCall(view.CallExecuteHook)
	if !ok || string(hook.Args) != `{"data":{"text":"abc"},"hook":"SubInputChange"}` {
		t.Errorf("executeHook call = %+v", hook)
	}

	env.Send(t, command.DetachInputChange, `{"text":"remembered"}`, floating.ID())
	if d, _ := env.Views.Detached(floating.ID()); d.SubInput.Value != "remembered" {
		t.Errorf("recorded sub-input = %+v", d.SubInput)
	}

	env.Send(t, command.SubInputBlur, nil, floating.ID())
	if !surface.Focused() {
		t.Error("floating surface not focused")
	}
}

func TestSendSubInputChangeWithoutSurface(t *testing.T) {
	env := setup(t, viewtest.Screen{})
	if res := env.Send(t, command.SendSubInputChangeEvent, `{"text":"a"}`, 0); res.Status != handler.StatusNoOp {
		t.Errorf("send-sub-input-change-event = %+v", res)
	}
}

func TestShowHideMain(t *testing.T) {
	env := setup(t, viewtest.Screen{})
	env.Send(t, command.ShowMainWindow, nil, 0)
	if !env.Host.IsVisible() {
		t.Error("host hidden after show")
	}
	env.Send(t, command.HideMainWindow, nil, 0)
	if env.Host.IsVisible() {
		t.Error("host visible after hide")
	}
}

func TestWindowMoving(t *testing.T) {
	env := setup(t, viewtest.Screen{Cursor: view.Point{X: 500, Y: 300}})
	env.Send(t, command.WindowMoving, `{"mouseX":20,"mouseY":10,"width":800,"height":60}`, 0)
	want := view.Rect{X: 480, Y: 290, Width: 800, Height: 60}
	if got := env.Host.Bounds(); got != want {
		t.Errorf("bounds = %+v, want %+v", got, want)
	}
}
