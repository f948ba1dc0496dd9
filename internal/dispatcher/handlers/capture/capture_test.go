package capture_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dshills/quickbar/internal/dispatcher/command"
	"github.com/dshills/quickbar/internal/dispatcher/handler"
	"github.com/dshills/quickbar/internal/dispatcher/handlers/capture"
	"github.com/dshills/quickbar/internal/dispatcher/handlers/handlertest"
	"github.com/dshills/quickbar/internal/plugin/manifest"
	"github.com/dshills/quickbar/internal/view"
	"github.com/dshills/quickbar/internal/view/viewtest"
)

type fakeScreen struct {
	img []byte
	err error
	ran chan struct{}
}

func (s *fakeScreen) CaptureScreen(context.Context) ([]byte, error) {
	defer close(s.ran)
	return s.img, s.err
}

func setup(t *testing.T, screen *fakeScreen) (*handlertest.Env, *viewtest.Surface) {
	t.Helper()
	env := handlertest.New(t, nil)
	env.Add(t, capture.NewHandler(env.Views, screen, time.Second))
	if err := env.Manager.Open(context.Background(), &manifest.Descriptor{Name: "p"}, env.Host); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return env, env.Views.Surface().(*viewtest.Surface)
}

func hookCall(s *viewtest.Surface) (string, bool) {
	for _, c := range s.Calls() {
		if c.Method == view.CallExecuteHook && strings.Contains(string(c.Args), capture.HookScreenCapture) {
			return string(c.Args), true
		}
	}
	return "", false
}

func TestScreenCaptureDeliversHook(t *testing.T) {
	screen := &fakeScreen{img: []byte("hi"), ran: make(chan struct{})}
	env, surface := setup(t, screen)

	if res := env.Send(t, command.ScreenCapture, nil, 0); res.Status != handler.StatusOK {
		t.Fatalf("screen-capture = %+v", res)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if args, ok := hookCall(surface); ok {
			want := `{"data":{"data":"data:image/png;base64,aGk="},"hook":"ScreenCapture"}`
			if args != want {
				t.Errorf("hook args = %s, want %s", args, want)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("capture hook not delivered")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestScreenCaptureCancelledOrFailed(t *testing.T) {
	for name, screen := range map[string]*fakeScreen{
		"cancelled": {},
		"failed":    {err: errors.New("no tool")},
	} {
		t.Run(name, func(t *testing.T) {
			screen.ran = make(chan struct{})
			env, surface := setup(t, screen)
			env.Send(t, command.ScreenCapture, nil, 0)

			select {
			case <-screen.ran:
			case <-time.After(2 * time.Second):
				t.Fatal("capture not started")
			}
			// The hook would be sent right after the capture returns.
			time.Sleep(20 * time.Millisecond)
			if args, ok := hookCall(surface); ok {
				t.Errorf("hook delivered: %s", args)
			}
		})
	}
}

func TestScreenCaptureWithoutPlugin(t *testing.T) {
	env := handlertest.New(t, nil)
	env.Add(t, capture.NewHandler(env.Views, &fakeScreen{ran: make(chan struct{})}, 0))
	if res := env.Send(t, command.ScreenCapture, nil, 0); res.Status != handler.StatusNoOp {
		t.Errorf("screen-capture without plugin = %+v", res)
	}
}
