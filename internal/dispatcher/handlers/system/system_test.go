package system_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/dshills/quickbar/internal/dispatcher/command"
	"github.com/dshills/quickbar/internal/dispatcher/handler"
	"github.com/dshills/quickbar/internal/dispatcher/handlers/handlertest"
	"github.com/dshills/quickbar/internal/dispatcher/handlers/system"
	"github.com/dshills/quickbar/internal/search"
	"github.com/dshills/quickbar/internal/view"
)

type fakePaths struct{}

func (fakePaths) Home() (string, error) { return "/home/jo doe", nil }

func (fakePaths) Path(name string) (string, error) {
	if name == "downloads" {
		return "/home/jo doe/Downloads", nil
	}
	return "", errors.New("unknown path")
}

type fakeShell struct {
	shown []string
	beeps int
}

func (s *fakeShell) ShowItemInFolder(ctx context.Context, path string) error {
	s.shown = append(s.shown, path)
	return nil
}

func (s *fakeShell) ResolveShortcut(path string) (string, bool) {
	if path == `C:\Users\jo\Desktop\Editor.lnk` {
		return `C:\Program Files\Editor\editor.exe`, true
	}
	return "", false
}

func (s *fakeShell) Beep(ctx context.Context) error {
	s.beeps++
	return nil
}

type fakeDesktop struct {
	parent view.Window
	opts   json.RawMessage
}

func (d *fakeDesktop) ShowOpenDialog(ctx context.Context, parent view.Window, opts json.RawMessage) (json.RawMessage, error) {
	d.parent, d.opts = parent, opts
	return json.RawMessage(`["/tmp/a.txt"]`), nil
}

func (d *fakeDesktop) ShowSaveDialog(ctx context.Context, parent view.Window, opts json.RawMessage) (json.RawMessage, error) {
	d.parent, d.opts = parent, opts
	return json.RawMessage(`"/tmp/out.txt"`), nil
}

func (d *fakeDesktop) FileIcon(ctx context.Context, path string) (string, error) {
	return "data:image/png;base64,AAAA", nil
}

type fakeApps struct {
	apps []search.App
	err  error
}

func (a fakeApps) Find(context.Context) ([]search.App, error) { return a.apps, a.err }

type fakeNotifier struct{ bodies []string }

func (n *fakeNotifier) Notify(ctx context.Context, body string) { n.bodies = append(n.bodies, body) }

func TestSystemCommands(t *testing.T) {
	shell := &fakeShell{}
	desktop := &fakeDesktop{}
	notes := &fakeNotifier{}
	env := handlertest.New(t, nil)
	env.Add(t, system.NewHandler(fakePaths{}, shell, desktop, notes))

	if res := env.Send(t, command.GetLocalID, nil, 0); res.Value != "%2Fhome%2Fjo%20doe" {
		t.Errorf("get-local-id = %v", res.Value)
	}
	if res := env.Send(t, command.GetPath, `{"name":"downloads"}`, 0); res.Value != "/home/jo doe/Downloads" {
		t.Errorf("get-path = %+v", res)
	}
	if res := env.Send(t, command.GetPath, `{"name":"nope"}`, 0); !res.IsError() {
		t.Errorf("get-path(nope) = %+v", res)
	}

	env.Send(t, command.ShowNotification, `{"body":42}`, 0)
	if len(notes.bodies) != 1 || notes.bodies[0] != "42" {
		t.Errorf("notifications = %v", notes.bodies)
	}

	res := env.Send(t, command.ShowOpenDialog, `{"properties":["openFile"]}`, 0)
	if got, _ := res.JSON(); string(got) != `["/tmp/a.txt"]` {
		t.Errorf("show-open-dialog = %s", got)
	}
	if desktop.parent != view.Window(env.Host) || string(desktop.opts) != `{"properties":["openFile"]}` {
		t.Errorf("dialog parent/opts = %v, %s", desktop.parent, desktop.opts)
	}

	if res := env.Send(t, command.GetFileIcon, `{"path":"/tmp/a.txt"}`, 0); res.Value != "data:image/png;base64,AAAA" {
		t.Errorf("get-file-icon = %+v", res)
	}
	if res := env.Send(t, command.ShowItemInFolder, `{"path":"/tmp/a.txt"}`, 0); res.Value != true || len(shell.shown) != 1 {
		t.Errorf("show-item-in-folder = %+v", res)
	}
	if res := env.Send(t, command.ResolveShortcut, `{"path":"C:\\Users\\jo\\Desktop\\Editor.lnk"}`, 0); res.Value != `C:\Program Files\Editor\editor.exe` {
		t.Errorf("resolve-shortcut = %+v", res)
	}
	if res := env.Send(t, command.ResolveShortcut, `{"path":"/tmp/a.txt"}`, 0); res.Value != nil || res.IsError() {
		t.Errorf("resolve-shortcut(plain file) = %+v", res)
	}
	if res := env.Send(t, command.Beep, nil, 0); res.Value != true || shell.beeps != 1 {
		t.Errorf("beep = %+v", res)
	}
}

func TestDialogsWithoutDesktop(t *testing.T) {
	env := handlertest.New(t, nil)
	env.Add(t, system.NewHandler(fakePaths{}, &fakeShell{}, nil, &fakeNotifier{}))
	for _, name := range []command.Name{command.ShowOpenDialog, command.ShowSaveDialog} {
		if res := env.Send(t, name, `{}`, 0); res.Status != handler.StatusNoOp {
			t.Errorf("%s = %+v", name, res)
		}
	}
	if res := env.Send(t, command.GetFileIcon, `{"path":"/tmp/a.txt"}`, 0); res.Status != handler.StatusNoOp {
		t.Errorf("get-file-icon = %+v", res)
	}
}

func TestAppList(t *testing.T) {
	code := search.App{Name: "Code", Action: "code", Keywords: []string{"Code"}}
	tests := []struct {
		name   string
		apps   system.Apps
		status handler.ResultStatus
		count  int
	}{
		{"found", fakeApps{apps: []search.App{code}}, handler.StatusOK, 1},
		{"none installed", fakeApps{}, handler.StatusOK, 0},
		{"scan failed", fakeApps{err: errors.New("denied")}, handler.StatusError, 0},
		{"no finder", nil, handler.StatusNoOp, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := handlertest.New(t, nil)
			h := system.NewHandler(fakePaths{}, &fakeShell{}, nil, &fakeNotifier{})
			if tt.apps != nil {
				h = h.WithApps(tt.apps)
			}
			env.Add(t, h)

			res := env.Send(t, command.GetAppList, nil, 0)
			if res.Status != tt.status {
				t.Fatalf("get-app-list = %+v, want status %v", res, tt.status)
			}
			if tt.status != handler.StatusOK {
				return
			}
			apps, ok := res.Value.([]search.App)
			if !ok || len(apps) != tt.count {
				t.Errorf("get-app-list value = %#v", res.Value)
			}
		})
	}
}
