package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/dshills/quickbar/internal/input/key"
	"github.com/dshills/quickbar/internal/plugin"
	"github.com/dshills/quickbar/internal/plugin/manifest"
	"github.com/dshills/quickbar/internal/view"
)

// Methods served by the shell peer.
const (
	ShellCreateSurface = "surface.create"
	ShellLoadSurface   = "surface.load"
	ShellSurfaceBounds = "surface.setBounds"
	ShellFocusSurface  = "surface.focus"
	ShellDevTools      = "surface.devtools"
	ShellCloseSurface  = "surface.close"
	ShellCreateWindow  = "window.create"
	ShellWindowBounds  = "window.setBounds"
	ShellShowWindow    = "window.show"
	ShellHideWindow    = "window.hide"
	ShellWindowSurface = "window.setSurface"
	ShellCloseWindow   = "window.close"
	ShellCursor        = "screen.cursor"
	ShellDisplay       = "screen.display"
	ShellOpenDialog    = "dialog.open"
	ShellSaveDialog    = "dialog.save"
	ShellFileIcon      = "file.icon"
	ShellNotification  = "notification"
	ShellPluginEvent   = "plugin.event"
)

// Events sent by the shell peer.
const (
	EventWindowBounds  = "window.bounds"
	EventWindowVisible = "window.visible"
	EventWindowClosed  = "window.closed"
)

// MethodInput is sent to content to synthesize a key event.
const MethodInput = "input"

// WindowSurfaceID is the surface id under which a window's own UI
// content connects.
func WindowSurfaceID(windowID int) string {
	return "window-" + strconv.Itoa(windowID)
}

// Shell exposes the shell peer as the host's window system.
type Shell struct {
	srv      *Server
	host     *Window
	fallback plugin.Notifier

	mu       sync.Mutex
	windows  map[int]*Window
	onClosed []func(id int)
}

func newShell(srv *Server, hostID int) *Shell {
	s := &Shell{srv: srv, windows: make(map[int]*Window)}
	s.host = s.window(hostID, view.Rect{})
	return s
}

// Host returns the host window.
func (s *Shell) Host() *Window {
	return s.host
}

// SetFallbackNotifier sets the notifier used while no shell is
// connected.
func (s *Shell) SetFallbackNotifier(n plugin.Notifier) {
	s.fallback = n
}

// OnWindowClosed registers fn to run when the user closes a window other
// than the host. fn runs on the shell connection's worker.
func (s *Shell) OnWindowClosed(fn func(id int)) {
	s.mu.Lock()
	s.onClosed = append(s.onClosed, fn)
	s.mu.Unlock()
}

// PublishPluginEvent forwards a lifecycle transition to the shell.
func (s *Shell) PublishPluginEvent(ev plugin.ManagerEvent) {
	params := map[string]any{"type": ev.Type.String(), "plugin": ev.Plugin}
	if ev.Window != 0 {
		params["window"] = ev.Window
	}
	if ev.Error != nil {
		params["error"] = ev.Error.Error()
	}
	s.notify(ShellPluginEvent, params)
}

func (s *Shell) window(id int, bounds view.Rect) *Window {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok := s.windows[id]; ok {
		return w
	}
	w := &Window{id: id, shell: s, bounds: bounds}
	s.windows[id] = w
	return w
}

func (s *Shell) lookupWindow(id int) *Window {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.windows[id]
}

func (s *Shell) forgetWindow(id int) {
	s.mu.Lock()
	delete(s.windows, id)
	s.mu.Unlock()
}

func (s *Shell) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	p := s.srv.shellPeer()
	if p == nil {
		return nil, fmt.Errorf("%s: %w", method, ErrPeerUnavailable)
	}
	return p.Call(ctx, method, params)
}

func (s *Shell) notify(method string, params any) {
	p := s.srv.shellPeer()
	if p == nil {
		s.srv.logger.Debug("shell not connected, event dropped", "method", method)
		return
	}
	if err := p.Notify(method, params); err != nil {
		s.srv.logger.Warn("shell event failed", "method", method, "error", err)
	}
}

// NewSurface implements view.Factory.
func (s *Shell) NewSurface(ctx context.Context, d *manifest.Descriptor) (view.Surface, error) {
	id := uuid.New().String()
	if _, err := s.call(ctx, ShellCreateSurface, map[string]any{"id": id, "plugin": d}); err != nil {
		return nil, err
	}
	sf := &Surface{id: id, shell: s}
	s.srv.addSurface(sf)
	return sf, nil
}

// NewDetachedWindow implements view.Factory.
func (s *Shell) NewDetachedWindow(ctx context.Context, d *manifest.Descriptor, bounds view.Rect) (view.Window, error) {
	raw, err := s.call(ctx, ShellCreateWindow, map[string]any{"plugin": d, "bounds": bounds})
	if err != nil {
		return nil, err
	}
	id := gjson.GetBytes(raw, "id")
	if !id.Exists() {
		return nil, fmt.Errorf("%s: %w: missing window id", ShellCreateWindow, ErrBadFrame)
	}
	return s.window(int(id.Int()), bounds), nil
}

// CursorPoint implements view.Screen. It returns the origin when the
// shell cannot answer.
func (s *Shell) CursorPoint() view.Point {
	var p view.Point
	raw, err := s.call(context.Background(), ShellCursor, nil)
	if err == nil {
		_ = json.Unmarshal(raw, &p)
	}
	return p
}

// DisplayBounds implements view.Screen.
func (s *Shell) DisplayBounds(p view.Point) view.Rect {
	var r view.Rect
	raw, err := s.call(context.Background(), ShellDisplay, p)
	if err == nil {
		_ = json.Unmarshal(raw, &r)
	}
	return r
}

// ShowOpenDialog shows an open dialog parented to parent.
func (s *Shell) ShowOpenDialog(ctx context.Context, parent view.Window, opts json.RawMessage) (json.RawMessage, error) {
	return s.call(ctx, ShellOpenDialog, dialogParams(parent, opts))
}

// ShowSaveDialog shows a save dialog parented to parent.
func (s *Shell) ShowSaveDialog(ctx context.Context, parent view.Window, opts json.RawMessage) (json.RawMessage, error) {
	return s.call(ctx, ShellSaveDialog, dialogParams(parent, opts))
}

func dialogParams(parent view.Window, opts json.RawMessage) map[string]any {
	params := map[string]any{"options": opts}
	if parent != nil {
		params["window"] = parent.ID()
	}
	return params
}

// FileIcon returns the icon of path as a data URL.
func (s *Shell) FileIcon(ctx context.Context, path string) (string, error) {
	raw, err := s.call(ctx, ShellFileIcon, map[string]string{"path": path})
	if err != nil {
		return "", err
	}
	return gjson.ParseBytes(raw).String(), nil
}

// Notify implements plugin.Notifier.
func (s *Shell) Notify(ctx context.Context, n plugin.Notification) error {
	if s.srv.shellPeer() == nil && s.fallback != nil {
		return s.fallback.Notify(ctx, n)
	}
	_, err := s.call(ctx, ShellNotification, map[string]string{"title": n.Title, "body": n.Body, "icon": n.Icon})
	return err
}

// handleEvent applies state pushed by the shell.
func (s *Shell) handleEvent(f Frame) {
	id := int(gjson.GetBytes(f.Params, "id").Int())
	w := s.lookupWindow(id)
	if w == nil {
		return
	}
	switch f.Method {
	case EventWindowBounds:
		var r view.Rect
		if err := json.Unmarshal([]byte(gjson.GetBytes(f.Params, "bounds").Raw), &r); err == nil {
			w.mu.Lock()
			w.bounds = r
			w.mu.Unlock()
		}
	case EventWindowVisible:
		w.mu.Lock()
		w.visible = gjson.GetBytes(f.Params, "visible").Bool()
		w.mu.Unlock()
	case EventWindowClosed:
		if w == s.host {
			return
		}
		w.mu.Lock()
		w.closed = true
		w.visible = false
		w.mu.Unlock()
		s.forgetWindow(id)

		s.mu.Lock()
		fns := slices.Clone(s.onClosed)
		s.mu.Unlock()
		for _, fn := range fns {
			fn(id)
		}
	}
}

// Window is a native window owned by the shell.
type Window struct {
	id    int
	shell *Shell

	mu      sync.Mutex
	bounds  view.Rect
	visible bool
	closed  bool
	surface view.Surface
}

func (w *Window) ID() int { return w.id }

func (w *Window) Bounds() view.Rect {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.bounds
}

func (w *Window) SetBounds(r view.Rect) {
	w.mu.Lock()
	w.bounds = r
	w.mu.Unlock()
	w.shell.notify(ShellWindowBounds, map[string]any{"id": w.id, "bounds": r})
}

func (w *Window) SetSize(width, height int) {
	w.mu.Lock()
	w.bounds.Width, w.bounds.Height = width, height
	r := w.bounds
	w.mu.Unlock()
	w.shell.notify(ShellWindowBounds, map[string]any{"id": w.id, "bounds": r})
}

func (w *Window) Show() {
	w.mu.Lock()
	w.visible = true
	w.mu.Unlock()
	w.shell.notify(ShellShowWindow, map[string]int{"id": w.id})
}

func (w *Window) Hide() {
	w.mu.Lock()
	w.visible = false
	w.mu.Unlock()
	w.shell.notify(ShellHideWindow, map[string]int{"id": w.id})
}

func (w *Window) IsVisible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visible
}

func (w *Window) SetSurface(s view.Surface) {
	w.mu.Lock()
	w.surface = s
	w.mu.Unlock()
	id := ""
	if s != nil {
		id = s.ID()
	}
	w.shell.notify(ShellWindowSurface, map[string]any{"id": w.id, "surface": id})
}

func (w *Window) Surface() view.Surface {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.surface
}

// Call invokes a function of the window's UI content.
func (w *Window) Call(ctx context.Context, method string, args any) (json.RawMessage, error) {
	p := w.shell.srv.contentPeer(WindowSurfaceID(w.id))
	if p == nil {
		return nil, fmt.Errorf("window %d: %w", w.id, ErrPeerUnavailable)
	}
	return p.Call(ctx, method, args)
}

// Close closes the window. A window the shell already reported closed is
// only forgotten.
func (w *Window) Close() error {
	w.mu.Lock()
	closed := w.closed
	w.closed = true
	w.mu.Unlock()
	if !closed {
		w.shell.notify(ShellCloseWindow, map[string]int{"id": w.id})
	}
	w.shell.forgetWindow(w.id)
	return nil
}

// Surface is plugin content rendered by the shell.
type Surface struct {
	id    string
	shell *Shell

	mu        sync.Mutex
	listeners []func(key.Event)
}

func (s *Surface) ID() string { return s.id }

func (s *Surface) Load(ctx context.Context, url string) error {
	_, err := s.shell.call(ctx, ShellLoadSurface, map[string]string{"id": s.id, "url": url})
	return err
}

func (s *Surface) SetBounds(r view.Rect) {
	s.shell.notify(ShellSurfaceBounds, map[string]any{"id": s.id, "bounds": r})
}

// Call invokes a function of the plugin content.
func (s *Surface) Call(ctx context.Context, method string, args any) (json.RawMessage, error) {
	p := s.shell.srv.contentPeer(s.id)
	if p == nil {
		return nil, fmt.Errorf("surface %s: %w", s.id, ErrPeerUnavailable)
	}
	return p.Call(ctx, method, args)
}

func (s *Surface) SendInputEvent(ev key.Event) error {
	p := s.shell.srv.contentPeer(s.id)
	if p == nil {
		return fmt.Errorf("surface %s: %w", s.id, ErrPeerUnavailable)
	}
	return p.Notify(MethodInput, EncodeKey(ev))
}

func (s *Surface) OnInput(fn func(key.Event)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Surface) deliver(ev key.Event) {
	s.mu.Lock()
	ls := slices.Clone(s.listeners)
	s.mu.Unlock()
	for _, fn := range ls {
		fn(ev)
	}
}

func (s *Surface) Focus() {
	s.shell.notify(ShellFocusSurface, map[string]string{"id": s.id})
}

func (s *Surface) OpenDevTools() {
	s.shell.notify(ShellDevTools, map[string]string{"id": s.id})
}

func (s *Surface) Close() error {
	s.shell.notify(ShellCloseSurface, map[string]string{"id": s.id})
	s.shell.srv.removeSurface(s.id)
	return nil
}
