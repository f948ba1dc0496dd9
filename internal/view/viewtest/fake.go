// Package viewtest provides in-memory windows and surfaces for tests.
package viewtest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/dshills/quickbar/internal/input/key"
	"github.com/dshills/quickbar/internal/plugin/manifest"
	"github.com/dshills/quickbar/internal/view"
)

// ErrUnresponsive is returned by calls into content marked unresponsive.
var ErrUnresponsive = errors.New("viewtest: content unresponsive")

// CallRecord is one invocation of Call.
type CallRecord struct {
	Method string
	Args   json.RawMessage
}

// Window is an in-memory view.Window.
type Window struct {
	mu sync.Mutex

	id      int
	bounds  view.Rect
	visible bool
	surface view.Surface
	closed  bool

	calls   []CallRecord
	replies map[string]json.RawMessage

	// Unresponsive makes every Call fail.
	Unresponsive bool
}

// NewWindow creates a window with the given id and bounds.
func NewWindow(id int, bounds view.Rect) *Window {
	return &Window{id: id, bounds: bounds, replies: make(map[string]json.RawMessage)}
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
}

func (w *Window) SetSize(width, height int) {
	w.mu.Lock()
	w.bounds.Width, w.bounds.Height = width, height
	w.mu.Unlock()
}

func (w *Window) Show() {
	w.mu.Lock()
	w.visible = true
	w.mu.Unlock()
}

func (w *Window) Hide() {
	w.mu.Lock()
	w.visible = false
	w.mu.Unlock()
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
}

func (w *Window) Surface() view.Surface {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.surface
}

// Reply sets the value returned by calls to method.
func (w *Window) Reply(method string, v any) {
	data, _ := json.Marshal(v)
	w.mu.Lock()
	w.replies[method] = data
	w.mu.Unlock()
}

func (w *Window) Call(ctx context.Context, method string, args any) (json.RawMessage, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls = append(w.calls, CallRecord{Method: method, Args: marshal(args)})
	if w.Unresponsive {
		return nil, ErrUnresponsive
	}
	if r, ok := w.replies[method]; ok {
		return r, nil
	}
	return json.RawMessage("null"), nil
}

// Calls returns every call made so far.
func (w *Window) Calls() []CallRecord {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]CallRecord(nil), w.calls...)
}

// LastCall returns the most recent call to method.
func (w *Window) LastCall(method string) (CallRecord, bool) {
	return lastCall(w.Calls(), method)
}

func (w *Window) Close() error {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	return nil
}

// Closed reports whether Close was called.
func (w *Window) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// Surface is an in-memory view.Surface.
type Surface struct {
	mu sync.Mutex

	id        string
	url       string
	bounds    view.Rect
	closed    bool
	focused   bool
	devtools  bool
	listeners []func(key.Event)
	sent      []key.Event
	calls     []CallRecord

	// LoadErr is returned by Load when set.
	LoadErr error
}

// NewSurface creates a surface with id.
func NewSurface(id string) *Surface {
	return &Surface{id: id}
}

func (s *Surface) ID() string { return s.id }

func (s *Surface) Load(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return s.LoadErr
	}
	s.url = url
	return nil
}

// URL returns the last loaded url.
func (s *Surface) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url
}

func (s *Surface) SetBounds(r view.Rect) {
	s.mu.Lock()
	s.bounds = r
	s.mu.Unlock()
}

// Bounds returns the last bounds set.
func (s *Surface) Bounds() view.Rect {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bounds
}

func (s *Surface) Call(ctx context.Context, method string, args any) (json.RawMessage, error) {
	s.mu.Lock()
	s.calls = append(s.calls, CallRecord{Method: method, Args: marshal(args)})
	s.mu.Unlock()
	return json.RawMessage("null"), nil
}

// Calls returns every call made so far.
func (s *Surface) Calls() []CallRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]CallRecord(nil), s.calls...)
}

// LastCall returns the most recent call to method.
func (s *Surface) LastCall(method string) (CallRecord, bool) {
	return lastCall(s.Calls(), method)
}

func (s *Surface) SendInputEvent(ev key.Event) error {
	s.mu.Lock()
	s.sent = append(s.sent, ev)
	s.mu.Unlock()
	return nil
}

// Sent returns synthesized events.
func (s *Surface) Sent() []key.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]key.Event(nil), s.sent...)
}

func (s *Surface) OnInput(fn func(key.Event)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Listeners returns how many input listeners are registered.
func (s *Surface) Listeners() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

// Press delivers ev to the registered listeners.
func (s *Surface) Press(ev key.Event) {
	s.mu.Lock()
	ls := slices.Clone(s.listeners)
	s.mu.Unlock()
	for _, fn := range ls {
		fn(ev)
	}
}

func (s *Surface) Focus() {
	s.mu.Lock()
	s.focused = true
	s.mu.Unlock()
}

// Focused reports whether Focus was called.
func (s *Surface) Focused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focused
}

func (s *Surface) OpenDevTools() {
	s.mu.Lock()
	s.devtools = true
	s.mu.Unlock()
}

// DevToolsOpened reports whether OpenDevTools was called.
func (s *Surface) DevToolsOpened() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.devtools
}

func (s *Surface) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// Closed reports whether Close was called.
func (s *Surface) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Factory creates fake surfaces and windows, remembering them in order.
type Factory struct {
	mu       sync.Mutex
	surfaces []*Surface
	windows  []*Window
	nextWin  int

	// WindowErr is returned by NewDetachedWindow when set.
	WindowErr error
}

// NewFactory creates a factory whose windows start at id 100.
func NewFactory() *Factory {
	return &Factory{nextWin: 100}
}

func (f *Factory) NewSurface(ctx context.Context, d *manifest.Descriptor) (view.Surface, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := NewSurface(fmt.Sprintf("%s-%d", d.Name, len(f.surfaces)+1))
	f.surfaces = append(f.surfaces, s)
	return s, nil
}

func (f *Factory) NewDetachedWindow(ctx context.Context, d *manifest.Descriptor, bounds view.Rect) (view.Window, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WindowErr != nil {
		return nil, f.WindowErr
	}
	f.nextWin++
	w := NewWindow(f.nextWin, bounds)
	f.windows = append(f.windows, w)
	return w, nil
}

// Surfaces returns every surface created.
func (f *Factory) Surfaces() []*Surface {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*Surface(nil), f.surfaces...)
}

// Windows returns every detached window created.
func (f *Factory) Windows() []*Window {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*Window(nil), f.windows...)
}

// Screen is a fixed view.Screen.
type Screen struct {
	Cursor  view.Point
	Display view.Rect
}

func (s Screen) CursorPoint() view.Point            { return s.Cursor }
func (s Screen) DisplayBounds(view.Point) view.Rect { return s.Display }

func marshal(v any) json.RawMessage {
	switch t := v.(type) {
	case nil:
		return nil
	case json.RawMessage:
		return t
	}
	data, _ := json.Marshal(v)
	return data
}

func lastCall(calls []CallRecord, method string) (CallRecord, bool) {
	for i := len(calls) - 1; i >= 0; i-- {
		if calls[i].Method == method {
			return calls[i], true
		}
	}
	return CallRecord{}, false
}
