package view

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/quickbar/internal/input/key"
	"github.com/dshills/quickbar/internal/plugin/manifest"
)

// Errors returned by the controller.
var (
	// ErrNoSurface indicates no surface is attached to the host window.
	ErrNoSurface = errors.New("view: no surface attached")

	// ErrNotDetached indicates the window id names no detached window.
	ErrNotDetached = errors.New("view: window is not a detached plugin window")
)

// Config configures a Controller.
type Config struct {
	// InstallDir holds installed plugins under node_modules/<name>.
	InstallDir string

	// StaticDir holds the bundled feature and template pages.
	StaticDir string

	Development    bool
	SystemDevURL   string
	TemplateDevURL string

	// InputHeight is the height of the search field, which is also the
	// collapsed window height.
	InputHeight int

	// MaxHeight is the tallest a window grows with a plugin expanded.
	MaxHeight int

	// CallTimeout bounds every round trip into window or plugin content.
	CallTimeout time.Duration
}

// DefaultConfig returns the default controller configuration.
func DefaultConfig() Config {
	return Config{
		SystemDevURL:   "http://localhost:8081/#/",
		TemplateDevURL: "http://localhost:8083/#/",
		InputHeight:    60,
		MaxHeight:      660,
		CallTimeout:    2 * time.Second,
	}
}

// Detached is a plugin surface living in its own floating window.
type Detached struct {
	Window   Window
	Surface  Surface
	Plugin   *manifest.Descriptor
	SubInput manifest.SubInput
}

// Controller is the single owner of plugin surfaces. It binds the active
// surface to the host window and moves surfaces in and out of floating
// windows.
type Controller struct {
	mu sync.Mutex

	config  Config
	factory Factory
	logger  hclog.Logger
	onInput func(Surface, key.Event)

	surface  Surface
	inited   bool
	detached map[int]*Detached
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(l hclog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithInputListener sets the function registered on each surface after
// its first load.
func WithInputListener(fn func(Surface, key.Event)) Option {
	return func(c *Controller) { c.onInput = fn }
}

// NewController creates a controller creating surfaces with factory.
func NewController(config Config, factory Factory, opts ...Option) *Controller {
	c := &Controller{
		config:   config,
		factory:  factory,
		logger:   hclog.NewNullLogger(),
		detached: make(map[int]*Detached),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the controller configuration.
func (c *Controller) Config() Config {
	return c.config
}

// Surface returns the surface attached to the host window, or nil.
func (c *Controller) Surface() Surface {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.surface
}

// SurfaceOf returns the surface shown in w: a floating window's own
// surface, or the attached surface for any other window. It returns nil
// for a nil window.
func (c *Controller) SurfaceOf(w Window) Surface {
	if w == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if det, ok := c.detached[w.ID()]; ok {
		return det.Surface
	}
	return c.surface
}

// Inited reports whether the attached surface has completed its first
// load and has its input listener registered.
func (c *Controller) Inited() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inited
}

// Attach loads d into a new surface bound to host. Any surface already
// attached is disposed first.
func (c *Controller) Attach(ctx context.Context, d *manifest.Descriptor, host Window) (Content, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.removeLocked(host)

	content := c.Resolve(d)
	s, err := c.factory.NewSurface(ctx, d)
	if err != nil {
		return content, fmt.Errorf("create surface for %s: %w", d.Name, err)
	}

	host.SetSurface(s)
	w := host.Bounds().Width
	s.SetBounds(Rect{X: 0, Y: c.config.InputHeight, Width: w, Height: c.config.MaxHeight - c.config.InputHeight})

	if err := s.Load(ctx, content.URL); err != nil {
		host.SetSurface(nil)
		_ = s.Close()
		return content, fmt.Errorf("load %s: %w", content.URL, err)
	}

	c.surface = s
	if !c.inited {
		if c.onInput != nil {
			fn := c.onInput
			s.OnInput(func(ev key.Event) { fn(s, ev) })
		}
		c.inited = true
	}

	c.logger.Debug("surface attached", "plugin", d.Name, "surface", s.ID(), "url", content.URL)
	return content, nil
}

// Remove unbinds and disposes the attached surface. It does nothing when
// no surface is attached.
func (c *Controller) Remove(host Window) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(host)
}

func (c *Controller) removeLocked(host Window) {
	s := c.surface
	if s == nil {
		return
	}
	if host != nil && host.Surface() == s {
		host.SetSurface(nil)
	}
	c.surface = nil
	c.inited = false
	if err := s.Close(); err != nil {
		c.logger.Warn("close surface", "surface", s.ID(), "error", err)
	}
	c.logger.Debug("surface removed", "surface", s.ID())
}

// Snapshot reads the sub-input overlay state of w. An unresponsive
// window yields the empty state.
func (c *Controller) Snapshot(ctx context.Context, w Window) manifest.SubInput {
	raw, err := c.call(ctx, w.Call, CallGetMainInputInfo, nil)
	if err != nil {
		c.logger.Warn("sub-input snapshot unavailable", "window", w.ID(), "error", err)
		return manifest.SubInput{}
	}
	res := gjson.ParseBytes(raw)
	return manifest.SubInput{
		Placeholder: res.Get("placeholder").String(),
		Value:       res.Get("value").String(),
	}
}

// Detach moves the attached surface out of host into a new floating
// window placed at host's bounds, and restores snapshot into the new
// window's sub-input.
func (c *Controller) Detach(ctx context.Context, d *manifest.Descriptor, host Window, snapshot manifest.SubInput) (*Detached, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.surface
	if s == nil {
		return nil, ErrNoSurface
	}

	plugin := d.Clone()
	plugin.SubInput = &manifest.SubInput{Placeholder: snapshot.Placeholder, Value: snapshot.Value}

	bounds := host.Bounds()
	host.SetSurface(nil)

	win, err := c.factory.NewDetachedWindow(ctx, plugin, bounds)
	if err != nil {
		host.SetSurface(s)
		return nil, fmt.Errorf("create detached window: %w", err)
	}
	win.SetSurface(s)
	s.SetBounds(Rect{X: 0, Y: c.config.InputHeight, Width: bounds.Width, Height: bounds.Height - c.config.InputHeight})

	det := &Detached{Window: win, Surface: s, Plugin: plugin, SubInput: snapshot}
	c.detached[win.ID()] = det
	c.surface = nil
	c.inited = false

	c.restoreSubInput(ctx, win, snapshot)
	c.logger.Info("plugin detached", "plugin", d.Name, "window", win.ID())
	return det, nil
}

// Reattach moves the surface of detached window id back into host,
// restores its sub-input into host, collapses host and closes the
// floating window. Any surface attached to host is disposed first.
func (c *Controller) Reattach(ctx context.Context, host Window, id int) (*Detached, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	det, ok := c.detached[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNotDetached, id)
	}
	delete(c.detached, id)

	c.removeLocked(host)

	det.Window.SetSurface(nil)
	host.SetSurface(det.Surface)
	b := host.Bounds()
	det.Surface.SetBounds(Rect{X: 0, Y: c.config.InputHeight, Width: b.Width, Height: c.config.MaxHeight - c.config.InputHeight})
	c.surface = det.Surface
	c.inited = true

	c.restoreSubInput(ctx, host, det.SubInput)
	host.SetSize(b.Width, c.config.InputHeight)

	if err := det.Window.Close(); err != nil {
		c.logger.Warn("close detached window", "window", id, "error", err)
	}
	c.logger.Info("plugin reattached", "plugin", det.Plugin.Name, "window", id)
	return det, nil
}

// CloseDetached disposes a floating window and its surface and returns
// what was detached there. It reports false when id names no detached
// window.
func (c *Controller) CloseDetached(id int) (*Detached, bool) {
	c.mu.Lock()
	det, ok := c.detached[id]
	delete(c.detached, id)
	c.mu.Unlock()
	if !ok {
		return nil, false
	}
	if err := det.Surface.Close(); err != nil {
		c.logger.Warn("close detached surface", "window", id, "error", err)
	}
	if err := det.Window.Close(); err != nil {
		c.logger.Warn("close detached window", "window", id, "error", err)
	}
	c.logger.Info("detached window closed", "plugin", det.Plugin.Name, "window", id)
	return det, true
}

// Detached returns the floating window record for id.
func (c *Controller) Detached(id int) (*Detached, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	det, ok := c.detached[id]
	return det, ok
}

// DetachedWindows returns the ids of all floating windows.
func (c *Controller) DetachedWindows() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]int, 0, len(c.detached))
	for id := range c.detached {
		ids = append(ids, id)
	}
	return ids
}

// RecordSubInput updates the remembered sub-input value of a floating
// window, returning false for unknown ids.
func (c *Controller) RecordSubInput(id int, value string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	det, ok := c.detached[id]
	if ok {
		det.SubInput.Value = value
	}
	return ok
}

// Notify calls method on w, waiting at most the configured timeout.
// Failures are logged and otherwise ignored.
func (c *Controller) Notify(ctx context.Context, w Window, method string, args any) {
	if _, err := c.call(ctx, w.Call, method, args); err != nil {
		c.logger.Debug("window call failed", "window", w.ID(), "method", method, "error", err)
	}
}

// NotifySurface calls method on s within the configured timeout.
func (c *Controller) NotifySurface(ctx context.Context, s Surface, method string, args any) {
	if _, err := c.call(ctx, s.Call, method, args); err != nil {
		c.logger.Debug("surface call failed", "surface", s.ID(), "method", method, "error", err)
	}
}

type callFunc func(ctx context.Context, method string, args any) (json.RawMessage, error)

func (c *Controller) call(ctx context.Context, fn callFunc, method string, args any) (json.RawMessage, error) {
	if c.config.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.CallTimeout)
		defer cancel()
	}
	return fn(ctx, method, args)
}

func (c *Controller) restoreSubInput(ctx context.Context, w Window, si manifest.SubInput) {
	placeholder, _ := sjson.SetBytes(nil, "placeholder", si.Placeholder)
	c.Notify(ctx, w, CallSetSubInput, json.RawMessage(placeholder))
	value, _ := sjson.SetBytes(nil, "value", si.Value)
	c.Notify(ctx, w, CallSetSubInputValue, json.RawMessage(value))
}
