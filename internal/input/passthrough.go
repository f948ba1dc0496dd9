package input

import (
	"context"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/dshills/quickbar/internal/input/key"
	"github.com/dshills/quickbar/internal/plugin/manifest"
	"github.com/dshills/quickbar/internal/view"
)

// CancelKey is the reserved shortcut that closes the current plugin.
const CancelKey = key.KeyEscape

// Plugins is the lifecycle state the cancel shortcut acts on.
type Plugins interface {
	Current() *manifest.Descriptor
	Remove(host view.Window)
}

// Surfaces reports the surface attached to the host window.
type Surfaces interface {
	Surface() view.Surface
}

// Passthrough intercepts the cancel shortcut and synthesizes key input
// into the attached surface.
type Passthrough struct {
	host     view.Window
	plugins  Plugins
	surfaces Surfaces
	sink     Sink
	logger   hclog.Logger
}

// Option configures a Passthrough.
type Option func(*Passthrough)

// WithSink replaces the default SurfaceSink.
func WithSink(s Sink) Option {
	return func(p *Passthrough) { p.sink = s }
}

// WithLogger sets the logger.
func WithLogger(l hclog.Logger) Option {
	return func(p *Passthrough) { p.logger = l }
}

// New creates a passthrough for host.
func New(host view.Window, plugins Plugins, surfaces Surfaces, opts ...Option) *Passthrough {
	p := &Passthrough{
		host:     host,
		plugins:  plugins,
		surfaces: surfaces,
		sink:     SurfaceSink{},
		logger:   hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// IsCancel reports whether ev is the bare cancel shortcut.
func IsCancel(ev key.Event) bool {
	return ev.Type == key.TypeDown && ev.Key == CancelKey && !ev.IsModified()
}

// HandleKey inspects a key event observed on the host window. It returns
// true when the event was consumed by the cancel shortcut.
func (p *Passthrough) HandleKey(ev key.Event) bool {
	if !IsCancel(ev) {
		return false
	}
	if cur := p.plugins.Current(); cur != nil {
		p.logger.Debug("cancel shortcut closes plugin", "plugin", cur.Name)
		p.plugins.Remove(p.host)
		return true
	}
	p.logger.Debug("cancel shortcut hides host")
	p.host.Hide()
	return true
}

// HandleSurfaceKey is the listener registered on plugin surfaces. Only
// the surface attached to the host window takes part in the shortcut;
// floating windows keep their own key handling.
func (p *Passthrough) HandleSurfaceKey(s view.Surface, ev key.Event) {
	if s == nil || p.surfaces.Surface() != s {
		return
	}
	p.HandleKey(ev)
}

// Tap synthesizes a press of the named key into the attached surface.
// Modifiers are applied in the order given. Unknown keys and requests
// made while no surface is attached are dropped.
func (p *Passthrough) Tap(ctx context.Context, name string, modifiers []string) bool {
	name = strings.ToLower(name)
	k, r, ok := key.Lookup(name)
	if !ok {
		p.logger.Debug("synthetic key ignored", "key", name)
		return false
	}
	return p.send(ctx, k, r, modifiers)
}

// KeyDown synthesizes a press of the key with the given key code.
func (p *Passthrough) KeyDown(ctx context.Context, keyCode int, modifiers []string) bool {
	k, r, ok := key.DecodeKeyCode(keyCode)
	if !ok {
		p.logger.Debug("synthetic key code ignored", "key_code", keyCode)
		return false
	}
	return p.send(ctx, k, r, modifiers)
}

func (p *Passthrough) send(ctx context.Context, k key.Key, r rune, modifiers []string) bool {
	s := p.surfaces.Surface()
	if s == nil {
		p.logger.Debug("synthetic key ignored, no surface attached")
		return false
	}
	ev := key.NewEvent(k, r, key.ModNone)
	if order := modifierOrder(modifiers); len(order) > 0 {
		ev.Modifiers = key.ParseModifiers(order)
		ev.ModifierOrder = order
	}
	if err := p.sink.Send(ctx, s, ev); err != nil {
		p.logger.Warn("synthesize key", "key", ev.String(), "error", err)
		return false
	}
	return true
}

// modifierOrder keeps the recognized modifier names, lowercased, in the
// order requested.
func modifierOrder(names []string) []string {
	var out []string
	seen := key.ModNone
	for _, n := range names {
		m, ok := key.ParseModifier(n)
		if !ok || seen.Has(m) {
			continue
		}
		seen |= m
		out = append(out, strings.ToLower(strings.TrimSpace(n)))
	}
	return out
}
