package plugin

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/dshills/quickbar/internal/plugin/feature"
	"github.com/dshills/quickbar/internal/plugin/manifest"
	"github.com/dshills/quickbar/internal/view"
)

// DefaultNamespace scopes documents written while no plugin is open.
const DefaultNamespace = "quickbar"

// Notification is a user-visible desktop notification.
type Notification struct {
	Title string
	Body  string
	Icon  string
}

// Notifier displays desktop notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Documents is a plugin-scoped JSON document store.
type Documents interface {
	Put(ctx context.Context, ns string, doc json.RawMessage) (json.RawMessage, error)
	Get(ctx context.Context, ns, id string) (json.RawMessage, error)
	Remove(ctx context.Context, ns, id string) (json.RawMessage, error)
	AllDocs(ctx context.Context, ns, prefix string) ([]json.RawMessage, error)
}

// Config configures the Manager.
type Config struct {
	// Platform is the running platform as named in descriptors.
	Platform string

	// CollapsedHeight is the host window height with no plugin content.
	CollapsedHeight int
}

// DefaultConfig returns the configuration for the running platform.
func DefaultConfig() Config {
	return Config{
		Platform:        CurrentPlatform(),
		CollapsedHeight: 60,
	}
}

// Manager tracks the current plugin and drives its surface through the
// view controller.
type Manager struct {
	mu sync.RWMutex

	config   Config
	views    *view.Controller
	notifier Notifier
	docs     Documents
	logger   hclog.Logger

	current *manifest.Descriptor

	handlersMu    sync.RWMutex
	eventHandlers []EventHandler
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithNotifier sets the notifier used for user-visible failures.
func WithNotifier(n Notifier) ManagerOption {
	return func(m *Manager) { m.notifier = n }
}

// WithStore sets the document store plugins read and write through.
func WithStore(d Documents) ManagerOption {
	return func(m *Manager) { m.docs = d }
}

// WithLogger sets the manager logger.
func WithLogger(l hclog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = l }
}

// NewManager creates a manager driving views.
func NewManager(config Config, views *view.Controller, opts ...ManagerOption) *Manager {
	m := &Manager{
		config: config,
		views:  views,
		logger: hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Views returns the view controller.
func (m *Manager) Views() *view.Controller {
	return m.views
}

// Store returns the document store, or nil.
func (m *Manager) Store() Documents {
	return m.docs
}

// Current returns the current plugin, or nil. The returned descriptor
// is never modified by the manager.
func (m *Manager) Current() *manifest.Descriptor {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Namespace returns the document namespace of the current plugin.
func (m *Manager) Namespace() string {
	if cur := m.Current(); cur != nil {
		return cur.Name
	}
	return DefaultNamespace
}

// Features returns the feature list of the current plugin.
func (m *Manager) Features() []feature.Feature {
	if cur := m.Current(); cur != nil {
		return cur.Features
	}
	return nil
}

// Open makes d the current plugin in host. A plugin that does not support
// the running platform is refused with a notification and leaves the
// current plugin untouched.
func (m *Manager) Open(ctx context.Context, d *manifest.Descriptor, host view.Window) error {
	if d == nil {
		return ErrNilDescriptor
	}

	if !d.SupportsPlatform(m.config.Platform) {
		m.notify(ctx, Notification{
			Title: d.DisplayName(),
			Body:  fmt.Sprintf("%s does not support %s", d.DisplayName(), m.config.Platform),
			Icon:  d.Logo,
		})
		m.emit(ManagerEvent{Type: EventUnsupportedPlatform, Plugin: d.Name})
		return fmt.Errorf("open %s: %w", d.Name, ErrUnsupportedPlatform)
	}

	events, err := m.open(ctx, d, host)
	m.emit(events...)
	return err
}

func (m *Manager) open(ctx context.Context, d *manifest.Descriptor, host view.Window) ([]ManagerEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	host.SetSize(host.Bounds().Width, m.config.CollapsedHeight)
	events := m.removeLocked(host)

	show := d.AutoShow()

	content, err := m.views.Attach(ctx, d, host)
	if err != nil {
		m.logger.Error("attach plugin", "plugin", d.Name, "error", err)
		return append(events, ManagerEvent{Type: EventError, Plugin: d.Name, Error: err}), err
	}

	cur := d.Clone()
	cur.IndexPath = content.IndexPath
	cur.TplPath = content.TplPath
	m.current = cur
	m.views.Notify(ctx, host, view.CallSetCurrentPlugin, currentPayload(cur))

	if show {
		host.Show()
	} else {
		host.Hide()
	}

	m.logger.Info("plugin opened", "plugin", d.Name, "show", show)
	return append(events, ManagerEvent{Type: EventOpened, Plugin: d.Name, Window: host.ID()}), nil
}

// Remove closes the current plugin. It is safe to call with no plugin open.
func (m *Manager) Remove(host view.Window) {
	m.mu.Lock()
	events := m.removeLocked(host)
	m.mu.Unlock()
	m.emit(events...)
}

// removeLocked returns the events to emit once m.mu is released.
func (m *Manager) removeLocked(host view.Window) []ManagerEvent {
	m.views.Remove(host)
	prev := m.current
	m.current = nil
	if prev == nil {
		return nil
	}
	m.logger.Debug("plugin closed", "plugin", prev.Name)
	return []ManagerEvent{{Type: EventClosed, Plugin: prev.Name, Window: host.ID()}}
}

// SetFeature adds f to the current plugin's features. It reports false
// when no plugin is open.
func (m *Manager) SetFeature(ctx context.Context, host view.Window, f feature.Feature) bool {
	return m.updateFeatures(ctx, host, func(fs []feature.Feature) []feature.Feature {
		return feature.Add(fs, f)
	})
}

// RemoveFeature removes features matching code from the current plugin.
// It reports false when no plugin is open.
func (m *Manager) RemoveFeature(ctx context.Context, host view.Window, code feature.Code) bool {
	return m.updateFeatures(ctx, host, func(fs []feature.Feature) []feature.Feature {
		return feature.Remove(fs, code)
	})
}

func (m *Manager) updateFeatures(ctx context.Context, host view.Window, fn func([]feature.Feature) []feature.Feature) bool {
	m.mu.Lock()
	cur := m.current
	if cur == nil {
		m.mu.Unlock()
		return false
	}
	next := cur.WithFeatures(fn(cur.Features))
	m.current = next
	m.mu.Unlock()

	m.views.Notify(ctx, host, view.CallUpdatePlugin, currentPayload(next))
	m.emit(ManagerEvent{Type: EventFeaturesChanged, Plugin: next.Name})
	return true
}

// Detach moves the current plugin into a floating window. The sub-input
// state is read from host with a bounded wait; an unresponsive host
// yields an empty sub-input. With no plugin open, Detach does nothing and
// returns nil.
func (m *Manager) Detach(ctx context.Context, host view.Window) (*view.Detached, error) {
	det, ev, err := m.detach(ctx, host)
	if ev != nil {
		m.emit(*ev)
	}
	return det, err
}

func (m *Manager) detach(ctx context.Context, host view.Window) (*view.Detached, *ManagerEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := m.current
	if cur == nil {
		return nil, nil, nil
	}

	snapshot := m.views.Snapshot(ctx, host)
	det, err := m.views.Detach(ctx, cur, host, snapshot)
	if err != nil {
		return nil, &ManagerEvent{Type: EventError, Plugin: cur.Name, Error: err}, fmt.Errorf("detach %s: %w", cur.Name, err)
	}

	m.views.Notify(ctx, host, view.CallResetInput, nil)
	host.SetSize(host.Bounds().Width, m.config.CollapsedHeight)
	m.current = nil

	return det, &ManagerEvent{Type: EventDetached, Plugin: cur.Name, Window: det.Window.ID()}, nil
}

// Reattach returns the plugin in floating window id to host and makes it
// current. Any plugin open in host is closed first.
func (m *Manager) Reattach(ctx context.Context, host view.Window, id int) error {
	events, err := m.reattach(ctx, host, id)
	m.emit(events...)
	return err
}

func (m *Manager) reattach(ctx context.Context, host view.Window, id int) ([]ManagerEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.views.Detached(id); !ok {
		return nil, fmt.Errorf("reattach window %d: %w", id, view.ErrNotDetached)
	}
	events := m.removeLocked(host)

	det, err := m.views.Reattach(ctx, host, id)
	if err != nil {
		return events, err
	}

	cur := det.Plugin.Clone()
	cur.SubInput = nil
	m.current = cur
	m.views.Notify(ctx, host, view.CallSetCurrentPlugin, currentPayload(cur))
	host.Show()

	return append(events, ManagerEvent{Type: EventReattached, Plugin: cur.Name, Window: id}), nil
}

// CloseDetached disposes floating window id after the user closed it. It
// reports false when id names no detached plugin window.
func (m *Manager) CloseDetached(id int) bool {
	m.mu.Lock()
	det, ok := m.views.CloseDetached(id)
	m.mu.Unlock()
	if !ok {
		return false
	}
	m.emit(ManagerEvent{Type: EventClosed, Plugin: det.Plugin.Name, Window: id})
	return true
}

// Notify shows a notification on behalf of the current plugin.
func (m *Manager) Notify(ctx context.Context, body string) {
	n := Notification{Title: "quickbar", Body: body}
	if cur := m.Current(); cur != nil {
		n.Title = cur.DisplayName()
		n.Icon = cur.Logo
	}
	m.notify(ctx, n)
}

func (m *Manager) notify(ctx context.Context, n Notification) {
	if m.notifier == nil {
		m.logger.Warn("notification dropped", "title", n.Title, "body", n.Body)
		return
	}
	if err := m.notifier.Notify(ctx, n); err != nil {
		m.logger.Warn("show notification", "error", err)
	}
}

// Subscribe registers an event handler.
func (m *Manager) Subscribe(h EventHandler) {
	m.handlersMu.Lock()
	m.eventHandlers = append(m.eventHandlers, h)
	m.handlersMu.Unlock()
}

// emit runs the handlers for each event in order. It must not be called
// with m.mu held.
func (m *Manager) emit(events ...ManagerEvent) {
	if len(events) == 0 {
		return
	}
	m.handlersMu.RLock()
	handlers := slices.Clone(m.eventHandlers)
	m.handlersMu.RUnlock()

	for _, ev := range events {
		for _, h := range handlers {
			m.runHandler(h, ev)
		}
	}
}

func (m *Manager) runHandler(h EventHandler, ev ManagerEvent) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("event handler panic", "event", ev.Type.String(), "panic", r)
		}
	}()
	h(ev)
}

func currentPayload(d *manifest.Descriptor) map[string]any {
	return map[string]any{"currentPlugin": d}
}
