// Package app wires the plugin host together and manages its lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/dshills/quickbar/internal/bridge"
	"github.com/dshills/quickbar/internal/config"
	"github.com/dshills/quickbar/internal/dispatcher"
	"github.com/dshills/quickbar/internal/dispatcher/handler"
	"github.com/dshills/quickbar/internal/dispatcher/handlers/capture"
	"github.com/dshills/quickbar/internal/dispatcher/handlers/clipboard"
	"github.com/dshills/quickbar/internal/dispatcher/handlers/db"
	"github.com/dshills/quickbar/internal/dispatcher/handlers/keyboard"
	"github.com/dshills/quickbar/internal/dispatcher/handlers/lifecycle"
	"github.com/dshills/quickbar/internal/dispatcher/handlers/packages"
	"github.com/dshills/quickbar/internal/dispatcher/handlers/system"
	"github.com/dshills/quickbar/internal/dispatcher/handlers/window"
	"github.com/dshills/quickbar/internal/input"
	"github.com/dshills/quickbar/internal/input/key"
	"github.com/dshills/quickbar/internal/osapi"
	"github.com/dshills/quickbar/internal/plugin"
	"github.com/dshills/quickbar/internal/store"
	"github.com/dshills/quickbar/internal/view"
)

// Application owns every component of the plugin host.
type Application struct {
	config   *config.Config
	logger   hclog.Logger
	platform string

	store       *store.Store
	supervisor  *osapi.Supervisor
	server      *bridge.Server
	views       *view.Controller
	manager     *plugin.Manager
	catalog     *plugin.Catalog
	passthrough *input.Passthrough
	dispatcher  *dispatcher.Dispatcher

	running atomic.Bool
	stopped atomic.Bool
}

// Option configures an Application.
type Option func(*options)

type options struct {
	logger hclog.Logger
	goos   string
}

// WithLogger sets the root logger.
func WithLogger(l hclog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithPlatform overrides the platform the OS collaborators target.
func WithPlatform(goos string) Option {
	return func(o *options) { o.goos = goos }
}

// New builds the application from cfg. Nothing is served until Run.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Application, error) {
	o := options{logger: hclog.NewNullLogger(), goos: runtime.GOOS}
	for _, opt := range opts {
		opt(&o)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &Application{config: cfg, logger: o.logger, platform: plugin.PlatformName(o.goos)}

	if err := ensureDir(cfg.Store.DSN); err != nil {
		return nil, &ComponentError{Component: "store", Err: err}
	}
	st, err := store.Open(ctx, cfg.Store.DSN)
	if err != nil {
		return nil, &ComponentError{Component: "store", Err: err}
	}
	a.store = st

	a.supervisor = osapi.NewSupervisor(osapi.WithSupervisorLogger(WithComponent(a.logger, "process")))

	a.server = bridge.NewServer(bridge.Config{
		Addr:         cfg.Bridge.Addr,
		MessageRate:  cfg.Bridge.MessageRate,
		MessageBurst: cfg.Bridge.MessageBurst,
		CallTimeout:  cfg.Bridge.CallTimeout.Std(),
		HostWindowID: cfg.Window.ID,
	}, bridge.WithLogger(WithComponent(a.logger, "bridge")))
	shell := a.server.Shell()
	shell.SetFallbackNotifier(osapi.NewNotifier(o.goos, a.supervisor))
	host := shell.Host()
	host.SetBounds(view.Rect{Width: cfg.Window.Width, Height: cfg.Window.InputHeight})

	a.views = view.NewController(view.Config{
		InstallDir:     cfg.Paths.InstallDir,
		StaticDir:      cfg.Paths.StaticDir,
		Development:    cfg.Dev.Enabled,
		SystemDevURL:   cfg.Dev.SystemURL,
		TemplateDevURL: cfg.Dev.TemplateURL,
		InputHeight:    cfg.Window.InputHeight,
		MaxHeight:      cfg.Window.MaxHeight,
		CallTimeout:    cfg.Bridge.CallTimeout.Std(),
	}, shell,
		view.WithLogger(WithComponent(a.logger, "view")),
		view.WithInputListener(a.onSurfaceKey),
	)

	a.manager = plugin.NewManager(plugin.Config{
		Platform:        a.platform,
		CollapsedHeight: cfg.Window.InputHeight,
	}, a.views,
		plugin.WithNotifier(shell),
		plugin.WithStore(st),
		plugin.WithLogger(WithComponent(a.logger, "plugin")),
	)
	a.manager.Subscribe(shell.PublishPluginEvent)
	a.manager.Subscribe(a.logPluginEvent)
	shell.OnWindowClosed(func(id int) { a.manager.CloseDetached(id) })

	a.catalog = plugin.NewCatalog(plugin.NewLoader(cfg.Paths.InstallDir),
		plugin.WithCatalogStore(st),
		plugin.WithCatalogLogger(WithComponent(a.logger, "catalog")),
	)

	inputOpts := []input.Option{input.WithLogger(WithComponent(a.logger, "input"))}
	if cfg.Input.KeySink == config.KeySinkOS {
		inputOpts = append(inputOpts, input.WithSink(osapi.NewKeySender(o.goos, a.supervisor)))
	}
	a.passthrough = input.New(host, a.manager, a.views, inputOpts...)
	a.server.SetKeyHandler(a.passthrough)

	registry := dispatcher.NewRegistry()
	if err := registerHandlers(registry, a, o.goos); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("%w: %v", ErrInitialization, err)
	}
	if err := registry.Validate(); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("%w: %v", ErrInitialization, err)
	}

	dlog := WithComponent(a.logger, "dispatcher")
	a.dispatcher = dispatcher.New(
		dispatcher.DefaultConfig().WithMaxDeferred(cfg.Bridge.MaxDeferred),
		registry, host,
		dispatcher.WithLogger(dlog),
		dispatcher.WithWindows(a.views),
	)
	hook := dispatcher.NewLoggingHook(dlog)
	a.dispatcher.RegisterPreHook(hook)
	a.dispatcher.RegisterPostHook(hook)
	a.server.SetDispatcher(a.dispatcher)

	return a, nil
}

func (a *Application) logPluginEvent(ev plugin.ManagerEvent) {
	if ev.Error != nil {
		a.logger.Warn("plugin transition failed", "event", ev.Type.String(), "plugin", ev.Plugin, "error", ev.Error)
		return
	}
	a.logger.Debug("plugin transition", "event", ev.Type.String(), "plugin", ev.Plugin, "window", ev.Window)
}

// registerer is implemented by every handler package.
type registerer interface {
	Register(r handler.Registrar) error
}

func registerHandlers(r handler.Registrar, a *Application, goos string) error {
	shell := a.server.Shell()
	osShell := osapi.NewShell(goos, a.supervisor)
	hs := []registerer{
		lifecycle.NewHandler(a.manager, a.catalog),
		window.NewHandler(a.views, shell),
		system.NewHandler(osapi.NewPaths(config.AppName), osShell, shell, a.manager).
			WithApps(osapi.NewAppFinder(goos)),
		clipboard.NewHandler(osapi.NewClipboard(goos, a.supervisor)),
		capture.NewHandler(a.views, osShell, capture.DefaultTimeout),
		packages.NewHandler(a.supervisor, a.config.Packages.Installer),
		keyboard.NewHandler(a.passthrough),
		db.NewHandler(a.manager),
	}
	for _, h := range hs {
		if err := h.Register(r); err != nil {
			return err
		}
	}
	return nil
}

func (a *Application) onSurfaceKey(s view.Surface, ev key.Event) {
	a.passthrough.HandleSurfaceKey(s, ev)
}

// Dispatcher returns the command dispatcher.
func (a *Application) Dispatcher() *dispatcher.Dispatcher { return a.dispatcher }

// Manager returns the plugin lifecycle manager.
func (a *Application) Manager() *plugin.Manager { return a.manager }

// Catalog returns the installed plugin catalog.
func (a *Application) Catalog() *plugin.Catalog { return a.catalog }

// Server returns the bridge server.
func (a *Application) Server() *bridge.Server { return a.server }

// Passthrough returns the key input router.
func (a *Application) Passthrough() *input.Passthrough { return a.passthrough }

// Run loads the plugin catalog and serves the bridge on l until ctx is
// cancelled. A nil listener listens on the configured address.
func (a *Application) Run(ctx context.Context, l net.Listener) error {
	if !a.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	if err := a.catalog.Restore(ctx); err != nil {
		a.logger.Debug("no persisted plugin list", "error", err)
	}
	if err := a.catalog.Refresh(ctx); err != nil {
		a.logger.Warn("plugin scan failed", "dir", a.config.Paths.InstallDir, "error", err)
	}
	if err := a.catalog.Watch(ctx); err != nil {
		a.logger.Warn("plugin watch unavailable", "dir", a.config.Paths.InstallDir, "error", err)
	}

	a.logger.Info("quickbar starting", "plugins", len(a.catalog.List()), "platform", a.platform)

	var err error
	if l == nil {
		err = a.server.ListenAndServe(ctx)
	} else {
		err = a.server.Serve(ctx, l)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return errors.Join(err, a.Shutdown(shutdownCtx))
}

// Shutdown stops components in reverse start order. Later calls do
// nothing.
func (a *Application) Shutdown(ctx context.Context) error {
	if !a.stopped.CompareAndSwap(false, true) {
		return nil
	}
	var errs []error

	if err := a.server.Shutdown(ctx); err != nil {
		errs = append(errs, &ComponentError{Component: "bridge", Err: err})
	}
	if err := a.dispatcher.Shutdown(ctx); err != nil {
		errs = append(errs, &ComponentError{Component: "dispatcher", Err: fmt.Errorf("%w: %v", ErrShutdownTimeout, err)})
	}
	a.manager.Remove(a.server.Shell().Host())
	if err := a.catalog.Close(); err != nil {
		errs = append(errs, &ComponentError{Component: "catalog", Err: err})
	}
	a.supervisor.Shutdown(2 * time.Second)
	if err := a.store.Close(); err != nil {
		errs = append(errs, &ComponentError{Component: "store", Err: err})
	}

	snap := a.dispatcher.Metrics().Snapshot()
	a.logger.Info("quickbar stopped",
		"dispatches", snap.TotalDispatches,
		"errors", snap.TotalErrors,
		"panics", snap.TotalPanics,
		"avg_duration", snap.AverageDuration)
	return errors.Join(errs...)
}

func ensureDir(dsn string) error {
	if dsn == "" || dsn == ":memory:" || filepath.Dir(dsn) == "." {
		return nil
	}
	return os.MkdirAll(filepath.Dir(dsn), 0o755)
}
