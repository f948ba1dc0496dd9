package dispatcher

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/dshills/quickbar/internal/dispatcher/command"
	"github.com/dshills/quickbar/internal/dispatcher/execctx"
	"github.com/dshills/quickbar/internal/dispatcher/handler"
	"github.com/dshills/quickbar/internal/view"
)

// Windows looks up detached plugin windows by id.
type Windows interface {
	Detached(id int) (*view.Detached, bool)
}

// Dispatcher routes command messages to handlers.
type Dispatcher struct {
	mu sync.RWMutex

	registry *Registry
	host     view.Window
	windows  Windows
	config   Config
	logger   hclog.Logger
	metrics  *Metrics

	preHooks  []PreDispatchHook
	postHooks []PostDispatchHook

	sem     chan struct{}
	wg      sync.WaitGroup
	stopped bool
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the dispatcher logger.
func WithLogger(l hclog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithWindows sets the lookup for detached windows.
func WithWindows(w Windows) Option {
	return func(d *Dispatcher) { d.windows = w }
}

// New creates a dispatcher over registry. host is the window messages
// without a window id are addressed to.
func New(config Config, registry *Registry, host view.Window, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		host:     host,
		config:   config,
		logger:   hclog.NewNullLogger(),
	}
	if config.EnableMetrics {
		d.metrics = NewMetrics()
	}
	if config.MaxDeferred > 0 {
		d.sem = make(chan struct{}, config.MaxDeferred)
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Registry returns the command table.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Metrics returns the metrics collector, or nil when disabled.
func (d *Dispatcher) Metrics() *Metrics {
	return d.metrics
}

// Host returns the host window.
func (d *Dispatcher) Host() view.Window {
	return d.host
}

// RegisterPreHook adds a pre-dispatch hook.
func (d *Dispatcher) RegisterPreHook(h PreDispatchHook) {
	d.mu.Lock()
	d.preHooks = append(d.preHooks, h)
	d.mu.Unlock()
}

// RegisterPostHook adds a post-dispatch hook.
func (d *Dispatcher) RegisterPostHook(h PostDispatchHook) {
	d.mu.Lock()
	d.postHooks = append(d.postHooks, h)
	d.mu.Unlock()
}

// Dispatch runs the command to completion and returns its result.
func (d *Dispatcher) Dispatch(ctx context.Context, msg command.Message) handler.Result {
	d.mu.RLock()
	stopped := d.stopped
	d.mu.RUnlock()
	if stopped {
		return handler.Error(ErrDispatcherStopped)
	}
	return d.dispatchInternal(ctx, msg, false)
}

// DispatchAsync starts the command and returns a handle resolving to its
// result.
func (d *Dispatcher) DispatchAsync(ctx context.Context, msg command.Message) *Pending {
	p := newPending(msg.Type)

	d.mu.RLock()
	if d.stopped {
		d.mu.RUnlock()
		p.resolve(handler.Error(ErrDispatcherStopped))
		return p
	}
	d.wg.Add(1)
	d.mu.RUnlock()

	go func() {
		defer d.wg.Done()
		if d.sem != nil {
			select {
			case d.sem <- struct{}{}:
				defer func() { <-d.sem }()
			case <-ctx.Done():
				p.resolve(handler.Cancelled().WithMessage(ctx.Err().Error()))
				return
			}
		}
		p.resolve(d.dispatchInternal(ctx, msg, true))
	}()
	return p
}

// Shutdown stops accepting commands and waits for deferred commands to
// finish or ctx to end.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Resolve returns the window msg originates from, or nil when its window
// id names no window.
func (d *Dispatcher) Resolve(msg command.Message) view.Window {
	if msg.WinID == 0 || (d.host != nil && msg.WinID == d.host.ID()) {
		return d.host
	}
	if d.windows != nil {
		if det, ok := d.windows.Detached(msg.WinID); ok {
			return det.Window
		}
	}
	return nil
}

func (d *Dispatcher) dispatchInternal(ctx context.Context, msg command.Message, deferred bool) handler.Result {
	start := time.Now()

	fn, ok := d.registry.Get(msg.Type)
	if !ok {
		d.logger.Error("unknown command", "command", msg.Type, "window", msg.WinID)
		return handler.Error(fmt.Errorf("%q: %w", msg.Type, ErrUnknownCommand))
	}

	ec := execctx.New(msg, d.host, d.Resolve(msg))
	ec.Deferred = deferred
	ec.Logger = d.logger.Named(string(msg.Type))
	if ec.Window == nil {
		d.logger.Debug("origin window not found", "command", msg.Type, "window", msg.WinID)
	}

	d.mu.RLock()
	preHooks := d.preHooks
	postHooks := d.postHooks
	d.mu.RUnlock()

	for _, h := range preHooks {
		if !h.PreDispatch(ec) {
			return handler.Error(fmt.Errorf("%s: %w", msg.Type, ErrCommandCancelled))
		}
	}

	if d.config.DefaultTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.DefaultTimeout)
		defer cancel()
	}

	result := d.executeWithRecovery(ctx, fn, ec)

	for _, h := range postHooks {
		h.PostDispatch(ec, &result)
	}

	if d.metrics != nil {
		d.metrics.RecordDispatch(msg.Type, time.Since(start), result.Status)
	}
	return result
}

func (d *Dispatcher) executeWithRecovery(ctx context.Context, fn handler.Func, ec *execctx.Context) (result handler.Result) {
	if !d.config.RecoverFromPanic {
		return fn(ctx, ec)
	}

	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			d.logger.Error("handler panic", "command", ec.Command, "panic", r, "stack", string(buf[:n]))
			if d.metrics != nil {
				d.metrics.RecordPanic(ec.Command)
			}
			result = handler.Error(fmt.Errorf("%s: %w: %v", ec.Command, ErrPanic, r))
		}
	}()
	return fn(ctx, ec)
}
