package dispatcher

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dshills/quickbar/internal/dispatcher/command"
	"github.com/dshills/quickbar/internal/dispatcher/handler"
)

// Registry is the closed command table: each declared command name maps
// to exactly one handler.
type Registry struct {
	mu       sync.RWMutex
	handlers map[command.Name]handler.Func
}

// NewRegistry creates an empty table.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[command.Name]handler.Func)}
}

// Register binds fn to name. Names outside the command set and second
// bindings are rejected.
func (r *Registry) Register(name command.Name, fn handler.Func) error {
	if !name.IsKnown() {
		return fmt.Errorf("register %q: %w", name, ErrUnknownCommand)
	}
	if fn == nil {
		return fmt.Errorf("register %q: nil handler", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handlers[name]; ok {
		return fmt.Errorf("register %q: %w", name, ErrDuplicateHandler)
	}
	r.handlers[name] = fn
	return nil
}

// Get returns the handler for name.
func (r *Registry) Get(name command.Name) (handler.Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.handlers[name]
	return fn, ok
}

// Has returns true if name has a handler.
func (r *Registry) Has(name command.Name) bool {
	_, ok := r.Get(name)
	return ok
}

// Missing returns the declared commands without a handler, sorted.
func (r *Registry) Missing() []command.Name {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []command.Name
	for _, name := range command.All() {
		if _, ok := r.handlers[name]; !ok {
			out = append(out, name)
		}
	}
	return out
}

// Validate reports an error naming every declared command that has no
// handler.
func (r *Registry) Validate() error {
	missing := r.Missing()
	if len(missing) == 0 {
		return nil
	}
	names := make([]string, len(missing))
	for i, n := range missing {
		names[i] = string(n)
	}
	return fmt.Errorf("%w: no handler for %s", ErrIncompleteTable, strings.Join(names, ", "))
}

// Count returns the number of bound commands.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}
