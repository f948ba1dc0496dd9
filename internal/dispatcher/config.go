package dispatcher

import "time"

// Config holds dispatcher configuration options.
type Config struct {
	// EnableMetrics enables dispatch timing and statistics collection.
	EnableMetrics bool

	// RecoverFromPanic wraps handler execution in panic recovery.
	RecoverFromPanic bool

	// DefaultTimeout bounds each handler's context.
	// Zero means no timeout.
	DefaultTimeout time.Duration

	// MaxDeferred limits how many deferred commands run at once.
	// Zero means no limit.
	MaxDeferred int
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		EnableMetrics:    true,
		RecoverFromPanic: true,
		MaxDeferred:      64,
	}
}

// WithMetrics returns a copy of the config with metrics enabled.
func (c Config) WithMetrics() Config {
	c.EnableMetrics = true
	return c
}

// WithPanicRecovery returns a copy of the config with panic recovery set.
func (c Config) WithPanicRecovery(recover bool) Config {
	c.RecoverFromPanic = recover
	return c
}

// WithTimeout returns a copy of the config with the default timeout set.
func (c Config) WithTimeout(timeout time.Duration) Config {
	c.DefaultTimeout = timeout
	return c
}

// WithMaxDeferred returns a copy of the config limiting concurrent
// deferred commands.
func (c Config) WithMaxDeferred(n int) Config {
	c.MaxDeferred = n
	return c
}
