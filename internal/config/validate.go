package config

import (
	"fmt"
	"net"

	"github.com/hashicorp/go-hclog"
)

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if _, _, err := net.SplitHostPort(c.Bridge.Addr); err != nil {
		add("bridge.addr %q: %v", c.Bridge.Addr, err)
	}
	if c.Bridge.MessageRate < 0 {
		add("bridge.messageRate must not be negative")
	}
	if c.Bridge.MessageRate > 0 && c.Bridge.MessageBurst < 1 {
		add("bridge.messageBurst must be at least 1 when rate limiting")
	}
	if c.Bridge.CallTimeout <= 0 {
		add("bridge.callTimeout must be positive")
	}
	if c.Bridge.MaxDeferred < 0 {
		add("bridge.maxDeferred must not be negative")
	}
	if c.Window.ID <= 0 {
		add("window.id must be positive")
	}
	if c.Window.InputHeight <= 0 {
		add("window.inputHeight must be positive")
	}
	if c.Window.MaxHeight < c.Window.InputHeight {
		add("window.maxHeight %d is below window.inputHeight %d", c.Window.MaxHeight, c.Window.InputHeight)
	}
	if c.Window.Width <= 0 {
		add("window.width must be positive")
	}
	if c.Paths.InstallDir == "" {
		add("paths.installDir is required")
	}
	if c.Packages.Installer == "" {
		add("packages.installer is required")
	}
	if c.Input.KeySink != KeySinkSurface && c.Input.KeySink != KeySinkOS {
		add("input.keySink %q must be %q or %q", c.Input.KeySink, KeySinkSurface, KeySinkOS)
	}
	if c.Store.DSN == "" {
		add("store.dsn is required")
	}
	if hclog.LevelFromString(c.Log.Level) == hclog.NoLevel {
		add("log.level %q is not a level", c.Log.Level)
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
