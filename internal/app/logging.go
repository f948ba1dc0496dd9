package app

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/dshills/quickbar/internal/config"
)

// ParseLogLevel parses a level name, defaulting to info.
func ParseLogLevel(s string) hclog.Level {
	if l := hclog.LevelFromString(strings.TrimSpace(s)); l != hclog.NoLevel {
		return l
	}
	return hclog.Info
}

// WithComponent returns the logger for a named component.
func WithComponent(l hclog.Logger, component string) hclog.Logger {
	return l.Named(component)
}

// NewLogger builds the root logger. The returned closer releases the log
// file, if any.
func NewLogger(cfg config.LogConfig, stderr io.Writer) (hclog.Logger, io.Closer, error) {
	out := stderr
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, nil, err
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		out, closer = f, f
	}
	l := hclog.New(&hclog.LoggerOptions{
		Name:       config.AppName,
		Level:      ParseLogLevel(cfg.Level),
		Output:     out,
		JSONFormat: cfg.JSON,
	})
	return l, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
