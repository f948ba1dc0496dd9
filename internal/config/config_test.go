package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 60, cfg.Window.InputHeight)
	assert.Equal(t, 660, cfg.Window.MaxHeight)
	assert.Equal(t, 2*time.Second, cfg.Bridge.CallTimeout.Std())
	assert.Equal(t, "volta", cfg.Packages.Installer)
	assert.Equal(t, KeySinkSurface, cfg.Input.KeySink)
}

func TestLoadTOMLOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[bridge]
addr = "127.0.0.1:9000"
callTimeout = "500ms"

[log]
level = "debug"
`), 0o644))

	cfg := Default()
	require.NoError(t, LoadFile(cfg, path))
	assert.Equal(t, "127.0.0.1:9000", cfg.Bridge.Addr)
	assert.Equal(t, 500*time.Millisecond, cfg.Bridge.CallTimeout.Std())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 200.0, cfg.Bridge.MessageRate, "unset keys keep defaults")
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
window:
  inputHeight: 48
  maxHeight: 600
dev:
  enabled: true
bridge:
  callTimeout: 3s
`), 0o644))

	cfg := Default()
	require.NoError(t, LoadFile(cfg, path))
	assert.Equal(t, 48, cfg.Window.InputHeight)
	assert.Equal(t, 600, cfg.Window.MaxHeight)
	assert.True(t, cfg.Dev.Enabled)
	assert.Equal(t, 3*time.Second, cfg.Bridge.CallTimeout.Std())
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	cfg := Default()
	require.NoError(t, LoadFile(cfg, filepath.Join(dir, "missing.toml")))

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[bridge\naddr="), 0o644))
	var pe *ParseError
	assert.ErrorAs(t, LoadFile(cfg, bad), &pe)

	unknown := filepath.Join(dir, "unknown.toml")
	require.NoError(t, os.WriteFile(unknown, []byte("[bridge]\nport = 1\n"), 0o644))
	assert.Error(t, LoadFile(cfg, unknown))

	ini := filepath.Join(dir, "config.ini")
	require.NoError(t, os.WriteFile(ini, []byte("x=1"), 0o644))
	assert.ErrorIs(t, LoadFile(cfg, ini), ErrUnknownFormat)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	assert.NoError(t, LoadFile(cfg, empty))
}

func TestEnvLoader(t *testing.T) {
	l := NewEnvLoader(EnvPrefix)
	l.environ = func() []string {
		return []string{
			"PATH=/bin",
			"QUICKBAR_BRIDGE_CALL_TIMEOUT=750ms",
			"QUICKBAR_BRIDGE_MESSAGE_RATE=12.5",
			"QUICKBAR_WINDOW_INPUT_HEIGHT=50",
			"QUICKBAR_LOG_JSON=yes",
			"QUICKBAR_ADDR=127.0.0.1:8000",
			"QUICKBAR_PACKAGES_INSTALLER=npm",
		}
	}
	cfg := Default()
	require.NoError(t, l.Apply(cfg))
	assert.Equal(t, 750*time.Millisecond, cfg.Bridge.CallTimeout.Std())
	assert.Equal(t, 12.5, cfg.Bridge.MessageRate)
	assert.Equal(t, 50, cfg.Window.InputHeight)
	assert.True(t, cfg.Log.JSON)
	assert.Equal(t, "127.0.0.1:8000", cfg.Bridge.Addr)
	assert.Equal(t, "npm", cfg.Packages.Installer)
}

func TestEnvLoaderErrors(t *testing.T) {
	l := NewEnvLoader(EnvPrefix)
	l.environ = func() []string { return []string{"QUICKBAR_NOPE_THING=1"} }
	assert.ErrorIs(t, l.Apply(Default()), ErrInvalidPath)

	l.environ = func() []string { return []string{"QUICKBAR_WINDOW_MAX_HEIGHT=tall"} }
	var pe *ParseError
	assert.ErrorAs(t, l.Apply(Default()), &pe)
}

func TestEnvToPath(t *testing.T) {
	l := NewEnvLoader(EnvPrefix)
	assert.Equal(t, "bridge.callTimeout", l.envToPath("QUICKBAR_BRIDGE_CALL_TIMEOUT"))
	assert.Equal(t, "store.dsn", l.envToPath("QUICKBAR_STORE_DSN"))
	assert.Equal(t, "log", l.envToPath("QUICKBAR_LOG"))
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Bridge.Addr = "nope"
	cfg.Window.InputHeight = 0
	cfg.Log.Level = "loud"
	cfg.Input.KeySink = "robot"

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidationFailed))

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Problems, 4)
}
