package config

import (
	"os"
	"path/filepath"
	"time"
)

// AppName names the per-user directories.
const AppName = "quickbar"

// Config is the complete quickbar configuration.
type Config struct {
	Paths    PathsConfig    `toml:"paths" yaml:"paths"`
	Window   WindowConfig   `toml:"window" yaml:"window"`
	Dev      DevConfig      `toml:"dev" yaml:"dev"`
	Bridge   BridgeConfig   `toml:"bridge" yaml:"bridge"`
	Packages PackagesConfig `toml:"packages" yaml:"packages"`
	Input    InputConfig    `toml:"input" yaml:"input"`
	Log      LogConfig      `toml:"log" yaml:"log"`
	Store    StoreConfig    `toml:"store" yaml:"store"`
}

// PathsConfig locates plugin and application data.
type PathsConfig struct {
	// InstallDir holds installed plugins under node_modules/<name>.
	InstallDir string `toml:"installDir" yaml:"installDir"`
	// StaticDir holds the bundled feature and template pages.
	StaticDir string `toml:"staticDir" yaml:"staticDir"`
	DataDir   string `toml:"dataDir" yaml:"dataDir"`
}

// WindowConfig sizes the host window.
type WindowConfig struct {
	ID          int `toml:"id" yaml:"id"`
	InputHeight int `toml:"inputHeight" yaml:"inputHeight"`
	MaxHeight   int `toml:"maxHeight" yaml:"maxHeight"`
	Width       int `toml:"width" yaml:"width"`
}

// DevConfig controls development mode.
type DevConfig struct {
	Enabled     bool   `toml:"enabled" yaml:"enabled"`
	SystemURL   string `toml:"systemUrl" yaml:"systemUrl"`
	TemplateURL string `toml:"templateUrl" yaml:"templateUrl"`
}

// BridgeConfig configures the websocket bridge.
type BridgeConfig struct {
	Addr         string   `toml:"addr" yaml:"addr"`
	MessageRate  float64  `toml:"messageRate" yaml:"messageRate"`
	MessageBurst int      `toml:"messageBurst" yaml:"messageBurst"`
	CallTimeout  Duration `toml:"callTimeout" yaml:"callTimeout"`
	MaxDeferred  int      `toml:"maxDeferred" yaml:"maxDeferred"`
}

// PackagesConfig configures global package installs.
type PackagesConfig struct {
	Installer string `toml:"installer" yaml:"installer"`
}

// Key sinks.
const (
	KeySinkSurface = "surface"
	KeySinkOS      = "os"
)

// InputConfig configures synthesized key input.
type InputConfig struct {
	// KeySink is where synthesized keys go: into the attached surface,
	// or through the operating system.
	KeySink string `toml:"keySink" yaml:"keySink"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
	JSON  bool   `toml:"json" yaml:"json"`
	// File redirects log output. Empty means stderr.
	File string `toml:"file" yaml:"file"`
}

// StoreConfig configures the document store.
type StoreConfig struct {
	DSN string `toml:"dsn" yaml:"dsn"`
}

// Duration is a time.Duration written as a string like "2s".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Default returns the built-in configuration.
func Default() *Config {
	data := defaultDataDir()
	return &Config{
		Paths: PathsConfig{
			InstallDir: filepath.Join(data, "plugins"),
			StaticDir:  filepath.Join(data, "static"),
			DataDir:    data,
		},
		Window: WindowConfig{
			ID:          1,
			InputHeight: 60,
			MaxHeight:   660,
			Width:       800,
		},
		Dev: DevConfig{
			SystemURL:   "http://localhost:8081/#/",
			TemplateURL: "http://localhost:8083/#/",
		},
		Bridge: BridgeConfig{
			Addr:         "127.0.0.1:7345",
			MessageRate:  200,
			MessageBurst: 50,
			CallTimeout:  Duration(2 * time.Second),
			MaxDeferred:  64,
		},
		Packages: PackagesConfig{Installer: "volta"},
		Input:    InputConfig{KeySink: KeySinkSurface},
		Log:      LogConfig{Level: "info"},
		Store:    StoreConfig{DSN: filepath.Join(data, AppName+".db")},
	}
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, AppName)
	}
	return filepath.Join(os.TempDir(), AppName)
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(defaultDataDir(), "config.toml")
}
