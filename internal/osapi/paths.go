package osapi

import (
	"os"
	"path/filepath"
)

// Paths resolves well-known directories by name.
type Paths struct {
	app string

	// Overridable for tests.
	home   func() (string, error)
	config func() (string, error)
	cache  func() (string, error)
	exe    func() (string, error)
}

// NewPaths creates a resolver for the application named app.
func NewPaths(app string) *Paths {
	return &Paths{
		app:    app,
		home:   os.UserHomeDir,
		config: os.UserConfigDir,
		cache:  os.UserCacheDir,
		exe:    os.Executable,
	}
}

// Home returns the user's home directory.
func (p *Paths) Home() (string, error) {
	return p.home()
}

// Path resolves name. Recognized names are home, appData, userData,
// cache, temp, exe, desktop, documents, downloads, music, pictures,
// videos and logs.
func (p *Paths) Path(name string) (string, error) {
	switch name {
	case "home":
		return p.home()
	case "appData":
		return p.config()
	case "userData":
		return p.under(p.config, p.app)
	case "cache":
		return p.cache()
	case "temp":
		return os.TempDir(), nil
	case "exe":
		return p.exe()
	case "desktop":
		return p.under(p.home, "Desktop")
	case "documents":
		return p.under(p.home, "Documents")
	case "downloads":
		return p.under(p.home, "Downloads")
	case "music":
		return p.under(p.home, "Music")
	case "pictures":
		return p.under(p.home, "Pictures")
	case "videos":
		return p.under(p.home, "Videos")
	case "logs":
		return p.under(p.config, p.app, "logs")
	}
	return "", ErrUnknownPath
}

func (p *Paths) under(base func() (string, error), elem ...string) (string, error) {
	dir, err := base()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{dir}, elem...)...), nil
}
