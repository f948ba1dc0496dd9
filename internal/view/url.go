package view

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/dshills/quickbar/internal/plugin/manifest"
)

// Content is the resolved location of a plugin's entry page.
type Content struct {
	// URL is what gets loaded into the surface.
	URL string

	// IndexPath is set for plugins with their own entry.
	IndexPath string

	// TplPath is set for plugins rendered by the bundled template page.
	TplPath string
}

// Resolve computes where d's content lives.
func (c *Controller) Resolve(d *manifest.Descriptor) Content {
	cfg := c.config

	if d.IsSystem() {
		u := fileURL(filepath.Join(cfg.StaticDir, "feature", "index.html"))
		if cfg.Development {
			u = cfg.SystemDevURL
		}
		return Content{URL: u, IndexPath: u}
	}

	if d.Main == "" {
		u := fileURL(filepath.Join(cfg.StaticDir, "tpl", "index.html"))
		if cfg.Development && d.Development {
			u = cfg.TemplateDevURL
		}
		return Content{URL: u, TplPath: u}
	}

	if isRemote(d.Main) {
		return Content{URL: d.Main, IndexPath: d.Main}
	}

	dir := d.Dir()
	if dir == "" {
		dir = filepath.Join(cfg.InstallDir, "node_modules", d.Name)
	}
	u := fileURL(filepath.Join(dir, d.Main))
	return Content{URL: u, IndexPath: u}
}

func isRemote(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func fileURL(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	if !strings.HasPrefix(u.Path, "/") {
		u.Path = "/" + u.Path
	}
	return u.String()
}
