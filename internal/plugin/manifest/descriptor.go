package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/dshills/quickbar/internal/plugin/feature"
)

// SystemPluginName is the reserved name of the built-in feature browser.
const SystemPluginName = "quickbar-system-feature"

// Plugin types.
const (
	TypeUI     = "ui"
	TypeSystem = "system"
	TypeApp    = "app"
)

// Ext is free-form extension metadata attached to an invocation.
type Ext struct {
	// AutoShow overrides the default show-on-open policy when set.
	AutoShow *bool `json:"autoShow,omitempty"`

	// Code is an opaque invocation code.
	Code string `json:"code,omitempty"`
}

// Descriptor identifies a loadable plugin.
type Descriptor struct {
	Name       string            `json:"name"`
	PluginName string            `json:"pluginName,omitempty"`
	Version    string            `json:"version,omitempty"`
	Desc       string            `json:"description,omitempty"`
	Author     string            `json:"author,omitempty"`
	Logo       string            `json:"logo,omitempty"`
	Platform   []string          `json:"platform,omitempty"`
	Main       string            `json:"main,omitempty"`
	Preload    string            `json:"preload,omitempty"`
	PluginType string            `json:"pluginType,omitempty"`
	Features   []feature.Feature `json:"features,omitempty"`
	Ext        *Ext              `json:"ext,omitempty"`

	// Development marks a plugin served from a local dev server.
	Development bool `json:"development,omitempty"`

	// IndexPath and TplPath are filled in when content is resolved.
	IndexPath string `json:"indexPath,omitempty"`
	TplPath   string `json:"tplPath,omitempty"`

	// SubInput carries the overlay state when a descriptor travels with a
	// detached surface.
	SubInput *SubInput `json:"subInput,omitempty"`

	dir string
}

// SubInput is the transient search-field overlay a plugin shows in the
// window that hosts it.
type SubInput struct {
	Placeholder string `json:"placeholder"`
	Value       string `json:"value"`
}

// Validation errors.
var (
	ErrMissingName = errors.New("manifest: name is required")
	ErrInvalidName = errors.New("manifest: invalid name")
)

// namePattern accepts npm-style package names, optionally scoped.
var namePattern = regexp.MustCompile(`^(@[a-z0-9][a-z0-9._-]*/)?[a-z0-9][a-z0-9._-]*$`)

// Load reads package.json from dir.
func Load(dir string) (*Descriptor, error) {
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	d, err := Parse(data)
	if err != nil {
		return nil, err
	}
	d.dir = dir
	return d, nil
}

// Parse decodes and validates a descriptor.
func Parse(data []byte) (*Descriptor, error) {
	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Validate checks the descriptor for required fields.
func (d *Descriptor) Validate() error {
	if d.Name == "" {
		return ErrMissingName
	}
	if !namePattern.MatchString(d.Name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, d.Name)
	}
	return nil
}

// Dir returns the directory the descriptor was loaded from, if any.
func (d *Descriptor) Dir() string {
	return d.dir
}

// DisplayName returns PluginName, falling back to Name.
func (d *Descriptor) DisplayName() string {
	if d.PluginName != "" {
		return d.PluginName
	}
	return d.Name
}

// IsSystem reports whether d is the reserved built-in plugin.
func (d *Descriptor) IsSystem() bool {
	return d.Name == SystemPluginName
}

// SupportsPlatform reports whether the plugin runs on platform. An empty
// platform list means every platform.
func (d *Descriptor) SupportsPlatform(platform string) bool {
	if len(d.Platform) == 0 {
		return true
	}
	return slices.Contains(d.Platform, platform)
}

// AutoShow resolves the visibility policy: shown unless ext.autoShow is
// explicitly false, and never shown for screenshot invocations.
func (d *Descriptor) AutoShow() bool {
	if d.Ext == nil {
		return true
	}
	if strings.Contains(strings.ToLower(d.Ext.Code), "screenshot") {
		return false
	}
	if d.Ext.AutoShow != nil {
		return *d.Ext.AutoShow
	}
	return true
}

// Clone returns a deep copy of d. Features are copied so the clone can be
// updated without affecting readers of d.
func (d *Descriptor) Clone() *Descriptor {
	if d == nil {
		return nil
	}
	c := *d
	c.Platform = slices.Clone(d.Platform)
	c.Features = feature.Clone(d.Features)
	if d.Ext != nil {
		ext := *d.Ext
		if d.Ext.AutoShow != nil {
			v := *d.Ext.AutoShow
			ext.AutoShow = &v
		}
		c.Ext = &ext
	}
	if d.SubInput != nil {
		si := *d.SubInput
		c.SubInput = &si
	}
	return &c
}

// WithFeatures returns a copy of d carrying features.
func (d *Descriptor) WithFeatures(features []feature.Feature) *Descriptor {
	c := d.Clone()
	c.Features = features
	return c
}
