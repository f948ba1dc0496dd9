package plugin

import "errors"

// Plugin host errors.
var (
	// ErrPluginNotFound is returned when a plugin name is not in the catalog.
	ErrPluginNotFound = errors.New("plugin not found")

	// ErrUnsupportedPlatform is returned when a plugin does not list the
	// running platform. The user is notified before it is returned.
	ErrUnsupportedPlatform = errors.New("plugin does not support this platform")

	// ErrNoCurrentPlugin is returned by operations that need an active plugin.
	ErrNoCurrentPlugin = errors.New("no plugin is open")

	// ErrNilDescriptor is returned when a nil descriptor is provided.
	ErrNilDescriptor = errors.New("descriptor is nil")
)
