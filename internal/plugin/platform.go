package plugin

import "runtime"

// Platform names as they appear in plugin descriptors.
const (
	PlatformDarwin  = "darwin"
	PlatformLinux   = "linux"
	PlatformWindows = "win32"
)

// PlatformName maps a GOOS value to the descriptor platform name.
func PlatformName(goos string) string {
	if goos == "windows" {
		return PlatformWindows
	}
	return goos
}

// CurrentPlatform returns the descriptor name of the running platform.
func CurrentPlatform() string {
	return PlatformName(runtime.GOOS)
}
