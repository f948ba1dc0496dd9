package osapi

import (
	"context"
	"io"
	"os"
	"path/filepath"
)

// Shell performs desktop shell actions.
type Shell struct {
	platform string
	runner   Runner
	bell     io.Writer
}

// NewShell creates a shell for platform.
func NewShell(platform string, runner Runner) *Shell {
	return &Shell{platform: platform, runner: runner, bell: os.Stderr}
}

// ShowItemInFolder reveals path in the platform file manager.
func (s *Shell) ShowItemInFolder(ctx context.Context, path string) error {
	var err error
	switch s.platform {
	case "darwin":
		_, err = s.runner.Run(ctx, "open", "-R", path)
	case "windows":
		_, err = s.runner.Run(ctx, "explorer", "/select,"+path)
	case "linux":
		_, err = s.runner.Run(ctx, "xdg-open", filepath.Dir(path))
	default:
		return ErrUnsupported
	}
	return err
}

// Beep plays the system alert sound. Platforms without a sound tool
// ring the terminal bell.
func (s *Shell) Beep(ctx context.Context) error {
	switch s.platform {
	case "darwin":
		_, err := s.runner.Run(ctx, "osascript", "-e", "beep")
		return err
	case "windows":
		_, err := s.runner.Run(ctx, "powershell", "-NoProfile", "-Command", "[console]::beep(800,200)")
		return err
	}
	_, err := io.WriteString(s.bell, "\a")
	return err
}
