package osapi

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// CaptureScreen lets the user select a screen region and returns it as
// PNG. A cancelled selection returns nil data and no error.
func (s *Shell) CaptureScreen(ctx context.Context) ([]byte, error) {
	f, err := os.CreateTemp("", "quickbar-capture-*.png")
	if err != nil {
		return nil, fmt.Errorf("capture screen: %w", err)
	}
	path := f.Name()
	f.Close()
	// The tools refuse to overwrite on some platforms.
	os.Remove(path)
	defer os.Remove(path)

	switch s.platform {
	case "darwin":
		_, err = s.runner.Run(ctx, "screencapture", "-i", "-x", path)
	case "linux":
		_, err = s.runner.Run(ctx, "gnome-screenshot", "-a", "-f", path)
		if err != nil {
			_, err = s.runner.Run(ctx, "import", path)
		}
	default:
		return nil, ErrUnsupported
	}
	if err != nil {
		return nil, fmt.Errorf("capture screen: %w", err)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) || len(data) == 0 {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("capture screen: %w", err)
	}
	return data, nil
}
