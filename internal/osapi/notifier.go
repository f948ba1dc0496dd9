package osapi

import (
	"context"
	"fmt"

	"github.com/dshills/quickbar/internal/plugin"
)

// Notifier shows desktop notifications with platform tools. It is used
// when no window shell is connected.
type Notifier struct {
	platform string
	runner   Runner
}

// NewNotifier creates a notifier for platform.
func NewNotifier(platform string, runner Runner) *Notifier {
	return &Notifier{platform: platform, runner: runner}
}

// Notify implements plugin.Notifier.
func (n *Notifier) Notify(ctx context.Context, note plugin.Notification) error {
	var err error
	switch n.platform {
	case "darwin":
		script := fmt.Sprintf("display notification %q with title %q", note.Body, note.Title)
		_, err = n.runner.Run(ctx, "osascript", "-e", script)
	case "linux":
		args := []string{}
		if note.Icon != "" {
			args = append(args, "--icon", note.Icon)
		}
		args = append(args, note.Title, note.Body)
		_, err = n.runner.Run(ctx, "notify-send", args...)
	default:
		return ErrUnsupported
	}
	return err
}
