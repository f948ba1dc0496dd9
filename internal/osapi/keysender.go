package osapi

import (
	"context"
	"fmt"
	"strings"

	"github.com/dshills/quickbar/internal/input/key"
	"github.com/dshills/quickbar/internal/view"
)

// KeySender synthesizes key presses at the operating system level, into
// whichever application has focus. It satisfies input.Sink and ignores
// the surface argument.
type KeySender struct {
	platform string
	runner   Runner
}

// NewKeySender creates a key sender for platform.
func NewKeySender(platform string, runner Runner) *KeySender {
	return &KeySender{platform: platform, runner: runner}
}

// Send presses and releases ev's key with its modifiers held.
func (k *KeySender) Send(ctx context.Context, _ view.Surface, ev key.Event) error {
	mods := ev.ModifierOrder
	if len(mods) == 0 {
		mods = ev.Modifiers.Names()
	}
	switch k.platform {
	case "linux":
		_, err := k.runner.Run(ctx, "xdotool", "key", "--clearmodifiers", xdotoolChord(ev, mods))
		return err
	case "darwin":
		_, err := k.runner.Run(ctx, "osascript", "-e", appleScriptKeystroke(ev, mods))
		return err
	}
	return ErrUnsupported
}

var xdotoolKeys = map[key.Key]string{
	key.KeyEscape:      "Escape",
	key.KeyEnter:       "Return",
	key.KeyTab:         "Tab",
	key.KeyBackspace:   "BackSpace",
	key.KeyDelete:      "Delete",
	key.KeyInsert:      "Insert",
	key.KeyHome:        "Home",
	key.KeyEnd:         "End",
	key.KeyPageUp:      "Prior",
	key.KeyPageDown:    "Next",
	key.KeyUp:          "Up",
	key.KeyDown:        "Down",
	key.KeyLeft:        "Left",
	key.KeyRight:       "Right",
	key.KeySpace:       "space",
	key.KeyCapsLock:    "Caps_Lock",
	key.KeyPrintScreen: "Print",
}

var xdotoolMods = map[key.Modifier]string{
	key.ModCtrl:  "ctrl",
	key.ModAlt:   "alt",
	key.ModShift: "shift",
	key.ModMeta:  "super",
}

func xdotoolChord(ev key.Event, mods []string) string {
	var parts []string
	for _, m := range mods {
		if mod, ok := key.ParseModifier(m); ok {
			parts = append(parts, xdotoolMods[mod])
		}
	}
	var name string
	switch {
	case ev.Key == key.KeyRune:
		name = string(ev.Rune)
	case ev.Key.IsFunctionKey():
		name = strings.ToUpper(ev.Key.String())
	default:
		name = xdotoolKeys[ev.Key]
		if name == "" {
			name = ev.Key.String()
		}
	}
	return strings.Join(append(parts, name), "+")
}

// appleKeyCodes are System Events key codes for non-character keys.
var appleKeyCodes = map[key.Key]int{
	key.KeyEnter:     36,
	key.KeyTab:       48,
	key.KeySpace:     49,
	key.KeyBackspace: 51,
	key.KeyEscape:    53,
	key.KeyDelete:    117,
	key.KeyHome:      115,
	key.KeyEnd:       119,
	key.KeyPageUp:    116,
	key.KeyPageDown:  121,
	key.KeyLeft:      123,
	key.KeyRight:     124,
	key.KeyDown:      125,
	key.KeyUp:        126,
}

var appleMods = map[key.Modifier]string{
	key.ModCtrl:  "control down",
	key.ModAlt:   "option down",
	key.ModShift: "shift down",
	key.ModMeta:  "command down",
}

func appleScriptKeystroke(ev key.Event, mods []string) string {
	var using []string
	for _, m := range mods {
		if mod, ok := key.ParseModifier(m); ok {
			using = append(using, appleMods[mod])
		}
	}
	var stroke string
	if code, ok := appleKeyCodes[ev.Key]; ok {
		stroke = fmt.Sprintf("key code %d", code)
	} else {
		stroke = fmt.Sprintf("keystroke %q", ev.Code())
	}
	if len(using) > 0 {
		stroke += " using {" + strings.Join(using, ", ") + "}"
	}
	return `tell application "System Events" to ` + stroke
}
