package key

import (
	"fmt"
	"strings"
)

// Key identifies a keyboard key. Printable characters use KeyRune with
// the character carried in Event.Rune.
type Key uint16

const (
	// KeyNone represents no key.
	KeyNone Key = iota

	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete
	KeyInsert
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown

	KeyUp
	KeyDown
	KeyLeft
	KeyRight

	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12

	KeySpace
	KeyCapsLock
	KeyPrintScreen

	// KeyRune is a character key.
	KeyRune
)

var keyNames = [...]string{
	KeyNone:        "None",
	KeyEscape:      "Escape",
	KeyEnter:       "Enter",
	KeyTab:         "Tab",
	KeyBackspace:   "Backspace",
	KeyDelete:      "Delete",
	KeyInsert:      "Insert",
	KeyHome:        "Home",
	KeyEnd:         "End",
	KeyPageUp:      "PageUp",
	KeyPageDown:    "PageDown",
	KeyUp:          "Up",
	KeyDown:        "Down",
	KeyLeft:        "Left",
	KeyRight:       "Right",
	KeyF1:          "F1",
	KeyF2:          "F2",
	KeyF3:          "F3",
	KeyF4:          "F4",
	KeyF5:          "F5",
	KeyF6:          "F6",
	KeyF7:          "F7",
	KeyF8:          "F8",
	KeyF9:          "F9",
	KeyF10:         "F10",
	KeyF11:         "F11",
	KeyF12:         "F12",
	KeySpace:       "Space",
	KeyCapsLock:    "CapsLock",
	KeyPrintScreen: "PrintScreen",
	KeyRune:        "Rune",
}

// String returns the accelerator name of the key, as content surfaces
// expect it in synthesized input events.
func (k Key) String() string {
	if int(k) < len(keyNames) {
		return keyNames[k]
	}
	return fmt.Sprintf("Key(%d)", k)
}

// IsFunctionKey reports whether k is F1-F12.
func (k Key) IsFunctionKey() bool {
	return k >= KeyF1 && k <= KeyF12
}

// logicalNames maps lowercase logical key names to keys. Single
// printable characters are handled by Lookup directly.
var logicalNames = map[string]Key{
	"escape":      KeyEscape,
	"esc":         KeyEscape,
	"enter":       KeyEnter,
	"return":      KeyEnter,
	"tab":         KeyTab,
	"backspace":   KeyBackspace,
	"delete":      KeyDelete,
	"insert":      KeyInsert,
	"home":        KeyHome,
	"end":         KeyEnd,
	"pageup":      KeyPageUp,
	"pagedown":    KeyPageDown,
	"up":          KeyUp,
	"down":        KeyDown,
	"left":        KeyLeft,
	"right":       KeyRight,
	"f1":          KeyF1,
	"f2":          KeyF2,
	"f3":          KeyF3,
	"f4":          KeyF4,
	"f5":          KeyF5,
	"f6":          KeyF6,
	"f7":          KeyF7,
	"f8":          KeyF8,
	"f9":          KeyF9,
	"f10":         KeyF10,
	"f11":         KeyF11,
	"f12":         KeyF12,
	"space":       KeySpace,
	"capslock":    KeyCapsLock,
	"printscreen": KeyPrintScreen,
}

// Lookup resolves a logical key name. Names are matched after
// lowercasing, so "A" and "a" both resolve to the rune 'a'. ok is false
// for names outside the table.
func Lookup(name string) (k Key, r rune, ok bool) {
	name = strings.ToLower(name)
	if k, ok := logicalNames[name]; ok {
		return k, 0, true
	}
	runes := []rune(name)
	if len(runes) == 1 && isSupportedRune(runes[0]) {
		return KeyRune, runes[0], true
	}
	return KeyNone, 0, false
}

func isSupportedRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune("`-=[]\\;',./", r)
}
