package key

import "time"

// Type distinguishes key-down from key-up events.
type Type uint8

const (
	TypeDown Type = iota
	TypeUp
)

// String returns the wire name of the event type.
func (t Type) String() string {
	if t == TypeUp {
		return "keyUp"
	}
	return "keyDown"
}

// Event is a single key event as seen by, or synthesized into, a surface.
type Event struct {
	Type      Type
	Key       Key
	Rune      rune
	Modifiers Modifier

	// ModifierOrder keeps the order in which modifiers were requested
	// for synthesized combinations. It may be empty for observed events.
	ModifierOrder []string

	Timestamp time.Time
}

// NewEvent creates a key-down event with the current timestamp.
func NewEvent(k Key, r rune, mods Modifier) Event {
	return Event{Type: TypeDown, Key: k, Rune: r, Modifiers: mods, Timestamp: time.Now()}
}

// IsModified reports whether any modifier is held.
func (e Event) IsModified() bool {
	return !e.Modifiers.IsEmpty()
}

// Code returns the accelerator key code of the event: the character for
// rune events, otherwise the key name.
func (e Event) Code() string {
	if e.Key == KeyRune {
		return string(e.Rune)
	}
	return e.Key.String()
}

// String returns a representation like "ctrl+shift+a".
func (e Event) String() string {
	if e.Modifiers.IsEmpty() {
		return e.Code()
	}
	return e.Modifiers.String() + "+" + e.Code()
}
