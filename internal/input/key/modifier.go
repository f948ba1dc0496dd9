package key

import "strings"

// Modifier is a set of modifier keys.
type Modifier uint8

const (
	// ModNone indicates no modifiers.
	ModNone Modifier = 0

	ModShift Modifier = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// Has reports whether m contains mod.
func (m Modifier) Has(mod Modifier) bool {
	return m&mod != 0
}

// IsEmpty reports whether no modifier is set.
func (m Modifier) IsEmpty() bool {
	return m == ModNone
}

// Names returns the lowercase wire names of the set, in a fixed order.
func (m Modifier) Names() []string {
	var names []string
	for _, mod := range []Modifier{ModCtrl, ModAlt, ModShift, ModMeta} {
		if m.Has(mod) {
			names = append(names, mod.name())
		}
	}
	return names
}

// String returns a representation like "ctrl+shift".
func (m Modifier) String() string {
	return strings.Join(m.Names(), "+")
}

func (m Modifier) name() string {
	switch m {
	case ModShift:
		return "shift"
	case ModCtrl:
		return "control"
	case ModAlt:
		return "alt"
	case ModMeta:
		return "meta"
	default:
		return ""
	}
}

var modifierNames = map[string]Modifier{
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"alt":     ModAlt,
	"option":  ModAlt,
	"shift":   ModShift,
	"meta":    ModMeta,
	"cmd":     ModMeta,
	"command": ModMeta,
	"super":   ModMeta,
	"win":     ModMeta,
}

// ParseModifier resolves a single modifier name, case-insensitively.
func ParseModifier(name string) (Modifier, bool) {
	m, ok := modifierNames[strings.ToLower(strings.TrimSpace(name))]
	return m, ok
}

// ParseModifiers folds names into a set, skipping unknown names.
func ParseModifiers(names []string) Modifier {
	var m Modifier
	for _, n := range names {
		if mod, ok := ParseModifier(n); ok {
			m |= mod
		}
	}
	return m
}
