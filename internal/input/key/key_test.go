package key

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name  string
		key   Key
		r     rune
		found bool
	}{
		{"A", KeyRune, 'a', true},
		{"z", KeyRune, 'z', true},
		{"7", KeyRune, '7', true},
		{"Enter", KeyEnter, 0, true},
		{"ESC", KeyEscape, 0, true},
		{"f11", KeyF11, 0, true},
		{";", KeyRune, ';', true},
		{"é", KeyNone, 0, false},
		{"hyper", KeyNone, 0, false},
		{"", KeyNone, 0, false},
	}
	for _, tt := range tests {
		k, r, ok := Lookup(tt.name)
		if k != tt.key || r != tt.r || ok != tt.found {
			t.Errorf("Lookup(%q) = (%v, %q, %v), want (%v, %q, %v)", tt.name, k, r, ok, tt.key, tt.r, tt.found)
		}
	}
}

func TestModifierNames(t *testing.T) {
	m := ParseModifiers([]string{"Shift", "ctrl", "bogus"})
	if !m.Has(ModShift) || !m.Has(ModCtrl) || m.Has(ModAlt) {
		t.Fatalf("ParseModifiers() = %v", m)
	}
	if got := m.String(); got != "control+shift" {
		t.Errorf("String() = %q, want control+shift", got)
	}
	if _, ok := ParseModifier("hyper"); ok {
		t.Error("ParseModifier(hyper) ok = true")
	}
}

func TestEventString(t *testing.T) {
	e := NewEvent(KeyRune, 'a', ModCtrl|ModAlt)
	if got := e.String(); got != "control+alt+a" {
		t.Errorf("String() = %q", got)
	}
	if got := NewEvent(KeyEscape, 0, ModNone).String(); got != "Escape" {
		t.Errorf("String() = %q, want Escape", got)
	}
	if NewEvent(KeyEscape, 0, ModNone).IsModified() {
		t.Error("IsModified() = true without modifiers")
	}
}

func TestDecodeKeyCode(t *testing.T) {
	tests := []struct {
		code int
		key  Key
		r    rune
		ok   bool
	}{
		{65, KeyRune, 'a', true},
		{90, KeyRune, 'z', true},
		{48, KeyRune, '0', true},
		{97, KeyRune, '1', true},
		{27, KeyEscape, 0, true},
		{13, KeyEnter, 0, true},
		{191, KeyRune, '/', true},
		{255, KeyNone, 0, false},
	}
	for _, tt := range tests {
		k, r, ok := DecodeKeyCode(tt.code)
		if k != tt.key || r != tt.r || ok != tt.ok {
			t.Errorf("DecodeKeyCode(%d) = (%v, %q, %v), want (%v, %q, %v)", tt.code, k, r, ok, tt.key, tt.r, tt.ok)
		}
	}
}

func TestFromTcell(t *testing.T) {
	tests := []struct {
		name string
		ev   *tcell.EventKey
		want string
	}{
		{"escape", tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), "Escape"},
		{"rune", tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone), "x"},
		{"upper", tcell.NewEventKey(tcell.KeyRune, 'X', tcell.ModNone), "shift+x"},
		{"alt", tcell.NewEventKey(tcell.KeyRune, 'f', tcell.ModAlt), "alt+f"},
		{"space", tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone), "Space"},
		{"f5", tcell.NewEventKey(tcell.KeyF5, 0, tcell.ModNone), "F5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromTcell(tt.ev).String(); got != tt.want {
				t.Errorf("FromTcell() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestToTcell(t *testing.T) {
	ev := ToTcell(NewEvent(KeyEnter, 0, ModShift))
	if ev.Key() != tcell.KeyEnter || ev.Modifiers()&tcell.ModShift == 0 {
		t.Errorf("ToTcell(Enter) = %v %v", ev.Key(), ev.Modifiers())
	}
	ev = ToTcell(NewEvent(KeyRune, 'q', ModNone))
	if ev.Key() != tcell.KeyRune || ev.Rune() != 'q' {
		t.Errorf("ToTcell(q) = %v %q", ev.Key(), ev.Rune())
	}
}

func TestArrowKeyEventTypes(t *testing.T) {
	down := NewEvent(KeyDown, 0, ModNone)
	if down.Type != TypeDown || down.Key != KeyDown {
		t.Errorf("NewEvent(KeyDown) = %+v", down)
	}
	up := down
	up.Type = TypeUp
	up.Key = KeyUp
	if got := up.Type.String(); got != "keyUp" {
		t.Errorf("TypeUp.String() = %q", got)
	}
	if got := down.Type.String(); got != "keyDown" {
		t.Errorf("TypeDown.String() = %q", got)
	}
	if up.String() != "Up" || down.String() != "Down" {
		t.Errorf("arrow names = %q, %q", up.String(), down.String())
	}
}
