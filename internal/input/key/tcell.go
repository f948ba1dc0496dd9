package key

import (
	"unicode"

	"github.com/gdamore/tcell/v2"
)

var fromTcell = map[tcell.Key]Key{
	tcell.KeyEscape:     KeyEscape,
	tcell.KeyEnter:      KeyEnter,
	tcell.KeyTab:        KeyTab,
	tcell.KeyBackspace:  KeyBackspace,
	tcell.KeyBackspace2: KeyBackspace,
	tcell.KeyDelete:     KeyDelete,
	tcell.KeyInsert:     KeyInsert,
	tcell.KeyHome:       KeyHome,
	tcell.KeyEnd:        KeyEnd,
	tcell.KeyPgUp:       KeyPageUp,
	tcell.KeyPgDn:       KeyPageDown,
	tcell.KeyUp:         KeyUp,
	tcell.KeyDown:       KeyDown,
	tcell.KeyLeft:       KeyLeft,
	tcell.KeyRight:      KeyRight,
	tcell.KeyF1:         KeyF1,
	tcell.KeyF2:         KeyF2,
	tcell.KeyF3:         KeyF3,
	tcell.KeyF4:         KeyF4,
	tcell.KeyF5:         KeyF5,
	tcell.KeyF6:         KeyF6,
	tcell.KeyF7:         KeyF7,
	tcell.KeyF8:         KeyF8,
	tcell.KeyF9:         KeyF9,
	tcell.KeyF10:        KeyF10,
	tcell.KeyF11:        KeyF11,
	tcell.KeyF12:        KeyF12,
	tcell.KeyPrint:      KeyPrintScreen,
}

var toTcell = func() map[Key]tcell.Key {
	m := make(map[Key]tcell.Key, len(fromTcell))
	for tk, k := range fromTcell {
		if tk == tcell.KeyBackspace2 {
			continue
		}
		m[k] = tk
	}
	return m
}()

// FromTcell converts a terminal key event. Control-letter keys become
// rune events with ModCtrl set.
func FromTcell(ev *tcell.EventKey) Event {
	mods := fromTcellMod(ev.Modifiers())

	tk := ev.Key()
	switch {
	case tk == tcell.KeyRune:
		r := ev.Rune()
		if r == ' ' {
			return NewEvent(KeySpace, 0, mods)
		}
		if unicode.IsUpper(r) {
			mods |= ModShift
			r = unicode.ToLower(r)
		}
		return NewEvent(KeyRune, r, mods)
	case tk >= tcell.KeyCtrlA && tk <= tcell.KeyCtrlZ && tk != tcell.KeyTab && tk != tcell.KeyEnter && tk != tcell.KeyBackspace:
		return NewEvent(KeyRune, rune('a'+(tk-tcell.KeyCtrlA)), mods|ModCtrl)
	}

	if k, ok := fromTcell[tk]; ok {
		return NewEvent(k, 0, mods)
	}
	return NewEvent(KeyNone, 0, mods)
}

// ToTcell converts an event into a terminal key event.
func ToTcell(e Event) *tcell.EventKey {
	mods := toTcellMod(e.Modifiers)
	switch e.Key {
	case KeyRune:
		return tcell.NewEventKey(tcell.KeyRune, e.Rune, mods)
	case KeySpace:
		return tcell.NewEventKey(tcell.KeyRune, ' ', mods)
	}
	if tk, ok := toTcell[e.Key]; ok {
		return tcell.NewEventKey(tk, 0, mods)
	}
	return tcell.NewEventKey(tcell.KeyNUL, 0, mods)
}

func fromTcellMod(m tcell.ModMask) Modifier {
	var out Modifier
	for tm, mod := range map[tcell.ModMask]Modifier{
		tcell.ModShift: ModShift,
		tcell.ModCtrl:  ModCtrl,
		tcell.ModAlt:   ModAlt,
		tcell.ModMeta:  ModMeta,
	} {
		if m&tm != 0 {
			out |= mod
		}
	}
	return out
}

func toTcellMod(m Modifier) tcell.ModMask {
	var out tcell.ModMask
	if m.Has(ModShift) {
		out |= tcell.ModShift
	}
	if m.Has(ModCtrl) {
		out |= tcell.ModCtrl
	}
	if m.Has(ModAlt) {
		out |= tcell.ModAlt
	}
	if m.Has(ModMeta) {
		out |= tcell.ModMeta
	}
	return out
}
