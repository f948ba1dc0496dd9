package key

// domKeyCodes maps browser keyCode values to keys. Letters and digits are
// handled arithmetically in DecodeKeyCode.
var domKeyCodes = map[int]Key{
	8:   KeyBackspace,
	9:   KeyTab,
	13:  KeyEnter,
	20:  KeyCapsLock,
	27:  KeyEscape,
	32:  KeySpace,
	33:  KeyPageUp,
	34:  KeyPageDown,
	35:  KeyEnd,
	36:  KeyHome,
	37:  KeyLeft,
	38:  KeyUp,
	39:  KeyRight,
	40:  KeyDown,
	44:  KeyPrintScreen,
	45:  KeyInsert,
	46:  KeyDelete,
	112: KeyF1,
	113: KeyF2,
	114: KeyF3,
	115: KeyF4,
	116: KeyF5,
	117: KeyF6,
	118: KeyF7,
	119: KeyF8,
	120: KeyF9,
	121: KeyF10,
	122: KeyF11,
	123: KeyF12,
}

var domPunctuation = map[int]rune{
	186: ';',
	187: '=',
	188: ',',
	189: '-',
	190: '.',
	191: '/',
	192: '`',
	219: '[',
	220: '\\',
	221: ']',
	222: '\'',
}

// DecodeKeyCode converts a browser keyCode into a key. ok is false for
// codes without a mapping.
func DecodeKeyCode(code int) (k Key, r rune, ok bool) {
	switch {
	case code >= 'A' && code <= 'Z':
		return KeyRune, rune(code - 'A' + 'a'), true
	case code >= '0' && code <= '9':
		return KeyRune, rune(code), true
	case code >= 96 && code <= 105:
		return KeyRune, rune('0' + code - 96), true
	}
	if k, ok := domKeyCodes[code]; ok {
		return k, 0, true
	}
	if r, ok := domPunctuation[code]; ok {
		return KeyRune, r, true
	}
	return KeyNone, 0, false
}
