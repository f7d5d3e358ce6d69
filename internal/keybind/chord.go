package keybind

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"pkt.systems/pinosh/schema"
)

var specialKeys = map[string]string{
	"tab":       "Tab",
	"enter":     "Enter",
	"ret":       "Enter",
	"esc":       "Esc",
	"escape":    "Esc",
	"backspace": "Backspace",
	"delete":    "Delete",
	"del":       "Delete",
	"up":        "Up",
	"down":      "Down",
	"left":      "Left",
	"right":     "Right",
	"home":      "Home",
	"end":       "End",
	"pageup":    "PageUp",
	"pagedown":  "PageDown",
}

// ParseChord parses C-/M-/S- prefixed chords such as "C-l", "M-f" or
// "S-Tab". Modifier letters are case-insensitive.
func ParseChord(value string) (schema.Chord, error) {
	var chord schema.Chord
	rest := strings.TrimSpace(value)
	for len(rest) > 2 && rest[1] == '-' {
		switch rest[0] {
		case 'C', 'c':
			chord.Ctrl = true
		case 'M', 'm', 'A', 'a':
			chord.Alt = true
		case 'S', 's':
			chord.Shift = true
		default:
			return schema.Chord{}, fmt.Errorf("%w: %q", schema.ErrInvalidChord, value)
		}
		rest = rest[2:]
	}
	if rest == "" {
		return schema.Chord{}, fmt.Errorf("%w: %q", schema.ErrInvalidChord, value)
	}
	if name, ok := specialKeys[strings.ToLower(rest)]; ok {
		chord.Key = name
		return chord, nil
	}
	if utf8.RuneCountInString(rest) != 1 {
		return schema.Chord{}, fmt.Errorf("%w: %q", schema.ErrInvalidChord, value)
	}
	if chord.Ctrl {
		// Terminals cannot tell C-L from C-l.
		rest = strings.ToLower(rest)
	}
	chord.Key = rest
	return chord, nil
}
