package schema

import "strings"

// Chord is a key combination such as C-l or M-f. Key is a single rune for
// printable keys or a name (Tab, Enter, Esc, Up...) for special keys.
type Chord struct {
	Ctrl  bool
	Alt   bool
	Shift bool
	Key   string
}

// String renders the chord in the C-/M-/S- prefix form.
func (c Chord) String() string {
	var b strings.Builder
	if c.Ctrl {
		b.WriteString("C-")
	}
	if c.Alt {
		b.WriteString("M-")
	}
	if c.Shift {
		b.WriteString("S-")
	}
	b.WriteString(c.Key)
	return b.String()
}

// IsZero reports whether c names no key.
func (c Chord) IsZero() bool {
	return c.Key == ""
}
