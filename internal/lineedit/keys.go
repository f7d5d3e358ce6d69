package lineedit

import (
	"bufio"
	"io"
	"unicode"
	"unicode/utf8"

	"pkt.systems/pinosh/schema"
)

// KeyKind classifies a decoded key press.
type KeyKind int

const (
	KeyRune KeyKind = iota
	KeyEnter
	KeyBackspace
	KeyDelete
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyTab
	KeyShiftTab
	KeyEsc
	// KeyCtrl carries the lowercase letter in Rune.
	KeyCtrl
	// KeyAlt carries the rune typed after Esc.
	KeyAlt
)

// Key is a decoded key press.
type Key struct {
	Kind KeyKind
	Rune rune
}

var specialNames = map[KeyKind]string{
	KeyEnter:     "Enter",
	KeyBackspace: "Backspace",
	KeyDelete:    "Delete",
	KeyLeft:      "Left",
	KeyRight:     "Right",
	KeyUp:        "Up",
	KeyDown:      "Down",
	KeyHome:      "Home",
	KeyEnd:       "End",
	KeyPageUp:    "PageUp",
	KeyPageDown:  "PageDown",
	KeyTab:       "Tab",
	KeyEsc:       "Esc",
}

// Chord returns the chord a key binding table indexes k by.
func (k Key) Chord() schema.Chord {
	switch k.Kind {
	case KeyRune:
		return schema.Chord{Key: string(k.Rune)}
	case KeyCtrl:
		return schema.Chord{Ctrl: true, Key: string(k.Rune)}
	case KeyAlt:
		return schema.Chord{Alt: true, Key: string(k.Rune)}
	case KeyShiftTab:
		return schema.Chord{Shift: true, Key: "Tab"}
	default:
		return schema.Chord{Key: specialNames[k.Kind]}
	}
}

// KeyReader decodes key presses from a raw terminal byte stream.
type KeyReader struct {
	br        *bufio.Reader
	lastWasCR bool
}

// NewKeyReader wraps r.
func NewKeyReader(r io.Reader) *KeyReader {
	return &KeyReader{br: bufio.NewReader(r)}
}

// ReadKey blocks until a full key press is decoded. Unknown escape
// sequences are swallowed.
func (k *KeyReader) ReadKey() (Key, error) {
	for {
		b, err := k.br.ReadByte()
		if err != nil {
			return Key{}, err
		}
		if k.lastWasCR {
			k.lastWasCR = false
			if b == '\n' {
				continue
			}
		}
		switch {
		case b == 0x1b:
			key, ok, err := k.readEscape()
			if err != nil {
				return Key{}, err
			}
			if ok {
				return key, nil
			}
		case b == '\r':
			k.lastWasCR = true
			return Key{Kind: KeyEnter}, nil
		case b == '\t':
			return Key{Kind: KeyTab}, nil
		case b == 0x7f || b == 0x08:
			return Key{Kind: KeyBackspace}, nil
		case b >= 0x01 && b <= 0x1a:
			return Key{Kind: KeyCtrl, Rune: rune('a' + b - 1)}, nil
		case b < 0x20:
			continue
		case b < utf8.RuneSelf:
			return Key{Kind: KeyRune, Rune: rune(b)}, nil
		default:
			_ = k.br.UnreadByte()
			rn, _, err := k.br.ReadRune()
			if err != nil {
				return Key{}, err
			}
			return Key{Kind: KeyRune, Rune: rn}, nil
		}
	}
}

func (k *KeyReader) readEscape() (Key, bool, error) {
	// A lone Esc arrives without a follow-up byte already in the buffer.
	if k.br.Buffered() == 0 {
		return Key{Kind: KeyEsc}, true, nil
	}
	b, err := k.br.ReadByte()
	if err != nil {
		return Key{}, false, err
	}
	switch b {
	case '[':
		return k.readCSI()
	case 'O':
		return k.readSS3()
	case 0x1b:
		_ = k.br.UnreadByte()
		return Key{Kind: KeyEsc}, true, nil
	}
	if b >= 0x20 && b < 0x7f {
		return Key{Kind: KeyAlt, Rune: rune(b)}, true, nil
	}
	return Key{}, false, nil
}

func (k *KeyReader) readCSI() (Key, bool, error) {
	seq := []byte{}
	for {
		b, err := k.br.ReadByte()
		if err != nil {
			return Key{}, false, err
		}
		seq = append(seq, b)
		if b == '~' || unicode.IsLetter(rune(b)) {
			break
		}
		if len(seq) > 8 {
			return Key{}, false, nil
		}
	}
	switch string(seq) {
	case "A":
		return Key{Kind: KeyUp}, true, nil
	case "B":
		return Key{Kind: KeyDown}, true, nil
	case "C":
		return Key{Kind: KeyRight}, true, nil
	case "D":
		return Key{Kind: KeyLeft}, true, nil
	case "H", "1~", "7~":
		return Key{Kind: KeyHome}, true, nil
	case "F", "4~", "8~":
		return Key{Kind: KeyEnd}, true, nil
	case "5~":
		return Key{Kind: KeyPageUp}, true, nil
	case "6~":
		return Key{Kind: KeyPageDown}, true, nil
	case "3~":
		return Key{Kind: KeyDelete}, true, nil
	case "Z", "1;2Z":
		return Key{Kind: KeyShiftTab}, true, nil
	}
	return Key{}, false, nil
}

func (k *KeyReader) readSS3() (Key, bool, error) {
	b, err := k.br.ReadByte()
	if err != nil {
		return Key{}, false, err
	}
	switch b {
	case 'A':
		return Key{Kind: KeyUp}, true, nil
	case 'B':
		return Key{Kind: KeyDown}, true, nil
	case 'C':
		return Key{Kind: KeyRight}, true, nil
	case 'D':
		return Key{Kind: KeyLeft}, true, nil
	case 'H':
		return Key{Kind: KeyHome}, true, nil
	case 'F':
		return Key{Kind: KeyEnd}, true, nil
	}
	return Key{}, false, nil
}
