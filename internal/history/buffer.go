package history

import "strings"

// DefaultMax bounds a buffer created without an explicit size.
const DefaultMax = 1000

// Buffer is a bounded command history with Up/Down navigation.
type Buffer struct {
	entries []string
	max     int

	index int
	draft string
}

// NewBuffer returns an empty buffer keeping at most max entries.
func NewBuffer(max int) *Buffer {
	if max <= 0 {
		max = DefaultMax
	}
	return &Buffer{max: max, index: -1}
}

// Load replaces the entries, keeping the newest max of them.
func (b *Buffer) Load(entries []string) {
	if len(entries) > b.max {
		entries = entries[len(entries)-b.max:]
	}
	b.entries = append([]string(nil), entries...)
	b.Reset()
}

// Append records entry. Blank entries and repeats of the newest entry are
// dropped; the return value reports whether entry was stored.
func (b *Buffer) Append(entry string) bool {
	if b == nil {
		return false
	}
	b.Reset()
	if strings.TrimSpace(entry) == "" {
		return false
	}
	if len(b.entries) > 0 && b.entries[len(b.entries)-1] == entry {
		return false
	}
	b.entries = append(b.entries, entry)
	if len(b.entries) > b.max {
		b.entries = b.entries[len(b.entries)-b.max:]
	}
	return true
}

func (b *Buffer) Entries() []string {
	if b == nil {
		return nil
	}
	return append([]string(nil), b.entries...)
}

func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}

// Last returns up to n of the newest entries, oldest first.
func (b *Buffer) Last(n int) []string {
	if b == nil || n <= 0 {
		return nil
	}
	if n > len(b.entries) {
		n = len(b.entries)
	}
	return append([]string(nil), b.entries[len(b.entries)-n:]...)
}

// Up steps to the previous entry. The first step remembers current as the
// draft that Down returns to.
func (b *Buffer) Up(current string) (string, bool) {
	if len(b.entries) == 0 {
		return "", false
	}
	switch {
	case b.index == -1:
		b.draft = current
		b.index = len(b.entries) - 1
	case b.index > 0:
		b.index--
	default:
		return "", false
	}
	return b.entries[b.index], true
}

// Down steps to the next entry, or back to the draft past the newest one.
func (b *Buffer) Down() (string, bool) {
	if b.index == -1 {
		return "", false
	}
	if b.index < len(b.entries)-1 {
		b.index++
		return b.entries[b.index], true
	}
	b.index = -1
	draft := b.draft
	b.draft = ""
	return draft, true
}

// Reset leaves history navigation.
func (b *Buffer) Reset() {
	b.index = -1
	b.draft = ""
}
