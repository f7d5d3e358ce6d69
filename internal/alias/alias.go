// Package alias expands short command names before dispatch.
package alias

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"pkt.systems/pinosh/schema"
)

// Entry is a single alias definition.
type Entry struct {
	Name      string
	Expansion string
}

// Table maps alias names to expansions. It is immutable once built.
type Table struct {
	order   []string
	entries map[string]string
}

// New builds a table from ordered pairs. Names must be non-empty, free of
// whitespace and unique.
func New(entries ...Entry) (*Table, error) {
	t := &Table{entries: make(map[string]string, len(entries))}
	for _, entry := range entries {
		if !validName(entry.Name) {
			return nil, fmt.Errorf("%w: %q", schema.ErrInvalidAlias, entry.Name)
		}
		if _, ok := t.entries[entry.Name]; ok {
			return nil, fmt.Errorf("%w: %q", schema.ErrDuplicateAlias, entry.Name)
		}
		t.entries[entry.Name] = entry.Expansion
		t.order = append(t.order, entry.Name)
	}
	return t, nil
}

// FromPairs builds a table from [name, expansion] pairs.
func FromPairs(pairs ...[2]string) (*Table, error) {
	entries := make([]Entry, 0, len(pairs))
	for _, p := range pairs {
		entries = append(entries, Entry{Name: p[0], Expansion: p[1]})
	}
	return New(entries...)
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if unicode.IsSpace(r) || r == '=' {
			return false
		}
	}
	return true
}

// Get returns the expansion of name.
func (t *Table) Get(name string) (string, bool) {
	if t == nil {
		return "", false
	}
	v, ok := t.entries[name]
	return v, ok
}

// Len returns the number of aliases.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}

// Entries returns the aliases in definition order.
func (t *Table) Entries() []Entry {
	if t == nil {
		return nil
	}
	out := make([]Entry, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, Entry{Name: name, Expansion: t.entries[name]})
	}
	return out
}

// Names returns alias names sorted.
func (t *Table) Names() []string {
	if t == nil {
		return nil
	}
	out := append([]string(nil), t.order...)
	sort.Strings(out)
	return out
}

// Expand replaces the first word of line with its expansion. Only one
// lookup is done, so the expansion is never itself expanded again.
func (t *Table) Expand(line string) string {
	if t == nil || len(t.entries) == 0 {
		return line
	}
	lead, word, rest := splitFirstWord(line)
	expansion, ok := t.entries[word]
	if word == "" || !ok {
		return line
	}
	return lead + expansion + rest
}

func splitFirstWord(line string) (lead, word, rest string) {
	trimmed := strings.TrimLeft(line, " \t")
	lead = line[:len(line)-len(trimmed)]
	end := strings.IndexAny(trimmed, " \t")
	if end < 0 {
		return lead, trimmed, ""
	}
	return lead, trimmed[:end], trimmed[end:]
}
