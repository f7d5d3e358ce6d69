package keybind

import (
	"context"
	"fmt"
	"io"

	"pkt.systems/pinosh/internal/env"
	"pkt.systems/pinosh/schema"
)

// Host is the part of the shell a bound action works against.
type Host interface {
	Cwd() string
	Env() *env.Env
	ChangeDir(ctx context.Context, dir string) error
	Stderr() io.Writer
	// WithCookedTerminal leaves raw mode and the prompt line while fn runs.
	WithCookedTerminal(fn func() error) error
}

// Action runs when its chord is pressed.
type Action func(ctx context.Context, host Host) error

// Binding ties a chord to an action.
type Binding struct {
	Chord       schema.Chord
	Description string
	Action      Action
}

// Table maps chords to bindings. Chords are unique.
type Table struct {
	bindings map[schema.Chord]Binding
	order    []schema.Chord
}

func NewTable() *Table {
	return &Table{bindings: make(map[schema.Chord]Binding)}
}

// Insert parses chord and binds it.
func (t *Table) Insert(chord, description string, action Action) error {
	parsed, err := ParseChord(chord)
	if err != nil {
		return err
	}
	return t.Bind(parsed, description, action)
}

// Bind binds an already parsed chord.
func (t *Table) Bind(chord schema.Chord, description string, action Action) error {
	if chord.IsZero() || action == nil {
		return fmt.Errorf("%w: %q", schema.ErrInvalidChord, chord.String())
	}
	if _, ok := t.bindings[chord]; ok {
		return fmt.Errorf("%w: %s", schema.ErrDuplicateChord, chord)
	}
	t.bindings[chord] = Binding{Chord: chord, Description: description, Action: action}
	t.order = append(t.order, chord)
	return nil
}

func (t *Table) Lookup(chord schema.Chord) (Binding, bool) {
	if t == nil {
		return Binding{}, false
	}
	b, ok := t.bindings[chord]
	return b, ok
}

// Entries returns bindings in insertion order.
func (t *Table) Entries() []Binding {
	if t == nil {
		return nil
	}
	out := make([]Binding, 0, len(t.order))
	for _, chord := range t.order {
		out = append(out, t.bindings[chord])
	}
	return out
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}
