package history

import (
	"reflect"
	"testing"
)

func TestBufferAppendDropsBlankAndRepeats(t *testing.T) {
	b := NewBuffer(10)
	for _, entry := range []string{"ls", "ls", "  ", "", "pwd", "ls"} {
		b.Append(entry)
	}
	want := []string{"ls", "pwd", "ls"}
	if got := b.Entries(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestBufferBounded(t *testing.T) {
	b := NewBuffer(2)
	b.Append("a")
	b.Append("b")
	b.Append("c")
	if got := b.Entries(); !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Fatalf("unexpected entries %v", got)
	}
	if got := b.Last(5); !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Fatalf("unexpected last entries %v", got)
	}
}

func TestBufferNavigationPreservesDraft(t *testing.T) {
	b := NewBuffer(10)
	b.Load([]string{"one", "two"})
	if got, ok := b.Up("draft"); !ok || got != "two" {
		t.Fatalf("expected two, got %q", got)
	}
	if got, ok := b.Up("two"); !ok || got != "one" {
		t.Fatalf("expected one, got %q", got)
	}
	if _, ok := b.Up("one"); ok {
		t.Fatalf("expected oldest entry to stop navigation")
	}
	if got, ok := b.Down(); !ok || got != "two" {
		t.Fatalf("expected two, got %q", got)
	}
	if got, ok := b.Down(); !ok || got != "draft" {
		t.Fatalf("expected draft, got %q", got)
	}
	if _, ok := b.Down(); ok {
		t.Fatalf("expected no further navigation")
	}
}

func TestBufferEmptyNavigation(t *testing.T) {
	b := NewBuffer(0)
	if _, ok := b.Up("x"); ok {
		t.Fatalf("expected no history")
	}
}
