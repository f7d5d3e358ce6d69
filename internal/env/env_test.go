package env

import (
	"errors"
	"testing"

	"pkt.systems/pinosh/schema"
)

func TestLoadFromSkipsMalformed(t *testing.T) {
	e := New()
	e.LoadFrom([]string{"A=1", "B=x=y", "=bad", "NOEQ"})
	if v, ok := e.Get("A"); !ok || v != "1" {
		t.Fatalf("expected A=1, got %q %v", v, ok)
	}
	if v, _ := e.Get("B"); v != "x=y" {
		t.Fatalf("expected value with '=', got %q", v)
	}
	if _, ok := e.Get("NOEQ"); ok {
		t.Fatalf("did not expect NOEQ")
	}
	if got := e.Environ(); len(got) != 2 || got[0] != "A=1" || got[1] != "B=x=y" {
		t.Fatalf("unexpected environ %v", got)
	}
}

func TestLoadReadsProcessEnvironment(t *testing.T) {
	t.Setenv("PINOSH_ENV_TEST", "yes")
	e := Load()
	if v, _ := e.Get("PINOSH_ENV_TEST"); v != "yes" {
		t.Fatalf("expected process variable, got %q", v)
	}
}

func TestPathMissing(t *testing.T) {
	e := New()
	if _, err := e.Path(); !errors.Is(err, schema.ErrMissingPath) {
		t.Fatalf("expected ErrMissingPath, got %v", err)
	}
	e.Set("PATH", "/usr/bin")
	if p, err := e.Path(); err != nil || p != "/usr/bin" {
		t.Fatalf("expected PATH, got %q %v", p, err)
	}
}

func TestSetUnset(t *testing.T) {
	e := New()
	e.Set("SHELL_NAME", "pinosh")
	if got, _ := e.Get("SHELL_NAME"); got != "pinosh" {
		t.Fatalf("unexpected value %q", got)
	}
	e.Unset("SHELL_NAME")
	if _, ok := e.Get("SHELL_NAME"); ok {
		t.Fatalf("expected unset to remove variable")
	}
}
