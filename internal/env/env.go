// Package env holds the environment handed to commands run by the shell.
package env

import (
	"os"
	"sort"
	"strings"
	"sync"

	"pkt.systems/pinosh/schema"
)

// Env is a mutable copy of the process environment.
type Env struct {
	mu   sync.RWMutex
	vars map[string]string
}

// New returns an empty Env.
func New() *Env {
	return &Env{vars: make(map[string]string)}
}

// Load returns an Env populated from os.Environ.
func Load() *Env {
	e := New()
	e.LoadFrom(os.Environ())
	return e
}

// LoadFrom merges KEY=VALUE pairs into e. Malformed entries are skipped.
func (e *Env) LoadFrom(pairs []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			continue
		}
		e.vars[key] = value
	}
}

// Get returns the value of key.
func (e *Env) Get(key string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	value, ok := e.vars[key]
	return value, ok
}

// Set assigns key.
func (e *Env) Set(key, value string) {
	e.mu.Lock()
	e.vars[key] = value
	e.mu.Unlock()
}

// Unset removes key.
func (e *Env) Unset(key string) {
	e.mu.Lock()
	delete(e.vars, key)
	e.mu.Unlock()
}

// Path returns PATH or schema.ErrMissingPath.
func (e *Env) Path() (string, error) {
	value, ok := e.Get("PATH")
	if !ok || strings.TrimSpace(value) == "" {
		return "", schema.ErrMissingPath
	}
	return value, nil
}

// Environ returns KEY=VALUE pairs sorted by key.
func (e *Env) Environ() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, 0, len(e.vars))
	for key, value := range e.vars {
		out = append(out, key+"="+value)
	}
	sort.Strings(out)
	return out
}
