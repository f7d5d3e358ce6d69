// Package shell implements the interactive loop, line dispatch and the
// builtin commands.
package shell

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"pkt.systems/pinosh/internal/alias"
	"pkt.systems/pinosh/internal/completion"
	"pkt.systems/pinosh/internal/env"
	"pkt.systems/pinosh/internal/history"
	"pkt.systems/pinosh/internal/keybind"
	"pkt.systems/pinosh/internal/lineedit"
	"pkt.systems/pinosh/internal/logx"
	"pkt.systems/pinosh/schema"
)

// Shell is a built shell. It is driven from a single goroutine.
type Shell struct {
	env          *env.Env
	aliases      *alias.Table
	keys         *keybind.Table
	completer    *completion.Completer
	prompt       Prompter
	history      *history.Buffer
	hooks        Hooks
	builtins     map[string]Builtin
	builtinNames []string
	lineHandler  LineHandler
	plugins      []string

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	cwd        string
	prevDir    string
	lastStatus int
	mode       schema.LineMode

	term     *terminal
	renderer *lineedit.Renderer
	drawn    bool
}

func (s *Shell) Env() *env.Env                    { return s.env }
func (s *Shell) Aliases() *alias.Table            { return s.aliases }
func (s *Shell) Bindings() *keybind.Table         { return s.keys }
func (s *Shell) Completer() *completion.Completer { return s.completer }
func (s *Shell) History() *history.Buffer         { return s.history }
func (s *Shell) Stdout() io.Writer                { return s.stdout }
func (s *Shell) Stderr() io.Writer                { return s.stderr }
func (s *Shell) Cwd() string                      { return s.cwd }
func (s *Shell) Mode() schema.LineMode            { return s.mode }

// LastStatus is the exit status of the previous command, as in $?.
func (s *Shell) LastStatus() int {
	return s.lastStatus
}

// Plugins returns the names of the attached plugins.
func (s *Shell) Plugins() []string {
	return append([]string(nil), s.plugins...)
}

// HasPlugin reports whether a plugin with name is attached.
func (s *Shell) HasPlugin(name string) bool {
	for _, p := range s.plugins {
		if p == name {
			return true
		}
	}
	return false
}

// Builtins returns the builtins sorted by name.
func (s *Shell) Builtins() []Builtin {
	out := make([]Builtin, 0, len(s.builtinNames))
	for _, name := range s.builtinNames {
		out = append(out, s.builtins[name])
	}
	return out
}

// Home returns $HOME from the shell environment.
func (s *Shell) Home() string {
	home, _ := s.env.Get("HOME")
	return home
}

// ChangeDir changes the shell working directory. An empty dir means
// $HOME and "-" the previous directory.
func (s *Shell) ChangeDir(ctx context.Context, dir string) error {
	target := dir
	switch {
	case dir == "":
		target = s.Home()
		if target == "" {
			return fmt.Errorf("cd: HOME not set")
		}
	case dir == "-":
		if s.prevDir == "" {
			return fmt.Errorf("cd: OLDPWD not set")
		}
		target = s.prevDir
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(s.cwd, target)
	}
	target = filepath.Clean(target)
	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("cd: %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("cd: %s: %w", dir, schema.ErrNotDirectory)
	}
	old := s.cwd
	s.prevDir = old
	s.cwd = target
	s.env.Set("OLDPWD", old)
	s.env.Set("PWD", target)
	logx.WithDir(logx.Ctx(ctx), target).Trace("shell change dir", "from", old)
	s.hooks.runChangeDir(ctx, s, old, target)
	return nil
}

// WithCookedTerminal leaves the prompt line and raw mode while fn runs.
// Outside an interactive session fn just runs.
func (s *Shell) WithCookedTerminal(fn func() error) error {
	if s.term == nil || !s.term.raw {
		return fn()
	}
	if s.drawn {
		_ = s.renderer.Finish()
		s.drawn = false
	}
	if err := s.term.restore(); err != nil {
		return err
	}
	err := fn()
	if rawErr := s.term.makeRaw(); rawErr != nil && err == nil {
		err = rawErr
	}
	s.renderer.Reset()
	return err
}

// Errorf prints a pinosh-prefixed diagnostic on stderr.
func (s *Shell) Errorf(format string, args ...any) {
	fmt.Fprintf(s.stderr, schema.ShellName+": "+format+"\n", args...)
}
