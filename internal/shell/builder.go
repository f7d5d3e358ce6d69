package shell

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"pkt.systems/pinosh/internal/alias"
	"pkt.systems/pinosh/internal/completion"
	"pkt.systems/pinosh/internal/env"
	"pkt.systems/pinosh/internal/history"
	"pkt.systems/pinosh/internal/keybind"
	"pkt.systems/pinosh/internal/logx"
	"pkt.systems/pinosh/schema"
)

// Plugin extends the shell at build time by registering hooks, builtins
// or a line handler on the builder.
type Plugin interface {
	Name() string
	Init(b *Builder) error
}

// BuiltinFunc runs a builtin in process and returns its exit status.
type BuiltinFunc func(ctx context.Context, sh *Shell, args []string) int

// Builtin is a command implemented by the shell itself.
type Builtin struct {
	Name  string
	Usage string
	Run   BuiltinFunc
}

// LineHandler gets the first chance to run a line that is not a builtin.
// It reports handled=false to fall through to direct execution.
type LineHandler func(ctx context.Context, sh *Shell, line string, words []string) (status int, handled bool)

// Builder assembles a Shell.
type Builder struct {
	env       *env.Env
	aliases   *alias.Table
	keys      *keybind.Table
	completer *completion.Completer
	prompt    Prompter
	history   *history.Buffer
	hooks     Hooks
	plugins   []Plugin

	builtins     map[string]Builtin
	builtinOrder []string
	lineHandler  LineHandler

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	dir    string
	err    error
}

// NewBuilder returns a builder with the core builtins registered.
func NewBuilder() *Builder {
	b := &Builder{
		builtins: make(map[string]Builtin),
		stdin:    os.Stdin,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
	for _, builtin := range coreBuiltins() {
		_ = b.RegisterBuiltin(builtin)
	}
	return b
}

func (b *Builder) WithEnv(e *env.Env) *Builder {
	b.env = e
	return b
}

func (b *Builder) WithAliases(t *alias.Table) *Builder {
	b.aliases = t
	return b
}

func (b *Builder) WithKeybindings(t *keybind.Table) *Builder {
	b.keys = t
	return b
}

func (b *Builder) WithCompleter(c *completion.Completer) *Builder {
	b.completer = c
	return b
}

func (b *Builder) WithPrompt(p Prompter) *Builder {
	b.prompt = p
	return b
}

func (b *Builder) WithHistory(h *history.Buffer) *Builder {
	b.history = h
	return b
}

// WithIO replaces the shell's stdio.
func (b *Builder) WithIO(in io.Reader, out, errOut io.Writer) *Builder {
	b.stdin = in
	b.stdout = out
	b.stderr = errOut
	return b
}

// WithDir sets the starting directory. It defaults to the process cwd.
func (b *Builder) WithDir(dir string) *Builder {
	b.dir = dir
	return b
}

// WithPlugin queues p; Build initialises plugins in the order given.
func (b *Builder) WithPlugin(p Plugin) *Builder {
	b.plugins = append(b.plugins, p)
	return b
}

// Hooks returns the hook registry for plugins.
func (b *Builder) Hooks() *Hooks {
	return &b.hooks
}

// Env returns the environment the shell will use.
func (b *Builder) Env() *env.Env {
	return b.env
}

// History returns the history buffer, creating a default one if needed.
func (b *Builder) History() *history.Buffer {
	if b.history == nil {
		b.history = history.NewBuffer(history.DefaultMax)
	}
	return b.history
}

// RegisterBuiltin adds a builtin. A duplicate name fails Build.
func (b *Builder) RegisterBuiltin(builtin Builtin) error {
	if _, ok := b.builtins[builtin.Name]; ok {
		err := fmt.Errorf("%w: %s", schema.ErrDuplicateBuiltin, builtin.Name)
		if b.err == nil {
			b.err = err
		}
		return err
	}
	b.builtins[builtin.Name] = builtin
	b.builtinOrder = append(b.builtinOrder, builtin.Name)
	return nil
}

// BuiltinNames returns the registered builtin names, sorted.
func (b *Builder) BuiltinNames() []string {
	names := append([]string(nil), b.builtinOrder...)
	sort.Strings(names)
	return names
}

// SetLineHandler installs the handler for non-builtin lines. Only one
// handler may be installed.
func (b *Builder) SetLineHandler(h LineHandler) error {
	if b.lineHandler != nil {
		return fmt.Errorf("line handler already installed")
	}
	b.lineHandler = h
	return nil
}

// Build initialises plugins and returns the shell.
func (b *Builder) Build(ctx context.Context) (*Shell, error) {
	if b.env == nil {
		b.env = env.Load()
	}
	if _, err := b.env.Path(); err != nil {
		return nil, err
	}
	for _, p := range b.plugins {
		log := logx.WithPlugin(ctx, p.Name())
		if err := p.Init(b); err != nil {
			log.Warn("plugin init failed", "err", err)
			return nil, fmt.Errorf("plugin %s: %w", p.Name(), err)
		}
		log.Debug("plugin attached")
	}
	if b.err != nil {
		return nil, b.err
	}
	dir := b.dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("working directory: %w", err)
		}
		dir = wd
	}
	if b.aliases == nil {
		b.aliases, _ = alias.New()
	}
	if b.keys == nil {
		b.keys = keybind.NewTable()
	}
	if b.completer == nil {
		b.completer = completion.New()
	}
	pluginNames := make([]string, 0, len(b.plugins))
	for _, p := range b.plugins {
		pluginNames = append(pluginNames, p.Name())
	}
	sh := &Shell{
		env:         b.env,
		aliases:     b.aliases,
		keys:        b.keys,
		completer:   b.completer,
		prompt:      b.prompt,
		history:     b.History(),
		hooks:       b.hooks,
		builtins:    b.builtins,
		lineHandler: b.lineHandler,
		plugins:     pluginNames,
		stdin:       b.stdin,
		stdout:      b.stdout,
		stderr:      b.stderr,
		cwd:         dir,
		mode:        schema.LineModeInsert,
	}
	sh.builtinNames = b.BuiltinNames()
	b.env.Set("PWD", dir)
	return sh, nil
}
