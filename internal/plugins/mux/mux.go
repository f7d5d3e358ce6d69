// Package mux runs command lines through a selectable language
// interpreter.
package mux

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"pkt.systems/pinosh/internal/appconfig"
	"pkt.systems/pinosh/internal/logx"
	"pkt.systems/pinosh/internal/process"
	"pkt.systems/pinosh/internal/shell"
	"pkt.systems/pinosh/schema"
)

const Name = "mux"

// State tracks the active language.
type State struct {
	mu      sync.RWMutex
	current schema.LangName
}

// CurrentLang returns the active language name.
func (s *State) CurrentLang() schema.LangName {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *State) set(lang schema.LangName) {
	s.mu.Lock()
	s.current = lang
	s.mu.Unlock()
}

// Plugin dispatches non-builtin lines to the active language. A language
// without an interpreter runs the words directly.
type Plugin struct {
	state     *State
	languages map[schema.LangName][]string
	names     []schema.LangName
}

// New validates cfg and starts on its default language.
func New(cfg appconfig.MuxConfig) (*Plugin, error) {
	p := &Plugin{state: &State{}, languages: make(map[schema.LangName][]string)}
	for name, argv := range cfg.Languages {
		lang := schema.LangName(name)
		p.languages[lang] = append([]string(nil), argv...)
		p.names = append(p.names, lang)
	}
	sort.Slice(p.names, func(i, j int) bool { return p.names[i] < p.names[j] })
	def := schema.LangName(cfg.Default)
	if _, ok := p.languages[def]; !ok {
		return nil, fmt.Errorf("%w: %q", schema.ErrUnknownLang, cfg.Default)
	}
	p.state.set(def)
	return p, nil
}

func (p *Plugin) Name() string { return Name }

func (p *Plugin) State() *State { return p.state }

// Languages returns the configured language names, sorted.
func (p *Plugin) Languages() []schema.LangName {
	return append([]schema.LangName(nil), p.names...)
}

// Switch makes lang the active language.
func (p *Plugin) Switch(lang schema.LangName) error {
	if _, ok := p.languages[lang]; !ok {
		return fmt.Errorf("%w: %q", schema.ErrUnknownLang, lang)
	}
	p.state.set(lang)
	return nil
}

func (p *Plugin) Init(b *shell.Builder) error {
	if err := b.RegisterBuiltin(shell.Builtin{
		Name:  "mux",
		Usage: "mux [lang]  list languages or switch the active one",
		Run:   p.builtin,
	}); err != nil {
		return err
	}
	return b.SetLineHandler(p.handle)
}

func (p *Plugin) builtin(ctx context.Context, sh *shell.Shell, args []string) int {
	if len(args) == 0 {
		current := p.state.CurrentLang()
		for _, name := range p.names {
			marker := " "
			if name == current {
				marker = "*"
			}
			fmt.Fprintf(sh.Stdout(), "%s %s\n", marker, name)
		}
		return 0
	}
	if err := p.Switch(schema.LangName(args[0])); err != nil {
		sh.Errorf("mux: %v", err)
		return 1
	}
	logx.WithPlugin(ctx, Name).Debug("mux switched", "lang", args[0])
	return 0
}

func (p *Plugin) handle(ctx context.Context, sh *shell.Shell, line string, _ []string) (int, bool) {
	argv := p.languages[p.state.CurrentLang()]
	if len(argv) == 0 {
		return 0, false
	}
	args := append(append([]string(nil), argv[1:]...), line)
	return sh.RunProcess(ctx, process.Spec{Command: argv[0], Args: args}), true
}
