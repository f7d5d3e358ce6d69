// Package cmdtimer measures how long each command line takes.
package cmdtimer

import (
	"context"
	"sync"
	"time"

	"pkt.systems/pinosh/internal/shell"
)

const Name = "cmdtimer"

// State holds the duration of the last finished command.
type State struct {
	mu      sync.Mutex
	start   time.Time
	elapsed time.Duration
	done    bool
}

// CommandTime returns the duration of the last command. ok is false until
// a command has finished.
func (s *State) CommandTime() (time.Duration, bool) {
	if s == nil {
		return 0, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed, s.done
}

func (s *State) begin(now time.Time) {
	s.mu.Lock()
	s.start = now
	s.mu.Unlock()
}

func (s *State) end(now time.Time) {
	s.mu.Lock()
	if !s.start.IsZero() {
		s.elapsed = now.Sub(s.start)
		s.done = true
	}
	s.mu.Unlock()
}

// Plugin times commands through BeforeCommand and AfterCommand hooks.
type Plugin struct {
	state *State
	now   func() time.Time
}

func New() *Plugin {
	return &Plugin{state: &State{}, now: time.Now}
}

func (p *Plugin) Name() string { return Name }

// State returns the plugin's state for prompt rendering.
func (p *Plugin) State() *State { return p.state }

func (p *Plugin) Init(b *shell.Builder) error {
	hooks := b.Hooks()
	hooks.OnBeforeCommand(func(context.Context, *shell.Shell, string) error {
		p.state.begin(p.now())
		return nil
	})
	hooks.OnAfterCommand(func(context.Context, *shell.Shell, string, int, time.Duration) error {
		p.state.end(p.now())
		return nil
	})
	return nil
}
