// Package filehistory backs the shell history with a file.
package filehistory

import (
	"context"
	"fmt"

	"pkt.systems/pinosh/internal/history"
	"pkt.systems/pinosh/internal/logx"
	"pkt.systems/pinosh/internal/shell"
	"pkt.systems/pslog"
)

const Name = "filehistory"

type Plugin struct {
	path  string
	max   int
	log   pslog.Logger
	store *history.FileStore
}

// New returns a plugin persisting up to max entries at path.
func New(ctx context.Context, path string, max int) *Plugin {
	return &Plugin{path: path, max: max, log: logx.WithPlugin(ctx, Name)}
}

func (p *Plugin) Name() string { return Name }

// Store returns the opened store, nil before Init.
func (p *Plugin) Store() *history.FileStore { return p.store }

// Init opens the history file and loads it into the shell history. Failing
// to open the file fails the build.
func (p *Plugin) Init(b *shell.Builder) error {
	store, err := history.OpenFileStore(p.path, p.max, p.log)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	p.store = store
	b.History().Load(store.Entries())
	b.Hooks().OnHistoryAppend(func(_ context.Context, _ *shell.Shell, entry string) error {
		return p.store.Append(entry)
	})
	p.log.Debug("history attached", "entries", len(store.Entries()))
	return nil
}
