package shell

import (
	"context"
	"time"

	"pkt.systems/pinosh/internal/logx"
)

// StartupHook runs once before the first prompt.
type StartupHook func(ctx context.Context, sh *Shell) error

// BeforeCommandHook runs after a line is submitted and before it executes.
type BeforeCommandHook func(ctx context.Context, sh *Shell, line string) error

// AfterCommandHook runs once the line has finished.
type AfterCommandHook func(ctx context.Context, sh *Shell, line string, exit int, elapsed time.Duration) error

// ChangeDirHook runs after the working directory changed.
type ChangeDirHook func(ctx context.Context, sh *Shell, oldDir, newDir string) error

// HistoryAppendHook runs when the history buffer accepted an entry.
type HistoryAppendHook func(ctx context.Context, sh *Shell, entry string) error

// Hooks holds the registered hooks of every kind. Hooks of one kind run in
// registration order; a failing hook is logged and the rest still run.
type Hooks struct {
	startup       []StartupHook
	before        []BeforeCommandHook
	after         []AfterCommandHook
	changeDir     []ChangeDirHook
	historyAppend []HistoryAppendHook
}

func (h *Hooks) OnStartup(fn StartupHook) {
	h.startup = append(h.startup, fn)
}

func (h *Hooks) OnBeforeCommand(fn BeforeCommandHook) {
	h.before = append(h.before, fn)
}

func (h *Hooks) OnAfterCommand(fn AfterCommandHook) {
	h.after = append(h.after, fn)
}

func (h *Hooks) OnChangeDir(fn ChangeDirHook) {
	h.changeDir = append(h.changeDir, fn)
}

func (h *Hooks) OnHistoryAppend(fn HistoryAppendHook) {
	h.historyAppend = append(h.historyAppend, fn)
}

func (h *Hooks) runStartup(ctx context.Context, sh *Shell) {
	for i, fn := range h.startup {
		if err := fn(ctx, sh); err != nil {
			logx.Ctx(ctx).Warn("startup hook failed", "index", i, "err", err)
		}
	}
}

func (h *Hooks) runBefore(ctx context.Context, sh *Shell, line string) {
	for i, fn := range h.before {
		if err := fn(ctx, sh, line); err != nil {
			logx.WithCommand(logx.Ctx(ctx), line).Warn("before command hook failed", "index", i, "err", err)
		}
	}
}

func (h *Hooks) runAfter(ctx context.Context, sh *Shell, line string, exit int, elapsed time.Duration) {
	for i, fn := range h.after {
		if err := fn(ctx, sh, line, exit, elapsed); err != nil {
			logx.WithCommand(logx.Ctx(ctx), line).Warn("after command hook failed", "index", i, "err", err)
		}
	}
}

func (h *Hooks) runChangeDir(ctx context.Context, sh *Shell, oldDir, newDir string) {
	for i, fn := range h.changeDir {
		if err := fn(ctx, sh, oldDir, newDir); err != nil {
			logx.WithDir(logx.Ctx(ctx), newDir).Warn("change dir hook failed", "index", i, "err", err)
		}
	}
}

func (h *Hooks) runHistoryAppend(ctx context.Context, sh *Shell, entry string) {
	for i, fn := range h.historyAppend {
		if err := fn(ctx, sh, entry); err != nil {
			logx.Ctx(ctx).Warn("history append hook failed", "index", i, "err", err)
		}
	}
}
