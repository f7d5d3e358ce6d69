package logx

import (
	"context"

	"pkt.systems/pinosh/schema"
	"pkt.systems/pslog"
)

const commandPreviewLimit = 120

// Ctx returns the logger bound to the provided context.
func Ctx(ctx context.Context) pslog.Logger {
	return pslog.Ctx(ctx)
}

// WithPlugin annotates the context logger with the plugin name.
func WithPlugin(ctx context.Context, name string) pslog.Logger {
	log := pslog.Ctx(ctx)
	if name != "" {
		log = log.With("plugin", name)
	}
	return log
}

// WithCommand annotates the logger with a preview of the command line.
func WithCommand(log pslog.Logger, line string) pslog.Logger {
	if line == "" {
		return log
	}
	preview := []rune(line)
	if len(preview) > commandPreviewLimit {
		return log.With("command", string(preview[:commandPreviewLimit]), "command_truncated", true)
	}
	return log.With("command", line)
}

// WithChord annotates the logger with a key chord.
func WithChord(log pslog.Logger, chord schema.Chord) pslog.Logger {
	if chord.IsZero() {
		return log
	}
	return log.With("chord", chord.String())
}

// WithDir annotates the logger with a working directory when available.
func WithDir(log pslog.Logger, dir string) pslog.Logger {
	if dir != "" {
		log = log.With("dir", dir)
	}
	return log
}
