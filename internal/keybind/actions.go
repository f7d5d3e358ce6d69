package keybind

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"pkt.systems/pinosh/internal/appconfig"
	"pkt.systems/pinosh/internal/logx"
	"pkt.systems/pinosh/internal/process"
	"pkt.systems/pinosh/schema"
)

// FuzzyDirsVar lists the directories searched by the fuzzy binding.
const FuzzyDirsVar = "FUZZY_DIRS"

// Runner starts processes for actions.
type Runner interface {
	Spawn(ctx context.Context, spec process.Spec) error
	Run(ctx context.Context, spec process.Spec) (int, error)
	Pipeline(ctx context.Context, producer, consumer process.Spec) (string, int, error)
}

// ProcessRunner runs real processes.
type ProcessRunner struct{}

func (ProcessRunner) Spawn(ctx context.Context, spec process.Spec) error {
	return process.Spawn(ctx, spec)
}

func (ProcessRunner) Run(ctx context.Context, spec process.Spec) (int, error) {
	return process.Run(ctx, spec)
}

func (ProcessRunner) Pipeline(ctx context.Context, producer, consumer process.Spec) (string, int, error) {
	return process.Pipeline(ctx, producer, consumer)
}

// ClearScreen runs clear and waits for it.
func ClearScreen(r Runner) Action {
	return func(ctx context.Context, host Host) error {
		return host.WithCookedTerminal(func() error {
			_, err := r.Run(ctx, process.Spec{Command: "clear", Dir: host.Cwd(), Env: host.Env().Environ()})
			return err
		})
	}
}

// SpawnTerminal starts the terminal emulator detached, with the shell's
// working directory appended to args.
func SpawnTerminal(r Runner, command string, args []string) Action {
	return func(ctx context.Context, host Host) error {
		cwd := host.Cwd()
		spec := process.Spec{
			Command: command,
			Args:    append(append([]string(nil), args...), cwd),
			Dir:     cwd,
			Env:     host.Env().Environ(),
		}
		if err := r.Spawn(ctx, spec); err != nil {
			return fmt.Errorf("terminal: %w", err)
		}
		return nil
	}
}

// FuzzyDirs pipes the finder over FUZZY_DIRS into the picker and changes
// directory to the selection.
func FuzzyDirs(r Runner, finder string, finderArgs []string, picker string) Action {
	return func(ctx context.Context, host Host) error {
		raw, ok := host.Env().Get(FuzzyDirsVar)
		dirs := splitDirs(raw)
		if !ok || len(dirs) == 0 {
			return host.WithCookedTerminal(func() error {
				_, err := fmt.Fprintln(host.Stderr(), "FUZZY_DIRS env var not specified")
				return err
			})
		}
		environ := host.Env().Environ()
		producer := process.Spec{
			Command: finder,
			Args:    append(append([]string(nil), finderArgs...), dirs...),
			Dir:     host.Cwd(),
			Env:     environ,
		}
		consumer := process.Spec{Command: picker, Dir: host.Cwd(), Env: environ}
		var selection string
		err := host.WithCookedTerminal(func() error {
			out, code, err := r.Pipeline(ctx, producer, consumer)
			if err != nil {
				return err
			}
			// The picker exits non-zero when cancelled.
			if code == 0 {
				selection = out
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("fuzzy: %w", err)
		}
		if selection == "" {
			return nil
		}
		return host.ChangeDir(ctx, selection)
	}
}

func splitDirs(raw string) []string {
	var dirs []string
	for _, dir := range filepath.SplitList(raw) {
		if dir = strings.TrimSpace(dir); dir != "" {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// Defaults returns the table bound at startup: C-l, C-t and C-f.
func Defaults(cfg appconfig.Config, r Runner) (*Table, error) {
	t := NewTable()
	bindings := []struct {
		chord       string
		description string
		action      Action
	}{
		{"C-l", "clear the screen", ClearScreen(r)},
		{"C-t", "open a terminal in the current directory", SpawnTerminal(r, cfg.Terminal.Command, cfg.Terminal.Args)},
		{"C-f", "fuzzy find a directory under " + FuzzyDirsVar, FuzzyDirs(r, cfg.Fuzzy.Finder, cfg.Fuzzy.FinderArgs, cfg.Fuzzy.Picker)},
	}
	for _, b := range bindings {
		if err := t.Insert(b.chord, b.description, b.action); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Dispatch runs the action bound to chord. Action errors are logged and
// returned for display; they never end the session.
func (t *Table) Dispatch(ctx context.Context, chord schema.Chord, host Host) (bool, error) {
	b, ok := t.Lookup(chord)
	if !ok {
		return false, nil
	}
	log := logx.WithChord(logx.Ctx(ctx), chord)
	log.Debug("keybind dispatch")
	if err := b.Action(ctx, host); err != nil {
		log.Warn("keybind action failed", "err", err)
		return true, err
	}
	return true, nil
}
