package shell

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/google/shlex"

	"pkt.systems/pinosh/internal/logx"
	"pkt.systems/pinosh/internal/process"
	"pkt.systems/pinosh/schema"
)

// Execute runs one submitted line: history, hooks, alias expansion and
// dispatch. It returns schema.ErrExit when the line asked the shell to
// end.
func (s *Shell) Execute(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	log := logx.WithCommand(logx.Ctx(ctx), line)
	if s.history.Append(line) {
		s.hooks.runHistoryAppend(ctx, s, line)
	}
	s.hooks.runBefore(ctx, s, line)
	start := time.Now()
	status, err := s.dispatch(ctx, line)
	elapsed := time.Since(start)
	s.lastStatus = status
	log.Debug("shell command done", "exit", status, "elapsed", elapsed)
	s.hooks.runAfter(ctx, s, line, status, elapsed)
	return err
}

func (s *Shell) dispatch(ctx context.Context, line string) (int, error) {
	expanded := s.aliases.Expand(line)
	words, err := shlex.Split(s.expandLine(expanded))
	if err != nil {
		s.Errorf("%v", err)
		return int(schema.StatusFailure), nil
	}
	if len(words) == 0 {
		return int(schema.StatusOK), nil
	}
	if builtin, ok := s.builtins[words[0]]; ok {
		status := builtin.Run(ctx, s, words[1:])
		if words[0] == "exit" {
			return status, schema.ErrExit
		}
		return status, nil
	}
	if s.lineHandler != nil {
		if status, handled := s.lineHandler(ctx, s, expanded, words); handled {
			return status, nil
		}
	}
	return s.Exec(ctx, words), nil
}

// Exec runs words as an external command with the shell's environment and
// working directory and the inherited stdio.
func (s *Shell) Exec(ctx context.Context, words []string) int {
	if len(words) == 0 {
		return int(schema.StatusOK)
	}
	return s.RunProcess(ctx, process.Spec{Command: words[0], Args: words[1:]})
}

// RunProcess runs spec in the foreground. Dir, Env and nil stdio default
// to the shell's.
func (s *Shell) RunProcess(ctx context.Context, spec process.Spec) int {
	if spec.Dir == "" {
		spec.Dir = s.cwd
	}
	if spec.Env == nil {
		spec.Env = s.env.Environ()
	}
	if spec.Stdin == nil {
		// Only a real file is shared; a reader would be drained by the child.
		if f, ok := s.stdin.(*os.File); ok {
			spec.Stdin = f
		} else {
			spec.Stdin = strings.NewReader("")
		}
	}
	if spec.Stdout == nil {
		spec.Stdout = s.stdout
	}
	if spec.Stderr == nil {
		spec.Stderr = s.stderr
	}
	var status int
	err := s.WithCookedTerminal(func() error {
		var err error
		status, err = process.Run(ctx, spec)
		return err
	})
	if err != nil {
		if errors.Is(err, process.ErrNotFound) {
			s.Errorf("command not found: %s", spec.Command)
			return int(schema.StatusNotFound)
		}
		logx.WithCommand(logx.Ctx(ctx), spec.String()).Debug("shell exec failed", "err", err)
		s.Errorf("%v", err)
	}
	return status
}
