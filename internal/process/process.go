package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"
	"pkt.systems/pslog"
)

// ErrNotFound reports a command that is not on PATH.
var ErrNotFound = errors.New("command not found")

// Spec describes a child process. A nil Env inherits the shell process
// environment. Nil stdio fields inherit the shell's stdio for Run.
type Spec struct {
	Command string
	Args    []string
	Dir     string
	Env     []string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func (s Spec) String() string {
	if len(s.Args) == 0 {
		return s.Command
	}
	return s.Command + " " + strings.Join(s.Args, " ")
}

// Spawn starts the child in its own session and returns without waiting.
// A goroutine reaps it. Only start failures are reported.
func Spawn(ctx context.Context, spec Spec) error {
	log := pslog.Ctx(ctx).With("command", spec.Command)
	cmd, err := command(context.WithoutCancel(ctx), spec)
	if err != nil {
		return err
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		log.Warn("process spawn failed", "err", err)
		return fmt.Errorf("spawn %s: %w", spec.Command, err)
	}
	log.Debug("process spawned", "pid", cmd.Process.Pid)
	go func() {
		err := cmd.Wait()
		log.Debug("process reaped", "pid", cmd.Process.Pid, "exit", exitCode(err))
	}()
	return nil
}

// Run starts the child, waits for it and returns its exit status. A
// non-zero status is not an error; the error is kept for start failures.
func Run(ctx context.Context, spec Spec) (int, error) {
	log := pslog.Ctx(ctx).With("command", spec.Command)
	cmd, err := command(ctx, spec)
	if err != nil {
		return 127, err
	}
	if cmd.Stdin == nil {
		cmd.Stdin = os.Stdin
	}
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	if err := cmd.Start(); err != nil {
		log.Debug("process start failed", "err", err)
		return 126, fmt.Errorf("%s: %w", spec.Command, err)
	}
	code := exitCode(cmd.Wait())
	log.Trace("process exited", "exit", code)
	return code, nil
}

// Pipeline connects producer stdout to consumer stdin and returns the
// consumer's trimmed stdout with its exit status. Both stderr streams and
// the consumer's controlling terminal stay with the shell so an interactive
// picker can draw.
func Pipeline(ctx context.Context, producer, consumer Spec) (string, int, error) {
	log := pslog.Ctx(ctx).With("producer", producer.Command, "consumer", consumer.Command)
	prod, err := command(ctx, producer)
	if err != nil {
		return "", 127, err
	}
	cons, err := command(ctx, consumer)
	if err != nil {
		return "", 127, err
	}
	pipe, err := prod.StdoutPipe()
	if err != nil {
		return "", 1, fmt.Errorf("pipe %s: %w", producer.Command, err)
	}
	if prod.Stderr == nil {
		prod.Stderr = os.Stderr
	}
	var out bytes.Buffer
	cons.Stdin = pipe
	cons.Stdout = &out
	if cons.Stderr == nil {
		cons.Stderr = os.Stderr
	}
	if err := prod.Start(); err != nil {
		log.Warn("pipeline start failed", "err", err)
		return "", 126, fmt.Errorf("%s: %w", producer.Command, err)
	}
	if err := cons.Start(); err != nil {
		_ = prod.Process.Kill()
		_ = prod.Wait()
		log.Warn("pipeline start failed", "err", err)
		return "", 126, fmt.Errorf("%s: %w", consumer.Command, err)
	}
	code := exitCode(cons.Wait())
	// The picker may exit before the producer has written everything.
	_ = prod.Process.Kill()
	_ = prod.Wait()
	log.Debug("pipeline done", "exit", code, "output_len", out.Len())
	return strings.TrimSpace(out.String()), code, nil
}

// LookPath resolves name against the PATH list in pathList. Names with a
// slash are returned unchanged.
func LookPath(name, pathList string) (string, error) {
	if name == "" {
		return "", ErrNotFound
	}
	if strings.Contains(name, "/") {
		return name, nil
	}
	for _, dir := range filepath.SplitList(pathList) {
		if dir == "" {
			dir = "."
		}
		candidate := filepath.Join(dir, name)
		if IsExecutable(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%s: %w", name, ErrNotFound)
}

// IsExecutable reports whether path is a regular file the user may execute.
func IsExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return unix.Access(path, unix.X_OK) == nil
}

func command(ctx context.Context, spec Spec) (*exec.Cmd, error) {
	env := spec.Env
	if env == nil {
		env = os.Environ()
	}
	path, err := LookPath(spec.Command, envValue(env, "PATH"))
	if err != nil {
		return nil, err
	}
	cmd := exec.CommandContext(ctx, path, spec.Args...)
	cmd.Args[0] = spec.Command
	cmd.Dir = spec.Dir
	cmd.Env = env
	cmd.Stdin = spec.Stdin
	cmd.Stdout = spec.Stdout
	cmd.Stderr = spec.Stderr
	return cmd, nil
}

func envValue(env []string, key string) string {
	prefix := key + "="
	for i := len(env) - 1; i >= 0; i-- {
		if strings.HasPrefix(env[i], prefix) {
			return env[i][len(prefix):]
		}
	}
	return ""
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return 1
	}
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return 128 + int(status.Signal())
	}
	return exitErr.ExitCode()
}
