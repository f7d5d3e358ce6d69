package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pkt.systems/pinosh/internal/appconfig"
	"pkt.systems/pinosh/internal/env"
)

func TestRootSubcommands(t *testing.T) {
	root := newRootCmd(new(int))
	want := map[string]bool{"version": false, "config": false, "doctor": false, "bindings": false}
	for _, cmd := range root.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Fatalf("expected root command to include %s", name)
		}
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(new(int))
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestConfigInitAndShow(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")
	if _, err := execute(t, "config", "init", "--config", path); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := execute(t, "config", "init", "--config", path); err == nil {
		t.Fatalf("expected second init to refuse overwriting")
	}
	if _, err := execute(t, "config", "init", "--force", "--config", path); err != nil {
		t.Fatalf("config init --force: %v", err)
	}
	out, err := execute(t, "config", "show", "--config", path)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "config_version: 1") || !strings.Contains(out, "theme: outrun") {
		t.Fatalf("unexpected config output %q", out)
	}
}

func TestBindingsCommand(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	out, err := execute(t, "bindings", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("bindings: %v", err)
	}
	for _, chord := range []string{"C-l", "C-t", "C-f"} {
		if !strings.Contains(out, chord) {
			t.Fatalf("expected %s in %q", chord, out)
		}
	}
}

func TestShellRunsScriptFromStdin(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("LOG_MODE", "structured")
	var out, errOut bytes.Buffer
	status := 0
	root := newRootCmd(&status)
	root.SetIn(strings.NewReader("export GREETING=hi\nexit 4\n"))
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs([]string{"--config", filepath.Join(home, "none.yaml")})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if status != 4 {
		t.Fatalf("expected status 4, got %d", status)
	}
	if _, err := os.Stat(filepath.Join(home, ".config", "pinosh", "history")); err != nil {
		t.Fatalf("expected history file: %v", err)
	}
}

func TestDoctorChecks(t *testing.T) {
	cfg, err := appconfig.DefaultConfig()
	if err != nil {
		t.Fatalf("default config: %v", err)
	}
	cfg.ConfigDir = filepath.Join(t.TempDir(), "pinosh")
	cfg.Terminal.Command = "definitely-not-a-terminal"

	e := env.New()
	checks := runChecks(cfg, e)
	if checks[0].name != "PATH" || checks[0].ok {
		t.Fatalf("expected failing PATH check, got %+v", checks[0])
	}

	e.Set("PATH", os.Getenv("PATH"))
	e.Set("FUZZY_DIRS", "/src")
	checks = runChecks(cfg, e)
	byName := map[string]check{}
	for _, c := range checks {
		byName[c.name] = c
	}
	if !byName["PATH"].ok || !byName["config dir"].ok {
		t.Fatalf("expected PATH and config dir ok, got %+v", checks)
	}
	if byName["terminal"].ok {
		t.Fatalf("expected missing terminal, got %+v", byName["terminal"])
	}
	if !byName["FUZZY_DIRS"].ok || byName["OPENAI_KEY"].ok {
		t.Fatalf("unexpected env checks %+v %+v", byName["FUZZY_DIRS"], byName["OPENAI_KEY"])
	}

	var buf bytes.Buffer
	if err := writeChecks(&buf, checks); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.Contains(buf.String(), "missing  terminal") {
		t.Fatalf("unexpected report %q", buf.String())
	}
}
