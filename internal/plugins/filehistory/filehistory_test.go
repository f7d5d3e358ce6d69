package filehistory

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"pkt.systems/pinosh/internal/env"
	"pkt.systems/pinosh/internal/history"
	"pkt.systems/pinosh/internal/shell"
)

func build(t *testing.T, path string) *shell.Shell {
	t.Helper()
	e := env.New()
	e.Set("PATH", os.Getenv("PATH"))
	sh, err := shell.NewBuilder().
		WithEnv(e).
		WithDir(t.TempDir()).
		WithHistory(history.NewBuffer(100)).
		WithPlugin(New(context.Background(), path, 100)).
		Build(context.Background())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return sh
}

func TestHistoryPersistsAcrossSessions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	first := build(t, path)
	for _, line := range []string{"help", "help", "history"} {
		_ = first.Execute(context.Background(), line)
	}
	second := build(t, path)
	want := []string{"help", "history"}
	if got := second.History().Entries(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestUnopenableHistoryFailsBuild(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	e := env.New()
	e.Set("PATH", os.Getenv("PATH"))
	_, err := shell.NewBuilder().
		WithEnv(e).
		WithDir(dir).
		WithPlugin(New(context.Background(), filepath.Join(blocker, "history"), 10)).
		Build(context.Background())
	if err == nil {
		t.Fatalf("expected build to fail")
	}
}
