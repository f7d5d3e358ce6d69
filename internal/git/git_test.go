package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

func initRepo(t *testing.T, branch string) string {
	t.Helper()
	dir := t.TempDir()
	steps := [][]string{
		{"init"},
		{"symbolic-ref", "HEAD", "refs/heads/" + branch},
		{"config", "user.email", "test@example.com"},
		{"config", "user.name", "tester"},
	}
	for _, args := range steps {
		if _, err := Run(context.Background(), dir, args...); err != nil {
			t.Fatalf("git %s: %v", strings.Join(args, " "), err)
		}
	}
	return dir
}

func commitFile(t *testing.T, dir string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("hi\n"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := Run(context.Background(), dir, "add", "-A"); err != nil {
		t.Fatalf("git add: %v", err)
	}
	if _, err := Run(context.Background(), dir, "commit", "-m", "init"); err != nil {
		t.Fatalf("git commit: %v", err)
	}
}

func TestRunOutsideRepoErrors(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	if _, err := Run(context.Background(), dir, "status"); err == nil {
		t.Fatalf("expected error outside repo")
	}
}

func TestCurrentBranch(t *testing.T) {
	requireGit(t)
	dir := initRepo(t, "trunk")
	commitFile(t, dir)
	branch, err := CurrentBranch(context.Background(), dir)
	if err != nil {
		t.Fatalf("current branch: %v", err)
	}
	if branch != "trunk" {
		t.Fatalf("expected trunk, got %q", branch)
	}
}

func TestCurrentBranchUnborn(t *testing.T) {
	requireGit(t)
	dir := initRepo(t, "fresh")
	branch, err := CurrentBranch(context.Background(), dir)
	if err != nil {
		t.Fatalf("current branch: %v", err)
	}
	if branch != "fresh" {
		t.Fatalf("expected fresh, got %q", branch)
	}
}

func TestCurrentBranchDetached(t *testing.T) {
	requireGit(t)
	dir := initRepo(t, "main")
	commitFile(t, dir)
	if _, err := Run(context.Background(), dir, "checkout", "--detach"); err != nil {
		t.Fatalf("git checkout: %v", err)
	}
	want, err := Run(context.Background(), dir, "rev-parse", "--short", "HEAD")
	if err != nil {
		t.Fatalf("rev-parse: %v", err)
	}
	branch, err := CurrentBranch(context.Background(), dir)
	if err != nil {
		t.Fatalf("current branch: %v", err)
	}
	if branch != strings.TrimSpace(want) {
		t.Fatalf("expected %q, got %q", strings.TrimSpace(want), branch)
	}
}
