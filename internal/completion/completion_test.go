package completion

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestCompleteMergesWithoutDuplicates(t *testing.T) {
	c := New()
	c.Register(Rule{Pred: CmdnamePred, Action: StaticAction("git", "grep")})
	c.Register(Rule{Pred: CmdnamePred, Action: StaticAction("go", "git")})
	c.Register(Rule{Pred: ArgPred, Action: StaticAction("gofmt")})
	got := c.Complete(Context{Word: "g", FirstWord: true})
	want := []string{"git", "go", "grep"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestCompleteSkipsRulesWhosePredicateFails(t *testing.T) {
	c := New()
	c.Register(Rule{Pred: CmdnamePred, Action: StaticAction("ls")})
	c.Register(Rule{Pred: ArgPred, Action: StaticAction("lib/")})
	got := c.Complete(Context{Word: "l", FirstWord: false})
	if !reflect.DeepEqual(got, []string{"lib/"}) {
		t.Fatalf("unexpected candidates %v", got)
	}
}

func TestRankPrefersPrefixMatches(t *testing.T) {
	got := Rank("ma", []string{"xmake", "man", "make"})
	if !reflect.DeepEqual(got, []string{"make", "man"}) {
		t.Fatalf("unexpected ranking %v", got)
	}
}

func TestRankFallsBackToFuzzy(t *testing.T) {
	got := Rank("gco", []string{"git-checkout", "ls", "gcc"})
	if len(got) == 0 || got[0] != "git-checkout" {
		t.Fatalf("expected fuzzy match, got %v", got)
	}
	for _, candidate := range got {
		if candidate == "ls" {
			t.Fatalf("did not expect unrelated candidate in %v", got)
		}
	}
}

func TestCommonPrefix(t *testing.T) {
	tests := []struct {
		in   []string
		want string
	}{
		{nil, ""},
		{[]string{"only"}, "only"},
		{[]string{"python3", "python3.12", "pythonw"}, "python"},
		{[]string{"åbc", "åbd"}, "åb"},
		{[]string{"a", "b"}, ""},
		{[]string{"é1", "è2"}, ""},
		{[]string{"x\xfe", "x\xff"}, "x"},
		{[]string{"\xfeab", "\xfeac"}, "\xfea"},
	}
	for _, tt := range tests {
		if got := CommonPrefix(tt.in); got != tt.want {
			t.Fatalf("common prefix %v: expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestFilenameActionInvalidUTF8Names(t *testing.T) {
	cwd := t.TempDir()
	mustWrite(t, filepath.Join(cwd, "x\xfe"), 0o644)
	mustWrite(t, filepath.Join(cwd, "x\xff"), 0o644)

	c := New()
	c.Register(Rule{Pred: ArgPred, Action: FilenameAction()})
	got := c.Complete(Context{Word: "x", Cwd: cwd})
	if len(got) != 2 {
		t.Fatalf("expected both names, got %q", got)
	}
	if prefix := CommonPrefix(got); prefix != "x" {
		t.Fatalf("expected common prefix x, got %q", prefix)
	}
}

func TestCmdnameActionChecksExecutableBit(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "runme"), 0o755)
	mustWrite(t, filepath.Join(dir, "readme"), 0o644)
	if err := os.Mkdir(filepath.Join(dir, "subdir"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	other := t.TempDir()
	mustWrite(t, filepath.Join(other, "runme"), 0o755)
	mustWrite(t, filepath.Join(other, "also"), 0o755)

	got := CmdnameAction(dir + string(os.PathListSeparator) + other)(Context{})
	if !reflect.DeepEqual(got, []string{"also", "runme"}) {
		t.Fatalf("unexpected executables %v", got)
	}
}

func TestFilenameAction(t *testing.T) {
	cwd := t.TempDir()
	if err := os.MkdirAll(filepath.Join(cwd, "src", "cmd"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	mustWrite(t, filepath.Join(cwd, "src", "main.go"), 0o644)
	mustWrite(t, filepath.Join(cwd, "src", ".hidden"), 0o644)

	c := New()
	c.Register(Rule{Pred: ArgPred, Action: FilenameAction()})

	got := c.Complete(Context{Word: "src/", Cwd: cwd})
	if !reflect.DeepEqual(got, []string{"src/cmd/", "src/main.go"}) {
		t.Fatalf("unexpected candidates %v", got)
	}
	got = c.Complete(Context{Word: "src/.h", Cwd: cwd})
	if !reflect.DeepEqual(got, []string{"src/.hidden"}) {
		t.Fatalf("expected dot file once requested, got %v", got)
	}
	got = c.Complete(Context{Word: "~/src/m", Cwd: "/", Home: cwd})
	if !reflect.DeepEqual(got, []string{"~/src/main.go"}) {
		t.Fatalf("expected home relative candidate, got %v", got)
	}
}

func TestBuiltinCmdnameActionIsLive(t *testing.T) {
	names := []string{"cd"}
	action := BuiltinCmdnameAction(func() []string { return names })
	names = append(names, "mux")
	if got := action(Context{}); !reflect.DeepEqual(got, []string{"cd", "mux"}) {
		t.Fatalf("unexpected builtins %v", got)
	}
}

func mustWrite(t *testing.T, path string, mode os.FileMode) {
	t.Helper()
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), mode); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	if err := os.Chmod(path, mode); err != nil {
		t.Fatalf("chmod %s: %v", path, err)
	}
}
