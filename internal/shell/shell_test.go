package shell

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"

	"pkt.systems/pinosh/internal/alias"
	"pkt.systems/pinosh/internal/completion"
	"pkt.systems/pinosh/internal/env"
	"pkt.systems/pinosh/internal/lineedit"
	"pkt.systems/pinosh/schema"
)

type testShell struct {
	*Shell
	out *bytes.Buffer
	err *bytes.Buffer
}

func newTestBuilder(t *testing.T, input string) (*Builder, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	e := env.New()
	e.LoadFrom([]string{"PATH=" + os.Getenv("PATH"), "HOME=" + t.TempDir()})
	var out, errOut bytes.Buffer
	b := NewBuilder().
		WithEnv(e).
		WithDir(t.TempDir()).
		WithIO(strings.NewReader(input), &out, &errOut)
	return b, &out, &errOut
}

func newTestShell(t *testing.T, input string) testShell {
	t.Helper()
	b, out, errOut := newTestBuilder(t, input)
	sh, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return testShell{Shell: sh, out: out, err: errOut}
}

func TestBuildRequiresPath(t *testing.T) {
	_, err := NewBuilder().WithEnv(env.New()).WithDir(t.TempDir()).Build(context.Background())
	if !errors.Is(err, schema.ErrMissingPath) {
		t.Fatalf("expected ErrMissingPath, got %v", err)
	}
}

func TestBuildRejectsDuplicateBuiltin(t *testing.T) {
	b, _, _ := newTestBuilder(t, "")
	err := b.RegisterBuiltin(Builtin{Name: "cd", Run: builtinCd})
	if !errors.Is(err, schema.ErrDuplicateBuiltin) {
		t.Fatalf("expected ErrDuplicateBuiltin, got %v", err)
	}
	if _, err := b.Build(context.Background()); !errors.Is(err, schema.ErrDuplicateBuiltin) {
		t.Fatalf("expected build to fail, got %v", err)
	}
}

func TestUnknownCommand(t *testing.T) {
	sh := newTestShell(t, "")
	if err := sh.Execute(context.Background(), "pinosh-no-such-command --flag"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if sh.LastStatus() != 127 {
		t.Fatalf("expected 127, got %d", sh.LastStatus())
	}
	if got := sh.err.String(); got != "pinosh: command not found: pinosh-no-such-command\n" {
		t.Fatalf("unexpected stderr %q", got)
	}
}

func TestCdBuiltin(t *testing.T) {
	sh := newTestShell(t, "")
	start := sh.Cwd()
	if err := os.Mkdir(filepath.Join(start, "sub"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	ctx := context.Background()
	_ = sh.Execute(ctx, "cd sub")
	if sh.Cwd() != filepath.Join(start, "sub") {
		t.Fatalf("expected cwd sub, got %s", sh.Cwd())
	}
	if pwd, _ := sh.Env().Get("PWD"); pwd != sh.Cwd() {
		t.Fatalf("expected PWD to follow, got %s", pwd)
	}
	_ = sh.Execute(ctx, "cd -")
	if sh.Cwd() != start {
		t.Fatalf("expected cd - to return to %s, got %s", start, sh.Cwd())
	}
	_ = sh.Execute(ctx, "cd")
	if sh.Cwd() != sh.Home() {
		t.Fatalf("expected cd to go home, got %s", sh.Cwd())
	}
	_ = sh.Execute(ctx, "cd /definitely/not/here")
	if sh.LastStatus() != 1 || !strings.Contains(sh.err.String(), "cd: /definitely/not/here") {
		t.Fatalf("expected cd failure, got %d %q", sh.LastStatus(), sh.err.String())
	}
}

func TestChangeDirRejectsFiles(t *testing.T) {
	sh := newTestShell(t, "")
	file := filepath.Join(sh.Cwd(), "file")
	if err := os.WriteFile(file, nil, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := sh.ChangeDir(context.Background(), "file"); !errors.Is(err, schema.ErrNotDirectory) {
		t.Fatalf("expected ErrNotDirectory, got %v", err)
	}
}

func TestAliasExpandsToBuiltin(t *testing.T) {
	b, _, _ := newTestBuilder(t, "")
	table, err := alias.FromPairs([2]string{"up", "cd .."})
	if err != nil {
		t.Fatalf("alias: %v", err)
	}
	sh, err := b.WithAliases(table).Build(context.Background())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	start := sh.Cwd()
	_ = sh.Execute(context.Background(), "up")
	if sh.Cwd() != filepath.Dir(start) {
		t.Fatalf("expected alias to run cd .., got %s", sh.Cwd())
	}
}

func TestHooksRunInOrderAndSurviveErrors(t *testing.T) {
	b, _, _ := newTestBuilder(t, "")
	var calls []string
	hooks := b.Hooks()
	hooks.OnBeforeCommand(func(_ context.Context, _ *Shell, line string) error {
		calls = append(calls, "before1:"+line)
		return errors.New("boom")
	})
	hooks.OnBeforeCommand(func(_ context.Context, _ *Shell, line string) error {
		calls = append(calls, "before2:"+line)
		return nil
	})
	hooks.OnHistoryAppend(func(_ context.Context, _ *Shell, entry string) error {
		calls = append(calls, "history:"+entry)
		return nil
	})
	hooks.OnAfterCommand(func(_ context.Context, _ *Shell, line string, exit int, elapsed time.Duration) error {
		if elapsed < 0 {
			t.Fatalf("negative elapsed time")
		}
		calls = append(calls, "after:"+line+":"+strconv.Itoa(exit))
		return nil
	})
	hooks.OnChangeDir(func(_ context.Context, _ *Shell, _, newDir string) error {
		calls = append(calls, "cd:"+filepath.Base(newDir))
		return nil
	})
	sh, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := os.Mkdir(filepath.Join(sh.Cwd(), "d"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	_ = sh.Execute(context.Background(), "cd d")
	_ = sh.Execute(context.Background(), "cd d")
	want := []string{
		"history:cd d", "before1:cd d", "before2:cd d", "cd:d", "after:cd d:0",
		"before1:cd d", "before2:cd d", "after:cd d:1",
	}
	if !reflect.DeepEqual(calls, want) {
		t.Fatalf("unexpected hook calls:\n got %v\nwant %v", calls, want)
	}
}

func TestLineHandlerTakesNonBuiltins(t *testing.T) {
	b, _, _ := newTestBuilder(t, "")
	var seen []string
	if err := b.SetLineHandler(func(_ context.Context, _ *Shell, line string, words []string) (int, bool) {
		seen = append(seen, line)
		return 7, true
	}); err != nil {
		t.Fatalf("set line handler: %v", err)
	}
	if err := b.SetLineHandler(func(context.Context, *Shell, string, []string) (int, bool) { return 0, false }); err == nil {
		t.Fatalf("expected second handler to be rejected")
	}
	sh, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	_ = sh.Execute(context.Background(), "print('hi')")
	_ = sh.Execute(context.Background(), "help")
	if !reflect.DeepEqual(seen, []string{"print('hi')"}) {
		t.Fatalf("unexpected handled lines %v", seen)
	}
	if sh.LastStatus() != 0 {
		t.Fatalf("expected help to succeed, got %d", sh.LastStatus())
	}
}

func TestStatusExpansion(t *testing.T) {
	sh := newTestShell(t, "")
	ctx := context.Background()
	_ = sh.Execute(ctx, "export 1BAD=x")
	if sh.LastStatus() != 1 {
		t.Fatalf("expected export failure, got %d", sh.LastStatus())
	}
	_ = sh.Execute(ctx, "export LAST=$? GREETING='hello world'")
	if got, _ := sh.Env().Get("LAST"); got != "1" {
		t.Fatalf("expected LAST=1, got %q", got)
	}
	if got, _ := sh.Env().Get("GREETING"); got != "hello world" {
		t.Fatalf("expected quoted value, got %q", got)
	}
	_ = sh.Execute(ctx, "unset GREETING")
	if _, ok := sh.Env().Get("GREETING"); ok {
		t.Fatalf("expected GREETING to be unset")
	}
}

func TestHistoryBuiltin(t *testing.T) {
	sh := newTestShell(t, "")
	ctx := context.Background()
	_ = sh.Execute(ctx, "help")
	_ = sh.Execute(ctx, "  ")
	_ = sh.Execute(ctx, "help")
	sh.out.Reset()
	_ = sh.Execute(ctx, "history")
	if got := sh.out.String(); got != "    1  help\n    2  history\n" {
		t.Fatalf("unexpected history output %q", got)
	}
}

func TestRunScriptStopsAtExit(t *testing.T) {
	if _, err := exec.LookPath("echo"); err != nil {
		t.Skip("echo not available")
	}
	sh := newTestShell(t, "echo hi\nexit 3\necho unreachable\n")
	started := false
	sh.hooks.OnStartup(func(context.Context, *Shell) error {
		started = true
		return nil
	})
	if err := sh.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !started {
		t.Fatalf("expected startup hooks to run")
	}
	if sh.out.String() != "hi\n" {
		t.Fatalf("unexpected output %q", sh.out.String())
	}
	if sh.LastStatus() != 3 {
		t.Fatalf("expected exit status 3, got %d", sh.LastStatus())
	}
}

func TestCompleteSingleAndMultiple(t *testing.T) {
	b, _, _ := newTestBuilder(t, "")
	c := completion.New()
	c.Register(completion.Rule{Pred: completion.CmdnamePred, Action: completion.StaticAction("python3", "python3.12", "perl")})
	sh, err := b.WithCompleter(c).Build(context.Background())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	var ed lineedit.Editor
	ed.InsertString("pe")
	if below := sh.complete(&ed); below != nil || ed.String() != "perl " {
		t.Fatalf("expected single completion, got %q (%v)", ed.String(), below)
	}
	ed.Clear()
	ed.InsertString("py")
	below := sh.complete(&ed)
	if ed.String() != "python3" {
		t.Fatalf("expected common prefix, got %q", ed.String())
	}
	if len(below) != 1 || !strings.Contains(below[0], "python3.12") {
		t.Fatalf("expected candidates listed, got %v", below)
	}
}

func TestHandleKeyModes(t *testing.T) {
	sh := newTestShell(t, "")
	st := &lineState{}
	ctx := context.Background()
	for _, r := range "ls" {
		if _, done, err := sh.handleKey(ctx, st, lineedit.Key{Kind: lineedit.KeyRune, Rune: r}); done || err != nil {
			t.Fatalf("unexpected result done=%v err=%v", done, err)
		}
	}
	_, _, _ = sh.handleKey(ctx, st, lineedit.Key{Kind: lineedit.KeyEsc})
	if sh.Mode() != schema.LineModeNormal {
		t.Fatalf("expected normal mode, got %s", sh.Mode())
	}
	_, _, _ = sh.handleKey(ctx, st, lineedit.Key{Kind: lineedit.KeyRune, Rune: 'x'})
	if st.ed.String() != "l" {
		t.Fatalf("expected x to delete, got %q", st.ed.String())
	}
	_, _, _ = sh.handleKey(ctx, st, lineedit.Key{Kind: lineedit.KeyRune, Rune: 'A'})
	if sh.Mode() != schema.LineModeInsert {
		t.Fatalf("expected insert mode, got %s", sh.Mode())
	}
	line, done, err := sh.handleKey(ctx, st, lineedit.Key{Kind: lineedit.KeyEnter})
	if !done || err != nil || line != "l" {
		t.Fatalf("expected submit of %q, got %q done=%v err=%v", "l", line, done, err)
	}
}

func TestHandleKeyCtrlDOnEmptyLineExits(t *testing.T) {
	sh := newTestShell(t, "")
	_, _, err := sh.handleKey(context.Background(), &lineState{}, lineedit.Key{Kind: lineedit.KeyCtrl, Rune: 'd'})
	if err == nil {
		t.Fatalf("expected EOF")
	}
}

func TestHistoryNavigationKeys(t *testing.T) {
	sh := newTestShell(t, "")
	sh.History().Load([]string{"one", "two"})
	st := &lineState{}
	st.ed.InsertString("draft")
	ctx := context.Background()
	_, _, _ = sh.handleKey(ctx, st, lineedit.Key{Kind: lineedit.KeyUp})
	if st.ed.String() != "two" {
		t.Fatalf("expected two, got %q", st.ed.String())
	}
	_, _, _ = sh.handleKey(ctx, st, lineedit.Key{Kind: lineedit.KeyDown})
	if st.ed.String() != "draft" {
		t.Fatalf("expected draft, got %q", st.ed.String())
	}
}

func TestLayoutCandidates(t *testing.T) {
	rows := layoutCandidates([]string{"aa", "bb", "cc"}, 10)
	if !reflect.DeepEqual(rows, []string{"aa  bb", "cc"}) {
		t.Fatalf("unexpected layout %q", rows)
	}
}

func TestExpansionRespectsQuoting(t *testing.T) {
	b, _, _ := newTestBuilder(t, "")
	var got []string
	if err := b.RegisterBuiltin(Builtin{Name: "args", Run: func(_ context.Context, _ *Shell, args []string) int {
		got = append([]string(nil), args...)
		return 0
	}}); err != nil {
		t.Fatalf("register: %v", err)
	}
	sh, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	home := sh.Home()
	sh.Env().Set("NAME", "pinosh")
	sh.Env().Set("SPACED", `a "b" c`)

	cases := []struct {
		line string
		want []string
	}{
		{`args 'costs $5'`, []string{"costs $5"}},
		{`args '{print $1}'`, []string{"{print $1}"}},
		{`args '$NAME'`, []string{"$NAME"}},
		{`args "$NAME"`, []string{"pinosh"}},
		{`args "${NAME}-x"`, []string{"pinosh-x"}},
		{`args $NAME`, []string{"pinosh"}},
		{`args \$NAME`, []string{"$NAME"}},
		{`args $`, []string{"$"}},
		{`args a$ $.`, []string{"a$", "$."}},
		{`args $UNSET_VAR x`, []string{"x"}},
		{`args $?`, []string{"0"}},
		{`args $SPACED`, []string{`a "b" c`}},
		{`args "<$SPACED>"`, []string{`<a "b" c>`}},
		{`args ~ ~/src`, []string{home, home + "/src"}},
		{`args '~' "~" a~`, []string{"~", "~", "a~"}},
		{`args ~user`, []string{"~user"}},
	}
	for _, tc := range cases {
		got = nil
		if err := sh.Execute(context.Background(), tc.line); err != nil {
			t.Fatalf("%s: %v", tc.line, err)
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("%s: got %q want %q", tc.line, got, tc.want)
		}
	}
}
