package history

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestFileStorePersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	store, err := OpenFileStore(path, 10, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected history file to be created: %v", err)
	}
	for _, entry := range []string{"ls", "echo 'a\nb'", `printf '\\n'`} {
		if err := store.Append(entry); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	reopened, err := OpenFileStore(path, 10, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	want := []string{"ls", "echo 'a\nb'", `printf '\\n'`}
	if got := reopened.Entries(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600, got %v", info.Mode().Perm())
	}
}

func TestFileStoreKeepsNewest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	if err := os.WriteFile(path, []byte("a\nb\nc\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	store, err := OpenFileStore(path, 2, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if got := store.Entries(); !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Fatalf("unexpected entries %v", got)
	}
}

func TestEscapeRoundTrip(t *testing.T) {
	tests := []string{"plain", "a\nb", `back\slash`, `\n literal`, "trail\\"}
	for _, entry := range tests {
		if got := unescape(escape(entry)); got != entry {
			t.Fatalf("round trip %q: got %q", entry, got)
		}
	}
}

func TestOpenFileStoreRequiresPath(t *testing.T) {
	if _, err := OpenFileStore(" ", 10, nil); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestFileStoreMergesConcurrentSessions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	if err := os.WriteFile(path, []byte("old\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	first, err := OpenFileStore(path, 10, nil)
	if err != nil {
		t.Fatalf("open first: %v", err)
	}
	second, err := OpenFileStore(path, 10, nil)
	if err != nil {
		t.Fatalf("open second: %v", err)
	}
	if err := first.Append("from first"); err != nil {
		t.Fatalf("append first: %v", err)
	}
	if err := second.Append("from second"); err != nil {
		t.Fatalf("append second: %v", err)
	}
	if err := first.Append("first again"); err != nil {
		t.Fatalf("append first: %v", err)
	}
	want := []string{"old", "from first", "from second", "first again"}
	reopened, err := OpenFileStore(path, 10, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got := reopened.Entries(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if got := first.Entries(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected merged entries %q, got %q", want, got)
	}
}

func TestFileStoreMergeKeepsNewest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	first, err := OpenFileStore(path, 2, nil)
	if err != nil {
		t.Fatalf("open first: %v", err)
	}
	second, err := OpenFileStore(path, 2, nil)
	if err != nil {
		t.Fatalf("open second: %v", err)
	}
	for _, step := range []struct {
		store *FileStore
		entry string
	}{{first, "a"}, {second, "b"}, {first, "c"}} {
		if err := step.store.Append(step.entry); err != nil {
			t.Fatalf("append %q: %v", step.entry, err)
		}
	}
	reopened, err := OpenFileStore(path, 10, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got := reopened.Entries(); !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Fatalf("unexpected entries %q", got)
	}
}
