package completion

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sys/unix"
)

// CmdnameAction lists the executables found on the PATH list. The scan
// runs once per action.
func CmdnameAction(pathList string) Action {
	var (
		once  sync.Once
		names []string
	)
	return func(Context) []string {
		once.Do(func() {
			names = scanPath(pathList)
		})
		return names
	}
}

func scanPath(pathList string) []string {
	seen := map[string]bool{}
	var names []string
	for _, dir := range filepath.SplitList(pathList) {
		if dir == "" {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			name := entry.Name()
			if seen[name] || entry.IsDir() {
				continue
			}
			full := filepath.Join(dir, name)
			info, err := os.Stat(full)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			if unix.Access(full, unix.X_OK) != nil {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// BuiltinCmdnameAction lists builtin command names. names is called on
// every completion so builtins registered later still show up.
func BuiltinCmdnameAction(names func() []string) Action {
	return func(Context) []string {
		return names()
	}
}

// StaticAction always returns the same candidates.
func StaticAction(candidates ...string) Action {
	return func(Context) []string {
		return candidates
	}
}

// FilenameAction lists the entries of the directory named by the word
// under the cursor. Directories get a trailing slash. Dot files are only
// listed once the word starts the name with a dot.
func FilenameAction() Action {
	return func(ctx Context) []string {
		word := ctx.Word
		dirPart := ""
		if i := strings.LastIndex(word, "/"); i >= 0 {
			dirPart = word[:i+1]
		}
		base := word[len(dirPart):]
		dir := resolveDir(ctx, dirPart)
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil
		}
		out := make([]string, 0, len(entries))
		for _, entry := range entries {
			name := entry.Name()
			if strings.HasPrefix(name, ".") && !strings.HasPrefix(base, ".") {
				continue
			}
			candidate := dirPart + name
			if isDir(filepath.Join(dir, name), entry) {
				candidate += "/"
			}
			out = append(out, candidate)
		}
		return out
	}
}

func resolveDir(ctx Context, dirPart string) string {
	switch {
	case dirPart == "":
		return ctx.Cwd
	case strings.HasPrefix(dirPart, "~/") && ctx.Home != "":
		return filepath.Join(ctx.Home, dirPart[2:])
	case filepath.IsAbs(dirPart):
		return dirPart
	default:
		return filepath.Join(ctx.Cwd, dirPart)
	}
}

func isDir(path string, entry os.DirEntry) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
