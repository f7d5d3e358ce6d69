// Package configdir provisions the shell configuration directory.
package configdir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pkt.systems/pinosh/schema"
)

// HistoryFile is the default history file name inside the config directory.
const HistoryFile = "history"

// Ensure creates dir when absent. An existing directory is left untouched so
// repeated startups succeed; an existing non-directory is an error.
func Ensure(dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", errors.New("config directory is required")
	}
	dir = filepath.Clean(dir)
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return "", fmt.Errorf("config directory %q: %w", dir, schema.ErrNotDirectory)
		}
		return dir, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("config directory %q: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("config directory %q: %w", dir, err)
	}
	return dir, nil
}

// HistoryPath returns the history file inside dir.
func HistoryPath(dir string) string {
	return filepath.Join(dir, HistoryFile)
}
