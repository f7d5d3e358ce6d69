package history

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
	"pkt.systems/pslog"
)

// FileStore persists history entries to a newline separated file.
// Entries are escaped so one entry always occupies one line.
type FileStore struct {
	path    string
	max     int
	entries []string
	log     pslog.Logger
}

// OpenFileStore reads path, creating it when absent.
func OpenFileStore(path string, max int, logger pslog.Logger) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("history file path is required")
	}
	if max <= 0 {
		max = DefaultMax
	}
	if logger != nil {
		logger = logger.With("history_file", path)
	}
	s := &FileStore{path: path, max: max, log: logger}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, fmt.Errorf("create history file: %w", err)
		}
		_ = f.Close()
		if s.log != nil {
			s.log.Debug("history load miss")
		}
		return s, nil
	case err != nil:
		if s.log != nil {
			s.log.Warn("history load failed", "err", err)
		}
		return nil, fmt.Errorf("read history file: %w", err)
	}
	entries, err := parseEntries(data)
	if err != nil {
		return nil, err
	}
	s.entries = entries
	if len(s.entries) > s.max {
		s.entries = s.entries[len(s.entries)-s.max:]
	}
	if s.log != nil {
		s.log.Debug("history load ok", "entries", len(s.entries))
	}
	return s, nil
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

// Entries returns the stored entries, oldest first.
func (s *FileStore) Entries() []string {
	return append([]string(nil), s.entries...)
}

// Append adds entry to the file. The file is re-read under an exclusive
// lock first, so entries appended by other sessions since open are kept.
// Entries then reflects the merged file.
func (s *FileStore) Append(entry string) error {
	unlock, err := s.lock()
	if err != nil {
		s.warn(err)
		return err
	}
	defer unlock()
	data, err := os.ReadFile(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		s.warn(err)
		return err
	}
	entries, err := parseEntries(data)
	if err != nil {
		s.warn(err)
		return err
	}
	entries = append(entries, entry)
	if len(entries) > s.max {
		entries = entries[len(entries)-s.max:]
	}
	s.entries = entries
	return s.save()
}

// lock takes an exclusive flock on a sidecar file. The history file itself
// is replaced by rename and cannot carry the lock.
func (s *FileStore) lock() (func(), error) {
	f, err := os.OpenFile(s.path+".lock", os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open history lock: %w", err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("lock history: %w", err)
	}
	return func() {
		_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
		_ = f.Close()
	}, nil
}

func parseEntries(data []byte) ([]string, error) {
	var entries []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		entries = append(entries, unescape(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("parse history file: %w", err)
	}
	return entries, nil
}

func (s *FileStore) save() error {
	var buf bytes.Buffer
	for _, entry := range s.entries {
		buf.WriteString(escape(entry))
		buf.WriteByte('\n')
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), "history-*.tmp")
	if err != nil {
		s.warn(err)
		return err
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		s.warn(err)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		s.warn(err)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		s.warn(err)
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		_ = os.Remove(tmp.Name())
		s.warn(err)
		return err
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		s.warn(err)
		return err
	}
	if s.log != nil {
		s.log.Trace("history save ok", "entries", len(s.entries))
	}
	return nil
}

func (s *FileStore) warn(err error) {
	if s.log != nil {
		s.log.Warn("history save failed", "err", err)
	}
}

func escape(entry string) string {
	if !strings.ContainsAny(entry, "\\\n") {
		return entry
	}
	var b strings.Builder
	for _, r := range entry {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func unescape(line string) string {
	if !strings.Contains(line, `\`) {
		return line
	}
	var b strings.Builder
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c != '\\' || i+1 >= len(line) {
			b.WriteByte(c)
			continue
		}
		switch line[i+1] {
		case 'n':
			b.WriteByte('\n')
			i++
		case '\\':
			b.WriteByte('\\')
			i++
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
