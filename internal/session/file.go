package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"
)

// FileName is the name of the session file inside the home directory.
const FileName = "session.json"

type fileSession struct {
	Username string    `json:"username"`
	SavedAt  time.Time `json:"saved_at"`
}

// FileStore persists the username as a small JSON file. It is used by the
// terminal client.
type FileStore struct {
	fs   afero.Fs
	path string
	mu   sync.Mutex
}

// NewFileStore creates a FileStore keeping its file under dir.
func NewFileStore(fs afero.Fs, dir string) *FileStore {
	return &FileStore{fs: fs, path: filepath.Join(dir, FileName)}
}

// Path returns the location of the session file.
func (s *FileStore) Path() string {
	return s.path
}

// Load implements Store. A missing or unreadable file means no session.
func (s *FileStore) Load() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("Failed to read session file", "path", s.path, "error", err)
		}
		return "", false
	}

	var fsess fileSession
	if err := json.Unmarshal(data, &fsess); err != nil {
		slog.Warn("Ignoring malformed session file", "path", s.path, "error", err)
		return "", false
	}
	if fsess.Username == "" {
		return "", false
	}
	return fsess.Username, true
}

// Save implements Store. The file is replaced atomically.
func (s *FileStore) Save(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	data, err := json.Marshal(fileSession{Username: username, SavedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("replace session: %w", err)
	}
	return nil
}

// Clear implements Store.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
