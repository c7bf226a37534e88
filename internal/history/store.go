// Package history provides a persistent JSON store for past scan runs,
// letting the CLI and the API server look up what a given run did and
// where its reports landed.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ShadowStrikeHQ/vao-vulnexposedsecrets/internal/types"
)

// maxRecords caps the store at the most recent runs.
const maxRecords = 100

// Store persists run records to a JSON file on disk.
type Store struct {
	mu      sync.RWMutex
	Records []types.RunRecord `json:"records"`
	path    string
}

// New creates a new Store backed by the given file path.
func New(path string) *Store {
	return &Store{path: path}
}

// DefaultPath returns the default history file path (~/.vao/history.json).
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".vao/history.json"
	}
	return filepath.Join(home, ".vao", "history.json")
}

// Load reads the history file from disk. A missing file means an empty
// store, not an error. A corrupt file also leaves the store empty; the
// returned error is for logging, never fatal to a scan. Symlinks are
// rejected.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := os.Lstat(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("history file is a symlink (rejected for security): %s", s.path)
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := json.Unmarshal(data, s); err != nil {
		s.Records = nil
		return fmt.Errorf("history file is corrupt, starting empty: %w", err)
	}
	return nil
}

// Save writes the current history to disk, creating parent directories
// if needed. Directories are created with 0o700, files with 0o600
// (owner-only). Symlinks are rejected.
func (s *Store) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if info, err := os.Lstat(s.path); err == nil {
		if info.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("history file is a symlink (rejected for security): %s", s.path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0o600)
}

// Append adds a record, evicting the oldest entries beyond the cap.
func (s *Store) Append(rec types.RunRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Records = append(s.Records, rec)
	if len(s.Records) > maxRecords {
		s.Records = s.Records[len(s.Records)-maxRecords:]
	}
}

// Update replaces the record with the same ID, or appends it when absent.
func (s *Store) Update(rec types.RunRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Records {
		if s.Records[i].ID == rec.ID {
			s.Records[i] = rec
			return
		}
	}
	s.Records = append(s.Records, rec)
	if len(s.Records) > maxRecords {
		s.Records = s.Records[len(s.Records)-maxRecords:]
	}
}

// Get returns the record for the given run ID and whether it exists.
func (s *Store) Get(id string) (types.RunRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.Records {
		if s.Records[i].ID == id {
			return s.Records[i], true
		}
	}
	return types.RunRecord{}, false
}

// All returns a copy of every record, oldest first.
func (s *Store) All() []types.RunRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.RunRecord, len(s.Records))
	copy(out, s.Records)
	return out
}

// Path returns the file path of this store.
func (s *Store) Path() string {
	return s.path
}
