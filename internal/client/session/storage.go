package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"accesshub/internal/client/api"
)

// Snapshot is the durable client state: the identity and the token it was
// issued, persisted so a restart restores the authenticated session.
type Snapshot struct {
	User  api.User `json:"user"`
	Token string   `json:"token"`
}

// Store persists session snapshots across process restarts.
type Store interface {
	Load() (*Snapshot, error)
	Save(*Snapshot) error
	Clear() error
}

// FileStore keeps the snapshot in a single JSON file, the terminal-client
// analog of the browser's localStorage key.
type FileStore struct {
	path string
}

// NewFileStore creates a store writing to the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the stored snapshot. A missing file is not an error; it simply
// means no session was persisted.
func (s *FileStore) Load() (*Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse session file: %w", err)
	}
	return &snap, nil
}

// Save writes the snapshot, creating parent directories as needed.
func (s *FileStore) Save(snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

// Clear removes the stored snapshot.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
