package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// State is the on-disk session snapshot.
type State struct {
	Username         string `json:"username"`
	Password         string `json:"password"`
	HashToken        string `json:"hash_token"`
	RefreshToken     string `json:"refresh_token"`
	SessionTimestamp int64  `json:"session_timestamp"`
}

// FileStore persists session state and device identifiers under a single
// directory (default ~/.vigilo).
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir. An empty dir resolves to
// ~/.vigilo.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, ".vigilo")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create session dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory backing this store.
func (f *FileStore) Dir() string {
	return f.dir
}

func (f *FileStore) sessionPath() string {
	return filepath.Join(f.dir, "session.json")
}

// Load reads the persisted session, returning (nil, nil) when no session
// file exists yet.
func (f *FileStore) Load() (*State, error) {
	data, err := os.ReadFile(f.sessionPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("corrupt session file: %w", err)
	}
	return &state, nil
}

// Save writes the session snapshot, replacing any previous one.
func (f *FileStore) Save(state *State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return os.WriteFile(f.sessionPath(), data, 0600)
}

// Remove deletes the session file. A missing file is not an error.
func (f *FileStore) Remove() error {
	err := os.Remove(f.sessionPath())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
