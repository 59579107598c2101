package settings

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileStore persists settings as a TOML file. A missing file loads as Defaults.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the settings file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the settings file and merges it with Defaults.
func (s *FileStore) Load(ctx context.Context) (Settings, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Defaults, nil
		}
		return Settings{}, fmt.Errorf("failed to read settings: %w", err)
	}

	var r record
	if _, err := toml.Decode(string(data), &r); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings %s: %w", s.path, err)
	}
	return r.resolve(), nil
}

// Save writes the settings file. The file holds a secret and is created 0600.
func (s *FileStore) Save(ctx context.Context, settings Settings) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(newRecord(settings)); err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	if err := os.WriteFile(s.path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}
