package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/aduanatrack/core/internal/ports"
)

// StateKey is the fixed key under which the task collection is persisted,
// regardless of backend.
const StateKey = "aduanas_tasks"

// FileStore persists the state document as a single JSON file on disk.
// This is the default backend.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed state store rooted at dataDir.
func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir %q: %w", dataDir, err)
	}
	return &FileStore{path: filepath.Join(dataDir, StateKey+".json")}, nil
}

// Load returns the persisted document, or ports.ErrNoState when the file
// does not exist yet.
func (s *FileStore) Load(ctx context.Context) ([]byte, error) {
	doc, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ports.ErrNoState
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}
	return doc, nil
}

// Save replaces the persisted document. The write goes through a temp
// file and a rename, so a crash mid-write never leaves a truncated
// document behind.
func (s *FileStore) Save(ctx context.Context, doc []byte) error {
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, doc, 0o644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}

// Ping checks that the data directory is still accessible.
func (s *FileStore) Ping(ctx context.Context) error {
	if _, err := os.Stat(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("state directory unavailable: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}
