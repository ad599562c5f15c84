package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/michaelscutari/gridassets/internal/pathutil"
)

// ErrLocked is returned when another run holds the output directory.
var ErrLocked = errors.New("another run is writing to this directory")

// Store writes finished assets into an output directory.
type Store struct {
	dir  string
	lock *flock.Flock
}

// Open creates dir if needed and takes an exclusive lock on it. The lock file
// lives under the system temp directory so the output directory only ever
// holds finished assets.
func Open(dir string) (*Store, error) {
	abs, err := filepath.Abs(pathutil.Normalize(dir))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory: %w", err)
	}
	dir = abs

	// Ensure output directory exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	// Acquire lock
	lock := flock.New(pathutil.LockPath(os.TempDir(), dir))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}

	return &Store{dir: dir, lock: lock}, nil
}

// Dir returns the output directory.
func (s *Store) Dir() string {
	return s.dir
}

// Write stores data as {id}.{ext} and returns the final path. The file is
// written to a temp name first and renamed into place, so readers never see
// a partial image.
func (s *Store) Write(id, ext string, data []byte) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("invalid asset id %q", id)
	}
	finalPath := pathutil.AssetPath(s.dir, id, ext)

	tmp, err := os.CreateTemp(s.dir, ".gridassets-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to write %s: %w", id, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to close %s: %w", id, err)
	}
	if err := os.Chmod(tempPath, 0644); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to chmod %s: %w", id, err)
	}

	// Atomic rename to final location
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to rename %s: %w", id, err)
	}
	return finalPath, nil
}

// Close releases the directory lock.
func (s *Store) Close() error {
	if s.lock == nil {
		return nil
	}
	err := s.lock.Unlock()
	s.lock = nil
	return err
}
