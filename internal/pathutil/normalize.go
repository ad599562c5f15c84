package pathutil

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
)

// Normalize returns a canonical filesystem path string.
// It removes trailing slashes, collapses "." and "..", and
// preserves relative paths when provided.
func Normalize(path string) string {
	if path == "" {
		return path
	}
	return filepath.Clean(path)
}

// AssetPath returns dir/{id}.{ext}. A leading dot on ext is ignored and an
// empty ext leaves the name bare.
func AssetPath(dir, id, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		return filepath.Join(dir, id)
	}
	return filepath.Join(dir, id+"."+ext)
}

// LockPath returns the lock file for dir, placed under base. dir should be
// absolute so that every spelling of the same directory maps to one file.
func LockPath(base, dir string) string {
	sum := sha256.Sum256([]byte(Normalize(dir)))
	return filepath.Join(base, "gridassets-"+hex.EncodeToString(sum[:8])+".lock")
}
