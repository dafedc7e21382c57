// Package storage persists uploaded blobs on the local filesystem keyed by
// relative path strings. The database stays the source of truth for which
// paths are live; callers are responsible for deleting replaced or orphaned
// files.
package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Pending is an upload that has not been persisted yet.
type Pending struct {
	Filename string
	Content  io.Reader
}

// Service stores blobs under a root directory and exposes them below a
// public base URL.
type Service struct {
	root    string
	baseURL string
}

// New creates a storage service rooted at dir. Files become reachable under
// baseURL/<relative path>.
func New(dir, baseURL string) *Service {
	return &Service{root: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

// Upload stores content under directory with a collision-resistant generated
// name, preserving the original extension, and returns the relative path.
func (s *Service) Upload(content io.Reader, originalName, directory string) (string, error) {
	name := uuid.NewString() + strings.ToLower(filepath.Ext(originalName))
	rel := filepath.ToSlash(filepath.Join(directory, name))

	abs := filepath.Join(s.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", err
	}

	// O_EXCL so a uuid collision surfaces as an error instead of an overwrite.
	f, err := os.OpenFile(abs, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		_ = os.Remove(abs)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(abs)
		return "", err
	}
	return rel, nil
}

// Delete removes a stored blob. Empty or missing paths are a no-op.
func (s *Service) Delete(path string) error {
	if path == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(path)))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Exists reports whether a blob is currently present at path.
func (s *Service) Exists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(filepath.Join(s.root, filepath.FromSlash(path)))
	return err == nil && !info.IsDir()
}

// PublicURL resolves a stored path into its client-facing URL. Empty paths
// resolve to "".
func (s *Service) PublicURL(path string) string {
	if path == "" {
		return ""
	}
	return s.baseURL + "/" + strings.TrimLeft(path, "/")
}
