// Package filestore keeps uploaded files on local disk under a single
// directory. Names handed out and accepted are bare file names, never paths.
package filestore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Store provides file access rooted at a directory
type Store struct {
	dir string
	log *logrus.Logger
}

// NewStore creates the directory if needed and returns a store over it
func NewStore(dir string, log *logrus.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &Store{dir: dir, log: log}, nil
}

// Save writes the stream to a new uniquely-named file and returns its name.
// The original name only contributes its extension.
func (s *Store) Save(original string, r io.Reader) (string, error) {
	name := uuid.New().String() + filepath.Ext(original)
	file, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	if _, err := io.Copy(file, r); err != nil {
		file.Close()
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close upload file: %w", err)
	}
	return name, nil
}

// Open opens a stored file for reading
func (s *Store) Open(name string) (io.ReadCloser, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Remove deletes a stored file
func (s *Store) Remove(name string) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}

// RemoveOlderThan deletes stored files whose modification time is older than
// maxAge. Imports remove their own file; this catches leftovers from failed
// ones.
func (s *Store) RemoveOlderThan(maxAge time.Duration) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.log.Errorf("Failed to read upload dir: %v", err)
		return
	}
	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			s.log.Errorf("Failed to remove stale upload %s: %v", entry.Name(), err)
			continue
		}
		s.log.Infof("Removed stale upload: %s", entry.Name())
	}
}

// resolve rejects names that would escape the store directory
func (s *Store) resolve(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	return filepath.Join(s.dir, name), nil
}
