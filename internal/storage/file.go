// Package storage is the local half of the sync pair: it persists the
// finance document as one JSON file on disk, the Go stand-in for the
// original client's browser-local cache.
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/finanzas-dev/finanzas/internal/document"
)

// Store reads and writes the single local copy of the document.
type Store interface {
	// Read returns the local document, or ok=false when none exists yet.
	Read() (doc *document.Document, ok bool, err error)

	// Write replaces the local document.
	Write(doc *document.Document) error
}

// FileStore keeps the document at a fixed path.
type FileStore struct {
	Path string
}

// NewFileStore creates a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Read implements Store.
func (s *FileStore) Read() (*document.Document, bool, error) {
	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading local document: %w", err)
	}
	doc, err := document.Decode(data)
	if err != nil {
		return nil, false, fmt.Errorf("decoding local document %s: %w", s.Path, err)
	}
	return doc, true, nil
}

// Write implements Store. The file is replaced atomically so a crash
// mid-write never leaves a truncated document behind.
func (s *FileStore) Write(doc *document.Document) error {
	data, err := doc.Encode()
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	dir := filepath.Dir(s.Path)
	tmp, err := os.CreateTemp(dir, ".finanzas-*.json")
	if err != nil {
		return fmt.Errorf("writing local document: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing local document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing local document: %w", err)
	}
	if err := os.Rename(tmpName, s.Path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing local document: %w", err)
	}
	return nil
}

var _ Store = (*FileStore)(nil)
