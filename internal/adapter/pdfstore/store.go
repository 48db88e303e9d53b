// Package pdfstore stores uploaded PDF binaries on disk, content-addressed
// by the SHA-256 of their bytes. Saving the same file twice yields the same
// id and keeps a single copy.
package pdfstore

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hieunguyen/vocabdeck/internal/domain"
)

// %x of sha256 is 64 hex characters.
const idLength = 64

// Store is a directory of content-addressed PDF files.
type Store struct {
	dir string
}

// New creates the storage directory if needed and returns the store.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create pdf dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save streams r to disk and returns the content id. The file is written
// to a temp name first and renamed into place so readers never observe a
// partial file. Saving existing content is a no-op returning the same id.
func (s *Store) Save(r io.Reader) (string, error) {
	tmp, err := os.CreateTemp(s.dir, "upload-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(tmp, h), r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write pdf: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	id := hex.EncodeToString(h.Sum(nil))
	final := s.path(id)

	if _, err := os.Stat(final); err == nil {
		// Same content already stored.
		return id, nil
	}

	if err := os.Rename(tmp.Name(), final); err != nil {
		return "", fmt.Errorf("store pdf: %w", err)
	}

	return id, nil
}

// Open returns the stored PDF for reading and its size in bytes.
// Returns domain.ErrNotFound for unknown or malformed ids.
func (s *Store) Open(id string) (io.ReadSeekCloser, int64, error) {
	if !validID(id) {
		return nil, 0, fmt.Errorf("pdf %q: %w", id, domain.ErrNotFound)
	}

	f, err := os.Open(s.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, fmt.Errorf("pdf %q: %w", id, domain.ErrNotFound)
		}
		return nil, 0, fmt.Errorf("open pdf %q: %w", id, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("stat pdf %q: %w", id, err)
	}

	return f, info.Size(), nil
}

// Exists reports whether content with the given id is stored.
func (s *Store) Exists(id string) bool {
	if !validID(id) {
		return false
	}
	_, err := os.Stat(s.path(id))
	return err == nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".pdf")
}

// validID rejects anything that is not a lowercase sha256 hex string, which
// also keeps path traversal out of the storage directory.
func validID(id string) bool {
	if len(id) != idLength {
		return false
	}
	for _, c := range id {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
