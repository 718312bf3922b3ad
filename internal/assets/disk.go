// Package assets stores uploaded profile photos on the local filesystem
// and maps them to public URLs served by the web server.
package assets

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrTooLarge is returned when an upload exceeds the configured size cap.
var ErrTooLarge = errors.New("upload exceeds size limit")

// ErrUnsupportedType is returned for files that are not recognized image
// formats.
var ErrUnsupportedType = errors.New("unsupported file type")

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// Store saves uploaded photos and returns their public URL.
type Store interface {
	Save(filename string, r io.Reader) (string, error)
}

// DiskStore is a Store backed by a local directory.
type DiskStore struct {
	dir      string
	baseURL  string
	maxBytes int64
}

// NewDiskStore creates the storage directory if needed.
func NewDiskStore(dir, baseURL string, maxUploadMB int) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("assets: failed to create directory %s: %w", dir, err)
	}
	if maxUploadMB <= 0 {
		maxUploadMB = 5
	}
	return &DiskStore{
		dir:      dir,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		maxBytes: int64(maxUploadMB) << 20,
	}, nil
}

// Dir returns the storage directory, for wiring the static file server.
func (s *DiskStore) Dir() string {
	return s.dir
}

// Save writes the upload under a generated name and returns its URL.
// Only the extension of the client filename is kept.
func (s *DiskStore) Save(filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}

	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("assets: failed to create %s: %w", path, err)
	}

	// Read one byte past the cap so oversized uploads are detectable.
	n, err := io.Copy(f, io.LimitReader(r, s.maxBytes+1))
	closeErr := f.Close()
	if err == nil && closeErr != nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("assets: failed to write %s: %w", path, err)
	}
	if n > s.maxBytes {
		os.Remove(path)
		return "", ErrTooLarge
	}

	return s.baseURL + "/" + name, nil
}
