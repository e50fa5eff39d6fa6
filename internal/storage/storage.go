// Package storage reads uploaded course and document files from the media directory
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/profactive/backend/internal/models"
)

// localStorage serves files below a base directory of the local filesystem
type localStorage struct {
	basePath string
}

// NewLocalStorage creates a new localStorage instance
func NewLocalStorage(basePath string) *localStorage {
	return &localStorage{
		basePath: basePath,
	}
}

// resolvePath joins a stored relative path to the base directory.
// Paths escaping the base directory are rejected.
func (s *localStorage) resolvePath(relPath string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(strings.TrimLeft(relPath, "/")))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: invalid file path %q", models.ErrValidation, relPath)
	}

	return filepath.Join(s.basePath, cleaned), nil
}

// Open opens a stored file for reading. The *os.File can be passed to http.ServeContent.
func (s *localStorage) Open(relPath string) (*os.File, error) {
	path, err := s.resolvePath(relPath)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: file", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		file.Close()
		return nil, fmt.Errorf("%w: file", models.ErrNotFound)
	}

	return file, nil
}
