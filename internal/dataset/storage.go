package dataset

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"seismicview/internal/errors"
)

// StorageConfig holds configuration for file storage
type StorageConfig struct {
	BasePath  string // Directory files are kept in
	ChunkSize int    // Copy buffer size
}

// DefaultStorageConfig returns sensible defaults
func DefaultStorageConfig(basePath string) *StorageConfig {
	return &StorageConfig{
		BasePath:  basePath,
		ChunkSize: 1024 * 1024, // 1MB
	}
}

// LocalFileStorage keeps files in a single flat directory. Callers choose
// the names, which must be plain file names without any directory part.
type LocalFileStorage struct {
	config *StorageConfig
}

// NewLocalFileStorage creates a new local file storage instance
func NewLocalFileStorage(config *StorageConfig) *LocalFileStorage {
	if config.ChunkSize <= 0 {
		config.ChunkSize = 1024 * 1024
	}
	return &LocalFileStorage{config: config}
}

// NewLocalFileStorageWithPath creates a new local file storage with a simple path
func NewLocalFileStorageWithPath(basePath string) *LocalFileStorage {
	return NewLocalFileStorage(DefaultStorageConfig(basePath))
}

// BasePath returns the storage directory
func (s *LocalFileStorage) BasePath() string {
	return s.config.BasePath
}

// Path returns the on-disk location of name
func (s *LocalFileStorage) Path(name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.config.BasePath, name), nil
}

// Store copies src into the file called name and returns its path and size
func (s *LocalFileStorage) Store(ctx context.Context, src io.Reader, name string) (string, int64, error) {
	w, err := s.Create(ctx, name)
	if err != nil {
		return "", 0, err
	}

	buf := make([]byte, s.config.ChunkSize)
	size, err := io.CopyBuffer(w, src, buf)
	if err != nil {
		w.Abort()
		return "", 0, errors.StorageError("failed to copy file contents", err)
	}
	if err := w.Close(); err != nil {
		return "", 0, err
	}
	return w.Path(), size, nil
}

// Create opens a writer for name. The content only appears under name once
// Close succeeds, so readers never observe a partially written file.
func (s *LocalFileStorage) Create(ctx context.Context, name string) (*PendingFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.config.BasePath, 0o755); err != nil {
		return nil, errors.StorageError("failed to create storage directory", err)
	}

	tmp, err := os.CreateTemp(s.config.BasePath, "."+name+".*.tmp")
	if err != nil {
		return nil, errors.StorageError("failed to create destination file", err)
	}
	return &PendingFile{File: tmp, path: path}, nil
}

// GetReader returns a reader for the stored file
func (s *LocalFileStorage) GetReader(ctx context.Context, name string) (io.ReadCloser, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.NotFound(name)
	}
	if err != nil {
		return nil, errors.StorageError("failed to open file", err)
	}
	return file, nil
}

// Delete removes a file from storage
func (s *LocalFileStorage) Delete(ctx context.Context, name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.StorageError("failed to delete file", err)
	}
	return nil
}

// Exists checks if a file exists in storage
func (s *LocalFileStorage) Exists(ctx context.Context, name string) (bool, error) {
	path, err := s.Path(name)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.StorageError("failed to check file existence", err)
	}
	return true, nil
}

// Sweep deletes regular files last modified before cutoff and returns how
// many were removed.
func (s *LocalFileStorage) Sweep(ctx context.Context, cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(s.config.BasePath)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.StorageError("failed to list storage directory", err)
	}

	removed := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.config.BasePath, entry.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

// PendingFile is a file being written by Create.
type PendingFile struct {
	*os.File
	path string
}

// Path returns the final location of the file
func (p *PendingFile) Path() string {
	return p.path
}

// Close flushes the file and moves it into place
func (p *PendingFile) Close() error {
	if err := p.File.Close(); err != nil {
		os.Remove(p.File.Name())
		return errors.StorageError("failed to close file", err)
	}
	if err := os.Rename(p.File.Name(), p.path); err != nil {
		os.Remove(p.File.Name())
		return errors.StorageError("failed to move file into place", err)
	}
	return nil
}

// Abort discards everything written so far
func (p *PendingFile) Abort() {
	p.File.Close()
	os.Remove(p.File.Name())
}

func validateName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return errors.InvalidInput(fmt.Sprintf("invalid storage name %q", name))
	}
	return nil
}
