package ports

import (
	"context"
	"io"
	"time"
)

// FileStore is a flat directory of named files. Names are plain file names
// chosen by the caller, never client supplied paths.
type FileStore interface {
	// Store writes src under name and returns the stored path and byte count.
	// The file becomes visible only once it is complete.
	Store(ctx context.Context, src io.Reader, name string) (string, int64, error)
	GetReader(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error

	// Sweep removes files last modified before cutoff
	Sweep(ctx context.Context, cutoff time.Time) (int, error)
}
