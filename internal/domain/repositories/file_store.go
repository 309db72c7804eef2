package repositories

import (
	"context"
	"io"
)

// FileStore persists uploaded files under relative, slash-separated paths
type FileStore interface {
	Save(ctx context.Context, relPath string, content io.Reader) (string, error)
	Open(ctx context.Context, relPath string) (io.ReadCloser, error)
	Delete(ctx context.Context, relPath string) error
	DeleteDir(ctx context.Context, relDir string) error
	URL(relPath string) string
}
