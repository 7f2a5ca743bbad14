package filestorage

import (
	"context"
	"io"
)

// StoredFile describes a saved file.
type StoredFile struct {
	// URL is the absolute address the file is served from
	URL string
	// PublicID identifies the file independently of its extension, e.g.
	// "kindergarten-canvas/news/3f2a..."
	PublicID string
	// Path is the location on disk
	Path string
	Size int64
}

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// Save writes r under folder with a generated name ending in ext.
	Save(ctx context.Context, r io.Reader, folder, ext string) (*StoredFile, error)
}
