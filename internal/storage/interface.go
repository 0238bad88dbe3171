package storage

import (
	"context"
	"io"
)

// DocumentStorage is the backend holding generated contract documents.
// Supports both local filesystem storage and cloud backends.
type DocumentStorage interface {
	// SaveFile stores a document under key.
	SaveFile(key string, reader io.Reader) error

	// ReadFile opens a stored document for reading.
	ReadFile(key string) (io.ReadCloser, error)

	// FileExists checks if a document exists and returns its size.
	FileExists(ctx context.Context, key string) (exists bool, size int64, err error)

	// DeleteFile removes a document from storage.
	DeleteFile(ctx context.Context, key string) error

	// DownloadURL returns the URL a client can fetch the document from.
	DownloadURL(key string) string
}
