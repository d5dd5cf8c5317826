package storage

import (
	"context"
	"io"
	"time"
)

// ObjectStorage defines the unified interface for object storage operations.
type ObjectStorage interface {
	// PutObject uploads an object and returns its metadata
	PutObject(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (*ObjectInfo, error)

	// GetObject downloads an object; the caller must close the reader
	GetObject(ctx context.Context, key string) (io.ReadCloser, *ObjectInfo, error)

	// StatObject returns object metadata without downloading the body
	StatObject(ctx context.Context, key string) (*ObjectInfo, error)

	// PresignGetObject returns a time-limited URL for downloading an object
	PresignGetObject(ctx context.Context, key string, expiry time.Duration) (string, error)

	// RemoveObject deletes an object
	RemoveObject(ctx context.Context, key string) error

	// Ping verifies the storage connection is alive
	Ping(ctx context.Context) error
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type"`
	ETag         string    `json:"etag"`
	LastModified time.Time `json:"last_modified"`
}
