package storage

import (
	"context"
	"errors"
)

var ErrNotConfigured = errors.New("storage: uploader not configured")

type UploadInput struct {
	Key          string
	Body         []byte
	ContentType  string
	CacheControl string
}

type UploadResult struct {
	URL  string
	ETag string
}

// Uploader stores a blob and returns a publicly resolvable URL.
type Uploader interface {
	Upload(ctx context.Context, input UploadInput) (*UploadResult, error)
}

// NoopUploader is used when no bucket is configured.
type NoopUploader struct{}

func (NoopUploader) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	return nil, ErrNotConfigured
}
