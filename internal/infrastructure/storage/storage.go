// Package storage stores exported files in a local directory or an
// S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bizconsole/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ErrInvalidKey is returned for empty keys or keys escaping the store root
var ErrInvalidKey = errors.New("invalid storage key")

// ObjectStorage writes objects and hands out links to them
type ObjectStorage interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
	// URL returns a download link, or "" when the backend has none
	URL(ctx context.Context, key string) (string, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}

// New builds the backend selected by cfg.Type
func New(ctx context.Context, cfg *config.StorageConfig, log *zap.Logger) (ObjectStorage, error) {
	switch cfg.Type {
	case "", "local":
		return NewLocalStorage(cfg.LocalPath)
	case "s3":
		s, err := NewS3Storage(ctx, cfg, WithLogger(log))
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unsupported storage type %q", cfg.Type)
}

func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
