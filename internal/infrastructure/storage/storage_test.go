package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bizconsole/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalStorage(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := NewLocalStorage(root)
	require.NoError(t, err)

	key := "crm/customers/20240301T120000Z.csv"
	require.NoError(t, s.Put(ctx, key, strings.NewReader("id,name\n1,Acme\n"), "text/csv"))

	data, err := os.ReadFile(filepath.Join(root, "crm", "customers", "20240301T120000Z.csv"))
	require.NoError(t, err)
	assert.Equal(t, "id,name\n1,Acme\n", string(data))

	exists, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	url, err := s.URL(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, url)

	require.NoError(t, s.Delete(ctx, key))
	require.NoError(t, s.Delete(ctx, key))
	exists, err = s.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	entries, err := os.ReadDir(filepath.Join(root, "crm", "customers"))
	require.NoError(t, err)
	assert.Empty(t, entries, "temp files must not be left behind")
}

func TestValidateKey(t *testing.T) {
	for _, key := range []string{"", "/etc/passwd", "../escape.csv", "a/../../b"} {
		assert.ErrorIs(t, validateKey(key), ErrInvalidKey, key)
	}
	assert.NoError(t, validateKey("logistics/products/x.csv"))
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	s, err := New(ctx, &config.StorageConfig{Type: "local", LocalPath: t.TempDir()}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &LocalStorage{}, s)

	_, err = New(ctx, &config.StorageConfig{Type: "ftp"}, zap.NewNop())
	assert.ErrorContains(t, err, "unsupported storage type")
}

func TestNewS3Storage_Validation(t *testing.T) {
	ctx := context.Background()

	_, err := NewS3Storage(ctx, nil)
	assert.ErrorContains(t, err, "configuration is required")

	_, err = NewS3Storage(ctx, &config.StorageConfig{})
	assert.ErrorContains(t, err, "bucket is required")

	_, err = NewS3Storage(ctx, &config.StorageConfig{Bucket: "b", AccessKey: "k"})
	assert.ErrorContains(t, err, "must be set together")
}

func TestS3Storage_PresignedURL(t *testing.T) {
	s, err := NewS3Storage(context.Background(), &config.StorageConfig{
		Bucket:         "exports",
		Region:         "us-east-1",
		Endpoint:       "http://localhost:9000",
		AccessKey:      "minio",
		SecretKey:      "minio-secret",
		ForcePathStyle: true,
		PresignExpiry:  5 * time.Minute,
	})
	require.NoError(t, err)

	url, err := s.URL(context.Background(), "crm/leads/x.csv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:9000/exports/crm/leads/x.csv?"), url)
	assert.Contains(t, url, "X-Amz-Expires=300")

	_, err = s.URL(context.Background(), "../x")
	assert.ErrorIs(t, err, ErrInvalidKey)
}
