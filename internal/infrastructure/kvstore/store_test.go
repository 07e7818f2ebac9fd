package kvstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/bizconsole/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newSQLiteStore(t *testing.T) *SQLStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "kv.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return NewSQLStore(db)
}

// backends returns every store that can run in this environment. Redis is
// included when CONSOLE_TEST_REDIS_ADDR points at a server.
func backends(t *testing.T) map[string]Store {
	t.Helper()
	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"sql":    newSQLiteStore(t),
	}
	if addr := os.Getenv("CONSOLE_TEST_REDIS_ADDR"); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		prefix := "kvstore-test:" + strconv.Itoa(os.Getpid()) + ":" + t.Name() + ":"
		stores["redis"] = NewRedisStore(client, prefix)
		t.Cleanup(func() { client.Close() })
	}
	return stores
}

func TestStore_GetSetDelete(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := s.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Set(ctx, "crm_customers", []byte(`[{"id":"1"}]`)))
			v, err := s.Get(ctx, "crm_customers")
			require.NoError(t, err)
			assert.JSONEq(t, `[{"id":"1"}]`, string(v))

			require.NoError(t, s.Set(ctx, "crm_customers", []byte(`[]`)))
			v, err = s.Get(ctx, "crm_customers")
			require.NoError(t, err)
			assert.Equal(t, `[]`, string(v))

			require.NoError(t, s.Delete(ctx, "crm_customers"))
			_, err = s.Get(ctx, "crm_customers")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_UpdateAbortsOnError(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Set(ctx, "k", []byte("before")))

			boom := errors.New("boom")
			err := s.Update(ctx, "k", func(current []byte) ([]byte, error) {
				assert.Equal(t, "before", string(current))
				return nil, boom
			})
			assert.ErrorIs(t, err, boom)

			v, err := s.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "before", string(v))
		})
	}
}

func TestStore_ConcurrentUpdatesAreSerialized(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			const writers = 20

			var wg sync.WaitGroup
			for range writers {
				wg.Add(1)
				go func() {
					defer wg.Done()
					err := s.Update(ctx, "counter", func(current []byte) ([]byte, error) {
						n := 0
						if current != nil {
							n, _ = strconv.Atoi(string(current))
						}
						return []byte(strconv.Itoa(n + 1)), nil
					})
					assert.NoError(t, err)
				}()
			}
			wg.Wait()

			v, err := s.Get(ctx, "counter")
			require.NoError(t, err)
			assert.Equal(t, strconv.Itoa(writers), string(v))
		})
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	buf := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", buf))
	buf[0] = 'x'

	v, _ := s.Get(ctx, "k")
	assert.Equal(t, "abc", string(v))
	v[1] = 'y'
	v, _ = s.Get(ctx, "k")
	assert.Equal(t, "abc", string(v))
}

func TestNew(t *testing.T) {
	s, err := New(config.KVConfig{Backend: "memory"}, Deps{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	_, err = New(config.KVConfig{Backend: "sql"}, Deps{})
	assert.Error(t, err)

	_, err = New(config.KVConfig{Backend: "redis"}, Deps{})
	assert.Error(t, err)

	_, err = New(config.KVConfig{Backend: "etcd"}, Deps{})
	assert.ErrorContains(t, err, "unknown kv backend")

	sqlStore := newSQLiteStore(t)
	s, err = New(config.KVConfig{Backend: "sql"}, Deps{DB: sqlStore.db})
	require.NoError(t, err)
	assert.IsType(t, &SQLStore{}, s)
}
