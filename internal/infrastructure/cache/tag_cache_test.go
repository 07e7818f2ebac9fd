package cache

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestCache(t *testing.T, opts ...TagCacheOption) (*TagCache, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	opts = append([]TagCacheOption{withClock(clock.Now), WithCleanupInterval(time.Hour)}, opts...)
	c := NewTagCache(opts...)
	t.Cleanup(c.Close)
	return c, clock
}

func TestTag(t *testing.T) {
	assert.Equal(t, "Product:LIST", ListTag("Product").String())
	assert.Equal(t, "Product:LIST", Tag{Type: "Product"}.String())
	assert.Equal(t, "Product:42", IDTag("Product", "42").String())
}

func TestTagCache_GetSet(t *testing.T) {
	c, _ := newTestCache(t)

	_, ok := c.Get("products/search?page=1")
	assert.False(t, ok)

	c.Set("products/search?page=1", []byte(`{"items":[]}`), []Tag{ListTag("Product")})
	v, ok := c.Get("products/search?page=1")
	require.True(t, ok)
	assert.JSONEq(t, `{"items":[]}`, string(v))

	assert.Equal(t, TagCacheStats{Hits: 1, Misses: 1, Entries: 1}, c.Stats())
}

func TestTagCache_Invalidate(t *testing.T) {
	c, _ := newTestCache(t)
	c.Set("list", []byte("l"), []Tag{ListTag("Product")})
	c.Set("p1", []byte("1"), []Tag{IDTag("Product", "1")})
	c.Set("p2", []byte("2"), []Tag{IDTag("Product", "2")})
	c.Set("o1", []byte("o"), []Tag{IDTag("Order", "1"), IDTag("Product", "1")})

	removed := c.Invalidate(IDTag("Product", "1"))
	assert.Equal(t, map[string]int{"Product": 2}, removed)

	_, ok := c.Get("p1")
	assert.False(t, ok)
	_, ok = c.Get("o1")
	assert.False(t, ok, "entries providing several tags go with any of them")
	_, ok = c.Get("p2")
	assert.True(t, ok)
	_, ok = c.Get("list")
	assert.True(t, ok)

	removed = c.Invalidate(Tag{Type: "Product"}, IDTag("Order", "1"))
	assert.Equal(t, map[string]int{"Product": 1}, removed)
	assert.Equal(t, 1, c.Len())

	assert.Empty(t, c.Invalidate(ListTag("Shipment")))

	c.Set("p3", []byte("3"), []Tag{IDTag("Product", "3")})
	c.Set("o2", []byte("o"), []Tag{IDTag("Order", "2")})
	assert.Equal(t, map[string]int{"Product": 2}, c.Invalidate(TypeTag("Product")))
	assert.Equal(t, 1, c.Len())
}

func TestTagCache_SetReplacesTags(t *testing.T) {
	c, _ := newTestCache(t)
	c.Set("k", []byte("a"), []Tag{IDTag("Product", "1")})
	c.Set("k", []byte("b"), []Tag{IDTag("Product", "2")})

	assert.Empty(t, c.Invalidate(IDTag("Product", "1")))
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "b", string(v))
}

func TestTagCache_SetIfFresh(t *testing.T) {
	c, clock := newTestCache(t, WithTTL(time.Minute))

	since := c.Generation()
	c.Invalidate(IDTag("Product", "1"))
	assert.False(t, c.SetIfFresh("get:1", []byte("old"), []Tag{IDTag("Product", "1")}, since),
		"fetched before the invalidation")
	assert.True(t, c.SetIfFresh("get:2", []byte("x"), []Tag{IDTag("Product", "2")}, since),
		"other records are unaffected")

	since = c.Generation()
	c.Invalidate(TypeTag("Order"))
	assert.False(t, c.SetIfFresh("orders", []byte("o"), []Tag{ListTag("Order")}, since))

	since = c.Generation()
	c.Clear()
	assert.False(t, c.SetIfFresh("get:3", []byte("y"), []Tag{IDTag("Product", "3")}, since))

	since = c.Generation()
	assert.True(t, c.SetIfFresh("get:1", []byte("new"), []Tag{IDTag("Product", "1")}, since))
	v, ok := c.Get("get:1")
	require.True(t, ok)
	assert.Equal(t, "new", string(v))

	stale := c.Generation()
	c.Invalidate(IDTag("Product", "4"))
	clock.Advance(2 * time.Minute)
	c.sweep()
	assert.True(t, c.SetIfFresh("get:4", []byte("z"), []Tag{IDTag("Product", "4")}, stale),
		"marks older than the ttl are forgotten")
}

func TestTagCache_Expiry(t *testing.T) {
	c, clock := newTestCache(t, WithTTL(time.Minute))
	c.Set("read", []byte("r"), nil)
	c.Set("idle", []byte("i"), nil)

	clock.Advance(45 * time.Second)
	_, ok := c.Get("read")
	require.True(t, ok)

	clock.Advance(30 * time.Second)
	assert.Equal(t, 1, c.sweep(), "idle entry outlived its ttl")
	_, ok = c.Get("read")
	assert.True(t, ok, "reads extend the lifetime")

	clock.Advance(2 * time.Minute)
	_, ok = c.Get("read")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestTagCache_CloseStopsCleanup(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := NewTagCache(WithCleanupInterval(time.Millisecond))
	c.Set("k", []byte("v"), []Tag{ListTag("Product")})
	time.Sleep(5 * time.Millisecond)
	c.Close()
	c.Close()
}

func TestTagCache_Concurrent(t *testing.T) {
	c, _ := newTestCache(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				key := string(rune('a' + (i+j)%8))
				c.Set(key, []byte{byte(j)}, []Tag{IDTag("Product", key), ListTag("Product")})
				c.Get(key)
				if j%50 == 0 {
					c.Invalidate(ListTag("Product"))
				}
			}
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 8)
}

// TestRedisTagInvalidator runs against a live server when REDIS_ADDR is set
func TestRedisTagInvalidator(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	channel := "test:invalidate:" + t.Name()
	a := NewRedisTagInvalidator(client, WithInvalidationChannel(channel))
	b := NewRedisTagInvalidator(client, WithInvalidationChannel(channel))

	got := make(chan []Tag, 2)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	for _, inv := range []*RedisTagInvalidator{a, b} {
		go func(inv *RedisTagInvalidator) {
			_ = inv.Subscribe(ctx, func(tags []Tag) { got <- tags })
		}(inv)
	}
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, a.Publish(ctx, []Tag{IDTag("Product", "1")}))
	select {
	case tags := <-got:
		assert.Equal(t, []Tag{IDTag("Product", "1")}, tags)
	case <-time.After(2 * time.Second):
		t.Fatal("invalidation not delivered")
	}
	select {
	case tags := <-got:
		t.Fatalf("publisher received its own message: %v", tags)
	case <-time.After(100 * time.Millisecond):
	}

	require.NoError(t, a.Close())
	require.NoError(t, b.Close())
}
