package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultKeepUnusedDataFor is how long an entry survives without a read
	DefaultKeepUnusedDataFor = 60 * time.Second
	defaultCleanupInterval   = 30 * time.Second
)

const (
	// ListID is the id of the tag that stands for a whole collection
	ListID = "LIST"
	// AnyID matches every tag of a type when invalidating
	AnyID = "*"
)

// Tag labels cached query results. {Type, ID} marks one record; an empty ID
// or ListID marks the list of that type.
type Tag struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
}

// ListTag returns the collection tag of a type
func ListTag(tagType string) Tag {
	return Tag{Type: tagType, ID: ListID}
}

// TypeTag invalidates every entry tagged with the type
func TypeTag(tagType string) Tag {
	return Tag{Type: tagType, ID: AnyID}
}

// IDTag returns the record tag of a type
func IDTag(tagType, id string) Tag {
	return Tag{Type: tagType, ID: id}
}

func (t Tag) normalize() Tag {
	if t.ID == "" {
		t.ID = ListID
	}
	return t
}

// String renders Type:ID
func (t Tag) String() string {
	t = t.normalize()
	return t.Type + ":" + t.ID
}

type tagEntry struct {
	value     []byte
	tags      []Tag
	expiresAt time.Time
}

// invalidationMark records when a tag was last invalidated
type invalidationMark struct {
	gen uint64
	at  time.Time
}

// TagCache holds serialized query results indexed by the tags they provide.
// Reads extend an entry's lifetime; a background goroutine drops entries that
// went unused for the TTL. Safe for concurrent use.
type TagCache struct {
	mu      sync.Mutex
	entries map[string]*tagEntry
	byTag   map[Tag]map[string]struct{}

	// gen counts invalidations; marks remember the last one per tag so a
	// result fetched before it is not stored after it
	gen        uint64
	marks      map[Tag]invalidationMark
	typeMarks  map[string]invalidationMark
	clearedGen uint64

	ttl             time.Duration
	cleanupInterval time.Duration
	now             func() time.Time
	logger          *zap.Logger

	stopCh  chan struct{}
	doneCh  chan struct{}
	stopped int32

	hits   int64
	misses int64
}

// TagCacheOption configures TagCache
type TagCacheOption func(*TagCache)

// WithTTL sets keepUnusedDataFor
func WithTTL(ttl time.Duration) TagCacheOption {
	return func(c *TagCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithCleanupInterval sets how often expired entries are swept
func WithCleanupInterval(d time.Duration) TagCacheOption {
	return func(c *TagCache) {
		if d > 0 {
			c.cleanupInterval = d
		}
	}
}

// WithCacheLogger sets the logger
func WithCacheLogger(logger *zap.Logger) TagCacheOption {
	return func(c *TagCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// withClock replaces time.Now in tests
func withClock(now func() time.Time) TagCacheOption {
	return func(c *TagCache) { c.now = now }
}

// NewTagCache creates the cache and starts its cleanup goroutine; call Close
// to stop it.
func NewTagCache(opts ...TagCacheOption) *TagCache {
	c := &TagCache{
		entries:         make(map[string]*tagEntry),
		byTag:           make(map[Tag]map[string]struct{}),
		marks:           make(map[Tag]invalidationMark),
		typeMarks:       make(map[string]invalidationMark),
		ttl:             DefaultKeepUnusedDataFor,
		cleanupInterval: defaultCleanupInterval,
		now:             time.Now,
		logger:          zap.NewNop(),
		stopCh:          make(chan struct{}),
		doneCh:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	go c.cleanupExpired()
	return c
}

// Get returns the cached value of key and refreshes its lifetime
func (c *TagCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	now := c.now()
	if !ok || now.After(e.expiresAt) {
		if ok {
			c.removeLocked(key)
		}
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}
	e.expiresAt = now.Add(c.ttl)
	atomic.AddInt64(&c.hits, 1)
	return e.value, true
}

// Set stores value under key, replacing any previous entry and its tags
func (c *TagCache) Set(key string, value []byte, tags []Tag) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(key, value, tags)
}

// Generation returns the invalidation counter. Take it before fetching a
// value that will be stored with SetIfFresh.
func (c *TagCache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// SetIfFresh stores value unless one of tags was invalidated after
// generation since. It reports whether the value was stored.
func (c *TagCache) SetIfFresh(key string, value []byte, tags []Tag, since uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.clearedGen > since {
		return false
	}
	for _, t := range tags {
		t = t.normalize()
		if c.marks[t].gen > since || c.typeMarks[t.Type].gen > since {
			return false
		}
	}
	c.setLocked(key, value, tags)
	return true
}

func (c *TagCache) setLocked(key string, value []byte, tags []Tag) {
	c.removeLocked(key)
	e := &tagEntry{value: value, expiresAt: c.now().Add(c.ttl)}
	for _, t := range tags {
		t = t.normalize()
		e.tags = append(e.tags, t)
		keys, ok := c.byTag[t]
		if !ok {
			keys = make(map[string]struct{})
			c.byTag[t] = keys
		}
		keys[key] = struct{}{}
	}
	c.entries[key] = e
}

// Invalidate drops every entry carrying any of tags and returns how many
// entries were removed per tag type
func (c *TagCache) Invalidate(tags ...Tag) map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	mark := invalidationMark{gen: c.gen, at: c.now()}
	removed := make(map[string]int)
	drop := func(t Tag) {
		for key := range c.byTag[t] {
			if _, ok := c.entries[key]; ok {
				c.removeLocked(key)
				removed[t.Type]++
			}
		}
	}
	for _, t := range tags {
		t = t.normalize()
		if t.ID != AnyID {
			c.marks[t] = mark
			drop(t)
			continue
		}
		c.typeMarks[t.Type] = mark
		for indexed := range c.byTag {
			if indexed.Type == t.Type {
				drop(indexed)
			}
		}
	}
	if len(removed) > 0 {
		c.logger.Debug("Invalidated cache entries", zap.Any("removed", removed))
	}
	return removed
}

// Clear drops everything
func (c *TagCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*tagEntry)
	c.byTag = make(map[Tag]map[string]struct{})
	// everything in flight is stale too
	c.gen++
	c.marks = make(map[Tag]invalidationMark)
	c.typeMarks = make(map[string]invalidationMark)
	c.clearedGen = c.gen
}

// Len returns the number of entries, expired ones included until swept
func (c *TagCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// TagCacheStats are cumulative hit and miss counts
type TagCacheStats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int   `json:"entries"`
}

// Stats returns the current counters
func (c *TagCache) Stats() TagCacheStats {
	return TagCacheStats{
		Hits:    atomic.LoadInt64(&c.hits),
		Misses:  atomic.LoadInt64(&c.misses),
		Entries: c.Len(),
	}
}

// Close stops the cleanup goroutine and waits for it to exit
func (c *TagCache) Close() {
	if !atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		return
	}
	close(c.stopCh)
	<-c.doneCh
}

// removeLocked deletes key and unlinks it from its tags; c.mu must be held
func (c *TagCache) removeLocked(key string) {
	e, ok := c.entries[key]
	if !ok {
		return
	}
	delete(c.entries, key)
	for _, t := range e.tags {
		keys := c.byTag[t]
		delete(keys, key)
		if len(keys) == 0 {
			delete(c.byTag, t)
		}
	}
}

func (c *TagCache) cleanupExpired() {
	defer close(c.doneCh)
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

// sweep removes expired entries
func (c *TagCache) sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	n := 0
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			c.removeLocked(key)
			n++
		}
	}
	// a fetch outliving the TTL is not protected by its marks any more
	for t, m := range c.marks {
		if now.Sub(m.at) > c.ttl {
			delete(c.marks, t)
		}
	}
	for tagType, m := range c.typeMarks {
		if now.Sub(m.at) > c.ttl {
			delete(c.typeMarks, tagType)
		}
	}
	if n > 0 {
		c.logger.Debug("Expired cache entries removed", zap.Int("count", n))
	}
	return n
}
