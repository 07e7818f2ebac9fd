package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// DefaultInvalidationChannel is the Pub/Sub channel tag invalidations travel on
	DefaultInvalidationChannel = "bizconsole:cache:invalidate"
	defaultCloseTimeout        = 5 * time.Second
)

// ErrSubscriptionRunning is returned by a second concurrent Subscribe
var ErrSubscriptionRunning = errors.New("subscription already running")

// TagInvalidator fans tag invalidations out to the other instances sharing
// a cache namespace
type TagInvalidator interface {
	Publish(ctx context.Context, tags []Tag) error
	// Subscribe blocks, invoking callback for invalidations published by
	// other instances, until ctx is cancelled or Close is called
	Subscribe(ctx context.Context, callback func(tags []Tag)) error
	Close() error
}

// invalidationMessage is the Pub/Sub payload
type invalidationMessage struct {
	Origin    string `json:"origin"`
	Tags      []Tag  `json:"tags"`
	Timestamp int64  `json:"timestamp"`
}

// RedisTagInvalidator implements TagInvalidator over Redis Pub/Sub. The
// caller keeps ownership of the client.
type RedisTagInvalidator struct {
	client   redis.UniversalClient
	channel  string
	origin   string
	logger   *zap.Logger
	cancelFn context.CancelFunc
	doneCh   chan struct{}
	doneOnce sync.Once
	mu       sync.Mutex
	running  bool
}

// RedisTagInvalidatorOption configures RedisTagInvalidator
type RedisTagInvalidatorOption func(*RedisTagInvalidator)

// WithInvalidationChannel sets the Pub/Sub channel name
func WithInvalidationChannel(channel string) RedisTagInvalidatorOption {
	return func(i *RedisTagInvalidator) {
		if channel != "" {
			i.channel = channel
		}
	}
}

// WithInvalidatorLogger sets the logger
func WithInvalidatorLogger(logger *zap.Logger) RedisTagInvalidatorOption {
	return func(i *RedisTagInvalidator) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// NewRedisTagInvalidator creates an invalidator with a random origin id, so
// an instance never re-applies its own messages
func NewRedisTagInvalidator(client redis.UniversalClient, opts ...RedisTagInvalidatorOption) *RedisTagInvalidator {
	i := &RedisTagInvalidator{
		client:  client,
		channel: DefaultInvalidationChannel,
		origin:  uuid.NewString(),
		logger:  zap.NewNop(),
		doneCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Publish broadcasts tags to the other instances
func (i *RedisTagInvalidator) Publish(ctx context.Context, tags []Tag) error {
	if len(tags) == 0 {
		return nil
	}
	data, err := json.Marshal(invalidationMessage{Origin: i.origin, Tags: tags, Timestamp: time.Now().UnixNano()})
	if err != nil {
		return fmt.Errorf("failed to marshal invalidation: %w", err)
	}
	if err := i.client.Publish(ctx, i.channel, data).Err(); err != nil {
		i.logger.Error("Failed to publish cache invalidation", zap.String("channel", i.channel), zap.Error(err))
		return fmt.Errorf("failed to publish invalidation: %w", err)
	}
	return nil
}

// Subscribe implements TagInvalidator
func (i *RedisTagInvalidator) Subscribe(ctx context.Context, callback func(tags []Tag)) error {
	i.mu.Lock()
	if i.running {
		i.mu.Unlock()
		return ErrSubscriptionRunning
	}
	i.running = true
	subCtx, cancel := context.WithCancel(ctx)
	i.cancelFn = cancel
	i.mu.Unlock()

	defer func() {
		cancel()
		i.mu.Lock()
		i.running = false
		i.mu.Unlock()
		i.doneOnce.Do(func() { close(i.doneCh) })
	}()

	pubsub := i.client.Subscribe(subCtx, i.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(subCtx); err != nil {
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}
	i.logger.Info("Subscribed to cache invalidation channel", zap.String("channel", i.channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-subCtx.Done():
			return subCtx.Err()
		case msg, ok := <-ch:
			if !ok {
				i.logger.Warn("Cache invalidation channel closed")
				return nil
			}
			var m invalidationMessage
			if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
				i.logger.Error("Failed to unmarshal cache invalidation", zap.String("payload", msg.Payload), zap.Error(err))
				continue
			}
			if m.Origin == i.origin {
				continue
			}
			callback(m.Tags)
		}
	}
}

// Close stops a running subscription and waits for it to return
func (i *RedisTagInvalidator) Close() error {
	i.mu.Lock()
	cancelFn := i.cancelFn
	i.mu.Unlock()
	if cancelFn == nil {
		return nil
	}
	cancelFn()
	select {
	case <-i.doneCh:
	case <-time.After(defaultCloseTimeout):
		i.logger.Warn("Timeout waiting for subscription to stop")
	}
	return nil
}

var _ TagInvalidator = (*RedisTagInvalidator)(nil)
