package event

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/bizconsole/backend/internal/domain/shared"
	"github.com/bizconsole/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// InMemoryEventBus dispatches domain events synchronously to subscribed handlers.
// Handler failures are logged and never fail the publishing operation.
type InMemoryEventBus struct {
	mu       sync.RWMutex
	byType   map[string][]shared.EventHandler
	wildcard []shared.EventHandler
	logger   *zap.Logger
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(log *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		byType: make(map[string][]shared.EventHandler),
		logger: log,
	}
}

// Publish publishes events to all registered handlers in order
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, ev := range events {
		for _, h := range b.handlers(ev.EventType()) {
			if err := b.dispatch(ctx, h, ev); err != nil {
				b.log(ctx).Warn("event handler failed",
					zap.String("event_type", ev.EventType()),
					zap.String("event_id", ev.EventID().String()),
					zap.String("aggregate_id", ev.AggregateID().String()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// Subscribe registers a handler. Without explicit types the handler's own
// EventTypes are used; an empty list subscribes to every event.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.mu.Lock()
	if len(eventTypes) == 0 {
		b.wildcard = append(b.wildcard, handler)
	}
	for _, t := range eventTypes {
		b.byType[t] = append(b.byType[t], handler)
	}
	b.mu.Unlock()
	b.logger.Debug("handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.wildcard = slices.DeleteFunc(b.wildcard, func(h shared.EventHandler) bool { return h == handler })
	for t, hs := range b.byType {
		hs = slices.DeleteFunc(hs, func(h shared.EventHandler) bool { return h == handler })
		if len(hs) == 0 {
			delete(b.byType, t)
			continue
		}
		b.byType[t] = hs
	}
}

// handlers returns a snapshot of type-specific handlers followed by wildcard handlers
func (b *InMemoryEventBus) handlers(eventType string) []shared.EventHandler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]shared.EventHandler, 0, len(b.byType[eventType])+len(b.wildcard))
	out = append(out, b.byType[eventType]...)
	return append(out, b.wildcard...)
}

// Start is a no-op; dispatch is synchronous
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.logger.Info("event bus started")
	return nil
}

// Stop is a no-op; dispatch is synchronous
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.logger.Info("event bus stopped")
	return nil
}

func (b *InMemoryEventBus) dispatch(ctx context.Context, h shared.EventHandler, ev shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h.Handle(ctx, ev)
}

func (b *InMemoryEventBus) log(ctx context.Context) *zap.Logger {
	if id := logger.GetRequestID(ctx); id != "" {
		return b.logger.With(zap.String("request_id", id))
	}
	return b.logger
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)

// funcHandler adapts a function to shared.EventHandler. It is always used
// through a pointer so the registry can compare handlers.
type funcHandler struct {
	types []string
	fn    func(ctx context.Context, ev shared.DomainEvent) error
}

// HandlerFunc wraps fn as a handler subscribed to the given event types
func HandlerFunc(fn func(ctx context.Context, ev shared.DomainEvent) error, eventTypes ...string) shared.EventHandler {
	return &funcHandler{types: eventTypes, fn: fn}
}

func (h *funcHandler) Handle(ctx context.Context, ev shared.DomainEvent) error {
	return h.fn(ctx, ev)
}

func (h *funcHandler) EventTypes() []string {
	return h.types
}
