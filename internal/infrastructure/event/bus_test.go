package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/bizconsole/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New())}
}

type recorder struct {
	mu      sync.Mutex
	handled []shared.DomainEvent
}

func (r *recorder) handler(err error, types ...string) shared.EventHandler {
	return HandlerFunc(func(ctx context.Context, ev shared.DomainEvent) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.handled = append(r.handled, ev)
		return err
	}, types...)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handled)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	rec := &recorder{}
	bus.Subscribe(rec.handler(nil, "LeadConverted"))

	ev := newTestEvent("LeadConverted")
	require.NoError(t, bus.Publish(context.Background(), ev, newTestEvent("Other")))

	require.Equal(t, 1, rec.count())
	assert.Equal(t, ev, rec.handled[0])
}

func TestInMemoryEventBus_Wildcard(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	rec := &recorder{}
	bus.Subscribe(rec.handler(nil))

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("A"), newTestEvent("B")))
	assert.Equal(t, 2, rec.count())
}

func TestInMemoryEventBus_HandlerErrorsAreLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	bus := NewInMemoryEventBus(zap.New(core))

	failing := &recorder{}
	panicking := HandlerFunc(func(ctx context.Context, ev shared.DomainEvent) error {
		panic("boom")
	}, "A")
	ok := &recorder{}
	bus.Subscribe(failing.handler(errors.New("handler error"), "A"))
	bus.Subscribe(panicking)
	bus.Subscribe(ok.handler(nil, "A"))

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("A")))

	assert.Equal(t, 1, failing.count())
	assert.Equal(t, 1, ok.count())
	assert.Equal(t, 2, logs.FilterMessage("event handler failed").Len())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	rec := &recorder{}
	h := rec.handler(nil, "A")
	bus.Subscribe(h)

	_ = bus.Publish(context.Background(), newTestEvent("A"))
	bus.Unsubscribe(h)
	_ = bus.Publish(context.Background(), newTestEvent("A"))

	assert.Equal(t, 1, rec.count())
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	require.NoError(t, bus.Start(context.Background()))
	require.NoError(t, bus.Stop(context.Background()))
}
