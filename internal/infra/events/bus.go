package events

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ariachat/server/internal/port/outbound"
)

// Bus dispatches events synchronously to in-process observers. Observers
// cannot fail the publisher: errors and panics are logged and dropped.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *zap.Logger
}

// NewBus creates an empty bus.
func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		handlers: make(map[string][]Handler),
		logger:   logger.Named("events"),
	}
}

// Register subscribes handler to every type it lists.
func (b *Bus) Register(handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range handler.Handles() {
		b.handlers[t] = append(b.handlers[t], handler)
	}
}

// Subscribe registers fn for the given event types.
func (b *Bus) Subscribe(fn func(context.Context, Event) error, eventTypes ...string) {
	b.Register(funcHandler{types: eventTypes, fn: fn})
}

// Publish delivers event to its subscribers in registration order.
func (b *Bus) Publish(ctx context.Context, event outbound.DomainEvent) error {
	e, ok := event.(Event)
	if !ok {
		return fmt.Errorf("publish %s: event %T lacks an envelope", event.EventType(), event)
	}

	b.mu.RLock()
	handlers := b.handlers[e.EventType()]
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := b.deliver(ctx, h, e); err != nil {
			b.logger.Error("event handler failed",
				zap.String("event_type", e.EventType()),
				zap.String("event_id", e.EventID().String()),
				zap.String("account_id", e.AccountID().String()),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (b *Bus) deliver(ctx context.Context, h Handler, e Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h.Handle(ctx, e)
}

var _ outbound.EventPublisherPort = (*Bus)(nil)
