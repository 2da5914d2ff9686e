package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ariachat/server/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBus_Publish(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("dispatches in registration order", func(t *testing.T) {
		bus := NewBus(zap.NewNop())
		var calls []string
		bus.Subscribe(func(context.Context, Event) error {
			calls = append(calls, "first")
			return nil
		}, TypeOrderPaid)
		bus.Subscribe(func(context.Context, Event) error {
			calls = append(calls, "second")
			return nil
		}, TypeOrderPaid, TypeOrderFailed)

		order := &model.Order{OrderID: "order_1", AccountID: uuid.New(), Status: model.OrderStatusPaid}
		require.NoError(t, bus.Publish(ctx, NewOrderEvent(TypeOrderPaid, order, "", at)))
		assert.Equal(t, []string{"first", "second"}, calls)
	})

	t.Run("failing or panicking handlers do not stop others", func(t *testing.T) {
		bus := NewBus(zap.NewNop())
		called := false
		bus.Subscribe(func(context.Context, Event) error {
			return errors.New("boom")
		}, TypeUsageRecorded)
		bus.Subscribe(func(context.Context, Event) error {
			panic("observer bug")
		}, TypeUsageRecorded)
		bus.Subscribe(func(context.Context, Event) error {
			called = true
			return nil
		}, TypeUsageRecorded)

		usage := model.UsageEvent{AccountID: uuid.New(), SecondsConsumed: 30, OccurredAt: at}
		require.NoError(t, bus.Publish(ctx, NewUsageRecordedEvent(usage, false, false)))
		assert.True(t, called)
	})

	t.Run("ignores unhandled types", func(t *testing.T) {
		bus := NewBus(nil)
		acc := &model.Account{ID: uuid.New()}
		assert.NoError(t, bus.Publish(ctx, NewAccountRegisteredEvent(acc, at)))
	})

	t.Run("rejects events without an envelope", func(t *testing.T) {
		bus := NewBus(zap.NewNop())
		assert.Error(t, bus.Publish(ctx, bareEvent("custom")))
	})
}

func TestNewEnvelope(t *testing.T) {
	id := uuid.New()
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	e := NewEnvelope(TypePremiumGranted, id, at)

	assert.NotEqual(t, uuid.Nil, e.EventID())
	assert.NotEqual(t, e.EventID(), NewEnvelope(TypePremiumGranted, id, at).EventID())
	assert.Equal(t, TypePremiumGranted, e.EventType())
	assert.Equal(t, id, e.AccountID())
	assert.Equal(t, at, e.OccurredAt())
}

type bareEvent string

func (e bareEvent) EventType() string { return string(e) }
