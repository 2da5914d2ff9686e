package events

import (
	"time"

	"github.com/ariachat/server/internal/model"
	"github.com/google/uuid"
)

// Event types.
const (
	TypeAccountRegistered = "AccountRegistered"
	TypeUsageRecorded     = "UsageRecorded"
	TypeQuotaExhausted    = "QuotaExhausted"
	TypePremiumGranted    = "PremiumGranted"
	TypePremiumExpired    = "PremiumExpired"
	TypePremiumRevoked    = "PremiumRevoked"
	TypeOrderCreated      = "OrderCreated"
	TypeOrderPaid         = "OrderPaid"
	TypeOrderFailed       = "OrderFailed"
)

// AccountRegisteredEvent is published after a new account is stored.
type AccountRegisteredEvent struct {
	Envelope
	SignupSequenceNumber int64 `json:"signup_sequence_number"`
	IsEarlyBird          bool  `json:"is_early_bird"`
}

// NewAccountRegisteredEvent creates an AccountRegisteredEvent.
func NewAccountRegisteredEvent(acc *model.Account, at time.Time) *AccountRegisteredEvent {
	return &AccountRegisteredEvent{
		Envelope:             NewEnvelope(TypeAccountRegistered, acc.ID, at),
		SignupSequenceNumber: acc.SignupSequenceNumber,
		IsEarlyBird:          acc.IsEarlyBirdSignup,
	}
}

// UsageRecordedEvent is published after a usage event is applied.
type UsageRecordedEvent struct {
	Envelope
	Usage     model.UsageEvent `json:"usage"`
	Unlimited bool             `json:"unlimited"`
	LevelUp   bool             `json:"level_up"`
}

// NewUsageRecordedEvent creates a UsageRecordedEvent.
func NewUsageRecordedEvent(usage model.UsageEvent, unlimited, levelUp bool) *UsageRecordedEvent {
	return &UsageRecordedEvent{
		Envelope:  NewEnvelope(TypeUsageRecorded, usage.AccountID, usage.OccurredAt),
		Usage:     usage,
		Unlimited: unlimited,
		LevelUp:   levelUp,
	}
}

// QuotaExhaustedEvent is published when admission is refused.
type QuotaExhaustedEvent struct {
	Envelope
	DailyUsedSeconds int64 `json:"daily_used_seconds"`
}

// NewQuotaExhaustedEvent creates a QuotaExhaustedEvent.
func NewQuotaExhaustedEvent(accountID uuid.UUID, used int64, at time.Time) *QuotaExhaustedEvent {
	return &QuotaExhaustedEvent{
		Envelope:         NewEnvelope(TypeQuotaExhausted, accountID, at),
		DailyUsedSeconds: used,
	}
}

// PremiumEvent is published when entitlement changes.
type PremiumEvent struct {
	Envelope
	PremiumExpiry  *time.Time `json:"premium_expiry,omitempty"`
	DurationMonths int        `json:"duration_months,omitempty"`
	Source         string     `json:"source"`
}

// NewPremiumEvent creates a PremiumEvent of the given type.
func NewPremiumEvent(eventType string, acc *model.Account, months int, source string, at time.Time) *PremiumEvent {
	return &PremiumEvent{
		Envelope:       NewEnvelope(eventType, acc.ID, at),
		PremiumExpiry:  acc.PremiumExpiry,
		DurationMonths: months,
		Source:         source,
	}
}

// OrderEvent is published on order creation and terminal transitions.
type OrderEvent struct {
	Envelope
	OrderID  string            `json:"order_id"`
	Provider string            `json:"provider"`
	Status   model.OrderStatus `json:"status"`
	Amount   int64             `json:"amount"`
	Tier     model.PriceTier   `json:"tier"`
	Reason   string            `json:"reason,omitempty"`
}

// NewOrderEvent creates an OrderEvent of the given type.
func NewOrderEvent(eventType string, order *model.Order, reason string, at time.Time) *OrderEvent {
	return &OrderEvent{
		Envelope: NewEnvelope(eventType, order.AccountID, at),
		OrderID:  order.OrderID,
		Provider: order.Provider,
		Status:   order.Status,
		Amount:   order.AmountSnapshot,
		Tier:     order.Tier(),
		Reason:   reason,
	}
}
