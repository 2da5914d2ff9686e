package model

import (
	"time"

	"github.com/google/uuid"
)

// UsageEvent is one completed metered operation. Quota debit and XP award
// are both derived from the same event.
type UsageEvent struct {
	AccountID       uuid.UUID `json:"account_id"`
	SecondsConsumed int64     `json:"seconds_consumed"`
	XPGain          int64     `json:"xp_gain"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// Admission is the result of an admission check before a metered operation.
type Admission struct {
	AccountID       uuid.UUID `json:"account_id"`
	Unlimited       bool      `json:"unlimited"`
	ReservedSeconds int64     `json:"reserved_seconds"`
	AdmittedAt      time.Time `json:"admitted_at"`
}

// PricingInfo is the pricing read model shown before checkout.
type PricingInfo struct {
	Tier           PriceTier `json:"tier"`
	Currency       string    `json:"currency"`
	SlotsRemaining int64     `json:"slots_remaining"`
	TotalAccounts  int64     `json:"total_accounts"`
}

// AdminOverview aggregates account and revenue counters.
type AdminOverview struct {
	TotalAccounts     int64       `json:"total_accounts"`
	PremiumAccounts   int64       `json:"premium_accounts"`
	FreeAccounts      int64       `json:"free_accounts"`
	EarlyBirdAccounts int64       `json:"early_bird_accounts"`
	TotalRevenue      int64       `json:"total_revenue"`
	Currency          string      `json:"currency"`
	Pricing           PricingInfo `json:"pricing"`
	RecentAccounts    []*Account  `json:"recent_accounts"`
	RecentPayments    []*Order    `json:"recent_payments"`
}

// ChatReply is the result of a metered chat exchange.
type ChatReply struct {
	Reply           string             `json:"reply"`
	LimitReached    bool               `json:"limit_reached"`
	Cached          bool               `json:"cached"`
	SecondsConsumed int64              `json:"seconds_consumed"`
	Status          *EntitlementStatus `json:"status,omitempty"`
}
