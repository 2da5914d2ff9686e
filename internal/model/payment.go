package model

import (
	"time"

	"github.com/google/uuid"
)

// Payment provider names.
const (
	ProviderRazorpay = "razorpay"
	ProviderStripe   = "stripe"
	ProviderAlipay   = "alipay"
)

// PaymentProof is the evidence a provider or client presents to confirm an order.
// Which fields are used depends on the provider.
type PaymentProof struct {
	Provider  string            `json:"provider"`
	OrderID   string            `json:"order_id"`
	PaymentID string            `json:"payment_id"`
	Signature string            `json:"signature"`
	Payload   []byte            `json:"-"`
	Headers   map[string]string `json:"-"`
}

// GatewayOrderRequest asks a provider to create a checkout order.
type GatewayOrderRequest struct {
	ReceiptNo   string
	AccountID   uuid.UUID
	Amount      int64 // minor units
	Currency    string
	Description string
}

// GatewayOrder is the provider's response to order creation.
type GatewayOrder struct {
	OrderID      string
	KeyID        string
	ClientSecret string
	PayURL       string
}

// WebhookEvent is an audit row for every confirmation attempt.
type WebhookEvent struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Provider  string    `gorm:"not null;index"`
	EventID   string    `gorm:"not null;index"`
	OrderID   string    `gorm:"index"`
	Valid     bool      `gorm:"not null;default:false"`
	Processed bool      `gorm:"not null;default:false"`
	Error     *string
	CreatedAt time.Time
}

// TableName returns the database table name.
func (WebhookEvent) TableName() string {
	return "webhook_events"
}
