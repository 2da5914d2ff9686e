package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus represents the status of a purchase order.
type OrderStatus string

const (
	OrderStatusCreated OrderStatus = "created"
	OrderStatusPaid    OrderStatus = "paid"
	OrderStatusFailed  OrderStatus = "failed"
)

// String returns the string representation of the status.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid checks if the status is a valid order status.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusCreated, OrderStatusPaid, OrderStatusFailed:
		return true
	}
	return false
}

// IsTerminal returns true if the status is a terminal state.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusPaid || s == OrderStatusFailed
}

// Order represents a premium purchase. The tier is snapshotted at creation
// and applied unchanged at confirmation.
type Order struct {
	ID        uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey"`
	OrderID   string      `json:"order_id" gorm:"uniqueIndex;not null"`
	ReceiptNo string      `json:"receipt_no" gorm:"uniqueIndex;not null"`
	AccountID uuid.UUID   `json:"account_id" gorm:"type:uuid;not null;index"`
	Provider  string      `json:"provider" gorm:"not null"`
	Currency  string      `json:"currency" gorm:"not null"`
	Status    OrderStatus `json:"status" gorm:"not null;index"`

	// Amount in major currency units.
	AmountSnapshot int64 `json:"amount"`
	TierAmount     int64 `json:"-" gorm:"not null"`
	TierEarlyBird  bool  `json:"-" gorm:"not null;default:false"`
	TierMonths     int   `json:"-" gorm:"not null"`

	ProviderPaymentID string     `json:"provider_payment_id,omitempty"`
	FailureReason     string     `json:"failure_reason,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	PaidAt            *time.Time `json:"paid_at,omitempty"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// TableName returns the database table name.
func (Order) TableName() string {
	return "orders"
}

// Tier returns the tier snapshot taken when the order was created.
func (o *Order) Tier() PriceTier {
	return PriceTier{Amount: o.TierAmount, IsEarlyBird: o.TierEarlyBird, DurationMonths: o.TierMonths}
}

// SetTier embeds the tier snapshot.
func (o *Order) SetTier(t PriceTier) {
	o.TierAmount = t.Amount
	o.TierEarlyBird = t.IsEarlyBird
	o.TierMonths = t.DurationMonths
}

// IsPaid returns true if the order has been paid.
func (o *Order) IsPaid() bool {
	return o.Status == OrderStatusPaid
}

// OrderTransition carries the fields written alongside a status change.
type OrderTransition struct {
	At                time.Time
	ProviderPaymentID string
	FailureReason     string
}

// CheckoutOrder is returned by order creation; the client forwards it to
// the provider's checkout widget.
type CheckoutOrder struct {
	OrderID        string    `json:"order_id"`
	ReceiptNo      string    `json:"receipt_no"`
	Provider       string    `json:"provider"`
	Amount         int64     `json:"amount"`
	ProviderAmount int64     `json:"provider_amount"`
	Currency       string    `json:"currency"`
	Tier           PriceTier `json:"tier"`
	KeyID          string    `json:"key_id,omitempty"`
	ClientSecret   string    `json:"client_secret,omitempty"`
	PayURL         string    `json:"pay_url,omitempty"`
}

// ConfirmResult is the outcome of a confirmation attempt.
type ConfirmResult struct {
	Success          bool        `json:"success"`
	OrderID          string      `json:"order_id"`
	Status           OrderStatus `json:"status"`
	AlreadyProcessed bool        `json:"already_processed"`
	PremiumExpiry    *time.Time  `json:"premium_expiry,omitempty"`
}
