package model

import (
	"time"

	"github.com/google/uuid"
)

// PriceTier is the price, duration and cohort flag of a premium purchase.
// Once embedded in an order it is never recomputed.
type PriceTier struct {
	Amount         int64 `json:"amount"`
	IsEarlyBird    bool  `json:"is_early_bird"`
	DurationMonths int   `json:"duration_months"`
}

// IsZero returns true if no tier has been recorded.
func (t PriceTier) IsZero() bool {
	return t.Amount == 0 && !t.IsEarlyBird && t.DurationMonths == 0
}

// Account represents a chat account together with its entitlement,
// quota and engagement state.
type Account struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Username string    `json:"username" gorm:"uniqueIndex;not null"`
	Email    string    `json:"email" gorm:"uniqueIndex;not null"`

	// Entitlement
	IsPremium            bool       `json:"is_premium" gorm:"not null;default:false"`
	PremiumExpiry        *time.Time `json:"premium_expiry,omitempty"`
	LockedPriceAmount    int64      `json:"-" gorm:"column:locked_price_amount;not null;default:0"`
	LockedPriceEarlyBird bool       `json:"-" gorm:"column:locked_price_early_bird;not null;default:false"`
	LockedPriceMonths    int        `json:"-" gorm:"column:locked_price_months;not null;default:0"`

	// Signup cohort
	SignupSequenceNumber int64 `json:"signup_sequence_number" gorm:"not null;index"`
	IsEarlyBirdSignup    bool  `json:"is_early_bird_signup" gorm:"not null;default:false;index"`

	// Quota
	DailyUsedSeconds    int64 `json:"daily_used_seconds" gorm:"not null;default:0"`
	ReservedSeconds     int64 `json:"reserved_seconds" gorm:"not null;default:0"`
	LastResetDay        Day   `json:"last_reset_day" gorm:"type:varchar(10);not null"`
	LifetimeUsedSeconds int64 `json:"lifetime_used_seconds" gorm:"not null;default:0"`

	// Engagement
	XP              int64 `json:"xp" gorm:"column:xp;not null;default:0"`
	Level           int   `json:"level" gorm:"not null;default:1"`
	StreakDays      int   `json:"streak_days" gorm:"not null;default:0"`
	LastActivityDay Day   `json:"last_activity_day,omitempty" gorm:"type:varchar(10)"`

	Version   int64     `json:"-" gorm:"not null;default:1"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (Account) TableName() string {
	return "accounts"
}

// LockedTier returns the tier the account last purchased at.
func (a *Account) LockedTier() PriceTier {
	return PriceTier{
		Amount:         a.LockedPriceAmount,
		IsEarlyBird:    a.LockedPriceEarlyBird,
		DurationMonths: a.LockedPriceMonths,
	}
}

// SetLockedTier records the purchased tier on the account.
func (a *Account) SetLockedTier(t PriceTier) {
	a.LockedPriceAmount = t.Amount
	a.LockedPriceEarlyBird = t.IsEarlyBird
	a.LockedPriceMonths = t.DurationMonths
}

// Clone returns a deep copy of the account.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	if a.PremiumExpiry != nil {
		exp := *a.PremiumExpiry
		c.PremiumExpiry = &exp
	}
	return &c
}

// EntitlementStatus is the read model returned to callers deciding whether
// an account may use the metered resource.
type EntitlementStatus struct {
	AccountID            uuid.UUID  `json:"account_id"`
	IsUnlimited          bool       `json:"is_unlimited"`
	RemainingSeconds     int64      `json:"remaining_seconds"`
	FormattedRemaining   string     `json:"formatted_remaining"`
	DailyCapacitySeconds int64      `json:"daily_capacity_seconds"`
	PremiumExpiry        *time.Time `json:"premium_expiry,omitempty"`
}

// ProfileStats is the engagement read model.
type ProfileStats struct {
	AccountID           uuid.UUID `json:"account_id"`
	XP                  int64     `json:"xp"`
	Level               int       `json:"level"`
	XPToNextLevel       int64     `json:"xp_to_next_level"`
	StreakDays          int       `json:"streak_days"`
	LifetimeUsedSeconds int64     `json:"lifetime_used_seconds"`
	IsEarlyBirdSignup   bool      `json:"is_early_bird_signup"`
	LockedTier          PriceTier `json:"locked_tier"`
}
