// Package pricing determines the premium tier visible to a signup cohort.
package pricing

import "github.com/ariachat/server/internal/model"

// Config holds the cohort threshold and the two tiers.
type Config struct {
	CohortThreshold int64
	EarlyBird       model.PriceTier
	Standard        model.PriceTier
}

// DefaultConfig returns the launch pricing.
func DefaultConfig() Config {
	return Config{
		CohortThreshold: 50,
		EarlyBird:       model.PriceTier{Amount: 89, IsEarlyBird: true, DurationMonths: 3},
		Standard:        model.PriceTier{Amount: 121, IsEarlyBird: false, DurationMonths: 1},
	}
}

// Engine is a pure function of the total account count.
type Engine struct {
	cfg Config
}

// NewEngine creates a pricing engine.
func NewEngine(cfg Config) *Engine {
	cfg.EarlyBird.IsEarlyBird = true
	cfg.Standard.IsEarlyBird = false
	return &Engine{cfg: cfg}
}

// CurrentTier returns the tier offered while totalAccountCount accounts exist.
// It must be evaluated once, at order creation.
func (e *Engine) CurrentTier(totalAccountCount int64) model.PriceTier {
	if totalAccountCount < e.cfg.CohortThreshold {
		return e.cfg.EarlyBird
	}
	return e.cfg.Standard
}

// SlotsRemaining returns how many early-bird places are left.
func (e *Engine) SlotsRemaining(totalAccountCount int64) int64 {
	if left := e.cfg.CohortThreshold - totalAccountCount; left > 0 {
		return left
	}
	return 0
}

// IsEarlyBirdSignup reports whether the signup sequence number falls in the
// early-bird cohort.
func (e *Engine) IsEarlyBirdSignup(signupSequenceNumber int64) bool {
	return signupSequenceNumber <= e.cfg.CohortThreshold
}
