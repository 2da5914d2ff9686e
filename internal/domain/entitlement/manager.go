// Package entitlement manages the premium flag and its expiry.
package entitlement

import (
	"fmt"
	"time"

	"github.com/ariachat/server/internal/model"
)

// DaysPerMonth is the fixed month length used for premium durations.
const DaysPerMonth = 30

// StackingPolicy decides how a grant on a still-active account is measured.
type StackingPolicy string

const (
	// PolicyReset extends from now, discarding the remaining time.
	PolicyReset StackingPolicy = "reset"
	// PolicyStack extends from the current expiry when it is in the future.
	PolicyStack StackingPolicy = "stack"
)

// ParseStackingPolicy parses a configured policy name. Empty means reset.
func ParseStackingPolicy(s string) (StackingPolicy, error) {
	switch StackingPolicy(s) {
	case "", PolicyReset:
		return PolicyReset, nil
	case PolicyStack:
		return PolicyStack, nil
	}
	return "", fmt.Errorf("unknown stacking policy %q", s)
}

// Transition is a state change detected by a read.
type Transition int

const (
	TransitionNone Transition = iota
	// TransitionExpire flips an expired premium account back to free.
	TransitionExpire
)

// Manager evaluates and mutates entitlement state.
type Manager struct {
	policy StackingPolicy
}

// NewManager creates an entitlement manager.
func NewManager(policy StackingPolicy) *Manager {
	if policy == "" {
		policy = PolicyReset
	}
	return &Manager{policy: policy}
}

// Policy returns the configured stacking policy.
func (m *Manager) Policy() StackingPolicy {
	return m.policy
}

// IsUnlimited reports whether the account has active premium at now.
// It never mutates the account; a lapsed premium flag is returned as
// TransitionExpire for the caller to Apply and persist.
func (m *Manager) IsUnlimited(acc *model.Account, now time.Time) (bool, Transition) {
	if !acc.IsPremium {
		return false, TransitionNone
	}
	if acc.PremiumExpiry != nil && acc.PremiumExpiry.After(now) {
		return true, TransitionNone
	}
	return false, TransitionExpire
}

// Apply performs a transition returned by IsUnlimited. It reports whether
// the account changed.
func (m *Manager) Apply(acc *model.Account, tr Transition) bool {
	switch tr {
	case TransitionExpire:
		if !acc.IsPremium {
			return false
		}
		acc.IsPremium = false
		return true
	default:
		return false
	}
}

// GrantPremium activates premium for durationMonths fixed 30-day months.
func (m *Manager) GrantPremium(acc *model.Account, durationMonths int, now time.Time) *model.Account {
	if durationMonths < 0 {
		durationMonths = 0
	}
	start := now
	if m.policy == PolicyStack && acc.IsPremium && acc.PremiumExpiry != nil && acc.PremiumExpiry.After(now) {
		start = *acc.PremiumExpiry
	}
	expiry := start.Add(time.Duration(durationMonths*DaysPerMonth) * 24 * time.Hour)
	acc.IsPremium = true
	acc.PremiumExpiry = &expiry
	return acc
}

// Revoke ends premium immediately.
func (m *Manager) Revoke(acc *model.Account, now time.Time) *model.Account {
	acc.IsPremium = false
	if acc.PremiumExpiry != nil && acc.PremiumExpiry.After(now) {
		acc.PremiumExpiry = &now
	}
	return acc
}
