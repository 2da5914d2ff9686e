// Package quota tracks the per-account daily allowance of chat seconds.
package quota

import (
	"fmt"
	"time"

	"github.com/ariachat/server/internal/model"
)

// DefaultDailySeconds is the free daily allowance (20 minutes).
const DefaultDailySeconds int64 = 20 * 60

// Tracker applies the daily reset and computes remaining allowance.
// Every read or write reconciles the account against the current day first.
type Tracker struct {
	capacity int64
	loc      *time.Location
}

// NewTracker creates a tracker with the given daily capacity in seconds.
// Days are computed in loc.
func NewTracker(capacity int64, loc *time.Location) *Tracker {
	if capacity <= 0 {
		capacity = DefaultDailySeconds
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Tracker{capacity: capacity, loc: loc}
}

// Capacity returns the daily allowance in seconds.
func (t *Tracker) Capacity() int64 {
	return t.capacity
}

// Today returns the calendar day of now in the tracker's location.
func (t *Tracker) Today(now time.Time) model.Day {
	return model.DayOf(now.In(t.loc))
}

// Reset zeroes the daily counter and any outstanding reservation if the
// account was last reset on another day. It reports whether the account
// changed. A reservation settled after midnight releases against zero,
// which Release clamps.
func (t *Tracker) Reset(acc *model.Account, now time.Time) bool {
	today := t.Today(now)
	if acc.LastResetDay == today {
		return false
	}
	acc.DailyUsedSeconds = 0
	acc.ReservedSeconds = 0
	acc.LastResetDay = today
	return true
}

// Remaining returns the seconds left today, never negative.
func (t *Tracker) Remaining(acc *model.Account, now time.Time) int64 {
	t.Reset(acc, now)
	left := t.capacity - acc.DailyUsedSeconds - acc.ReservedSeconds
	if left < 0 {
		return 0
	}
	return left
}

// Debit charges seconds to both the daily and lifetime counters. Going past
// the daily capacity is allowed; admission control bounds the overshoot.
func (t *Tracker) Debit(acc *model.Account, seconds int64, now time.Time) *model.Account {
	t.Reset(acc, now)
	if seconds < 0 {
		seconds = 0
	}
	acc.DailyUsedSeconds += seconds
	acc.LifetimeUsedSeconds += seconds
	return acc
}

// Reserve sets aside up to seconds of today's allowance and returns the
// amount reserved. It returns 0 when nothing is left.
func (t *Tracker) Reserve(acc *model.Account, seconds int64, now time.Time) int64 {
	left := t.Remaining(acc, now)
	if left == 0 || seconds <= 0 {
		return 0
	}
	if seconds > left {
		seconds = left
	}
	acc.ReservedSeconds += seconds
	return seconds
}

// Release returns a reservation.
func (t *Tracker) Release(acc *model.Account, seconds int64) {
	if seconds <= 0 {
		return
	}
	acc.ReservedSeconds -= seconds
	if acc.ReservedSeconds < 0 {
		acc.ReservedSeconds = 0
	}
}

// FormatRemaining renders seconds as MM:SS, or "Unlimited".
func FormatRemaining(seconds int64, unlimited bool) string {
	if unlimited {
		return "Unlimited"
	}
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
