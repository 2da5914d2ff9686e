package quota

import (
	"testing"
	"time"

	"github.com/ariachat/server/internal/model"
	"github.com/stretchr/testify/assert"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func newAccount(day model.Day) *model.Account {
	return &model.Account{LastResetDay: day, Level: 1}
}

func TestTracker_Remaining(t *testing.T) {
	tr := NewTracker(1200, ist)
	now := time.Date(2026, 4, 10, 12, 0, 0, 0, ist)
	acc := newAccount("2026-04-10")

	assert.Equal(t, int64(1200), tr.Remaining(acc, now))

	for _, s := range []int64{100, 250, 600} {
		tr.Debit(acc, s, now)
		assert.Equal(t, max(0, 1200-acc.DailyUsedSeconds), tr.Remaining(acc, now))
	}

	tr.Debit(acc, 900, now)
	assert.Equal(t, int64(1850), acc.DailyUsedSeconds)
	assert.Equal(t, int64(0), tr.Remaining(acc, now))
}

func TestTracker_ResetOncePerDay(t *testing.T) {
	tr := NewTracker(1200, ist)
	acc := newAccount("2026-04-09")
	acc.DailyUsedSeconds = 1200
	acc.LifetimeUsedSeconds = 5000

	morning := time.Date(2026, 4, 10, 8, 0, 0, 0, ist)
	assert.Equal(t, int64(1200), tr.Remaining(acc, morning))
	assert.Equal(t, model.Day("2026-04-10"), acc.LastResetDay)

	tr.Debit(acc, 300, morning)
	for i := 0; i < 10; i++ {
		assert.Equal(t, int64(900), tr.Remaining(acc, morning.Add(time.Duration(i)*time.Hour)))
		assert.Equal(t, model.Day("2026-04-10"), acc.LastResetDay)
	}
	assert.Equal(t, int64(5300), acc.LifetimeUsedSeconds)
}

func TestTracker_ResetAppliedBeforeDebitAtMidnight(t *testing.T) {
	tr := NewTracker(1200, ist)
	acc := newAccount("2026-04-09")
	acc.DailyUsedSeconds = 1500

	midnight := time.Date(2026, 4, 10, 0, 0, 0, 0, ist)
	tr.Debit(acc, 60, midnight)
	assert.Equal(t, int64(60), acc.DailyUsedSeconds)
	assert.Equal(t, int64(1140), tr.Remaining(acc, midnight))
}

func TestTracker_DayUsesReferenceLocation(t *testing.T) {
	tr := NewTracker(1200, ist)
	acc := newAccount("2026-04-09")
	acc.DailyUsedSeconds = 1000

	// 19:00 UTC on the 9th is already the 10th in IST.
	assert.True(t, tr.Reset(acc, time.Date(2026, 4, 9, 19, 0, 0, 0, time.UTC)))
	assert.Equal(t, int64(0), acc.DailyUsedSeconds)
}

func TestTracker_NegativeDebitClamped(t *testing.T) {
	tr := NewTracker(0, nil)
	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	acc := newAccount("2026-04-10")

	assert.Equal(t, DefaultDailySeconds, tr.Capacity())
	tr.Debit(acc, -50, now)
	assert.Equal(t, int64(0), acc.DailyUsedSeconds)
	assert.Equal(t, int64(0), acc.LifetimeUsedSeconds)
}

func TestTracker_ReserveAndRelease(t *testing.T) {
	tr := NewTracker(100, ist)
	now := time.Date(2026, 4, 10, 12, 0, 0, 0, ist)
	acc := newAccount("2026-04-10")
	acc.DailyUsedSeconds = 60

	assert.Equal(t, int64(30), tr.Reserve(acc, 30, now))
	assert.Equal(t, int64(10), tr.Remaining(acc, now))
	assert.Equal(t, int64(10), tr.Reserve(acc, 30, now))
	assert.Equal(t, int64(0), tr.Reserve(acc, 30, now))

	tr.Release(acc, 30)
	tr.Release(acc, 50)
	assert.Equal(t, int64(0), acc.ReservedSeconds)
}

func TestTracker_ResetDropsStaleReservation(t *testing.T) {
	tr := NewTracker(100, ist)
	acc := newAccount("2026-04-10")
	acc.DailyUsedSeconds = 40
	acc.ReservedSeconds = 30

	next := time.Date(2026, 4, 11, 0, 0, 1, 0, ist)
	assert.True(t, tr.Reset(acc, next))
	assert.Equal(t, int64(0), acc.ReservedSeconds)
	assert.Equal(t, int64(100), tr.Remaining(acc, next))

	tr.Release(acc, 30)
	assert.Equal(t, int64(0), acc.ReservedSeconds)
}

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		seconds   int64
		unlimited bool
		want      string
	}{
		{1200, false, "20:00"},
		{65, false, "01:05"},
		{0, false, "00:00"},
		{-5, false, "00:00"},
		{0, true, "Unlimited"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatRemaining(tt.seconds, tt.unlimited))
	}
}
