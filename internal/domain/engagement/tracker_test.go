package engagement

import (
	"testing"
	"time"

	"github.com/ariachat/server/internal/model"
	"github.com/stretchr/testify/assert"
)

func at(day model.Day) time.Time {
	t, _ := day.Time()
	return t.Add(15 * time.Hour)
}

func TestTracker_Leveling(t *testing.T) {
	tr := NewTracker(DefaultConfig(), nil, time.UTC)

	t.Run("single crossing", func(t *testing.T) {
		acc := &model.Account{Level: 1, XP: 95}
		tr.RecordActivity(acc, 10, at("2026-04-10"))
		assert.Equal(t, int64(5), acc.XP)
		assert.Equal(t, 2, acc.Level)
	})

	t.Run("multiple levels in one call", func(t *testing.T) {
		acc := &model.Account{Level: 1}
		tr.RecordActivity(acc, 100+200+300+7, at("2026-04-10"))
		assert.Equal(t, 4, acc.Level)
		assert.Equal(t, int64(7), acc.XP)
	})

	t.Run("zero level treated as one", func(t *testing.T) {
		acc := &model.Account{}
		tr.RecordActivity(acc, 50, at("2026-04-10"))
		assert.Equal(t, 1, acc.Level)
	})

	t.Run("non-positive policy does not loop", func(t *testing.T) {
		flat := NewTracker(DefaultConfig(), func(int) int64 { return 0 }, time.UTC)
		acc := &model.Account{Level: 1}
		flat.RecordActivity(acc, 500, at("2026-04-10"))
		assert.Equal(t, 1, acc.Level)
		assert.Equal(t, int64(500), acc.XP)
	})
}

func TestTracker_Streak(t *testing.T) {
	tr := NewTracker(DefaultConfig(), LinearLevelPolicy, time.UTC)

	t.Run("first activity", func(t *testing.T) {
		acc := &model.Account{Level: 1}
		tr.RecordActivity(acc, 0, at("2026-04-10"))
		assert.Equal(t, 1, acc.StreakDays)
		assert.Equal(t, model.Day("2026-04-10"), acc.LastActivityDay)
	})

	t.Run("next day increments", func(t *testing.T) {
		acc := &model.Account{Level: 1, StreakDays: 4, LastActivityDay: "2026-04-10"}
		tr.RecordActivity(acc, 0, at("2026-04-11"))
		assert.Equal(t, 5, acc.StreakDays)
		assert.Equal(t, model.Day("2026-04-11"), acc.LastActivityDay)
	})

	t.Run("same day unchanged", func(t *testing.T) {
		acc := &model.Account{Level: 1, StreakDays: 4, LastActivityDay: "2026-04-10"}
		tr.RecordActivity(acc, 0, at("2026-04-10"))
		assert.Equal(t, 4, acc.StreakDays)
	})

	t.Run("gap resets to one", func(t *testing.T) {
		acc := &model.Account{Level: 1, StreakDays: 4, LastActivityDay: "2026-04-10"}
		tr.RecordActivity(acc, 0, at("2026-04-13"))
		assert.Equal(t, 1, acc.StreakDays)
		assert.Equal(t, model.Day("2026-04-13"), acc.LastActivityDay)
	})

	t.Run("month boundary", func(t *testing.T) {
		acc := &model.Account{Level: 1, StreakDays: 2, LastActivityDay: "2026-02-28"}
		tr.RecordActivity(acc, 0, at("2026-03-01"))
		assert.Equal(t, 3, acc.StreakDays)
	})
}

func TestTracker_XPForUsage(t *testing.T) {
	tr := NewTracker(DefaultConfig(), nil, nil)
	assert.Equal(t, int64(10), tr.XPForUsage(0))
	assert.Equal(t, int64(10), tr.XPForUsage(59))
	assert.Equal(t, int64(12), tr.XPForUsage(125))
	assert.Equal(t, int64(10), tr.XPForUsage(-30))

	flat := NewTracker(Config{BaseXPPerEvent: 5}, nil, nil)
	assert.Equal(t, int64(5), flat.XPForUsage(600))
	assert.Equal(t, int64(300), flat.XPNeededForLevel(3))
}
