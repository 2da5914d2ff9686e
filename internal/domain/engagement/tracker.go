// Package engagement keeps XP, level and streak bookkeeping.
package engagement

import (
	"time"

	"github.com/ariachat/server/internal/model"
)

// LevelPolicy returns the XP needed to advance from level.
type LevelPolicy func(level int) int64

// LinearLevelPolicy requires level*100 XP to leave level.
func LinearLevelPolicy(level int) int64 {
	return int64(level) * 100
}

// Config controls XP awarded per usage event.
type Config struct {
	BaseXPPerEvent    int64
	SecondsPerBonusXP int64
}

// DefaultConfig awards 10 XP per event plus 1 XP per full minute.
func DefaultConfig() Config {
	return Config{BaseXPPerEvent: 10, SecondsPerBonusXP: 60}
}

// Tracker applies activity to engagement counters.
type Tracker struct {
	cfg    Config
	policy LevelPolicy
	loc    *time.Location
}

// NewTracker creates an engagement tracker. Days are computed in loc.
func NewTracker(cfg Config, policy LevelPolicy, loc *time.Location) *Tracker {
	if policy == nil {
		policy = LinearLevelPolicy
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Tracker{cfg: cfg, policy: policy, loc: loc}
}

// XPForUsage returns the XP a completed usage event of seconds is worth.
func (t *Tracker) XPForUsage(seconds int64) int64 {
	if seconds < 0 {
		seconds = 0
	}
	xp := t.cfg.BaseXPPerEvent
	if t.cfg.SecondsPerBonusXP > 0 {
		xp += seconds / t.cfg.SecondsPerBonusXP
	}
	return xp
}

// XPNeededForLevel returns the threshold to leave level.
func (t *Tracker) XPNeededForLevel(level int) int64 {
	return t.policy(level)
}

// RecordActivity adds xpGain, levels up as many times as it covers and
// updates the streak for now's day.
func (t *Tracker) RecordActivity(acc *model.Account, xpGain int64, now time.Time) *model.Account {
	if xpGain > 0 {
		acc.XP += xpGain
	}
	if acc.Level < 1 {
		acc.Level = 1
	}
	for {
		need := t.policy(acc.Level)
		if need <= 0 || acc.XP < need {
			break
		}
		acc.XP -= need
		acc.Level++
	}

	today := model.DayOf(now.In(t.loc))
	switch {
	case acc.LastActivityDay.IsZero():
		acc.StreakDays = 1
	default:
		gap, err := acc.LastActivityDay.DaysUntil(today)
		switch {
		case err != nil || gap > 1:
			acc.StreakDays = 1
		case gap == 1:
			acc.StreakDays++
		case gap == 0 && acc.StreakDays == 0:
			acc.StreakDays = 1
		}
	}
	if acc.LastActivityDay.IsZero() || acc.LastActivityDay < today {
		acc.LastActivityDay = today
	}
	return acc
}
