package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDay(t *testing.T) {
	d := DayOf(time.Date(2026, 2, 28, 13, 0, 0, 0, time.UTC))
	assert.Equal(t, Day("2026-02-28"), d)
	assert.Equal(t, Day("2026-03-01"), d.AddDays(1))
	assert.Equal(t, Day("2026-02-25"), d.AddDays(-3))

	n, err := d.DaysUntil(Day("2026-03-03"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = d.DaysUntil(d)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	assert.True(t, Day("").IsZero())

	_, err = ParseDay("2026-13-01")
	assert.Error(t, err)
	_, err = Day("").DaysUntil(d)
	assert.Error(t, err)
}

func TestAccount_CloneAndTier(t *testing.T) {
	exp := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	acc := &Account{PremiumExpiry: &exp}
	acc.SetLockedTier(PriceTier{Amount: 89, IsEarlyBird: true, DurationMonths: 3})

	c := acc.Clone()
	*c.PremiumExpiry = exp.Add(time.Hour)
	assert.Equal(t, exp, *acc.PremiumExpiry)
	assert.Equal(t, PriceTier{Amount: 89, IsEarlyBird: true, DurationMonths: 3}, c.LockedTier())
	assert.Nil(t, (*Account)(nil).Clone())
}

func TestOrderStatus(t *testing.T) {
	assert.False(t, OrderStatusCreated.IsTerminal())
	assert.True(t, OrderStatusPaid.IsTerminal())
	assert.True(t, OrderStatusFailed.IsTerminal())
	assert.False(t, OrderStatus("refunded").IsValid())
}
