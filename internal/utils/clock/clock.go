// Package clock supplies the current instant and calendar day in a single
// reference timezone.
package clock

import (
	"fmt"
	"sync"
	"time"

	"github.com/ariachat/server/internal/model"
	"github.com/ariachat/server/internal/port/outbound"
)

// DefaultTimezone is used when no timezone is configured.
const DefaultTimezone = "Asia/Kolkata"

// System is the wall clock in a fixed location.
type System struct {
	loc *time.Location
}

var _ outbound.ClockPort = (*System)(nil)

// NewSystem returns a wall clock in the named IANA timezone.
func NewSystem(timezone string) (*System, error) {
	if timezone == "" {
		timezone = DefaultTimezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	return &System{loc: loc}, nil
}

// Now returns the current instant in the reference location.
func (c *System) Now() time.Time {
	return time.Now().In(c.loc)
}

// Today returns the current calendar day in the reference location.
func (c *System) Today() model.Day {
	return model.DayOf(c.Now())
}

// Location returns the reference location.
func (c *System) Location() *time.Location {
	return c.loc
}

// Fake is a manually driven clock for tests.
type Fake struct {
	mu  sync.Mutex
	now time.Time
	loc *time.Location
}

var _ outbound.ClockPort = (*Fake)(nil)

// NewFake returns a clock frozen at now, reporting days in now's location.
func NewFake(now time.Time) *Fake {
	return &Fake{now: now, loc: now.Location()}
}

// Now returns the frozen instant.
func (c *Fake) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Today returns the calendar day of the frozen instant.
func (c *Fake) Today() model.Day {
	return model.DayOf(c.Now().In(c.loc))
}

// Location returns the reference location.
func (c *Fake) Location() *time.Location {
	return c.loc
}

// Set moves the clock to t.
func (c *Fake) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock forward by d.
func (c *Fake) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
