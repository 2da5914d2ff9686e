package outbound

import (
	"time"

	"github.com/ariachat/server/internal/model"
)

// ClockPort supplies the current instant and calendar day in the
// reference timezone.
type ClockPort interface {
	Now() time.Time
	Today() model.Day
	Location() *time.Location
}
