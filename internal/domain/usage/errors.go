package usage

import (
	"errors"

	"github.com/ariachat/server/internal/port/outbound"
)

var (
	// ErrQuotaExceeded is a soft refusal: the daily allowance is spent.
	ErrQuotaExceeded = errors.New("daily quota exceeded")

	// ErrAccountNotFound is returned when the account does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountExists is returned when the username or email is taken.
	ErrAccountExists = errors.New("account already exists")

	// ErrInvalidUsage is returned for negative consumption.
	ErrInvalidUsage = errors.New("invalid usage amount")

	// ErrConcurrentModification surfaces only once conflict retries are exhausted.
	ErrConcurrentModification = outbound.ErrConcurrentModification
)

// ErrInvalidAccount is returned when registration data is missing.
var ErrInvalidAccount = errors.New("invalid account data")
