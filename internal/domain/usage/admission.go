package usage

import "fmt"

// AdmissionMode selects how concurrent requests are admitted against the
// daily allowance.
type AdmissionMode string

const (
	// AdmissionOptimistic checks remaining > 0 before the operation and debits
	// afterwards. Concurrent requests may overshoot the cap by at most one
	// operation each.
	AdmissionOptimistic AdmissionMode = "optimistic"

	// AdmissionReserve sets aside an estimate before the operation and
	// settles the actual amount afterwards.
	AdmissionReserve AdmissionMode = "reserve"
)

// DefaultEstimateSeconds is reserved per operation in reserve mode.
const DefaultEstimateSeconds int64 = 30

// ParseAdmissionMode parses a configured mode. Empty means optimistic.
func ParseAdmissionMode(s string) (AdmissionMode, error) {
	switch AdmissionMode(s) {
	case "", AdmissionOptimistic:
		return AdmissionOptimistic, nil
	case AdmissionReserve:
		return AdmissionReserve, nil
	}
	return "", fmt.Errorf("unknown admission mode %q", s)
}
