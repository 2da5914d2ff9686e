package payment

import (
	"fmt"

	"github.com/ariachat/server/internal/model"
)

// StateMachine validates order status transitions.
// created -> paid | failed; paid and failed are terminal.
type StateMachine struct {
	transitions map[model.OrderStatus][]model.OrderStatus
}

// NewStateMachine creates a new order state machine.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		transitions: map[model.OrderStatus][]model.OrderStatus{
			model.OrderStatusCreated: {model.OrderStatusPaid, model.OrderStatusFailed},
			model.OrderStatusPaid:    {},
			model.OrderStatusFailed:  {},
		},
	}
}

// CanTransition checks if a transition from `from` to `to` is valid.
func (sm *StateMachine) CanTransition(from, to model.OrderStatus) bool {
	for _, s := range sm.transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Validate returns ErrInvalidTransition when from -> to is not allowed.
func (sm *StateMachine) Validate(from, to model.OrderStatus) error {
	if !sm.CanTransition(from, to) {
		return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidTransition, from, to)
	}
	return nil
}
