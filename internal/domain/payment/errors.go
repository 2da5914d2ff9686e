package payment

import "errors"

var (
	// ErrOrderNotFound is returned when a confirmation names an unknown order.
	ErrOrderNotFound = errors.New("order not found")

	// ErrInvalidPaymentProof is returned when the provider proof does not verify.
	ErrInvalidPaymentProof = errors.New("invalid payment proof")

	// ErrAccountNotFound is returned when the ordering account does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrInvalidTransition is returned for a status change the order
	// state machine does not allow.
	ErrInvalidTransition = errors.New("invalid order transition")

	// ErrProviderNotAvailable is returned when a payment provider is not configured.
	ErrProviderNotAvailable = errors.New("provider not available")

	// ErrConfirmViaNotification is returned when the order's provider does
	// not accept client confirmations. The order is left untouched.
	ErrConfirmViaNotification = errors.New("order is confirmed by provider notification")

	// ErrProviderFailure wraps failures of the payment provider itself.
	ErrProviderFailure = errors.New("payment provider failure")

	// ErrForbidden is returned when an order belongs to another account.
	ErrForbidden = errors.New("forbidden")
)
