package outbound

import (
	"context"
	"errors"

	"github.com/ariachat/server/internal/model"
)

// ErrNotificationIgnored marks provider callbacks that carry no payment
// outcome (e.g. pending or unrelated event types).
var ErrNotificationIgnored = errors.New("notification ignored")

// ErrProofUnsupported marks proofs a provider cannot judge at all, such as a
// client confirmation for a provider that only settles by notification. It
// says nothing about whether the payment happened.
var ErrProofUnsupported = errors.New("payment proof unsupported")

// PaymentGatewayPort creates checkout orders at a payment provider.
type PaymentGatewayPort interface {
	Name() string
	CreateOrder(ctx context.Context, req *model.GatewayOrderRequest) (*model.GatewayOrder, error)
}

// PaymentVerifierPort verifies a provider's payment proof.
// It is treated as a trusted oracle.
type PaymentVerifierPort interface {
	Name() string

	// VerifySignature reports whether the proof is authentic and shows a
	// completed payment. An error means verification could not be performed;
	// ErrProofUnsupported means this kind of proof is never accepted.
	VerifySignature(ctx context.Context, proof *model.PaymentProof) (bool, error)

	// ParseNotification extracts the order reference from a provider
	// callback without judging its authenticity.
	ParseNotification(ctx context.Context, payload []byte, headers map[string]string) (*model.PaymentProof, error)
}

// PaymentProviderRegistryPort resolves providers by name.
type PaymentProviderRegistryPort interface {
	Gateway(name string) (PaymentGatewayPort, error)
	Verifier(name string) (PaymentVerifierPort, error)
	Default() string
}
