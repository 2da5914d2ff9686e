package paymentprovider

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/ariachat/server/internal/port/outbound"
)

// ErrProviderNotFound is returned for an unregistered provider name.
var ErrProviderNotFound = errors.New("payment provider not found")

// Provider is a gateway that can also verify its own payment proofs.
type Provider interface {
	outbound.PaymentGatewayPort
	outbound.PaymentVerifierPort
}

// Registry manages payment providers.
type Registry struct {
	mu          sync.RWMutex
	gateways    map[string]outbound.PaymentGatewayPort
	verifiers   map[string]outbound.PaymentVerifierPort
	defaultName string
}

// NewRegistry creates a new provider registry. defaultName is used when a
// checkout does not name a provider.
func NewRegistry(defaultName string) *Registry {
	return &Registry{
		gateways:    make(map[string]outbound.PaymentGatewayPort),
		verifiers:   make(map[string]outbound.PaymentVerifierPort),
		defaultName: defaultName,
	}
}

// Register registers a provider for both checkout and verification.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gateways[p.Name()] = p
	r.verifiers[p.Name()] = p
	if r.defaultName == "" {
		r.defaultName = p.Name()
	}
}

// Gateway returns the checkout gateway for name.
func (r *Registry) Gateway(name string) (outbound.PaymentGatewayPort, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.gateways[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, name)
	}
	return g, nil
}

// Verifier returns the proof verifier for name.
func (r *Registry) Verifier(name string) (outbound.PaymentVerifierPort, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.verifiers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, name)
	}
	return v, nil
}

// Default returns the default provider name.
func (r *Registry) Default() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultName
}

// List returns all registered provider names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.gateways))
	for name := range r.gateways {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// header looks up a header case-insensitively.
func header(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	canonical := http.CanonicalHeaderKey(name)
	if v, ok := headers[canonical]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// Compile-time interface assertions
var _ outbound.PaymentProviderRegistryPort = (*Registry)(nil)
