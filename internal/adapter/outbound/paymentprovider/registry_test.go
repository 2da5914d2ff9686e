package paymentprovider

import (
	"testing"

	"github.com/ariachat/server/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry("")
	r.Register(newTestRazorpay(""))
	r.Register(NewStripeProvider(nil, StripeConfig{}, zap.NewNop()))

	assert.Equal(t, model.ProviderRazorpay, r.Default())
	assert.Equal(t, []string{model.ProviderRazorpay, model.ProviderStripe}, r.List())

	g, err := r.Gateway(model.ProviderStripe)
	require.NoError(t, err)
	assert.Equal(t, model.ProviderStripe, g.Name())

	v, err := r.Verifier(model.ProviderRazorpay)
	require.NoError(t, err)
	assert.Equal(t, model.ProviderRazorpay, v.Name())

	_, err = r.Gateway(model.ProviderAlipay)
	assert.ErrorIs(t, err, ErrProviderNotFound)
	_, err = r.Verifier("paypal")
	assert.ErrorIs(t, err, ErrProviderNotFound)
}

func TestHeaderLookup(t *testing.T) {
	h := map[string]string{"stripe-signature": "t=1,v1=abc"}
	assert.Equal(t, "t=1,v1=abc", header(h, "Stripe-Signature"))
	assert.Equal(t, "", header(h, "X-Razorpay-Signature"))
}
