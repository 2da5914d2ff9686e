package paymentprovider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ariachat/server/internal/model"
	"github.com/ariachat/server/internal/port/outbound"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

const testStripeSecret = "whsec_test"

func stripeEvent(eventType, intentID string) []byte {
	return []byte(`{"id":"evt_1","object":"event","api_version":"2020-08-27","type":"` + eventType +
		`","data":{"object":{"id":"` + intentID + `","object":"payment_intent","status":"succeeded","latest_charge":"ch_1"}}}`)
}

func signStripe(payload []byte, secret string) map[string]string {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload: payload,
		Secret:  secret,
	})
	return map[string]string{"Stripe-Signature": signed.Header}
}

func TestStripeProvider_Webhook(t *testing.T) {
	ctx := context.Background()
	p := NewStripeProvider(nil, StripeConfig{APIKey: "sk_test", WebhookSecret: testStripeSecret}, zap.NewNop())

	t.Run("valid", func(t *testing.T) {
		payload := stripeEvent("payment_intent.succeeded", "pi_123")
		proof, err := p.ParseNotification(ctx, payload, signStripe(payload, testStripeSecret))
		require.NoError(t, err)
		assert.Equal(t, "pi_123", proof.OrderID)
		assert.Equal(t, "ch_1", proof.PaymentID)

		ok, err := p.VerifySignature(ctx, proof)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("wrong secret", func(t *testing.T) {
		payload := stripeEvent("payment_intent.succeeded", "pi_123")
		proof, err := p.ParseNotification(ctx, payload, signStripe(payload, "whsec_other"))
		require.NoError(t, err)

		ok, err := p.VerifySignature(ctx, proof)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("signed event for another intent", func(t *testing.T) {
		payload := stripeEvent("payment_intent.succeeded", "pi_other")
		proof := &model.PaymentProof{OrderID: "pi_123", Payload: payload, Headers: signStripe(payload, testStripeSecret)}

		ok, err := p.VerifySignature(ctx, proof)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("ignored event", func(t *testing.T) {
		payload := stripeEvent("payment_intent.created", "pi_123")
		_, err := p.ParseNotification(ctx, payload, signStripe(payload, testStripeSecret))
		assert.ErrorIs(t, err, outbound.ErrNotificationIgnored)
	})
}

func TestStripeProvider_API(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/payment_intents":
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "12100", r.PostForm.Get("amount"))
			assert.Equal(t, "inr", r.PostForm.Get("currency"))
			assert.Equal(t, "01HRECEIPT", r.PostForm.Get("metadata[receipt_no]"))
			_, _ = w.Write([]byte(`{"id":"pi_123","object":"payment_intent","client_secret":"pi_123_secret","status":"requires_payment_method"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/v1/payment_intents/pi_123":
			_, _ = w.Write([]byte(`{"id":"pi_123","object":"payment_intent","status":"succeeded"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/v1/payment_intents/pi_pending":
			_, _ = w.Write([]byte(`{"id":"pi_pending","object":"payment_intent","status":"processing"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"not found"}}`))
		}
	}))
	defer server.Close()

	ctx := context.Background()
	p := NewStripeProvider(server.Client(), StripeConfig{
		APIKey:         "sk_test",
		PublishableKey: "pk_test",
		BaseURL:        server.URL,
	}, zap.NewNop())

	order, err := p.CreateOrder(ctx, &model.GatewayOrderRequest{
		ReceiptNo: "01HRECEIPT",
		AccountID: uuid.New(),
		Amount:    12100,
		Currency:  "INR",
	})
	require.NoError(t, err)
	assert.Equal(t, "pi_123", order.OrderID)
	assert.Equal(t, "pi_123_secret", order.ClientSecret)
	assert.Equal(t, "pk_test", order.KeyID)

	ok, err := p.VerifySignature(ctx, &model.PaymentProof{OrderID: "pi_123"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.VerifySignature(ctx, &model.PaymentProof{OrderID: "pi_pending"})
	require.NoError(t, err)
	assert.False(t, ok)
}
