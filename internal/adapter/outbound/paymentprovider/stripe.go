package paymentprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ariachat/server/internal/model"
	"github.com/ariachat/server/internal/port/outbound"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

const stripeSignatureHeader = "Stripe-Signature"

// StripeConfig holds Stripe configuration.
type StripeConfig struct {
	APIKey           string
	PublishableKey   string
	WebhookSecret    string
	WebhookTolerance time.Duration
	// BaseURL overrides the API endpoint (tests, stripe-mock).
	BaseURL string
}

// StripeProvider creates payment intents and verifies webhook events.
type StripeProvider struct {
	intents paymentintent.Client
	cfg     StripeConfig
}

// NewStripeProvider creates a new Stripe provider.
func NewStripeProvider(httpClient *http.Client, cfg StripeConfig, logger *zap.Logger) *StripeProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	backendCfg := &stripe.BackendConfig{
		HTTPClient:    httpClient,
		LeveledLogger: logger.Named("stripe").Sugar(),
	}
	if cfg.BaseURL != "" {
		backendCfg.URL = stripe.String(cfg.BaseURL)
	}
	if cfg.WebhookTolerance <= 0 {
		cfg.WebhookTolerance = webhook.DefaultTolerance
	}
	return &StripeProvider{
		intents: paymentintent.Client{
			B:   stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg),
			Key: cfg.APIKey,
		},
		cfg: cfg,
	}
}

// Name returns the provider name.
func (p *StripeProvider) Name() string {
	return model.ProviderStripe
}

// CreateOrder creates a payment intent. The intent id is the order reference.
func (p *StripeProvider) CreateOrder(ctx context.Context, req *model.GatewayOrderRequest) (*model.GatewayOrder, error) {
	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(req.Amount),
		Currency:    stripe.String(strings.ToLower(req.Currency)),
		Description: stripe.String(req.Description),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: map[string]string{
			"receipt_no": req.ReceiptNo,
			"account_id": req.AccountID.String(),
		},
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.ReceiptNo)

	pi, err := p.intents.New(params)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	return &model.GatewayOrder{
		OrderID:      pi.ID,
		KeyID:        p.cfg.PublishableKey,
		ClientSecret: pi.ClientSecret,
	}, nil
}

type stripeIntentObject struct {
	ID           string `json:"id"`
	Object       string `json:"object"`
	Status       string `json:"status"`
	LatestCharge string `json:"latest_charge"`
}

// ParseNotification extracts the payment intent from a webhook body.
func (p *StripeProvider) ParseNotification(_ context.Context, payload []byte, headers map[string]string) (*model.PaymentProof, error) {
	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("decode webhook: %w", err)
	}
	intent, err := paidIntent(event)
	if err != nil {
		return nil, err
	}
	paymentID := intent.LatestCharge
	if paymentID == "" {
		paymentID = event.ID
	}
	return &model.PaymentProof{
		Provider:  model.ProviderStripe,
		OrderID:   intent.ID,
		PaymentID: paymentID,
		Signature: header(headers, stripeSignatureHeader),
		Payload:   payload,
		Headers:   headers,
	}, nil
}

// VerifySignature validates the Stripe-Signature header over the webhook
// body and checks that the event settles this intent. Without a webhook
// body the intent is fetched and must have succeeded.
func (p *StripeProvider) VerifySignature(ctx context.Context, proof *model.PaymentProof) (bool, error) {
	if len(proof.Payload) == 0 {
		return p.verifyIntent(ctx, proof)
	}
	if p.cfg.WebhookSecret == "" {
		return false, fmt.Errorf("stripe webhook secret not configured")
	}
	signature := proof.Signature
	if signature == "" {
		signature = header(proof.Headers, stripeSignatureHeader)
	}

	event, err := webhook.ConstructEventWithOptions(proof.Payload, signature, p.cfg.WebhookSecret, webhook.ConstructEventOptions{
		Tolerance:                p.cfg.WebhookTolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return false, nil
	}
	intent, err := paidIntent(event)
	if err != nil {
		return false, nil
	}
	return intent.ID == proof.OrderID, nil
}

func (p *StripeProvider) verifyIntent(ctx context.Context, proof *model.PaymentProof) (bool, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := p.intents.Get(proof.OrderID, params)
	if err != nil {
		return false, fmt.Errorf("get payment intent: %w", err)
	}
	return pi.ID == proof.OrderID && pi.Status == stripe.PaymentIntentStatusSucceeded, nil
}

func paidIntent(event stripe.Event) (*stripeIntentObject, error) {
	if event.Type != "payment_intent.succeeded" {
		return nil, fmt.Errorf("%w: stripe event %q", outbound.ErrNotificationIgnored, event.Type)
	}
	if event.Data == nil {
		return nil, fmt.Errorf("webhook has no data")
	}
	var intent stripeIntentObject
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return nil, fmt.Errorf("decode payment intent: %w", err)
	}
	if intent.ID == "" {
		return nil, fmt.Errorf("webhook has no payment intent id")
	}
	return &intent, nil
}

// Compile-time interface assertions
var _ Provider = (*StripeProvider)(nil)
