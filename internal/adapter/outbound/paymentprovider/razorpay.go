package paymentprovider

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ariachat/server/internal/model"
	"github.com/ariachat/server/internal/port/outbound"
)

const (
	defaultRazorpayBaseURL = "https://api.razorpay.com/v1"

	razorpaySignatureHeader = "X-Razorpay-Signature"
)

// RazorpayConfig holds Razorpay configuration.
type RazorpayConfig struct {
	BaseURL       string
	KeyID         string
	KeySecret     string
	WebhookSecret string
}

// RazorpayProvider creates Razorpay orders and verifies checkout and
// webhook signatures.
type RazorpayProvider struct {
	client *http.Client
	cfg    RazorpayConfig
}

// NewRazorpayProvider creates a new Razorpay provider.
func NewRazorpayProvider(client *http.Client, cfg RazorpayConfig) *RazorpayProvider {
	if client == nil {
		client = http.DefaultClient
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultRazorpayBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &RazorpayProvider{client: client, cfg: cfg}
}

// Name returns the provider name.
func (p *RazorpayProvider) Name() string {
	return model.ProviderRazorpay
}

// CreateOrder creates a Razorpay order for the amount in paise.
func (p *RazorpayProvider) CreateOrder(ctx context.Context, req *model.GatewayOrderRequest) (*model.GatewayOrder, error) {
	body := map[string]any{
		"amount":   req.Amount,
		"currency": req.Currency,
		"receipt":  req.ReceiptNo,
		"notes": map[string]string{
			"account_id":  req.AccountID.String(),
			"description": req.Description,
		},
	}
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/orders", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(p.cfg.KeyID, p.cfg.KeySecret)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("razorpay API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var order struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("razorpay returned no order id")
	}

	return &model.GatewayOrder{
		OrderID: order.ID,
		KeyID:   p.cfg.KeyID,
	}, nil
}

type razorpayWebhook struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
				Status  string `json:"status"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// paidRazorpayEvents are the webhook events that settle an order.
var paidRazorpayEvents = map[string]bool{
	"payment.captured": true,
	"order.paid":       true,
}

// ParseNotification extracts the order reference from a webhook body.
func (p *RazorpayProvider) ParseNotification(_ context.Context, payload []byte, headers map[string]string) (*model.PaymentProof, error) {
	var hook razorpayWebhook
	if err := json.Unmarshal(payload, &hook); err != nil {
		return nil, fmt.Errorf("decode webhook: %w", err)
	}
	if !paidRazorpayEvents[hook.Event] {
		return nil, fmt.Errorf("%w: razorpay event %q", outbound.ErrNotificationIgnored, hook.Event)
	}
	entity := hook.Payload.Payment.Entity
	if entity.OrderID == "" {
		return nil, fmt.Errorf("webhook has no order id")
	}
	return &model.PaymentProof{
		Provider:  model.ProviderRazorpay,
		OrderID:   entity.OrderID,
		PaymentID: entity.ID,
		Signature: header(headers, razorpaySignatureHeader),
		Payload:   payload,
		Headers:   headers,
	}, nil
}

// VerifySignature checks a webhook body signature when a payload is
// present, otherwise the checkout signature over "order_id|payment_id".
func (p *RazorpayProvider) VerifySignature(ctx context.Context, proof *model.PaymentProof) (bool, error) {
	if len(proof.Payload) > 0 {
		return p.verifyWebhook(ctx, proof)
	}
	if p.cfg.KeySecret == "" {
		return false, fmt.Errorf("razorpay key secret not configured")
	}
	if proof.PaymentID == "" || proof.Signature == "" {
		return false, nil
	}
	expected := hmacSHA256Hex(p.cfg.KeySecret, proof.OrderID+"|"+proof.PaymentID)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(proof.Signature))), nil
}

func (p *RazorpayProvider) verifyWebhook(ctx context.Context, proof *model.PaymentProof) (bool, error) {
	if p.cfg.WebhookSecret == "" {
		return false, fmt.Errorf("razorpay webhook secret not configured")
	}
	signature := proof.Signature
	if signature == "" {
		signature = header(proof.Headers, razorpaySignatureHeader)
	}
	expected := hmacSHA256Hex(p.cfg.WebhookSecret, string(proof.Payload))
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(signature))) {
		return false, nil
	}

	// An authentic body must still be about this order.
	parsed, err := p.ParseNotification(ctx, proof.Payload, proof.Headers)
	if err != nil {
		return false, nil
	}
	return parsed.OrderID == proof.OrderID, nil
}

// SignCheckout returns the checkout signature Razorpay would produce.
func (p *RazorpayProvider) SignCheckout(orderID, paymentID string) string {
	return hmacSHA256Hex(p.cfg.KeySecret, orderID+"|"+paymentID)
}

func hmacSHA256Hex(secret, message string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// Compile-time interface assertions
var _ Provider = (*RazorpayProvider)(nil)
