package paymentprovider

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/ariachat/server/internal/model"
	"github.com/ariachat/server/internal/port/outbound"
	"github.com/go-pay/gopay"
	"github.com/go-pay/gopay/alipay"
)

// AlipayConfig holds Alipay configuration.
type AlipayConfig struct {
	AppID           string // Application ID
	PrivateKey      string // RSA2 private key (PEM format)
	AlipayPublicKey string // Alipay public key for verification (PEM format)
	IsProd          bool
	NotifyURL       string
	ReturnURL       string
}

// AlipayProvider creates page-pay orders and verifies async notifications.
type AlipayProvider struct {
	client *alipay.Client
	cfg    AlipayConfig
}

// NewAlipayProvider creates a new Alipay provider.
func NewAlipayProvider(cfg AlipayConfig) (*AlipayProvider, error) {
	client, err := alipay.NewClient(cfg.AppID, cfg.PrivateKey, cfg.IsProd)
	if err != nil {
		return nil, fmt.Errorf("create alipay client: %w", err)
	}
	return &AlipayProvider{client: client, cfg: cfg}, nil
}

// newAlipayVerifier builds a provider that can only verify notifications.
func newAlipayVerifier(cfg AlipayConfig) *AlipayProvider {
	return &AlipayProvider{cfg: cfg}
}

// Name returns the provider name.
func (p *AlipayProvider) Name() string {
	return model.ProviderAlipay
}

// CreateOrder creates a desktop page-pay order. Alipay keys the trade by
// our receipt number, so it is also the order reference.
func (p *AlipayProvider) CreateOrder(ctx context.Context, req *model.GatewayOrderRequest) (*model.GatewayOrder, error) {
	if p.client == nil {
		return nil, fmt.Errorf("alipay client not configured")
	}

	bm := make(gopay.BodyMap)
	bm.Set("out_trade_no", req.ReceiptNo)
	// Alipay amounts are major units with two decimals.
	bm.Set("total_amount", fmt.Sprintf("%.2f", float64(req.Amount)/100))
	bm.Set("subject", req.Description)
	bm.Set("product_code", "FAST_INSTANT_TRADE_PAY")
	bm.Set("timeout_express", "30m")
	if p.cfg.NotifyURL != "" {
		bm.Set("notify_url", p.cfg.NotifyURL)
	}
	if p.cfg.ReturnURL != "" {
		bm.Set("return_url", p.cfg.ReturnURL)
	}

	payURL, err := p.client.TradePagePay(ctx, bm)
	if err != nil {
		return nil, fmt.Errorf("create page payment: %w", err)
	}

	return &model.GatewayOrder{
		OrderID: req.ReceiptNo,
		PayURL:  payURL,
	}, nil
}

// paidTradeStatuses are the trade states that settle an order.
var paidTradeStatuses = map[string]bool{
	"TRADE_SUCCESS":  true,
	"TRADE_FINISHED": true,
}

// ParseNotification extracts the trade from a form-encoded notification.
func (p *AlipayProvider) ParseNotification(ctx context.Context, payload []byte, headers map[string]string) (*model.PaymentProof, error) {
	bm, err := parseAlipayNotify(ctx, payload)
	if err != nil {
		return nil, err
	}
	if status := bm.Get("trade_status"); !paidTradeStatuses[status] {
		return nil, fmt.Errorf("%w: alipay trade status %q", outbound.ErrNotificationIgnored, status)
	}
	orderID := bm.Get("out_trade_no")
	if orderID == "" {
		return nil, fmt.Errorf("notification has no out_trade_no")
	}
	return &model.PaymentProof{
		Provider:  model.ProviderAlipay,
		OrderID:   orderID,
		PaymentID: bm.Get("trade_no"),
		Signature: bm.Get("sign"),
		Payload:   payload,
		Headers:   headers,
	}, nil
}

// VerifySignature checks the RSA2 signature of a notification. Alipay has
// no client-side proof, so a proof without a notification body cannot be
// judged and yields ErrProofUnsupported.
func (p *AlipayProvider) VerifySignature(ctx context.Context, proof *model.PaymentProof) (bool, error) {
	if len(proof.Payload) == 0 {
		return false, fmt.Errorf("%w: alipay settles by notification only", outbound.ErrProofUnsupported)
	}
	if p.cfg.AlipayPublicKey == "" {
		return false, fmt.Errorf("alipay public key not configured")
	}
	bm, err := parseAlipayNotify(ctx, proof.Payload)
	if err != nil {
		return false, nil
	}
	if bm.Get("out_trade_no") != proof.OrderID || !paidTradeStatuses[bm.Get("trade_status")] {
		return false, nil
	}
	ok, err := alipay.VerifySign(p.cfg.AlipayPublicKey, bm)
	if err != nil {
		return false, nil
	}
	return ok, nil
}

func parseAlipayNotify(ctx context.Context, payload []byte) (gopay.BodyMap, error) {
	// gopay parses notifications from an *http.Request.
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "/", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	bm, err := alipay.ParseNotifyToBodyMap(req)
	if err != nil {
		return nil, fmt.Errorf("parse notify: %w", err)
	}
	return bm, nil
}

// Compile-time interface assertions
var _ Provider = (*AlipayProvider)(nil)
