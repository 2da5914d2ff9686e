package paymentprovider

import (
	"context"
	"net/url"
	"testing"

	"github.com/ariachat/server/internal/model"
	"github.com/ariachat/server/internal/port/outbound"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func alipayNotify(status, outTradeNo string) []byte {
	v := url.Values{}
	v.Set("trade_status", status)
	v.Set("out_trade_no", outTradeNo)
	v.Set("trade_no", "2026041022001")
	v.Set("total_amount", "89.00")
	v.Set("sign_type", "RSA2")
	v.Set("sign", "c2lnbmF0dXJl")
	return []byte(v.Encode())
}

func TestAlipayProvider_ParseNotification(t *testing.T) {
	ctx := context.Background()
	p := newAlipayVerifier(AlipayConfig{AlipayPublicKey: "public-key"})

	proof, err := p.ParseNotification(ctx, alipayNotify("TRADE_SUCCESS", "01HRECEIPT"), nil)
	require.NoError(t, err)
	assert.Equal(t, model.ProviderAlipay, proof.Provider)
	assert.Equal(t, "01HRECEIPT", proof.OrderID)
	assert.Equal(t, "2026041022001", proof.PaymentID)
	assert.Equal(t, "c2lnbmF0dXJl", proof.Signature)

	_, err = p.ParseNotification(ctx, alipayNotify("WAIT_BUYER_PAY", "01HRECEIPT"), nil)
	assert.ErrorIs(t, err, outbound.ErrNotificationIgnored)
}

func TestAlipayProvider_VerifySignature_Rejects(t *testing.T) {
	ctx := context.Background()
	p := newAlipayVerifier(AlipayConfig{AlipayPublicKey: "public-key"})

	t.Run("no notification body", func(t *testing.T) {
		ok, err := p.VerifySignature(ctx, &model.PaymentProof{OrderID: "01HRECEIPT", Signature: "x"})
		assert.ErrorIs(t, err, outbound.ErrProofUnsupported)
		assert.False(t, ok)
	})

	t.Run("notification for another order", func(t *testing.T) {
		ok, err := p.VerifySignature(ctx, &model.PaymentProof{
			OrderID: "01HRECEIPT",
			Payload: alipayNotify("TRADE_SUCCESS", "01HOTHER"),
		})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("forged signature", func(t *testing.T) {
		ok, err := p.VerifySignature(ctx, &model.PaymentProof{
			OrderID: "01HRECEIPT",
			Payload: alipayNotify("TRADE_SUCCESS", "01HRECEIPT"),
		})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unconfigured", func(t *testing.T) {
		_, err := newAlipayVerifier(AlipayConfig{}).VerifySignature(ctx, &model.PaymentProof{
			OrderID: "01HRECEIPT",
			Payload: alipayNotify("TRADE_SUCCESS", "01HRECEIPT"),
		})
		assert.Error(t, err)
	})
}

func TestAlipayProvider_CreateOrderWithoutClient(t *testing.T) {
	_, err := newAlipayVerifier(AlipayConfig{}).CreateOrder(context.Background(), &model.GatewayOrderRequest{})
	assert.Error(t, err)
}
