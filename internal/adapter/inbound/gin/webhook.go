package gin

import (
	"errors"
	"io"
	"net/http"

	"github.com/ariachat/server/internal/model"
	"github.com/ariachat/server/internal/port/inbound"
	"github.com/ariachat/server/internal/port/outbound"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxWebhookBody = 1 << 20

type webhookHandler struct {
	payments inbound.PaymentDomain
	logger   *zap.Logger
}

// Handle confirms an order from a provider callback. Callbacks that carry
// no payment outcome are acknowledged so the provider stops retrying.
func (h *webhookHandler) Handle(c *gin.Context) {
	provider := c.Param("provider")

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.payments.HandleNotification(c.Request.Context(), provider, payload, flattenHeaders(c))
	if err != nil {
		if errors.Is(err, outbound.ErrNotificationIgnored) {
			h.logger.Debug("notification ignored", zap.String("provider", provider), zap.Error(err))
			h.ack(c, provider, gin.H{"received": true, "ignored": true})
			return
		}
		h.logger.Warn("webhook rejected", zap.String("provider", provider), zap.Error(err))
		handleError(c, err)
		return
	}
	h.ack(c, provider, result)
}

func (h *webhookHandler) ack(c *gin.Context, provider string, body any) {
	// Alipay retries until it reads the literal "success".
	if provider == model.ProviderAlipay {
		c.String(http.StatusOK, "success")
		return
	}
	c.JSON(http.StatusOK, body)
}
