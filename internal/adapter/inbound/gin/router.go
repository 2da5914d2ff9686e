package gin

import (
	"github.com/ariachat/server/internal/port/inbound"
	"github.com/ariachat/server/internal/port/outbound"
	"github.com/ariachat/server/internal/utils/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers groups the HTTP handlers of the engine.
type Handlers struct {
	account *accountHandler
	chat    *chatHandler
	order   *orderHandler
	webhook *webhookHandler
	admin   *adminHandler
}

// NewHandlers creates the HTTP handlers. tokens may be nil, in which case
// registration does not hand out an access token.
func NewHandlers(
	usage inbound.UsageDomain,
	payments inbound.PaymentDomain,
	chat inbound.ChatDomain,
	tokens outbound.TokenPort,
	admins *middleware.AdminAuthorizer,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		account: &accountHandler{usage: usage, tokens: tokens, admins: admins},
		chat:    &chatHandler{chat: chat},
		order:   &orderHandler{payments: payments},
		webhook: &webhookHandler{payments: payments, logger: logger.Named("webhook")},
		admin:   &adminHandler{usage: usage},
	}
}

// RouteMiddleware holds the per-group middleware chains.
type RouteMiddleware struct {
	// Auth authenticates the caller. Required.
	Auth gin.HandlerFunc
	// Admin authorizes operator endpoints. Required.
	Admin gin.HandlerFunc
	// Chat runs before the chat endpoint, e.g. a per-account rate limit.
	Chat []gin.HandlerFunc
	// Mutations run before order creation and confirmation, e.g. idempotency.
	Mutations []gin.HandlerFunc
}

// RegisterRoutes mounts the API under r.
func (h *Handlers) RegisterRoutes(r gin.IRouter, mw RouteMiddleware) {
	r.POST("/accounts", chain(mw.Mutations, h.account.Register)...)
	r.GET("/pricing", h.account.Pricing)
	r.POST("/webhooks/:provider", h.webhook.Handle)

	authed := r.Group("", mw.Auth)
	{
		authed.GET("/entitlement", h.account.Entitlement)
		authed.POST("/usage", h.account.RecordUsage)
		authed.GET("/profile/stats", h.account.ProfileStats)
		authed.POST("/chat", chain(mw.Chat, h.chat.Chat)...)
		authed.GET("/chat/history", h.chat.History)
		authed.DELETE("/chat/history", h.chat.ClearHistory)
		authed.DELETE("/chat/history/:message_id", h.chat.DeleteMessage)

		orders := authed.Group("/orders")
		orders.POST("", chain(mw.Mutations, h.order.Create)...)
		orders.GET("", h.order.List)
		orders.GET("/:order_id", h.order.Get)
		orders.POST("/confirm", chain(mw.Mutations, h.order.Confirm)...)
	}

	admin := r.Group("/admin", mw.Auth, mw.Admin)
	{
		admin.GET("/overview", h.admin.Overview)
		admin.POST("/accounts/:id/premium", h.admin.GrantPremium)
		admin.DELETE("/accounts/:id/premium", h.admin.Revoke)
	}
}

// chain copies pre so route registrations never share a backing array.
func chain(pre []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(pre)+1)
	out = append(out, pre...)
	return append(out, h)
}
