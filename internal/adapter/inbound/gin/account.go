package gin

import (
	"net/http"

	"github.com/ariachat/server/internal/model"
	"github.com/ariachat/server/internal/port/inbound"
	"github.com/ariachat/server/internal/port/outbound"
	"github.com/ariachat/server/internal/utils/middleware"
	"github.com/gin-gonic/gin"
)

// accountHandler serves registration, entitlement, usage and pricing.
type accountHandler struct {
	usage  inbound.UsageDomain
	tokens outbound.TokenPort
	admins *middleware.AdminAuthorizer
}

func (h *accountHandler) Register(c *gin.Context) {
	var req model.RegisterAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	acc, err := h.usage.RegisterAccount(c.Request.Context(), req.Username, req.Email)
	if err != nil {
		handleError(c, err)
		return
	}

	resp := &model.RegisterAccountResponse{Account: acc}
	if h.tokens != nil {
		admin := h.admins.IsAdmin(acc.ID, acc.Email, false)
		token, expiresAt, err := h.tokens.Issue(acc.ID, acc.Email, admin)
		if err != nil {
			handleError(c, err)
			return
		}
		resp.AccessToken = token
		resp.ExpiresAt = &expiresAt
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *accountHandler) Entitlement(c *gin.Context) {
	accountID, ok := requireAccountID(c)
	if !ok {
		return
	}
	status, err := h.usage.GetEntitlementStatus(c.Request.Context(), accountID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *accountHandler) RecordUsage(c *gin.Context) {
	accountID, ok := requireAccountID(c)
	if !ok {
		return
	}
	var req model.RecordUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	status, err := h.usage.RecordUsage(c.Request.Context(), accountID, req.SecondsConsumed)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *accountHandler) ProfileStats(c *gin.Context) {
	accountID, ok := requireAccountID(c)
	if !ok {
		return
	}
	stats, err := h.usage.GetProfileStats(c.Request.Context(), accountID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *accountHandler) Pricing(c *gin.Context) {
	info, err := h.usage.GetPricing(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}
