package gin

import (
	"net/http"

	"github.com/ariachat/server/internal/model"
	"github.com/ariachat/server/internal/port/inbound"
	"github.com/gin-gonic/gin"
)

type adminHandler struct {
	usage inbound.UsageDomain
}

func (h *adminHandler) Overview(c *gin.Context) {
	overview, err := h.usage.AdminOverview(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (h *adminHandler) GrantPremium(c *gin.Context) {
	accountID, ok := pathAccountID(c)
	if !ok {
		return
	}
	var req model.GrantPremiumRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	status, err := h.usage.AdminGrantPremium(c.Request.Context(), accountID, req.Months)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *adminHandler) Revoke(c *gin.Context) {
	accountID, ok := pathAccountID(c)
	if !ok {
		return
	}
	status, err := h.usage.AdminRevoke(c.Request.Context(), accountID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}
