package gin

import (
	"net/http"

	"github.com/ariachat/server/internal/model"
	"github.com/ariachat/server/internal/port/inbound"
	"github.com/gin-gonic/gin"
)

type orderHandler struct {
	payments inbound.PaymentDomain
}

func (h *orderHandler) Create(c *gin.Context) {
	accountID, ok := requireAccountID(c)
	if !ok {
		return
	}
	var req model.CreateOrderRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	order, err := h.payments.CreateOrder(c.Request.Context(), accountID, req.Provider)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *orderHandler) List(c *gin.Context) {
	accountID, ok := requireAccountID(c)
	if !ok {
		return
	}
	q := model.PageQuery{Page: queryInt(c, "page", 1), PageSize: queryInt(c, "page_size", 0)}.Normalized()

	orders, total, err := h.payments.ListOrders(c.Request.Context(), accountID, q.Page, q.PageSize)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewPage(orders, total, q))
}

func (h *orderHandler) Get(c *gin.Context) {
	accountID, ok := requireAccountID(c)
	if !ok {
		return
	}
	order, err := h.payments.GetOrder(c.Request.Context(), accountID, c.Param("order_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// Confirm handles the client-side checkout callback. Only the owner of an
// order may confirm it this way.
func (h *orderHandler) Confirm(c *gin.Context) {
	accountID, ok := requireAccountID(c)
	if !ok {
		return
	}
	var req model.ConfirmOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.payments.GetOrder(ctx, accountID, req.OrderID); err != nil {
		handleError(c, err)
		return
	}

	result, err := h.payments.ConfirmOrder(ctx, req.OrderID, &model.PaymentProof{
		PaymentID: req.PaymentID,
		Signature: req.Signature,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
