package gin

import (
	"net/http"

	"github.com/ariachat/server/internal/model"
	"github.com/ariachat/server/internal/port/inbound"
	apperrors "github.com/ariachat/server/internal/utils/errors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type chatHandler struct {
	chat inbound.ChatDomain
}

// Chat answers 200 even when the daily limit is reached; the reply then
// carries limit_reached and the upgrade message.
func (h *chatHandler) Chat(c *gin.Context) {
	accountID, ok := requireAccountID(c)
	if !ok {
		return
	}
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	reply, err := h.chat.Chat(c.Request.Context(), accountID, req.Message)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

func (h *chatHandler) History(c *gin.Context) {
	accountID, ok := requireAccountID(c)
	if !ok {
		return
	}
	q := model.PageQuery{Page: queryInt(c, "page", 1), PageSize: queryInt(c, "page_size", 0)}

	history, err := h.chat.History(c.Request.Context(), accountID, q)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

func (h *chatHandler) DeleteMessage(c *gin.Context) {
	accountID, ok := requireAccountID(c)
	if !ok {
		return
	}
	messageID, err := uuid.Parse(c.Param("message_id"))
	if err != nil {
		appErr := apperrors.BadRequest("INVALID_ID", "invalid message id")
		c.AbortWithStatusJSON(appErr.StatusCode, appErr.ToResponse())
		return
	}

	if err := h.chat.DeleteMessage(c.Request.Context(), accountID, messageID); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *chatHandler) ClearHistory(c *gin.Context) {
	accountID, ok := requireAccountID(c)
	if !ok {
		return
	}
	n, err := h.chat.ClearHistory(c.Request.Context(), accountID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.ClearHistoryResponse{Deleted: n})
}
