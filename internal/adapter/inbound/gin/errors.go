package gin

import (
	"errors"
	"net/http"

	"github.com/ariachat/server/internal/adapter/outbound/aiprovider"
	"github.com/ariachat/server/internal/domain/chat"
	"github.com/ariachat/server/internal/domain/payment"
	"github.com/ariachat/server/internal/domain/usage"
	"github.com/ariachat/server/internal/port/outbound"
	apperrors "github.com/ariachat/server/internal/utils/errors"
	"github.com/gin-gonic/gin"
)

// toAppError maps domain errors onto HTTP errors.
func toAppError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	// Accounts and usage
	case errors.Is(err, usage.ErrAccountNotFound), errors.Is(err, payment.ErrAccountNotFound):
		return apperrors.NotFound("account")
	case errors.Is(err, usage.ErrAccountExists):
		return apperrors.Conflict("ACCOUNT_EXISTS", "username or email already registered")
	case errors.Is(err, usage.ErrInvalidAccount):
		return apperrors.BadRequest("INVALID_ACCOUNT", "username and email are required")
	case errors.Is(err, usage.ErrInvalidUsage):
		return apperrors.BadRequest("INVALID_USAGE", "seconds consumed must not be negative")
	case errors.Is(err, usage.ErrQuotaExceeded):
		return apperrors.PaymentRequired("QUOTA_EXCEEDED", "daily limit reached")
	case errors.Is(err, outbound.ErrConcurrentModification):
		return apperrors.Conflict("CONCURRENT_MODIFICATION", "account is busy, please retry")

	// Chat
	case errors.Is(err, chat.ErrEmptyMessage):
		return apperrors.BadRequest("EMPTY_MESSAGE", "message is empty")
	case errors.Is(err, chat.ErrMessageNotFound):
		return apperrors.NotFound("message")
	case errors.Is(err, chat.ErrMessageTooLong):
		return apperrors.BadRequest("MESSAGE_TOO_LONG", "message is too long")
	case errors.Is(err, aiprovider.ErrProviderUnavailable):
		return apperrors.ServiceUnavailable("assistant is temporarily unavailable")
	case errors.Is(err, chat.ErrCompletionFailed):
		return apperrors.BadGateway("assistant failed to answer", err)

	// Orders and payments
	case errors.Is(err, payment.ErrOrderNotFound):
		return apperrors.NotFound("order")
	case errors.Is(err, payment.ErrForbidden):
		return apperrors.Forbidden("order belongs to another account")
	case errors.Is(err, payment.ErrInvalidPaymentProof):
		return apperrors.BadRequest("INVALID_PAYMENT_PROOF", "payment could not be verified")
	case errors.Is(err, payment.ErrConfirmViaNotification):
		return apperrors.Conflict("CONFIRM_VIA_NOTIFICATION", "payment is confirmed by the provider, check the order status shortly")
	case errors.Is(err, payment.ErrInvalidTransition):
		return apperrors.Conflict("INVALID_ORDER_STATE", "order cannot change to the requested state")
	case errors.Is(err, payment.ErrProviderNotAvailable):
		return apperrors.NotFound("payment provider")
	case errors.Is(err, payment.ErrProviderFailure):
		return apperrors.BadGateway("payment provider failed", err)

	default:
		// Errors wrapping a bare category keep its status.
		if status := apperrors.StatusOf(err); status != http.StatusInternalServerError {
			return &apperrors.AppError{Code: "REQUEST_FAILED", Message: http.StatusText(status), StatusCode: status, Err: err}
		}
		return apperrors.Internal(err)
	}
}

// handleError writes the mapped error. The original error is attached to
// the gin context so the request log carries it.
func handleError(c *gin.Context, err error) {
	_ = c.Error(err)
	appErr := toAppError(err)
	c.AbortWithStatusJSON(appErr.StatusCode, appErr.ToResponse())
}

func badRequest(c *gin.Context, err error) {
	appErr := apperrors.BadRequest("INVALID_INPUT", err.Error())
	c.AbortWithStatusJSON(appErr.StatusCode, appErr.ToResponse())
}
