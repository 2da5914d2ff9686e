package inbound

import (
	"context"

	"github.com/ariachat/server/internal/model"
	"github.com/google/uuid"
)

// PaymentDomain creates premium orders and reconciles confirmations.
type PaymentDomain interface {
	CreateOrder(ctx context.Context, accountID uuid.UUID, provider string) (*model.CheckoutOrder, error)
	ConfirmOrder(ctx context.Context, orderID string, proof *model.PaymentProof) (*model.ConfirmResult, error)
	HandleNotification(ctx context.Context, provider string, payload []byte, headers map[string]string) (*model.ConfirmResult, error)
	GetOrder(ctx context.Context, accountID uuid.UUID, orderID string) (*model.Order, error)
	ListOrders(ctx context.Context, accountID uuid.UUID, page, pageSize int) ([]*model.Order, int64, error)
}
