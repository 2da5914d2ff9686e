package outbound

import (
	"context"

	"github.com/ariachat/server/internal/model"
	"github.com/google/uuid"
)

// OrderDatabasePort defines the interface for order database operations.
type OrderDatabasePort interface {
	Create(ctx context.Context, order *model.Order) error
	GetByOrderID(ctx context.Context, orderID string) (*model.Order, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*model.Order, int64, error)

	// TransitionStatus moves the order from `from` to `to` only if its
	// stored status is still `from`. It reports whether a row changed.
	TransitionStatus(ctx context.Context, orderID string, from, to model.OrderStatus, t model.OrderTransition) (bool, error)

	// SumPaidAmount returns the total amount of paid orders in major units.
	SumPaidAmount(ctx context.Context) (int64, error)

	// ListRecentPaid returns the most recently paid orders first.
	ListRecentPaid(ctx context.Context, limit int) ([]*model.Order, error)
}

// WebhookEventDatabasePort records confirmation attempts for auditing.
type WebhookEventDatabasePort interface {
	Create(ctx context.Context, event *model.WebhookEvent) error
	MarkProcessed(ctx context.Context, id uuid.UUID, processErr error) error
}
