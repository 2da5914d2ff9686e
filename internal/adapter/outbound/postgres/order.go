package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariachat/server/internal/model"
	"github.com/ariachat/server/internal/port/outbound"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// orderAdapter implements outbound.OrderDatabasePort.
type orderAdapter struct {
	db *gorm.DB
}

// NewOrderAdapter creates a new order database adapter.
func NewOrderAdapter(db *gorm.DB) outbound.OrderDatabasePort {
	return &orderAdapter{db: db}
}

func (a *orderAdapter) Create(ctx context.Context, order *model.Order) error {
	if err := conn(ctx, a.db).Create(order).Error; err != nil {
		if isDuplicate(err) {
			return outbound.ErrDuplicateRecord
		}
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func (a *orderAdapter) GetByOrderID(ctx context.Context, orderID string) (*model.Order, error) {
	var order model.Order
	err := conn(ctx, a.db).First(&order, "order_id = ?", orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &order, nil
}

func (a *orderAdapter) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*model.Order, int64, error) {
	var orders []*model.Order
	var total int64

	scope := func() *gorm.DB {
		return conn(ctx, a.db).Model(&model.Order{}).Where("account_id = ?", accountID)
	}

	// Count total
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	// Apply pagination
	query := scope()
	if limit > 0 {
		query = query.Offset(offset).Limit(limit)
	}

	if err := query.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}

	return orders, total, nil
}

// TransitionStatus is a guarded UPDATE ... WHERE status = from; the row
// count decides which caller won.
func (a *orderAdapter) TransitionStatus(ctx context.Context, orderID string, from, to model.OrderStatus, t model.OrderTransition) (bool, error) {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": t.At,
	}
	if to == model.OrderStatusPaid {
		updates["paid_at"] = t.At
	}
	if t.ProviderPaymentID != "" {
		updates["provider_payment_id"] = t.ProviderPaymentID
	}
	if t.FailureReason != "" {
		updates["failure_reason"] = t.FailureReason
	}

	result := conn(ctx, a.db).
		Model(&model.Order{}).
		Where("order_id = ? AND status = ?", orderID, from).
		Updates(updates)
	if result.Error != nil {
		return false, fmt.Errorf("transition order: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (a *orderAdapter) SumPaidAmount(ctx context.Context) (int64, error) {
	var sum int64
	err := conn(ctx, a.db).
		Model(&model.Order{}).
		Where("status = ?", model.OrderStatusPaid).
		Select("COALESCE(SUM(amount_snapshot), 0)").
		Scan(&sum).Error
	if err != nil {
		return 0, fmt.Errorf("sum paid orders: %w", err)
	}
	return sum, nil
}

func (a *orderAdapter) ListRecentPaid(ctx context.Context, limit int) ([]*model.Order, error) {
	var orders []*model.Order
	err := conn(ctx, a.db).
		Where("status = ?", model.OrderStatusPaid).
		Order("paid_at DESC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("list recent paid orders: %w", err)
	}
	return orders, nil
}

// Compile-time check
var _ outbound.OrderDatabasePort = (*orderAdapter)(nil)
