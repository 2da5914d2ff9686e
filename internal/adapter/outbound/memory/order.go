package memory

import (
	"context"
	"sort"

	"github.com/ariachat/server/internal/model"
	"github.com/ariachat/server/internal/port/outbound"
	"github.com/google/uuid"
)

type orderRepository struct {
	s *Store
}

// NewOrderRepository returns an order adapter backed by s.
func NewOrderRepository(s *Store) outbound.OrderDatabasePort {
	return &orderRepository{s: s}
}

var _ outbound.OrderDatabasePort = (*orderRepository)(nil)

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.orders[order.OrderID]; ok {
		return ErrDuplicate
	}
	r.s.orders[order.OrderID] = cloneOrder(order)
	return nil
}

func (r *orderRepository) GetByOrderID(ctx context.Context, orderID string) (*model.Order, error) {
	defer r.s.lock(ctx)()
	return cloneOrder(r.s.orders[orderID]), nil
}

func (r *orderRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*model.Order, int64, error) {
	defer r.s.lock(ctx)()
	var all []*model.Order
	for _, o := range r.s.orders {
		if o.AccountID == accountID {
			all = append(all, cloneOrder(o))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := int64(len(all))
	if offset >= len(all) {
		return []*model.Order{}, total, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], total, nil
}

func (r *orderRepository) TransitionStatus(ctx context.Context, orderID string, from, to model.OrderStatus, t model.OrderTransition) (bool, error) {
	defer r.s.lock(ctx)()
	o, ok := r.s.orders[orderID]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	o.UpdatedAt = t.At
	if to == model.OrderStatusPaid {
		at := t.At
		o.PaidAt = &at
	}
	if t.ProviderPaymentID != "" {
		o.ProviderPaymentID = t.ProviderPaymentID
	}
	if t.FailureReason != "" {
		o.FailureReason = t.FailureReason
	}
	return true, nil
}

func (r *orderRepository) SumPaidAmount(ctx context.Context) (int64, error) {
	defer r.s.lock(ctx)()
	var sum int64
	for _, o := range r.s.orders {
		if o.Status == model.OrderStatusPaid {
			sum += o.AmountSnapshot
		}
	}
	return sum, nil
}

func (r *orderRepository) ListRecentPaid(ctx context.Context, limit int) ([]*model.Order, error) {
	defer r.s.lock(ctx)()
	var paid []*model.Order
	for _, o := range r.s.orders {
		if o.Status == model.OrderStatusPaid && o.PaidAt != nil {
			paid = append(paid, cloneOrder(o))
		}
	}
	sort.Slice(paid, func(i, j int) bool { return paid[i].PaidAt.After(*paid[j].PaidAt) })
	if limit > 0 && len(paid) > limit {
		paid = paid[:limit]
	}
	return paid, nil
}
