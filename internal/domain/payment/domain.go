package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariachat/server/internal/domain/entitlement"
	"github.com/ariachat/server/internal/domain/pricing"
	"github.com/ariachat/server/internal/infra/events"
	"github.com/ariachat/server/internal/model"
	"github.com/ariachat/server/internal/port/inbound"
	"github.com/ariachat/server/internal/port/outbound"
	"github.com/ariachat/server/internal/utils/retry"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// Config holds payment domain settings.
type Config struct {
	Currency    string
	Description string
	MaxRetries  uint
}

// DefaultConfig returns the default payment settings.
func DefaultConfig() Config {
	return Config{
		Currency:    "INR",
		Description: "Aria Premium",
		MaxRetries:  retry.DefaultMaxTries,
	}
}

// Domain reconciles premium orders. Confirmation performs a guarded
// created -> paid transition and the premium grant in one transaction, so
// repeated confirmations grant exactly once.
type Domain struct {
	accounts    outbound.AccountDatabasePort
	orders      outbound.OrderDatabasePort
	webhooks    outbound.WebhookEventDatabasePort
	tx          outbound.TransactorPort
	locker      outbound.AccountLockerPort
	providers   outbound.PaymentProviderRegistryPort
	clock       outbound.ClockPort
	publisher   outbound.EventPublisherPort
	pricing     *pricing.Engine
	entitlement *entitlement.Manager
	sm          *StateMachine
	cfg         Config
	logger      *zap.Logger
}

// NewPaymentDomain creates a new payment domain service.
func NewPaymentDomain(
	accounts outbound.AccountDatabasePort,
	orders outbound.OrderDatabasePort,
	webhooks outbound.WebhookEventDatabasePort,
	tx outbound.TransactorPort,
	locker outbound.AccountLockerPort,
	providers outbound.PaymentProviderRegistryPort,
	clock outbound.ClockPort,
	publisher outbound.EventPublisherPort,
	pricingEngine *pricing.Engine,
	entitlementManager *entitlement.Manager,
	cfg Config,
	logger *zap.Logger,
) *Domain {
	if cfg.Currency == "" {
		cfg.Currency = DefaultConfig().Currency
	}
	return &Domain{
		accounts:    accounts,
		orders:      orders,
		webhooks:    webhooks,
		tx:          tx,
		locker:      locker,
		providers:   providers,
		clock:       clock,
		publisher:   publisher,
		pricing:     pricingEngine,
		entitlement: entitlementManager,
		sm:          NewStateMachine(),
		cfg:         cfg,
		logger:      logger,
	}
}

// Compile-time interface check
var _ inbound.PaymentDomain = (*Domain)(nil)

// CreateOrder snapshots the current tier and opens a provider order for it.
func (d *Domain) CreateOrder(ctx context.Context, accountID uuid.UUID, provider string) (*model.CheckoutOrder, error) {
	acc, err := d.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	if acc == nil {
		return nil, ErrAccountNotFound
	}

	if provider == "" {
		provider = d.providers.Default()
	}
	gateway, err := d.providers.Gateway(provider)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotAvailable, provider)
	}

	count, err := d.accounts.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count accounts: %w", err)
	}
	tier := d.pricing.CurrentTier(count)

	now := d.clock.Now()
	receipt := ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String()

	gwOrder, err := gateway.CreateOrder(ctx, &model.GatewayOrderRequest{
		ReceiptNo:   receipt,
		AccountID:   accountID,
		Amount:      tier.Amount * 100,
		Currency:    d.cfg.Currency,
		Description: d.cfg.Description,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}

	order := &model.Order{
		ID:             uuid.New(),
		OrderID:        gwOrder.OrderID,
		ReceiptNo:      receipt,
		AccountID:      accountID,
		Provider:       gateway.Name(),
		Currency:       d.cfg.Currency,
		Status:         model.OrderStatusCreated,
		AmountSnapshot: tier.Amount,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	order.SetTier(tier)

	if err := d.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	d.logger.Info("order created",
		zap.String("order_id", order.OrderID),
		zap.String("account_id", accountID.String()),
		zap.String("provider", order.Provider),
		zap.Int64("amount", order.AmountSnapshot),
		zap.Bool("early_bird", tier.IsEarlyBird),
	)
	d.publish(ctx, events.NewOrderEvent(events.TypeOrderCreated, order, "", now))

	return &model.CheckoutOrder{
		OrderID:        order.OrderID,
		ReceiptNo:      receipt,
		Provider:       order.Provider,
		Amount:         order.AmountSnapshot,
		ProviderAmount: order.AmountSnapshot * 100,
		Currency:       order.Currency,
		Tier:           tier,
		KeyID:          gwOrder.KeyID,
		ClientSecret:   gwOrder.ClientSecret,
		PayURL:         gwOrder.PayURL,
	}, nil
}

// ConfirmOrder verifies a payment proof and, exactly once per order, grants
// premium for the tier embedded at creation.
func (d *Domain) ConfirmOrder(ctx context.Context, orderID string, proof *model.PaymentProof) (*model.ConfirmResult, error) {
	order, err := d.orders.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if proof == nil {
		proof = &model.PaymentProof{}
	}
	// The proof is always checked against the stored order reference.
	proof.OrderID = order.OrderID
	proof.Provider = order.Provider

	verifier, err := d.providers.Verifier(order.Provider)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotAvailable, order.Provider)
	}
	valid, err := verifier.VerifySignature(ctx, proof)
	if errors.Is(err, outbound.ErrProofUnsupported) {
		d.logger.Info("confirmation awaits provider notification",
			zap.String("order_id", order.OrderID),
			zap.String("provider", order.Provider),
		)
		return &model.ConfirmResult{OrderID: order.OrderID, Status: order.Status}, ErrConfirmViaNotification
	}
	if err != nil {
		return nil, fmt.Errorf("%w: verify: %v", ErrProviderFailure, err)
	}

	audit := d.audit(ctx, order, proof, valid)

	result, err := d.reconcile(ctx, order, proof, valid)
	d.finishAudit(ctx, audit, err)
	return result, err
}

// HandleNotification confirms an order from an asynchronous provider callback.
func (d *Domain) HandleNotification(ctx context.Context, provider string, payload []byte, headers map[string]string) (*model.ConfirmResult, error) {
	verifier, err := d.providers.Verifier(provider)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotAvailable, provider)
	}
	proof, err := verifier.ParseNotification(ctx, payload, headers)
	if err != nil {
		if errors.Is(err, outbound.ErrNotificationIgnored) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidPaymentProof, err)
	}
	return d.ConfirmOrder(ctx, proof.OrderID, proof)
}

func (d *Domain) reconcile(ctx context.Context, order *model.Order, proof *model.PaymentProof, valid bool) (*model.ConfirmResult, error) {
	now := d.clock.Now()

	if !valid {
		if order.Status == model.OrderStatusCreated {
			changed, err := d.transition(ctx, order.OrderID, model.OrderStatusCreated, model.OrderStatusFailed, model.OrderTransition{
				At:                now,
				ProviderPaymentID: proof.PaymentID,
				FailureReason:     ErrInvalidPaymentProof.Error(),
			})
			if err != nil {
				return nil, err
			}
			if changed {
				order.Status = model.OrderStatusFailed
				d.logger.Warn("order failed", zap.String("order_id", order.OrderID), zap.String("reason", "invalid proof"))
				d.publish(ctx, events.NewOrderEvent(events.TypeOrderFailed, order, ErrInvalidPaymentProof.Error(), now))
			} else if fresh, err := d.orders.GetByOrderID(ctx, order.OrderID); err == nil && fresh != nil {
				order = fresh
			}
		}
		return &model.ConfirmResult{OrderID: order.OrderID, Status: order.Status}, ErrInvalidPaymentProof
	}

	switch order.Status {
	case model.OrderStatusFailed:
		return &model.ConfirmResult{OrderID: order.OrderID, Status: order.Status}, nil
	case model.OrderStatusPaid:
		return d.alreadyPaid(ctx, order)
	}

	unlock, err := d.locker.Lock(ctx, order.AccountID)
	if err != nil {
		return nil, fmt.Errorf("lock account: %w", err)
	}
	defer unlock()

	granted, err := retry.OnConflict(ctx, d.cfg.MaxRetries, func() (*model.Account, error) {
		var acc *model.Account
		err := d.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
			changed, err := d.transition(txCtx, order.OrderID, model.OrderStatusCreated, model.OrderStatusPaid, model.OrderTransition{
				At:                now,
				ProviderPaymentID: proof.PaymentID,
			})
			if err != nil || !changed {
				return err
			}

			acc, err = d.accounts.GetByID(txCtx, order.AccountID)
			if err != nil {
				return fmt.Errorf("get account: %w", err)
			}
			if acc == nil {
				return ErrAccountNotFound
			}
			expected := acc.Version
			d.entitlement.GrantPremium(acc, order.TierMonths, now)
			acc.SetLockedTier(order.Tier())
			return d.accounts.UpdateIfVersion(txCtx, acc, expected)
		})
		if err != nil {
			return nil, err
		}
		return acc, nil
	})
	if err != nil {
		return nil, err
	}

	if granted == nil {
		// Lost the guarded transition to a concurrent confirmation.
		fresh, err := d.orders.GetByOrderID(ctx, order.OrderID)
		if err != nil {
			return nil, fmt.Errorf("get order: %w", err)
		}
		if fresh.Status == model.OrderStatusPaid {
			return d.alreadyPaid(ctx, fresh)
		}
		return &model.ConfirmResult{OrderID: fresh.OrderID, Status: fresh.Status}, nil
	}

	order.Status = model.OrderStatusPaid
	order.PaidAt = &now
	order.ProviderPaymentID = proof.PaymentID

	d.logger.Info("order paid",
		zap.String("order_id", order.OrderID),
		zap.String("account_id", order.AccountID.String()),
		zap.Int("months", order.TierMonths),
		zap.Timep("premium_expiry", granted.PremiumExpiry),
	)
	d.publish(ctx, events.NewOrderEvent(events.TypeOrderPaid, order, "", now))
	d.publish(ctx, events.NewPremiumEvent(events.TypePremiumGranted, granted, order.TierMonths, "order", now))

	return &model.ConfirmResult{
		Success:       true,
		OrderID:       order.OrderID,
		Status:        model.OrderStatusPaid,
		PremiumExpiry: granted.PremiumExpiry,
	}, nil
}

func (d *Domain) alreadyPaid(ctx context.Context, order *model.Order) (*model.ConfirmResult, error) {
	res := &model.ConfirmResult{
		Success:          true,
		OrderID:          order.OrderID,
		Status:           model.OrderStatusPaid,
		AlreadyProcessed: true,
	}
	if acc, err := d.accounts.GetByID(ctx, order.AccountID); err == nil && acc != nil {
		res.PremiumExpiry = acc.PremiumExpiry
	}
	return res, nil
}

func (d *Domain) transition(ctx context.Context, orderID string, from, to model.OrderStatus, t model.OrderTransition) (bool, error) {
	if err := d.sm.Validate(from, to); err != nil {
		return false, err
	}
	changed, err := d.orders.TransitionStatus(ctx, orderID, from, to, t)
	if err != nil {
		return false, fmt.Errorf("transition order: %w", err)
	}
	return changed, nil
}

// GetOrder returns an order owned by accountID.
func (d *Domain) GetOrder(ctx context.Context, accountID uuid.UUID, orderID string) (*model.Order, error) {
	order, err := d.orders.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.AccountID != accountID {
		return nil, ErrForbidden
	}
	return order, nil
}

// ListOrders lists an account's orders, newest first.
func (d *Domain) ListOrders(ctx context.Context, accountID uuid.UUID, page, pageSize int) ([]*model.Order, int64, error) {
	q := model.PageQuery{Page: page, PageSize: pageSize}.Normalized()
	return d.orders.ListByAccount(ctx, accountID, q.PageSize, q.Offset())
}

func (d *Domain) audit(ctx context.Context, order *model.Order, proof *model.PaymentProof, valid bool) *model.WebhookEvent {
	eventID := proof.PaymentID
	if eventID == "" {
		eventID = order.OrderID
	}
	e := &model.WebhookEvent{
		ID:        uuid.New(),
		Provider:  order.Provider,
		EventID:   eventID,
		OrderID:   order.OrderID,
		Valid:     valid,
		CreatedAt: d.clock.Now(),
	}
	if err := d.webhooks.Create(ctx, e); err != nil {
		d.logger.Warn("failed to record payment attempt", zap.String("order_id", order.OrderID), zap.Error(err))
		return nil
	}
	return e
}

func (d *Domain) finishAudit(ctx context.Context, e *model.WebhookEvent, processErr error) {
	if e == nil {
		return
	}
	if err := d.webhooks.MarkProcessed(ctx, e.ID, processErr); err != nil {
		d.logger.Warn("failed to mark payment attempt", zap.String("event_id", e.ID.String()), zap.Error(err))
	}
}

func (d *Domain) publish(ctx context.Context, event events.Event) {
	if d.publisher == nil {
		return
	}
	if err := d.publisher.Publish(ctx, event); err != nil {
		d.logger.Warn("failed to publish event", zap.String("event_type", event.EventType()), zap.Error(err))
	}
}
