// Package usage is the entitlement engine's external interface: it combines
// quota, entitlement, pricing and engagement under per-account serialization.
package usage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ariachat/server/internal/domain/engagement"
	"github.com/ariachat/server/internal/domain/entitlement"
	"github.com/ariachat/server/internal/domain/pricing"
	"github.com/ariachat/server/internal/domain/quota"
	"github.com/ariachat/server/internal/infra/events"
	"github.com/ariachat/server/internal/model"
	"github.com/ariachat/server/internal/port/inbound"
	"github.com/ariachat/server/internal/port/outbound"
	"github.com/ariachat/server/internal/utils/retry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Config holds usage engine settings.
type Config struct {
	AdmissionMode   AdmissionMode
	EstimateSeconds int64
	MaxRetries      uint
	Currency        string
}

// DefaultConfig returns the default usage engine settings.
func DefaultConfig() Config {
	return Config{
		AdmissionMode:   AdmissionOptimistic,
		EstimateSeconds: DefaultEstimateSeconds,
		MaxRetries:      retry.DefaultMaxTries,
		Currency:        "INR",
	}
}

// Domain implements the usage engine.
type Domain struct {
	accounts    outbound.AccountDatabasePort
	orders      outbound.OrderDatabasePort
	locker      outbound.AccountLockerPort
	clock       outbound.ClockPort
	publisher   outbound.EventPublisherPort
	quota       *quota.Tracker
	entitlement *entitlement.Manager
	pricing     *pricing.Engine
	engagement  *engagement.Tracker
	cfg         Config
	logger      *zap.Logger
}

// NewUsageDomain creates a new usage domain service.
func NewUsageDomain(
	accounts outbound.AccountDatabasePort,
	orders outbound.OrderDatabasePort,
	locker outbound.AccountLockerPort,
	clock outbound.ClockPort,
	publisher outbound.EventPublisherPort,
	quotaTracker *quota.Tracker,
	entitlementManager *entitlement.Manager,
	pricingEngine *pricing.Engine,
	engagementTracker *engagement.Tracker,
	cfg Config,
	logger *zap.Logger,
) *Domain {
	if cfg.AdmissionMode == "" {
		cfg.AdmissionMode = AdmissionOptimistic
	}
	if cfg.EstimateSeconds <= 0 {
		cfg.EstimateSeconds = DefaultEstimateSeconds
	}
	return &Domain{
		accounts:    accounts,
		orders:      orders,
		locker:      locker,
		clock:       clock,
		publisher:   publisher,
		quota:       quotaTracker,
		entitlement: entitlementManager,
		pricing:     pricingEngine,
		engagement:  engagementTracker,
		cfg:         cfg,
		logger:      logger,
	}
}

// Compile-time interface check
var _ inbound.UsageDomain = (*Domain)(nil)

// --- Accounts ---

// RegisterAccount creates an account with the next signup sequence number.
// The count may be stale under concurrent signups; the cohort flag tolerates that.
func (d *Domain) RegisterAccount(ctx context.Context, username, email string) (*model.Account, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" {
		return nil, ErrInvalidAccount
	}

	exists, err := d.accounts.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, fmt.Errorf("check account: %w", err)
	}
	if exists {
		return nil, ErrAccountExists
	}

	count, err := d.accounts.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count accounts: %w", err)
	}

	now := d.clock.Now()
	seq := count + 1
	acc := &model.Account{
		ID:                   uuid.New(),
		Username:             username,
		Email:                email,
		SignupSequenceNumber: seq,
		IsEarlyBirdSignup:    d.pricing.IsEarlyBirdSignup(seq),
		LastResetDay:         d.quota.Today(now),
		Level:                1,
		Version:              1,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := d.accounts.Create(ctx, acc); err != nil {
		if errors.Is(err, outbound.ErrDuplicateRecord) {
			return nil, ErrAccountExists
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	d.logger.Info("account registered",
		zap.String("account_id", acc.ID.String()),
		zap.Int64("signup_sequence_number", seq),
		zap.Bool("early_bird", acc.IsEarlyBirdSignup),
	)
	d.publish(ctx, events.NewAccountRegisteredEvent(acc, now))
	return acc, nil
}

// GetAccount returns the stored account.
func (d *Domain) GetAccount(ctx context.Context, accountID uuid.UUID) (*model.Account, error) {
	acc, err := d.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	if acc == nil {
		return nil, ErrAccountNotFound
	}
	return acc, nil
}

// --- Entitlement ---

// GetEntitlementStatus applies lazy expiry and the daily reset, persisting
// them if they changed anything, and reports what the account may use.
func (d *Domain) GetEntitlementStatus(ctx context.Context, accountID uuid.UUID) (*model.EntitlementStatus, error) {
	var (
		unlimited bool
		expired   bool
		at        time.Time
	)
	acc, err := d.mutate(ctx, accountID, func(acc *model.Account, now time.Time) (bool, error) {
		at = now
		var tr entitlement.Transition
		unlimited, tr = d.entitlement.IsUnlimited(acc, now)
		expired = d.entitlement.Apply(acc, tr)
		reset := d.quota.Reset(acc, now)
		return expired || reset, nil
	})
	if err != nil {
		return nil, err
	}
	if expired {
		d.publish(ctx, events.NewPremiumEvent(events.TypePremiumExpired, acc, 0, "lazy_expiry", at))
	}
	return d.status(acc, unlimited, at), nil
}

// --- Usage ---

// Admit decides whether a metered operation may start. In reserve mode the
// estimate is set aside until Settle or Cancel.
func (d *Domain) Admit(ctx context.Context, accountID uuid.UUID, estimateSeconds int64) (*model.Admission, error) {
	if d.cfg.AdmissionMode == AdmissionReserve {
		return d.admitReserve(ctx, accountID, estimateSeconds)
	}

	status, err := d.GetEntitlementStatus(ctx, accountID)
	if err != nil {
		return nil, err
	}
	adm := &model.Admission{AccountID: accountID, Unlimited: status.IsUnlimited, AdmittedAt: d.clock.Now()}
	if !status.IsUnlimited && status.RemainingSeconds <= 0 {
		d.quotaExhausted(ctx, accountID)
		return nil, ErrQuotaExceeded
	}
	return adm, nil
}

func (d *Domain) admitReserve(ctx context.Context, accountID uuid.UUID, estimate int64) (*model.Admission, error) {
	if estimate <= 0 {
		estimate = d.cfg.EstimateSeconds
	}
	adm := &model.Admission{AccountID: accountID}
	var expired bool
	acc, err := d.mutate(ctx, accountID, func(acc *model.Account, now time.Time) (bool, error) {
		*adm = model.Admission{AccountID: accountID, AdmittedAt: now}
		unlimited, tr := d.entitlement.IsUnlimited(acc, now)
		expired = d.entitlement.Apply(acc, tr)
		changed := d.quota.Reset(acc, now) || expired
		if unlimited {
			adm.Unlimited = true
			return changed, nil
		}
		reserved := d.quota.Reserve(acc, estimate, now)
		if reserved == 0 {
			return false, ErrQuotaExceeded
		}
		adm.ReservedSeconds = reserved
		return true, nil
	})
	if err != nil {
		if errors.Is(err, ErrQuotaExceeded) {
			d.quotaExhausted(ctx, accountID)
		}
		return nil, err
	}
	if expired {
		d.publish(ctx, events.NewPremiumEvent(events.TypePremiumExpired, acc, 0, "lazy_expiry", adm.AdmittedAt))
	}
	return adm, nil
}

// Settle completes an admitted operation: the reservation is released and
// the actual consumption is recorded.
func (d *Domain) Settle(ctx context.Context, adm *model.Admission, secondsConsumed int64) (*model.EntitlementStatus, error) {
	return d.apply(ctx, adm.AccountID, adm, secondsConsumed)
}

// Cancel abandons an admitted operation without debit or XP.
func (d *Domain) Cancel(ctx context.Context, adm *model.Admission) error {
	if adm == nil || adm.ReservedSeconds == 0 {
		return nil
	}
	_, err := d.mutate(ctx, adm.AccountID, func(acc *model.Account, now time.Time) (bool, error) {
		reset := d.quota.Reset(acc, now)
		released := d.release(acc, adm, now)
		return reset || released, nil
	})
	return err
}

// RecordUsage applies one completed usage event: quota debit and
// engagement update are written together.
func (d *Domain) RecordUsage(ctx context.Context, accountID uuid.UUID, secondsConsumed int64) (*model.EntitlementStatus, error) {
	return d.apply(ctx, accountID, nil, secondsConsumed)
}

// release returns adm's reservation if it was taken today. Reservations of
// earlier days were already dropped by the daily reset.
func (d *Domain) release(acc *model.Account, adm *model.Admission, now time.Time) bool {
	if adm == nil || adm.ReservedSeconds == 0 {
		return false
	}
	if d.quota.Today(adm.AdmittedAt) != d.quota.Today(now) {
		return false
	}
	d.quota.Release(acc, adm.ReservedSeconds)
	return true
}

func (d *Domain) apply(ctx context.Context, accountID uuid.UUID, adm *model.Admission, seconds int64) (*model.EntitlementStatus, error) {
	if seconds < 0 {
		return nil, ErrInvalidUsage
	}
	var (
		unlimited bool
		expired   bool
		levelUp   bool
		event     model.UsageEvent
	)
	acc, err := d.mutate(ctx, accountID, func(acc *model.Account, now time.Time) (bool, error) {
		var tr entitlement.Transition
		unlimited, tr = d.entitlement.IsUnlimited(acc, now)
		expired = d.entitlement.Apply(acc, tr)
		d.quota.Reset(acc, now)

		event = model.UsageEvent{
			AccountID:       accountID,
			SecondsConsumed: seconds,
			XPGain:          d.engagement.XPForUsage(seconds),
			OccurredAt:      now,
		}
		d.release(acc, adm, now)
		d.quota.Debit(acc, event.SecondsConsumed, now)

		level := acc.Level
		d.engagement.RecordActivity(acc, event.XPGain, now)
		levelUp = acc.Level > level
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	d.logger.Debug("usage recorded",
		zap.String("account_id", accountID.String()),
		zap.Int64("seconds", seconds),
		zap.Int64("xp_gain", event.XPGain),
		zap.Int64("daily_used_seconds", acc.DailyUsedSeconds),
	)
	if expired {
		d.publish(ctx, events.NewPremiumEvent(events.TypePremiumExpired, acc, 0, "lazy_expiry", event.OccurredAt))
	}
	d.publish(ctx, events.NewUsageRecordedEvent(event, unlimited, levelUp))
	return d.status(acc, unlimited, event.OccurredAt), nil
}

// --- Read models ---

// GetProfileStats returns engagement counters.
func (d *Domain) GetProfileStats(ctx context.Context, accountID uuid.UUID) (*model.ProfileStats, error) {
	acc, err := d.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	toNext := d.engagement.XPNeededForLevel(acc.Level) - acc.XP
	if toNext < 0 {
		toNext = 0
	}
	return &model.ProfileStats{
		AccountID:           acc.ID,
		XP:                  acc.XP,
		Level:               acc.Level,
		XPToNextLevel:       toNext,
		StreakDays:          acc.StreakDays,
		LifetimeUsedSeconds: acc.LifetimeUsedSeconds,
		IsEarlyBirdSignup:   acc.IsEarlyBirdSignup,
		LockedTier:          acc.LockedTier(),
	}, nil
}

// GetPricing returns the tier a checkout started now would lock in.
func (d *Domain) GetPricing(ctx context.Context) (*model.PricingInfo, error) {
	count, err := d.accounts.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count accounts: %w", err)
	}
	return &model.PricingInfo{
		Tier:           d.pricing.CurrentTier(count),
		Currency:       d.cfg.Currency,
		SlotsRemaining: d.pricing.SlotsRemaining(count),
		TotalAccounts:  count,
	}, nil
}

// --- Admin ---

// overviewRecentLimit bounds the recent accounts and payments in the overview.
const overviewRecentLimit = 10

// AdminOverview aggregates account and revenue counters along with the
// newest signups and payments.
func (d *Domain) AdminOverview(ctx context.Context) (*model.AdminOverview, error) {
	pricingInfo, err := d.GetPricing(ctx)
	if err != nil {
		return nil, err
	}
	premium, err := d.accounts.CountPremium(ctx, d.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("count premium: %w", err)
	}
	earlyBird, err := d.accounts.CountEarlyBird(ctx)
	if err != nil {
		return nil, fmt.Errorf("count early bird: %w", err)
	}
	revenue, err := d.orders.SumPaidAmount(ctx)
	if err != nil {
		return nil, fmt.Errorf("sum revenue: %w", err)
	}
	recentAccounts, err := d.accounts.ListRecent(ctx, overviewRecentLimit)
	if err != nil {
		return nil, fmt.Errorf("recent accounts: %w", err)
	}
	recentPayments, err := d.orders.ListRecentPaid(ctx, overviewRecentLimit)
	if err != nil {
		return nil, fmt.Errorf("recent payments: %w", err)
	}
	return &model.AdminOverview{
		TotalAccounts:     pricingInfo.TotalAccounts,
		PremiumAccounts:   premium,
		FreeAccounts:      pricingInfo.TotalAccounts - premium,
		EarlyBirdAccounts: earlyBird,
		TotalRevenue:      revenue,
		Currency:          d.cfg.Currency,
		Pricing:           *pricingInfo,
		RecentAccounts:    recentAccounts,
		RecentPayments:    recentPayments,
	}, nil
}

// AdminGrantPremium grants premium manually. months <= 0 grants one month.
func (d *Domain) AdminGrantPremium(ctx context.Context, accountID uuid.UUID, months int) (*model.EntitlementStatus, error) {
	if months <= 0 {
		months = 1
	}
	var at time.Time
	acc, err := d.mutate(ctx, accountID, func(acc *model.Account, now time.Time) (bool, error) {
		at = now
		d.entitlement.GrantPremium(acc, months, now)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	d.logger.Info("premium granted by admin", zap.String("account_id", accountID.String()), zap.Int("months", months))
	d.publish(ctx, events.NewPremiumEvent(events.TypePremiumGranted, acc, months, "admin", at))
	return d.status(acc, true, at), nil
}

// AdminRevoke ends premium immediately.
func (d *Domain) AdminRevoke(ctx context.Context, accountID uuid.UUID) (*model.EntitlementStatus, error) {
	var at time.Time
	acc, err := d.mutate(ctx, accountID, func(acc *model.Account, now time.Time) (bool, error) {
		at = now
		d.entitlement.Revoke(acc, now)
		d.quota.Reset(acc, now)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	d.logger.Info("premium revoked by admin", zap.String("account_id", accountID.String()))
	d.publish(ctx, events.NewPremiumEvent(events.TypePremiumRevoked, acc, 0, "admin", at))
	return d.status(acc, false, at), nil
}

// --- Helpers ---

// mutate runs a read-modify-write on one account under the account lock,
// persisting with a version check and retrying on conflicts. fn reports
// whether it changed the account; unchanged accounts are not written.
func (d *Domain) mutate(ctx context.Context, accountID uuid.UUID, fn func(acc *model.Account, now time.Time) (bool, error)) (*model.Account, error) {
	unlock, err := d.locker.Lock(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("lock account: %w", err)
	}
	defer unlock()

	return retry.OnConflict(ctx, d.cfg.MaxRetries, func() (*model.Account, error) {
		acc, err := d.accounts.GetByID(ctx, accountID)
		if err != nil {
			return nil, fmt.Errorf("get account: %w", err)
		}
		if acc == nil {
			return nil, ErrAccountNotFound
		}
		expected := acc.Version
		changed, err := fn(acc, d.clock.Now())
		if err != nil || !changed {
			return acc, err
		}
		if err := d.accounts.UpdateIfVersion(ctx, acc, expected); err != nil {
			if errors.Is(err, outbound.ErrConcurrentModification) {
				d.logger.Debug("account version conflict, retrying", zap.String("account_id", accountID.String()))
				return nil, err
			}
			return nil, fmt.Errorf("update account: %w", err)
		}
		return acc, nil
	})
}

func (d *Domain) status(acc *model.Account, unlimited bool, now time.Time) *model.EntitlementStatus {
	remaining := d.quota.Remaining(acc, now)
	return &model.EntitlementStatus{
		AccountID:            acc.ID,
		IsUnlimited:          unlimited,
		RemainingSeconds:     remaining,
		FormattedRemaining:   quota.FormatRemaining(remaining, unlimited),
		DailyCapacitySeconds: d.quota.Capacity(),
		PremiumExpiry:        acc.PremiumExpiry,
	}
}

func (d *Domain) quotaExhausted(ctx context.Context, accountID uuid.UUID) {
	d.logger.Info("quota exhausted", zap.String("account_id", accountID.String()))
	used := int64(0)
	if acc, err := d.accounts.GetByID(ctx, accountID); err == nil && acc != nil {
		used = acc.DailyUsedSeconds
	}
	d.publish(ctx, events.NewQuotaExhaustedEvent(accountID, used, d.clock.Now()))
}

func (d *Domain) publish(ctx context.Context, event events.Event) {
	if d.publisher == nil {
		return
	}
	if err := d.publisher.Publish(ctx, event); err != nil {
		d.logger.Warn("failed to publish event", zap.String("event_type", event.EventType()), zap.Error(err))
	}
}
