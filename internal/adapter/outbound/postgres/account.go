package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ariachat/server/internal/model"
	"github.com/ariachat/server/internal/port/outbound"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// accountAdapter implements outbound.AccountDatabasePort.
type accountAdapter struct {
	db *gorm.DB
}

// NewAccountAdapter creates a new account database adapter.
func NewAccountAdapter(db *gorm.DB) outbound.AccountDatabasePort {
	return &accountAdapter{db: db}
}

func (a *accountAdapter) Create(ctx context.Context, account *model.Account) error {
	if account.Version == 0 {
		account.Version = 1
	}
	if err := conn(ctx, a.db).Create(account).Error; err != nil {
		if isDuplicate(err) {
			return outbound.ErrDuplicateRecord
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (a *accountAdapter) GetByID(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	var account model.Account
	err := conn(ctx, a.db).First(&account, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &account, nil
}

func (a *accountAdapter) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	var account model.Account
	err := conn(ctx, a.db).First(&account, "LOWER(email) = ?", strings.ToLower(email)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account by email: %w", err)
	}
	return &account, nil
}

func (a *accountAdapter) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var count int64
	err := conn(ctx, a.db).
		Model(&model.Account{}).
		Where("LOWER(username) = ? OR LOWER(email) = ?", strings.ToLower(username), strings.ToLower(email)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check account exists: %w", err)
	}
	return count > 0, nil
}

// UpdateIfVersion writes every mutable column in one conditional UPDATE.
// Columns are listed explicitly so zero values are persisted.
func (a *accountAdapter) UpdateIfVersion(ctx context.Context, account *model.Account, expected int64) error {
	now := time.Now()
	result := conn(ctx, a.db).
		Model(&model.Account{}).
		Where("id = ? AND version = ?", account.ID, expected).
		Updates(map[string]interface{}{
			"is_premium":              account.IsPremium,
			"premium_expiry":          account.PremiumExpiry,
			"locked_price_amount":     account.LockedPriceAmount,
			"locked_price_early_bird": account.LockedPriceEarlyBird,
			"locked_price_months":     account.LockedPriceMonths,
			"daily_used_seconds":      account.DailyUsedSeconds,
			"reserved_seconds":        account.ReservedSeconds,
			"last_reset_day":          account.LastResetDay,
			"lifetime_used_seconds":   account.LifetimeUsedSeconds,
			"xp":                      account.XP,
			"level":                   account.Level,
			"streak_days":             account.StreakDays,
			"last_activity_day":       account.LastActivityDay,
			"version":                 expected + 1,
			"updated_at":              now,
		})
	if result.Error != nil {
		return fmt.Errorf("update account: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return outbound.ErrConcurrentModification
	}
	account.Version = expected + 1
	account.UpdatedAt = now
	return nil
}

func (a *accountAdapter) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := conn(ctx, a.db).Model(&model.Account{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return count, nil
}

func (a *accountAdapter) CountPremium(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	err := conn(ctx, a.db).
		Model(&model.Account{}).
		Where("is_premium = ? AND premium_expiry > ?", true, now).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count premium accounts: %w", err)
	}
	return count, nil
}

func (a *accountAdapter) CountEarlyBird(ctx context.Context) (int64, error) {
	var count int64
	err := conn(ctx, a.db).
		Model(&model.Account{}).
		Where("is_early_bird_signup = ?", true).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count early bird accounts: %w", err)
	}
	return count, nil
}

func (a *accountAdapter) ListRecent(ctx context.Context, limit int) ([]*model.Account, error) {
	var accounts []*model.Account
	err := conn(ctx, a.db).
		Order("created_at DESC").
		Limit(limit).
		Find(&accounts).Error
	if err != nil {
		return nil, fmt.Errorf("list recent accounts: %w", err)
	}
	return accounts, nil
}

// Compile-time check
var _ outbound.AccountDatabasePort = (*accountAdapter)(nil)
