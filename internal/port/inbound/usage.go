package inbound

import (
	"context"

	"github.com/ariachat/server/internal/model"
	"github.com/google/uuid"
)

// UsageDomain is the quota, entitlement and engagement interface exposed to
// the HTTP layer.
type UsageDomain interface {
	RegisterAccount(ctx context.Context, username, email string) (*model.Account, error)
	GetAccount(ctx context.Context, accountID uuid.UUID) (*model.Account, error)
	GetEntitlementStatus(ctx context.Context, accountID uuid.UUID) (*model.EntitlementStatus, error)

	// Admit checks whether a metered operation may start. It returns
	// ErrQuotaExceeded when the daily allowance is spent.
	Admit(ctx context.Context, accountID uuid.UUID, estimateSeconds int64) (*model.Admission, error)
	Settle(ctx context.Context, admission *model.Admission, secondsConsumed int64) (*model.EntitlementStatus, error)
	Cancel(ctx context.Context, admission *model.Admission) error
	RecordUsage(ctx context.Context, accountID uuid.UUID, secondsConsumed int64) (*model.EntitlementStatus, error)

	GetProfileStats(ctx context.Context, accountID uuid.UUID) (*model.ProfileStats, error)
	GetPricing(ctx context.Context) (*model.PricingInfo, error)

	// Admin
	AdminOverview(ctx context.Context) (*model.AdminOverview, error)
	AdminGrantPremium(ctx context.Context, accountID uuid.UUID, months int) (*model.EntitlementStatus, error)
	AdminRevoke(ctx context.Context, accountID uuid.UUID) (*model.EntitlementStatus, error)
}
