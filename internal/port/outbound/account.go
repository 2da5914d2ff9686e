package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/ariachat/server/internal/model"
	"github.com/google/uuid"
)

// ErrConcurrentModification is returned by conditional updates whose
// version precondition no longer holds. Callers retry the whole
// read-modify-write.
var ErrConcurrentModification = errors.New("concurrent modification")

// ErrDuplicateRecord is returned when a unique field is already taken.
var ErrDuplicateRecord = errors.New("duplicate record")

// AccountDatabasePort defines account persistence operations.
// Lookups return (nil, nil) when the record does not exist.
type AccountDatabasePort interface {
	Create(ctx context.Context, account *model.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Account, error)
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)

	// UpdateIfVersion persists every mutable field of account when the stored
	// version still equals expected, and sets account.Version to expected+1.
	// Returns ErrConcurrentModification when the precondition fails.
	UpdateIfVersion(ctx context.Context, account *model.Account, expected int64) error

	// Aggregates
	Count(ctx context.Context) (int64, error)
	CountPremium(ctx context.Context, now time.Time) (int64, error)
	CountEarlyBird(ctx context.Context) (int64, error)

	// ListRecent returns the newest accounts first.
	ListRecent(ctx context.Context, limit int) ([]*model.Account, error)
}

// AccountLockerPort serializes mutations of a single account.
type AccountLockerPort interface {
	// Lock blocks until the account lock is held or ctx is done.
	// The returned function releases the lock.
	Lock(ctx context.Context, accountID uuid.UUID) (unlock func(), err error)
}

// TransactorPort runs a function inside a store transaction. Adapters
// called with the context passed to fn participate in that transaction.
type TransactorPort interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
