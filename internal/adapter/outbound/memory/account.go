package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/ariachat/server/internal/model"
	"github.com/ariachat/server/internal/port/outbound"
	"github.com/google/uuid"
)

// ErrDuplicate is returned when a unique field is already taken.
var ErrDuplicate = outbound.ErrDuplicateRecord

type accountRepository struct {
	s *Store
}

// NewAccountRepository returns an account adapter backed by s.
func NewAccountRepository(s *Store) outbound.AccountDatabasePort {
	return &accountRepository{s: s}
}

var _ outbound.AccountDatabasePort = (*accountRepository)(nil)

func (r *accountRepository) Create(ctx context.Context, account *model.Account) error {
	defer r.s.lock(ctx)()
	for _, a := range r.s.accounts {
		if a.ID == account.ID || strings.EqualFold(a.Username, account.Username) || strings.EqualFold(a.Email, account.Email) {
			return ErrDuplicate
		}
	}
	if account.Version == 0 {
		account.Version = 1
	}
	r.s.accounts[account.ID] = account.Clone()
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	defer r.s.lock(ctx)()
	return r.s.accounts[id].Clone(), nil
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	defer r.s.lock(ctx)()
	for _, a := range r.s.accounts {
		if strings.EqualFold(a.Email, email) {
			return a.Clone(), nil
		}
	}
	return nil, nil
}

func (r *accountRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	defer r.s.lock(ctx)()
	for _, a := range r.s.accounts {
		if strings.EqualFold(a.Username, username) || strings.EqualFold(a.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *accountRepository) UpdateIfVersion(ctx context.Context, account *model.Account, expected int64) error {
	defer r.s.lock(ctx)()
	stored, ok := r.s.accounts[account.ID]
	if !ok || stored.Version != expected {
		return outbound.ErrConcurrentModification
	}
	account.Version = expected + 1
	account.UpdatedAt = time.Now()
	r.s.accounts[account.ID] = account.Clone()
	return nil
}

func (r *accountRepository) Count(ctx context.Context) (int64, error) {
	defer r.s.lock(ctx)()
	return int64(len(r.s.accounts)), nil
}

func (r *accountRepository) CountPremium(ctx context.Context, now time.Time) (int64, error) {
	defer r.s.lock(ctx)()
	var n int64
	for _, a := range r.s.accounts {
		if a.IsPremium && a.PremiumExpiry != nil && a.PremiumExpiry.After(now) {
			n++
		}
	}
	return n, nil
}

func (r *accountRepository) CountEarlyBird(ctx context.Context) (int64, error) {
	defer r.s.lock(ctx)()
	var n int64
	for _, a := range r.s.accounts {
		if a.IsEarlyBirdSignup {
			n++
		}
	}
	return n, nil
}

func (r *accountRepository) ListRecent(ctx context.Context, limit int) ([]*model.Account, error) {
	defer r.s.lock(ctx)()
	all := make([]*model.Account, 0, len(r.s.accounts))
	for _, a := range r.s.accounts {
		all = append(all, a.Clone())
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}
