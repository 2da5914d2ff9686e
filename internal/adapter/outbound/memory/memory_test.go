package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ariachat/server/internal/model"
	"github.com/ariachat/server/internal/port/outbound"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAccount(name string) *model.Account {
	return &model.Account{ID: uuid.New(), Username: name, Email: name + "@example.com", Level: 1, LastResetDay: "2026-04-10"}
}

func TestAccountRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository(NewStore())

	acc := newAccount("asha")
	require.NoError(t, repo.Create(ctx, acc))
	assert.ErrorIs(t, repo.Create(ctx, newAccount("asha")), ErrDuplicate)

	got, err := repo.GetByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Version)

	missing, err := repo.GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	exists, err := repo.ExistsByUsernameOrEmail(ctx, "other", "ASHA@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	byEmail, err := repo.GetByEmail(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, acc.ID, byEmail.ID)

	t.Run("conditional update", func(t *testing.T) {
		a, _ := repo.GetByID(ctx, acc.ID)
		b, _ := repo.GetByID(ctx, acc.ID)

		a.DailyUsedSeconds = 100
		require.NoError(t, repo.UpdateIfVersion(ctx, a, 1))
		assert.Equal(t, int64(2), a.Version)

		b.DailyUsedSeconds = 200
		assert.ErrorIs(t, repo.UpdateIfVersion(ctx, b, 1), outbound.ErrConcurrentModification)

		stored, _ := repo.GetByID(ctx, acc.ID)
		assert.Equal(t, int64(100), stored.DailyUsedSeconds)
	})

	t.Run("returned records are copies", func(t *testing.T) {
		a, _ := repo.GetByID(ctx, acc.ID)
		a.XP = 999
		stored, _ := repo.GetByID(ctx, acc.ID)
		assert.Equal(t, int64(0), stored.XP)
	})
}

func TestAccountRepository_Counts(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository(NewStore())
	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)

	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)
	a, b, c := newAccount("a"), newAccount("b"), newAccount("c")
	a.IsPremium, a.PremiumExpiry, a.IsEarlyBirdSignup = true, &future, true
	b.IsPremium, b.PremiumExpiry = true, &past
	for _, acc := range []*model.Account{a, b, c} {
		require.NoError(t, repo.Create(ctx, acc))
	}

	n, _ := repo.Count(ctx)
	assert.Equal(t, int64(3), n)
	n, _ = repo.CountPremium(ctx, now)
	assert.Equal(t, int64(1), n)
	n, _ = repo.CountEarlyBird(ctx)
	assert.Equal(t, int64(1), n)
}

func TestOrderRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(NewStore())
	accountID := uuid.New()
	base := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"order_a", "order_b", "order_c"} {
		require.NoError(t, repo.Create(ctx, &model.Order{
			ID: uuid.New(), OrderID: id, AccountID: accountID, Status: model.OrderStatusCreated,
			AmountSnapshot: 89, CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	assert.ErrorIs(t, repo.Create(ctx, &model.Order{OrderID: "order_a"}), ErrDuplicate)

	changed, err := repo.TransitionStatus(ctx, "order_a", model.OrderStatusCreated, model.OrderStatusPaid, model.OrderTransition{At: base, ProviderPaymentID: "pay_1"})
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.TransitionStatus(ctx, "order_a", model.OrderStatusCreated, model.OrderStatusPaid, model.OrderTransition{At: base})
	require.NoError(t, err)
	assert.False(t, changed)

	changed, _ = repo.TransitionStatus(ctx, "missing", model.OrderStatusCreated, model.OrderStatusPaid, model.OrderTransition{At: base})
	assert.False(t, changed)

	o, _ := repo.GetByOrderID(ctx, "order_a")
	assert.Equal(t, model.OrderStatusPaid, o.Status)
	assert.Equal(t, "pay_1", o.ProviderPaymentID)
	require.NotNil(t, o.PaidAt)

	sum, _ := repo.SumPaidAmount(ctx)
	assert.Equal(t, int64(89), sum)

	list, total, err := repo.ListByAccount(ctx, accountID, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, list, 2)
	assert.Equal(t, "order_c", list[0].OrderID)

	list, _, _ = repo.ListByAccount(ctx, accountID, 2, 4)
	assert.Empty(t, list)
}

func TestStore_TransactionRollback(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	accounts := NewAccountRepository(s)
	orders := NewOrderRepository(s)

	acc := newAccount("ravi")
	require.NoError(t, accounts.Create(ctx, acc))
	require.NoError(t, orders.Create(ctx, &model.Order{OrderID: "order_1", AccountID: acc.ID, Status: model.OrderStatusCreated}))

	boom := errors.New("boom")
	err := s.WithinTransaction(ctx, func(txCtx context.Context) error {
		changed, err := orders.TransitionStatus(txCtx, "order_1", model.OrderStatusCreated, model.OrderStatusPaid, model.OrderTransition{At: time.Now()})
		require.NoError(t, err)
		require.True(t, changed)

		a, _ := accounts.GetByID(txCtx, acc.ID)
		a.IsPremium = true
		require.NoError(t, accounts.UpdateIfVersion(txCtx, a, a.Version))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	o, _ := orders.GetByOrderID(ctx, "order_1")
	assert.Equal(t, model.OrderStatusCreated, o.Status)
	a, _ := accounts.GetByID(ctx, acc.ID)
	assert.False(t, a.IsPremium)
	assert.Equal(t, int64(1), a.Version)
}

func TestWebhookEventRepository(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	repo := NewWebhookEventRepository(s)

	e := &model.WebhookEvent{ID: uuid.New(), Provider: "razorpay", EventID: "pay_1", OrderID: "order_1"}
	require.NoError(t, repo.Create(ctx, e))
	require.NoError(t, repo.MarkProcessed(ctx, e.ID, errors.New("invalid payment proof")))
	require.NoError(t, repo.MarkProcessed(ctx, uuid.New(), nil))

	got := s.WebhookEvents("order_1")
	require.Len(t, got, 1)
	assert.True(t, got[0].Processed)
	require.NotNil(t, got[0].Error)
	assert.Equal(t, "invalid payment proof", *got[0].Error)
}

func TestKeyedLocker(t *testing.T) {
	l := NewKeyedLocker()
	id := uuid.New()

	t.Run("serializes holders of the same key", func(t *testing.T) {
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			inside  int
			maxSeen int
		)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock, err := l.Lock(context.Background(), id)
				require.NoError(t, err)
				mu.Lock()
				inside++
				if inside > maxSeen {
					maxSeen = inside
				}
				mu.Unlock()
				time.Sleep(time.Millisecond)
				mu.Lock()
				inside--
				mu.Unlock()
				unlock()
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, maxSeen)
		assert.Empty(t, l.locks)
	})

	t.Run("honors context cancellation", func(t *testing.T) {
		unlock, err := l.Lock(context.Background(), id)
		require.NoError(t, err)
		defer unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		_, err = l.Lock(ctx, id)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("different keys do not block", func(t *testing.T) {
		unlock, err := l.Lock(context.Background(), uuid.New())
		require.NoError(t, err)
		defer unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		other, err := l.Lock(ctx, uuid.New())
		require.NoError(t, err)
		other()
	})
}

func TestIdempotencyStore(t *testing.T) {
	ctx := context.Background()
	store := NewIdempotencyStore()
	now := time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	ok, err := store.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Release(ctx, "k"))
	ok, err = store.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	data, err := store.Load(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, store.Save(ctx, "k", []byte("resp"), time.Hour))
	data, err = store.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("resp"), data)

	now = now.Add(2 * time.Hour)
	data, err = store.Load(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestRepositories_ListRecent(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	accounts := NewAccountRepository(store)
	orders := NewOrderRepository(store)
	base := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)

	for i, name := range []string{"a", "b", "c"} {
		acc := newAccount(name)
		acc.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, accounts.Create(ctx, acc))
	}
	recent, err := accounts.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "c", recent[0].Username)
	assert.Equal(t, "b", recent[1].Username)

	for i, id := range []string{"order_a", "order_b", "order_c"} {
		require.NoError(t, orders.Create(ctx, &model.Order{ID: uuid.New(), OrderID: id, Status: model.OrderStatusCreated}))
		if id == "order_b" {
			continue
		}
		_, err := orders.TransitionStatus(ctx, id, model.OrderStatusCreated, model.OrderStatusPaid,
			model.OrderTransition{At: base.Add(time.Duration(i) * time.Minute)})
		require.NoError(t, err)
	}
	paid, err := orders.ListRecentPaid(ctx, 10)
	require.NoError(t, err)
	require.Len(t, paid, 2)
	assert.Equal(t, "order_c", paid[0].OrderID)
	assert.Equal(t, "order_a", paid[1].OrderID)
}

func TestMessageRepository(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := NewMessageRepository(store)
	base := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	owner, other := uuid.New(), uuid.New()

	q := &model.Message{ID: uuid.New(), AccountID: owner, Role: model.RoleUser, Content: "hi", CreatedAt: base}
	a := &model.Message{ID: uuid.New(), AccountID: owner, Role: model.RoleAssistant, Content: "hello", DurationSeconds: 3, CreatedAt: base}
	require.NoError(t, repo.CreateBatch(ctx, []*model.Message{q, a}))
	require.NoError(t, repo.CreateBatch(ctx, []*model.Message{
		{ID: uuid.New(), AccountID: other, Role: model.RoleUser, Content: "x", CreatedAt: base},
	}))
	assert.ErrorIs(t, repo.CreateBatch(ctx, []*model.Message{q}), ErrDuplicate)

	list, total, err := repo.ListByAccount(ctx, owner, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 2)
	assert.Equal(t, model.RoleAssistant, list[0].Role)
	assert.Equal(t, model.RoleUser, list[1].Role)

	deleted, _ := repo.Delete(ctx, other, q.ID)
	assert.False(t, deleted)
	deleted, _ = repo.Delete(ctx, owner, q.ID)
	assert.True(t, deleted)

	// Messages roll back with the rest of the store.
	err = store.WithinTransaction(ctx, func(ctx context.Context) error {
		_, err := repo.DeleteByAccount(ctx, owner)
		require.NoError(t, err)
		return errors.New("abort")
	})
	require.Error(t, err)
	_, total, _ = repo.ListByAccount(ctx, owner, 10, 0)
	assert.Equal(t, int64(1), total)

	n, err := repo.DeleteByAccount(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, total, _ = repo.ListByAccount(ctx, other, 10, 0)
	assert.Equal(t, int64(1), total)
}
