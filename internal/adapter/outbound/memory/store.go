// Package memory provides in-process adapters for single-instance
// deployments and tests.
package memory

import (
	"context"
	"sync"

	"github.com/ariachat/server/internal/model"
	"github.com/ariachat/server/internal/port/outbound"
	"github.com/google/uuid"
)

type txKey struct{}

// Store holds all records behind one mutex. Transactions hold the mutex for
// their whole duration and roll back by restoring a snapshot.
type Store struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*model.Account
	orders   map[string]*model.Order
	webhooks map[uuid.UUID]*model.WebhookEvent
	messages map[uuid.UUID]*model.Message
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[uuid.UUID]*model.Account),
		orders:   make(map[string]*model.Order),
		webhooks: make(map[uuid.UUID]*model.WebhookEvent),
		messages: make(map[uuid.UUID]*model.Message),
	}
}

var _ outbound.TransactorPort = (*Store)(nil)

// WithinTransaction runs fn atomically with respect to other store calls.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// lock acquires the store mutex unless ctx already runs inside a transaction.
func (s *Store) lock(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

type snapshot struct {
	accounts map[uuid.UUID]*model.Account
	orders   map[string]*model.Order
	webhooks map[uuid.UUID]*model.WebhookEvent
	messages map[uuid.UUID]*model.Message
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		accounts: make(map[uuid.UUID]*model.Account, len(s.accounts)),
		orders:   make(map[string]*model.Order, len(s.orders)),
		webhooks: make(map[uuid.UUID]*model.WebhookEvent, len(s.webhooks)),
		messages: make(map[uuid.UUID]*model.Message, len(s.messages)),
	}
	for k, v := range s.accounts {
		snap.accounts[k] = v.Clone()
	}
	for k, v := range s.orders {
		snap.orders[k] = cloneOrder(v)
	}
	for k, v := range s.webhooks {
		c := *v
		snap.webhooks[k] = &c
	}
	for k, v := range s.messages {
		c := *v
		snap.messages[k] = &c
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.accounts = snap.accounts
	s.orders = snap.orders
	s.webhooks = snap.webhooks
	s.messages = snap.messages
}

func cloneOrder(o *model.Order) *model.Order {
	if o == nil {
		return nil
	}
	c := *o
	if o.PaidAt != nil {
		t := *o.PaidAt
		c.PaidAt = &t
	}
	return &c
}
