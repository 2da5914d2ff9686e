package memory

import (
	"context"
	"sync"

	"github.com/ariachat/server/internal/port/outbound"
	"github.com/google/uuid"
)

// KeyedLocker is an in-process per-account lock. Idle entries are dropped
// once no goroutine holds or waits for them.
type KeyedLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*keyedLock
}

type keyedLock struct {
	ch   chan struct{}
	refs int
}

// NewKeyedLocker creates a KeyedLocker.
func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{locks: make(map[uuid.UUID]*keyedLock)}
}

var _ outbound.AccountLockerPort = (*KeyedLocker)(nil)

// Lock blocks until the account lock is held or ctx is done.
func (l *KeyedLocker) Lock(ctx context.Context, accountID uuid.UUID) (func(), error) {
	l.mu.Lock()
	kl, ok := l.locks[accountID]
	if !ok {
		kl = &keyedLock{ch: make(chan struct{}, 1)}
		l.locks[accountID] = kl
	}
	kl.refs++
	l.mu.Unlock()

	select {
	case kl.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(accountID, kl)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-kl.ch
			l.release(accountID, kl)
		})
	}, nil
}

func (l *KeyedLocker) release(accountID uuid.UUID, kl *keyedLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, accountID)
	}
}
