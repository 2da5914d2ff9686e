package memory

import (
	"context"
	"sort"

	"github.com/ariachat/server/internal/model"
	"github.com/ariachat/server/internal/port/outbound"
	"github.com/google/uuid"
)

type messageRepository struct {
	s *Store
}

// NewMessageRepository returns a chat history adapter backed by s.
func NewMessageRepository(s *Store) outbound.MessageDatabasePort {
	return &messageRepository{s: s}
}

var _ outbound.MessageDatabasePort = (*messageRepository)(nil)

func (r *messageRepository) CreateBatch(ctx context.Context, messages []*model.Message) error {
	defer r.s.lock(ctx)()
	for _, m := range messages {
		if _, ok := r.s.messages[m.ID]; ok {
			return ErrDuplicate
		}
	}
	for _, m := range messages {
		c := *m
		r.s.messages[m.ID] = &c
	}
	return nil
}

func (r *messageRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*model.Message, int64, error) {
	defer r.s.lock(ctx)()
	var all []*model.Message
	for _, m := range r.s.messages {
		if m.AccountID == accountID {
			c := *m
			all = append(all, &c)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].Role < all[j].Role
	})

	total := int64(len(all))
	if offset >= len(all) {
		return []*model.Message{}, total, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], total, nil
}

func (r *messageRepository) Delete(ctx context.Context, accountID, messageID uuid.UUID) (bool, error) {
	defer r.s.lock(ctx)()
	m, ok := r.s.messages[messageID]
	if !ok || m.AccountID != accountID {
		return false, nil
	}
	delete(r.s.messages, messageID)
	return true, nil
}

func (r *messageRepository) DeleteByAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	defer r.s.lock(ctx)()
	var n int64
	for id, m := range r.s.messages {
		if m.AccountID == accountID {
			delete(r.s.messages, id)
			n++
		}
	}
	return n, nil
}
