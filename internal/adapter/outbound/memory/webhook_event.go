package memory

import (
	"context"

	"github.com/ariachat/server/internal/model"
	"github.com/ariachat/server/internal/port/outbound"
	"github.com/google/uuid"
)

type webhookEventRepository struct {
	s *Store
}

// NewWebhookEventRepository returns a payment attempt audit adapter backed by s.
func NewWebhookEventRepository(s *Store) outbound.WebhookEventDatabasePort {
	return &webhookEventRepository{s: s}
}

func (r *webhookEventRepository) Create(ctx context.Context, event *model.WebhookEvent) error {
	defer r.s.lock(ctx)()
	c := *event
	r.s.webhooks[event.ID] = &c
	return nil
}

func (r *webhookEventRepository) MarkProcessed(ctx context.Context, id uuid.UUID, processErr error) error {
	defer r.s.lock(ctx)()
	e, ok := r.s.webhooks[id]
	if !ok {
		return nil
	}
	e.Processed = true
	if processErr != nil {
		msg := processErr.Error()
		e.Error = &msg
	}
	return nil
}

// WebhookEvents returns all recorded attempts for orderID.
func (s *Store) WebhookEvents(orderID string) []*model.WebhookEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.WebhookEvent
	for _, e := range s.webhooks {
		if e.OrderID == orderID {
			c := *e
			out = append(out, &c)
		}
	}
	return out
}
