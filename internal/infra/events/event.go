package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is a fact about one account, published after it is persisted.
type Event interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AccountID() uuid.UUID
}

// Envelope carries the fields every event shares. Concrete events embed it.
type Envelope struct {
	ID      uuid.UUID `json:"id"`
	Type    string    `json:"type"`
	At      time.Time `json:"at"`
	Account uuid.UUID `json:"account_id"`
}

func (e Envelope) EventID() uuid.UUID    { return e.ID }
func (e Envelope) EventType() string     { return e.Type }
func (e Envelope) OccurredAt() time.Time { return e.At }
func (e Envelope) AccountID() uuid.UUID  { return e.Account }

// NewEnvelope stamps a fresh event id. at comes from the business clock,
// not time.Now, so replays in tests are deterministic.
func NewEnvelope(eventType string, accountID uuid.UUID, at time.Time) Envelope {
	return Envelope{
		ID:      uuid.New(),
		Type:    eventType,
		At:      at,
		Account: accountID,
	}
}
