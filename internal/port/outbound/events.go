package outbound

import "context"

// DomainEvent is announced after an account or order change is persisted.
type DomainEvent interface {
	EventType() string
}

// EventPublisherPort fans domain events out to observers. A publish error
// is logged by the caller and never undoes the change it describes.
type EventPublisherPort interface {
	Publish(ctx context.Context, event DomainEvent) error
}
