package events

import "context"

// Handler observes events of the types it lists.
type Handler interface {
	Handles() []string
	Handle(ctx context.Context, event Event) error
}

type funcHandler struct {
	types []string
	fn    func(context.Context, Event) error
}

func (h funcHandler) Handles() []string { return h.types }

func (h funcHandler) Handle(ctx context.Context, event Event) error { return h.fn(ctx, event) }
