package outbound

import "context"

// CompletionPort produces a chat reply. It is opaque: it either returns
// text or fails.
type CompletionPort interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
