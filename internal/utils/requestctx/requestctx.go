// Package requestctx carries per-request identifiers on a context.Context
// so that loggers below the HTTP layer can tag their output.
package requestctx

import (
	"context"

	"github.com/google/uuid"
)

type requestIDKey struct{}

type accountIDKey struct{}

// WithRequestID attaches the request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request id, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// WithAccountID attaches the authenticated account.
func WithAccountID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, accountIDKey{}, id)
}

// AccountID returns the authenticated account, or uuid.Nil.
func AccountID(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(accountIDKey{}).(uuid.UUID)
	return id
}
