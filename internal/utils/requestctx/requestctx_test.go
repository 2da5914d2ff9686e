package requestctx

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RequestID(ctx))
	assert.Equal(t, uuid.Nil, AccountID(ctx))

	id := uuid.New()
	ctx = WithAccountID(WithRequestID(ctx, "req-1"), id)

	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Equal(t, id, AccountID(ctx))
}
