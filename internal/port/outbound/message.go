package outbound

import (
	"context"

	"github.com/ariachat/server/internal/model"
	"github.com/google/uuid"
)

// MessageDatabasePort persists chat history.
type MessageDatabasePort interface {
	// CreateBatch stores the messages of one exchange together.
	CreateBatch(ctx context.Context, messages []*model.Message) error

	// ListByAccount returns messages newest first and the account's total.
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*model.Message, int64, error)

	// Delete removes one message owned by accountID and reports whether
	// it existed.
	Delete(ctx context.Context, accountID, messageID uuid.UUID) (bool, error)

	// DeleteByAccount removes every message of the account.
	DeleteByAccount(ctx context.Context, accountID uuid.UUID) (int64, error)
}
