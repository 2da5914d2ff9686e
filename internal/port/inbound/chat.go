package inbound

import (
	"context"

	"github.com/ariachat/server/internal/model"
	"github.com/google/uuid"
)

// ChatDomain runs a metered chat exchange and manages the account's
// chat history.
type ChatDomain interface {
	Chat(ctx context.Context, accountID uuid.UUID, message string) (*model.ChatReply, error)
	History(ctx context.Context, accountID uuid.UUID, q model.PageQuery) (*model.ChatHistory, error)
	DeleteMessage(ctx context.Context, accountID, messageID uuid.UUID) error
	ClearHistory(ctx context.Context, accountID uuid.UUID) (int64, error)
}
