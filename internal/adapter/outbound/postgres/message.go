package postgres

import (
	"context"
	"fmt"

	"github.com/ariachat/server/internal/model"
	"github.com/ariachat/server/internal/port/outbound"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// messageAdapter implements outbound.MessageDatabasePort.
type messageAdapter struct {
	db *gorm.DB
}

// NewMessageAdapter creates a new chat history adapter.
func NewMessageAdapter(db *gorm.DB) outbound.MessageDatabasePort {
	return &messageAdapter{db: db}
}

func (a *messageAdapter) CreateBatch(ctx context.Context, messages []*model.Message) error {
	if len(messages) == 0 {
		return nil
	}
	if err := conn(ctx, a.db).Create(&messages).Error; err != nil {
		return fmt.Errorf("create messages: %w", err)
	}
	return nil
}

func (a *messageAdapter) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*model.Message, int64, error) {
	var messages []*model.Message
	var total int64

	scope := func() *gorm.DB {
		return conn(ctx, a.db).Model(&model.Message{}).Where("account_id = ?", accountID)
	}
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count messages: %w", err)
	}

	query := scope()
	if limit > 0 {
		query = query.Offset(offset).Limit(limit)
	}
	// Both turns of an exchange share a timestamp; the assistant sorts first.
	if err := query.Order("created_at DESC").Order("role ASC").Find(&messages).Error; err != nil {
		return nil, 0, fmt.Errorf("list messages: %w", err)
	}
	return messages, total, nil
}

func (a *messageAdapter) Delete(ctx context.Context, accountID, messageID uuid.UUID) (bool, error) {
	result := conn(ctx, a.db).
		Where("id = ? AND account_id = ?", messageID, accountID).
		Delete(&model.Message{})
	if result.Error != nil {
		return false, fmt.Errorf("delete message: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (a *messageAdapter) DeleteByAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	result := conn(ctx, a.db).
		Where("account_id = ?", accountID).
		Delete(&model.Message{})
	if result.Error != nil {
		return 0, fmt.Errorf("clear messages: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// Compile-time check
var _ outbound.MessageDatabasePort = (*messageAdapter)(nil)
