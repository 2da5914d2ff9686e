package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ariachat/server/internal/model"
	"github.com/ariachat/server/internal/port/outbound"
)

// paymentAttemptLog stores one webhook_events row per confirmation attempt.
type paymentAttemptLog struct {
	db *gorm.DB
}

// NewWebhookEventAdapter returns the gorm-backed payment attempt log.
func NewWebhookEventAdapter(db *gorm.DB) outbound.WebhookEventDatabasePort {
	return &paymentAttemptLog{db: db}
}

func (l *paymentAttemptLog) Create(ctx context.Context, attempt *model.WebhookEvent) error {
	if attempt.ID == uuid.Nil {
		attempt.ID = uuid.New()
	}
	if err := conn(ctx, l.db).Create(attempt).Error; err != nil {
		return fmt.Errorf("record %s attempt for %q: %w", attempt.Provider, attempt.OrderID, err)
	}
	return nil
}

// MarkProcessed closes the attempt. A nil processErr leaves the error
// column untouched.
func (l *paymentAttemptLog) MarkProcessed(ctx context.Context, id uuid.UUID, processErr error) error {
	cols := model.WebhookEvent{Processed: true}
	fields := []string{"Processed"}
	if processErr != nil {
		msg := processErr.Error()
		cols.Error = &msg
		fields = append(fields, "Error")
	}
	res := conn(ctx, l.db).Model(&model.WebhookEvent{ID: id}).Select(fields).Updates(cols)
	if res.Error != nil {
		return fmt.Errorf("close attempt %s: %w", id, res.Error)
	}
	return nil
}

var _ outbound.WebhookEventDatabasePort = (*paymentAttemptLog)(nil)
