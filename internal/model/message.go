package model

import (
	"time"

	"github.com/google/uuid"
)

// MessageRole tells who wrote a chat turn.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is one persisted chat turn. Assistant turns carry the seconds the
// exchange was metered for; user turns carry zero.
type Message struct {
	ID              uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey"`
	AccountID       uuid.UUID   `json:"-" gorm:"type:uuid;not null;index:idx_messages_account_created,priority:1"`
	Role            MessageRole `json:"role" gorm:"size:16;not null"`
	Content         string      `json:"content" gorm:"type:text;not null"`
	Cached          bool        `json:"cached,omitempty" gorm:"not null;default:false"`
	DurationSeconds int64       `json:"duration_seconds" gorm:"not null;default:0"`
	CreatedAt       time.Time   `json:"created_at" gorm:"not null;index:idx_messages_account_created,priority:2"`
}

// TableName returns the database table name.
func (Message) TableName() string {
	return "messages"
}

// HistoryDay holds the messages of one calendar day, newest first.
type HistoryDay struct {
	Day      Day        `json:"day"`
	Messages []*Message `json:"messages"`
}

// ChatHistory is one page of an account's messages grouped by day.
type ChatHistory struct {
	Days          []HistoryDay `json:"days"`
	TotalMessages int64        `json:"total_messages"`
	Page          int          `json:"page"`
	PageSize      int          `json:"page_size"`
	TotalPages    int          `json:"total_pages"`
}

// ClearHistoryResponse reports how many messages were removed.
type ClearHistoryResponse struct {
	Deleted int64 `json:"deleted"`
}
