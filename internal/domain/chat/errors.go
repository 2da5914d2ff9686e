package chat

import "errors"

var (
	ErrEmptyMessage     = errors.New("message is empty")
	ErrMessageTooLong   = errors.New("message is too long")
	ErrCompletionFailed = errors.New("completion failed")
	ErrMessageNotFound  = errors.New("message not found")
)
