package contract

import "context"

// Notifier delivers one aggregated message to a chat.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, message string) error
}
