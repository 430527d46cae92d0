package notification

import (
	"context"

	"movehub/internal/domain"
	"movehub/internal/modules/realtime"
)

// Store is the persisted notification log
type Store interface {
	Create(ctx context.Context, n *domain.Notification) error
	GetByUserID(ctx context.Context, userID int64, limit, offset int) ([]domain.Notification, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
	CountByUser(ctx context.Context, userID int64) (int64, error)
	MarkAsRead(ctx context.Context, id, userID int64) error
	MarkAllAsRead(ctx context.Context, userID int64) error
}

// Pusher is the live fan-out channel. SendToUser reports whether at
// least one open connection took the event.
type Pusher interface {
	SendToUser(userID int64, event *realtime.Event) bool
}
