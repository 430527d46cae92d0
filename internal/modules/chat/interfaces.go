package chat

import (
	"context"

	"movehub/internal/domain"
	"movehub/internal/modules/realtime"
)

type Repository interface {
	Create(ctx context.Context, conv *domain.Conversation) error
	GetByID(ctx context.Context, id string) (*domain.Conversation, error)
	GetByParticipants(ctx context.Context, clientID, moverID int64) (*domain.Conversation, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Conversation, error)
	CreateMessage(ctx context.Context, m *domain.Message) error
	GetMessages(ctx context.Context, conversationID string, limit int) ([]domain.Message, error)
}

// Notifier covers the offline recipient: the message becomes a persisted
// chat_message notification instead of a live push
type Notifier interface {
	NotifyChatMessage(ctx context.Context, recipientID int64, conversationID, preview string) error
}

type Pusher interface {
	SendToUser(userID int64, event *realtime.Event) bool
}
