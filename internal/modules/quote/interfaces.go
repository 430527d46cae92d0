package quote

import (
	"context"

	"movehub/internal/domain"
)

// QuoteRepository is the persisted negotiation record store
type QuoteRepository interface {
	Create(ctx context.Context, q *domain.Quote) error
	GetByID(ctx context.Context, id string) (*domain.Quote, error)
	Update(ctx context.Context, id string, fields map[string]any) error
	ListByParticipant(ctx context.Context, userID int64, limit, offset int) ([]domain.Quote, error)
}

// NotificationSender is the notification service boundary. Failures
// behind it never abort a negotiation mutation.
type NotificationSender interface {
	NotifyNewServiceRequest(ctx context.Context, moverID int64, quoteID, fromAddress, toAddress string) error
	NotifyPriceProposed(ctx context.Context, clientID int64, quoteID string, priceCents int64) error
	NotifyClientPriceProposed(ctx context.Context, moverID int64, quoteID string, priceCents int64) error
	NotifyPriceAccepted(ctx context.Context, moverID int64, quoteID string, priceCents int64) error
	NotifyNegotiationAccepted(ctx context.Context, clientID int64, quoteID string, priceCents int64) error
	NotifyStatusUpdated(ctx context.Context, userID int64, quoteID string, status string) error
}

// ConversationOpener opens the companion chat channel on acceptance
type ConversationOpener interface {
	OpenConversation(ctx context.Context, clientID, moverID int64, quoteID, openingMessage string) (*domain.Conversation, error)
}
