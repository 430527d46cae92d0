package chat

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"movehub/internal/domain"
	"movehub/internal/modules/realtime"
	"movehub/internal/repository"
)

const previewLen = 80

// EventNewMessage is the live relay channel for chat messages
const EventNewMessage = "new_message"

type Service struct {
	repo   Repository
	notifs Notifier
	pusher Pusher
}

func NewService(repo Repository, notifs Notifier, pusher Pusher) *Service {
	return &Service{repo: repo, notifs: notifs, pusher: pusher}
}

// OpenConversation returns the existing channel between the pair or
// creates a new one with an opening message. Called by the negotiation
// engine on acceptance.
func (s *Service) OpenConversation(ctx context.Context, clientID, moverID int64, quoteID, openingMessage string) (*domain.Conversation, error) {
	existing, err := s.repo.GetByParticipants(ctx, clientID, moverID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	conv := &domain.Conversation{
		ID:        uuid.New().String(),
		ClientID:  clientID,
		MoverID:   moverID,
		QuoteID:   sql.NullString{String: quoteID, Valid: quoteID != ""},
		CreatedAt: time.Now(),
	}

	if err := s.repo.Create(ctx, conv); err != nil {
		return nil, err
	}

	if openingMessage != "" {
		if _, err := s.SendMessage(ctx, clientID, conv.ID, openingMessage); err != nil {
			log.Printf("opening message failed conversation_id=%s err=%v", conv.ID, err)
		}
	}

	return conv, nil
}

// SendMessage persists the message, relays it live to both participants
// and falls back to a notification when the recipient is offline
func (s *Service) SendMessage(ctx context.Context, senderID int64, conversationID, content string) (*domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	conv, err := s.getConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(senderID) {
		return nil, ErrNotParticipant
	}

	msg := &domain.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		CreatedAt:      time.Now(),
	}
	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	recipientID := conv.OtherParticipant(senderID)

	event := &realtime.Event{Channel: EventNewMessage, Payload: msg}
	s.pusher.SendToUser(senderID, event) // echo to the sender's other devices
	delivered := s.pusher.SendToUser(recipientID, event)

	if !delivered {
		preview := content
		if runes := []rune(preview); len(runes) > previewLen {
			preview = string(runes[:previewLen])
		}
		if err := s.notifs.NotifyChatMessage(ctx, recipientID, conversationID, preview); err != nil {
			log.Printf("offline chat notification failed conversation_id=%s err=%v", conversationID, err)
		}
	}

	return msg, nil
}

func (s *Service) ListConversations(ctx context.Context, userID int64) ([]domain.Conversation, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) GetMessages(ctx context.Context, userID int64, conversationID string, limit int) ([]domain.Message, error) {
	conv, err := s.getConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.GetMessages(ctx, conversationID, limit)
}

func (s *Service) getConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	conv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrConversationNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return conv, nil
}
