package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"movehub/internal/domain"
)

var ErrConversationNotFound = errors.New("conversation not found")

type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) Create(ctx context.Context, conv *domain.Conversation) error {
	return r.db.WithContext(ctx).Create(conv).Error
}

func (r *ConversationRepository) GetByID(ctx context.Context, id string) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	return &conv, nil
}

// GetByParticipants returns the existing conversation between the pair,
// or nil when none exists yet
func (r *ConversationRepository) GetByParticipants(ctx context.Context, clientID, moverID int64) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.db.WithContext(ctx).
		Where("client_id = ? AND mover_id = ?", clientID, moverID).
		First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conv, nil
}

func (r *ConversationRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Conversation, error) {
	var list []domain.Conversation
	err := r.db.WithContext(ctx).
		Where("client_id = ? OR mover_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *ConversationRepository) CreateMessage(ctx context.Context, m *domain.Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *ConversationRepository) GetMessages(ctx context.Context, conversationID string, limit int) ([]domain.Message, error) {
	var msgs []domain.Message
	q := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC")

	if limit > 0 {
		q = q.Limit(limit)
	}

	if err := q.Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}
