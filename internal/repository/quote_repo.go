package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"movehub/internal/domain"
)

var ErrQuoteNotFound = errors.New("quote not found")

type QuoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

func (r *QuoteRepository) Create(ctx context.Context, q *domain.Quote) error {
	return r.db.WithContext(ctx).Create(q).Error
}

func (r *QuoteRepository) GetByID(ctx context.Context, id string) (*domain.Quote, error) {
	var q domain.Quote
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&q).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, err
	}
	return &q, nil
}

// Update applies a partial update and bumps updated_at. Returns
// ErrQuoteNotFound when the row does not exist.
func (r *QuoteRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	fields["updated_at"] = time.Now()

	res := r.db.WithContext(ctx).
		Model(&domain.Quote{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrQuoteNotFound
	}
	return nil
}

// ListByParticipant returns quotes where the user is either side,
// newest first
func (r *QuoteRepository) ListByParticipant(ctx context.Context, userID int64, limit, offset int) ([]domain.Quote, error) {
	var quotes []domain.Quote
	q := r.db.WithContext(ctx).
		Where("client_id = ? OR mover_id = ?", userID, userID).
		Order("created_at DESC")

	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}

	if err := q.Find(&quotes).Error; err != nil {
		return nil, err
	}
	return quotes, nil
}
