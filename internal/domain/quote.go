package domain

import (
	"encoding/json"
	"time"
)

// QuoteStatus is the lifecycle state of a service request
type QuoteStatus string

const (
	QuotePending    QuoteStatus = "pending"
	QuoteAccepted   QuoteStatus = "accepted"
	QuoteInProgress QuoteStatus = "in_progress"
	QuoteCompleted  QuoteStatus = "completed"
	QuoteCancelled  QuoteStatus = "cancelled"
)

// quoteTransitions is the explicit transition table. completed and
// cancelled are terminal: they have no outgoing edges.
var quoteTransitions = map[QuoteStatus][]QuoteStatus{
	QuotePending:    {QuoteAccepted, QuoteCancelled},
	QuoteAccepted:   {QuoteInProgress, QuoteCancelled},
	QuoteInProgress: {QuoteCompleted, QuoteCancelled},
}

// CanTransition reports whether from -> to is a valid status change
func CanTransition(from, to QuoteStatus) bool {
	for _, next := range quoteTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidQuoteStatus reports whether s is a known status value
func ValidQuoteStatus(s QuoteStatus) bool {
	switch s {
	case QuotePending, QuoteAccepted, QuoteInProgress, QuoteCompleted, QuoteCancelled:
		return true
	}
	return false
}

// Quote is a negotiable moving request between a client and a mover.
// PriceCents stays nil until the first proposal; the quote can leave
// pending only through mutual acceptance or cancellation.
type Quote struct {
	ID             string          `gorm:"column:id;primaryKey" json:"id"`
	ClientID       int64           `gorm:"column:client_id;index" json:"client_id"`
	MoverID        *int64          `gorm:"column:mover_id;index" json:"mover_id,omitempty"`
	FromAddress    string          `gorm:"column:from_address" json:"from_address"`
	ToAddress      string          `gorm:"column:to_address" json:"to_address"`
	ServicePayload json.RawMessage `gorm:"column:service_payload" json:"service_payload,omitempty"`
	PriceCents     *int64          `gorm:"column:price_cents" json:"price_cents,omitempty"`
	Status         QuoteStatus     `gorm:"column:status;index" json:"status"`
	CreatedAt      time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (Quote) TableName() string { return "quotes" }

// IsParticipant reports whether userID is one of the two negotiating parties
func (q *Quote) IsParticipant(userID int64) bool {
	if q.ClientID == userID {
		return true
	}
	return q.MoverID != nil && *q.MoverID == userID
}

// HasPrice reports whether a price proposal has been made
func (q *Quote) HasPrice() bool { return q.PriceCents != nil }
