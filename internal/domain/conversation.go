package domain

import (
	"database/sql"
	"time"
)

// Conversation is the companion chat channel opened when a quote is
// accepted. Exactly two participants: the client and the mover.
type Conversation struct {
	ID        string         `gorm:"column:id;primaryKey" json:"id"`
	ClientID  int64          `gorm:"column:client_id;index" json:"client_id"`
	MoverID   int64          `gorm:"column:mover_id;index" json:"mover_id"`
	QuoteID   sql.NullString `gorm:"column:quote_id;index" json:"quote_id,omitempty"`
	CreatedAt time.Time      `gorm:"column:created_at" json:"created_at"`
}

func (Conversation) TableName() string { return "conversations" }

// OtherParticipant returns the counterpart of userID in the conversation
func (c *Conversation) OtherParticipant(userID int64) int64 {
	if c.ClientID == userID {
		return c.MoverID
	}
	return c.ClientID
}

// HasParticipant reports whether userID belongs to the conversation
func (c *Conversation) HasParticipant(userID int64) bool {
	return c.ClientID == userID || c.MoverID == userID
}

// Message is a single chat message inside a conversation
type Message struct {
	ID             string    `gorm:"column:id;primaryKey" json:"id"`
	ConversationID string    `gorm:"column:conversation_id;index" json:"conversation_id"`
	SenderID       int64     `gorm:"column:sender_id" json:"sender_id"`
	Content        string    `gorm:"column:content" json:"content"`
	IsRead         bool      `gorm:"column:is_read" json:"is_read"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Message) TableName() string { return "messages" }
