package domain

import (
	"database/sql"
	"encoding/json"
	"time"
)

// NotificationType is a closed enumeration of user-facing event kinds
type NotificationType string

const (
	NotifNewServiceRequest   NotificationType = "new_service_request"   // Mover: новая заявка на переезд
	NotifPriceProposed       NotificationType = "price_proposed"        // Client: перевозчик предложил цену
	NotifClientPriceProposed NotificationType = "client_price_proposed" // Mover: клиент предложил свою цену
	NotifPriceAccepted       NotificationType = "price_accepted"        // Mover: клиент принял цену
	NotifNegotiationAccepted NotificationType = "negotiation_accepted"  // Client: перевозчик принял встречную цену
	NotifStatusUpdated       NotificationType = "status_updated"        // Both: статус заявки изменён
	NotifChatMessage         NotificationType = "chat_message"          // Both: новое сообщение, получатель офлайн
)

// NotificationPriority is advisory only and does not affect delivery
type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityMedium NotificationPriority = "medium"
	PriorityHigh   NotificationPriority = "high"
)

// Notification is one persisted per-user event record. Append-only except
// for the read-state fields, which only the recipient may flip.
type Notification struct {
	ID        int64                `gorm:"column:id;primaryKey" json:"id"`
	UserID    int64                `gorm:"column:user_id;index:idx_notifications_user_unread" json:"user_id"`
	Type      NotificationType     `gorm:"column:type" json:"type"`
	Title     string               `gorm:"column:title" json:"title"`
	Message   string               `gorm:"column:message" json:"message"`
	Data      json.RawMessage      `gorm:"column:data" json:"data,omitempty"`
	Priority  NotificationPriority `gorm:"column:priority" json:"priority"`
	IsRead    bool                 `gorm:"column:is_read;index:idx_notifications_user_unread" json:"is_read"`
	ReadAt    sql.NullTime         `gorm:"column:read_at" json:"read_at,omitempty"`
	CreatedAt time.Time            `gorm:"column:created_at;index" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }

// SetData encodes the type-specific payload
func (n *Notification) SetData(data map[string]any) error {
	if data == nil {
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	n.Data = b
	return nil
}

// DecodeData returns the payload as a generic map (empty when unset)
func (n *Notification) DecodeData() map[string]any {
	out := map[string]any{}
	if len(n.Data) > 0 {
		_ = json.Unmarshal(n.Data, &out)
	}
	return out
}

// MarkAsRead flips the read state with a timestamp
func (n *Notification) MarkAsRead() {
	n.IsRead = true
	n.ReadAt = sql.NullTime{Time: time.Now(), Valid: true}
}
