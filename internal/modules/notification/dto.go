package notification

import (
	"time"

	"movehub/internal/domain"
)

type NotificationResponse struct {
	ID        int64          `json:"id"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	Priority  string         `json:"priority"`
	IsRead    bool           `json:"is_read"`
	ReadAt    *time.Time     `json:"read_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

type NotificationListResponse struct {
	Notifications []*NotificationResponse `json:"notifications"`
	UnreadCount   int64                   `json:"unread_count"`
	Total         int64                   `json:"total"`
}

type UnreadCountResponse struct {
	UnreadCount int64 `json:"unread_count"`
}

func NotificationResponseFromEntity(n domain.Notification) *NotificationResponse {
	resp := &NotificationResponse{
		ID:        n.ID,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Data:      n.DecodeData(),
		Priority:  string(n.Priority),
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
	if n.ReadAt.Valid {
		t := n.ReadAt.Time
		resp.ReadAt = &t
	}
	return resp
}
