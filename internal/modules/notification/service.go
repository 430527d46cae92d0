package notification

import (
	"context"
	"fmt"
	"log"

	"movehub/internal/domain"
	"movehub/internal/modules/realtime"
)

// typeChannels lists the types that get a second, type-named emission on
// top of the generic notification channel. Both events describe the same
// occurrence and share the (type, notification_id) identity; some client
// surfaces listen only for the shortcut channel.
var typeChannels = map[domain.NotificationType]bool{
	domain.NotifNewServiceRequest:   true,
	domain.NotifPriceProposed:       true,
	domain.NotifClientPriceProposed: true,
	domain.NotifPriceAccepted:       true,
	domain.NotifNegotiationAccepted: true,
	domain.NotifChatMessage:         true,
}

// Service is the single path by which any part of the system pushes a
// user-facing event: persist first, then best-effort live delivery.
type Service struct {
	store  Store
	pusher Pusher
}

func NewService(store Store, pusher Pusher) *Service {
	return &Service{store: store, pusher: pusher}
}

// Notify persists the notification and, when the recipient has a live
// connection, pushes it through the fan-out channel. Persistence failure
// aborts and surfaces the error; delivery failure is swallowed — the
// record stays reachable through the history fetch.
func (s *Service) Notify(
	ctx context.Context,
	userID int64,
	t domain.NotificationType,
	title, message string,
	data map[string]any,
	priority domain.NotificationPriority,
) (*domain.Notification, error) {
	if priority == "" {
		priority = domain.PriorityMedium
	}

	n := &domain.Notification{
		UserID:   userID,
		Type:     t,
		Title:    title,
		Message:  message,
		Priority: priority,
		IsRead:   false,
	}
	if err := n.SetData(data); err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, n); err != nil {
		return nil, err
	}

	s.push(n, data)
	return n, nil
}

// push emits the generic event and, for the shortcut set, the type-named
// twin. Fire-and-forget by contract.
func (s *Service) push(n *domain.Notification, data map[string]any) {
	if s.pusher == nil {
		return
	}

	delivered := s.pusher.SendToUser(n.UserID, &realtime.Event{
		Channel:        realtime.ChannelNotification,
		NotificationID: n.ID,
		Payload:        n,
	})
	if !delivered {
		log.Printf("notification push skipped user_id=%d type=%s id=%d (offline)", n.UserID, n.Type, n.ID)
		return
	}

	if typeChannels[n.Type] {
		s.pusher.SendToUser(n.UserID, &realtime.Event{
			Channel:        string(n.Type),
			NotificationID: n.ID,
			Payload:        data,
		})
	}
}

func (s *Service) List(ctx context.Context, userID int64, limit, offset int) ([]domain.Notification, int64, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	list, err := s.store.GetByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, 0, err
	}

	unread, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		unread = 0
	}

	total, err := s.store.CountByUser(ctx, userID)
	if err != nil {
		total = int64(len(list))
	}

	return list, unread, total, nil
}

func (s *Service) GetUnreadCount(ctx context.Context, userID int64) (int64, error) {
	return s.store.CountUnread(ctx, userID)
}

func (s *Service) MarkAsRead(ctx context.Context, notificationID, userID int64) error {
	return s.store.MarkAsRead(ctx, notificationID, userID)
}

func (s *Service) MarkAllAsRead(ctx context.Context, userID int64) error {
	return s.store.MarkAllAsRead(ctx, userID)
}

// ---- typed helpers for the negotiation engine ----

func formatPrice(priceCents int64) string {
	return fmt.Sprintf("%.2f", float64(priceCents)/100)
}

func (s *Service) NotifyNewServiceRequest(ctx context.Context, moverID int64, quoteID, fromAddress, toAddress string) error {
	_, err := s.Notify(
		ctx,
		moverID,
		domain.NotifNewServiceRequest,
		"Новая заявка на переезд",
		fmt.Sprintf("Поступила новая заявка: %s → %s", fromAddress, toAddress),
		map[string]any{
			"quote_id":     quoteID,
			"from_address": fromAddress,
			"to_address":   toAddress,
		},
		domain.PriorityHigh,
	)
	return err
}

func (s *Service) NotifyPriceProposed(ctx context.Context, clientID int64, quoteID string, priceCents int64) error {
	_, err := s.Notify(
		ctx,
		clientID,
		domain.NotifPriceProposed,
		"Предложена цена",
		fmt.Sprintf("Перевозчик предложил цену %s", formatPrice(priceCents)),
		map[string]any{
			"quote_id":       quoteID,
			"proposed_price": priceCents,
		},
		domain.PriorityHigh,
	)
	return err
}

func (s *Service) NotifyClientPriceProposed(ctx context.Context, moverID int64, quoteID string, priceCents int64) error {
	_, err := s.Notify(
		ctx,
		moverID,
		domain.NotifClientPriceProposed,
		"Встречное предложение",
		fmt.Sprintf("Клиент предложил свою цену %s", formatPrice(priceCents)),
		map[string]any{
			"quote_id":     quoteID,
			"client_price": priceCents,
		},
		domain.PriorityHigh,
	)
	return err
}

func (s *Service) NotifyPriceAccepted(ctx context.Context, moverID int64, quoteID string, priceCents int64) error {
	_, err := s.Notify(
		ctx,
		moverID,
		domain.NotifPriceAccepted,
		"Цена принята",
		fmt.Sprintf("Клиент принял цену %s", formatPrice(priceCents)),
		map[string]any{
			"quote_id":       quoteID,
			"accepted_price": priceCents,
		},
		domain.PriorityHigh,
	)
	return err
}

func (s *Service) NotifyNegotiationAccepted(ctx context.Context, clientID int64, quoteID string, priceCents int64) error {
	_, err := s.Notify(
		ctx,
		clientID,
		domain.NotifNegotiationAccepted,
		"Цена согласована",
		fmt.Sprintf("Перевозчик принял вашу цену %s", formatPrice(priceCents)),
		map[string]any{
			"quote_id":       quoteID,
			"accepted_price": priceCents,
		},
		domain.PriorityHigh,
	)
	return err
}

func (s *Service) NotifyStatusUpdated(ctx context.Context, userID int64, quoteID string, status string) error {
	_, err := s.Notify(
		ctx,
		userID,
		domain.NotifStatusUpdated,
		"Статус заявки изменён",
		fmt.Sprintf("Новый статус заявки: %s", status),
		map[string]any{
			"quote_id": quoteID,
			"status":   status,
		},
		domain.PriorityMedium,
	)
	return err
}

func (s *Service) NotifyChatMessage(ctx context.Context, recipientID int64, conversationID, preview string) error {
	_, err := s.Notify(
		ctx,
		recipientID,
		domain.NotifChatMessage,
		"Новое сообщение",
		preview,
		map[string]any{
			"conversation_id": conversationID,
			"preview":         preview,
		},
		domain.PriorityLow,
	)
	return err
}
