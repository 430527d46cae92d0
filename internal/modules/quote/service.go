package quote

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"movehub/internal/domain"
	"movehub/internal/repository"
)

// Service is the negotiation engine: every public method is one state
// transition on a quote — participant check, precondition check, a
// single mutation, then exactly one notification to the counterpart.
type Service struct {
	quotes        QuoteRepository
	notifs        NotificationSender
	conversations ConversationOpener
}

func NewService(quotes QuoteRepository, notifs NotificationSender, conversations ConversationOpener) *Service {
	return &Service{
		quotes:        quotes,
		notifs:        notifs,
		conversations: conversations,
	}
}

func (s *Service) CreateQuote(ctx context.Context, clientID int64, req CreateQuoteRequest) (*domain.Quote, error) {
	if req.FromAddress == "" || req.ToAddress == "" {
		return nil, ErrValidation
	}
	if req.MoverID != nil && *req.MoverID == clientID {
		return nil, ErrValidation
	}

	now := time.Now()
	q := &domain.Quote{
		ID:             uuid.New().String(),
		ClientID:       clientID,
		MoverID:        req.MoverID,
		FromAddress:    req.FromAddress,
		ToAddress:      req.ToAddress,
		ServicePayload: req.ServicePayload,
		Status:         domain.QuotePending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.quotes.Create(ctx, q); err != nil {
		return nil, err
	}

	// Targeted request: tell the mover. Open requests notify nobody —
	// movers discover them through the listing.
	if q.MoverID != nil {
		s.swallowNotifyErr("new_service_request", s.notifs.NotifyNewServiceRequest(
			ctx, *q.MoverID, q.ID, q.FromAddress, q.ToAddress))
	}

	return q, nil
}

// ProposePrice sets (or overwrites) the mover's price while the quote is
// pending. A mover proposing on an open request claims it.
func (s *Service) ProposePrice(ctx context.Context, moverID int64, quoteID string, priceCents int64) (*domain.Quote, error) {
	if priceCents <= 0 {
		return nil, ErrValidation
	}

	q, err := s.getQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	if q.MoverID != nil && *q.MoverID != moverID {
		return nil, ErrForbidden
	}
	if moverID == q.ClientID {
		return nil, ErrForbidden
	}
	if q.Status != domain.QuotePending {
		return nil, ErrInvalidTransition
	}

	fields := map[string]any{"price_cents": priceCents}
	if q.MoverID == nil {
		fields["mover_id"] = moverID
	}
	if err := s.quotes.Update(ctx, q.ID, fields); err != nil {
		return nil, s.mapRepoErr(err)
	}

	q.PriceCents = &priceCents
	q.MoverID = &moverID
	q.UpdatedAt = time.Now()

	s.swallowNotifyErr("price_proposed", s.notifs.NotifyPriceProposed(ctx, q.ClientID, q.ID, priceCents))

	return q, nil
}

// AcceptPrice is the client accepting the mover's current proposal. The
// quote leaves pending only through mutual acceptance.
func (s *Service) AcceptPrice(ctx context.Context, clientID int64, quoteID string) (*domain.Quote, error) {
	q, err := s.getQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	if q.ClientID != clientID {
		return nil, ErrForbidden
	}
	if q.Status != domain.QuotePending || !q.HasPrice() || q.MoverID == nil {
		return nil, ErrInvalidTransition
	}

	if err := s.quotes.Update(ctx, q.ID, map[string]any{"status": domain.QuoteAccepted}); err != nil {
		return nil, s.mapRepoErr(err)
	}
	q.Status = domain.QuoteAccepted
	q.UpdatedAt = time.Now()

	s.swallowNotifyErr("price_accepted", s.notifs.NotifyPriceAccepted(ctx, *q.MoverID, q.ID, *q.PriceCents))
	s.openConversation(ctx, q)

	return q, nil
}

// NegotiatePrice is the client's counter-offer: the current price is
// replaced and the quote stays pending.
func (s *Service) NegotiatePrice(ctx context.Context, clientID int64, quoteID string, priceCents int64) (*domain.Quote, error) {
	if priceCents <= 0 {
		return nil, ErrValidation
	}

	q, err := s.getQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	if q.ClientID != clientID {
		return nil, ErrForbidden
	}
	if q.Status != domain.QuotePending || !q.HasPrice() || q.MoverID == nil {
		return nil, ErrInvalidTransition
	}

	if err := s.quotes.Update(ctx, q.ID, map[string]any{"price_cents": priceCents}); err != nil {
		return nil, s.mapRepoErr(err)
	}
	q.PriceCents = &priceCents
	q.UpdatedAt = time.Now()

	s.swallowNotifyErr("client_price_proposed", s.notifs.NotifyClientPriceProposed(ctx, *q.MoverID, q.ID, priceCents))

	return q, nil
}

// AcceptNegotiation is the mover accepting the client's counter-offer
func (s *Service) AcceptNegotiation(ctx context.Context, moverID int64, quoteID string) (*domain.Quote, error) {
	q, err := s.getQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	if q.MoverID == nil || *q.MoverID != moverID {
		return nil, ErrForbidden
	}
	if q.Status != domain.QuotePending || !q.HasPrice() {
		return nil, ErrInvalidTransition
	}

	if err := s.quotes.Update(ctx, q.ID, map[string]any{"status": domain.QuoteAccepted}); err != nil {
		return nil, s.mapRepoErr(err)
	}
	q.Status = domain.QuoteAccepted
	q.UpdatedAt = time.Now()

	s.swallowNotifyErr("negotiation_accepted", s.notifs.NotifyNegotiationAccepted(ctx, q.ClientID, q.ID, *q.PriceCents))
	s.openConversation(ctx, q)

	return q, nil
}

// SetStatus moves an accepted quote through its execution states. Only
// transitions present in the table are allowed; terminal states have no
// way out.
func (s *Service) SetStatus(ctx context.Context, moverID int64, quoteID string, status domain.QuoteStatus) (*domain.Quote, error) {
	if !domain.ValidQuoteStatus(status) {
		return nil, ErrValidation
	}

	q, err := s.getQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	if q.MoverID == nil || *q.MoverID != moverID {
		return nil, ErrForbidden
	}
	if status == domain.QuoteAccepted {
		// Acceptance happens only through the mutual-acceptance
		// operations above
		return nil, ErrInvalidTransition
	}
	if !domain.CanTransition(q.Status, status) {
		return nil, ErrInvalidTransition
	}

	if err := s.quotes.Update(ctx, q.ID, map[string]any{"status": status}); err != nil {
		return nil, s.mapRepoErr(err)
	}
	q.Status = status
	q.UpdatedAt = time.Now()

	// The mover sees the result of its own call; notify the client
	s.swallowNotifyErr("status_updated", s.notifs.NotifyStatusUpdated(ctx, q.ClientID, q.ID, string(status)))

	return q, nil
}

func (s *Service) GetQuote(ctx context.Context, userID int64, quoteID string) (*domain.Quote, error) {
	q, err := s.getQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	// Open requests are visible to any mover browsing them
	if !q.IsParticipant(userID) && q.MoverID != nil {
		return nil, ErrForbidden
	}
	return q, nil
}

func (s *Service) ListMyQuotes(ctx context.Context, userID int64, limit, offset int) ([]domain.Quote, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.quotes.ListByParticipant(ctx, userID, limit, offset)
}

func (s *Service) getQuote(ctx context.Context, quoteID string) (*domain.Quote, error) {
	q, err := s.quotes.GetByID(ctx, quoteID)
	if err != nil {
		return nil, s.mapRepoErr(err)
	}
	return q, nil
}

func (s *Service) mapRepoErr(err error) error {
	if errors.Is(err, repository.ErrQuoteNotFound) {
		return ErrNotFound
	}
	return err
}

// swallowNotifyErr implements the accepted inconsistency window: the
// quote mutation stands even when its notification is lost.
func (s *Service) swallowNotifyErr(kind string, err error) {
	if err != nil {
		log.Printf("notification failed kind=%s err=%v", kind, err)
	}
}

func (s *Service) openConversation(ctx context.Context, q *domain.Quote) {
	if s.conversations == nil || q.MoverID == nil {
		return
	}
	opening := fmt.Sprintf("Заявка подтверждена: %s → %s", q.FromAddress, q.ToAddress)
	if _, err := s.conversations.OpenConversation(ctx, q.ClientID, *q.MoverID, q.ID, opening); err != nil {
		log.Printf("conversation open failed quote_id=%s err=%v", q.ID, err)
	}
}
