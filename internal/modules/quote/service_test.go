package quote

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"movehub/internal/domain"
	"movehub/internal/repository"
)

// Mock repositories

type MockQuoteRepository struct {
	mock.Mock
}

func (m *MockQuoteRepository) Create(ctx context.Context, q *domain.Quote) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

func (m *MockQuoteRepository) GetByID(ctx context.Context, id string) (*domain.Quote, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quote), args.Error(1)
}

func (m *MockQuoteRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockQuoteRepository) ListByParticipant(ctx context.Context, userID int64, limit, offset int) ([]domain.Quote, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Quote), args.Error(1)
}

type MockNotificationSender struct {
	mock.Mock
}

func (m *MockNotificationSender) NotifyNewServiceRequest(ctx context.Context, moverID int64, quoteID, fromAddress, toAddress string) error {
	args := m.Called(ctx, moverID, quoteID, fromAddress, toAddress)
	return args.Error(0)
}

func (m *MockNotificationSender) NotifyPriceProposed(ctx context.Context, clientID int64, quoteID string, priceCents int64) error {
	args := m.Called(ctx, clientID, quoteID, priceCents)
	return args.Error(0)
}

func (m *MockNotificationSender) NotifyClientPriceProposed(ctx context.Context, moverID int64, quoteID string, priceCents int64) error {
	args := m.Called(ctx, moverID, quoteID, priceCents)
	return args.Error(0)
}

func (m *MockNotificationSender) NotifyPriceAccepted(ctx context.Context, moverID int64, quoteID string, priceCents int64) error {
	args := m.Called(ctx, moverID, quoteID, priceCents)
	return args.Error(0)
}

func (m *MockNotificationSender) NotifyNegotiationAccepted(ctx context.Context, clientID int64, quoteID string, priceCents int64) error {
	args := m.Called(ctx, clientID, quoteID, priceCents)
	return args.Error(0)
}

func (m *MockNotificationSender) NotifyStatusUpdated(ctx context.Context, userID int64, quoteID string, status string) error {
	args := m.Called(ctx, userID, quoteID, status)
	return args.Error(0)
}

type MockConversationOpener struct {
	mock.Mock
}

func (m *MockConversationOpener) OpenConversation(ctx context.Context, clientID, moverID int64, quoteID, openingMessage string) (*domain.Conversation, error) {
	args := m.Called(ctx, clientID, moverID, quoteID, openingMessage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversation), args.Error(1)
}

const (
	clientID = int64(1)
	moverID  = int64(2)
)

func pendingQuote(priceCents *int64) *domain.Quote {
	mid := moverID
	return &domain.Quote{
		ID:          "q-1",
		ClientID:    clientID,
		MoverID:     &mid,
		FromAddress: "Алматы, Абая 10",
		ToAddress:   "Алматы, Достык 5",
		PriceCents:  priceCents,
		Status:      domain.QuotePending,
	}
}

func TestCreateQuote_TargetedMoverNotified(t *testing.T) {
	quotes := new(MockQuoteRepository)
	notifs := new(MockNotificationSender)
	svc := NewService(quotes, notifs, nil)

	quotes.On("Create", mock.Anything, mock.Anything).Return(nil)
	notifs.On("NotifyNewServiceRequest", mock.Anything, moverID, mock.Anything, "A", "B").Return(nil)

	mid := moverID
	q, err := svc.CreateQuote(context.Background(), clientID, CreateQuoteRequest{
		MoverID:     &mid,
		FromAddress: "A",
		ToAddress:   "B",
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.QuotePending, q.Status)
	assert.Nil(t, q.PriceCents)
	assert.NotEmpty(t, q.ID)
	notifs.AssertNumberOfCalls(t, "NotifyNewServiceRequest", 1)
}

func TestCreateQuote_OpenRequestNotifiesNobody(t *testing.T) {
	quotes := new(MockQuoteRepository)
	notifs := new(MockNotificationSender)
	svc := NewService(quotes, notifs, nil)

	quotes.On("Create", mock.Anything, mock.Anything).Return(nil)

	q, err := svc.CreateQuote(context.Background(), clientID, CreateQuoteRequest{
		FromAddress: "A",
		ToAddress:   "B",
	})

	assert.NoError(t, err)
	assert.Nil(t, q.MoverID)
	notifs.AssertNotCalled(t, "NotifyNewServiceRequest")
}

func TestProposePrice_NotifiesClientExactlyOnce(t *testing.T) {
	quotes := new(MockQuoteRepository)
	notifs := new(MockNotificationSender)
	svc := NewService(quotes, notifs, nil)

	quotes.On("GetByID", mock.Anything, "q-1").Return(pendingQuote(nil), nil)
	quotes.On("Update", mock.Anything, "q-1", mock.Anything).Return(nil)
	notifs.On("NotifyPriceProposed", mock.Anything, clientID, "q-1", int64(25000)).Return(nil)

	q, err := svc.ProposePrice(context.Background(), moverID, "q-1", 25000)

	assert.NoError(t, err)
	assert.Equal(t, domain.QuotePending, q.Status)
	assert.Equal(t, int64(25000), *q.PriceCents)
	quotes.AssertNumberOfCalls(t, "Update", 1)
	notifs.AssertNumberOfCalls(t, "NotifyPriceProposed", 1)
}

func TestProposePrice_OutsidePending(t *testing.T) {
	quotes := new(MockQuoteRepository)
	notifs := new(MockNotificationSender)
	svc := NewService(quotes, notifs, nil)

	q := pendingQuote(nil)
	q.Status = domain.QuoteAccepted
	quotes.On("GetByID", mock.Anything, "q-1").Return(q, nil)

	_, err := svc.ProposePrice(context.Background(), moverID, "q-1", 25000)

	assert.ErrorIs(t, err, ErrInvalidTransition)
	quotes.AssertNotCalled(t, "Update")
	notifs.AssertNotCalled(t, "NotifyPriceProposed")
}

func TestProposePrice_ForeignMover(t *testing.T) {
	quotes := new(MockQuoteRepository)
	svc := NewService(quotes, new(MockNotificationSender), nil)

	quotes.On("GetByID", mock.Anything, "q-1").Return(pendingQuote(nil), nil)

	_, err := svc.ProposePrice(context.Background(), int64(77), "q-1", 25000)

	assert.ErrorIs(t, err, ErrForbidden)
	quotes.AssertNotCalled(t, "Update")
}

func TestAcceptPrice_RequiresPriceSet(t *testing.T) {
	quotes := new(MockQuoteRepository)
	notifs := new(MockNotificationSender)
	convs := new(MockConversationOpener)
	svc := NewService(quotes, notifs, convs)

	quotes.On("GetByID", mock.Anything, "q-1").Return(pendingQuote(nil), nil)

	_, err := svc.AcceptPrice(context.Background(), clientID, "q-1")

	assert.ErrorIs(t, err, ErrInvalidTransition)
	quotes.AssertNotCalled(t, "Update")
	notifs.AssertNotCalled(t, "NotifyPriceAccepted")
	convs.AssertNotCalled(t, "OpenConversation")
}

func TestAcceptPrice_Success(t *testing.T) {
	quotes := new(MockQuoteRepository)
	notifs := new(MockNotificationSender)
	convs := new(MockConversationOpener)
	svc := NewService(quotes, notifs, convs)

	price := int64(25000)
	quotes.On("GetByID", mock.Anything, "q-1").Return(pendingQuote(&price), nil)
	quotes.On("Update", mock.Anything, "q-1", map[string]any{"status": domain.QuoteAccepted}).Return(nil)
	notifs.On("NotifyPriceAccepted", mock.Anything, moverID, "q-1", price).Return(nil)
	convs.On("OpenConversation", mock.Anything, clientID, moverID, "q-1", mock.Anything).
		Return(&domain.Conversation{ID: "c-1"}, nil)

	q, err := svc.AcceptPrice(context.Background(), clientID, "q-1")

	assert.NoError(t, err)
	assert.Equal(t, domain.QuoteAccepted, q.Status)
	notifs.AssertNumberOfCalls(t, "NotifyPriceAccepted", 1)
	convs.AssertNumberOfCalls(t, "OpenConversation", 1)
}

func TestAcceptPrice_NotFound(t *testing.T) {
	quotes := new(MockQuoteRepository)
	svc := NewService(quotes, new(MockNotificationSender), nil)

	quotes.On("GetByID", mock.Anything, "missing").Return(nil, repository.ErrQuoteNotFound)

	_, err := svc.AcceptPrice(context.Background(), clientID, "missing")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNegotiatePrice_ReplacesPrice(t *testing.T) {
	quotes := new(MockQuoteRepository)
	notifs := new(MockNotificationSender)
	svc := NewService(quotes, notifs, nil)

	price := int64(25000)
	quotes.On("GetByID", mock.Anything, "q-1").Return(pendingQuote(&price), nil)
	quotes.On("Update", mock.Anything, "q-1", map[string]any{"price_cents": int64(20000)}).Return(nil)
	notifs.On("NotifyClientPriceProposed", mock.Anything, moverID, "q-1", int64(20000)).Return(nil)

	q, err := svc.NegotiatePrice(context.Background(), clientID, "q-1", 20000)

	assert.NoError(t, err)
	assert.Equal(t, domain.QuotePending, q.Status, "counter-offer keeps the quote pending")
	assert.Equal(t, int64(20000), *q.PriceCents)
	notifs.AssertNumberOfCalls(t, "NotifyClientPriceProposed", 1)
}

func TestSetStatus_TerminalStateRejected(t *testing.T) {
	quotes := new(MockQuoteRepository)
	notifs := new(MockNotificationSender)
	svc := NewService(quotes, notifs, nil)

	price := int64(25000)
	q := pendingQuote(&price)
	q.Status = domain.QuoteCompleted
	quotes.On("GetByID", mock.Anything, "q-1").Return(q, nil)

	_, err := svc.SetStatus(context.Background(), moverID, "q-1", domain.QuoteCancelled)

	assert.ErrorIs(t, err, ErrInvalidTransition)
	quotes.AssertNotCalled(t, "Update")
	notifs.AssertNotCalled(t, "NotifyStatusUpdated")
}

func TestSetStatus_TableTransition(t *testing.T) {
	quotes := new(MockQuoteRepository)
	notifs := new(MockNotificationSender)
	svc := NewService(quotes, notifs, nil)

	price := int64(25000)
	q := pendingQuote(&price)
	q.Status = domain.QuoteAccepted
	quotes.On("GetByID", mock.Anything, "q-1").Return(q, nil)
	quotes.On("Update", mock.Anything, "q-1", map[string]any{"status": domain.QuoteInProgress}).Return(nil)
	notifs.On("NotifyStatusUpdated", mock.Anything, clientID, "q-1", "in_progress").Return(nil)

	updated, err := svc.SetStatus(context.Background(), moverID, "q-1", domain.QuoteInProgress)

	assert.NoError(t, err)
	assert.Equal(t, domain.QuoteInProgress, updated.Status)
	notifs.AssertNumberOfCalls(t, "NotifyStatusUpdated", 1)
}

func TestSetStatus_SkippingStateRejected(t *testing.T) {
	quotes := new(MockQuoteRepository)
	svc := NewService(quotes, new(MockNotificationSender), nil)

	price := int64(25000)
	q := pendingQuote(&price)
	q.Status = domain.QuoteAccepted
	quotes.On("GetByID", mock.Anything, "q-1").Return(q, nil)

	// accepted -> completed is not in the table
	_, err := svc.SetStatus(context.Background(), moverID, "q-1", domain.QuoteCompleted)

	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestNotificationFailureDoesNotAbortMutation(t *testing.T) {
	quotes := new(MockQuoteRepository)
	notifs := new(MockNotificationSender)
	svc := NewService(quotes, notifs, nil)

	quotes.On("GetByID", mock.Anything, "q-1").Return(pendingQuote(nil), nil)
	quotes.On("Update", mock.Anything, "q-1", mock.Anything).Return(nil)
	notifs.On("NotifyPriceProposed", mock.Anything, clientID, "q-1", int64(25000)).
		Return(errors.New("notification store down"))

	q, err := svc.ProposePrice(context.Background(), moverID, "q-1", 25000)

	// Accepted inconsistency window: the mutation stands
	assert.NoError(t, err)
	assert.Equal(t, int64(25000), *q.PriceCents)
}

// fakeQuoteRepo is an in-memory store for the full negotiation ping-pong
type fakeQuoteRepo struct {
	quotes map[string]*domain.Quote
}

func newFakeQuoteRepo() *fakeQuoteRepo {
	return &fakeQuoteRepo{quotes: map[string]*domain.Quote{}}
}

func (f *fakeQuoteRepo) Create(_ context.Context, q *domain.Quote) error {
	cp := *q
	f.quotes[q.ID] = &cp
	return nil
}

func (f *fakeQuoteRepo) GetByID(_ context.Context, id string) (*domain.Quote, error) {
	q, ok := f.quotes[id]
	if !ok {
		return nil, repository.ErrQuoteNotFound
	}
	cp := *q
	return &cp, nil
}

func (f *fakeQuoteRepo) Update(_ context.Context, id string, fields map[string]any) error {
	q, ok := f.quotes[id]
	if !ok {
		return repository.ErrQuoteNotFound
	}
	for k, v := range fields {
		switch k {
		case "price_cents":
			p := v.(int64)
			q.PriceCents = &p
		case "status":
			q.Status = v.(domain.QuoteStatus)
		case "mover_id":
			m := v.(int64)
			q.MoverID = &m
		}
	}
	return nil
}

func (f *fakeQuoteRepo) ListByParticipant(_ context.Context, userID int64, limit, offset int) ([]domain.Quote, error) {
	var out []domain.Quote
	for _, q := range f.quotes {
		if q.IsParticipant(userID) {
			out = append(out, *q)
		}
	}
	return out, nil
}

func TestNegotiationPingPong(t *testing.T) {
	repo := newFakeQuoteRepo()
	notifs := new(MockNotificationSender)
	convs := new(MockConversationOpener)
	svc := NewService(repo, notifs, convs)

	notifs.On("NotifyNewServiceRequest", mock.Anything, moverID, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	notifs.On("NotifyPriceProposed", mock.Anything, clientID, mock.Anything, int64(25000)).Return(nil)
	notifs.On("NotifyClientPriceProposed", mock.Anything, moverID, mock.Anything, int64(20000)).Return(nil)
	notifs.On("NotifyNegotiationAccepted", mock.Anything, clientID, mock.Anything, int64(20000)).Return(nil)
	convs.On("OpenConversation", mock.Anything, clientID, moverID, mock.Anything, mock.Anything).
		Return(&domain.Conversation{ID: "c-1"}, nil)

	ctx := context.Background()

	mid := moverID
	q, err := svc.CreateQuote(ctx, clientID, CreateQuoteRequest{
		MoverID:     &mid,
		FromAddress: "Алматы",
		ToAddress:   "Астана",
	})
	assert.NoError(t, err)
	assert.Equal(t, domain.QuotePending, q.Status)
	assert.Nil(t, q.PriceCents)

	// Accepting before any proposal is an invalid transition and emits
	// no notification
	_, err = svc.AcceptPrice(ctx, clientID, q.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	notifs.AssertNotCalled(t, "NotifyPriceAccepted")

	q, err = svc.ProposePrice(ctx, moverID, q.ID, 25000)
	assert.NoError(t, err)
	assert.Equal(t, domain.QuotePending, q.Status)
	assert.Equal(t, int64(25000), *q.PriceCents)

	q, err = svc.NegotiatePrice(ctx, clientID, q.ID, 20000)
	assert.NoError(t, err)
	assert.Equal(t, int64(20000), *q.PriceCents)

	q, err = svc.AcceptNegotiation(ctx, moverID, q.ID)
	assert.NoError(t, err)
	assert.Equal(t, domain.QuoteAccepted, q.Status)
	assert.Equal(t, int64(20000), *q.PriceCents)

	notifs.AssertNumberOfCalls(t, "NotifyNewServiceRequest", 1)
	notifs.AssertNumberOfCalls(t, "NotifyPriceProposed", 1)
	notifs.AssertNumberOfCalls(t, "NotifyClientPriceProposed", 1)
	notifs.AssertNumberOfCalls(t, "NotifyNegotiationAccepted", 1)
	convs.AssertNumberOfCalls(t, "OpenConversation", 1)

	// Price negotiation is over; further counter-offers are rejected
	_, err = svc.NegotiatePrice(ctx, clientID, q.ID, 10000)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}
