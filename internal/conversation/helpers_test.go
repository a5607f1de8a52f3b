package conversation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/farmgate/whatsapp-engine/internal/ai"
	apperrors "github.com/farmgate/whatsapp-engine/internal/errors"
	"github.com/farmgate/whatsapp-engine/internal/model"
	"github.com/farmgate/whatsapp-engine/internal/otp"
	"github.com/farmgate/whatsapp-engine/internal/session"
	"github.com/farmgate/whatsapp-engine/internal/whatsapp"
)

const testPhone = "+254700000001"

type mockMarket struct {
	mock.Mock
}

func (m *mockMarket) account(args mock.Arguments) (*model.Account, error) {
	if v := args.Get(0); v != nil {
		return v.(*model.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMarket) FindAccountByPhone(ctx context.Context, phone string) (*model.Account, error) {
	return m.account(m.Called(ctx, phone))
}

func (m *mockMarket) FindAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	return m.account(m.Called(ctx, email))
}

func (m *mockMarket) CreateAccount(ctx context.Context, in model.SignupInput) (*model.Account, error) {
	return m.account(m.Called(ctx, in))
}

func (m *mockMarket) MarkVerified(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockMarket) LinkPhone(ctx context.Context, userID, phone string) error {
	return m.Called(ctx, userID, phone).Error(0)
}

func (m *mockMarket) UnlinkPhone(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockMarket) AttachIDDocument(ctx context.Context, userID, objectKey string) error {
	return m.Called(ctx, userID, objectKey).Error(0)
}

func (m *mockMarket) CreateProduct(ctx context.Context, sellerID string, in model.ProductInput) (*model.Product, error) {
	args := m.Called(ctx, sellerID, in)
	if v := args.Get(0); v != nil {
		return v.(*model.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMarket) ListSellerProducts(ctx context.Context, sellerID string, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, sellerID, limit, offset)
	v, _ := args.Get(0).([]model.Product)
	return v, args.Error(1)
}

func (m *mockMarket) BrowseProducts(ctx context.Context, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, limit, offset)
	v, _ := args.Get(0).([]model.Product)
	return v, args.Error(1)
}

func (m *mockMarket) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*model.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMarket) SetCartItem(ctx context.Context, buyerID, productID string, quantity float64) error {
	return m.Called(ctx, buyerID, productID, quantity).Error(0)
}

func (m *mockMarket) ListCart(ctx context.Context, buyerID string) ([]model.CartItem, error) {
	args := m.Called(ctx, buyerID)
	v, _ := args.Get(0).([]model.CartItem)
	return v, args.Error(1)
}

func (m *mockMarket) CreateHarvestRequest(ctx context.Context, buyerID string, in model.HarvestInput) (*model.HarvestRequest, error) {
	args := m.Called(ctx, buyerID, in)
	if v := args.Get(0); v != nil {
		return v.(*model.HarvestRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMarket) ListOpenHarvestRequests(ctx context.Context, limit, offset int) ([]model.HarvestRequest, error) {
	args := m.Called(ctx, limit, offset)
	v, _ := args.Get(0).([]model.HarvestRequest)
	return v, args.Error(1)
}

func (m *mockMarket) GetHarvestRequest(ctx context.Context, ref string) (*model.HarvestRequest, error) {
	args := m.Called(ctx, ref)
	if v := args.Get(0); v != nil {
		return v.(*model.HarvestRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMarket) AcknowledgeHarvestRequest(ctx context.Context, sellerID, requestID string) error {
	return m.Called(ctx, sellerID, requestID).Error(0)
}

func (m *mockMarket) CreateQuote(ctx context.Context, sellerID string, in model.QuoteInput) (*model.Quote, error) {
	args := m.Called(ctx, sellerID, in)
	if v := args.Get(0); v != nil {
		return v.(*model.Quote), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMarket) order(args mock.Arguments) (*model.Order, error) {
	if v := args.Get(0); v != nil {
		return v.(*model.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMarket) ListPendingOrders(ctx context.Context, sellerID string, limit, offset int) ([]model.Order, error) {
	args := m.Called(ctx, sellerID, limit, offset)
	v, _ := args.Get(0).([]model.Order)
	return v, args.Error(1)
}

func (m *mockMarket) GetOrder(ctx context.Context, sellerID, ref string) (*model.Order, error) {
	return m.order(m.Called(ctx, sellerID, ref))
}

func (m *mockMarket) AcceptOrder(ctx context.Context, sellerID, orderID string, in model.OrderAcceptance) (*model.Order, error) {
	return m.order(m.Called(ctx, sellerID, orderID, in))
}

func (m *mockMarket) RejectOrder(ctx context.Context, sellerID, orderID, reason string) (*model.Order, error) {
	return m.order(m.Called(ctx, sellerID, orderID, reason))
}

func (m *mockMarket) UpdateOrderStatus(ctx context.Context, sellerID, orderID string, status model.OrderStatus, tracking *string) (*model.Order, error) {
	return m.order(m.Called(ctx, sellerID, orderID, status, tracking))
}

func (m *mockMarket) ListTransactions(ctx context.Context, userID string, limit, offset int) ([]model.Transaction, error) {
	args := m.Called(ctx, userID, limit, offset)
	v, _ := args.Get(0).([]model.Transaction)
	return v, args.Error(1)
}

func (m *mockMarket) GetTransaction(ctx context.Context, userID, ref string) (*model.Transaction, error) {
	args := m.Called(ctx, userID, ref)
	if v := args.Get(0); v != nil {
		return v.(*model.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

type fakeSender struct {
	mu   sync.Mutex
	sent []whatsapp.Message
}

func (s *fakeSender) SendAll(_ context.Context, msgs []whatsapp.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msgs...)
	return nil
}

// take returns and forgets the messages sent so far.
func (s *fakeSender) take() []whatsapp.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.sent
	s.sent = nil
	return out
}

const validCode = "123456"

type fakeOTP struct {
	sent    []otp.Destination
	sendErr error
	// verifyErr overrides the code check when set.
	verifyErr error
}

func (f *fakeOTP) Send(_ context.Context, to otp.Destination) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, to)
	return nil
}

func (f *fakeOTP) Verify(_ context.Context, _ otp.Destination, code string) error {
	if f.verifyErr != nil {
		return f.verifyErr
	}
	if code != validCode {
		return apperrors.OTPInvalid()
	}
	return nil
}

type fakeGate struct {
	locked   map[string]bool
	paired   map[string]bool
	unlocked []string
}

func newFakeGate() *fakeGate {
	return &fakeGate{locked: map[string]bool{}, paired: map[string]bool{}}
}

func (g *fakeGate) Lock(_ context.Context, userID string, _ model.LockReason) error {
	g.locked[userID] = true
	return nil
}

func (g *fakeGate) Unlock(_ context.Context, userID, phone string) error {
	g.locked[userID] = false
	g.paired[userID+phone] = true
	g.unlocked = append(g.unlocked, userID)
	return nil
}

func (g *fakeGate) Pair(_ context.Context, userID, phone string) error {
	g.paired[userID+phone] = true
	return nil
}

func (g *fakeGate) IsPaired(_ context.Context, userID, phone string) (bool, error) {
	return g.paired[userID+phone], nil
}

func (g *fakeGate) IsLocked(_ context.Context, userID string) (bool, error) {
	return g.locked[userID], nil
}

type fakeContacts struct {
	bound    map[string]*string
	locale   map[string]string
	optedOut map[string]bool
}

func newFakeContacts() *fakeContacts {
	return &fakeContacts{bound: map[string]*string{}, locale: map[string]string{}, optedOut: map[string]bool{}}
}

func (c *fakeContacts) BindUser(_ context.Context, phone string, userID *string) error {
	c.bound[phone] = userID
	return nil
}

func (c *fakeContacts) SetLocale(_ context.Context, phone, locale string) error {
	c.locale[phone] = locale
	return nil
}

func (c *fakeContacts) OptOut(_ context.Context, phone string) error {
	c.optedOut[phone] = true
	return nil
}

func (c *fakeContacts) OptIn(_ context.Context, phone string) error {
	c.optedOut[phone] = false
	return nil
}

type fakeExtractor struct {
	product *ai.ProductDraft
	harvest *ai.HarvestDraft
	quote   *ai.QuoteDraft
	order   *ai.OrderActionDraft
	answer  string
}

func (f *fakeExtractor) ExtractProduct(context.Context, string) (*ai.ProductDraft, error) {
	return f.product, nil
}

func (f *fakeExtractor) ExtractHarvest(context.Context, string) (*ai.HarvestDraft, error) {
	return f.harvest, nil
}

func (f *fakeExtractor) ExtractQuote(context.Context, string) (*ai.QuoteDraft, error) {
	return f.quote, nil
}

func (f *fakeExtractor) ExtractOrderAction(context.Context, string) (*ai.OrderActionDraft, error) {
	return f.order, nil
}

func (f *fakeExtractor) Answer(context.Context, string, string) (string, error) {
	return f.answer, nil
}

type harness struct {
	engine   *Engine
	sessions *session.MemoryStore
	sender   *fakeSender
	market   *mockMarket
	otp      *fakeOTP
	gate     *fakeGate
	contacts *fakeContacts
	ai       *fakeExtractor
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		sessions: session.NewMemoryStore(time.Hour),
		sender:   &fakeSender{},
		market:   &mockMarket{},
		otp:      &fakeOTP{},
		gate:     newFakeGate(),
		contacts: newFakeContacts(),
		ai:       &fakeExtractor{},
	}
	h.engine = New(Deps{
		Sessions: h.sessions,
		Sender:   h.sender,
		Market:   h.market,
		AI:       h.ai,
		OTP:      h.otp,
		Security: h.gate,
		Contacts: h.contacts,
	}, Options{})
	t.Cleanup(func() { h.market.AssertExpectations(t) })
	return h
}

var (
	seller = &model.SessionUser{ID: "seller-1", Email: "ana@farm.test", Name: "Ana Mwangi", AccountType: model.AccountTypeSeller}
	buyer  = &model.SessionUser{ID: "buyer-1", Email: "ben@shop.test", Name: "Ben Otieno", AccountType: model.AccountTypeBuyer}
)

// at places the test phone in flow with data, bound to user.
func (h *harness) at(t *testing.T, user *model.SessionUser, flow model.Flow, data map[string]any) {
	t.Helper()
	require.NoError(t, h.sessions.Clear(context.Background(), testPhone))
	_, err := h.sessions.Set(context.Background(), testPhone, session.Patch{
		Flow:         session.FlowPtr(flow),
		Data:         data,
		User:         user,
		SkipSnapshot: true,
	})
	require.NoError(t, err)
}

func (h *harness) session() model.Session {
	return h.sessions.Get(context.Background(), testPhone)
}

func (h *harness) send(t *testing.T, ev Event) []whatsapp.Message {
	t.Helper()
	require.NoError(t, h.engine.Handle(context.Background(), testPhone, h.session(), ev))
	return h.sender.take()
}

func (h *harness) text(t *testing.T, body string) []whatsapp.Message {
	t.Helper()
	return h.send(t, Event{Kind: EventText, Text: body})
}

func (h *harness) button(t *testing.T, id string) []whatsapp.Message {
	t.Helper()
	return h.send(t, Event{Kind: EventButton, ButtonID: id})
}

// bodies returns the visible text of each message.
func bodies(msgs []whatsapp.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		switch {
		case m.Text != nil:
			out = append(out, m.Text.Body)
		case m.Interactive != nil:
			out = append(out, m.Interactive.Body.Text)
		default:
			out = append(out, "")
		}
	}
	return out
}

// rowIDs returns the button and list row ids of an interactive message.
func rowIDs(m whatsapp.Message) []string {
	var ids []string
	if m.Interactive == nil {
		return ids
	}
	for _, b := range m.Interactive.Action.Buttons {
		ids = append(ids, b.Reply.ID)
	}
	for _, s := range m.Interactive.Action.Sections {
		for _, r := range s.Rows {
			ids = append(ids, r.ID)
		}
	}
	return ids
}
