package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rajasekharstrikes1/society-pay/domain"
	"github.com/rajasekharstrikes1/society-pay/internal/gateway/razorpay"
	"github.com/rajasekharstrikes1/society-pay/repository"
)

type fakeOrderStore struct {
	orders map[string]*domain.Order
	paid   map[string]string
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{
		orders: make(map[string]*domain.Order),
		paid:   make(map[string]string),
	}
}

func (f *fakeOrderStore) GetByID(_ context.Context, id string) (*domain.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

func (f *fakeOrderStore) List(_ context.Context, filter repository.OrderFilter) ([]domain.Order, error) {
	var out []domain.Order
	for _, order := range f.orders {
		if filter.UserID != "" && order.UserID != filter.UserID {
			continue
		}
		out = append(out, *order)
	}
	return out, nil
}

func (f *fakeOrderStore) Create(_ context.Context, order *domain.Order) error {
	f.orders[order.ID] = order
	return nil
}

func (f *fakeOrderStore) MarkPaid(_ context.Context, id, paymentID string) error {
	order, ok := f.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	order.Status = domain.OrderPaid
	order.PaymentID = paymentID
	f.paid[id] = paymentID
	return nil
}

type fakePlanStore struct {
	plans map[string]*domain.Plan
}

func (f *fakePlanStore) GetByID(_ context.Context, id string) (*domain.Plan, error) {
	plan, ok := f.plans[id]
	if !ok {
		return nil, domain.ErrPlanNotFound
	}
	return plan, nil
}

func (f *fakePlanStore) List(_ context.Context) ([]domain.Plan, error) {
	var out []domain.Plan
	for _, plan := range f.plans {
		out = append(out, *plan)
	}
	return out, nil
}

type fakeCommunityStore struct {
	communities   map[string]*domain.Community
	subscriptions map[string]*domain.Subscription
}

func newFakeCommunityStore() *fakeCommunityStore {
	return &fakeCommunityStore{
		communities:   make(map[string]*domain.Community),
		subscriptions: make(map[string]*domain.Subscription),
	}
}

func (f *fakeCommunityStore) GetByID(_ context.Context, id string) (*domain.Community, error) {
	community, ok := f.communities[id]
	if !ok {
		return nil, domain.ErrCommunityNotFound
	}
	return community, nil
}

func (f *fakeCommunityStore) Upsert(_ context.Context, community *domain.Community) error {
	f.communities[community.ID] = community
	return nil
}

func (f *fakeCommunityStore) UpdateSubscription(_ context.Context, communityID string, sub *domain.Subscription) error {
	if _, ok := f.communities[communityID]; !ok {
		return domain.ErrCommunityNotFound
	}
	f.subscriptions[communityID] = sub
	return nil
}

type fakeFlags struct {
	paymentMarks map[string]string
	cached       map[string]domain.SubscriptionStatus
}

func newFakeFlags() *fakeFlags {
	return &fakeFlags{
		paymentMarks: make(map[string]string),
		cached:       make(map[string]domain.SubscriptionStatus),
	}
}

func (f *fakeFlags) Snapshot(_ context.Context, _ string) (domain.GateFlags, error) {
	return domain.GateFlags{}, nil
}

func (f *fakeFlags) MarkPaymentSuccess(_ context.Context, subjectID, paymentID string) error {
	f.paymentMarks[subjectID] = paymentID
	return nil
}

func (f *fakeFlags) SetBypass(_ context.Context, _ string) error { return nil }

func (f *fakeFlags) RecordRedirect(_ context.Context, _ string) error { return nil }

func (f *fakeFlags) CacheSubscription(_ context.Context, subjectID string, status domain.SubscriptionStatus, _ *time.Time) error {
	f.cached[subjectID] = status
	return nil
}

type fakeGateway struct {
	created []razorpay.OrderRequest
	err     error
}

func (f *fakeGateway) CreateOrder(_ context.Context, req razorpay.OrderRequest) (*razorpay.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, req)
	return &razorpay.Order{
		ID:       "order_test_1",
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Status:   "created",
	}, nil
}

type fakeNotifyQueue struct {
	sent [][]string
}

func (f *fakeNotifyQueue) Queue(_ context.Context, to, template string, params []string) error {
	f.sent = append(f.sent, append([]string{to, template}, params...))
	return nil
}

type paymentFixture struct {
	uc          *UseCase
	orders      *fakeOrderStore
	plans       *fakePlanStore
	communities *fakeCommunityStore
	flags       *fakeFlags
	gateway     *fakeGateway
	notify      *fakeNotifyQueue
	now         time.Time
}

const testKeySecret = "test_key_secret"

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()

	fx := &paymentFixture{
		orders:      newFakeOrderStore(),
		plans:       &fakePlanStore{plans: make(map[string]*domain.Plan)},
		communities: newFakeCommunityStore(),
		flags:       newFakeFlags(),
		gateway:     &fakeGateway{},
		notify:      &fakeNotifyQueue{},
		now:         time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
	}

	fx.plans.plans["plan_basic"] = &domain.Plan{
		ID:             "plan_basic",
		Name:           "Basic",
		Amount:         49900,
		Currency:       "INR",
		DurationMonths: 3,
	}
	fx.communities.communities["comm_1"] = &domain.Community{
		ID:    "comm_1",
		Name:  "Green Meadows",
		Phone: "919876543210",
	}

	fx.uc = New(fx.orders, fx.plans, fx.communities, fx.flags, fx.gateway, fx.notify, testKeySecret, zap.NewNop())
	fx.uc.now = func() time.Time { return fx.now }
	return fx
}

func TestCreateOrderFromPlan(t *testing.T) {
	fx := newPaymentFixture(t)

	order, err := fx.uc.CreateOrder(context.Background(), CreateOrderInput{
		UserID:      "user_1",
		CommunityID: "comm_1",
		PlanID:      "plan_basic",
	})
	require.NoError(t, err)
	assert.Equal(t, "order_test_1", order.ID)
	assert.Equal(t, int64(49900), order.Amount)
	assert.Equal(t, "INR", order.Currency)
	assert.Equal(t, domain.OrderCreated, order.Status)

	// Context travels in the gateway notes.
	require.Len(t, fx.gateway.created, 1)
	notes := fx.gateway.created[0].Notes
	assert.Equal(t, "user_1", notes["userId"])
	assert.Equal(t, "comm_1", notes["communityId"])
	assert.Equal(t, "plan_basic", notes["planId"])

	// The mirror row is persisted.
	stored, err := fx.orders.GetByID(context.Background(), "order_test_1")
	require.NoError(t, err)
	assert.Equal(t, "user_1", stored.UserID)
}

func TestCreateOrderRejectsMissingAmount(t *testing.T) {
	fx := newPaymentFixture(t)

	_, err := fx.uc.CreateOrder(context.Background(), CreateOrderInput{UserID: "user_1"})
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestCreateOrderUnknownPlan(t *testing.T) {
	fx := newPaymentFixture(t)

	_, err := fx.uc.CreateOrder(context.Background(), CreateOrderInput{
		UserID: "user_1",
		PlanID: "plan_missing",
	})
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
}

func TestCreateOrderGatewayFailure(t *testing.T) {
	fx := newPaymentFixture(t)
	fx.gateway.err = errors.New("gateway unavailable")

	_, err := fx.uc.CreateOrder(context.Background(), CreateOrderInput{
		UserID: "user_1",
		PlanID: "plan_basic",
	})
	require.Error(t, err)
	assert.Empty(t, fx.orders.orders)
}

func TestVerifyActivatesSubscription(t *testing.T) {
	fx := newPaymentFixture(t)
	fx.orders.orders["order_1"] = &domain.Order{ID: "order_1", UserID: "user_1", Status: domain.OrderCreated}

	sig := ComputeSignature(testKeySecret, "order_1", "pay_1")

	sub, err := fx.uc.Verify(context.Background(), VerifyInput{
		SubjectID:   "user_1",
		OrderID:     "order_1",
		PaymentID:   "pay_1",
		Signature:   sig,
		CommunityID: "comm_1",
		PlanID:      "plan_basic",
	})
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, domain.SubscriptionActive, sub.Status)
	require.NotNil(t, sub.EndsAt)

	// Three 30-day months from the fixed clock.
	wantEnd := fx.now.Add(3 * 30 * 24 * time.Hour)
	assert.True(t, sub.EndsAt.Equal(wantEnd))

	// The community record, the order row, and the session flags all moved.
	stored := fx.communities.subscriptions["comm_1"]
	require.NotNil(t, stored)
	assert.Equal(t, domain.SubscriptionActive, stored.Status)

	assert.Equal(t, "pay_1", fx.orders.paid["order_1"])
	assert.Equal(t, "pay_1", fx.flags.paymentMarks["user_1"])
	assert.Equal(t, domain.SubscriptionActive, fx.flags.cached["user_1"])

	// A confirmation message was queued to the community contact.
	require.Len(t, fx.notify.sent, 1)
	assert.Equal(t, "919876543210", fx.notify.sent[0][0])
	assert.Equal(t, "payment_confirmation", fx.notify.sent[0][1])
}

func TestVerifyExplicitDurationWins(t *testing.T) {
	fx := newPaymentFixture(t)
	sig := ComputeSignature(testKeySecret, "order_1", "pay_1")

	sub, err := fx.uc.Verify(context.Background(), VerifyInput{
		SubjectID:      "user_1",
		OrderID:        "order_1",
		PaymentID:      "pay_1",
		Signature:      sig,
		CommunityID:    "comm_1",
		PlanID:         "plan_basic",
		DurationMonths: 12,
	})
	require.NoError(t, err)
	wantEnd := fx.now.Add(12 * 30 * 24 * time.Hour)
	assert.True(t, sub.EndsAt.Equal(wantEnd))
}

func TestVerifyRejectsBadSignature(t *testing.T) {
	fx := newPaymentFixture(t)
	fx.orders.orders["order_1"] = &domain.Order{ID: "order_1", UserID: "user_1", Status: domain.OrderCreated}

	_, err := fx.uc.Verify(context.Background(), VerifyInput{
		SubjectID:   "user_1",
		OrderID:     "order_1",
		PaymentID:   "pay_1",
		Signature:   "forged",
		CommunityID: "comm_1",
		PlanID:      "plan_basic",
	})
	require.ErrorIs(t, err, domain.ErrVerificationFailed)

	// A failed verification must leave no trace.
	assert.Empty(t, fx.communities.subscriptions)
	assert.Empty(t, fx.orders.paid)
	assert.Empty(t, fx.flags.paymentMarks)
	assert.Empty(t, fx.notify.sent)
}

func TestVerifyRejectsIncompleteInput(t *testing.T) {
	fx := newPaymentFixture(t)

	_, err := fx.uc.Verify(context.Background(), VerifyInput{
		OrderID:   "order_1",
		PaymentID: "pay_1",
	})
	require.ErrorIs(t, err, domain.ErrInvalidPayload)
}

func TestVerifySurvivesMissingOrderRow(t *testing.T) {
	fx := newPaymentFixture(t)
	sig := ComputeSignature(testKeySecret, "order_ghost", "pay_1")

	// No mirror row exists; activation must still succeed.
	sub, err := fx.uc.Verify(context.Background(), VerifyInput{
		SubjectID:   "user_1",
		OrderID:     "order_ghost",
		PaymentID:   "pay_1",
		Signature:   sig,
		CommunityID: "comm_1",
		PlanID:      "plan_basic",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionActive, sub.Status)
}

func TestHandleWebhook(t *testing.T) {
	fx := newPaymentFixture(t)
	const secret = "webhook_secret"
	body := []byte(`{"event":"payment.captured"}`)
	sig := computeWebhookSignature(secret, body)

	event, err := fx.uc.HandleWebhook(body, sig, secret)
	require.NoError(t, err)
	assert.Equal(t, "payment.captured", event)

	_, err = fx.uc.HandleWebhook(body, "forged", secret)
	require.ErrorIs(t, err, domain.ErrVerificationFailed)

	badBody := []byte(`not-json`)
	_, err = fx.uc.HandleWebhook(badBody, computeWebhookSignature(secret, badBody), secret)
	require.Error(t, err)
}
