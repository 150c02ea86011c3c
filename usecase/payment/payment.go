package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rajasekharstrikes1/society-pay/domain"
	"github.com/rajasekharstrikes1/society-pay/internal/gateway/razorpay"
	"github.com/rajasekharstrikes1/society-pay/repository"
	"github.com/rajasekharstrikes1/society-pay/usecase"
)

// OrderGateway abstracts the Razorpay orders API.
type OrderGateway interface {
	CreateOrder(ctx context.Context, req razorpay.OrderRequest) (*razorpay.Order, error)
}

// CreateOrderInput describes a subscription purchase about to start.
type CreateOrderInput struct {
	UserID      string
	CommunityID string
	PlanID      string
	Amount      int64
	Currency    string
	Notes       map[string]string
}

// VerifyInput carries the gateway's checkout response plus business context.
type VerifyInput struct {
	SubjectID      string
	OrderID        string
	PaymentID      string
	Signature      string
	CommunityID    string
	PlanID         string
	DurationMonths int
}

const confirmationTemplate = "payment_confirmation"

// UseCase implements order creation and the payment confirmation handler.
type UseCase struct {
	orders      repository.OrderRepository
	plans       repository.PlanRepository
	communities repository.CommunityRepository
	flags       repository.FlagRepository
	gateway     OrderGateway
	notify      usecase.NotificationQueue
	keySecret   string
	logger      *zap.Logger
	now         func() time.Time
}

func New(
	orders repository.OrderRepository,
	plans repository.PlanRepository,
	communities repository.CommunityRepository,
	flags repository.FlagRepository,
	gateway OrderGateway,
	notify usecase.NotificationQueue,
	keySecret string,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		orders:      orders,
		plans:       plans,
		communities: communities,
		flags:       flags,
		gateway:     gateway,
		notify:      notify,
		keySecret:   keySecret,
		logger:      logger,
		now:         time.Now,
	}
}

// CreateOrder registers a gateway order and persists its mirror row.
func (uc *UseCase) CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	if input.UserID == "" {
		return nil, domain.ErrUnauthorized
	}

	currency := input.Currency
	if currency == "" {
		currency = "INR"
	}
	amount := input.Amount

	if input.PlanID != "" {
		plan, err := uc.plans.GetByID(ctx, input.PlanID)
		if err != nil {
			return nil, err
		}
		if amount == 0 {
			amount = plan.Amount
			currency = plan.Currency
		}
	}
	if amount <= 0 {
		return nil, domain.NewError(domain.ErrCodeInvalid, "amount must be positive")
	}

	notes := map[string]string{}
	for k, v := range input.Notes {
		notes[k] = v
	}
	notes["userId"] = input.UserID
	if input.CommunityID != "" {
		notes["communityId"] = input.CommunityID
	}
	if input.PlanID != "" {
		notes["planId"] = input.PlanID
	}

	receipt := buildReceipt(input.UserID, uc.now())

	gwOrder, err := uc.gateway.CreateOrder(ctx, razorpay.OrderRequest{
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
		Notes:    notes,
	})
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to create order", err)
	}

	order := &domain.Order{
		ID:          gwOrder.ID,
		UserID:      input.UserID,
		CommunityID: input.CommunityID,
		Amount:      gwOrder.Amount,
		Currency:    gwOrder.Currency,
		Receipt:     receipt,
		Status:      orderStatus(gwOrder.Status),
		Notes:       notes,
	}
	if err := uc.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	uc.logger.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("user_id", input.UserID),
		zap.Int64("amount", order.Amount))
	return order, nil
}

// Verify is the payment confirmation handler: it validates the checkout
// signature, activates the subscription, marks the trust flags, and queues a
// confirmation message. Verification is a single attempt; a failure after the
// gateway already took the money needs support intervention, not a retry.
func (uc *UseCase) Verify(ctx context.Context, input VerifyInput) (*domain.Subscription, error) {
	if input.OrderID == "" || input.PaymentID == "" || input.Signature == "" ||
		input.CommunityID == "" || input.PlanID == "" {
		return nil, domain.ErrInvalidPayload
	}

	if !VerifySignature(uc.keySecret, input.OrderID, input.PaymentID, input.Signature) {
		uc.logger.Warn("payment signature mismatch",
			zap.String("order_id", input.OrderID),
			zap.String("payment_id", input.PaymentID))
		return nil, domain.ErrVerificationFailed
	}

	months := input.DurationMonths
	if months <= 0 {
		plan, err := uc.plans.GetByID(ctx, input.PlanID)
		if err != nil {
			return nil, err
		}
		months = plan.DurationMonths
	}
	if months <= 0 {
		return nil, domain.NewError(domain.ErrCodeInvalid, "subscription duration must be positive")
	}

	now := uc.now()
	endsAt := now.Add(time.Duration(months) * 30 * 24 * time.Hour)
	sub := &domain.Subscription{
		PlanID:    input.PlanID,
		Status:    domain.SubscriptionActive,
		StartedAt: &now,
		EndsAt:    &endsAt,
	}

	if err := uc.communities.UpdateSubscription(ctx, input.CommunityID, sub); err != nil {
		return nil, err
	}

	if err := uc.orders.MarkPaid(ctx, input.OrderID, input.PaymentID); err != nil {
		// The subscription is already active; a missing order row is a
		// bookkeeping gap, not a reason to fail the confirmation.
		uc.logger.Warn("failed to mark order paid",
			zap.String("order_id", input.OrderID),
			zap.Error(err))
	}

	if input.SubjectID != "" {
		if err := uc.flags.MarkPaymentSuccess(ctx, input.SubjectID, input.PaymentID); err != nil {
			uc.logger.Warn("failed to mark payment flags", zap.String("subject_id", input.SubjectID), zap.Error(err))
		}
		if err := uc.flags.CacheSubscription(ctx, input.SubjectID, sub.Status, sub.EndsAt); err != nil {
			uc.logger.Warn("failed to cache subscription", zap.String("subject_id", input.SubjectID), zap.Error(err))
		}
	}

	uc.queueConfirmation(ctx, input, endsAt)

	uc.logger.Info("payment verified",
		zap.String("order_id", input.OrderID),
		zap.String("payment_id", input.PaymentID),
		zap.String("community_id", input.CommunityID),
		zap.Time("ends_at", endsAt))
	return sub, nil
}

// HandleWebhook validates a gateway webhook and returns the event name.
func (uc *UseCase) HandleWebhook(body []byte, signature, webhookSecret string) (string, error) {
	if !VerifyWebhookSignature(webhookSecret, body, signature) {
		return "", domain.ErrVerificationFailed
	}

	var event struct {
		Event string `json:"event"`
	}
	if err := json.Unmarshal(body, &event); err != nil {
		return "", domain.WrapError(domain.ErrCodeInvalid, "malformed webhook body", err)
	}

	uc.logger.Info("webhook received", zap.String("event", event.Event))
	return event.Event, nil
}

func (uc *UseCase) queueConfirmation(ctx context.Context, input VerifyInput, endsAt time.Time) {
	if uc.notify == nil {
		return
	}
	community, err := uc.communities.GetByID(ctx, input.CommunityID)
	if err != nil || community.Phone == "" {
		return
	}
	params := []string{community.Name, input.PaymentID, endsAt.Format("02 Jan 2006")}
	if err := uc.notify.Queue(ctx, community.Phone, confirmationTemplate, params); err != nil {
		uc.logger.Warn("failed to queue confirmation message", zap.Error(err))
	}
}

func buildReceipt(userID string, now time.Time) string {
	short := userID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("rcpt_%s_%d", short, now.UnixMilli())
}

func orderStatus(gatewayStatus string) string {
	switch gatewayStatus {
	case "paid":
		return domain.OrderPaid
	case "":
		return domain.OrderCreated
	default:
		return gatewayStatus
	}
}
