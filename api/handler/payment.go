package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/rajasekharstrikes1/society-pay/api/transport"
	"github.com/rajasekharstrikes1/society-pay/domain"
	"github.com/rajasekharstrikes1/society-pay/internal/middleware"
	"github.com/rajasekharstrikes1/society-pay/pkg/httpcontext"
	"github.com/rajasekharstrikes1/society-pay/repository"
	paymentUC "github.com/rajasekharstrikes1/society-pay/usecase/payment"
)

type PaymentHandler struct {
	baseHandler
	uc            *paymentUC.UseCase
	orders        repository.OrderRepository
	webhookSecret string
}

func NewPaymentHandler(uc *paymentUC.UseCase, orders repository.OrderRepository, webhookSecret string, adapter *httpcontext.Adapter, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		baseHandler:   newBaseHandler(adapter, logger),
		uc:            uc,
		orders:        orders,
		webhookSecret: webhookSecret,
	}
}

// @Summary Create a payment order
// @Tags payments
// @Router /api/v1/payments/order [post]
func (h *PaymentHandler) CreateOrder(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.CreateOrderRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	communityID := req.CommunityID
	if communityID == "" {
		communityID = string(ctx.Request.Header.Peek(middleware.HeaderCommunityID))
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	order, err := h.uc.CreateOrder(stdCtx, paymentUC.CreateOrderInput{
		UserID:      userID,
		CommunityID: communityID,
		PlanID:      req.PlanID,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Notes:       req.Notes,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, order)
}

// @Summary Verify a checkout response and activate the subscription
// @Tags payments
// @Router /api/v1/payments/verify [post]
func (h *PaymentHandler) VerifyPayment(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.VerifyPaymentRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	communityID := req.CommunityID
	if communityID == "" {
		communityID = string(ctx.Request.Header.Peek(middleware.HeaderCommunityID))
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	sub, err := h.uc.Verify(stdCtx, paymentUC.VerifyInput{
		SubjectID:      userID,
		OrderID:        req.RazorpayOrderID,
		PaymentID:      req.RazorpayPaymentID,
		Signature:      req.RazorpaySignature,
		CommunityID:    communityID,
		PlanID:         req.PlanID,
		DurationMonths: req.Duration,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"verified":     true,
		"subscription": sub,
	})
}

// @Summary List the caller's orders
// @Tags payments
// @Router /api/v1/payments/orders [get]
func (h *PaymentHandler) ListOrders(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	filter := repository.OrderFilter{
		UserID: userID,
		Status: string(ctx.QueryArgs().Peek("status")),
		Limit:  parseInt(string(ctx.QueryArgs().Peek("limit")), 50),
		Offset: parseInt(string(ctx.QueryArgs().Peek("offset")), 0),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	orders, err := h.orders.List(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, orders)
}

// @Summary Gateway webhook intake
// @Tags payments
// @Router /webhooks/razorpay [post]
func (h *PaymentHandler) Webhook(ctx *fasthttp.RequestCtx) {
	signature := string(ctx.Request.Header.Peek("X-Razorpay-Signature"))
	body := ctx.PostBody()

	event, err := h.uc.HandleWebhook(body, signature, h.webhookSecret)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]string{"event": event})
}
