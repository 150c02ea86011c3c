package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/rajasekharstrikes1/society-pay/api/transport"
	"github.com/rajasekharstrikes1/society-pay/domain"
	"github.com/rajasekharstrikes1/society-pay/internal/middleware"
	"github.com/rajasekharstrikes1/society-pay/pkg/httpcontext"
	gateUC "github.com/rajasekharstrikes1/society-pay/usecase/gate"
)

type GateHandler struct {
	baseHandler
	uc *gateUC.UseCase
}

func NewGateHandler(uc *gateUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *GateHandler {
	return &GateHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Evaluate access for a navigation
// @Tags gate
// @Router /api/v1/gate/evaluate [post]
func (h *GateHandler) Evaluate(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.GateEvaluateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	// Gating only applies to community admins; everyone else passes.
	role := string(ctx.Request.Header.Peek(middleware.HeaderUserRole))
	if role != "" && role != domain.RoleCommunityAdmin {
		h.respondSuccess(ctx, http.StatusOK, gateUC.Evaluation{Decision: domain.DecisionAllow})
		return
	}

	communityID := req.CommunityID
	if communityID == "" {
		communityID = string(ctx.Request.Header.Peek(middleware.HeaderCommunityID))
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	evaluation, err := h.uc.Evaluate(stdCtx, gateUC.EvaluateRequest{
		SubjectID:   userID,
		CommunityID: communityID,
		Route:       req.Route,
		FromPayment: req.FromPayment,
		Profile:     profileSubscription(req.Subscription),
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, evaluation)
}

// @Summary Force-allow access for this session
// @Tags gate
// @Router /api/v1/gate/bypass [post]
func (h *GateHandler) Bypass(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.SetBypass(stdCtx, userID); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// profileSubscription converts the client-carried snapshot. An end date that
// fails to parse is dropped so the gate fails open instead of penalizing the
// user for a data-quality issue.
func profileSubscription(snapshot *transport.ProfileSubscription) *domain.Subscription {
	if snapshot == nil {
		return nil
	}
	sub := &domain.Subscription{Status: domain.SubscriptionStatus(snapshot.Status)}
	if snapshot.EndsAt != "" {
		if parsed, err := time.Parse(time.RFC3339, snapshot.EndsAt); err == nil {
			sub.EndsAt = &parsed
		}
	}
	return sub
}
