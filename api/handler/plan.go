package handler

import (
	"net/http"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/rajasekharstrikes1/society-pay/pkg/httpcontext"
	"github.com/rajasekharstrikes1/society-pay/repository"
)

type PlanHandler struct {
	baseHandler
	plans repository.PlanRepository
}

func NewPlanHandler(plans repository.PlanRepository, adapter *httpcontext.Adapter, logger *zap.Logger) *PlanHandler {
	return &PlanHandler{
		baseHandler: newBaseHandler(adapter, logger),
		plans:       plans,
	}
}

// @Summary List subscription plans
// @Tags plans
// @Router /api/v1/plans [get]
func (h *PlanHandler) List(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	plans, err := h.plans.List(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, plans)
}

func parseInt(value string, fallback int) int {
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}
