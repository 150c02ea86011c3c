package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/rajasekharstrikes1/society-pay/api/transport"
	"github.com/rajasekharstrikes1/society-pay/domain"
	"github.com/rajasekharstrikes1/society-pay/internal/middleware"
	"github.com/rajasekharstrikes1/society-pay/pkg/httpcontext"
	"github.com/rajasekharstrikes1/society-pay/repository"
	gateUC "github.com/rajasekharstrikes1/society-pay/usecase/gate"
)

type CommunityHandler struct {
	baseHandler
	communities repository.CommunityRepository
	gate        *gateUC.UseCase
}

func NewCommunityHandler(communities repository.CommunityRepository, gate *gateUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *CommunityHandler {
	return &CommunityHandler{
		baseHandler: newBaseHandler(adapter, logger),
		communities: communities,
		gate:        gate,
	}
}

// @Summary Resolve a community's subscription
// @Tags communities
// @Router /api/v1/communities/{id}/subscription [get]
func (h *CommunityHandler) GetSubscription(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing community id", nil))
		return
	}

	fresh, _ := strconv.ParseBool(string(ctx.QueryArgs().Peek("fresh")))

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	sub, err := h.gate.Resolve(stdCtx, userID, id, fresh)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if sub == nil {
		h.respondJSON(ctx, http.StatusNotFound, transport.NewError(string(domain.ErrCodeNotFound), "subscription not found", nil))
		return
	}
	h.respondSuccess(ctx, http.StatusOK, sub)
}

// @Summary Get a community
// @Tags communities
// @Router /api/v1/communities/{id} [get]
func (h *CommunityHandler) Get(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing community id", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	community, err := h.communities.GetByID(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, community)
}

// @Summary Create or update a community (platform admin only)
// @Tags communities
// @Router /api/v1/communities/{id} [put]
func (h *CommunityHandler) Upsert(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	role := string(ctx.Request.Header.Peek(middleware.HeaderUserRole))
	if role != domain.RoleSuperAdmin {
		h.respondJSON(ctx, http.StatusForbidden, transport.NewError(string(domain.ErrCodeForbidden), "platform admin required", nil))
		return
	}

	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing community id", nil))
		return
	}

	var req transport.CommunityUpsertRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Name == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	community := &domain.Community{
		ID:         id,
		Name:       req.Name,
		AdminEmail: req.AdminEmail,
		Phone:      req.Phone,
		Address:    req.Address,
		IsActive:   req.IsActive,
		Metadata:   req.Metadata,
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.communities.Upsert(stdCtx, community); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, community)
}
