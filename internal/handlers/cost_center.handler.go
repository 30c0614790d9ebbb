package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/realhub/condo-api/internal/model"
	xhttp "github.com/realhub/condo-api/pkg/http"
)

type CostCenterService interface {
	List(ctx context.Context, f model.CostCenterFilter, caller model.Caller) ([]*model.CostCenter, model.PageMeta, error)
	Get(ctx context.Context, id int64) (*model.CostCenter, error)
	Create(ctx context.Context, req model.CostCenterRequest, caller model.Caller) (*model.CostCenter, error)
	Update(ctx context.Context, id int64, req model.CostCenterRequest, caller model.Caller) (*model.CostCenter, error)
	Delete(ctx context.Context, id int64, caller model.Caller) error
	LinkUser(ctx context.Context, userID, costCenterID int64, caller model.Caller) error
	UnlinkUser(ctx context.Context, userID, costCenterID int64, caller model.Caller) error
}

type CostCenterHandler struct {
	svc CostCenterService
}

func NewCostCenterHandler(svc CostCenterService) *CostCenterHandler {
	return &CostCenterHandler{svc: svc}
}

func RegisterCostCenterRoutes(e *router.Group, h *CostCenterHandler, parser TokenParser) {
	e.GET("/cost-centers", authenticated(parser, h.ListCostCenters))
	e.GET("/cost-centers/{id}", authenticated(parser, h.GetCostCenter))
	e.POST("/cost-centers", adminOnly(parser, h.CreateCostCenter))
	e.PUT("/cost-centers/{id}", adminOnly(parser, h.UpdateCostCenter))
	e.DELETE("/cost-centers/{id}", adminOnly(parser, h.DeleteCostCenter))
	e.POST("/cost-centers/{id}/users/{userId}", adminOnly(parser, h.LinkUser))
	e.DELETE("/cost-centers/{id}/users/{userId}", adminOnly(parser, h.UnlinkUser))
}

func (h *CostCenterHandler) ListCostCenters(ctx *xhttp.RequestCtx, caller model.Caller) {
	var f model.CostCenterFilter
	if v := query(ctx, "name"); v != "" {
		f.Name = &v
	}
	f.All = query(ctx, "all") == "true"
	f.Page = queryInt(ctx, "page")
	f.Limit = queryInt(ctx, "limit")

	items, meta, err := h.svc.List(ctx, f, caller)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, listEnvelope{Data: items, Meta: meta})
}

func (h *CostCenterHandler) GetCostCenter(ctx *xhttp.RequestCtx, caller model.Caller) {
	id, err := pathID(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid cost center id")
		return
	}

	cc, err := h.svc.Get(ctx, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, cc)
}

func (h *CostCenterHandler) CreateCostCenter(ctx *xhttp.RequestCtx, caller model.Caller) {
	var req model.CostCenterRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	cc, err := h.svc.Create(ctx, req, caller)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, cc)
}

func (h *CostCenterHandler) UpdateCostCenter(ctx *xhttp.RequestCtx, caller model.Caller) {
	id, err := pathID(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid cost center id")
		return
	}

	var req model.CostCenterRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	cc, err := h.svc.Update(ctx, id, req, caller)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, cc)
}

func (h *CostCenterHandler) DeleteCostCenter(ctx *xhttp.RequestCtx, caller model.Caller) {
	id, err := pathID(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid cost center id")
		return
	}

	if err := h.svc.Delete(ctx, id, caller); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]string{"message": "cost center deleted"})
}

func (h *CostCenterHandler) LinkUser(ctx *xhttp.RequestCtx, caller model.Caller) {
	ccID, err := pathID(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid cost center id")
		return
	}
	userID, err := pathID(ctx, "userId")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.svc.LinkUser(ctx, userID, ccID, caller); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]string{"message": "user linked"})
}

func (h *CostCenterHandler) UnlinkUser(ctx *xhttp.RequestCtx, caller model.Caller) {
	ccID, err := pathID(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid cost center id")
		return
	}
	userID, err := pathID(ctx, "userId")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.svc.UnlinkUser(ctx, userID, ccID, caller); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]string{"message": "user unlinked"})
}
