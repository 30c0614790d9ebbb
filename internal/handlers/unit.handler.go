package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/realhub/condo-api/internal/model"
	xhttp "github.com/realhub/condo-api/pkg/http"
)

type UnitService interface {
	List(ctx context.Context, f model.UnitFilter) ([]*model.Unit, model.PageMeta, error)
	Get(ctx context.Context, id int64) (*model.Unit, error)
	GetResidents(ctx context.Context, id int64) ([]*model.User, error)
	Create(ctx context.Context, req model.UnitRequest, caller model.Caller) (*model.Unit, error)
	Update(ctx context.Context, id int64, req model.UnitRequest, caller model.Caller) (*model.Unit, error)
	Delete(ctx context.Context, id int64, caller model.Caller) error
}

type UnitHandler struct {
	svc UnitService
}

func NewUnitHandler(svc UnitService) *UnitHandler {
	return &UnitHandler{svc: svc}
}

func RegisterUnitRoutes(e *router.Group, h *UnitHandler, parser TokenParser) {
	e.GET("/units", authenticated(parser, h.ListUnits))
	e.GET("/units/{id}", authenticated(parser, h.GetUnit))
	e.GET("/units/{id}/residents", authenticated(parser, h.GetResidents))
	e.POST("/units", adminOnly(parser, h.CreateUnit))
	e.PUT("/units/{id}", adminOnly(parser, h.UpdateUnit))
	e.DELETE("/units/{id}", adminOnly(parser, h.DeleteUnit))
}

func (h *UnitHandler) ListUnits(ctx *xhttp.RequestCtx, caller model.Caller) {
	var f model.UnitFilter
	if v := query(ctx, "quadra"); v != "" {
		f.Quadra = &v
	}
	if v := query(ctx, "lote"); v != "" {
		f.Lote = &v
	}
	if v := query(ctx, "casa"); v != "" {
		f.Casa = &v
	}
	if v := query(ctx, "resident"); v != "" {
		f.ResidentName = &v
	}
	f.Page = queryInt(ctx, "page")
	f.Limit = queryInt(ctx, "limit")

	items, meta, err := h.svc.List(ctx, f)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, listEnvelope{Data: items, Meta: meta})
}

func (h *UnitHandler) GetUnit(ctx *xhttp.RequestCtx, caller model.Caller) {
	id, err := pathID(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid unit id")
		return
	}

	unit, err := h.svc.Get(ctx, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, unit)
}

func (h *UnitHandler) GetResidents(ctx *xhttp.RequestCtx, caller model.Caller) {
	id, err := pathID(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid unit id")
		return
	}

	residents, err := h.svc.GetResidents(ctx, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, residents)
}

func (h *UnitHandler) CreateUnit(ctx *xhttp.RequestCtx, caller model.Caller) {
	var req model.UnitRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	unit, err := h.svc.Create(ctx, req, caller)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, unit)
}

func (h *UnitHandler) UpdateUnit(ctx *xhttp.RequestCtx, caller model.Caller) {
	id, err := pathID(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid unit id")
		return
	}

	var req model.UnitRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	unit, err := h.svc.Update(ctx, id, req, caller)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, unit)
}

func (h *UnitHandler) DeleteUnit(ctx *xhttp.RequestCtx, caller model.Caller) {
	id, err := pathID(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid unit id")
		return
	}

	if err := h.svc.Delete(ctx, id, caller); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]string{"message": "unit deleted"})
}
