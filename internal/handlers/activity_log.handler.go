package handlers

import (
	"context"
	"strconv"

	"github.com/fasthttp/router"
	"github.com/realhub/condo-api/internal/model"
	xhttp "github.com/realhub/condo-api/pkg/http"
)

type ActivityLogService interface {
	List(ctx context.Context, f model.ActivityLogFilter) ([]*model.ActivityLogEntry, model.PageMeta, error)
	Get(ctx context.Context, id int64) (*model.ActivityLogEntry, error)
}

// ActivityLogHandler exposes the audit trail. Read-only and admin-only:
// entries are written by the services, never through the API.
type ActivityLogHandler struct {
	svc ActivityLogService
}

func NewActivityLogHandler(svc ActivityLogService) *ActivityLogHandler {
	return &ActivityLogHandler{svc: svc}
}

func RegisterActivityLogRoutes(e *router.Group, h *ActivityLogHandler, parser TokenParser) {
	e.GET("/activity-logs", adminOnly(parser, h.ListActivityLogs))
	e.GET("/activity-logs/{id}", adminOnly(parser, h.GetActivityLog))
}

func (h *ActivityLogHandler) ListActivityLogs(ctx *xhttp.RequestCtx, caller model.Caller) {
	var f model.ActivityLogFilter
	if v := query(ctx, "user_id"); v != "" {
		if id, e := strconv.ParseInt(v, 10, 64); e == nil {
			f.UserID = &id
		}
	}
	if v := query(ctx, "action"); v != "" {
		a := model.ActivityAction(v)
		f.Action = &a
	}
	if v := query(ctx, "entity_type"); v != "" {
		f.EntityType = &v
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

func (h *ActivityLogHandler) GetActivityLog(ctx *xhttp.RequestCtx, caller model.Caller) {
	id, err := pathID(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid activity log id")
		return
	}

	entry, err := h.svc.Get(ctx, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, entry)
}
