package handlers

import (
	"github.com/fasthttp/router"
	xhttp "github.com/realhub/condo-api/pkg/http"
)

type HealthService interface {
	Check() error
}

type HealthHandler struct {
	svc HealthService
}

func NewHealthHandler(svc HealthService) *HealthHandler {
	return &HealthHandler{svc: svc}
}

func RegisterHealthRoutes(e *router.Group, h *HealthHandler) {
	e.GET("/health", h.GetHealth)
}

func (h *HealthHandler) GetHealth(ctx *xhttp.RequestCtx) {
	if err := h.svc.Check(); err != nil {
		writeError(ctx, xhttp.StatusInternalServerError, "unhealthy")
		return
	}
	ctx.Response.SetBodyString("success")
}
