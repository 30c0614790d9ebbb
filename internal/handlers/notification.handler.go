package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/realhub/condo-api/internal/model"
	xhttp "github.com/realhub/condo-api/pkg/http"
)

type NotificationService interface {
	Subscribe(ctx context.Context, caller model.Caller, endpoint, p256dh, auth string) error
	Unsubscribe(ctx context.Context, endpoint string) error
}

type NotificationHandler struct {
	svc NotificationService
}

func NewNotificationHandler(svc NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

func RegisterNotificationRoutes(e *router.Group, h *NotificationHandler, parser TokenParser) {
	e.POST("/notifications/subscriptions", authenticated(parser, h.Subscribe))
	e.DELETE("/notifications/subscriptions", authenticated(parser, h.Unsubscribe))
}

type subscriptionRequest struct {
	Endpoint string `json:"endpoint"`
	P256dh   string `json:"p256dh"`
	Auth     string `json:"auth"`
}

func (h *NotificationHandler) Subscribe(ctx *xhttp.RequestCtx, caller model.Caller) {
	var req subscriptionRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Endpoint == "" {
		writeError(ctx, xhttp.StatusBadRequest, "endpoint is required")
		return
	}

	if err := h.svc.Subscribe(ctx, caller, req.Endpoint, req.P256dh, req.Auth); err != nil {
		writeError(ctx, xhttp.StatusInternalServerError, "failed to store subscription")
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, map[string]string{"message": "subscribed"})
}

func (h *NotificationHandler) Unsubscribe(ctx *xhttp.RequestCtx, caller model.Caller) {
	var req subscriptionRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Endpoint == "" {
		writeError(ctx, xhttp.StatusBadRequest, "endpoint is required")
		return
	}

	if err := h.svc.Unsubscribe(ctx, req.Endpoint); err != nil {
		writeError(ctx, xhttp.StatusInternalServerError, "failed to remove subscription")
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]string{"message": "unsubscribed"})
}
