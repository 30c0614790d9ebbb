package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/realhub/condo-api/internal/model"
	xhttp "github.com/realhub/condo-api/pkg/http"
)

type AuthService interface {
	Login(ctx context.Context, email, password, ip string) (string, *model.User, error)
	Logout(ctx context.Context, caller model.Caller)
}

type UserReader interface {
	FindByID(ctx context.Context, id int64) (*model.User, error)
}

type AuthHandler struct {
	svc   AuthService
	users UserReader
}

func NewAuthHandler(svc AuthService, users UserReader) *AuthHandler {
	return &AuthHandler{svc: svc, users: users}
}

func RegisterAuthRoutes(e *router.Group, h *AuthHandler, parser TokenParser) {
	e.POST("/auth/login", h.Login)
	e.POST("/auth/logout", authenticated(parser, h.Logout))
	e.GET("/auth/me", authenticated(parser, h.Me))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

func (h *AuthHandler) Login(ctx *xhttp.RequestCtx) {
	var req loginRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(ctx, xhttp.StatusBadRequest, "email and password are required")
		return
	}

	token, user, err := h.svc.Login(ctx, req.Email, req.Password, ctx.RemoteIP().String())
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, loginResponse{Token: token, User: user})
}

func (h *AuthHandler) Logout(ctx *xhttp.RequestCtx, caller model.Caller) {
	h.svc.Logout(ctx, caller)
	writeJSON(ctx, xhttp.StatusOK, map[string]string{"message": "logged out"})
}

func (h *AuthHandler) Me(ctx *xhttp.RequestCtx, caller model.Caller) {
	user, err := h.users.FindByID(ctx, caller.ID)
	if err != nil {
		writeError(ctx, xhttp.StatusNotFound, "user not found")
		return
	}
	writeJSON(ctx, xhttp.StatusOK, user)
}
