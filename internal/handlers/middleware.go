package handlers

import (
	"strings"

	"github.com/realhub/condo-api/internal/model"
	xhttp "github.com/realhub/condo-api/pkg/http"
)

type TokenParser interface {
	ParseToken(token string) (model.Caller, error)
}

type authedHandler func(ctx *xhttp.RequestCtx, caller model.Caller)

// authenticated rejects requests without a valid bearer token and hands the
// caller identity to the wrapped handler. The caller IP is taken from the
// connection, not from headers.
func authenticated(parser TokenParser, next authedHandler) xhttp.RequestHandler {
	return func(ctx *xhttp.RequestCtx) {
		header := string(ctx.Request.Header.Peek("Authorization"))
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(ctx, xhttp.StatusUnauthorized, "missing bearer token")
			return
		}

		caller, err := parser.ParseToken(token)
		if err != nil {
			writeError(ctx, xhttp.StatusUnauthorized, "invalid token")
			return
		}
		caller.IP = ctx.RemoteIP().String()

		next(ctx, caller)
	}
}

// adminOnly additionally requires the admin role.
func adminOnly(parser TokenParser, next authedHandler) xhttp.RequestHandler {
	return authenticated(parser, func(ctx *xhttp.RequestCtx, caller model.Caller) {
		if !caller.IsAdmin() {
			writeError(ctx, xhttp.StatusForbidden, "admin role required")
			return
		}
		next(ctx, caller)
	})
}
