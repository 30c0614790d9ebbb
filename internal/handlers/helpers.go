package handlers

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/realhub/condo-api/internal/model"
	"github.com/realhub/condo-api/internal/services"
	xhttp "github.com/realhub/condo-api/pkg/http"
)

// listEnvelope is the shared shape of every list endpoint.
type listEnvelope struct {
	Data any            `json:"data"`
	Meta model.PageMeta `json:"meta"`
}

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	body := ctx.PostBody()
	return json.Unmarshal(body, dst)
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, map[string]string{"error": msg})
}

// writeServiceError maps service sentinels onto HTTP statuses. Anything not
// in the taxonomy is a 500 with a generic body.
func writeServiceError(ctx *xhttp.RequestCtx, err error) {
	switch {
	case errors.Is(err, services.ErrPaymentNotFound),
		errors.Is(err, services.ErrCostCenterNotFound),
		errors.Is(err, services.ErrUnitNotFound),
		errors.Is(err, services.ErrLogNotFound):
		writeError(ctx, xhttp.StatusNotFound, err.Error())

	case errors.Is(err, services.ErrPaymentForbidden),
		errors.Is(err, services.ErrUnitNotOwned),
		errors.Is(err, services.ErrCostCenterNotLinked),
		errors.Is(err, services.ErrEditForbidden),
		errors.Is(err, services.ErrDeleteForbidden),
		errors.Is(err, services.ErrProofForbidden):
		writeError(ctx, xhttp.StatusForbidden, err.Error())

	case errors.Is(err, services.ErrCostCenterRequired),
		errors.Is(err, services.ErrInvalidCostCenter),
		errors.Is(err, services.ErrNoUnitsForPending),
		errors.Is(err, services.ErrProofNotPending),
		errors.Is(err, services.ErrCostCenterName),
		errors.Is(err, services.ErrCostCenterInUse),
		errors.Is(err, services.ErrUnitInvalid):
		writeError(ctx, xhttp.StatusBadRequest, err.Error())

	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(ctx, xhttp.StatusUnauthorized, err.Error())

	default:
		writeError(ctx, xhttp.StatusInternalServerError, "internal server error")
	}
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}

func queryInt(ctx *xhttp.RequestCtx, key string) int {
	n, _ := strconv.Atoi(query(ctx, key))
	return n
}

// pathID reads the {id} route parameter.
func pathID(ctx *xhttp.RequestCtx, name string) (int64, error) {
	s, _ := ctx.UserValue(name).(string)
	return strconv.ParseInt(s, 10, 64)
}

func parseTime(s string) (time.Time, error) {
	// Accept RFC3339 or YYYY-MM-DD
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
