package handlers

import (
	"context"
	"strconv"

	"github.com/fasthttp/router"
	"github.com/realhub/condo-api/internal/model"
	xhttp "github.com/realhub/condo-api/pkg/http"
)

type PaymentService interface {
	List(ctx context.Context, f model.PaymentFilter, caller model.Caller) ([]*model.Payment, model.PageMeta, error)
	Get(ctx context.Context, id int64, caller model.Caller) (*model.Payment, error)
	Create(ctx context.Context, req model.PaymentRequest, caller model.Caller) (*model.PaymentCreateResult, error)
	Update(ctx context.Context, id int64, req model.PaymentRequest, caller model.Caller) error
	Delete(ctx context.Context, id int64, caller model.Caller) error
	SubmitProof(ctx context.Context, id int64, proof string, caller model.Caller) error
}

type PaymentHandler struct {
	svc PaymentService
}

func NewPaymentHandler(svc PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

func RegisterPaymentRoutes(e *router.Group, h *PaymentHandler, parser TokenParser) {
	e.GET("/payments", authenticated(parser, h.ListPayments))
	e.POST("/payments", authenticated(parser, h.CreatePayment))
	e.GET("/payments/{id}", authenticated(parser, h.GetPayment))
	e.PUT("/payments/{id}", authenticated(parser, h.UpdatePayment))
	e.DELETE("/payments/{id}", authenticated(parser, h.DeletePayment))
	e.POST("/payments/{id}/proof", authenticated(parser, h.SubmitProof))
}

type paymentRequest struct {
	Date         string  `json:"date"`
	Type         string  `json:"type"`
	Amount       float64 `json:"amount"`
	Proof        *string `json:"proof"`
	Description  string  `json:"description"`
	UnitID       *int64  `json:"unit_id"`
	CostCenterID int64   `json:"cost_center_id"`
}

func (r paymentRequest) toModel() (model.PaymentRequest, error) {
	date, err := parseTime(r.Date)
	if err != nil {
		return model.PaymentRequest{}, err
	}
	return model.PaymentRequest{
		Date:         date,
		Type:         model.PaymentType(r.Type),
		Amount:       r.Amount,
		Proof:        r.Proof,
		Description:  r.Description,
		UnitID:       r.UnitID,
		CostCenterID: r.CostCenterID,
	}, nil
}

func (h *PaymentHandler) ListPayments(ctx *xhttp.RequestCtx, caller model.Caller) {
	var f model.PaymentFilter

	if v := query(ctx, "type"); v != "" {
		t := model.PaymentType(v)
		f.Type = &t
	}
	if v := query(ctx, "date"); v != "" {
		if t, e := parseTime(v); e == nil {
			f.Date = &t
		}
	}
	if v := query(ctx, "unit"); v != "" {
		f.Unit = &v
	}
	if v := query(ctx, "cost_center_id"); v != "" {
		if id, e := strconv.ParseInt(v, 10, 64); e == nil {
			f.CostCenterID = &id
		}
	}
	f.Page = queryInt(ctx, "page")
	f.Limit = queryInt(ctx, "limit")

	items, meta, err := h.svc.List(ctx, f, caller)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, listEnvelope{Data: items, Meta: meta})
}

func (h *PaymentHandler) GetPayment(ctx *xhttp.RequestCtx, caller model.Caller) {
	id, err := pathID(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid payment id")
		return
	}

	payment, err := h.svc.Get(ctx, id, caller)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, payment)
}

func (h *PaymentHandler) CreatePayment(ctx *xhttp.RequestCtx, caller model.Caller) {
	var req paymentRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	p, err := req.toModel()
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid date: expected RFC3339 or YYYY-MM-DD")
		return
	}

	result, err := h.svc.Create(ctx, p, caller)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, result)
}

func (h *PaymentHandler) UpdatePayment(ctx *xhttp.RequestCtx, caller model.Caller) {
	id, err := pathID(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid payment id")
		return
	}

	var req paymentRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	p, err := req.toModel()
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid date: expected RFC3339 or YYYY-MM-DD")
		return
	}

	if err := h.svc.Update(ctx, id, p, caller); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]string{"message": "payment updated"})
}

func (h *PaymentHandler) DeletePayment(ctx *xhttp.RequestCtx, caller model.Caller) {
	id, err := pathID(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid payment id")
		return
	}

	if err := h.svc.Delete(ctx, id, caller); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]string{"message": "payment deleted"})
}

type submitProofRequest struct {
	Proof string `json:"proof"`
}

func (h *PaymentHandler) SubmitProof(ctx *xhttp.RequestCtx, caller model.Caller) {
	id, err := pathID(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid payment id")
		return
	}

	var req submitProofRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Proof == "" {
		writeError(ctx, xhttp.StatusBadRequest, "proof is required")
		return
	}

	if err := h.svc.SubmitProof(ctx, id, req.Proof, caller); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]string{"message": "proof submitted"})
}
