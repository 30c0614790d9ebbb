package handlers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/realhub/condo-api/internal/model"
	"github.com/realhub/condo-api/internal/services"
	xhttp "github.com/realhub/condo-api/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) List(ctx context.Context, f model.PaymentFilter, caller model.Caller) ([]*model.Payment, model.PageMeta, error) {
	args := m.Called(ctx, f, caller)
	if args.Get(0) == nil {
		return nil, args.Get(1).(model.PageMeta), args.Error(2)
	}
	return args.Get(0).([]*model.Payment), args.Get(1).(model.PageMeta), args.Error(2)
}

func (m *MockPaymentService) Get(ctx context.Context, id int64, caller model.Caller) (*model.Payment, error) {
	args := m.Called(ctx, id, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockPaymentService) Create(ctx context.Context, req model.PaymentRequest, caller model.Caller) (*model.PaymentCreateResult, error) {
	args := m.Called(ctx, req, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentCreateResult), args.Error(1)
}

func (m *MockPaymentService) Update(ctx context.Context, id int64, req model.PaymentRequest, caller model.Caller) error {
	args := m.Called(ctx, id, req, caller)
	return args.Error(0)
}

func (m *MockPaymentService) Delete(ctx context.Context, id int64, caller model.Caller) error {
	args := m.Called(ctx, id, caller)
	return args.Error(0)
}

func (m *MockPaymentService) SubmitProof(ctx context.Context, id int64, proof string, caller model.Caller) error {
	args := m.Called(ctx, id, proof, caller)
	return args.Error(0)
}

func setupTestContext(method, path string, body []byte) *xhttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(path)
	if body != nil {
		ctx.Request.SetBody(body)
	}
	return ctx
}

var testAdmin = model.Caller{ID: 1, Role: model.RoleAdmin, IP: "10.0.0.1"}

func TestPaymentHandler_CreatePayment(t *testing.T) {
	t.Run("single creation", func(t *testing.T) {
		svc := new(MockPaymentService)
		handler := NewPaymentHandler(svc)

		body, _ := json.Marshal(paymentRequest{
			Date: "2025-06-01", Amount: 100, CostCenterID: 1,
		})

		svc.On("Create", mock.Anything, mock.MatchedBy(func(p model.PaymentRequest) bool {
			return p.CostCenterID == 1 && p.Amount == 100
		}), testAdmin).Return(&model.PaymentCreateResult{ID: 10}, nil)

		ctx := setupTestContext("POST", "/payments", body)
		handler.CreatePayment(ctx, testAdmin)

		assert.Equal(t, 201, ctx.Response.StatusCode())
		var result model.PaymentCreateResult
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &result))
		assert.Equal(t, int64(10), result.ID)
	})

	t.Run("bulk creation response", func(t *testing.T) {
		svc := new(MockPaymentService)
		handler := NewPaymentHandler(svc)

		body, _ := json.Marshal(paymentRequest{
			Date: "2025-06-01", Type: "pending", Amount: 250, CostCenterID: 1,
		})

		svc.On("Create", mock.Anything, mock.Anything, testAdmin).
			Return(&model.PaymentCreateResult{Bulk: true, Count: 3, IDs: []int64{1, 2, 3}}, nil)

		ctx := setupTestContext("POST", "/payments", body)
		handler.CreatePayment(ctx, testAdmin)

		assert.Equal(t, 201, ctx.Response.StatusCode())
		var result model.PaymentCreateResult
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &result))
		assert.True(t, result.Bulk)
		assert.Equal(t, 3, result.Count)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		handler := NewPaymentHandler(new(MockPaymentService))

		ctx := setupTestContext("POST", "/payments", []byte("{nope"))
		handler.CreatePayment(ctx, testAdmin)

		assert.Equal(t, 400, ctx.Response.StatusCode())
	})

	t.Run("invalid date", func(t *testing.T) {
		handler := NewPaymentHandler(new(MockPaymentService))

		body, _ := json.Marshal(paymentRequest{Date: "June first", Amount: 10, CostCenterID: 1})
		ctx := setupTestContext("POST", "/payments", body)
		handler.CreatePayment(ctx, testAdmin)

		assert.Equal(t, 400, ctx.Response.StatusCode())
	})

	t.Run("service errors map to statuses", func(t *testing.T) {
		cases := []struct {
			err    error
			status int
		}{
			{services.ErrCostCenterRequired, 400},
			{services.ErrInvalidCostCenter, 400},
			{services.ErrUnitNotOwned, 403},
			{services.ErrCostCenterNotLinked, 403},
			{services.ErrNoUnitsForPending, 400},
		}
		for _, tc := range cases {
			svc := new(MockPaymentService)
			handler := NewPaymentHandler(svc)
			svc.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil, tc.err)

			body, _ := json.Marshal(paymentRequest{Date: "2025-06-01", Amount: 10, CostCenterID: 1})
			ctx := setupTestContext("POST", "/payments", body)
			handler.CreatePayment(ctx, testAdmin)

			assert.Equal(t, tc.status, ctx.Response.StatusCode(), "for %v", tc.err)
		}
	})
}

func TestPaymentHandler_GetPayment(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		svc := new(MockPaymentService)
		handler := NewPaymentHandler(svc)
		svc.On("Get", mock.Anything, int64(5), testAdmin).Return(nil, services.ErrPaymentNotFound)

		ctx := setupTestContext("GET", "/payments/5", nil)
		ctx.SetUserValue("id", "5")
		handler.GetPayment(ctx, testAdmin)

		assert.Equal(t, 404, ctx.Response.StatusCode())
	})

	t.Run("forbidden", func(t *testing.T) {
		svc := new(MockPaymentService)
		handler := NewPaymentHandler(svc)
		svc.On("Get", mock.Anything, int64(5), mock.Anything).Return(nil, services.ErrPaymentForbidden)

		ctx := setupTestContext("GET", "/payments/5", nil)
		ctx.SetUserValue("id", "5")
		handler.GetPayment(ctx, testAdmin)

		assert.Equal(t, 403, ctx.Response.StatusCode())
	})

	t.Run("bad id", func(t *testing.T) {
		handler := NewPaymentHandler(new(MockPaymentService))

		ctx := setupTestContext("GET", "/payments/abc", nil)
		ctx.SetUserValue("id", "abc")
		handler.GetPayment(ctx, testAdmin)

		assert.Equal(t, 400, ctx.Response.StatusCode())
	})
}

func TestPaymentHandler_ListPayments_Envelope(t *testing.T) {
	svc := new(MockPaymentService)
	handler := NewPaymentHandler(svc)

	svc.On("List", mock.Anything, mock.MatchedBy(func(f model.PaymentFilter) bool {
		return f.Page == 2 && f.Limit == 5 && f.Type != nil && *f.Type == model.PaymentPending
	}), testAdmin).Return([]*model.Payment{{ID: 10}}, model.PageMeta{Total: 6, Page: 2, LastPage: 2}, nil)

	ctx := setupTestContext("GET", "/payments?type=pending&page=2&limit=5", nil)
	handler.ListPayments(ctx, testAdmin)

	assert.Equal(t, 200, ctx.Response.StatusCode())

	var envelope struct {
		Data []*model.Payment `json:"data"`
		Meta model.PageMeta   `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &envelope))
	assert.Len(t, envelope.Data, 1)
	assert.Equal(t, int64(6), envelope.Meta.Total)
	assert.Equal(t, 2, envelope.Meta.LastPage)
}

func TestPaymentHandler_SubmitProof(t *testing.T) {
	t.Run("proof required", func(t *testing.T) {
		handler := NewPaymentHandler(new(MockPaymentService))

		body, _ := json.Marshal(submitProofRequest{})
		ctx := setupTestContext("POST", "/payments/5/proof", body)
		ctx.SetUserValue("id", "5")
		handler.SubmitProof(ctx, testAdmin)

		assert.Equal(t, 400, ctx.Response.StatusCode())
	})

	t.Run("pending flips", func(t *testing.T) {
		svc := new(MockPaymentService)
		handler := NewPaymentHandler(svc)
		svc.On("SubmitProof", mock.Anything, int64(5), "blob", testAdmin).Return(nil)

		body, _ := json.Marshal(submitProofRequest{Proof: "blob"})
		ctx := setupTestContext("POST", "/payments/5/proof", body)
		ctx.SetUserValue("id", "5")
		handler.SubmitProof(ctx, testAdmin)

		assert.Equal(t, 200, ctx.Response.StatusCode())
		svc.AssertExpectations(t)
	})

	t.Run("non-pending payment", func(t *testing.T) {
		svc := new(MockPaymentService)
		handler := NewPaymentHandler(svc)
		svc.On("SubmitProof", mock.Anything, int64(5), "blob", mock.Anything).
			Return(services.ErrProofNotPending)

		body, _ := json.Marshal(submitProofRequest{Proof: "blob"})
		ctx := setupTestContext("POST", "/payments/5/proof", body)
		ctx.SetUserValue("id", "5")
		handler.SubmitProof(ctx, testAdmin)

		assert.Equal(t, 400, ctx.Response.StatusCode())
	})
}

func TestPaymentHandler_DeletePayment(t *testing.T) {
	svc := new(MockPaymentService)
	handler := NewPaymentHandler(svc)
	svc.On("Delete", mock.Anything, int64(5), testAdmin).Return(nil)

	ctx := setupTestContext("DELETE", "/payments/5", nil)
	ctx.SetUserValue("id", "5")
	handler.DeletePayment(ctx, testAdmin)

	assert.Equal(t, 200, ctx.Response.StatusCode())
	svc.AssertExpectations(t)
}
