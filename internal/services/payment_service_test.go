package services

import (
	"context"
	"testing"
	"time"

	"github.com/realhub/condo-api/internal/model"
	"github.com/realhub/condo-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, p *model.Payment) (*model.Payment, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id int64) (*model.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockPaymentRepository) List(ctx context.Context, f model.PaymentFilter, caller model.Caller) ([]*model.Payment, int64, error) {
	args := m.Called(ctx, f, caller)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.Payment), args.Get(1).(int64), args.Error(2)
}

func (m *MockPaymentRepository) Update(ctx context.Context, p *model.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPaymentRepository) UpdateProofAndType(ctx context.Context, id int64, proof string, t model.PaymentType) error {
	args := m.Called(ctx, id, proof, t)
	return args.Error(0)
}

func (m *MockPaymentRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPaymentRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

type MockCostCenterDirectory struct {
	mock.Mock
}

func (m *MockCostCenterDirectory) FindByID(ctx context.Context, id int64) (*model.CostCenter, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CostCenter), args.Error(1)
}

func (m *MockCostCenterDirectory) IsUserLinked(ctx context.Context, userID, costCenterID int64) (bool, error) {
	args := m.Called(ctx, userID, costCenterID)
	return args.Bool(0), args.Error(1)
}

type MockUnitDirectory struct {
	mock.Mock
}

func (m *MockUnitDirectory) ListAllOrdered(ctx context.Context) ([]*model.Unit, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Unit), args.Error(1)
}

func (m *MockUnitDirectory) GetResidents(ctx context.Context, unitID int64) ([]*model.User, error) {
	args := m.Called(ctx, unitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.User), args.Error(1)
}

type MockAuditRecorder struct {
	mock.Mock
}

func (m *MockAuditRecorder) Record(ctx context.Context, userID *int64, action model.ActivityAction, entityType string, entityID *int64, details map[string]any, ip string) {
	m.Called(ctx, userID, action, entityType, entityID, details, ip)
}

type MockNotificationDispatcher struct {
	mock.Mock
}

func (m *MockNotificationDispatcher) PaymentCreated(ctx context.Context, p *model.Payment, actorID int64) {
	m.Called(ctx, p, actorID)
}

type paymentServiceMocks struct {
	payments    *MockPaymentRepository
	costCenters *MockCostCenterDirectory
	units       *MockUnitDirectory
	audit       *MockAuditRecorder
	notifier    *MockNotificationDispatcher
}

func newPaymentService() (*PaymentService, paymentServiceMocks) {
	m := paymentServiceMocks{
		payments:    new(MockPaymentRepository),
		costCenters: new(MockCostCenterDirectory),
		units:       new(MockUnitDirectory),
		audit:       new(MockAuditRecorder),
		notifier:    new(MockNotificationDispatcher),
	}
	svc := NewPaymentService(m.payments, m.costCenters, m.units, m.audit, m.notifier)
	return svc, m
}

func int64ptr(v int64) *int64 { return &v }
func strptr(v string) *string { return &v }

func admin(id int64) model.Caller {
	return model.Caller{ID: id, Role: model.RoleAdmin, IP: "10.0.0.1"}
}
func resident(id, unitID int64) model.Caller {
	return model.Caller{ID: id, Role: model.RoleResident, UnitID: int64ptr(unitID), IP: "10.0.0.2"}
}

var testDate = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func TestPaymentService_Create_CostCenterRequired(t *testing.T) {
	svc, _ := newPaymentService()

	result, err := svc.Create(context.Background(), model.PaymentRequest{Date: testDate, Amount: 100}, admin(1))
	assert.ErrorIs(t, err, ErrCostCenterRequired)
	assert.Nil(t, result)
}

func TestPaymentService_Create_InvalidCostCenter(t *testing.T) {
	svc, m := newPaymentService()
	ctx := context.Background()

	m.costCenters.On("FindByID", ctx, int64(99)).Return(nil, repository.ErrNotFound)

	result, err := svc.Create(ctx, model.PaymentRequest{Date: testDate, Amount: 100, CostCenterID: 99}, admin(1))
	assert.ErrorIs(t, err, ErrInvalidCostCenter)
	assert.Nil(t, result)
	m.costCenters.AssertExpectations(t)
}

func TestPaymentService_Create_ResidentCannotLinkOtherUnit(t *testing.T) {
	svc, m := newPaymentService()
	ctx := context.Background()

	m.costCenters.On("FindByID", ctx, int64(1)).
		Return(&model.CostCenter{ID: 1, Name: "Water", Type: model.CostCenterExpense}, nil)

	req := model.PaymentRequest{Date: testDate, Amount: 50, CostCenterID: 1, UnitID: int64ptr(7)}
	result, err := svc.Create(ctx, req, resident(2, 3))
	assert.ErrorIs(t, err, ErrUnitNotOwned)
	assert.Nil(t, result)
}

func TestPaymentService_Create_ResidentMustBeLinkedToCostCenter(t *testing.T) {
	svc, m := newPaymentService()
	ctx := context.Background()

	m.costCenters.On("FindByID", ctx, int64(1)).
		Return(&model.CostCenter{ID: 1, Name: "Water", Type: model.CostCenterExpense}, nil)
	m.costCenters.On("IsUserLinked", ctx, int64(2), int64(1)).Return(false, nil)

	req := model.PaymentRequest{Date: testDate, Amount: 50, CostCenterID: 1, UnitID: int64ptr(3)}
	result, err := svc.Create(ctx, req, resident(2, 3))
	assert.ErrorIs(t, err, ErrCostCenterNotLinked)
	assert.Nil(t, result)
	m.costCenters.AssertExpectations(t)
}

func TestPaymentService_Create_ResidentTypeComesFromCostCenter(t *testing.T) {
	svc, m := newPaymentService()
	ctx := context.Background()

	m.costCenters.On("FindByID", ctx, int64(1)).
		Return(&model.CostCenter{ID: 1, Name: "Water", Type: model.CostCenterExpense}, nil)
	m.costCenters.On("IsUserLinked", ctx, int64(2), int64(1)).Return(true, nil)

	m.payments.On("Create", ctx, mock.MatchedBy(func(p *model.Payment) bool {
		// the resident asked for income but the cost center says expense
		return p.Type == model.PaymentExpense && p.UserID == 2
	})).Return(&model.Payment{ID: 10, Type: model.PaymentExpense, UserID: 2, CostCenterID: 1, Amount: 50}, nil)

	m.audit.On("Record", ctx, int64ptr(2), model.ActionCreate, "payment", int64ptr(10), mock.Anything, "10.0.0.2").Return()
	m.notifier.On("PaymentCreated", ctx, mock.Anything, int64(2)).Return()

	req := model.PaymentRequest{Date: testDate, Type: model.PaymentIncome, Amount: 50, CostCenterID: 1, UnitID: int64ptr(3)}
	result, err := svc.Create(ctx, req, resident(2, 3))
	require.NoError(t, err)
	assert.Equal(t, int64(10), result.ID)
	assert.False(t, result.Bulk)
	m.payments.AssertExpectations(t)
	m.audit.AssertExpectations(t)
	m.notifier.AssertExpectations(t)
}

func TestPaymentService_Create_AdminBulkPendingFansOutPerUnit(t *testing.T) {
	svc, m := newPaymentService()
	ctx := context.Background()

	m.costCenters.On("FindByID", ctx, int64(1)).
		Return(&model.CostCenter{ID: 1, Name: "Condo fee", Type: model.CostCenterIncome}, nil)
	m.units.On("ListAllOrdered", ctx).Return([]*model.Unit{
		{ID: 11, Quadra: "A", Lote: "1", Casa: "1"},
		{ID: 12, Quadra: "A", Lote: "1", Casa: "2"},
		{ID: 13, Quadra: "B", Lote: "2", Casa: "1"},
	}, nil)

	m.payments.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)

	var nextID int64 = 100
	m.payments.On("Create", ctx, mock.MatchedBy(func(p *model.Payment) bool {
		return p.Type == model.PaymentPending && p.UnitID != nil
	})).Return(&model.Payment{ID: nextID, Type: model.PaymentPending, UnitID: int64ptr(11)}, nil).Times(3)

	m.audit.On("Record", ctx, int64ptr(1), model.ActionCreate, "payment", mock.Anything, mock.Anything, "10.0.0.1").Return().Times(3)
	m.notifier.On("PaymentCreated", ctx, mock.Anything, int64(1)).Return().Times(3)

	req := model.PaymentRequest{Date: testDate, Type: model.PaymentPending, Amount: 250, CostCenterID: 1}
	result, err := svc.Create(ctx, req, admin(1))
	require.NoError(t, err)
	assert.True(t, result.Bulk)
	assert.Equal(t, 3, result.Count)
	assert.Len(t, result.IDs, 3)

	m.payments.AssertExpectations(t)
	m.audit.AssertNumberOfCalls(t, "Record", 3)
	m.notifier.AssertNumberOfCalls(t, "PaymentCreated", 3)
}

func TestPaymentService_Create_BulkPendingNoUnits(t *testing.T) {
	svc, m := newPaymentService()
	ctx := context.Background()

	m.costCenters.On("FindByID", ctx, int64(1)).
		Return(&model.CostCenter{ID: 1, Name: "Condo fee", Type: model.CostCenterIncome}, nil)
	m.units.On("ListAllOrdered", ctx).Return([]*model.Unit{}, nil)

	req := model.PaymentRequest{Date: testDate, Type: model.PaymentPending, Amount: 250, CostCenterID: 1}
	result, err := svc.Create(ctx, req, admin(1))
	assert.ErrorIs(t, err, ErrNoUnitsForPending)
	assert.Nil(t, result)
}

func TestPaymentService_Create_ResidentPendingIsNotBulk(t *testing.T) {
	svc, m := newPaymentService()
	ctx := context.Background()

	// a resident asking for pending still gets the cost center type, so the
	// bulk branch is unreachable for non-admins
	m.costCenters.On("FindByID", ctx, int64(1)).
		Return(&model.CostCenter{ID: 1, Name: "Water", Type: model.CostCenterExpense}, nil)
	m.costCenters.On("IsUserLinked", ctx, int64(2), int64(1)).Return(true, nil)
	m.payments.On("Create", ctx, mock.Anything).
		Return(&model.Payment{ID: 20, Type: model.PaymentExpense, UserID: 2}, nil)
	m.audit.On("Record", ctx, mock.Anything, model.ActionCreate, "payment", mock.Anything, mock.Anything, mock.Anything).Return()
	m.notifier.On("PaymentCreated", ctx, mock.Anything, int64(2)).Return()

	req := model.PaymentRequest{Date: testDate, Type: model.PaymentPending, Amount: 50, CostCenterID: 1}
	result, err := svc.Create(ctx, req, resident(2, 3))
	require.NoError(t, err)
	assert.False(t, result.Bulk)
	m.units.AssertNotCalled(t, "ListAllOrdered", mock.Anything)
}

func TestPaymentService_Get_ForbiddenForUnrelatedResident(t *testing.T) {
	svc, m := newPaymentService()
	ctx := context.Background()

	m.payments.On("FindByID", ctx, int64(5)).
		Return(&model.Payment{ID: 5, UserID: 9, UnitID: int64ptr(42)}, nil)

	payment, err := svc.Get(ctx, 5, resident(2, 3))
	assert.ErrorIs(t, err, ErrPaymentForbidden)
	assert.Nil(t, payment)
}

func TestPaymentService_Get_LoadsResidentsOfLinkedUnit(t *testing.T) {
	svc, m := newPaymentService()
	ctx := context.Background()

	m.payments.On("FindByID", ctx, int64(5)).
		Return(&model.Payment{ID: 5, UserID: 9, UnitID: int64ptr(3)}, nil)
	m.units.On("GetResidents", ctx, int64(3)).
		Return([]*model.User{{ID: 2, Name: "Ana"}}, nil)

	payment, err := svc.Get(ctx, 5, resident(2, 3))
	require.NoError(t, err)
	require.Len(t, payment.Residents, 1)
	assert.Equal(t, "Ana", payment.Residents[0].Name)
}

func TestPaymentService_Update_OnlyCreatorOrAdmin(t *testing.T) {
	svc, m := newPaymentService()
	ctx := context.Background()

	m.payments.On("FindByID", ctx, int64(5)).
		Return(&model.Payment{ID: 5, UserID: 9, UnitID: int64ptr(3)}, nil)

	req := model.PaymentRequest{Date: testDate, Amount: 70, CostCenterID: 1, UnitID: int64ptr(3)}
	err := svc.Update(ctx, 5, req, resident(2, 3))
	assert.ErrorIs(t, err, ErrEditForbidden)
}

func TestPaymentService_Update_AdminPendingClearsProof(t *testing.T) {
	svc, m := newPaymentService()
	ctx := context.Background()

	m.payments.On("FindByID", ctx, int64(5)).
		Return(&model.Payment{ID: 5, UserID: 9, Type: model.PaymentIncome, Proof: strptr("blob"), UnitID: int64ptr(3), CostCenterID: 1}, nil)
	m.costCenters.On("FindByID", ctx, int64(1)).
		Return(&model.CostCenter{ID: 1, Name: "Condo fee", Type: model.CostCenterIncome}, nil)

	m.payments.On("Update", ctx, mock.MatchedBy(func(p *model.Payment) bool {
		return p.Type == model.PaymentPending && p.Proof == nil && p.UserID == 9
	})).Return(nil)
	m.audit.On("Record", ctx, mock.Anything, model.ActionUpdate, "payment", mock.Anything, mock.Anything, mock.Anything).Return()

	req := model.PaymentRequest{
		Date: testDate, Type: model.PaymentPending, Amount: 70,
		Proof: strptr("blob"), CostCenterID: 1, UnitID: int64ptr(3),
	}
	err := svc.Update(ctx, 5, req, admin(1))
	require.NoError(t, err)
	m.payments.AssertExpectations(t)
}

func TestPaymentService_Update_AuditRedactsProof(t *testing.T) {
	svc, m := newPaymentService()
	ctx := context.Background()

	m.payments.On("FindByID", ctx, int64(5)).
		Return(&model.Payment{ID: 5, UserID: 2, Type: model.PaymentExpense, Proof: strptr("old-blob"), UnitID: int64ptr(3), CostCenterID: 1}, nil)
	m.costCenters.On("FindByID", ctx, int64(1)).
		Return(&model.CostCenter{ID: 1, Name: "Water", Type: model.CostCenterExpense}, nil)
	m.costCenters.On("IsUserLinked", ctx, int64(2), int64(1)).Return(true, nil)
	m.payments.On("Update", ctx, mock.Anything).Return(nil)

	m.audit.On("Record", ctx, mock.Anything, model.ActionUpdate, "payment", mock.Anything,
		mock.MatchedBy(func(details map[string]any) bool {
			oldSnap := details["old"].(map[string]any)
			newSnap := details["new"].(map[string]any)
			return oldSnap["proof"] == model.ProofRedacted && newSnap["proof"] == model.ProofRedacted
		}), mock.Anything).Return()

	req := model.PaymentRequest{Date: testDate, Amount: 70, Proof: strptr("new-blob"), CostCenterID: 1, UnitID: int64ptr(3)}
	err := svc.Update(ctx, 5, req, resident(2, 3))
	require.NoError(t, err)
	m.audit.AssertExpectations(t)
}

func TestPaymentService_Delete_AdminOnly(t *testing.T) {
	svc, _ := newPaymentService()

	err := svc.Delete(context.Background(), 5, resident(2, 3))
	assert.ErrorIs(t, err, ErrDeleteForbidden)
}

func TestPaymentService_Delete_MissingIsSilent(t *testing.T) {
	svc, m := newPaymentService()
	ctx := context.Background()

	m.payments.On("FindByID", ctx, int64(5)).Return(nil, repository.ErrNotFound)

	err := svc.Delete(ctx, 5, admin(1))
	assert.NoError(t, err)
	m.payments.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	m.audit.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentService_Delete_RecordsSnapshot(t *testing.T) {
	svc, m := newPaymentService()
	ctx := context.Background()

	m.payments.On("FindByID", ctx, int64(5)).
		Return(&model.Payment{ID: 5, UserID: 2, Type: model.PaymentExpense, Amount: 30, CostCenterID: 1}, nil)
	m.payments.On("Delete", ctx, int64(5)).Return(nil)
	m.audit.On("Record", ctx, int64ptr(1), model.ActionDelete, "payment", int64ptr(5), mock.Anything, "10.0.0.1").Return()

	err := svc.Delete(ctx, 5, admin(1))
	require.NoError(t, err)
	m.payments.AssertExpectations(t)
	m.audit.AssertExpectations(t)
}

func TestPaymentService_SubmitProof_OnlyPending(t *testing.T) {
	svc, m := newPaymentService()
	ctx := context.Background()

	m.payments.On("FindByID", ctx, int64(5)).
		Return(&model.Payment{ID: 5, Type: model.PaymentIncome, UnitID: int64ptr(3)}, nil)

	err := svc.SubmitProof(ctx, 5, "blob", resident(2, 3))
	assert.ErrorIs(t, err, ErrProofNotPending)
}

func TestPaymentService_SubmitProof_OtherUnitForbidden(t *testing.T) {
	svc, m := newPaymentService()
	ctx := context.Background()

	m.payments.On("FindByID", ctx, int64(5)).
		Return(&model.Payment{ID: 5, Type: model.PaymentPending, UnitID: int64ptr(42)}, nil)

	err := svc.SubmitProof(ctx, 5, "blob", resident(2, 3))
	assert.ErrorIs(t, err, ErrProofForbidden)
}

func TestPaymentService_SubmitProof_FlipsToIncome(t *testing.T) {
	svc, m := newPaymentService()
	ctx := context.Background()

	m.payments.On("FindByID", ctx, int64(5)).
		Return(&model.Payment{ID: 5, Type: model.PaymentPending, UnitID: int64ptr(3), CostCenterID: 1}, nil)
	m.payments.On("UpdateProofAndType", ctx, int64(5), "blob", model.PaymentIncome).Return(nil)

	m.audit.On("Record", ctx, mock.Anything, model.ActionUpdate, "payment", mock.Anything,
		mock.MatchedBy(func(details map[string]any) bool {
			newSnap := details["new"].(map[string]any)
			return newSnap["type"] == string(model.PaymentIncome) && newSnap["proof"] == model.ProofRedacted
		}), mock.Anything).Return()

	err := svc.SubmitProof(ctx, 5, "blob", resident(2, 3))
	require.NoError(t, err)
	m.payments.AssertExpectations(t)
	m.audit.AssertExpectations(t)
}
