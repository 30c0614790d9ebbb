package services

import (
	"context"
	"testing"

	"github.com/realhub/condo-api/internal/model"
	"github.com/realhub/condo-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCostCenterRepository struct {
	mock.Mock
}

func (m *MockCostCenterRepository) List(ctx context.Context, f model.CostCenterFilter, caller model.Caller) ([]*model.CostCenter, int64, error) {
	args := m.Called(ctx, f, caller)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.CostCenter), args.Get(1).(int64), args.Error(2)
}

func (m *MockCostCenterRepository) FindByID(ctx context.Context, id int64) (*model.CostCenter, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CostCenter), args.Error(1)
}

func (m *MockCostCenterRepository) Create(ctx context.Context, cc *model.CostCenter) (*model.CostCenter, error) {
	args := m.Called(ctx, cc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CostCenter), args.Error(1)
}

func (m *MockCostCenterRepository) Update(ctx context.Context, cc *model.CostCenter) error {
	args := m.Called(ctx, cc)
	return args.Error(0)
}

func (m *MockCostCenterRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCostCenterRepository) IsUsedInPayments(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockCostCenterRepository) IsUserLinked(ctx context.Context, userID, costCenterID int64) (bool, error) {
	args := m.Called(ctx, userID, costCenterID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCostCenterRepository) LinkUser(ctx context.Context, userID, costCenterID int64) error {
	args := m.Called(ctx, userID, costCenterID)
	return args.Error(0)
}

func (m *MockCostCenterRepository) UnlinkUser(ctx context.Context, userID, costCenterID int64) error {
	args := m.Called(ctx, userID, costCenterID)
	return args.Error(0)
}

func newCostCenterService() (*CostCenterService, *MockCostCenterRepository, *MockAuditRecorder) {
	repo := new(MockCostCenterRepository)
	audit := new(MockAuditRecorder)
	return NewCostCenterService(repo, audit), repo, audit
}

func TestCostCenterService_Create_NameRequired(t *testing.T) {
	svc, _, _ := newCostCenterService()

	cc, err := svc.Create(context.Background(), model.CostCenterRequest{}, admin(1))
	assert.ErrorIs(t, err, ErrCostCenterName)
	assert.Nil(t, cc)
}

func TestCostCenterService_Create_DefaultsToExpense(t *testing.T) {
	svc, repo, audit := newCostCenterService()
	ctx := context.Background()

	repo.On("Create", ctx, mock.MatchedBy(func(cc *model.CostCenter) bool {
		return cc.Type == model.CostCenterExpense
	})).Return(&model.CostCenter{ID: 1, Name: "Water", Type: model.CostCenterExpense}, nil)
	audit.On("Record", ctx, int64ptr(1), model.ActionCreate, "cost_center", int64ptr(1), mock.Anything, mock.Anything).Return()

	cc, err := svc.Create(ctx, model.CostCenterRequest{Name: "Water"}, admin(1))
	require.NoError(t, err)
	assert.Equal(t, model.CostCenterExpense, cc.Type)
	repo.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestCostCenterService_Delete_BlockedWhileReferenced(t *testing.T) {
	svc, repo, audit := newCostCenterService()
	ctx := context.Background()

	repo.On("IsUsedInPayments", ctx, int64(1)).Return(true, nil)

	err := svc.Delete(ctx, 1, admin(1))
	assert.ErrorIs(t, err, ErrCostCenterInUse)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	audit.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCostCenterService_Delete_MissingIsSilent(t *testing.T) {
	svc, repo, _ := newCostCenterService()
	ctx := context.Background()

	repo.On("IsUsedInPayments", ctx, int64(1)).Return(false, nil)
	repo.On("FindByID", ctx, int64(1)).Return(nil, repository.ErrNotFound)

	err := svc.Delete(ctx, 1, admin(1))
	assert.NoError(t, err)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestCostCenterService_Delete_RecordsSnapshot(t *testing.T) {
	svc, repo, audit := newCostCenterService()
	ctx := context.Background()

	repo.On("IsUsedInPayments", ctx, int64(1)).Return(false, nil)
	repo.On("FindByID", ctx, int64(1)).
		Return(&model.CostCenter{ID: 1, Name: "Water", Type: model.CostCenterExpense}, nil)
	repo.On("Delete", ctx, int64(1)).Return(nil)
	audit.On("Record", ctx, int64ptr(1), model.ActionDelete, "cost_center", int64ptr(1),
		mock.MatchedBy(func(details map[string]any) bool {
			return details["name"] == "Water"
		}), mock.Anything).Return()

	err := svc.Delete(ctx, 1, admin(1))
	require.NoError(t, err)
	repo.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestCostCenterService_Update_WritesOldAndNew(t *testing.T) {
	svc, repo, audit := newCostCenterService()
	ctx := context.Background()

	repo.On("FindByID", ctx, int64(1)).
		Return(&model.CostCenter{ID: 1, Name: "Water", Type: model.CostCenterExpense}, nil)
	repo.On("Update", ctx, mock.Anything).Return(nil)
	audit.On("Record", ctx, mock.Anything, model.ActionUpdate, "cost_center", int64ptr(1),
		mock.MatchedBy(func(details map[string]any) bool {
			oldSnap := details["old"].(map[string]any)
			newSnap := details["new"].(map[string]any)
			return oldSnap["name"] == "Water" && newSnap["name"] == "Sewage"
		}), mock.Anything).Return()

	cc, err := svc.Update(ctx, 1, model.CostCenterRequest{Name: "Sewage", Type: model.CostCenterExpense}, admin(1))
	require.NoError(t, err)
	assert.Equal(t, "Sewage", cc.Name)
	audit.AssertExpectations(t)
}

func TestCostCenterService_LinkUser_UnknownCostCenter(t *testing.T) {
	svc, repo, _ := newCostCenterService()
	ctx := context.Background()

	repo.On("FindByID", ctx, int64(9)).Return(nil, repository.ErrNotFound)

	err := svc.LinkUser(ctx, 2, 9, admin(1))
	assert.ErrorIs(t, err, ErrCostCenterNotFound)
	repo.AssertNotCalled(t, "LinkUser", mock.Anything, mock.Anything, mock.Anything)
}
