package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/realhub/condo-api/internal/model"
	"github.com/realhub/condo-api/internal/repository"
)

var (
	ErrCostCenterNotFound = errors.New("cost center not found")
	ErrCostCenterName     = errors.New("name is required")
	ErrCostCenterInUse    = errors.New("cost center is referenced by payments")
)

type CostCenterRepository interface {
	List(ctx context.Context, f model.CostCenterFilter, caller model.Caller) ([]*model.CostCenter, int64, error)
	FindByID(ctx context.Context, id int64) (*model.CostCenter, error)
	Create(ctx context.Context, cc *model.CostCenter) (*model.CostCenter, error)
	Update(ctx context.Context, cc *model.CostCenter) error
	Delete(ctx context.Context, id int64) error
	IsUsedInPayments(ctx context.Context, id int64) (bool, error)
	IsUserLinked(ctx context.Context, userID, costCenterID int64) (bool, error)
	LinkUser(ctx context.Context, userID, costCenterID int64) error
	UnlinkUser(ctx context.Context, userID, costCenterID int64) error
}

type CostCenterService struct {
	costCenters CostCenterRepository
	audit       AuditRecorder
}

func NewCostCenterService(costCenters CostCenterRepository, audit AuditRecorder) *CostCenterService {
	return &CostCenterService{costCenters: costCenters, audit: audit}
}

func (s *CostCenterService) List(ctx context.Context, f model.CostCenterFilter, caller model.Caller) ([]*model.CostCenter, model.PageMeta, error) {
	rows, total, err := s.costCenters.List(ctx, f, caller)
	if err != nil {
		return nil, model.PageMeta{}, err
	}
	return rows, model.NewPageMeta(total, f.Page, f.Limit), nil
}

func (s *CostCenterService) Get(ctx context.Context, id int64) (*model.CostCenter, error) {
	cc, err := s.costCenters.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCostCenterNotFound
	}
	if err != nil {
		return nil, err
	}
	return cc, nil
}

func (s *CostCenterService) Create(ctx context.Context, req model.CostCenterRequest, caller model.Caller) (*model.CostCenter, error) {
	if req.Name == "" {
		return nil, ErrCostCenterName
	}

	created, err := s.costCenters.Create(ctx, &model.CostCenter{
		Name: req.Name,
		Type: req.EffectiveType(),
	})
	if err != nil {
		return nil, fmt.Errorf("create cost center: %w", err)
	}

	s.audit.Record(ctx, &caller.ID, model.ActionCreate, "cost_center", &created.ID,
		costCenterSnapshot(created), caller.IP)
	return created, nil
}

func (s *CostCenterService) Update(ctx context.Context, id int64, req model.CostCenterRequest, caller model.Caller) (*model.CostCenter, error) {
	existing, err := s.costCenters.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCostCenterNotFound
	}
	if err != nil {
		return nil, err
	}

	if req.Name == "" {
		return nil, ErrCostCenterName
	}

	updated := &model.CostCenter{ID: id, Name: req.Name, Type: req.EffectiveType()}
	if err := s.costCenters.Update(ctx, updated); err != nil {
		return nil, fmt.Errorf("update cost center: %w", err)
	}

	s.audit.Record(ctx, &caller.ID, model.ActionUpdate, "cost_center", &id,
		model.UpdateDetails(costCenterSnapshot(existing), costCenterSnapshot(updated)), caller.IP)
	return updated, nil
}

// Delete refuses while any payment still references the cost center. A
// missing id is a silent no-op.
func (s *CostCenterService) Delete(ctx context.Context, id int64, caller model.Caller) error {
	used, err := s.costCenters.IsUsedInPayments(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return ErrCostCenterInUse
	}

	existing, err := s.costCenters.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.costCenters.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete cost center: %w", err)
	}

	s.audit.Record(ctx, &caller.ID, model.ActionDelete, "cost_center", &id,
		costCenterSnapshot(existing), caller.IP)
	return nil
}

// LinkUser grants a resident access to post dues against a cost center.
func (s *CostCenterService) LinkUser(ctx context.Context, userID, costCenterID int64, caller model.Caller) error {
	if _, err := s.Get(ctx, costCenterID); err != nil {
		return err
	}
	if err := s.costCenters.LinkUser(ctx, userID, costCenterID); err != nil {
		return fmt.Errorf("link user to cost center: %w", err)
	}
	s.audit.Record(ctx, &caller.ID, model.ActionUpdate, "cost_center", &costCenterID,
		map[string]any{"linked_user_id": userID}, caller.IP)
	return nil
}

func (s *CostCenterService) UnlinkUser(ctx context.Context, userID, costCenterID int64, caller model.Caller) error {
	if _, err := s.Get(ctx, costCenterID); err != nil {
		return err
	}
	if err := s.costCenters.UnlinkUser(ctx, userID, costCenterID); err != nil {
		return fmt.Errorf("unlink user from cost center: %w", err)
	}
	s.audit.Record(ctx, &caller.ID, model.ActionUpdate, "cost_center", &costCenterID,
		map[string]any{"unlinked_user_id": userID}, caller.IP)
	return nil
}

func costCenterSnapshot(cc *model.CostCenter) map[string]any {
	return map[string]any{
		"name": cc.Name,
		"type": string(cc.Type),
	}
}
