package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/realhub/condo-api/internal/model"
	"github.com/realhub/condo-api/internal/repository"
)

var (
	ErrUnitNotFound = errors.New("unit not found")
	ErrUnitInvalid  = errors.New("quadra, lote and casa are required")
)

type UnitRepository interface {
	FindByID(ctx context.Context, id int64) (*model.Unit, error)
	List(ctx context.Context, f model.UnitFilter) ([]*model.Unit, int64, error)
	ListAllOrdered(ctx context.Context) ([]*model.Unit, error)
	GetResidents(ctx context.Context, unitID int64) ([]*model.User, error)
	Create(ctx context.Context, u *model.Unit) (*model.Unit, error)
	Update(ctx context.Context, u *model.Unit) error
	Delete(ctx context.Context, id int64) error
}

type UnitService struct {
	units UnitRepository
	audit AuditRecorder
}

func NewUnitService(units UnitRepository, audit AuditRecorder) *UnitService {
	return &UnitService{units: units, audit: audit}
}

func (s *UnitService) List(ctx context.Context, f model.UnitFilter) ([]*model.Unit, model.PageMeta, error) {
	rows, total, err := s.units.List(ctx, f)
	if err != nil {
		return nil, model.PageMeta{}, err
	}
	return rows, model.NewPageMeta(total, f.Page, f.Limit), nil
}

func (s *UnitService) Get(ctx context.Context, id int64) (*model.Unit, error) {
	unit, err := s.units.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUnitNotFound
	}
	if err != nil {
		return nil, err
	}
	return unit, nil
}

func (s *UnitService) GetResidents(ctx context.Context, id int64) ([]*model.User, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.units.GetResidents(ctx, id)
}

func (s *UnitService) Create(ctx context.Context, req model.UnitRequest, caller model.Caller) (*model.Unit, error) {
	if err := req.Validate(); err != nil {
		return nil, ErrUnitInvalid
	}

	created, err := s.units.Create(ctx, &model.Unit{
		Quadra:      req.Quadra,
		Lote:        req.Lote,
		Casa:        req.Casa,
		Observation: req.Observation,
		Intercom:    req.Intercom,
	})
	if err != nil {
		return nil, fmt.Errorf("create unit: %w", err)
	}

	s.audit.Record(ctx, &caller.ID, model.ActionCreate, "unit", &created.ID,
		unitSnapshot(created), caller.IP)
	return created, nil
}

func (s *UnitService) Update(ctx context.Context, id int64, req model.UnitRequest, caller model.Caller) (*model.Unit, error) {
	existing, err := s.units.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUnitNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := req.Validate(); err != nil {
		return nil, ErrUnitInvalid
	}

	updated := &model.Unit{
		ID:          id,
		Quadra:      req.Quadra,
		Lote:        req.Lote,
		Casa:        req.Casa,
		Observation: req.Observation,
		Intercom:    req.Intercom,
	}
	if err := s.units.Update(ctx, updated); err != nil {
		return nil, fmt.Errorf("update unit: %w", err)
	}

	s.audit.Record(ctx, &caller.ID, model.ActionUpdate, "unit", &id,
		model.UpdateDetails(unitSnapshot(existing), unitSnapshot(updated)), caller.IP)
	return updated, nil
}

func (s *UnitService) Delete(ctx context.Context, id int64, caller model.Caller) error {
	existing, err := s.units.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.units.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete unit: %w", err)
	}

	s.audit.Record(ctx, &caller.ID, model.ActionDelete, "unit", &id,
		unitSnapshot(existing), caller.IP)
	return nil
}

func unitSnapshot(u *model.Unit) map[string]any {
	return map[string]any{
		"quadra":     u.Quadra,
		"lote":       u.Lote,
		"casa":       u.Casa,
		"observacao": u.Observation,
		"interfone":  u.Intercom,
	}
}
