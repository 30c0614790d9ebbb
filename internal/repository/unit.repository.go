package repository

import (
	"context"
	"errors"

	"github.com/realhub/condo-api/internal/model"
	"github.com/realhub/condo-api/pkg/pg"
	"gorm.io/gorm"
)

type UnitRepository struct {
	*pg.DB
}

func NewUnitRepository(db *pg.DB) *UnitRepository {
	return &UnitRepository{db}
}

func (r *UnitRepository) FindByID(ctx context.Context, id int64) (*model.Unit, error) {
	var entity UnitEntity
	err := r.Read(ctx).Where("id = ?", id).Take(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toUnitModel(&entity), nil
}

func (r *UnitRepository) List(ctx context.Context, f model.UnitFilter) ([]*model.Unit, int64, error) {
	q := r.Read(ctx).
		Table("units AS u").
		Select("DISTINCT u.*, (SELECT COUNT(*) FROM users WHERE users.unit_id = u.id) AS residents_count")

	if f.Quadra != nil && *f.Quadra != "" {
		q = q.Where("u.quadra = ?", *f.Quadra)
	}
	if f.Lote != nil && *f.Lote != "" {
		q = q.Where("u.lote = ?", *f.Lote)
	}
	if f.Casa != nil && *f.Casa != "" {
		q = q.Where("u.casa = ?", *f.Casa)
	}
	if f.ResidentName != nil && *f.ResidentName != "" {
		q = q.Joins("INNER JOIN users AS res ON res.unit_id = u.id").
			Where("res.name LIKE ?", "%"+*f.ResidentName+"%")
	}

	var total int64
	if err := q.Distinct("u.id").Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := f.Page
	if page <= 0 {
		page = 1
	}
	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 10
	}

	var rows []*unitRow
	if err := q.Order("u.quadra, u.lote, u.casa").Limit(limit).Offset((page - 1) * limit).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	units := make([]*model.Unit, len(rows))
	for i, row := range rows {
		units[i] = toUnitModelFromRow(row)
	}
	return units, total, nil
}

// ListAllOrdered returns every unit ordered by location, as consumed by the
// bulk pending fan-out.
func (r *UnitRepository) ListAllOrdered(ctx context.Context) ([]*model.Unit, error) {
	var entities []*UnitEntity
	if err := r.Read(ctx).Order("quadra, lote, casa").Find(&entities).Error; err != nil {
		return nil, err
	}
	units := make([]*model.Unit, len(entities))
	for i, e := range entities {
		units[i] = toUnitModel(e)
	}
	return units, nil
}

// GetResidents returns the users living in the unit. Password hashes never
// leave the entity.
func (r *UnitRepository) GetResidents(ctx context.Context, unitID int64) ([]*model.User, error) {
	var entities []*UserEntity
	err := r.Read(ctx).
		Where("unit_id = ?", unitID).
		Select("id", "name", "email", "phone", "role", "unit_id").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return toUserModels(entities), nil
}

func (r *UnitRepository) Create(ctx context.Context, u *model.Unit) (*model.Unit, error) {
	entity := toUnitEntity(u)
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toUnitModel(entity), nil
}

func (r *UnitRepository) Update(ctx context.Context, u *model.Unit) error {
	return r.Write(ctx).Model(&UnitEntity{}).
		Where("id = ?", u.ID).
		Select("quadra", "lote", "casa", "observacao", "interfone").
		Updates(toUnitEntity(u)).Error
}

func (r *UnitRepository) Delete(ctx context.Context, id int64) error {
	return r.Write(ctx).Where("id = ?", id).Delete(&UnitEntity{}).Error
}
