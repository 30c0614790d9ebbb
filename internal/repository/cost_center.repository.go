package repository

import (
	"context"
	"errors"

	"github.com/realhub/condo-api/internal/model"
	"github.com/realhub/condo-api/pkg/pg"
	"gorm.io/gorm"
)

type CostCenterRepository struct {
	*pg.DB
}

func NewCostCenterRepository(db *pg.DB) *CostCenterRepository {
	return &CostCenterRepository{db}
}

// List returns one page of cost centers ordered by name. Non-admin callers
// without the all override only see cost centers they are linked to.
func (r *CostCenterRepository) List(ctx context.Context, f model.CostCenterFilter, caller model.Caller) ([]*model.CostCenter, int64, error) {
	q := r.Read(ctx).Model(&CostCenterEntity{})

	if f.Name != nil && *f.Name != "" {
		q = q.Where("name LIKE ?", "%"+*f.Name+"%")
	}
	if !caller.IsAdmin() && !f.All {
		q = q.Where("id IN (?)", r.Read(ctx).
			Model(&UserCostCenterEntity{}).
			Select("cost_center_id").
			Where("user_id = ?", caller.ID))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
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

	var entities []*CostCenterEntity
	if err := q.Order("name ASC").Limit(limit).Offset((page - 1) * limit).Find(&entities).Error; err != nil {
		return nil, 0, err
	}

	return toCostCenterModels(entities), total, nil
}

func (r *CostCenterRepository) FindByID(ctx context.Context, id int64) (*model.CostCenter, error) {
	var entity CostCenterEntity
	err := r.Read(ctx).Where("id = ?", id).Take(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toCostCenterModel(&entity), nil
}

func (r *CostCenterRepository) Create(ctx context.Context, cc *model.CostCenter) (*model.CostCenter, error) {
	entity := toCostCenterEntity(cc)
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toCostCenterModel(entity), nil
}

func (r *CostCenterRepository) Update(ctx context.Context, cc *model.CostCenter) error {
	return r.Write(ctx).Model(&CostCenterEntity{}).
		Where("id = ?", cc.ID).
		Select("name", "type").
		Updates(toCostCenterEntity(cc)).Error
}

func (r *CostCenterRepository) Delete(ctx context.Context, id int64) error {
	return r.Write(ctx).Where("id = ?", id).Delete(&CostCenterEntity{}).Error
}

// IsUsedInPayments reports whether any payment still references the cost
// center. The service refuses deletion while this holds.
func (r *CostCenterRepository) IsUsedInPayments(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.Read(ctx).Model(&PaymentEntity{}).
		Where("cost_center_id = ?", id).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// IsUserLinked is the existence check the payment ledger's authorization
// depends on.
func (r *CostCenterRepository) IsUserLinked(ctx context.Context, userID, costCenterID int64) (bool, error) {
	var count int64
	err := r.Read(ctx).Model(&UserCostCenterEntity{}).
		Where("user_id = ? AND cost_center_id = ?", userID, costCenterID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *CostCenterRepository) LinkUser(ctx context.Context, userID, costCenterID int64) error {
	return r.Write(ctx).Create(&UserCostCenterEntity{UserID: userID, CostCenterID: costCenterID}).Error
}

func (r *CostCenterRepository) UnlinkUser(ctx context.Context, userID, costCenterID int64) error {
	return r.Write(ctx).
		Where("user_id = ? AND cost_center_id = ?", userID, costCenterID).
		Delete(&UserCostCenterEntity{}).Error
}
