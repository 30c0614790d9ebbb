package repository

import "github.com/realhub/condo-api/internal/model"

type CostCenterEntity struct {
	ID   int64  `db:"id"   gorm:"primaryKey;autoIncrement;column:id"`
	Name string `db:"name" gorm:"column:name;not null"`
	Type string `db:"type" gorm:"column:type;not null;default:expense"`
}

func (CostCenterEntity) TableName() string { return "cost_centers" }

// UserCostCenterEntity is the many-to-many link deciding which cost centers
// a resident may post dues against.
type UserCostCenterEntity struct {
	ID           int64 `db:"id"             gorm:"primaryKey;autoIncrement;column:id"`
	UserID       int64 `db:"user_id"        gorm:"column:user_id;not null;index:idx_user_cost_center,unique"`
	CostCenterID int64 `db:"cost_center_id" gorm:"column:cost_center_id;not null;index:idx_user_cost_center,unique"`
}

func (UserCostCenterEntity) TableName() string { return "user_cost_centers" }

func toCostCenterEntity(m *model.CostCenter) *CostCenterEntity {
	if m == nil {
		return nil
	}
	return &CostCenterEntity{ID: m.ID, Name: m.Name, Type: string(m.Type)}
}

func toCostCenterModel(e *CostCenterEntity) *model.CostCenter {
	if e == nil {
		return nil
	}
	return &model.CostCenter{ID: e.ID, Name: e.Name, Type: model.CostCenterType(e.Type)}
}

func toCostCenterModels(entities []*CostCenterEntity) []*model.CostCenter {
	if entities == nil {
		return nil
	}
	models := make([]*model.CostCenter, len(entities))
	for i, e := range entities {
		models[i] = toCostCenterModel(e)
	}
	return models
}
