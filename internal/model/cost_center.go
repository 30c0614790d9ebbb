package model

import "errors"

type CostCenterType string

const (
	CostCenterIncome  CostCenterType = "income"
	CostCenterExpense CostCenterType = "expense"
)

// CostCenter classifies payments as income or expense. Residents may only
// post dues against cost centers they are explicitly linked to.
type CostCenter struct {
	ID   int64          `json:"id"   db:"id"   gorm:"primaryKey;autoIncrement;column:id"`
	Name string         `json:"name" db:"name" gorm:"column:name;not null"`
	Type CostCenterType `json:"type" db:"type" gorm:"column:type;not null;default:expense"`
}

func (CostCenter) TableName() string { return "cost_centers" }

type CostCenterRequest struct {
	Name string         `json:"name"`
	Type CostCenterType `json:"type"`
}

func (r CostCenterRequest) Validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

// EffectiveType applies the expense default for omitted types.
func (r CostCenterRequest) EffectiveType() CostCenterType {
	if r.Type == "" {
		return CostCenterExpense
	}
	return r.Type
}

// CostCenterFilter controls listing. All=true lets a resident see the full
// directory instead of only linked cost centers; admins always see all.
type CostCenterFilter struct {
	Name  *string
	All   bool
	Page  int
	Limit int
}
