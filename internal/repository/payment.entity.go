package repository

import (
	"time"

	"github.com/realhub/condo-api/internal/model"
)

type PaymentEntity struct {
	ID           int64     `db:"id"             gorm:"primaryKey;autoIncrement;column:id"`
	Date         time.Time `db:"date"           gorm:"column:date;not null;index"`
	Type         string    `db:"type"           gorm:"column:type;not null;index"`
	Amount       float64   `db:"amount"         gorm:"column:amount;type:decimal(10,2);not null"`
	Proof        *string   `db:"proof"          gorm:"column:proof"`
	Description  string    `db:"description"    gorm:"column:description"`
	UnitID       *int64    `db:"unit_id"        gorm:"column:unit_id;index"`
	UserID       int64     `db:"user_id"        gorm:"column:user_id;not null;index"`
	CostCenterID int64     `db:"cost_center_id" gorm:"column:cost_center_id;not null;index"`
	CreatedAt    time.Time `db:"created_at"     gorm:"column:created_at;autoCreateTime"`
}

func (PaymentEntity) TableName() string { return "payments" }

// paymentRow carries a payment joined with its unit location, creator name
// and cost center name for list/get reads.
type paymentRow struct {
	PaymentEntity
	Quadra         *string `gorm:"column:quadra"`
	Lote           *string `gorm:"column:lote"`
	Casa           *string `gorm:"column:casa"`
	UserName       *string `gorm:"column:code_user_name"`
	CostCenterName *string `gorm:"column:cost_center_name"`
}

func toPaymentEntity(m *model.Payment) *PaymentEntity {
	if m == nil {
		return nil
	}
	return &PaymentEntity{
		ID:           m.ID,
		Date:         m.Date,
		Type:         string(m.Type),
		Amount:       m.Amount,
		Proof:        m.Proof,
		Description:  m.Description,
		UnitID:       m.UnitID,
		UserID:       m.UserID,
		CostCenterID: m.CostCenterID,
		CreatedAt:    m.CreatedAt,
	}
}

func toPaymentModel(e *PaymentEntity) *model.Payment {
	if e == nil {
		return nil
	}
	return &model.Payment{
		ID:           e.ID,
		Date:         e.Date,
		Type:         model.PaymentType(e.Type),
		Amount:       e.Amount,
		Proof:        e.Proof,
		Description:  e.Description,
		UnitID:       e.UnitID,
		UserID:       e.UserID,
		CostCenterID: e.CostCenterID,
		CreatedAt:    e.CreatedAt,
	}
}

func toPaymentModelFromRow(r *paymentRow) *model.Payment {
	if r == nil {
		return nil
	}
	m := toPaymentModel(&r.PaymentEntity)
	m.Quadra = r.Quadra
	m.Lote = r.Lote
	m.Casa = r.Casa
	if r.UserName != nil {
		m.UserName = *r.UserName
	}
	if r.CostCenterName != nil {
		m.CostCenterName = *r.CostCenterName
	}
	return m
}

func toPaymentModelsFromRows(rows []*paymentRow) []*model.Payment {
	if rows == nil {
		return nil
	}
	models := make([]*model.Payment, len(rows))
	for i, r := range rows {
		models[i] = toPaymentModelFromRow(r)
	}
	return models
}
