package model

import (
	"errors"
	"time"
)

// PaymentType is the ledger classification of a payment. Pending is a due
// awaiting proof of payment; submitting proof flips it to income.
type PaymentType string

const (
	PaymentIncome  PaymentType = "income"
	PaymentExpense PaymentType = "expense"
	PaymentPending PaymentType = "pending"
)

type Payment struct {
	ID           int64       `json:"id"             db:"id"             gorm:"primaryKey;autoIncrement;column:id"`
	Date         time.Time   `json:"date"           db:"date"           gorm:"column:date;not null"`
	Type         PaymentType `json:"type"           db:"type"           gorm:"column:type;not null"`
	Amount       float64     `json:"amount"         db:"amount"         gorm:"column:amount;type:decimal(10,2);not null"`
	Proof        *string     `json:"proof"          db:"proof"          gorm:"column:proof"`
	Description  string      `json:"description"    db:"description"    gorm:"column:description"`
	UnitID       *int64      `json:"unit_id"        db:"unit_id"        gorm:"column:unit_id"`
	UserID       int64       `json:"user_id"        db:"user_id"        gorm:"column:user_id;not null"`
	CostCenterID int64       `json:"cost_center_id" db:"cost_center_id" gorm:"column:cost_center_id;not null"`
	CreatedAt    time.Time   `json:"created_at"     db:"created_at"     gorm:"column:created_at;autoCreateTime"`

	// Joined display fields, not columns of the payments table.
	Quadra         *string `json:"quadra,omitempty"           gorm:"-"`
	Lote           *string `json:"lote,omitempty"             gorm:"-"`
	Casa           *string `json:"casa,omitempty"             gorm:"-"`
	UserName       string  `json:"code_user_name,omitempty"   gorm:"-"`
	CostCenterName string  `json:"cost_center_name,omitempty" gorm:"-"`
	Residents      []*User `json:"residents,omitempty"        gorm:"-"`
}

func (Payment) TableName() string { return "payments" }

// PaymentRequest is the input for creating or updating a payment. Type is
// only honored for admin callers; everyone else gets the cost center's type.
type PaymentRequest struct {
	Date         time.Time   `json:"date"`
	Type         PaymentType `json:"type"`
	Amount       float64     `json:"amount"`
	Proof        *string     `json:"proof"`
	Description  string      `json:"description"`
	UnitID       *int64      `json:"unit_id"`
	CostCenterID int64       `json:"cost_center_id"`
}

func (r PaymentRequest) Validate() error {
	if r.CostCenterID == 0 {
		return errors.New("cost center is required")
	}
	return nil
}

// PaymentCreateResult covers both the single insert and the admin bulk
// fan-out, which creates one pending payment per existing unit.
type PaymentCreateResult struct {
	ID    int64   `json:"id,omitempty"`
	Bulk  bool    `json:"is_bulk,omitempty"`
	Count int     `json:"count,omitempty"`
	IDs   []int64 `json:"ids,omitempty"`
}

// PaymentFilter controls List queries.
type PaymentFilter struct {
	Type         *PaymentType // equals
	Date         *time.Time   // exact date
	Unit         *string      // substring over quadra/lote/casa
	CostCenterID *int64       // equals
	Page         int          // 1-based, default 1
	Limit        int          // default 10
}

// PageMeta is the pagination envelope shared by all list endpoints.
type PageMeta struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	LastPage int   `json:"last_page"`
}

func NewPageMeta(total int64, page, limit int) PageMeta {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	last := int((total + int64(limit) - 1) / int64(limit))
	return PageMeta{Total: total, Page: page, LastPage: last}
}
