package repository

import (
	"context"
	"errors"

	"github.com/realhub/condo-api/internal/model"
	"github.com/realhub/condo-api/pkg/pg"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a looked-up row does not exist.
	ErrNotFound = errors.New("record not found")
)

type PaymentRepository struct {
	*pg.DB
}

func NewPaymentRepository(db *pg.DB) *PaymentRepository {
	return &PaymentRepository{db}
}

func (r *PaymentRepository) Create(ctx context.Context, p *model.Payment) (*model.Payment, error) {
	entity := toPaymentEntity(p)

	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toPaymentModel(entity), nil
}

// FindByID returns the payment joined with unit location and cost center
// name, or ErrNotFound.
func (r *PaymentRepository) FindByID(ctx context.Context, id int64) (*model.Payment, error) {
	var row paymentRow
	err := r.joinedQuery(ctx).Where("p.id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toPaymentModelFromRow(&row), nil
}

// List applies the optional filters plus the caller's visibility restriction
// and returns one page ordered by date, most recent first, with the total
// row count before pagination.
func (r *PaymentRepository) List(ctx context.Context, f model.PaymentFilter, caller model.Caller) ([]*model.Payment, int64, error) {
	q := r.joinedQuery(ctx)
	q = applyPaymentFilter(q, f)
	q = restrictVisibility(q, caller)

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
	offset := (page - 1) * limit

	var rows []*paymentRow
	if err := q.Order("p.date DESC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	return toPaymentModelsFromRows(rows), total, nil
}

func (r *PaymentRepository) Update(ctx context.Context, p *model.Payment) error {
	entity := toPaymentEntity(p)
	// Select the full column set so nil proof/unit and zero values are
	// written, not skipped.
	return r.Write(ctx).Model(&PaymentEntity{}).
		Where("id = ?", p.ID).
		Select("date", "type", "amount", "proof", "description", "unit_id", "cost_center_id").
		Updates(entity).Error
}

// UpdateProofAndType is the narrow proof-submission write: one statement
// setting both fields.
func (r *PaymentRepository) UpdateProofAndType(ctx context.Context, id int64, proof string, t model.PaymentType) error {
	return r.Write(ctx).Model(&PaymentEntity{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"proof": proof, "type": string(t)}).Error
}

func (r *PaymentRepository) Delete(ctx context.Context, id int64) error {
	return r.Write(ctx).Where("id = ?", id).Delete(&PaymentEntity{}).Error
}

func (r *PaymentRepository) joinedQuery(ctx context.Context) *gorm.DB {
	return r.Read(ctx).
		Table("payments AS p").
		Select(`
            p.*,
            u.quadra  AS quadra,
            u.lote    AS lote,
            u.casa    AS casa,
            usr.name  AS code_user_name,
            c.name    AS cost_center_name
        `).
		Joins("LEFT JOIN units AS u ON p.unit_id = u.id").
		Joins("LEFT JOIN users AS usr ON p.user_id = usr.id").
		Joins("LEFT JOIN cost_centers AS c ON p.cost_center_id = c.id")
}

func applyPaymentFilter(q *gorm.DB, f model.PaymentFilter) *gorm.DB {
	if f.Type != nil {
		q = q.Where("p.type = ?", string(*f.Type))
	}
	if f.Date != nil {
		q = q.Where("p.date = ?", *f.Date)
	}
	if f.Unit != nil && *f.Unit != "" {
		like := "%" + *f.Unit + "%"
		q = q.Where("(u.quadra LIKE ? OR u.lote LIKE ? OR u.casa LIKE ?)", like, like, like)
	}
	if f.CostCenterID != nil {
		q = q.Where("p.cost_center_id = ?", *f.CostCenterID)
	}
	return q
}

// restrictVisibility folds the three-way visibility rule into the query: a
// non-admin sees payments on their own unit, payments they created, and
// payments with no unit at all.
func restrictVisibility(q *gorm.DB, caller model.Caller) *gorm.DB {
	if caller.IsAdmin() {
		return q
	}
	if caller.UnitID != nil {
		return q.Where("(p.unit_id = ? OR p.user_id = ? OR p.unit_id IS NULL)", *caller.UnitID, caller.ID)
	}
	return q.Where("(p.user_id = ? OR p.unit_id IS NULL)", caller.ID)
}
