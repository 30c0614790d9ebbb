package repository

import (
	"context"
	"errors"

	"github.com/realhub/condo-api/internal/model"
	"github.com/realhub/condo-api/pkg/pg"
	"gorm.io/gorm"
)

// ActivityLogRepository is append-only: rows are inserted and read, never
// updated or deleted by the application.
type ActivityLogRepository struct {
	*pg.DB
}

func NewActivityLogRepository(db *pg.DB) *ActivityLogRepository {
	return &ActivityLogRepository{db}
}

func (r *ActivityLogRepository) Create(ctx context.Context, entry *model.ActivityLogEntry) (*model.ActivityLogEntry, error) {
	entity, err := toActivityLogEntity(entry)
	if err != nil {
		return nil, err
	}
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toActivityLogModel(entity), nil
}

func (r *ActivityLogRepository) List(ctx context.Context, f model.ActivityLogFilter) ([]*model.ActivityLogEntry, int64, error) {
	q := r.joinedQuery(ctx)

	if f.UserID != nil {
		q = q.Where("al.user_id = ?", *f.UserID)
	}
	if f.Action != nil && *f.Action != "" {
		q = q.Where("al.action = ?", string(*f.Action))
	}
	if f.EntityType != nil && *f.EntityType != "" {
		q = q.Where("al.entity_type = ?", *f.EntityType)
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
		limit = 20
	}

	var rows []*activityLogRow
	if err := q.Order("al.created_at DESC").Limit(limit).Offset((page - 1) * limit).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	entries := make([]*model.ActivityLogEntry, len(rows))
	for i, row := range rows {
		entries[i] = toActivityLogModelFromRow(row)
	}
	return entries, total, nil
}

func (r *ActivityLogRepository) FindByID(ctx context.Context, id int64) (*model.ActivityLogEntry, error) {
	var row activityLogRow
	err := r.joinedQuery(ctx).Where("al.id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toActivityLogModelFromRow(&row), nil
}

func (r *ActivityLogRepository) joinedQuery(ctx context.Context) *gorm.DB {
	return r.Read(ctx).
		Table("activity_logs AS al").
		Select("al.*, u.name AS user_name").
		Joins("LEFT JOIN users AS u ON al.user_id = u.id")
}
