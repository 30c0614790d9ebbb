package repository

import (
	"context"
	"errors"

	"github.com/realhub/condo-api/internal/model"
	"github.com/realhub/condo-api/pkg/pg"
	"gorm.io/gorm"
)

type UserRepository struct {
	*pg.DB
}

func NewUserRepository(db *pg.DB) *UserRepository {
	return &UserRepository{db}
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	var entity UserEntity
	err := r.Read(ctx).Where("id = ?", id).Take(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toUserModel(&entity), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var entity UserEntity
	err := r.Read(ctx).Where("email = ?", email).Take(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toUserModel(&entity), nil
}

// ListRecipients returns the notification audience: every user, or only the
// residents of one unit, optionally excluding the actor who triggered the
// event.
func (r *UserRepository) ListRecipients(ctx context.Context, unitID, excludeUserID *int64) ([]*model.User, error) {
	q := r.Read(ctx).Model(&UserEntity{})
	if unitID != nil {
		q = q.Where("unit_id = ?", *unitID)
	}
	if excludeUserID != nil {
		q = q.Where("id != ?", *excludeUserID)
	}

	var entities []*UserEntity
	if err := q.Find(&entities).Error; err != nil {
		return nil, err
	}
	return toUserModels(entities), nil
}
