package repository

import (
	"context"

	"github.com/realhub/condo-api/internal/model"
	"github.com/realhub/condo-api/pkg/pg"
)

type PushSubscriptionRepository struct {
	*pg.DB
}

func NewPushSubscriptionRepository(db *pg.DB) *PushSubscriptionRepository {
	return &PushSubscriptionRepository{db}
}

func (r *PushSubscriptionRepository) Create(ctx context.Context, sub *model.PushSubscription) error {
	return r.Write(ctx).Create(sub).Error
}

func (r *PushSubscriptionRepository) FindAll(ctx context.Context) ([]*model.PushSubscription, error) {
	var subs []*model.PushSubscription
	if err := r.Read(ctx).Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *PushSubscriptionRepository) FindByUnit(ctx context.Context, unitID int64) ([]*model.PushSubscription, error) {
	var subs []*model.PushSubscription
	err := r.Read(ctx).
		Where("user_id IN (?)", r.Read(ctx).
			Model(&UserEntity{}).
			Select("id").
			Where("unit_id = ?", unitID)).
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

// DeleteByEndpoint drops a subscription whose endpoint answered 404/410.
func (r *PushSubscriptionRepository) DeleteByEndpoint(ctx context.Context, endpoint string) error {
	return r.Write(ctx).Where("endpoint = ?", endpoint).Delete(&model.PushSubscription{}).Error
}
