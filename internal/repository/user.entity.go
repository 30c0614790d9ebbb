package repository

import (
	"time"

	"github.com/realhub/condo-api/internal/model"
)

type UserEntity struct {
	ID           int64     `db:"id"            gorm:"primaryKey;autoIncrement;column:id"`
	Name         string    `db:"name"          gorm:"column:name;not null"`
	Email        string    `db:"email"         gorm:"column:email;not null;uniqueIndex"`
	PasswordHash string    `db:"password_hash" gorm:"column:password_hash"`
	Phone        string    `db:"phone"         gorm:"column:phone"`
	Role         string    `db:"role"          gorm:"column:role;not null;default:resident"`
	UnitID       *int64    `db:"unit_id"       gorm:"column:unit_id;index"`
	CreatedAt    time.Time `db:"created_at"    gorm:"column:created_at;autoCreateTime"`
}

func (UserEntity) TableName() string { return "users" }

func toUserModel(e *UserEntity) *model.User {
	if e == nil {
		return nil
	}
	return &model.User{
		ID:           e.ID,
		Name:         e.Name,
		Email:        e.Email,
		PasswordHash: e.PasswordHash,
		Phone:        e.Phone,
		Role:         model.Role(e.Role),
		UnitID:       e.UnitID,
		CreatedAt:    e.CreatedAt,
	}
}

func toUserModels(entities []*UserEntity) []*model.User {
	if entities == nil {
		return nil
	}
	models := make([]*model.User, len(entities))
	for i, e := range entities {
		models[i] = toUserModel(e)
	}
	return models
}
