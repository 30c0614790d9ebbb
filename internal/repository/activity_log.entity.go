package repository

import (
	"encoding/json"
	"time"

	"github.com/realhub/condo-api/internal/model"
	"gorm.io/datatypes"
)

type ActivityLogEntity struct {
	ID         int64          `db:"id"          gorm:"primaryKey;autoIncrement;column:id"`
	UserID     *int64         `db:"user_id"     gorm:"column:user_id;index"`
	Action     string         `db:"action"      gorm:"column:action;not null;index"`
	EntityType string         `db:"entity_type" gorm:"column:entity_type;index"`
	EntityID   *int64         `db:"entity_id"   gorm:"column:entity_id"`
	Details    datatypes.JSON `db:"details"     gorm:"column:details;type:jsonb"`
	IPAddress  string         `db:"ip_address"  gorm:"column:ip_address"`
	CreatedAt  time.Time      `db:"created_at"  gorm:"column:created_at;autoCreateTime;index"`
}

func (ActivityLogEntity) TableName() string { return "activity_logs" }

type activityLogRow struct {
	ActivityLogEntity
	UserName *string `gorm:"column:user_name"`
}

func toActivityLogEntity(m *model.ActivityLogEntry) (*ActivityLogEntity, error) {
	if m == nil {
		return nil, nil
	}
	var details datatypes.JSON
	if m.Details != nil {
		b, err := json.Marshal(m.Details)
		if err != nil {
			return nil, err
		}
		details = datatypes.JSON(b)
	}
	return &ActivityLogEntity{
		ID:         m.ID,
		UserID:     m.UserID,
		Action:     string(m.Action),
		EntityType: m.EntityType,
		EntityID:   m.EntityID,
		Details:    details,
		IPAddress:  m.IPAddress,
		CreatedAt:  m.CreatedAt,
	}, nil
}

func toActivityLogModel(e *ActivityLogEntity) *model.ActivityLogEntry {
	if e == nil {
		return nil
	}
	m := &model.ActivityLogEntry{
		ID:         e.ID,
		UserID:     e.UserID,
		Action:     model.ActivityAction(e.Action),
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		IPAddress:  e.IPAddress,
		CreatedAt:  e.CreatedAt,
	}
	if len(e.Details) > 0 {
		// details is written by us, a decode failure means a corrupt row;
		// surface it as an empty payload rather than failing the read
		_ = json.Unmarshal(e.Details, &m.Details)
	}
	return m
}

func toActivityLogModelFromRow(r *activityLogRow) *model.ActivityLogEntry {
	if r == nil {
		return nil
	}
	m := toActivityLogModel(&r.ActivityLogEntity)
	if r.UserName != nil {
		m.UserName = *r.UserName
	}
	return m
}
