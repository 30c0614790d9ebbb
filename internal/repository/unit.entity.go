package repository

import "github.com/realhub/condo-api/internal/model"

type UnitEntity struct {
	ID          int64  `db:"id"         gorm:"primaryKey;autoIncrement;column:id"`
	Quadra      string `db:"quadra"     gorm:"column:quadra;not null"`
	Lote        string `db:"lote"       gorm:"column:lote;not null"`
	Casa        string `db:"casa"       gorm:"column:casa;not null"`
	Observation string `db:"observacao" gorm:"column:observacao"`
	Intercom    string `db:"interfone"  gorm:"column:interfone"`
}

func (UnitEntity) TableName() string { return "units" }

type unitRow struct {
	UnitEntity
	ResidentsCount int64 `gorm:"column:residents_count"`
}

func toUnitEntity(m *model.Unit) *UnitEntity {
	if m == nil {
		return nil
	}
	return &UnitEntity{
		ID:          m.ID,
		Quadra:      m.Quadra,
		Lote:        m.Lote,
		Casa:        m.Casa,
		Observation: m.Observation,
		Intercom:    m.Intercom,
	}
}

func toUnitModel(e *UnitEntity) *model.Unit {
	if e == nil {
		return nil
	}
	return &model.Unit{
		ID:          e.ID,
		Quadra:      e.Quadra,
		Lote:        e.Lote,
		Casa:        e.Casa,
		Observation: e.Observation,
		Intercom:    e.Intercom,
	}
}

func toUnitModelFromRow(r *unitRow) *model.Unit {
	if r == nil {
		return nil
	}
	m := toUnitModel(&r.UnitEntity)
	m.ResidentsCount = r.ResidentsCount
	return m
}
