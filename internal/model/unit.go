package model

import "errors"

// Unit is a physical dwelling identified by its quadra/lote/casa triple.
type Unit struct {
	ID             int64  `json:"id"              db:"id"          gorm:"primaryKey;autoIncrement;column:id"`
	Quadra         string `json:"quadra"          db:"quadra"      gorm:"column:quadra;not null"`
	Lote           string `json:"lote"            db:"lote"        gorm:"column:lote;not null"`
	Casa           string `json:"casa"            db:"casa"        gorm:"column:casa;not null"`
	Observation    string `json:"observacao"      db:"observacao"  gorm:"column:observacao"`
	Intercom       string `json:"interfone"       db:"interfone"   gorm:"column:interfone"`
	ResidentsCount int64  `json:"residents_count,omitempty" gorm:"-"`
}

func (Unit) TableName() string { return "units" }

type UnitRequest struct {
	Quadra      string `json:"quadra"`
	Lote        string `json:"lote"`
	Casa        string `json:"casa"`
	Observation string `json:"observacao"`
	Intercom    string `json:"interfone"`
}

func (r UnitRequest) Validate() error {
	if r.Quadra == "" || r.Lote == "" || r.Casa == "" {
		return errors.New("quadra, lote and casa are required")
	}
	return nil
}

// UnitFilter controls unit listing.
type UnitFilter struct {
	Quadra       *string
	Lote         *string
	Casa         *string
	ResidentName *string
	Page         int
	Limit        int
}
