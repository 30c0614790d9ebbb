package services

import (
	"context"

	"github.com/realhub/condo-api/pkg/pg"
)

// HealthService answers liveness probes with a cheap read against the
// database.
type HealthService struct {
	db *pg.DB
}

func NewHealthService(db *pg.DB) *HealthService {
	return &HealthService{db: db}
}

func (s *HealthService) Check() error {
	var one int
	return s.db.Read(context.Background()).Raw("SELECT 1").Scan(&one).Error
}
