package services

import (
	"context"
	"errors"

	"github.com/realhub/condo-api/internal/model"
	"github.com/realhub/condo-api/internal/repository"
	"github.com/realhub/condo-api/pkg/logger"
)

var ErrLogNotFound = errors.New("activity log entry not found")

type ActivityLogRepository interface {
	Create(ctx context.Context, entry *model.ActivityLogEntry) (*model.ActivityLogEntry, error)
	List(ctx context.Context, f model.ActivityLogFilter) ([]*model.ActivityLogEntry, int64, error)
	FindByID(ctx context.Context, id int64) (*model.ActivityLogEntry, error)
}

// AuditService writes and reads the append-only activity log.
type AuditService struct {
	logs ActivityLogRepository
}

func NewAuditService(logs ActivityLogRepository) *AuditService {
	return &AuditService{logs: logs}
}

// Record appends an audit entry. It never fails the calling operation: any
// write error is logged and swallowed.
func (s *AuditService) Record(ctx context.Context, userID *int64, action model.ActivityAction, entityType string, entityID *int64, details map[string]any, ip string) {
	entry := &model.ActivityLogEntry{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
		IPAddress:  ip,
	}
	if _, err := s.logs.Create(ctx, entry); err != nil {
		logger.Error("audit: failed to record activity",
			"action", string(action),
			"entity_type", entityType,
			"error", err,
		)
	}
}

func (s *AuditService) List(ctx context.Context, f model.ActivityLogFilter) ([]*model.ActivityLogEntry, model.PageMeta, error) {
	rows, total, err := s.logs.List(ctx, f)
	if err != nil {
		return nil, model.PageMeta{}, err
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	return rows, model.NewPageMeta(total, f.Page, limit), nil
}

func (s *AuditService) Get(ctx context.Context, id int64) (*model.ActivityLogEntry, error) {
	entry, err := s.logs.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrLogNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}
