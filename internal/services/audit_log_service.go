package services

import (
	"context"
	"time"

	"bux-api/internal/models"
	"bux-api/internal/repository"

	"github.com/google/uuid"
)

const (
	DefaultAuditPageSize = 20
	MaxAuditPageSize     = 100
)

type AuditLogService interface {
	Record(ctx context.Context, actorID uuid.UUID, action, entityType, entityID, details string) error
	List(ctx context.Context, page, pageSize int) ([]models.AuditLog, int64, error)
}

type auditLogService struct {
	auditLogRepo repository.AuditLogRepository
	now          func() time.Time
}

func NewAuditLogService(auditLogRepo repository.AuditLogRepository) AuditLogService {
	return &auditLogService{
		auditLogRepo: auditLogRepo,
		now:          time.Now,
	}
}

func (s *auditLogService) Record(ctx context.Context, actorID uuid.UUID, action, entityType, entityID, details string) error {
	return s.auditLogRepo.Create(ctx, &models.AuditLog{
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
		Timestamp:  s.now().UTC(),
	})
}

// List clamps page to at least 1 and pageSize into [1, MaxAuditPageSize].
func (s *auditLogService) List(ctx context.Context, page, pageSize int) ([]models.AuditLog, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultAuditPageSize
	}
	if pageSize > MaxAuditPageSize {
		pageSize = MaxAuditPageSize
	}
	return s.auditLogRepo.List(ctx, page, pageSize)
}
