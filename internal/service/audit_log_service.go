package service

import (
	"context"

	"github.com/fieldmed/fieldsales-api/internal/auth"
	"github.com/fieldmed/fieldsales-api/internal/domain"
	"github.com/fieldmed/fieldsales-api/internal/repository"
	"go.uber.org/zap"
)

// AuditLogService records and queries the audit trail of mutating requests
type AuditLogService struct {
	auditRepo *repository.AuditLogRepository
	logger    *zap.Logger
}

func NewAuditLogService(auditRepo *repository.AuditLogRepository, logger *zap.Logger) *AuditLogService {
	return &AuditLogService{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// Record writes one audit entry. Failures are logged but never propagated;
// an audit write must not fail the request it describes.
func (s *AuditLogService) Record(ctx context.Context, entry *domain.AuditLog) {
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		s.logger.Error("failed to write audit log entry",
			zap.String("entity_type", entry.EntityType),
			zap.String("path", entry.Path),
			zap.Error(err),
		)
	}
}

// List returns audit entries. Restricted to admins.
func (s *AuditLogService) List(ctx context.Context, actor *auth.ActorContext, page, pageSize int, filter repository.AuditLogFilter) ([]domain.AuditLog, int64, error) {
	if !actor.IsAdmin() {
		return nil, 0, ErrPermissionDenied
	}
	return s.auditRepo.List(ctx, page, pageSize, filter)
}
