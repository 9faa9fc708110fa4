package service

import (
	"context"

	"github.com/fieldscope/survey-console/internal/logger"
	"github.com/fieldscope/survey-console/internal/store"
	"github.com/fieldscope/survey-console/models"
)

// auditService is the read-only view over the audit trail.
type auditService struct {
	audit  store.AuditRepository
	logger *logger.Logger
}

// NewAuditService constructs an [AuditService] over the repository.
func NewAuditService(audit store.AuditRepository, logger *logger.Logger) AuditService {
	return &auditService{audit: audit, logger: logger}
}

// List returns audit entries matching the filter, newest first.
func (s *auditService) List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLogEntry, error) {
	return s.audit.List(ctx, filter)
}
