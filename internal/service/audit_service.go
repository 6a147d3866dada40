package service

import (
	"healthbridge/internal/domain/entity"
	"healthbridge/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuditService writes audit trail entries. Calls are best-effort: failures
// are logged and must never block the primary operation.
type AuditService struct {
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditService(log *logrus.Logger, auditRepo repository.AuditLogRepository) *AuditService {
	return &AuditService{
		log:       log,
		auditRepo: auditRepo,
	}
}

// Record logs an action with arbitrary metadata.
func (s *AuditService) Record(db *gorm.DB, userID *uuid.UUID, action string, metadata entity.JSON) {
	auditLog := &entity.AuditLog{
		UserID:   userID,
		Action:   action,
		Metadata: metadata,
	}

	if err := s.auditRepo.Create(db, auditLog); err != nil {
		s.log.Warnf("Failed to write audit log for action %s: %+v", action, err)
	}
}
