// Package service implements the business logic of the audit-log and
// reminder subsystems on top of the data stores.
package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/MoonrakerAI/coliving-backend/internal/models"
)

// AuditRecorder is the minimal interface for persisting audit entries.
type AuditRecorder interface {
	RecordAudit(ctx context.Context, in models.AuditInput) (*models.AuditEntry, error)
}

// AuditQueryStore is the data-access interface AuditService depends on.
type AuditQueryStore interface {
	AuditRecorder
	QueryAudit(ctx context.Context, opts models.AuditQueryOpts) ([]models.AuditEntry, int, error)
	UserTrail(ctx context.Context, userID string, limit int) ([]models.AuditEntry, error)
}

// AuditService wraps the audit store with the fire-and-forget write policy:
// audit logging accompanies a primary business action and must never make
// that action fail.
type AuditService struct {
	store AuditQueryStore
	log   *logrus.Logger
}

// NewAuditService creates an AuditService.
func NewAuditService(store AuditQueryStore, log *logrus.Logger) *AuditService {
	return &AuditService{store: store, log: log}
}

// CreateAuditLog records an audit entry, swallowing any storage error. The
// failure is logged and the caller proceeds regardless.
func (s *AuditService) CreateAuditLog(ctx context.Context, in models.AuditInput) {
	if _, err := s.store.RecordAudit(ctx, in); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"action":   in.Action,
			"resource": in.Resource,
		}).Warn("audit record failed")
	}
}

// GetAuditLogs returns a page of audit entries plus the index total
// (pass-through to the store).
func (s *AuditService) GetAuditLogs(ctx context.Context, opts models.AuditQueryOpts) ([]models.AuditEntry, int, error) {
	return s.store.QueryAudit(ctx, opts)
}

// GetUserAuditTrail returns the most recent entries for a user.
func (s *AuditService) GetUserAuditTrail(ctx context.Context, userID string, limit int) ([]models.AuditEntry, error) {
	return s.store.UserTrail(ctx, userID, limit)
}
