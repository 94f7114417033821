package api

import (
	"context"

	"github.com/MoonrakerAI/coliving-backend/internal/models"
	"github.com/MoonrakerAI/coliving-backend/internal/service"
)

// AuditRecorder queues an audit entry without blocking the request path.
type AuditRecorder interface {
	Enqueue(in models.AuditInput)
}

// AuditLog defines the audit operations used by AuditHandler.
type AuditLog interface {
	GetAuditLogs(ctx context.Context, opts models.AuditQueryOpts) ([]models.AuditEntry, int, error)
	GetUserAuditTrail(ctx context.Context, userID string, limit int) ([]models.AuditEntry, error)
}

// SettingsManager defines the reminder-policy operations used by SettingsHandler.
type SettingsManager interface {
	GetSettings(ctx context.Context, propertyID string) (*models.ReminderSettings, error)
	EffectiveSettings(ctx context.Context, propertyID string) (models.ReminderSettings, error)
	CreateSettings(ctx context.Context, settings models.ReminderSettings) (*models.ReminderSettings, error)
	UpdateSettings(ctx context.Context, propertyID string, patch models.ReminderSettingsPatch) (*models.ReminderSettings, error)
}

// ReminderRunner triggers one reminder processing cycle.
type ReminderRunner interface {
	Run(ctx context.Context) (service.RunStats, error)
}

// DeliveryLog defines the reminder-log operations used by WebhookHandler.
type DeliveryLog interface {
	UpdateStatus(ctx context.Context, id string, status models.ReminderStatus) error
}
