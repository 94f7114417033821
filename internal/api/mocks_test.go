package api_test

import (
	"context"

	"github.com/MoonrakerAI/coliving-backend/internal/models"
	"github.com/MoonrakerAI/coliving-backend/internal/service"
)

// mockAuditLog implements api.AuditLog for testing.
type mockAuditLog struct {
	queryFn func(ctx context.Context, opts models.AuditQueryOpts) ([]models.AuditEntry, int, error)
	trailFn func(ctx context.Context, userID string, limit int) ([]models.AuditEntry, error)
}

func (m *mockAuditLog) GetAuditLogs(ctx context.Context, opts models.AuditQueryOpts) ([]models.AuditEntry, int, error) {
	return m.queryFn(ctx, opts)
}

func (m *mockAuditLog) GetUserAuditTrail(ctx context.Context, userID string, limit int) ([]models.AuditEntry, error) {
	return m.trailFn(ctx, userID, limit)
}

// mockSettings implements api.SettingsManager for testing.
type mockSettings struct {
	getFn       func(ctx context.Context, propertyID string) (*models.ReminderSettings, error)
	effectiveFn func(ctx context.Context, propertyID string) (models.ReminderSettings, error)
	createFn    func(ctx context.Context, settings models.ReminderSettings) (*models.ReminderSettings, error)
	updateFn    func(ctx context.Context, propertyID string, patch models.ReminderSettingsPatch) (*models.ReminderSettings, error)
}

func (m *mockSettings) GetSettings(ctx context.Context, propertyID string) (*models.ReminderSettings, error) {
	return m.getFn(ctx, propertyID)
}

func (m *mockSettings) EffectiveSettings(ctx context.Context, propertyID string) (models.ReminderSettings, error) {
	return m.effectiveFn(ctx, propertyID)
}

func (m *mockSettings) CreateSettings(ctx context.Context, settings models.ReminderSettings) (*models.ReminderSettings, error) {
	return m.createFn(ctx, settings)
}

func (m *mockSettings) UpdateSettings(ctx context.Context, propertyID string, patch models.ReminderSettingsPatch) (*models.ReminderSettings, error) {
	return m.updateFn(ctx, propertyID, patch)
}

// mockRecorder implements api.AuditRecorder for testing.
type mockRecorder struct {
	entries []models.AuditInput
}

func (m *mockRecorder) Enqueue(in models.AuditInput) {
	m.entries = append(m.entries, in)
}

// mockRunner implements api.ReminderRunner for testing.
type mockRunner struct {
	runFn func(ctx context.Context) (service.RunStats, error)
}

func (m *mockRunner) Run(ctx context.Context) (service.RunStats, error) {
	return m.runFn(ctx)
}

// mockDeliveryLog implements api.DeliveryLog for testing.
type mockDeliveryLog struct {
	updateFn func(ctx context.Context, id string, status models.ReminderStatus) error
}

func (m *mockDeliveryLog) UpdateStatus(ctx context.Context, id string, status models.ReminderStatus) error {
	return m.updateFn(ctx, id, status)
}
