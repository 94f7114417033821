package service_test

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/MoonrakerAI/coliving-backend/internal/models"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.ErrorLevel)

	return l
}

// mockAuditStore implements service.AuditQueryStore for testing.
type mockAuditStore struct {
	recordFn func(ctx context.Context, in models.AuditInput) (*models.AuditEntry, error)
	queryFn  func(ctx context.Context, opts models.AuditQueryOpts) ([]models.AuditEntry, int, error)
	trailFn  func(ctx context.Context, userID string, limit int) ([]models.AuditEntry, error)
}

func (m *mockAuditStore) RecordAudit(ctx context.Context, in models.AuditInput) (*models.AuditEntry, error) {
	return m.recordFn(ctx, in)
}

func (m *mockAuditStore) QueryAudit(ctx context.Context, opts models.AuditQueryOpts) ([]models.AuditEntry, int, error) {
	return m.queryFn(ctx, opts)
}

func (m *mockAuditStore) UserTrail(ctx context.Context, userID string, limit int) ([]models.AuditEntry, error) {
	return m.trailFn(ctx, userID, limit)
}

// mockSettingsStore implements service.SettingsStore for testing.
type mockSettingsStore struct {
	byProperty map[string]*models.ReminderSettings
	def        *models.ReminderSettings
}

func (m *mockSettingsStore) GetByProperty(_ context.Context, propertyID string) (*models.ReminderSettings, error) {
	if s, ok := m.byProperty[propertyID]; ok {
		cp := *s

		return &cp, nil
	}

	return nil, models.ErrSettingsNotFound
}

func (m *mockSettingsStore) PutByProperty(_ context.Context, propertyID string, settings models.ReminderSettings) error {
	if m.byProperty == nil {
		m.byProperty = make(map[string]*models.ReminderSettings)
	}
	m.byProperty[propertyID] = &settings

	return nil
}

func (m *mockSettingsStore) GetDefault(_ context.Context) (*models.ReminderSettings, error) {
	if m.def == nil {
		return nil, models.ErrSettingsNotFound
	}
	cp := *m.def

	return &cp, nil
}

func (m *mockSettingsStore) SetDefault(_ context.Context, settings models.ReminderSettings) error {
	settings.PropertyID = ""
	m.def = &settings

	return nil
}

// mockPaymentSource implements service.PaymentSource for testing.
type mockPaymentSource struct {
	payments []models.OutstandingPayment
	err      error
}

func (m *mockPaymentSource) ListOutstanding(_ context.Context) ([]models.OutstandingPayment, error) {
	return m.payments, m.err
}

// mockSender implements notify.Sender for testing.
type mockSender struct {
	sent   []sentMail
	sendFn func(ctx context.Context, to, subject, body string) error
}

type sentMail struct {
	to      string
	subject string
	body    string
}

func (m *mockSender) Send(ctx context.Context, to, subject, body string) error {
	if m.sendFn != nil {
		if err := m.sendFn(ctx, to, subject, body); err != nil {
			return err
		}
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})

	return nil
}

func outstandingPayment(id, tenantID, propertyID string, due time.Time) models.OutstandingPayment {
	return models.OutstandingPayment{
		Payment: models.Payment{
			ID:         id,
			TenantID:   tenantID,
			PropertyID: propertyID,
			Amount:     85000,
			Currency:   "USD",
			DueDate:    due,
			Status:     models.PaymentPending,
		},
		TenantName:  "Alice Tenant",
		TenantEmail: "alice@example.com",
	}
}
