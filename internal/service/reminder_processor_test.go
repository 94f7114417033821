package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MoonrakerAI/coliving-backend/internal/kv"
	"github.com/MoonrakerAI/coliving-backend/internal/models"
	"github.com/MoonrakerAI/coliving-backend/internal/service"
	"github.com/MoonrakerAI/coliving-backend/internal/store"
)

// wednesday is a fixed mid-week reference instant.
var wednesday = time.Date(2026, 1, 7, 10, 0, 0, 0, time.UTC)

type processorFixture struct {
	proc     *service.ReminderProcessor
	logStore *store.ReminderLogStore
	sender   *mockSender
	settings *mockSettingsStore
	payments *mockPaymentSource
}

func newProcessorFixture(t *testing.T, now time.Time, holidays []string) *processorFixture {
	t.Helper()

	log := testLogger()
	base := store.Base{KV: kv.NewMemoryStore(), Log: log}
	logStore := store.NewReminderLogStore(base)
	sender := &mockSender{}
	settingsStore := &mockSettingsStore{}
	payments := &mockPaymentSource{}

	proc := service.NewReminderProcessor(service.ProcessorOpts{
		Payments: payments,
		Settings: service.NewSettingsService(settingsStore, log),
		LogStore: logStore,
		Sender:   sender,
		Log:      log,
		Holidays: holidays,
		Now:      func() time.Time { return now },
	})

	return &processorFixture{
		proc:     proc,
		logStore: logStore,
		sender:   sender,
		settings: settingsStore,
		payments: payments,
	}
}

func TestProcessor_DispatchesExactlyOnce(t *testing.T) {
	t.Parallel()

	f := newProcessorFixture(t, wednesday, nil)
	f.settings.def = &models.ReminderSettings{
		Enabled:                true,
		DaysBeforeDue:          []int{7},
		MaxRemindersPerPayment: 5,
	}
	f.payments.payments = []models.OutstandingPayment{
		outstandingPayment("pay-1", "ten-1", "prop-1", wednesday.AddDate(0, 0, 7)),
	}

	stats, err := f.proc.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if stats.Sent != 1 || stats.Processed != 1 {
		t.Fatalf("expected one dispatch, got %+v", stats)
	}
	if len(f.sender.sent) != 1 {
		t.Fatalf("expected one mail, got %d", len(f.sender.sent))
	}
	if f.sender.sent[0].to != "alice@example.com" {
		t.Errorf("mail sent to %q", f.sender.sent[0].to)
	}

	entries, err := f.logStore.ListByPayment(context.Background(), "pay-1")
	if err != nil {
		t.Fatalf("listing log: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one log entry, got %d", len(entries))
	}
	if entries[0].Status != models.StatusSent || entries[0].ReminderType != models.ReminderUpcoming {
		t.Errorf("unexpected entry: %+v", entries[0])
	}
}

func TestProcessor_SecondRunSameDaySkips(t *testing.T) {
	t.Parallel()

	f := newProcessorFixture(t, wednesday, nil)
	f.settings.def = &models.ReminderSettings{
		Enabled:                true,
		DaysBeforeDue:          []int{7},
		MaxRemindersPerPayment: 5,
	}
	f.payments.payments = []models.OutstandingPayment{
		outstandingPayment("pay-1", "ten-1", "prop-1", wednesday.AddDate(0, 0, 7)),
	}

	if _, err := f.proc.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}

	stats, err := f.proc.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if stats.Sent != 0 || stats.Skipped != 1 {
		t.Fatalf("expected idempotent skip, got %+v", stats)
	}
	if len(f.sender.sent) != 1 {
		t.Fatalf("expected exactly one mail across both runs, got %d", len(f.sender.sent))
	}
}

func TestProcessor_OverdueUsesDaysAfterDue(t *testing.T) {
	t.Parallel()

	f := newProcessorFixture(t, wednesday, nil)
	f.settings.def = &models.ReminderSettings{
		Enabled:                true,
		DaysAfterDue:           []int{3},
		MaxRemindersPerPayment: 5,
	}
	f.payments.payments = []models.OutstandingPayment{
		outstandingPayment("pay-1", "ten-1", "prop-1", wednesday.AddDate(0, 0, -3)),
	}

	stats, err := f.proc.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if stats.Sent != 1 {
		t.Fatalf("expected one dispatch, got %+v", stats)
	}

	entries, _ := f.logStore.ListByPayment(context.Background(), "pay-1")
	if len(entries) != 1 || entries[0].ReminderType != models.ReminderOverdue {
		t.Fatalf("expected overdue entry, got %+v", entries)
	}
}

func TestProcessor_NoMatchingOffsetDoesNothing(t *testing.T) {
	t.Parallel()

	f := newProcessorFixture(t, wednesday, nil)
	f.settings.def = &models.ReminderSettings{
		Enabled:                true,
		DaysBeforeDue:          []int{7, 3, 1},
		MaxRemindersPerPayment: 5,
	}
	f.payments.payments = []models.OutstandingPayment{
		outstandingPayment("pay-1", "ten-1", "prop-1", wednesday.AddDate(0, 0, 5)),
	}

	stats, err := f.proc.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if stats.Sent != 0 || stats.Skipped != 0 || stats.Errors != 0 {
		t.Fatalf("expected no action, got %+v", stats)
	}
}

func TestProcessor_DisabledSettingsSkip(t *testing.T) {
	t.Parallel()

	f := newProcessorFixture(t, wednesday, nil)
	f.settings.def = &models.ReminderSettings{
		Enabled:                false,
		DaysBeforeDue:          []int{7},
		MaxRemindersPerPayment: 5,
	}
	f.payments.payments = []models.OutstandingPayment{
		outstandingPayment("pay-1", "ten-1", "prop-1", wednesday.AddDate(0, 0, 7)),
	}

	stats, err := f.proc.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if stats.Sent != 0 || stats.Skipped != 1 {
		t.Fatalf("expected skip for disabled policy, got %+v", stats)
	}
}

func TestProcessor_WeekendSuppression(t *testing.T) {
	t.Parallel()

	saturday := time.Date(2026, 1, 10, 10, 0, 0, 0, time.UTC)

	f := newProcessorFixture(t, saturday, nil)
	f.settings.def = &models.ReminderSettings{
		Enabled:                true,
		DaysBeforeDue:          []int{7},
		SendOnWeekends:         false,
		MaxRemindersPerPayment: 5,
	}
	f.payments.payments = []models.OutstandingPayment{
		outstandingPayment("pay-1", "ten-1", "prop-1", saturday.AddDate(0, 0, 7)),
	}

	stats, err := f.proc.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if stats.Sent != 0 || stats.Skipped != 1 {
		t.Fatalf("expected weekend skip, got %+v", stats)
	}
}

func TestProcessor_HolidaySuppression(t *testing.T) {
	t.Parallel()

	f := newProcessorFixture(t, wednesday, []string{"01-07"})
	f.settings.def = &models.ReminderSettings{
		Enabled:                true,
		DaysBeforeDue:          []int{7},
		SendOnHolidays:         false,
		MaxRemindersPerPayment: 5,
	}
	f.payments.payments = []models.OutstandingPayment{
		outstandingPayment("pay-1", "ten-1", "prop-1", wednesday.AddDate(0, 0, 7)),
	}

	stats, err := f.proc.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if stats.Sent != 0 || stats.Skipped != 1 {
		t.Fatalf("expected holiday skip, got %+v", stats)
	}
}

func TestProcessor_RespectsMaxRemindersPerPayment(t *testing.T) {
	t.Parallel()

	f := newProcessorFixture(t, wednesday, nil)
	f.settings.def = &models.ReminderSettings{
		Enabled:                true,
		DaysBeforeDue:          []int{7},
		MaxRemindersPerPayment: 2,
	}
	f.payments.payments = []models.OutstandingPayment{
		outstandingPayment("pay-1", "ten-1", "prop-1", wednesday.AddDate(0, 0, 7)),
	}

	// Two prior successful reminders on earlier days exhaust the cap.
	for i, day := range []int{-10, -5} {
		entry := models.ReminderLogEntry{
			ID:           "prior-" + string(rune('a'+i)),
			TenantID:     "ten-1",
			PaymentID:    "pay-1",
			ReminderType: models.ReminderUpcoming,
			Status:       models.StatusSent,
			SentAt:       wednesday.AddDate(0, 0, day),
			Channel:      "email",
		}
		if err := f.logStore.Append(context.Background(), entry); err != nil {
			t.Fatalf("seeding history: %v", err)
		}
	}

	stats, err := f.proc.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if stats.Sent != 0 || stats.Skipped != 1 {
		t.Fatalf("expected cap skip, got %+v", stats)
	}
}

func TestProcessor_FailedEntriesDoNotCountTowardCap(t *testing.T) {
	t.Parallel()

	f := newProcessorFixture(t, wednesday, nil)
	f.settings.def = &models.ReminderSettings{
		Enabled:                true,
		DaysBeforeDue:          []int{7},
		MaxRemindersPerPayment: 1,
	}
	f.payments.payments = []models.OutstandingPayment{
		outstandingPayment("pay-1", "ten-1", "prop-1", wednesday.AddDate(0, 0, 7)),
	}

	failed := models.ReminderLogEntry{
		ID:           "prior-failed",
		TenantID:     "ten-1",
		PaymentID:    "pay-1",
		ReminderType: models.ReminderUpcoming,
		Status:       models.StatusFailed,
		SentAt:       wednesday.AddDate(0, 0, -5),
		Channel:      "email",
	}
	if err := f.logStore.Append(context.Background(), failed); err != nil {
		t.Fatalf("seeding history: %v", err)
	}

	stats, err := f.proc.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if stats.Sent != 1 {
		t.Fatalf("failed entry should not consume the cap, got %+v", stats)
	}
}

func TestProcessor_DispatchFailureRetriedNextRun(t *testing.T) {
	t.Parallel()

	f := newProcessorFixture(t, wednesday, nil)
	f.settings.def = &models.ReminderSettings{
		Enabled:                true,
		DaysBeforeDue:          []int{7},
		MaxRemindersPerPayment: 5,
	}
	f.payments.payments = []models.OutstandingPayment{
		outstandingPayment("pay-1", "ten-1", "prop-1", wednesday.AddDate(0, 0, 7)),
	}

	smtpDown := errors.New("smtp connect refused")
	f.sender.sendFn = func(_ context.Context, _, _, _ string) error { return smtpDown }

	stats, err := f.proc.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if stats.Errors != 1 || stats.Sent != 0 {
		t.Fatalf("expected failed dispatch, got %+v", stats)
	}

	entries, _ := f.logStore.ListByPayment(context.Background(), "pay-1")
	if len(entries) != 1 || entries[0].Status != models.StatusFailed {
		t.Fatalf("expected one failed entry, got %+v", entries)
	}

	// Claim was released, so the next run retries and succeeds.
	f.sender.sendFn = nil
	stats, err = f.proc.Run(context.Background())
	if err != nil {
		t.Fatalf("retry run failed: %v", err)
	}
	if stats.Sent != 1 {
		t.Fatalf("expected retry to dispatch, got %+v", stats)
	}
}

func TestProcessor_PurgesExpiredEntries(t *testing.T) {
	t.Parallel()

	f := newProcessorFixture(t, wednesday, nil)
	f.settings.def = &models.ReminderSettings{
		Enabled:                true,
		MaxRemindersPerPayment: 5,
	}

	old := models.ReminderLogEntry{
		ID:           "ancient",
		TenantID:     "ten-1",
		PaymentID:    "pay-old",
		ReminderType: models.ReminderOverdue,
		Status:       models.StatusSent,
		SentAt:       wednesday.AddDate(0, 0, -91),
		Channel:      "email",
	}
	recent := models.ReminderLogEntry{
		ID:           "recent",
		TenantID:     "ten-1",
		PaymentID:    "pay-new",
		ReminderType: models.ReminderOverdue,
		Status:       models.StatusSent,
		SentAt:       wednesday.AddDate(0, 0, -89),
		Channel:      "email",
	}
	for _, e := range []models.ReminderLogEntry{old, recent} {
		if err := f.logStore.Append(context.Background(), e); err != nil {
			t.Fatalf("seeding entries: %v", err)
		}
	}

	stats, err := f.proc.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if stats.Purged != 1 {
		t.Fatalf("expected one purged entry, got %+v", stats)
	}

	if _, err := f.logStore.Get(context.Background(), "ancient"); !errors.Is(err, models.ErrEntryNotFound) {
		t.Errorf("expected ancient entry purged, got err=%v", err)
	}
	if _, err := f.logStore.Get(context.Background(), "recent"); err != nil {
		t.Errorf("expected recent entry retained, got err=%v", err)
	}
}

func TestProcessor_PaymentSourceFailureAbortsRun(t *testing.T) {
	t.Parallel()

	f := newProcessorFixture(t, wednesday, nil)
	f.payments.err = errors.New("db down")

	if _, err := f.proc.Run(context.Background()); err == nil {
		t.Fatal("expected run to fail when the payment scan fails")
	}
}
