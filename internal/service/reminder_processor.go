package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/MoonrakerAI/coliving-backend/internal/metrics"
	"github.com/MoonrakerAI/coliving-backend/internal/models"
	"github.com/MoonrakerAI/coliving-backend/internal/notify"
)

// PaymentSource yields the outstanding payments the processor scans.
type PaymentSource interface {
	ListOutstanding(ctx context.Context) ([]models.OutstandingPayment, error)
}

// SettingsResolver resolves the reminder policy for a property.
type SettingsResolver interface {
	EffectiveSettings(ctx context.Context, propertyID string) (models.ReminderSettings, error)
}

// ReminderLog is the data-access interface the processor records through.
type ReminderLog interface {
	Append(ctx context.Context, entry models.ReminderLogEntry) error
	ListByPayment(ctx context.Context, paymentID string) ([]models.ReminderLogEntry, error)
	AcquireClaim(ctx context.Context, paymentID string, rtype models.ReminderType, bucket string) (bool, error)
	ReleaseClaim(ctx context.Context, paymentID string, rtype models.ReminderType, bucket string) error
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

// RunStats aggregates the outcome of one processor run.
type RunStats struct {
	Processed int `json:"processed"`
	Sent      int `json:"sent"`
	Skipped   int `json:"skipped"`
	Errors    int `json:"errors"`
	Purged    int `json:"purged"`
}

// dayBucket is the date-key format used for idempotency claims.
const dayBucket = "2006-01-02"

// ReminderProcessor is the scheduled batch job that scans outstanding
// payments, applies the reminder policy, dispatches notifications, and
// records outcomes. Delivery is at-least-once across runs: a failed dispatch
// is retried by the next invocation, never within the same run.
type ReminderProcessor struct {
	payments      PaymentSource
	settings      SettingsResolver
	logStore      ReminderLog
	sender        notify.Sender
	log           *logrus.Logger
	now           func() time.Time
	retentionDays int
	holidays      map[string]bool // month-day keys, e.g. "01-01"
}

// ProcessorOpts configures a ReminderProcessor.
type ProcessorOpts struct {
	Payments      PaymentSource
	Settings      SettingsResolver
	LogStore      ReminderLog
	Sender        notify.Sender
	Log           *logrus.Logger
	RetentionDays int
	Holidays      []string // "MM-DD" entries
	Now           func() time.Time
}

// NewReminderProcessor creates a ReminderProcessor.
func NewReminderProcessor(opts ProcessorOpts) *ReminderProcessor {
	if opts.RetentionDays <= 0 {
		opts.RetentionDays = 90
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	holidays := make(map[string]bool, len(opts.Holidays))
	for _, h := range opts.Holidays {
		holidays[h] = true
	}

	return &ReminderProcessor{
		payments:      opts.Payments,
		settings:      opts.Settings,
		logStore:      opts.LogStore,
		sender:        opts.Sender,
		log:           opts.Log,
		now:           opts.Now,
		retentionDays: opts.RetentionDays,
		holidays:      holidays,
	}
}

// Run executes one processing cycle. A single candidate's failure never
// aborts the batch; only the initial payment scan can fail the run.
func (p *ReminderProcessor) Run(ctx context.Context) (RunStats, error) {
	var stats RunStats

	payments, err := p.payments.ListOutstanding(ctx)
	if err != nil {
		return stats, fmt.Errorf("listing outstanding payments: %w", err)
	}

	today := p.today()
	settingsByProperty := make(map[string]models.ReminderSettings)

	for _, payment := range payments {
		stats.Processed++

		settings, ok := settingsByProperty[payment.PropertyID]
		if !ok {
			settings, err = p.settings.EffectiveSettings(ctx, payment.PropertyID)
			if err != nil {
				p.log.WithError(err).WithField("property_id", payment.PropertyID).
					Error("resolving reminder settings")
				stats.Errors++

				continue
			}
			settingsByProperty[payment.PropertyID] = settings
		}

		p.processPayment(ctx, payment, settings, today, &stats)
	}

	cutoff := p.now().UTC().AddDate(0, 0, -p.retentionDays)
	purged, err := p.logStore.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		p.log.WithError(err).Warn("reminder log retention cleanup failed")
	}
	stats.Purged = purged

	p.log.WithFields(logrus.Fields{
		"processed": stats.Processed,
		"sent":      stats.Sent,
		"skipped":   stats.Skipped,
		"errors":    stats.Errors,
		"purged":    stats.Purged,
	}).Info("reminder.run")

	return stats, nil
}

// today returns the current UTC date at midnight.
func (p *ReminderProcessor) today() time.Time {
	now := p.now().UTC()

	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// reminderTypeFor maps the day offset to a configured reminder bucket.
// Returns false when no bucket matches today.
func reminderTypeFor(settings models.ReminderSettings, daysUntilDue int) (models.ReminderType, bool) {
	switch {
	case daysUntilDue == 0 && slices.Contains(settings.DaysBeforeDue, 0):
		return models.ReminderDue, true
	case daysUntilDue > 0 && slices.Contains(settings.DaysBeforeDue, daysUntilDue):
		return models.ReminderUpcoming, true
	case daysUntilDue < 0 && slices.Contains(settings.DaysAfterDue, -daysUntilDue):
		return models.ReminderOverdue, true
	}

	return "", false
}

// suppressedToday reports whether the calendar policy blocks sending today.
func (p *ReminderProcessor) suppressedToday(settings models.ReminderSettings, today time.Time) bool {
	if !settings.SendOnWeekends {
		if wd := today.Weekday(); wd == time.Saturday || wd == time.Sunday {
			return true
		}
	}
	if !settings.SendOnHolidays && p.holidays[today.Format("01-02")] {
		return true
	}

	return false
}

func (p *ReminderProcessor) processPayment(
	ctx context.Context,
	payment models.OutstandingPayment,
	settings models.ReminderSettings,
	today time.Time,
	stats *RunStats,
) {
	due := payment.DueDate.UTC()
	dueDay := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
	daysUntilDue := int(dueDay.Sub(today).Hours() / 24)

	rtype, match := reminderTypeFor(settings, daysUntilDue)
	if !match {
		return
	}

	logger := p.log.WithFields(logrus.Fields{
		"payment_id":    payment.ID,
		"tenant_id":     payment.TenantID,
		"reminder_type": rtype,
	})

	if !settings.Enabled || p.suppressedToday(settings, today) {
		stats.Skipped++
		metrics.RemindersSkippedTotal.Inc()

		return
	}

	history, err := p.logStore.ListByPayment(ctx, payment.ID)
	if err != nil {
		logger.WithError(err).Error("reading reminder history")
		stats.Errors++

		return
	}

	bucket := today.Format(dayBucket)
	nonFailed := 0
	for _, entry := range history {
		if entry.Status == models.StatusFailed {
			continue
		}
		nonFailed++

		// Already sent for this (type, day-bucket): idempotent skip.
		if entry.ReminderType == rtype && entry.SentAt.UTC().Format(dayBucket) == bucket {
			stats.Skipped++
			metrics.RemindersSkippedTotal.Inc()

			return
		}
	}

	if nonFailed >= settings.MaxRemindersPerPayment {
		stats.Skipped++
		metrics.RemindersSkippedTotal.Inc()

		return
	}

	// The claim closes the race between overlapping runs: reading the log
	// and dispatching are not atomic, so only the claim holder may send.
	claimed, err := p.logStore.AcquireClaim(ctx, payment.ID, rtype, bucket)
	if err != nil {
		logger.WithError(err).Error("acquiring dispatch claim")
		stats.Errors++

		return
	}
	if !claimed {
		stats.Skipped++
		metrics.RemindersSkippedTotal.Inc()

		return
	}

	p.dispatch(ctx, payment, settings, rtype, bucket, logger, stats)
}

func (p *ReminderProcessor) dispatch(
	ctx context.Context,
	payment models.OutstandingPayment,
	settings models.ReminderSettings,
	rtype models.ReminderType,
	bucket string,
	logger *logrus.Entry,
	stats *RunStats,
) {
	subject, body := notify.RenderReminder(rtype, payment, settings.CustomMessage)

	entry := models.ReminderLogEntry{
		ID:           uuid.New().String(),
		TenantID:     payment.TenantID,
		PaymentID:    payment.ID,
		PropertyID:   payment.PropertyID,
		ReminderType: rtype,
		SentAt:       p.now().UTC(),
		Channel:      "email",
	}

	if err := p.sender.Send(ctx, payment.TenantEmail, subject, body); err != nil {
		entry.Status = models.StatusFailed
		entry.Error = err.Error()
		stats.Errors++
		metrics.RemindersFailedTotal.Inc()
		logger.WithError(err).Warn("reminder dispatch failed")

		// Free the slot so the next scheduled run can retry.
		if relErr := p.logStore.ReleaseClaim(ctx, payment.ID, rtype, bucket); relErr != nil {
			logger.WithError(relErr).Warn("releasing dispatch claim")
		}
	} else {
		entry.Status = models.StatusSent
		stats.Sent++
		metrics.RemindersSentTotal.Inc()
		logger.Info("reminder sent")
	}

	if err := p.logStore.Append(ctx, entry); err != nil {
		logger.WithError(err).Error("recording reminder log entry")
		stats.Errors++
	}
}
