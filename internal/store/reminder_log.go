package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MoonrakerAI/coliving-backend/internal/kv"
	"github.com/MoonrakerAI/coliving-backend/internal/models"
)

// Reminder log key layout. The global index is in chronological append order
// and drives retention cleanup; the per-payment index drives the policy gate
// and idempotency checks.
const (
	reminderEntryPrefix   = "reminder:log:entry:"
	reminderGlobalIndex   = "reminder:log:index"
	reminderClaimPrefix   = "reminder:claim:"
	reminderClaimLifetime = 48 * time.Hour
)

func reminderPaymentIndexKey(paymentID string) string {
	return "reminder:log:payment:" + paymentID
}

func reminderClaimKey(paymentID string, rtype models.ReminderType, bucket string) string {
	return reminderClaimPrefix + paymentID + ":" + string(rtype) + ":" + bucket
}

// ReminderLogStore persists reminder dispatch history.
type ReminderLogStore struct {
	Base
}

// NewReminderLogStore creates a ReminderLogStore.
func NewReminderLogStore(base Base) *ReminderLogStore {
	return &ReminderLogStore{Base: base}
}

// Append stores a new log entry and indexes it globally and per payment.
func (s *ReminderLogStore) Append(ctx context.Context, entry models.ReminderLogEntry) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling reminder log entry: %w", err)
	}

	if err := s.KV.Set(ctx, reminderEntryPrefix+entry.ID, string(raw), 0); err != nil {
		return fmt.Errorf("writing reminder log entry: %w", err)
	}

	if err := s.KV.ListAppend(ctx, reminderGlobalIndex, entry.ID); err != nil {
		return fmt.Errorf("appending reminder log index: %w", err)
	}
	if err := s.KV.ListAppend(ctx, reminderPaymentIndexKey(entry.PaymentID), entry.ID); err != nil {
		return fmt.Errorf("appending payment reminder index: %w", err)
	}

	return nil
}

// Get returns a single log entry, or models.ErrEntryNotFound.
func (s *ReminderLogStore) Get(ctx context.Context, id string) (*models.ReminderLogEntry, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	return s.resolve(ctx, id)
}

func (s *ReminderLogStore) resolve(ctx context.Context, id string) (*models.ReminderLogEntry, error) {
	raw, err := s.KV.Get(ctx, reminderEntryPrefix+id)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, models.ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading reminder log entry %q: %w", id, err)
	}

	var entry models.ReminderLogEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, fmt.Errorf("decoding reminder log entry %q: %w", id, err)
	}

	return &entry, nil
}

// UpdateStatus transitions an entry's delivery status (webhook callbacks).
func (s *ReminderLogStore) UpdateStatus(ctx context.Context, id string, status models.ReminderStatus) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	entry, err := s.resolve(ctx, id)
	if err != nil {
		return err
	}

	entry.Status = status

	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling reminder log entry: %w", err)
	}

	if err := s.KV.Set(ctx, reminderEntryPrefix+id, string(raw), 0); err != nil {
		return fmt.Errorf("updating reminder log entry: %w", err)
	}

	return nil
}

// ListByPayment returns all log entries for a payment in append order.
// Unresolvable IDs (expired by retention) are skipped.
func (s *ReminderLogStore) ListByPayment(ctx context.Context, paymentID string) ([]models.ReminderLogEntry, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	ids, err := s.KV.ListRange(ctx, reminderPaymentIndexKey(paymentID), 0, -1)
	if err != nil {
		return nil, fmt.Errorf("reading payment reminder index: %w", err)
	}

	var entries []models.ReminderLogEntry
	for _, id := range ids {
		entry, err := s.resolve(ctx, id)
		if errors.Is(err, models.ErrEntryNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}

	return entries, nil
}

// AcquireClaim atomically claims the (payment, type, day-bucket) dispatch
// slot. Returns false when another run already holds it. The claim expires
// on its own so a crashed run cannot wedge the slot forever.
func (s *ReminderLogStore) AcquireClaim(ctx context.Context, paymentID string, rtype models.ReminderType, bucket string) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	ok, err := s.KV.SetNX(ctx, reminderClaimKey(paymentID, rtype, bucket), "1", reminderClaimLifetime)
	if err != nil {
		return false, fmt.Errorf("acquiring reminder claim: %w", err)
	}

	return ok, nil
}

// ReleaseClaim drops a claim so a failed dispatch can be retried by the next
// scheduled run.
func (s *ReminderLogStore) ReleaseClaim(ctx context.Context, paymentID string, rtype models.ReminderType, bucket string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	return s.KV.Delete(ctx, reminderClaimKey(paymentID, rtype, bucket))
}

// PurgeOlderThan deletes log entries sent before cutoff and unlinks them
// from both indexes. Returns the number of deleted entries. The global index
// is chronological, so the walk stops at the first entry newer than cutoff.
func (s *ReminderLogStore) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	ids, err := s.KV.ListRange(ctx, reminderGlobalIndex, 0, -1)
	if err != nil {
		return 0, fmt.Errorf("reading reminder log index: %w", err)
	}

	deleted := 0
	for _, id := range ids {
		entry, err := s.resolve(ctx, id)
		if errors.Is(err, models.ErrEntryNotFound) {
			// Dangling index reference; unlink and move on.
			if err := s.KV.ListRemove(ctx, reminderGlobalIndex, id); err != nil {
				return deleted, err
			}

			continue
		}
		if err != nil {
			return deleted, err
		}

		if !entry.SentAt.Before(cutoff) {
			break
		}

		if err := s.KV.Delete(ctx, reminderEntryPrefix+id); err != nil {
			return deleted, fmt.Errorf("deleting reminder log entry: %w", err)
		}
		if err := s.KV.ListRemove(ctx, reminderGlobalIndex, id); err != nil {
			return deleted, err
		}
		if err := s.KV.ListRemove(ctx, reminderPaymentIndexKey(entry.PaymentID), id); err != nil {
			return deleted, err
		}
		deleted++
	}

	return deleted, nil
}
