package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MoonrakerAI/coliving-backend/internal/kv"
	"github.com/MoonrakerAI/coliving-backend/internal/models"
)

// Audit key layout. The entry record is authoritative; the index lists are
// advisory and reads must tolerate IDs that no longer resolve.
const (
	auditEntryPrefix    = "audit:entry:"
	auditGlobalIndexKey = "audit:index:global"
)

func auditUserIndexKey(userID string) string {
	return "audit:index:user:" + userID
}

func auditResourceIndexKey(resource, resourceID string) string {
	return "audit:index:resource:" + resource + ":" + resourceID
}

// AuditStore provides append and query access to the audit log.
type AuditStore struct {
	Base
}

// NewAuditStore creates an AuditStore.
func NewAuditStore(base Base) *AuditStore {
	return &AuditStore{Base: base}
}

// RecordAudit persists a new immutable audit entry and appends its ID to the
// global, per-user, and per-resource indexes (four KV writes). An index
// append after a successful entry write may fail and leave the entry out of
// one index; the entry itself remains the source of truth.
func (s *AuditStore) RecordAudit(ctx context.Context, in models.AuditInput) (*models.AuditEntry, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if err := in.Validate(); err != nil {
		return nil, err
	}

	entry := models.AuditEntry{
		ID:         uuid.New().String(),
		UserID:     in.UserID,
		Action:     in.Action,
		Resource:   in.Resource,
		ResourceID: in.ResourceID,
		Changes:    in.Changes,
		Timestamp:  time.Now().UTC(),
		IPAddress:  in.IPAddress,
		UserAgent:  in.UserAgent,
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("marshaling audit entry: %w", err)
	}

	if err := s.KV.Set(ctx, auditEntryPrefix+entry.ID, string(raw), 0); err != nil {
		return nil, fmt.Errorf("writing audit entry: %w", err)
	}

	indexes := []string{
		auditGlobalIndexKey,
		auditUserIndexKey(entry.UserID),
		auditResourceIndexKey(entry.Resource, entry.ResourceID),
	}
	for _, key := range indexes {
		if err := s.KV.ListAppend(ctx, key, entry.ID); err != nil {
			return nil, fmt.Errorf("appending audit index %q: %w", key, err)
		}
	}

	return &entry, nil
}

// resolveEntry loads and decodes a single audit entry. Returns (nil, nil)
// when the ID no longer resolves so callers can skip it silently.
func (s *AuditStore) resolveEntry(ctx context.Context, id string) (*models.AuditEntry, error) {
	raw, err := s.KV.Get(ctx, auditEntryPrefix+id)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading audit entry %q: %w", id, err)
	}

	var entry models.AuditEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		s.Log.WithError(err).WithField("entry_id", id).Warn("skipping undecodable audit entry")

		return nil, nil
	}

	return &entry, nil
}

// indexFor picks the narrowest index covering the filter and returns the
// filters that still need to be applied per entry.
func indexFor(opts models.AuditQueryOpts) (key string, remaining models.AuditQueryOpts) {
	switch {
	case opts.UserID != "":
		remaining = opts
		remaining.UserID = ""

		return auditUserIndexKey(opts.UserID), remaining
	case opts.Resource != "" && opts.ResourceID != "":
		remaining = opts
		remaining.Resource = ""
		remaining.ResourceID = ""

		return auditResourceIndexKey(opts.Resource, opts.ResourceID), remaining
	default:
		return auditGlobalIndexKey, opts
	}
}

// matches applies the residual filters to a resolved entry.
func matches(e *models.AuditEntry, opts models.AuditQueryOpts) bool {
	if opts.UserID != "" && e.UserID != opts.UserID {
		return false
	}
	if opts.Resource != "" && e.Resource != opts.Resource {
		return false
	}
	if opts.ResourceID != "" && e.ResourceID != opts.ResourceID {
		return false
	}
	if opts.Action != "" && e.Action != opts.Action {
		return false
	}

	return true
}

// QueryAudit returns the requested page of audit entries, newest first, plus
// a total count.
//
// The total is the unfiltered length of the chosen index, not the post-filter
// match count. Downstream pagination relies on this approximation, so it is
// preserved deliberately; see the tests that pin it.
func (s *AuditStore) QueryAudit(ctx context.Context, opts models.AuditQueryOpts) ([]models.AuditEntry, int, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	indexKey, remaining := indexFor(opts)

	total, err := s.KV.ListLen(ctx, indexKey)
	if err != nil {
		return nil, 0, fmt.Errorf("reading audit index length: %w", err)
	}

	ids, err := s.KV.ListRange(ctx, indexKey, 0, -1)
	if err != nil {
		return nil, 0, fmt.Errorf("reading audit index: %w", err)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	var page []models.AuditEntry
	skipped := 0

	// Index order is chronological append order; walk backwards for
	// newest-first results.
	for i := len(ids) - 1; i >= 0; i-- {
		entry, err := s.resolveEntry(ctx, ids[i])
		if err != nil {
			return nil, 0, err
		}
		if entry == nil || !matches(entry, remaining) {
			continue
		}

		if skipped < opts.Offset {
			skipped++

			continue
		}

		page = append(page, *entry)
		if len(page) >= limit {
			break
		}
	}

	return page, int(total), nil
}

// UserTrail returns up to limit entries for the given user, newest first.
func (s *AuditStore) UserTrail(ctx context.Context, userID string, limit int) ([]models.AuditEntry, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if limit <= 0 {
		limit = 50
	}

	ids, err := s.KV.ListRange(ctx, auditUserIndexKey(userID), 0, -1)
	if err != nil {
		return nil, fmt.Errorf("reading user audit index: %w", err)
	}

	var trail []models.AuditEntry
	for i := len(ids) - 1; i >= 0 && len(trail) < limit; i-- {
		entry, err := s.resolveEntry(ctx, ids[i])
		if err != nil {
			return nil, err
		}
		if entry == nil {
			continue
		}
		trail = append(trail, *entry)
	}

	return trail, nil
}
