package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MoonrakerAI/coliving-backend/internal/kv"
	"github.com/MoonrakerAI/coliving-backend/internal/models"
)

// Settings key layout. The default record has its own key and is reachable
// only through GetDefault/SetDefault, so property IDs can never collide with
// a sentinel value.
const settingsDefaultKey = "reminder:settings:default"

func settingsPropertyKey(propertyID string) string {
	return "reminder:settings:property:" + propertyID
}

// SettingsStore persists per-property reminder configuration.
type SettingsStore struct {
	Base
}

// NewSettingsStore creates a SettingsStore.
func NewSettingsStore(base Base) *SettingsStore {
	return &SettingsStore{Base: base}
}

func (s *SettingsStore) get(ctx context.Context, key string) (*models.ReminderSettings, error) {
	raw, err := s.KV.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, models.ErrSettingsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading reminder settings: %w", err)
	}

	var settings models.ReminderSettings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return nil, fmt.Errorf("decoding reminder settings: %w", err)
	}

	return &settings, nil
}

func (s *SettingsStore) put(ctx context.Context, key string, settings models.ReminderSettings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling reminder settings: %w", err)
	}

	if err := s.KV.Set(ctx, key, string(raw), 0); err != nil {
		return fmt.Errorf("writing reminder settings: %w", err)
	}

	return nil
}

// GetByProperty returns the property-specific settings record, or
// models.ErrSettingsNotFound.
func (s *SettingsStore) GetByProperty(ctx context.Context, propertyID string) (*models.ReminderSettings, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	return s.get(ctx, settingsPropertyKey(propertyID))
}

// PutByProperty stores a property-specific settings record.
func (s *SettingsStore) PutByProperty(ctx context.Context, propertyID string, settings models.ReminderSettings) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	settings.PropertyID = propertyID

	return s.put(ctx, settingsPropertyKey(propertyID), settings)
}

// GetDefault returns the global default settings record, or
// models.ErrSettingsNotFound.
func (s *SettingsStore) GetDefault(ctx context.Context) (*models.ReminderSettings, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	return s.get(ctx, settingsDefaultKey)
}

// SetDefault stores the global default settings record.
func (s *SettingsStore) SetDefault(ctx context.Context, settings models.ReminderSettings) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	settings.PropertyID = ""

	return s.put(ctx, settingsDefaultKey, settings)
}
