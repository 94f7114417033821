package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/MoonrakerAI/coliving-backend/internal/models"
)

// SettingsStore is the data-access interface SettingsService depends on.
type SettingsStore interface {
	GetByProperty(ctx context.Context, propertyID string) (*models.ReminderSettings, error)
	PutByProperty(ctx context.Context, propertyID string, settings models.ReminderSettings) error
	GetDefault(ctx context.Context) (*models.ReminderSettings, error)
	SetDefault(ctx context.Context, settings models.ReminderSettings) error
}

// SettingsService resolves and maintains reminder policy records.
type SettingsService struct {
	store SettingsStore
	log   *logrus.Logger
}

// NewSettingsService creates a SettingsService.
func NewSettingsService(store SettingsStore, log *logrus.Logger) *SettingsService {
	return &SettingsService{store: store, log: log}
}

// GetSettings returns the property-specific record when one exists, falling
// back to the stored default. Returns models.ErrSettingsNotFound only when
// neither exists.
func (s *SettingsService) GetSettings(ctx context.Context, propertyID string) (*models.ReminderSettings, error) {
	if propertyID != "" {
		settings, err := s.store.GetByProperty(ctx, propertyID)
		if err == nil {
			return settings, nil
		}
		if !errors.Is(err, models.ErrSettingsNotFound) {
			return nil, err
		}
	}

	return s.store.GetDefault(ctx)
}

// EffectiveSettings resolves the policy the processor should apply for a
// property: stored record if any, otherwise the built-in defaults.
func (s *SettingsService) EffectiveSettings(ctx context.Context, propertyID string) (models.ReminderSettings, error) {
	settings, err := s.GetSettings(ctx, propertyID)
	if errors.Is(err, models.ErrSettingsNotFound) {
		return models.DefaultReminderSettings(), nil
	}
	if err != nil {
		return models.ReminderSettings{}, err
	}

	return *settings, nil
}

// CreateSettings validates and persists a settings record. An empty property
// ID targets the global default record.
func (s *SettingsService) CreateSettings(ctx context.Context, settings models.ReminderSettings) (*models.ReminderSettings, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	if settings.PropertyID == "" {
		if err := s.store.SetDefault(ctx, settings); err != nil {
			return nil, err
		}
	} else if err := s.store.PutByProperty(ctx, settings.PropertyID, settings); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"property_id": settings.PropertyID,
		"enabled":     settings.Enabled,
	}).Info("reminder.settings.create")

	return &settings, nil
}

// UpdateSettings merges a partial patch into the existing record for the
// given property (empty ID targets the default). Returns
// models.ErrSettingsNotFound when no record exists for that key; a patch
// never creates a record.
func (s *SettingsService) UpdateSettings(ctx context.Context, propertyID string, patch models.ReminderSettingsPatch) (*models.ReminderSettings, error) {
	var (
		current *models.ReminderSettings
		err     error
	)
	if propertyID == "" {
		current, err = s.store.GetDefault(ctx)
	} else {
		current, err = s.store.GetByProperty(ctx, propertyID)
	}
	if err != nil {
		return nil, err
	}

	merged := patch.Apply(*current)
	if err := merged.Validate(); err != nil {
		return nil, fmt.Errorf("merged settings invalid: %w", err)
	}

	if propertyID == "" {
		err = s.store.SetDefault(ctx, merged)
	} else {
		err = s.store.PutByProperty(ctx, propertyID, merged)
	}
	if err != nil {
		return nil, err
	}

	s.log.WithField("property_id", propertyID).Info("reminder.settings.update")

	return &merged, nil
}
