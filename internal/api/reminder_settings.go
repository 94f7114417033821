package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/MoonrakerAI/coliving-backend/internal/models"
)

// defaultSettingsID is the path segment addressing the global default record.
const defaultSettingsID = "default"

// SettingsHandler serves reminder settings endpoints.
type SettingsHandler struct {
	svc     SettingsManager
	auditor AuditRecorder
	log     *logrus.Logger
}

// NewSettingsHandler creates a SettingsHandler.
func NewSettingsHandler(svc SettingsManager, auditor AuditRecorder, log *logrus.Logger) *SettingsHandler {
	return &SettingsHandler{svc: svc, auditor: auditor, log: log}
}

// recordAudit queues a compliance entry for a settings mutation. The admin
// API authenticates with a shared key, so the acting user comes from the
// X-Admin-User header when the caller supplies one.
func (h *SettingsHandler) recordAudit(c *gin.Context, action, propertyID string, changes map[string]any) {
	resourceID := propertyID
	if resourceID == "" {
		resourceID = defaultSettingsID
	}

	userID := c.GetHeader("X-Admin-User")
	if userID == "" {
		userID = "admin"
	}

	h.auditor.Enqueue(models.AuditInput{
		UserID:     userID,
		Action:     action,
		Resource:   "reminder_settings",
		ResourceID: resourceID,
		Changes:    changes,
		IPAddress:  c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})
}

// Get handles GET /api/v1/reminders/settings. Without a property_id query
// parameter it returns the default policy; an unknown property falls back to
// the default record and then the built-in defaults, so this never 404s.
func (h *SettingsHandler) Get(c *gin.Context) {
	propertyID := c.Query("property_id")

	settings, err := h.svc.EffectiveSettings(c.Request.Context(), propertyID)
	if err != nil {
		h.log.WithError(err).WithField("property_id", propertyID).
			Error("failed to resolve reminder settings")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "failed to resolve reminder settings")

		return
	}

	c.JSON(http.StatusOK, settings)
}

// Create handles POST /api/v1/reminders/settings. An empty property_id in the
// body targets the global default record.
func (h *SettingsHandler) Create(c *gin.Context) {
	var settings models.ReminderSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body: "+err.Error())

		return
	}

	created, err := h.svc.CreateSettings(c.Request.Context(), settings)
	if err != nil {
		if models.IsValidation(err) {
			respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())

			return
		}
		h.log.WithError(err).Error("failed to create reminder settings")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "failed to create reminder settings")

		return
	}

	h.recordAudit(c, "reminder_settings.create", created.PropertyID, map[string]any{
		"enabled":                   created.Enabled,
		"max_reminders_per_payment": created.MaxRemindersPerPayment,
	})

	c.JSON(http.StatusCreated, created)
}

// Update handles PATCH /api/v1/reminders/settings/:propertyID. The path
// segment "default" targets the global default record. A patch never creates
// a record; missing targets return 404.
func (h *SettingsHandler) Update(c *gin.Context) {
	propertyID := c.Param("propertyID")
	if propertyID == defaultSettingsID {
		propertyID = ""
	}

	var patch models.ReminderSettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body: "+err.Error())

		return
	}

	updated, err := h.svc.UpdateSettings(c.Request.Context(), propertyID, patch)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrSettingsNotFound):
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "no reminder settings for that property")
		case models.IsValidation(err):
			respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())
		default:
			h.log.WithError(err).WithField("property_id", propertyID).
				Error("failed to update reminder settings")
			respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "failed to update reminder settings")
		}

		return
	}

	h.recordAudit(c, "reminder_settings.update", propertyID, map[string]any{
		"enabled":                   updated.Enabled,
		"max_reminders_per_payment": updated.MaxRemindersPerPayment,
	})

	c.JSON(http.StatusOK, updated)
}
