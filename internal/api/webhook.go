package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/MoonrakerAI/coliving-backend/internal/models"
)

// WebhookHandler ingests delivery events from the email provider.
type WebhookHandler struct {
	deliveries DeliveryLog
	log        *logrus.Logger
}

// NewWebhookHandler creates a WebhookHandler.
func NewWebhookHandler(deliveries DeliveryLog, log *logrus.Logger) *WebhookHandler {
	return &WebhookHandler{deliveries: deliveries, log: log}
}

// emailEvent is the provider callback payload. message_id carries the
// reminder log entry ID set as the outbound message identifier.
type emailEvent struct {
	MessageID string `json:"message_id"`
	Event     string `json:"event"`
}

// eventStatus maps provider event names to delivery statuses.
var eventStatus = map[string]models.ReminderStatus{
	"delivered": models.StatusDelivered,
	"opened":    models.StatusOpened,
	"bounced":   models.StatusBounced,
}

// EmailEvent handles POST /api/v1/webhooks/email.
func (h *WebhookHandler) EmailEvent(c *gin.Context) {
	var ev emailEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body: "+err.Error())

		return
	}

	if ev.MessageID == "" {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "message_id is required")

		return
	}

	status, ok := eventStatus[ev.Event]
	if !ok {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "unknown event type")

		return
	}

	err := h.deliveries.UpdateStatus(c.Request.Context(), ev.MessageID, status)
	if err != nil {
		if errors.Is(err, models.ErrEntryNotFound) {
			// The entry may have been purged by retention cleanup.
			// Acknowledge so the provider stops retrying.
			c.JSON(http.StatusOK, gin.H{"updated": false})

			return
		}
		h.log.WithError(err).WithField("message_id", ev.MessageID).
			Error("failed to apply delivery event")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "failed to apply delivery event")

		return
	}

	h.log.WithFields(logrus.Fields{
		"message_id": ev.MessageID,
		"event":      ev.Event,
	}).Info("reminder.delivery_event")

	c.JSON(http.StatusOK, gin.H{"updated": true})
}
