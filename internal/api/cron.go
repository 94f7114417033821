package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CronHandler serves the scheduler-invoked endpoints.
type CronHandler struct {
	runner ReminderRunner
	log    *logrus.Logger
}

// NewCronHandler creates a CronHandler.
func NewCronHandler(runner ReminderRunner, log *logrus.Logger) *CronHandler {
	return &CronHandler{runner: runner, log: log}
}

// RunReminders handles POST /api/v1/cron/reminders. The external scheduler
// invokes this once per day; the run itself is idempotent, so an operator
// retrigger is safe.
func (h *CronHandler) RunReminders(c *gin.Context) {
	stats, err := h.runner.Run(c.Request.Context())
	if err != nil {
		h.log.WithError(err).Error("reminder run failed")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "reminder run failed")

		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   stats,
	})
}
