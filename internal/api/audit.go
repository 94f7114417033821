package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/MoonrakerAI/coliving-backend/internal/models"
)

// AuditHandler serves audit log endpoints.
type AuditHandler struct {
	svc AuditLog
	log *logrus.Logger
}

// NewAuditHandler creates an AuditHandler.
func NewAuditHandler(svc AuditLog, log *logrus.Logger) *AuditHandler {
	return &AuditHandler{svc: svc, log: log}
}

// Query handles GET /api/v1/audit.
//
// The total in the response is the size of the scanned index before action or
// residual filters are applied, so pages filtered by action can report a
// larger total than the number of matching entries. Existing pagination UIs
// depend on this count.
func (h *AuditHandler) Query(c *gin.Context) {
	opts := models.AuditQueryOpts{
		UserID:     c.Query("user_id"),
		Resource:   c.Query("resource"),
		ResourceID: c.Query("resource_id"),
		Action:     c.Query("action"),
		Limit:      parseInt(c.Query("limit"), 50),
		Offset:     parseOffset(c.Query("offset")),
	}

	if opts.ResourceID != "" && opts.Resource == "" {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "resource_id requires resource")

		return
	}

	entries, total, err := h.svc.GetAuditLogs(c.Request.Context(), opts)
	if err != nil {
		h.log.WithError(err).Error("failed to query audit log")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "failed to query audit log")

		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":  entries,
		"total": total,
		"pagination": gin.H{
			"limit":   opts.Limit,
			"offset":  opts.Offset,
			"hasMore": opts.Offset+len(entries) < total,
		},
	})
}

// UserTrail handles GET /api/v1/audit/users/:id/trail.
func (h *AuditHandler) UserTrail(c *gin.Context) {
	userID := c.Param("id")
	if userID == "" {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "user id must not be empty")

		return
	}

	limit := parseInt(c.Query("limit"), 50)

	entries, err := h.svc.GetUserAuditTrail(c.Request.Context(), userID, limit)
	if err != nil {
		h.log.WithError(err).WithField("user_id", userID).Error("failed to load audit trail")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "failed to load audit trail")

		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":  entries,
		"count": len(entries),
	})
}
