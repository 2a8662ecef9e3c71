package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mr1hm/go-disaster-ops/internal/models"
	"github.com/mr1hm/go-disaster-ops/internal/repository"
)

const (
	defaultAlertLimit = 50
	maxAlertLimit     = 1000
)

type createAlertRequest struct {
	Type     string `json:"type" binding:"required"`
	Severity string `json:"severity" binding:"required"`
	Title    string `json:"title" binding:"required"`
	Message  string `json:"message" binding:"required"`
	Location string `json:"location"`
	Status   string `json:"status"`
}

func (h *Handler) listAlerts(c *gin.Context) {
	filter := repository.AlertFilter{
		UnreadOnly: c.Query("unreadOnly") == "true",
		Limit:      queryLimit(c, defaultAlertLimit, maxAlertLimit),
	}
	if s := c.Query("severity"); s != "" {
		severity, valid := parseSeverity(s)
		if !valid {
			fail(c, http.StatusBadRequest, errInvalidSeverity)
			return
		}
		filter.Severity = severity
	}

	alerts, err := h.store.ListAlerts(c.Request.Context(), filter)
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to fetch alerts")
		return
	}
	ok(c, http.StatusOK, alerts)
}

func (h *Handler) alertsBySeverity(c *gin.Context) {
	severity, valid := parseSeverity(c.Param("severity"))
	if !valid {
		fail(c, http.StatusBadRequest, errInvalidSeverity)
		return
	}

	alerts, err := h.store.ListAlerts(c.Request.Context(), repository.AlertFilter{
		Severity: severity,
		Limit:    queryLimit(c, defaultAlertLimit, maxAlertLimit),
	})
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to fetch alerts")
		return
	}
	ok(c, http.StatusOK, alerts)
}

func (h *Handler) createAlert(c *gin.Context) {
	var req createAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	severity, valid := parseSeverity(req.Severity)
	if !valid {
		fail(c, http.StatusBadRequest, errInvalidSeverity)
		return
	}

	a := &models.Alert{
		ID:        uuid.NewString(),
		Type:      strings.ToLower(strings.TrimSpace(req.Type)),
		Severity:  severity,
		Title:     strings.TrimSpace(req.Title),
		Message:   req.Message,
		Location:  strings.TrimSpace(req.Location),
		Status:    strings.ToLower(strings.TrimSpace(req.Status)),
		CreatedAt: time.Now().UTC(),
	}
	if a.Status == "" {
		a.Status = models.AlertStatusActive
	}

	if err := h.store.AddAlert(c.Request.Context(), a); err != nil {
		fail(c, http.StatusInternalServerError, "failed to create alert")
		return
	}

	h.publish(models.EventAlertCreated, a)
	ok(c, http.StatusCreated, a)
}

func (h *Handler) markAlertRead(c *gin.Context) {
	a, err := h.store.MarkAlertRead(c.Request.Context(), c.Param("id"))
	if err != nil {
		storeError(c, err, "alert")
		return
	}

	h.publish(models.EventAlertUpdated, a)
	ok(c, http.StatusOK, a)
}

func (h *Handler) markAllAlertsRead(c *gin.Context) {
	n, err := h.store.MarkAllAlertsRead(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to update alerts")
		return
	}

	if n > 0 {
		h.publish(models.EventAlertUpdated, gin.H{"allRead": true, "count": n})
	}
	ok(c, http.StatusOK, gin.H{"count": n})
}

func (h *Handler) unreadAlertCount(c *gin.Context) {
	n, err := h.store.CountUnreadAlerts(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to count alerts")
		return
	}
	ok(c, http.StatusOK, gin.H{"count": n})
}
