package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mr1hm/go-disaster-ops/internal/models"
)

const (
	defaultReportLimit = 50
	maxReportLimit     = 500
)

type createReportRequest struct {
	Type            string              `json:"type" binding:"required"`
	Severity        string              `json:"severity" binding:"required"`
	Title           string              `json:"title" binding:"required"`
	Description     string              `json:"description" binding:"required"`
	Location        string              `json:"location" binding:"required"`
	Coordinates     *models.Coordinates `json:"coordinates"`
	ReporterName    string              `json:"reporterName"`
	ReporterContact string              `json:"reporterContact"`
	EvidenceURLs    []string            `json:"evidenceUrls" binding:"omitempty,dive,url"`
}

type reportStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) listReports(c *gin.Context) {
	reports, err := h.store.ListReports(c.Request.Context(), queryLimit(c, defaultReportLimit, maxReportLimit))
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to fetch reports")
		return
	}
	ok(c, http.StatusOK, reports)
}

func (h *Handler) getReport(c *gin.Context) {
	r, err := h.store.GetReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		storeError(c, err, "report")
		return
	}
	ok(c, http.StatusOK, r)
}

// createReport stores a citizen report together with the alert it raises.
func (h *Handler) createReport(c *gin.Context) {
	var req createReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	severity, valid := parseSeverity(req.Severity)
	if !valid {
		fail(c, http.StatusBadRequest, errInvalidSeverity)
		return
	}
	if req.Coordinates != nil && !req.Coordinates.Known() {
		fail(c, http.StatusBadRequest, "coordinates require lat and lng")
		return
	}

	now := time.Now().UTC()
	r := &models.Report{
		ID:              uuid.NewString(),
		Type:            strings.ToLower(strings.TrimSpace(req.Type)),
		Severity:        severity,
		Title:           strings.TrimSpace(req.Title),
		Description:     req.Description,
		Location:        strings.TrimSpace(req.Location),
		Status:          models.ReportStatusReported,
		ReporterName:    strings.TrimSpace(req.ReporterName),
		ReporterContact: strings.TrimSpace(req.ReporterContact),
		EvidenceURLs:    req.EvidenceURLs,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if req.Coordinates != nil {
		r.Coordinates = *req.Coordinates
	}
	alert := r.NewAlert(uuid.NewString())

	if err := h.store.AddReport(c.Request.Context(), r, alert); err != nil {
		fail(c, http.StatusInternalServerError, "failed to create report")
		return
	}

	h.publish(models.EventReportCreated, r)
	h.publish(models.EventAlertCreated, alert)
	ok(c, http.StatusCreated, r)
}

func (h *Handler) updateReportStatus(c *gin.Context) {
	var req reportStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	status := models.ReportStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if !status.Valid() {
		fail(c, http.StatusBadRequest, "status must be one of reported, verified, investigating, resolved")
		return
	}

	r, err := h.store.UpdateReportStatus(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		storeError(c, err, "report")
		return
	}

	h.publish(models.EventReportUpdated, r)
	ok(c, http.StatusOK, r)
}
