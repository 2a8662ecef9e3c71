package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mr1hm/go-disaster-ops/internal/metrics"
	"github.com/mr1hm/go-disaster-ops/internal/models"
	"github.com/mr1hm/go-disaster-ops/internal/planner"
	"github.com/mr1hm/go-disaster-ops/internal/repository"
	"github.com/mr1hm/go-disaster-ops/internal/stream"
)

// Planner is the engine surface the HTTP layer drives.
type Planner interface {
	Optimize(ctx context.Context) (planner.OptimizeResult, error)
	Generate(ctx context.Context, origin, disasterType string) (planner.GenerateResult, error)
}

// Trigger requests an out-of-band replan after data changes.
type Trigger interface {
	Trigger()
}

type Handler struct {
	store     repository.Store
	planner   Planner
	events    *stream.Broadcaster
	publisher stream.Publisher
	replan    Trigger
}

// NewHandler builds the HTTP handlers. events, publisher and replan may be nil.
func NewHandler(store repository.Store, planner Planner, events *stream.Broadcaster, publisher stream.Publisher, replan Trigger) *Handler {
	return &Handler{
		store:     store,
		planner:   planner,
		events:    events,
		publisher: publisher,
		replan:    replan,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.health)
	r.GET("/readyz", h.ready)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))
	r.GET("/ws/events", h.streamEvents)

	api := r.Group("/api")

	api.GET("/predictions", h.listPredictions)
	api.GET("/predictions.geojson", h.predictionsGeoJSON)
	api.GET("/predictions/:id", h.getPrediction)
	api.POST("/predictions", h.createPrediction)
	api.PUT("/predictions/:id", h.updatePrediction)
	api.DELETE("/predictions/:id", h.deletePrediction)

	api.GET("/resources", h.listResources)
	api.GET("/resources/stats", h.resourceStats)
	api.GET("/resources/type/:type", h.listResourcesByType)
	api.GET("/resources/:id", h.getResource)
	api.POST("/resources", h.createResource)
	api.PUT("/resources/:id", h.updateResource)
	api.PATCH("/resources/:id/availability", h.updateAvailability)
	api.DELETE("/resources/:id", h.deleteResource)

	api.GET("/alerts", h.listAlerts)
	api.POST("/alerts", h.createAlert)
	api.GET("/alerts/unread/count", h.unreadAlertCount)
	api.GET("/alerts/severity/:severity", h.alertsBySeverity)
	api.PATCH("/alerts/read-all", h.markAllAlertsRead)
	api.PATCH("/alerts/:id/read", h.markAlertRead)

	api.GET("/reports", h.listReports)
	api.POST("/reports", h.createReport)
	api.GET("/reports/:id", h.getReport)
	api.PATCH("/reports/:id/status", h.updateReportStatus)

	api.POST("/allocation/optimize", h.optimize)
	api.POST("/evacuation/routes", h.evacuationRoutes)
	api.GET("/evacuation/routes.geojson", h.evacuationRoutesGeoJSON)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) ready(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (h *Handler) publish(eventType string, data any) {
	if h.publisher != nil {
		h.publisher.Publish(models.NewEvent(eventType, data))
	}
}

func (h *Handler) triggerReplan() {
	if h.replan != nil {
		h.replan.Trigger()
	}
}

func ok(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "error": msg})
}

// storeError maps repository errors onto HTTP statuses.
func storeError(c *gin.Context, err error, what string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		fail(c, http.StatusNotFound, what+" not found")
	case errors.Is(err, repository.ErrAvailabilityOutOfRange):
		fail(c, http.StatusBadRequest, err.Error())
	default:
		fail(c, http.StatusInternalServerError, "failed to access "+what)
	}
}

func parseSeverity(s string) (models.Severity, bool) {
	severity := models.ParseSeverity(s)
	switch severity {
	case models.SeverityLow, models.SeverityMedium, models.SeverityHigh, models.SeverityCritical:
		return severity, true
	}
	return "", false
}

func parseRoadStatus(s string) (models.RoadStatus, bool) {
	road := models.RoadStatus(strings.ToLower(strings.TrimSpace(s)))
	switch road {
	case "", models.RoadStatusClear, models.RoadStatusBlocked, models.RoadStatusFlooded:
		return road, true
	}
	return "", false
}

// queryLimit reads ?limit=, falling back to def when it is missing or outside (0, maxLimit].
func queryLimit(c *gin.Context, def, maxLimit int) int {
	if l := c.Query("limit"); l != "" {
		if lim, err := strconv.Atoi(l); err == nil && lim > 0 && lim <= maxLimit {
			return lim
		}
	}
	return def
}
