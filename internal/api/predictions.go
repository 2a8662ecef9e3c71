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
	defaultPredictionLimit = 50
	maxPredictionLimit     = 500
)

const errInvalidSeverity = "severity must be one of low, medium, high, critical"

type createPredictionRequest struct {
	ID                 string              `json:"id"`
	Type               string              `json:"type" binding:"required"`
	Location           string              `json:"location" binding:"required"`
	Coordinates        *models.Coordinates `json:"coordinates" binding:"required"`
	Probability        float64             `json:"probability" binding:"gte=0,lte=1"`
	Severity           string              `json:"severity" binding:"required"`
	PredictedTime      time.Time           `json:"predictedTime"`
	AffectedPopulation int64               `json:"affectedPopulation" binding:"gte=0"`
	RiskScore          float64             `json:"riskScore" binding:"gte=0,lte=10"`
	IsActive           *bool               `json:"isActive"`
}

// updatePredictionRequest replaces only the fields that are present.
type updatePredictionRequest struct {
	Type               *string             `json:"type"`
	Location           *string             `json:"location"`
	Coordinates        *models.Coordinates `json:"coordinates"`
	Probability        *float64            `json:"probability"`
	Severity           *string             `json:"severity"`
	PredictedTime      *time.Time          `json:"predictedTime"`
	AffectedPopulation *int64              `json:"affectedPopulation"`
	RiskScore          *float64            `json:"riskScore"`
	IsActive           *bool               `json:"isActive"`
}

func (req *updatePredictionRequest) apply(p *models.RiskPrediction) string {
	if req.Type != nil {
		p.Type = strings.ToLower(strings.TrimSpace(*req.Type))
	}
	if req.Location != nil {
		p.Location = strings.TrimSpace(*req.Location)
	}
	if req.Coordinates != nil {
		if !req.Coordinates.Known() {
			return "coordinates require lat and lng"
		}
		p.Coordinates = *req.Coordinates
	}
	if req.Probability != nil {
		if *req.Probability < 0 || *req.Probability > 1 {
			return "probability must be between 0 and 1"
		}
		p.Probability = *req.Probability
	}
	if req.Severity != nil {
		severity, valid := parseSeverity(*req.Severity)
		if !valid {
			return errInvalidSeverity
		}
		p.Severity = severity
	}
	if req.PredictedTime != nil {
		p.PredictedTime = *req.PredictedTime
	}
	if req.AffectedPopulation != nil {
		if *req.AffectedPopulation < 0 {
			return "affectedPopulation must not be negative"
		}
		p.AffectedPopulation = *req.AffectedPopulation
	}
	if req.RiskScore != nil {
		if *req.RiskScore < 0 || *req.RiskScore > 10 {
			return "riskScore must be between 0 and 10"
		}
		p.RiskScore = *req.RiskScore
	}
	if req.IsActive != nil {
		p.IsActive = req.IsActive
	}
	if p.Type == "" || p.Location == "" {
		return "type and location must not be empty"
	}
	return ""
}

func predictionFilter(c *gin.Context) repository.PredictionFilter {
	var filter repository.PredictionFilter
	if t := c.Query("type"); t != "" {
		filter.Type = t
	}
	if s := c.Query("severity"); s != "" {
		filter.Severity = models.ParseSeverity(s)
	}
	filter.Limit = queryLimit(c, defaultPredictionLimit, maxPredictionLimit)
	return filter
}

func (h *Handler) listPredictions(c *gin.Context) {
	predictions, err := h.store.ListPredictions(c.Request.Context(), predictionFilter(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to fetch predictions")
		return
	}
	ok(c, http.StatusOK, predictions)
}

func (h *Handler) predictionsGeoJSON(c *gin.Context) {
	predictions, err := h.store.ListPredictions(c.Request.Context(), predictionFilter(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to fetch predictions",
		})
		return
	}

	fc := predictionsToGeoJSON(predictions)
	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, fc)
}

func (h *Handler) getPrediction(c *gin.Context) {
	p, err := h.store.GetPrediction(c.Request.Context(), c.Param("id"))
	if err != nil {
		storeError(c, err, "prediction")
		return
	}
	ok(c, http.StatusOK, p)
}

func (h *Handler) createPrediction(c *gin.Context) {
	var req createPredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if !req.Coordinates.Known() {
		fail(c, http.StatusBadRequest, "coordinates require lat and lng")
		return
	}

	severity, valid := parseSeverity(req.Severity)
	if !valid {
		fail(c, http.StatusBadRequest, errInvalidSeverity)
		return
	}

	p := &models.RiskPrediction{
		ID:                 req.ID,
		Type:               strings.ToLower(strings.TrimSpace(req.Type)),
		Location:           strings.TrimSpace(req.Location),
		Coordinates:        *req.Coordinates,
		Probability:        req.Probability,
		Severity:           severity,
		PredictedTime:      req.PredictedTime,
		AffectedPopulation: req.AffectedPopulation,
		RiskScore:          req.RiskScore,
		IsActive:           req.IsActive,
		Source:             "manual",
		CreatedAt:          time.Now().UTC(),
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.PredictedTime.IsZero() {
		p.PredictedTime = p.CreatedAt
	}

	exists, err := h.store.PredictionExists(c.Request.Context(), p.ID)
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to create prediction")
		return
	}
	if exists {
		fail(c, http.StatusConflict, "prediction already exists")
		return
	}

	if err := h.store.AddPrediction(c.Request.Context(), p); err != nil {
		fail(c, http.StatusInternalServerError, "failed to create prediction")
		return
	}

	h.publish(models.EventPredictionCreated, p)
	if p.Active() {
		h.triggerReplan()
	}
	ok(c, http.StatusCreated, p)
}

func (h *Handler) updatePrediction(c *gin.Context) {
	var req updatePredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.store.GetPrediction(c.Request.Context(), c.Param("id"))
	if err != nil {
		storeError(c, err, "prediction")
		return
	}
	if msg := req.apply(p); msg != "" {
		fail(c, http.StatusBadRequest, msg)
		return
	}

	if err := h.store.UpdatePrediction(c.Request.Context(), p); err != nil {
		storeError(c, err, "prediction")
		return
	}

	h.publish(models.EventPredictionUpdated, p)
	h.triggerReplan()
	ok(c, http.StatusOK, p)
}

func (h *Handler) deletePrediction(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.DeletePrediction(c.Request.Context(), id); err != nil {
		storeError(c, err, "prediction")
		return
	}

	h.publish(models.EventPredictionUpdated, gin.H{"id": id, "deleted": true})
	h.triggerReplan()
	ok(c, http.StatusOK, gin.H{"id": id})
}
