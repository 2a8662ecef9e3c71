package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/go-disaster-ops/internal/models"
)

type evacuationRequest struct {
	Origin       string `json:"origin"`
	DisasterType string `json:"disasterType"`
}

func (h *Handler) optimize(c *gin.Context) {
	result, err := h.planner.Optimize(c.Request.Context())
	if err != nil {
		slog.Error("allocation failed", "error", err)
		fail(c, http.StatusInternalServerError, "failed to optimize allocation")
		return
	}

	if result.Success {
		h.publish(models.EventPlanUpdated, result.Data)
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) evacuationRoutes(c *gin.Context) {
	var req evacuationRequest
	// Empty body means no origin and no type filter
	if c.Request.Body != nil && c.Request.Body != http.NoBody && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
	}

	result, err := h.planner.Generate(c.Request.Context(), req.Origin, req.DisasterType)
	if err != nil {
		slog.Error("evacuation planning failed", "error", err)
		fail(c, http.StatusInternalServerError, "failed to generate evacuation routes")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) evacuationRoutesGeoJSON(c *gin.Context) {
	result, err := h.planner.Generate(c.Request.Context(), c.Query("origin"), c.Query("disasterType"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to generate evacuation routes",
		})
		return
	}

	fc := routesToGeoJSON(result.Data.Routes)
	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, fc)
}
