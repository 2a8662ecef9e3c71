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
	defaultResourceStatus = "available"
	errInvalidRoadStatus  = "roadStatus must be one of clear, blocked, flooded"
)

type createResourceRequest struct {
	ID          string              `json:"id"`
	Type        string              `json:"type" binding:"required"`
	Name        string              `json:"name" binding:"required"`
	Location    string              `json:"location" binding:"required"`
	Coordinates *models.Coordinates `json:"coordinates"`
	Quantity    *int                `json:"quantity" binding:"required,gte=0"`
	Available   *int                `json:"available"`
	RoadStatus  string              `json:"roadStatus"`
	Status      string              `json:"status"`
	Description string              `json:"description"`
}

// updateResourceRequest replaces only the fields that are present.
type updateResourceRequest struct {
	Type        *string             `json:"type"`
	Name        *string             `json:"name"`
	Location    *string             `json:"location"`
	Coordinates *models.Coordinates `json:"coordinates"`
	Quantity    *int                `json:"quantity"`
	Available   *int                `json:"available"`
	RoadStatus  *string             `json:"roadStatus"`
	Status      *string             `json:"status"`
	Description *string             `json:"description"`
}

func (req *updateResourceRequest) apply(r *models.Resource) string {
	if req.Type != nil {
		r.Type = strings.ToLower(strings.TrimSpace(*req.Type))
	}
	if req.Name != nil {
		r.Name = strings.TrimSpace(*req.Name)
	}
	if req.Location != nil {
		r.Location = strings.TrimSpace(*req.Location)
	}
	if req.Coordinates != nil {
		r.Coordinates = *req.Coordinates
	}
	if req.Quantity != nil {
		r.Quantity = *req.Quantity
	}
	if req.Available != nil {
		r.Available = *req.Available
	}
	if req.RoadStatus != nil {
		road, valid := parseRoadStatus(*req.RoadStatus)
		if !valid {
			return errInvalidRoadStatus
		}
		r.RoadStatus = road
	}
	if req.Status != nil {
		r.Status = strings.ToLower(strings.TrimSpace(*req.Status))
	}
	if req.Description != nil {
		r.Description = *req.Description
	}
	if r.Quantity < 0 || r.Available < 0 || r.Available > r.Quantity {
		return "available must be between 0 and quantity"
	}
	if r.Type == "" || r.Name == "" || r.Location == "" {
		return "type, name and location must not be empty"
	}
	if r.Status == "" {
		r.Status = defaultResourceStatus
	}
	return ""
}

type availabilityRequest struct {
	Available *int `json:"available" binding:"required"`
}

func (h *Handler) listResources(c *gin.Context) {
	resources, err := h.store.ListResources(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to fetch resources")
		return
	}
	ok(c, http.StatusOK, resources)
}

func (h *Handler) listResourcesByType(c *gin.Context) {
	resources, err := h.store.ListResourcesByType(c.Request.Context(), c.Param("type"))
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to fetch resources")
		return
	}
	ok(c, http.StatusOK, resources)
}

func (h *Handler) resourceStats(c *gin.Context) {
	resources, err := h.store.ListResources(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to fetch resources")
		return
	}
	ok(c, http.StatusOK, models.ComputeResourceStats(resources))
}

func (h *Handler) getResource(c *gin.Context) {
	r, err := h.store.GetResource(c.Request.Context(), c.Param("id"))
	if err != nil {
		storeError(c, err, "resource")
		return
	}
	ok(c, http.StatusOK, r)
}

func (h *Handler) createResource(c *gin.Context) {
	var req createResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	available := *req.Quantity
	if req.Available != nil {
		available = *req.Available
	}
	if available < 0 || available > *req.Quantity {
		fail(c, http.StatusBadRequest, "available must be between 0 and quantity")
		return
	}

	road, valid := parseRoadStatus(req.RoadStatus)
	if !valid {
		fail(c, http.StatusBadRequest, errInvalidRoadStatus)
		return
	}

	r := &models.Resource{
		ID:          req.ID,
		Type:        strings.ToLower(strings.TrimSpace(req.Type)),
		Name:        strings.TrimSpace(req.Name),
		Location:    strings.TrimSpace(req.Location),
		Quantity:    *req.Quantity,
		Available:   available,
		RoadStatus:  road,
		Status:      strings.ToLower(strings.TrimSpace(req.Status)),
		Description: req.Description,
		UpdatedAt:   time.Now().UTC(),
	}
	if req.Coordinates != nil {
		r.Coordinates = *req.Coordinates
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = defaultResourceStatus
	}

	exists, err := h.store.ResourceExists(c.Request.Context(), r.ID)
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to create resource")
		return
	}
	if exists {
		fail(c, http.StatusConflict, "resource already exists")
		return
	}

	if err := h.store.AddResource(c.Request.Context(), r); err != nil {
		fail(c, http.StatusInternalServerError, "failed to create resource")
		return
	}

	h.publish(models.EventResourceUpdated, r)
	h.triggerReplan()
	ok(c, http.StatusCreated, r)
}

func (h *Handler) updateResource(c *gin.Context) {
	var req updateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	r, err := h.store.GetResource(c.Request.Context(), c.Param("id"))
	if err != nil {
		storeError(c, err, "resource")
		return
	}
	if msg := req.apply(r); msg != "" {
		fail(c, http.StatusBadRequest, msg)
		return
	}

	if err := h.store.UpdateResource(c.Request.Context(), r); err != nil {
		storeError(c, err, "resource")
		return
	}

	h.publish(models.EventResourceUpdated, r)
	h.triggerReplan()
	ok(c, http.StatusOK, r)
}

func (h *Handler) updateAvailability(c *gin.Context) {
	var req availabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	r, err := h.store.UpdateAvailability(c.Request.Context(), c.Param("id"), *req.Available)
	if err != nil {
		storeError(c, err, "resource")
		return
	}

	h.publish(models.EventResourceUpdated, r)
	h.triggerReplan()
	ok(c, http.StatusOK, r)
}

func (h *Handler) deleteResource(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.DeleteResource(c.Request.Context(), id); err != nil {
		storeError(c, err, "resource")
		return
	}

	h.publish(models.EventResourceUpdated, gin.H{"id": id, "deleted": true})
	h.triggerReplan()
	ok(c, http.StatusOK, gin.H{"id": id})
}
