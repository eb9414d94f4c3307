package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuslink/facility-booking-backend/internal/facility"
	"github.com/campuslink/facility-booking-backend/internal/pkg/request"
	"github.com/campuslink/facility-booking-backend/internal/pkg/response"
)

type Handler struct {
	service facility.Service
}

func NewHandler(service facility.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(c *gin.Context) {
	var req ListFacilitiesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	filter := facility.Filter{
		Category: req.Type,
		Campus:   req.Campus,
		Search:   req.Search,
	}

	facilities, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]FacilityResponse, len(facilities))
	for i, f := range facilities {
		items[i] = NewFacilityResponse(f)
	}

	c.JSON(http.StatusOK, response.NewListResponse(items))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	f, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewFacilityResponse(f))
}

// Nearest returns facilities ordered by rough distance from the given point.
func (h *Handler) Nearest(c *gin.Context) {
	var req NearestRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng are required (valid numbers)"})
		return
	}

	nearby, err := h.service.Nearest(c.Request.Context(), *req.Lat, *req.Lng, req.Limit, req.Type)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]NearbyFacilityResponse, len(nearby))
	for i, n := range nearby {
		items[i] = NearbyFacilityResponse{
			FacilityResponse: NewFacilityResponse(n.Facility),
			DistanceKM:       n.KM,
		}
	}

	c.JSON(http.StatusOK, response.NewListResponse(items))
}

// Create handles administrative facility seeding.
func (h *Handler) Create(c *gin.Context) {
	var req CreateFacilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	if req.MaxCapacity == 0 {
		req.MaxCapacity = 1
	}

	f, err := h.service.Create(c.Request.Context(), facility.CreateRequest{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		Building:    req.Building,
		Floor:       req.Floor,
		Campus:      req.Campus,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Hours:       req.Hours,
		ImageURL:    req.ImageURL,
		MaxCapacity: req.MaxCapacity,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewFacilityResponse(f))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	var req UpdateFacilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	f, err := h.service.Update(c.Request.Context(), uri.ID, facility.UpdateRequest{
		Name:        req.Name,
		Description: req.Description,
		Building:    req.Building,
		Floor:       req.Floor,
		Hours:       req.Hours,
		ImageURL:    req.ImageURL,
		MaxCapacity: req.MaxCapacity,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewFacilityResponse(f))
}
