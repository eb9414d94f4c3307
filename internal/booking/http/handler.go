package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/campuslink/facility-booking-backend/internal/auth"
	"github.com/campuslink/facility-booking-backend/internal/booking"
	"github.com/campuslink/facility-booking-backend/internal/pkg/response"
	"github.com/campuslink/facility-booking-backend/internal/user"
)

type Handler struct {
	service booking.Service
}

func NewHandler(service booking.Service) *Handler {
	return &Handler{service: service}
}

// actor builds the booking Actor from the authenticated principal.
func actor(c *gin.Context) booking.Actor {
	return booking.Actor{
		ID:   auth.GetUserID(c),
		Role: user.Role(auth.GetUserRole(c)),
	}
}

// Create handles POST /facilities/:id/book. The created booking is always
// pending; approval is a separate administrative step.
func (h *Handler) Create(c *gin.Context) {
	facilityID := c.Param("id")
	if _, err := uuid.Parse(facilityID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	var body CreateBookingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	req := booking.CreateRequest{
		FacilityID: facilityID,
		UserID:     auth.GetUserID(c),
		Slot:       booking.Slot{Start: body.Start, End: body.End},
	}
	if body.Recurring != nil {
		pattern := booking.RecurrencePattern(body.Recurring.Pattern)
		if pattern == "" {
			pattern = booking.PatternWeekly
		}
		req.Recurrence = booking.Recurrence{
			Enabled: true,
			Pattern: pattern,
			EndDate: body.Recurring.EndDate,
		}
	}

	b, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewBookingResponse(b))
}

// Availability handles GET /facilities/:id/availability.
func (h *Handler) Availability(c *gin.Context) {
	facilityID := c.Param("id")
	if _, err := uuid.Parse(facilityID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	date := time.Now()
	if v := c.Query("date"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	avail, err := h.service.Availability(c.Request.Context(), facilityID, date)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewAvailabilityResponse(avail))
}

// Approve handles PUT /bookings/:bookingId/approve (admin).
func (h *Handler) Approve(c *gin.Context) {
	id := c.Param("bookingId")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	b, err := h.service.Approve(c.Request.Context(), id, actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

// Reject handles PUT /bookings/:bookingId/reject (admin).
func (h *Handler) Reject(c *gin.Context) {
	id := c.Param("bookingId")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	var body RejectBody
	if err := c.ShouldBindJSON(&body); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	b, err := h.service.Reject(c.Request.Context(), id, actor(c), body.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

// Cancel handles DELETE /bookings/:bookingId (owner or admin). The booking
// record survives with its cancellation fields set.
func (h *Handler) Cancel(c *gin.Context) {
	id := c.Param("bookingId")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	b, err := h.service.Cancel(c.Request.Context(), id, actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

// Override handles PUT /bookings/:bookingId/admin-override (admin).
func (h *Handler) Override(c *gin.Context) {
	id := c.Param("bookingId")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	var body OverrideBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "action must be approve or cancel"})
		return
	}

	b, err := h.service.Override(c.Request.Context(), id, actor(c), body.Action)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

// ListMine handles GET /bookings/my.
func (h *Handler) ListMine(c *gin.Context) {
	bookings, err := h.service.ListMine(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}

	c.JSON(http.StatusOK, response.NewListResponse(items))
}

// ListPending handles GET /bookings/pending (admin dashboard).
func (h *Handler) ListPending(c *gin.Context) {
	bookings, err := h.service.ListPending(c.Request.Context(), actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}

	c.JSON(http.StatusOK, response.NewListResponse(items))
}
