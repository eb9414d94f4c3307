package http

import (
	"time"

	"github.com/campuslink/facility-booking-backend/internal/booking"
	facHttp "github.com/campuslink/facility-booking-backend/internal/facility/http"
	userHttp "github.com/campuslink/facility-booking-backend/internal/user/http"
)

// RecurringBody is the optional recurrence descriptor on booking creation.
type RecurringBody struct {
	Pattern string     `json:"pattern" binding:"omitempty,oneof=daily weekly monthly"`
	EndDate *time.Time `json:"end_date"`
}

// CreateBookingBody is the payload for requesting a facility slot.
type CreateBookingBody struct {
	Start     time.Time      `json:"start" binding:"required"`
	End       time.Time      `json:"end" binding:"required"`
	Recurring *RecurringBody `json:"recurring"`
}

// RejectBody carries the optional human-readable rejection reason.
type RejectBody struct {
	Reason string `json:"reason"`
}

// OverrideBody selects the privileged override action.
type OverrideBody struct {
	Action string `json:"action" binding:"required"`
}

// RecurrenceResponse mirrors the persisted recurrence descriptor.
type RecurrenceResponse struct {
	Enabled bool       `json:"enabled"`
	Pattern string     `json:"pattern,omitempty"`
	EndDate *time.Time `json:"end_date,omitempty"`
}

// SlotResponse is the booked time window.
type SlotResponse struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// BookingResponse is the API shape of a booking record.
type BookingResponse struct {
	ID              string              `json:"id"`
	Facility        facHttp.FacilityTag `json:"facility"`
	User            userHttp.UserTag    `json:"user"`
	Slot            SlotResponse        `json:"slot"`
	Status          string              `json:"status"`
	Recurring       RecurrenceResponse  `json:"recurring"`
	RespondedBy     *string             `json:"responded_by"`
	RespondedAt     *time.Time          `json:"responded_at"`
	RejectionReason *string             `json:"rejection_reason"`
	CancelledAt     *time.Time          `json:"cancelled_at"`
	CancelledBy     *string             `json:"cancelled_by"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	rec := RecurrenceResponse{Enabled: b.Recurrence.Enabled}
	if b.Recurrence.Enabled {
		rec.Pattern = string(b.Recurrence.Pattern)
		rec.EndDate = b.Recurrence.EndDate
	}

	return BookingResponse{
		ID:              b.ID,
		Facility:        facHttp.FacilityTag{ID: b.FacilityID, Name: b.FacilityName},
		User:            userHttp.UserTag{ID: b.UserID, Name: b.UserName},
		Slot:            SlotResponse{Start: b.Slot.Start, End: b.Slot.End},
		Status:          string(b.Status),
		Recurring:       rec,
		RespondedBy:     b.RespondedBy,
		RespondedAt:     b.RespondedAt,
		RejectionReason: b.RejectionReason,
		CancelledAt:     b.CancelledAt,
		CancelledBy:     b.CancelledBy,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

// AvailabilityResponse renders a facility's approved occupancy for one day.
type AvailabilityResponse struct {
	Slots       []BookingResponse `json:"slots"`
	MaxCapacity int               `json:"max_capacity"`
}

func NewAvailabilityResponse(a *booking.Availability) AvailabilityResponse {
	slots := make([]BookingResponse, len(a.Slots))
	for i, b := range a.Slots {
		slots[i] = NewBookingResponse(b)
	}
	return AvailabilityResponse{
		Slots:       slots,
		MaxCapacity: a.MaxCapacity,
	}
}
