package booking

import (
	"net/http"
	"time"

	"github.com/campuslink/facility-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "booking not found")
	ErrFacilityNotFound = apperror.New(http.StatusNotFound, "facility not found")
	ErrInvalidTimeRange = apperror.New(http.StatusBadRequest, "end time must be after start time")
	ErrInvalidRecurring = apperror.New(http.StatusBadRequest, "invalid recurring pattern")
	// ErrCapacityExceeded carries the conflict flag so clients can present
	// "slot unavailable" distinctly from generic validation failure.
	ErrCapacityExceeded = apperror.NewConflict(http.StatusBadRequest, "time slot not available (conflict or at capacity)")
	ErrAlreadyProcessed = apperror.New(http.StatusBadRequest, "booking already processed")
	ErrAlreadyCancelled = apperror.New(http.StatusBadRequest, "booking already cancelled")
	ErrInvalidAction    = apperror.New(http.StatusBadRequest, "action must be approve or cancel")
	ErrPermissionDenied = apperror.New(http.StatusForbidden, "permission denied")
)

// Status is the approval state of a booking. It moves pending→approved or
// pending→rejected exactly once; cancellation is an overlay, not a status.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// RecurrencePattern enumerates supported repeat cadences.
type RecurrencePattern string

const (
	PatternDaily   RecurrencePattern = "daily"
	PatternWeekly  RecurrencePattern = "weekly"
	PatternMonthly RecurrencePattern = "monthly"
)

// IsValid reports whether p is one of the known patterns.
func (p RecurrencePattern) IsValid() bool {
	switch p {
	case PatternDaily, PatternWeekly, PatternMonthly:
		return true
	}
	return false
}

// Slot is a half-open time interval [Start, End).
type Slot struct {
	Start time.Time
	End   time.Time
}

// Valid reports whether the slot has a positive duration.
func (s Slot) Valid() bool {
	return s.End.After(s.Start)
}

// Overlaps reports whether two half-open intervals share an instant.
// A slot ending exactly when another starts does not overlap it.
func (s Slot) Overlaps(other Slot) bool {
	return s.Start.Before(other.End) && other.Start.Before(s.End)
}

// Recurrence is repeat metadata attached to a single booking record. It is
// never expanded into concrete occurrences; the conflict detector only ever
// evaluates the one stored interval.
type Recurrence struct {
	Enabled bool
	Pattern RecurrencePattern
	EndDate *time.Time
}

// Booking is a request to occupy a facility for a time window.
//
// A booking consumes facility capacity for an interval iff its status is
// approved, it is not cancelled, and its slot overlaps the interval.
type Booking struct {
	ID           string
	FacilityID   string
	FacilityName string
	UserID       string
	UserName     string
	Slot         Slot
	Status       Status
	Recurrence   Recurrence

	// Set when an administrator approves or rejects.
	RespondedBy     *string
	RespondedAt     *time.Time
	RejectionReason *string

	// Cancellation overlay, orthogonal to Status. An approved booking that is
	// cancelled stops counting toward capacity but keeps its approved status.
	CancelledAt *time.Time
	CancelledBy *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Cancelled reports whether the cancellation overlay is set.
func (b *Booking) Cancelled() bool {
	return b.CancelledAt != nil
}

// CountsTowardCapacity reports whether the booking consumes capacity
// for the given interval.
func (b *Booking) CountsTowardCapacity(interval Slot) bool {
	return b.Status == StatusApproved && !b.Cancelled() && b.Slot.Overlaps(interval)
}
