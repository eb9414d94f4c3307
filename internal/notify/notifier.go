package notify

import (
	"context"
	"time"
)

// Event kinds published to the notification channel.
const (
	EventBookingApproved  = "booking.approved"
	EventBookingRejected  = "booking.rejected"
	EventBookingCancelled = "booking.cancelled"
)

// BookingEvent informs the notification channel of an admission outcome.
// Override marks outcomes produced by the admin escape hatch so invariant
// breaches stay auditable downstream.
type BookingEvent struct {
	Type       string    `json:"type"`
	BookingID  string    `json:"booking_id"`
	FacilityID string    `json:"facility_id"`
	UserID     string    `json:"user_id"`
	Reason     string    `json:"reason,omitempty"`
	Override   bool      `json:"override,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Notifier delivers booking outcome events. Implementations must be safe for
// concurrent use; delivery is best effort from the caller's point of view.
type Notifier interface {
	Publish(ctx context.Context, event BookingEvent) error
	Close() error
}

// NoopNotifier discards all events. Used when no broker is configured.
type NoopNotifier struct{}

func (NoopNotifier) Publish(ctx context.Context, event BookingEvent) error { return nil }

func (NoopNotifier) Close() error { return nil }
