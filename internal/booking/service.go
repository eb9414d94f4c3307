package booking

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/campuslink/facility-booking-backend/internal/facility"
	"github.com/campuslink/facility-booking-backend/internal/notify"
)

// Override actions accepted by the admin escape hatch.
const (
	OverrideApprove = "approve"
	OverrideCancel  = "cancel"
)

const myBookingsLimit = 100

type CreateRequest struct {
	FacilityID string
	UserID     string
	Slot       Slot
	Recurrence Recurrence
}

// Availability is the read-only day projection for a facility: every approved,
// non-cancelled booking starting within the day, plus the capacity ceiling
// clients render against.
type Availability struct {
	Slots       []*Booking
	MaxCapacity int
}

// Service is the admission controller. It owns the booking state machine;
// every write to the booking store goes through its transition methods.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Booking, error)
	GetByID(ctx context.Context, id string) (*Booking, error)
	Approve(ctx context.Context, id string, actor Actor) (*Booking, error)
	Reject(ctx context.Context, id string, actor Actor, reason string) (*Booking, error)
	Cancel(ctx context.Context, id string, actor Actor) (*Booking, error)
	Override(ctx context.Context, id string, actor Actor, action string) (*Booking, error)
	Availability(ctx context.Context, facilityID string, date time.Time) (*Availability, error)
	ListMine(ctx context.Context, userID string) ([]*Booking, error)
	ListPending(ctx context.Context, actor Actor) ([]*Booking, error)
}

type service struct {
	repo       Repository
	facService facility.Service
	authz      Authorizer
	notifier   notify.Notifier
	loc        *time.Location
}

// NewService builds the admission controller. loc is the reference timezone
// used to compute availability day windows.
func NewService(repo Repository, facService facility.Service, authz Authorizer, notifier notify.Notifier, loc *time.Location) Service {
	if loc == nil {
		loc = time.UTC
	}
	return &service{
		repo:       repo,
		facService: facService,
		authz:      authz,
		notifier:   notifier,
		loc:        loc,
	}
}

// Create records a new request in pending state. The conflict check here is
// advisory only (early feedback for the requester); the binding check happens
// at approval time inside the repository transaction.
func (s *service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	if !req.Slot.Valid() {
		return nil, ErrInvalidTimeRange
	}
	if req.Recurrence.Enabled {
		if !req.Recurrence.Pattern.IsValid() {
			return nil, ErrInvalidRecurring
		}
		if req.Recurrence.EndDate != nil && !req.Recurrence.EndDate.After(req.Slot.Start) {
			return nil, ErrInvalidRecurring
		}
	}

	fac, err := s.facService.GetByID(ctx, req.FacilityID)
	if err != nil {
		return nil, ErrFacilityNotFound
	}

	count, err := s.repo.ConflictCount(ctx, req.FacilityID, req.Slot, "")
	if err != nil {
		return nil, err
	}
	if count >= fac.MaxCapacity {
		return nil, ErrCapacityExceeded
	}

	b := &Booking{
		FacilityID: req.FacilityID,
		UserID:     req.UserID,
		Slot:       req.Slot,
		Status:     StatusPending,
		Recurrence: req.Recurrence,
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	// Re-read for the joined facility/user names.
	return s.repo.GetByID(ctx, b.ID)
}

func (s *service) GetByID(ctx context.Context, id string) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

// Approve runs the binding admission check. The conflict recount and the
// status write happen inside one repository transaction under a per-facility
// lock, so concurrent approvals cannot both observe headroom.
func (s *service) Approve(ctx context.Context, id string, actor Actor) (*Booking, error) {
	if !s.authz.CanApprove(actor) {
		return nil, ErrPermissionDenied
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fac, err := s.facService.GetByID(ctx, b.FacilityID)
	if err != nil {
		return nil, fmt.Errorf("load facility for approval: %w", err)
	}

	if err := s.repo.ApproveWithinCapacity(ctx, id, actor.ID, fac.MaxCapacity); err != nil {
		return nil, err
	}

	approved, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, notify.BookingEvent{
		Type:       notify.EventBookingApproved,
		BookingID:  approved.ID,
		FacilityID: approved.FacilityID,
		UserID:     approved.UserID,
	})
	return approved, nil
}

func (s *service) Reject(ctx context.Context, id string, actor Actor, reason string) (*Booking, error) {
	if !s.authz.CanReject(actor) {
		return nil, ErrPermissionDenied
	}

	if err := s.repo.Reject(ctx, id, actor.ID, reason); err != nil {
		return nil, err
	}

	rejected, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, notify.BookingEvent{
		Type:       notify.EventBookingRejected,
		BookingID:  rejected.ID,
		FacilityID: rejected.FacilityID,
		UserID:     rejected.UserID,
		Reason:     reason,
	})
	return rejected, nil
}

// Cancel sets the cancellation overlay. It does not alter status: a cancelled
// approved booking stays approved but stops consuming capacity, which is what
// frees headroom for a later approval on the same interval.
func (s *service) Cancel(ctx context.Context, id string, actor Actor) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.authz.CanCancel(actor, b) {
		return nil, ErrPermissionDenied
	}

	if err := s.repo.Cancel(ctx, id, actor.ID); err != nil {
		return nil, err
	}

	cancelled, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, notify.BookingEvent{
		Type:       notify.EventBookingCancelled,
		BookingID:  cancelled.ID,
		FacilityID: cancelled.FacilityID,
		UserID:     cancelled.UserID,
	})
	return cancelled, nil
}

// Override is the privileged escape hatch. "approve" skips the conflict
// detector entirely, which may intentionally exceed facility capacity; the
// breach is logged and the outcome event carries the override flag.
func (s *service) Override(ctx context.Context, id string, actor Actor, action string) (*Booking, error) {
	if !s.authz.CanOverride(actor) {
		return nil, ErrPermissionDenied
	}

	switch action {
	case OverrideApprove:
		if err := s.repo.ForceApprove(ctx, id, actor.ID); err != nil {
			return nil, err
		}
	case OverrideCancel:
		if err := s.repo.ForceCancel(ctx, id, actor.ID); err != nil {
			return nil, err
		}
	default:
		return nil, ErrInvalidAction
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	log.Printf("admin override: %s booking %s (facility %s) by %s", action, b.ID, b.FacilityID, actor.ID)

	eventType := notify.EventBookingCancelled
	if action == OverrideApprove {
		eventType = notify.EventBookingApproved
	}
	s.publish(ctx, notify.BookingEvent{
		Type:       eventType,
		BookingID:  b.ID,
		FacilityID: b.FacilityID,
		UserID:     b.UserID,
		Override:   true,
	})
	return b, nil
}

// Availability projects approved occupancy for the calendar day containing
// date, computed in the service's reference timezone.
func (s *service) Availability(ctx context.Context, facilityID string, date time.Time) (*Availability, error) {
	fac, err := s.facService.GetByID(ctx, facilityID)
	if err != nil {
		return nil, ErrFacilityNotFound
	}

	window := s.dayWindow(date)
	slots, err := s.repo.ListApprovedStartingIn(ctx, facilityID, window)
	if err != nil {
		return nil, err
	}

	return &Availability{
		Slots:       slots,
		MaxCapacity: fac.MaxCapacity,
	}, nil
}

func (s *service) ListMine(ctx context.Context, userID string) ([]*Booking, error) {
	return s.repo.ListByUser(ctx, userID, myBookingsLimit)
}

func (s *service) ListPending(ctx context.Context, actor Actor) ([]*Booking, error) {
	if !s.authz.CanListPending(actor) {
		return nil, ErrPermissionDenied
	}
	return s.repo.ListPending(ctx)
}

// dayWindow returns [local midnight, next local midnight) for the day
// containing t in the reference timezone.
func (s *service) dayWindow(t time.Time) Slot {
	local := t.In(s.loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
	return Slot{Start: start, End: start.AddDate(0, 0, 1)}
}

// publish delivers an outcome event best effort; a broker failure never
// fails the transition that already committed.
func (s *service) publish(ctx context.Context, event notify.BookingEvent) {
	event.OccurredAt = time.Now().UTC()
	if err := s.notifier.Publish(ctx, event); err != nil {
		log.Printf("failed to publish %s event for booking %s: %v", event.Type, event.BookingID, err)
	}
}
