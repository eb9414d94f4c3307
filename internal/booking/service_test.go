package booking

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuslink/facility-booking-backend/internal/facility"
	"github.com/campuslink/facility-booking-backend/internal/notify"
)

// ==== In-memory fakes ====

type fakeRepo struct {
	seq      int
	bookings map[string]*Booking
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{bookings: make(map[string]*Booking)}
}

func (r *fakeRepo) Create(ctx context.Context, b *Booking) error {
	r.seq++
	b.ID = fmt.Sprintf("bk-%d", r.seq)
	b.CreatedAt = time.Now().UTC()
	b.UpdatedAt = b.CreatedAt
	stored := *b
	r.bookings[b.ID] = &stored
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (*Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *fakeRepo) ListByUser(ctx context.Context, userID string, limit int) ([]*Booking, error) {
	var out []*Booking
	for _, b := range r.bookings {
		if b.UserID == userID && len(out) < limit {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListPending(ctx context.Context) ([]*Booking, error) {
	var out []*Booking
	for _, b := range r.bookings {
		if b.Status == StatusPending && !b.Cancelled() {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListApprovedStartingIn(ctx context.Context, facilityID string, window Slot) ([]*Booking, error) {
	var out []*Booking
	for _, b := range r.bookings {
		if b.FacilityID != facilityID || b.Status != StatusApproved || b.Cancelled() {
			continue
		}
		if !b.Slot.Start.Before(window.Start) && b.Slot.Start.Before(window.End) {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeRepo) ConflictCount(ctx context.Context, facilityID string, slot Slot, excludeID string) (int, error) {
	count := 0
	for _, b := range r.bookings {
		if b.FacilityID == facilityID && b.ID != excludeID && b.CountsTowardCapacity(slot) {
			count++
		}
	}
	return count, nil
}

func (r *fakeRepo) ApproveWithinCapacity(ctx context.Context, id, responderID string, capacity int) error {
	b, ok := r.bookings[id]
	if !ok {
		return ErrNotFound
	}
	if b.Status != StatusPending {
		return ErrAlreadyProcessed
	}
	count, _ := r.ConflictCount(ctx, b.FacilityID, b.Slot, id)
	if count >= capacity {
		return ErrCapacityExceeded
	}
	now := time.Now().UTC()
	b.Status = StatusApproved
	b.RespondedBy = &responderID
	b.RespondedAt = &now
	b.UpdatedAt = now
	return nil
}

func (r *fakeRepo) Reject(ctx context.Context, id, responderID, reason string) error {
	b, ok := r.bookings[id]
	if !ok {
		return ErrNotFound
	}
	if b.Status != StatusPending {
		return ErrAlreadyProcessed
	}
	now := time.Now().UTC()
	b.Status = StatusRejected
	b.RespondedBy = &responderID
	b.RespondedAt = &now
	if reason != "" {
		b.RejectionReason = &reason
	}
	b.UpdatedAt = now
	return nil
}

func (r *fakeRepo) Cancel(ctx context.Context, id, cancellerID string) error {
	b, ok := r.bookings[id]
	if !ok {
		return ErrNotFound
	}
	if b.Cancelled() {
		return ErrAlreadyCancelled
	}
	now := time.Now().UTC()
	b.CancelledAt = &now
	b.CancelledBy = &cancellerID
	b.UpdatedAt = now
	return nil
}

func (r *fakeRepo) ForceApprove(ctx context.Context, id, responderID string) error {
	b, ok := r.bookings[id]
	if !ok {
		return ErrNotFound
	}
	now := time.Now().UTC()
	b.Status = StatusApproved
	b.RespondedBy = &responderID
	b.RespondedAt = &now
	b.UpdatedAt = now
	return nil
}

func (r *fakeRepo) ForceCancel(ctx context.Context, id, cancellerID string) error {
	b, ok := r.bookings[id]
	if !ok {
		return ErrNotFound
	}
	now := time.Now().UTC()
	b.CancelledAt = &now
	b.CancelledBy = &cancellerID
	b.UpdatedAt = now
	return nil
}

type fakeFacilityService struct {
	facilities map[string]*facility.Facility
}

func (s *fakeFacilityService) GetByID(ctx context.Context, id string) (*facility.Facility, error) {
	f, ok := s.facilities[id]
	if !ok {
		return nil, facility.ErrNotFound
	}
	return f, nil
}

func (s *fakeFacilityService) Create(ctx context.Context, req facility.CreateRequest) (*facility.Facility, error) {
	return nil, nil
}

func (s *fakeFacilityService) List(ctx context.Context, filter facility.Filter) ([]*facility.Facility, error) {
	return nil, nil
}

func (s *fakeFacilityService) Update(ctx context.Context, id string, req facility.UpdateRequest) (*facility.Facility, error) {
	return nil, nil
}

func (s *fakeFacilityService) Nearest(ctx context.Context, lat, lng float64, limit int, category string) ([]facility.NearbyFacility, error) {
	return nil, nil
}

type captureNotifier struct {
	events []notify.BookingEvent
}

func (n *captureNotifier) Publish(ctx context.Context, event notify.BookingEvent) error {
	n.events = append(n.events, event)
	return nil
}

func (n *captureNotifier) Close() error { return nil }

// ==== Test fixture ====

const (
	testFacilityID = "fac-1"
	studentID      = "user-student"
	otherStudentID = "user-other"
	adminID        = "user-admin"
)

var (
	studentActor = Actor{ID: studentID, Role: "student"}
	strangerAct  = Actor{ID: otherStudentID, Role: "student"}
	adminActor   = Actor{ID: adminID, Role: "admin"}
)

type fixture struct {
	service  Service
	repo     *fakeRepo
	notifier *captureNotifier
}

func newFixture(t *testing.T, capacity int) *fixture {
	t.Helper()
	repo := newFakeRepo()
	facService := &fakeFacilityService{
		facilities: map[string]*facility.Facility{
			testFacilityID: {ID: testFacilityID, Name: "Main Library", MaxCapacity: capacity},
		},
	}
	notifier := &captureNotifier{}
	return &fixture{
		service:  NewService(repo, facService, NewRoleAuthorizer(), notifier, time.UTC),
		repo:     repo,
		notifier: notifier,
	}
}

func (f *fixture) createBooking(t *testing.T, userID string, slot Slot) *Booking {
	t.Helper()
	b, err := f.service.Create(context.Background(), CreateRequest{
		FacilityID: testFacilityID,
		UserID:     userID,
		Slot:       slot,
	})
	require.NoError(t, err)
	return b
}

func hourSlot(startHour, endHour int) Slot {
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	return Slot{
		Start: day.Add(time.Duration(startHour) * time.Hour),
		End:   day.Add(time.Duration(endHour) * time.Hour),
	}
}

// ==== Create ====

func TestCreateBooking(t *testing.T) {
	f := newFixture(t, 1)

	endDate := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	b, err := f.service.Create(context.Background(), CreateRequest{
		FacilityID: testFacilityID,
		UserID:     studentID,
		Slot:       hourSlot(10, 11),
		Recurrence: Recurrence{Enabled: true, Pattern: PatternWeekly, EndDate: &endDate},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, b.ID)
	assert.Equal(t, StatusPending, b.Status)
	assert.True(t, b.Recurrence.Enabled)
	assert.Equal(t, PatternWeekly, b.Recurrence.Pattern)
	assert.False(t, b.Cancelled())
	assert.Empty(t, f.notifier.events, "creation alone should not notify")
}

func TestCreateBookingValidation(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	_, err := f.service.Create(ctx, CreateRequest{
		FacilityID: testFacilityID,
		UserID:     studentID,
		Slot:       Slot{Start: hourSlot(11, 12).Start, End: hourSlot(10, 11).Start},
	})
	assert.ErrorIs(t, err, ErrInvalidTimeRange)

	_, err = f.service.Create(ctx, CreateRequest{
		FacilityID: testFacilityID,
		UserID:     studentID,
		Slot:       hourSlot(10, 11),
		Recurrence: Recurrence{Enabled: true, Pattern: "yearly"},
	})
	assert.ErrorIs(t, err, ErrInvalidRecurring)

	pastEnd := hourSlot(10, 11).Start.AddDate(0, -1, 0)
	_, err = f.service.Create(ctx, CreateRequest{
		FacilityID: testFacilityID,
		UserID:     studentID,
		Slot:       hourSlot(10, 11),
		Recurrence: Recurrence{Enabled: true, Pattern: PatternWeekly, EndDate: &pastEnd},
	})
	assert.ErrorIs(t, err, ErrInvalidRecurring, "recurrence cannot end before the slot")

	_, err = f.service.Create(ctx, CreateRequest{
		FacilityID: "fac-missing",
		UserID:     studentID,
		Slot:       hourSlot(10, 11),
	})
	assert.ErrorIs(t, err, ErrFacilityNotFound)
}

func TestCreateBookingRejectedWhenSlotFull(t *testing.T) {
	f := newFixture(t, 1)

	a := f.createBooking(t, studentID, hourSlot(10, 12))
	_, err := f.service.Approve(context.Background(), a.ID, adminActor)
	require.NoError(t, err)

	// Overlapping request is refused up front once capacity is consumed.
	_, err = f.service.Create(context.Background(), CreateRequest{
		FacilityID: testFacilityID,
		UserID:     otherStudentID,
		Slot:       hourSlot(11, 13),
	})
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	// An adjacent slot is fine.
	f.createBooking(t, otherStudentID, hourSlot(12, 13))
}

func TestPendingBookingsDoNotBlockCreation(t *testing.T) {
	f := newFixture(t, 1)

	// Many pending requests may compete for the same slot.
	f.createBooking(t, studentID, hourSlot(10, 11))
	f.createBooking(t, otherStudentID, hourSlot(10, 11))
}

// ==== Approve / Reject ====

func TestApprove(t *testing.T) {
	f := newFixture(t, 1)
	b := f.createBooking(t, studentID, hourSlot(10, 11))

	approved, err := f.service.Approve(context.Background(), b.ID, adminActor)
	require.NoError(t, err)

	assert.Equal(t, StatusApproved, approved.Status)
	require.NotNil(t, approved.RespondedBy)
	assert.Equal(t, adminID, *approved.RespondedBy)
	assert.NotNil(t, approved.RespondedAt)

	require.Len(t, f.notifier.events, 1)
	event := f.notifier.events[0]
	assert.Equal(t, notify.EventBookingApproved, event.Type)
	assert.Equal(t, b.ID, event.BookingID)
	assert.False(t, event.Override)
}

func TestApproveRequiresAdmin(t *testing.T) {
	f := newFixture(t, 1)
	b := f.createBooking(t, studentID, hourSlot(10, 11))

	_, err := f.service.Approve(context.Background(), b.ID, studentActor)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	got, err := f.service.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
	assert.Empty(t, f.notifier.events)
}

func TestApproveAtCapacityFailsClosed(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	a := f.createBooking(t, studentID, hourSlot(10, 12))
	b := f.createBooking(t, otherStudentID, hourSlot(11, 13))

	_, err := f.service.Approve(ctx, a.ID, adminActor)
	require.NoError(t, err)

	_, err = f.service.Approve(ctx, b.ID, adminActor)
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	// The loser stays pending; nothing was partially applied.
	got, err := f.service.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)

	require.Len(t, f.notifier.events, 1, "only the successful approval notifies")
}

func TestApproveBackToBackSlots(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	a := f.createBooking(t, studentID, hourSlot(10, 11))
	b := f.createBooking(t, otherStudentID, hourSlot(11, 12))

	_, err := f.service.Approve(ctx, a.ID, adminActor)
	require.NoError(t, err)

	// [10:00, 11:00) and [11:00, 12:00) share no instant.
	_, err = f.service.Approve(ctx, b.ID, adminActor)
	assert.NoError(t, err)
}

func TestApproveIsNotRepeatable(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	b := f.createBooking(t, studentID, hourSlot(10, 11))

	_, err := f.service.Approve(ctx, b.ID, adminActor)
	require.NoError(t, err)

	_, err = f.service.Approve(ctx, b.ID, adminActor)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)

	_, err = f.service.Reject(ctx, b.ID, adminActor, "late")
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestReject(t *testing.T) {
	f := newFixture(t, 1)
	b := f.createBooking(t, studentID, hourSlot(10, 11))

	_, err := f.service.Reject(context.Background(), b.ID, studentActor, "nope")
	assert.ErrorIs(t, err, ErrPermissionDenied)

	rejected, err := f.service.Reject(context.Background(), b.ID, adminActor, "maintenance window")
	require.NoError(t, err)

	assert.Equal(t, StatusRejected, rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "maintenance window", *rejected.RejectionReason)

	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, notify.EventBookingRejected, f.notifier.events[0].Type)
	assert.Equal(t, "maintenance window", f.notifier.events[0].Reason)
}

// ==== Cancel ====

func TestCancelPermissions(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	b := f.createBooking(t, studentID, hourSlot(10, 11))

	_, err := f.service.Cancel(ctx, b.ID, strangerAct)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	cancelled, err := f.service.Cancel(ctx, b.ID, studentActor)
	require.NoError(t, err)
	assert.True(t, cancelled.Cancelled())
	require.NotNil(t, cancelled.CancelledBy)
	assert.Equal(t, studentID, *cancelled.CancelledBy)

	_, err = f.service.Cancel(ctx, b.ID, studentActor)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
}

func TestAdminCanCancelAnyBooking(t *testing.T) {
	f := newFixture(t, 1)
	b := f.createBooking(t, studentID, hourSlot(10, 11))

	cancelled, err := f.service.Cancel(context.Background(), b.ID, adminActor)
	require.NoError(t, err)
	assert.True(t, cancelled.Cancelled())

	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, notify.EventBookingCancelled, f.notifier.events[0].Type)
}

func TestCancelKeepsStatusButFreesCapacity(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	a := f.createBooking(t, studentID, hourSlot(10, 12))
	_, err := f.service.Approve(ctx, a.ID, adminActor)
	require.NoError(t, err)

	b := f.createBooking(t, otherStudentID, hourSlot(10, 12))
	_, err = f.service.Approve(ctx, b.ID, adminActor)
	require.ErrorIs(t, err, ErrCapacityExceeded)

	cancelled, err := f.service.Cancel(ctx, a.ID, studentActor)
	require.NoError(t, err)
	// Cancellation is an overlay: the record keeps its approved status.
	assert.Equal(t, StatusApproved, cancelled.Status)
	assert.True(t, cancelled.Cancelled())

	// The freed capacity lets the second booking through.
	_, err = f.service.Approve(ctx, b.ID, adminActor)
	assert.NoError(t, err)
}

// ==== Override ====

func TestOverrideApproveBypassesCapacity(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	a := f.createBooking(t, studentID, hourSlot(10, 12))
	_, err := f.service.Approve(ctx, a.ID, adminActor)
	require.NoError(t, err)

	b := f.createBooking(t, otherStudentID, hourSlot(10, 12))
	_, err = f.service.Approve(ctx, b.ID, adminActor)
	require.ErrorIs(t, err, ErrCapacityExceeded)

	forced, err := f.service.Override(ctx, b.ID, adminActor, OverrideApprove)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, forced.Status)

	// Both overlapping bookings are now approved; the override event is marked.
	last := f.notifier.events[len(f.notifier.events)-1]
	assert.Equal(t, notify.EventBookingApproved, last.Type)
	assert.True(t, last.Override)
}

func TestOverrideCancel(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	b := f.createBooking(t, studentID, hourSlot(10, 11))
	_, err := f.service.Approve(ctx, b.ID, adminActor)
	require.NoError(t, err)

	forced, err := f.service.Override(ctx, b.ID, adminActor, OverrideCancel)
	require.NoError(t, err)
	assert.True(t, forced.Cancelled())

	last := f.notifier.events[len(f.notifier.events)-1]
	assert.Equal(t, notify.EventBookingCancelled, last.Type)
	assert.True(t, last.Override)
}

func TestOverrideValidation(t *testing.T) {
	f := newFixture(t, 1)
	b := f.createBooking(t, studentID, hourSlot(10, 11))

	_, err := f.service.Override(context.Background(), b.ID, studentActor, OverrideApprove)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = f.service.Override(context.Background(), b.ID, adminActor, "delete")
	assert.ErrorIs(t, err, ErrInvalidAction)
}

// ==== Availability / listings ====

func TestAvailability(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()

	approved := f.createBooking(t, studentID, hourSlot(10, 11))
	_, err := f.service.Approve(ctx, approved.ID, adminActor)
	require.NoError(t, err)

	// Pending bookings never appear in availability.
	f.createBooking(t, otherStudentID, hourSlot(12, 13))

	// Cancelled approved bookings do not appear either.
	toCancel := f.createBooking(t, studentID, hourSlot(14, 15))
	_, err = f.service.Approve(ctx, toCancel.ID, adminActor)
	require.NoError(t, err)
	_, err = f.service.Cancel(ctx, toCancel.ID, studentActor)
	require.NoError(t, err)

	// A booking on another day is outside the window.
	nextDay := Slot{Start: hourSlot(10, 11).Start.AddDate(0, 0, 1), End: hourSlot(10, 11).End.AddDate(0, 0, 1)}
	other := f.createBooking(t, studentID, nextDay)
	_, err = f.service.Approve(ctx, other.ID, adminActor)
	require.NoError(t, err)

	avail, err := f.service.Availability(ctx, testFacilityID, hourSlot(10, 11).Start)
	require.NoError(t, err)

	assert.Equal(t, 3, avail.MaxCapacity)
	require.Len(t, avail.Slots, 1)
	assert.Equal(t, approved.ID, avail.Slots[0].ID)

	_, err = f.service.Availability(ctx, "fac-missing", hourSlot(10, 11).Start)
	assert.ErrorIs(t, err, ErrFacilityNotFound)
}

func TestListMine(t *testing.T) {
	f := newFixture(t, 5)

	f.createBooking(t, studentID, hourSlot(8, 9))
	f.createBooking(t, studentID, hourSlot(9, 10))
	f.createBooking(t, otherStudentID, hourSlot(10, 11))

	mine, err := f.service.ListMine(context.Background(), studentID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	for _, b := range mine {
		assert.Equal(t, studentID, b.UserID)
	}
}

func TestListPendingRequiresAdmin(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()

	f.createBooking(t, studentID, hourSlot(8, 9))
	approved := f.createBooking(t, otherStudentID, hourSlot(9, 10))
	_, err := f.service.Approve(ctx, approved.ID, adminActor)
	require.NoError(t, err)

	_, err = f.service.ListPending(ctx, studentActor)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	pending, err := f.service.ListPending(ctx, adminActor)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, StatusPending, pending[0].Status)
}
