package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*Booking, error)
	ListPending(ctx context.Context) ([]*Booking, error)

	// ListApprovedStartingIn returns approved, non-cancelled bookings whose
	// slot starts within [window.Start, window.End).
	ListApprovedStartingIn(ctx context.Context, facilityID string, window Slot) ([]*Booking, error)

	// ConflictCount counts bookings for the facility that consume capacity for
	// the given interval (approved, not cancelled, overlapping), optionally
	// excluding one booking id. Half-open interval semantics.
	ConflictCount(ctx context.Context, facilityID string, slot Slot, excludeID string) (int, error)

	// ApproveWithinCapacity atomically re-checks the conflict count and flips
	// the booking from pending to approved in one transaction, holding a
	// per-facility advisory lock so concurrent approvals for the same facility
	// are strictly ordered. Returns ErrAlreadyProcessed or ErrCapacityExceeded
	// without changing the record.
	ApproveWithinCapacity(ctx context.Context, id, responderID string, capacity int) error

	// Reject flips a pending booking to rejected with responder and reason.
	Reject(ctx context.Context, id, responderID, reason string) error

	// Cancel sets the cancellation overlay; fails with ErrAlreadyCancelled if set.
	Cancel(ctx context.Context, id, cancellerID string) error

	// ForceApprove sets status=approved without any capacity check (override).
	ForceApprove(ctx context.Context, id, responderID string) error

	// ForceCancel sets the cancellation overlay unconditionally (override).
	ForceCancel(ctx context.Context, id, cancellerID string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

const bookingSelect = `
	b.id, b.facility_id, f.name, b.user_id, u.name,
	b.start_time, b.end_time, b.status,
	b.recurring_enabled, b.recurring_pattern, b.recurring_end_date,
	b.responded_by, b.responded_at, b.rejection_reason,
	b.cancelled_at, b.cancelled_by, b.created_at, b.updated_at
`

const bookingFrom = `
	public.bookings b
	JOIN public.facilities f ON b.facility_id = f.id
	JOIN public.users u ON b.user_id = u.id
`

// Capacity-consumption predicate shared by every conflict query:
// approved, not cancelled, half-open overlap with [$2, $3), not $4 itself.
const conflictCountQuery = `
	SELECT count(*)
	FROM public.bookings
	WHERE facility_id = $1
	  AND status = 'approved'
	  AND cancelled_at IS NULL
	  AND start_time < $3
	  AND end_time > $2
	  AND ($4::text = '' OR id::text <> $4::text)
`

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	var pattern *string
	if err := row.Scan(
		&b.ID, &b.FacilityID, &b.FacilityName, &b.UserID, &b.UserName,
		&b.Slot.Start, &b.Slot.End, &b.Status,
		&b.Recurrence.Enabled, &pattern, &b.Recurrence.EndDate,
		&b.RespondedBy, &b.RespondedAt, &b.RejectionReason,
		&b.CancelledAt, &b.CancelledBy, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if pattern != nil {
		b.Recurrence.Pattern = RecurrencePattern(*pattern)
	}
	return &b, nil
}

func (r *pgxRepository) Create(ctx context.Context, b *Booking) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	var pattern *string
	if b.Recurrence.Enabled {
		p := string(b.Recurrence.Pattern)
		pattern = &p
	}

	query, args, err := psql.Insert("public.bookings").
		Columns("facility_id", "user_id", "start_time", "end_time", "status",
			"recurring_enabled", "recurring_pattern", "recurring_end_date").
		Values(b.FacilityID, b.UserID, b.Slot.Start, b.Slot.End, b.Status,
			b.Recurrence.Enabled, pattern, b.Recurrence.EndDate).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	return r.pool.QueryRow(ctx, query, args...).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE b.id = $1`, bookingSelect, bookingFrom)

	b, err := scanBooking(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*Booking, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM %s WHERE b.user_id = $1 ORDER BY b.start_time DESC LIMIT $2`,
		bookingSelect, bookingFrom,
	)

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list bookings by user failed: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

func (r *pgxRepository) ListPending(ctx context.Context) ([]*Booking, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM %s WHERE b.status = 'pending' ORDER BY b.created_at ASC`,
		bookingSelect, bookingFrom,
	)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list pending bookings failed: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

func (r *pgxRepository) ListApprovedStartingIn(ctx context.Context, facilityID string, window Slot) ([]*Booking, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE b.facility_id = $1
		  AND b.status = 'approved'
		  AND b.cancelled_at IS NULL
		  AND b.start_time >= $2
		  AND b.start_time < $3
		ORDER BY b.start_time ASC`,
		bookingSelect, bookingFrom,
	)

	rows, err := r.pool.Query(ctx, query, facilityID, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("list approved bookings failed: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

func (r *pgxRepository) ConflictCount(ctx context.Context, facilityID string, slot Slot, excludeID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, conflictCountQuery, facilityID, slot.Start, slot.End, excludeID).
		Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("conflict count failed: %w", err)
	}
	return count, nil
}

func (r *pgxRepository) ApproveWithinCapacity(ctx context.Context, id, responderID string, capacity int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin approve tx failed: %w", err)
	}
	defer tx.Rollback(ctx)

	var facilityID string
	err = tx.QueryRow(ctx,
		`SELECT facility_id FROM public.bookings WHERE id = $1`, id,
	).Scan(&facilityID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("load booking for approval failed: %w", err)
	}

	// Serialize concurrent approvals per facility. Held until commit, so the
	// recount below always observes the latest committed approvals.
	if _, err := tx.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtext($1::text))`, facilityID,
	); err != nil {
		return fmt.Errorf("acquire facility lock failed: %w", err)
	}

	var status Status
	var slot Slot
	err = tx.QueryRow(ctx,
		`SELECT status, start_time, end_time FROM public.bookings WHERE id = $1 FOR UPDATE`, id,
	).Scan(&status, &slot.Start, &slot.End)
	if err != nil {
		return fmt.Errorf("reload booking under lock failed: %w", err)
	}
	if status != StatusPending {
		return ErrAlreadyProcessed
	}

	var count int
	err = tx.QueryRow(ctx, conflictCountQuery, facilityID, slot.Start, slot.End, id).
		Scan(&count)
	if err != nil {
		return fmt.Errorf("conflict count under lock failed: %w", err)
	}
	if count >= capacity {
		return ErrCapacityExceeded
	}

	_, err = tx.Exec(ctx, `
		UPDATE public.bookings
		SET status = 'approved', responded_by = $2, responded_at = now(), updated_at = now()
		WHERE id = $1 AND status = 'pending'`,
		id, responderID,
	)
	if err != nil {
		return fmt.Errorf("approve booking failed: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *pgxRepository) Reject(ctx context.Context, id, responderID, reason string) error {
	ct, err := r.pool.Exec(ctx, `
		UPDATE public.bookings
		SET status = 'rejected', responded_by = $2, responded_at = now(),
		    rejection_reason = $3, updated_at = now()
		WHERE id = $1 AND status = 'pending'`,
		id, responderID, reason,
	)
	if err != nil {
		return fmt.Errorf("reject booking failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return r.classifyMissedUpdate(ctx, id, StatusPending)
	}
	return nil
}

func (r *pgxRepository) Cancel(ctx context.Context, id, cancellerID string) error {
	ct, err := r.pool.Exec(ctx, `
		UPDATE public.bookings
		SET cancelled_at = now(), cancelled_by = $2, updated_at = now()
		WHERE id = $1 AND cancelled_at IS NULL`,
		id, cancellerID,
	)
	if err != nil {
		return fmt.Errorf("cancel booking failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		// Distinguish a missing booking from one already cancelled.
		var cancelled bool
		err := r.pool.QueryRow(ctx,
			`SELECT cancelled_at IS NOT NULL FROM public.bookings WHERE id = $1`, id,
		).Scan(&cancelled)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("classify cancel failure: %w", err)
		}
		return ErrAlreadyCancelled
	}
	return nil
}

func (r *pgxRepository) ForceApprove(ctx context.Context, id, responderID string) error {
	ct, err := r.pool.Exec(ctx, `
		UPDATE public.bookings
		SET status = 'approved', responded_by = $2, responded_at = now(), updated_at = now()
		WHERE id = $1`,
		id, responderID,
	)
	if err != nil {
		return fmt.Errorf("force approve failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) ForceCancel(ctx context.Context, id, cancellerID string) error {
	ct, err := r.pool.Exec(ctx, `
		UPDATE public.bookings
		SET cancelled_at = now(), cancelled_by = $2, updated_at = now()
		WHERE id = $1`,
		id, cancellerID,
	)
	if err != nil {
		return fmt.Errorf("force cancel failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// classifyMissedUpdate maps a zero-row conditional update to the right error:
// the booking either does not exist or is no longer in the required state.
func (r *pgxRepository) classifyMissedUpdate(ctx context.Context, id string, required Status) error {
	var status Status
	err := r.pool.QueryRow(ctx,
		`SELECT status FROM public.bookings WHERE id = $1`, id,
	).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("classify update failure: %w", err)
	}
	if status != required {
		return ErrAlreadyProcessed
	}
	return ErrNotFound
}

func collectBookings(rows pgx.Rows) ([]*Booking, error) {
	var bookings []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
