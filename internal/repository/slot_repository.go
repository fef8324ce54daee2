package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/couvev/WashUp-Backend/internal/model"
)

// SlotRepo owns the slot ledger: all slots of one car wash for one
// calendar date, keyed by (car_wash_id, slot_date) with unique
// slot_time values inside a day. It is the only component that writes
// slot status transitions. Both transitions are expressed as
// conditional updates on the slot's prior status, so two writers can
// never both succeed on the same slot regardless of interleaving; a
// plain read-modify-write of the whole day would not give that
// guarantee.
type SlotRepo struct {
	db *sql.DB
}

// NewSlotRepo returns a new SlotRepo bound to the given database.
func NewSlotRepo(db *sql.DB) *SlotRepo { return &SlotRepo{db: db} }

// ErrSlotExists is returned by SeedDay when a time being seeded
// collides with an existing slot for the same car wash and date.
var ErrSlotExists = errors.New("slot already exists")

// storeError tags backing-store failures so callers can recognise a
// connectivity problem behind any repository call. Context
// cancellations and sentinel errors pass through untouched.
func storeError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

const slotColumns = "id, car_wash_id, slot_date, slot_time, status, booked_by, service, created_at, updated_at"

// scanSlot reads one slots row from the given scanner, converting the
// nullable booking columns into pointers.
func scanSlot(row interface{ Scan(...interface{}) error }) (*model.Slot, error) {
	var (
		s        model.Slot
		bookedBy sql.NullInt64
		service  sql.NullString
	)
	err := row.Scan(&s.ID, &s.CarWashID, &s.Date, &s.Time, &s.Status, &bookedBy, &service, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if bookedBy.Valid {
		uid := uint64(bookedBy.Int64)
		s.BookedBy = &uid
	}
	if service.Valid {
		sv := service.String
		s.Service = &sv
	}
	return &s, nil
}

// ListByWashAndDate returns every slot of the ledger for the given car
// wash and date ordered by time ascending. An absent ledger yields an
// empty slice, not an error.
func (r *SlotRepo) ListByWashAndDate(ctx context.Context, washID uint64, date string) ([]model.Slot, error) {
	const q = `SELECT ` + slotColumns + ` FROM slots
	           WHERE car_wash_id = ? AND slot_date = ?
	           ORDER BY slot_time ASC`
	return r.listSlots(ctx, q, washID, date)
}

// ListAvailableByWashAndDate is ListByWashAndDate restricted to slots
// that are currently free. The ordering makes the listing deterministic
// and restartable for clients that poll.
func (r *SlotRepo) ListAvailableByWashAndDate(ctx context.Context, washID uint64, date string) ([]model.Slot, error) {
	const q = `SELECT ` + slotColumns + ` FROM slots
	           WHERE car_wash_id = ? AND slot_date = ? AND status = ?
	           ORDER BY slot_time ASC`
	return r.listSlots(ctx, q, washID, date, model.SlotStatusAvailable)
}

func (r *SlotRepo) listSlots(ctx context.Context, q string, args ...interface{}) ([]model.Slot, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, storeError(err)
	}
	defer rows.Close()
	out := make([]model.Slot, 0)
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, storeError(err)
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError(err)
	}
	return out, nil
}

// HasDay reports whether a ledger has been seeded for the given car
// wash and date. The write path uses this to distinguish "no ledger"
// from "no such time" before attempting a reservation.
func (r *SlotRepo) HasDay(ctx context.Context, washID uint64, date string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM slots WHERE car_wash_id = ? AND slot_date = ?)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, washID, date).Scan(&exists); err != nil {
		return false, storeError(err)
	}
	return exists, nil
}

// SeedDay bulk-inserts available slots for one car wash and date, one
// row per time value. The unique key on (car_wash_id, slot_date,
// slot_time) rejects duplicate times, reported as ErrSlotExists.
// Passing an empty slice has no effect and returns nil.
func (r *SlotRepo) SeedDay(ctx context.Context, washID uint64, date string, times []string) error {
	if len(times) == 0 {
		return nil
	}
	query := `INSERT INTO slots (car_wash_id, slot_date, slot_time, status) VALUES `
	args := make([]interface{}, 0, len(times)*4)
	for i, t := range times {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, washID, date, t, model.SlotStatusAvailable)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if strings.Contains(err.Error(), "1062") {
			return ErrSlotExists
		}
		return storeError(err)
	}
	return nil
}

// Reserve flips one slot from AVAILABLE to BOOKED and binds the
// requester and service in the same statement. The status check inside
// the WHERE clause is the compare-and-set: when two reservations race
// on the same slot, exactly one UPDATE matches a row and the other
// observes zero affected rows. A follow-up read distinguishes a missing
// time from a lost race. The whole exchange runs in one transaction so
// the returned slot is the row as this reservation wrote it, not as
// some later transition left it.
func (r *SlotRepo) Reserve(ctx context.Context, washID uint64, date, timeOfDay string, userID uint64, service string) (*model.Slot, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storeError(err)
	}
	defer func() { _ = tx.Rollback() }()

	const upd = `UPDATE slots SET status = ?, booked_by = ?, service = ?
	             WHERE car_wash_id = ? AND slot_date = ? AND slot_time = ? AND status = ?`
	res, err := tx.ExecContext(ctx, upd,
		model.SlotStatusBooked, userID, service,
		washID, date, timeOfDay, model.SlotStatusAvailable)
	if err != nil {
		return nil, storeError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, storeError(err)
	}
	if n == 0 {
		const sel = `SELECT status FROM slots WHERE car_wash_id = ? AND slot_date = ? AND slot_time = ?`
		var status string
		err := tx.QueryRowContext(ctx, sel, washID, date, timeOfDay).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		if err != nil {
			return nil, storeError(err)
		}
		// The slot existed but was not AVAILABLE at update time.
		return nil, ErrAlreadyBooked
	}
	const sel = `SELECT ` + slotColumns + ` FROM slots WHERE car_wash_id = ? AND slot_date = ? AND slot_time = ?`
	s, err := scanSlot(tx.QueryRowContext(ctx, sel, washID, date, timeOfDay))
	if err != nil {
		return nil, storeError(err)
	}
	if err := tx.Commit(); err != nil {
		return nil, storeError(err)
	}
	return s, nil
}

// Release flips one slot from BOOKED back to AVAILABLE and clears the
// booking columns, conditioned on the slot currently being booked by
// the given user. Cancelling a slot that does not exist or is already
// available is reported as ErrBookingNotFound so callers never mistake
// "nothing to cancel" for a successful cancellation; a slot booked by a
// different user yields ErrForbidden and stays booked. On success the
// released slot is returned for event publication.
func (r *SlotRepo) Release(ctx context.Context, slotID, userID uint64) (*model.Slot, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storeError(err)
	}
	defer func() { _ = tx.Rollback() }()

	const upd = `UPDATE slots SET status = ?, booked_by = NULL, service = NULL
	             WHERE id = ? AND status = ? AND booked_by = ?`
	res, err := tx.ExecContext(ctx, upd, model.SlotStatusAvailable, slotID, model.SlotStatusBooked, userID)
	if err != nil {
		return nil, storeError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, storeError(err)
	}
	if n == 0 {
		const sel = `SELECT status, booked_by FROM slots WHERE id = ?`
		var (
			status   string
			bookedBy sql.NullInt64
		)
		err := tx.QueryRowContext(ctx, sel, slotID).Scan(&status, &bookedBy)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		if err != nil {
			return nil, storeError(err)
		}
		// Booked, but by someone else.
		if status == model.SlotStatusBooked && bookedBy.Valid && uint64(bookedBy.Int64) != userID {
			return nil, ErrForbidden
		}
		return nil, ErrBookingNotFound
	}
	const sel = `SELECT ` + slotColumns + ` FROM slots WHERE id = ?`
	s, err := scanSlot(tx.QueryRowContext(ctx, sel, slotID))
	if err != nil {
		return nil, storeError(err)
	}
	if err := tx.Commit(); err != nil {
		return nil, storeError(err)
	}
	return s, nil
}

// GetByID fetches a single slot by its primary key. It returns
// ErrSlotNotFound when no row exists.
func (r *SlotRepo) GetByID(ctx context.Context, slotID uint64) (*model.Slot, error) {
	const q = `SELECT ` + slotColumns + ` FROM slots WHERE id = ?`
	s, err := scanSlot(r.db.QueryRowContext(ctx, q, slotID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, storeError(err)
	}
	return s, nil
}

// BookingDetail is the customer-facing view of a booked slot joined
// with its car wash. It is returned by ListBookedBy for display in the
// "my bookings" listing.
type BookingDetail struct {
	SlotID      uint64 `json:"slot_id"`
	CarWashID   uint64 `json:"car_wash_id"`
	CarWashName string `json:"car_wash_name"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Service     string `json:"service"`
}

// ListBookedBy returns every slot currently booked by the given user,
// newest date first, times ascending within a date. When the user has
// no bookings an empty slice is returned.
func (r *SlotRepo) ListBookedBy(ctx context.Context, userID uint64) ([]BookingDetail, error) {
	const q = `SELECT s.id, s.car_wash_id, w.name, s.slot_date, s.slot_time, s.service
	           FROM slots s
	           JOIN car_washes w ON w.id = s.car_wash_id
	           WHERE s.booked_by = ? AND s.status = ?
	           ORDER BY s.slot_date DESC, s.slot_time ASC`
	rows, err := r.db.QueryContext(ctx, q, userID, model.SlotStatusBooked)
	if err != nil {
		return nil, storeError(err)
	}
	defer rows.Close()
	out := make([]BookingDetail, 0)
	for rows.Next() {
		var (
			d       BookingDetail
			service sql.NullString
		)
		if err := rows.Scan(&d.SlotID, &d.CarWashID, &d.CarWashName, &d.Date, &d.Time, &service); err != nil {
			return nil, storeError(err)
		}
		if service.Valid {
			d.Service = service.String
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError(err)
	}
	return out, nil
}
