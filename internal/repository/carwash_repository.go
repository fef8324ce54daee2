// This file defines repository methods for the car-wash directory. The
// directory is a read-mostly catalog: a car wash is registered once by
// an administrator and only ever read by the booking flow afterwards.
// Only lookup and listing operations exist besides Create; there is no
// update path.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/couvev/WashUp-Backend/internal/model"
)

// CarWashRepo encapsulates all database queries related to car washes.
// It depends on a sql.DB connection which should be configured
// elsewhere.
type CarWashRepo struct {
	db *sql.DB
}

// NewCarWashRepo constructs a CarWashRepo with the provided DB handle.
// This function allows dependency injection of the database in tests
// and at startup.
func NewCarWashRepo(db *sql.DB) *CarWashRepo {
	return &CarWashRepo{db: db}
}

const carWashColumns = "id, name, address, phone, avg_price_cents, opens_at, closes_at, description, services, created_at, updated_at"

func scanCarWash(row interface{ Scan(...interface{}) error }) (*model.CarWash, error) {
	var (
		w        model.CarWash
		services string
	)
	err := row.Scan(&w.ID, &w.Name, &w.Address, &w.Phone, &w.AvgPriceCents,
		&w.OpensAt, &w.ClosesAt, &w.Description, &services, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	w.Services = splitServices(services)
	return &w, nil
}

// splitServices converts the CSV services column into a slice, dropping
// empty entries.
func splitServices(csv string) []string {
	out := make([]string, 0)
	for _, s := range strings.Split(csv, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Create inserts a new car wash into the database. On success the ID
// field is populated with the auto-generated value and a follow-up
// SELECT fills the timestamp defaults so callers receive a fully
// populated record.
func (r *CarWashRepo) Create(ctx context.Context, w *model.CarWash) error {
	const qInsert = `INSERT INTO car_washes
	                 (name, address, phone, avg_price_cents, opens_at, closes_at, description, services)
	                 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert,
		w.Name, w.Address, w.Phone, w.AvgPriceCents,
		w.OpensAt, w.ClosesAt, w.Description, strings.Join(w.Services, ","))
	if err != nil {
		return storeError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return storeError(err)
	}
	w.ID = uint64(id)

	const qSelect = `SELECT created_at, updated_at FROM car_washes WHERE id = ?`
	if err := r.db.QueryRowContext(ctx, qSelect, w.ID).Scan(&w.CreatedAt, &w.UpdatedAt); err != nil {
		return storeError(err)
	}
	return nil
}

// GetByID fetches a car wash by its ID. It returns ErrCarWashNotFound
// if no row is found.
func (r *CarWashRepo) GetByID(ctx context.Context, id uint64) (*model.CarWash, error) {
	const q = `SELECT ` + carWashColumns + ` FROM car_washes WHERE id = ?`
	w, err := scanCarWash(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCarWashNotFound
	}
	if err != nil {
		return nil, storeError(err)
	}
	return w, nil
}

// Exists reports whether a car wash with the given ID is registered.
// The booking service uses this to validate the target before touching
// the slot ledger.
func (r *CarWashRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM car_washes WHERE id = ?)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&exists); err != nil {
		return false, storeError(err)
	}
	return exists, nil
}

// List returns all registered car washes ordered by id.
func (r *CarWashRepo) List(ctx context.Context) ([]*model.CarWash, error) {
	const q = `SELECT ` + carWashColumns + ` FROM car_washes ORDER BY id`
	return r.listCarWashes(ctx, q)
}

// SearchByName returns car washes whose name contains the given term,
// case-insensitively, ordered by name. An empty term behaves like List.
func (r *CarWashRepo) SearchByName(ctx context.Context, term string) ([]*model.CarWash, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return r.List(ctx)
	}
	const q = `SELECT ` + carWashColumns + ` FROM car_washes
	           WHERE LOWER(name) LIKE ? ORDER BY name`
	return r.listCarWashes(ctx, q, "%"+strings.ToLower(term)+"%")
}

func (r *CarWashRepo) listCarWashes(ctx context.Context, q string, args ...interface{}) ([]*model.CarWash, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, storeError(err)
	}
	defer rows.Close()
	out := make([]*model.CarWash, 0)
	for rows.Next() {
		w, err := scanCarWash(rows)
		if err != nil {
			return nil, storeError(err)
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError(err)
	}
	return out, nil
}
