package model

import "time"

// Slot status values. A slot is either free for booking or bound to a
// single requester. There is no intermediate hold state; the reserve
// operation is a one-step compare-and-set.
const (
	SlotStatusAvailable = "AVAILABLE"
	SlotStatusBooked    = "BOOKED"
)

// Slot is one bookable time unit for a car wash on a calendar date, as
// stored in the `slots` table. The (CarWashID, Date, Time) triple is
// unique; together all slots sharing a (CarWashID, Date) pair form that
// day's ledger.
//
// Date and Time are opaque strings assigned by the seeding caller
// ("2025-06-01", "09:00"). The backend compares them for equality and
// orders by them lexicographically but never parses them.
//
// Invariant: BookedBy and Service are non-nil exactly when Status is
// BOOKED. The only write paths for these columns are the two
// conditional updates in the slot repository, which set and clear them
// together with the status flip.
//
// Fields:
//  ID        – primary key identifier; the stable booking identity.
//  CarWashID – car wash this slot belongs to.
//  Date      – calendar date key of the ledger.
//  Time      – time-of-day key, unique within the ledger.
//  Status    – AVAILABLE or BOOKED.
//  BookedBy  – user who booked the slot (nil when available).
//  Service   – service selected at booking time (nil when available).
//  CreatedAt – timestamp of creation.
//  UpdatedAt – timestamp of last transition.
type Slot struct {
	ID        uint64    // slots.id
	CarWashID uint64    // slots.car_wash_id
	Date      string    // slots.slot_date
	Time      string    // slots.slot_time
	Status    string    // slots.status
	BookedBy  *uint64   // slots.booked_by (nullable)
	Service   *string   // slots.service (nullable)
	CreatedAt time.Time // slots.created_at
	UpdatedAt time.Time // slots.updated_at
}

// Booked reports whether the slot currently carries a booking.
func (s *Slot) Booked() bool { return s.Status == SlotStatusBooked }
