// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// booking service and handlers to distinguish between failure scenarios
// without inspecting error strings. Every value here is a
// recoverable-by-caller condition; none of them should crash the
// process.
package repository

import "errors"

// ErrCarWashNotFound is returned when the referenced car wash does not
// exist in the directory. Handlers translate this into HTTP 404.
var ErrCarWashNotFound = errors.New("car wash not found")

// ErrAccountNotFound is returned when the booking requester does not
// correspond to a registered account.
var ErrAccountNotFound = errors.New("account not found")

// ErrNoAvailabilityForDate is returned on the write path when no slot
// ledger has been seeded for the requested car wash and date. The read
// path treats an absent ledger as an empty list instead.
var ErrNoAvailabilityForDate = errors.New("no availability for date")

// ErrSlotNotFound is returned when the ledger exists but contains no
// entry for the requested time.
var ErrSlotNotFound = errors.New("slot not found")

// ErrAlreadyBooked is returned when a reserve targets a slot that is
// already booked. The rejection is idempotent; the losing caller
// observes this error and no state is mutated.
var ErrAlreadyBooked = errors.New("slot already booked")

// ErrBookingNotFound is returned when a cancel targets a slot that does
// not exist or is already available. Cancelling an available slot is a
// no-op failure, never a silent success, so callers can distinguish
// "nothing to cancel" from "cancelled".
var ErrBookingNotFound = errors.New("booking not found")

// ErrForbidden is returned when the caller attempts an operation on a
// booking held by a different user. Handlers translate this into HTTP
// 403 rather than 404 so the caller learns the booking exists but is
// not theirs to touch.
var ErrForbidden = errors.New("forbidden")

// ErrEmailExists is returned when a registration reuses an email
// address already present in the users table.
var ErrEmailExists = errors.New("email already exists")

// ErrStoreUnavailable wraps backing-store connectivity failures. It is
// the only condition the surrounding layer logs as an operational
// alert. Retrying is left to the caller; reserve and cancel are safe to
// retry because they are conditioned on the target state.
var ErrStoreUnavailable = errors.New("store unavailable")
