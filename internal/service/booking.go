// Package service contains the booking orchestration logic. The
// BookingService sits between the HTTP handlers and the slot ledger: it
// validates the booking target and requester against their directories
// and delegates the actual state transition to the ledger, whose
// conditional updates carry the atomicity guarantee. It performs no
// retries of its own; when two reservations race, the ledger produces
// exactly one winner and the loser surfaces ErrAlreadyBooked.
package service

import (
	"context"
	"log"
	"time"

	"github.com/couvev/WashUp-Backend/internal/model"
	"github.com/couvev/WashUp-Backend/internal/queue"
	"github.com/couvev/WashUp-Backend/internal/repository"
)

// SlotLedger is the slot persistence contract consumed by the booking
// service. The production implementation is repository.SlotRepo; tests
// substitute an in-memory fake with the same compare-and-set semantics.
type SlotLedger interface {
	ListAvailableByWashAndDate(ctx context.Context, washID uint64, date string) ([]model.Slot, error)
	HasDay(ctx context.Context, washID uint64, date string) (bool, error)
	Reserve(ctx context.Context, washID uint64, date, timeOfDay string, userID uint64, service string) (*model.Slot, error)
	Release(ctx context.Context, slotID, userID uint64) (*model.Slot, error)
	ListBookedBy(ctx context.Context, userID uint64) ([]repository.BookingDetail, error)
}

// WashDirectory exposes the read-only car-wash catalog lookups the
// booking service needs.
type WashDirectory interface {
	Exists(ctx context.Context, id uint64) (bool, error)
}

// AccountDirectory exposes the requester-existence check. The login
// flow owns authentication; booking only needs to know the account is
// registered.
type AccountDirectory interface {
	Exists(ctx context.Context, id uint64) (bool, error)
}

// EventPublisher delivers slot events to the message broker. Publish
// failures must never fail the booking operation itself.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.SlotEvent) error
}

// BookingService orchestrates reserve and cancel operations against the
// slot ledger. Construct it with NewBookingService; the publisher may
// be nil, in which case events are skipped.
type BookingService struct {
	ledger   SlotLedger
	washes   WashDirectory
	accounts AccountDirectory
	events   EventPublisher
}

// NewBookingService wires the booking service to its collaborators.
func NewBookingService(ledger SlotLedger, washes WashDirectory, accounts AccountDirectory, events EventPublisher) *BookingService {
	if ledger == nil || washes == nil || accounts == nil {
		panic("nil dependency passed to NewBookingService")
	}
	return &BookingService{ledger: ledger, washes: washes, accounts: accounts, events: events}
}

// ListAvailable returns the free slots of one car wash on one date,
// sorted by time ascending. An absent ledger yields an empty slice;
// callers cannot distinguish "never seeded" from "fully booked" on the
// read path, and do not need to.
func (s *BookingService) ListAvailable(ctx context.Context, washID uint64, date string) ([]model.Slot, error) {
	return s.ledger.ListAvailableByWashAndDate(ctx, washID, date)
}

// Reserve books the slot at the given time for the requester, binding
// the selected service. Validation order: car wash, requester, ledger
// presence, then the ledger's compare-and-set. Nothing is mutated when
// any validation fails. On success the booked slot is returned.
func (s *BookingService) Reserve(ctx context.Context, washID uint64, date, timeOfDay string, userID uint64, serviceName string) (*model.Slot, error) {
	ok, err := s.washes.Exists(ctx, washID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, repository.ErrCarWashNotFound
	}
	ok, err = s.accounts.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	ok, err = s.ledger.HasDay(ctx, washID, date)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, repository.ErrNoAvailabilityForDate
	}
	slot, err := s.ledger.Reserve(ctx, washID, date, timeOfDay, userID, serviceName)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, queue.SlotEvent{
		Type:       queue.EventSlotBooked,
		SlotID:     slot.ID,
		CarWashID:  slot.CarWashID,
		Date:       slot.Date,
		Time:       slot.Time,
		UserID:     userID,
		Service:    serviceName,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
	return slot, nil
}

// Cancel releases the booking held by the slot with the given identity,
// on behalf of the given user. A slot that does not exist or is already
// available yields ErrBookingNotFound; a slot booked by a different
// user yields ErrForbidden and is left untouched. The released slot is
// returned on success.
func (s *BookingService) Cancel(ctx context.Context, slotID, userID uint64) (*model.Slot, error) {
	slot, err := s.ledger.Release(ctx, slotID, userID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, queue.SlotEvent{
		Type:       queue.EventSlotCancelled,
		SlotID:     slot.ID,
		CarWashID:  slot.CarWashID,
		Date:       slot.Date,
		Time:       slot.Time,
		UserID:     userID,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
	return slot, nil
}

// MyBookings lists the slots currently booked by the given user.
func (s *BookingService) MyBookings(ctx context.Context, userID uint64) ([]repository.BookingDetail, error) {
	return s.ledger.ListBookedBy(ctx, userID)
}

// publish delivers an event best-effort; failures are logged and never
// propagated into the request flow.
func (s *BookingService) publish(ctx context.Context, ev queue.SlotEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		log.Printf("booking: publish %s event failed: %v", ev.Type, err)
	}
}
