package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/couvev/WashUp-Backend/internal/model"
	"github.com/couvev/WashUp-Backend/internal/queue"
	"github.com/couvev/WashUp-Backend/internal/repository"
)

// fakeLedger is an in-memory SlotLedger with the same compare-and-set
// semantics as the SQL implementation: transitions are conditioned on
// the slot's prior status under a single lock, so concurrent reserves
// of one slot produce exactly one winner.
type fakeLedger struct {
	mu           sync.Mutex
	slots        []model.Slot
	nextID       uint64
	reserveCalls int
}

func newFakeLedger() *fakeLedger { return &fakeLedger{nextID: 1} }

func (f *fakeLedger) seed(washID uint64, date string, times ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range times {
		f.slots = append(f.slots, model.Slot{
			ID:        f.nextID,
			CarWashID: washID,
			Date:      date,
			Time:      t,
			Status:    model.SlotStatusAvailable,
		})
		f.nextID++
	}
}

func (f *fakeLedger) ListAvailableByWashAndDate(_ context.Context, washID uint64, date string) ([]model.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Slot, 0)
	for _, s := range f.slots {
		if s.CarWashID == washID && s.Date == date && s.Status == model.SlotStatusAvailable {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out, nil
}

func (f *fakeLedger) HasDay(_ context.Context, washID uint64, date string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.slots {
		if s.CarWashID == washID && s.Date == date {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLedger) Reserve(_ context.Context, washID uint64, date, timeOfDay string, userID uint64, service string) (*model.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reserveCalls++
	for i := range f.slots {
		s := &f.slots[i]
		if s.CarWashID != washID || s.Date != date || s.Time != timeOfDay {
			continue
		}
		if s.Status != model.SlotStatusAvailable {
			return nil, repository.ErrAlreadyBooked
		}
		s.Status = model.SlotStatusBooked
		uid, svc := userID, service
		s.BookedBy = &uid
		s.Service = &svc
		cp := *s
		return &cp, nil
	}
	return nil, repository.ErrSlotNotFound
}

func (f *fakeLedger) Release(_ context.Context, slotID, userID uint64) (*model.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.slots {
		s := &f.slots[i]
		if s.ID != slotID {
			continue
		}
		if s.Status != model.SlotStatusBooked {
			return nil, repository.ErrBookingNotFound
		}
		if s.BookedBy == nil || *s.BookedBy != userID {
			return nil, repository.ErrForbidden
		}
		s.Status = model.SlotStatusAvailable
		s.BookedBy = nil
		s.Service = nil
		cp := *s
		return &cp, nil
	}
	return nil, repository.ErrBookingNotFound
}

func (f *fakeLedger) ListBookedBy(_ context.Context, userID uint64) ([]repository.BookingDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]repository.BookingDetail, 0)
	for _, s := range f.slots {
		if s.Status == model.SlotStatusBooked && s.BookedBy != nil && *s.BookedBy == userID {
			d := repository.BookingDetail{SlotID: s.ID, CarWashID: s.CarWashID, Date: s.Date, Time: s.Time}
			if s.Service != nil {
				d.Service = *s.Service
			}
			out = append(out, d)
		}
	}
	return out, nil
}

// fakeDirectory answers Exists from a fixed id set; used for both the
// car-wash and account directories.
type fakeDirectory struct{ ids map[uint64]bool }

func (f *fakeDirectory) Exists(_ context.Context, id uint64) (bool, error) {
	return f.ids[id], nil
}

// capturePublisher records published events.
type capturePublisher struct {
	mu     sync.Mutex
	events []queue.SlotEvent
}

func (p *capturePublisher) Publish(_ context.Context, ev queue.SlotEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

const (
	washW1 = uint64(1)
	userU1 = uint64(10)
	userU2 = uint64(11)
	dateD1 = "2025-06-01"
)

func newTestService(ledger *fakeLedger) (*BookingService, *capturePublisher) {
	pub := &capturePublisher{}
	svc := NewBookingService(
		ledger,
		&fakeDirectory{ids: map[uint64]bool{washW1: true}},
		&fakeDirectory{ids: map[uint64]bool{userU1: true, userU2: true}},
		pub,
	)
	return svc, pub
}

func TestReserveBooksAvailableSlot(t *testing.T) {
	ledger := newFakeLedger()
	ledger.seed(washW1, dateD1, "09:00", "10:00")
	svc, pub := newTestService(ledger)

	slot, err := svc.Reserve(context.Background(), washW1, dateD1, "09:00", userU1, "wax")
	if err != nil {
		t.Fatalf("Reserve returned error: %v", err)
	}
	if slot.Time != "09:00" || slot.Status != model.SlotStatusBooked {
		t.Fatalf("unexpected slot: %+v", slot)
	}
	if slot.BookedBy == nil || *slot.BookedBy != userU1 {
		t.Fatalf("slot not bound to requester: %+v", slot)
	}
	if slot.Service == nil || *slot.Service != "wax" {
		t.Fatalf("slot not bound to service: %+v", slot)
	}
	if len(pub.events) != 1 || pub.events[0].Type != queue.EventSlotBooked {
		t.Fatalf("expected one booked event, got %+v", pub.events)
	}
}

func TestReserveAlreadyBookedIsIdempotentRejection(t *testing.T) {
	ledger := newFakeLedger()
	ledger.seed(washW1, dateD1, "09:00")
	svc, _ := newTestService(ledger)
	ctx := context.Background()

	if _, err := svc.Reserve(ctx, washW1, dateD1, "09:00", userU1, "wax"); err != nil {
		t.Fatalf("first Reserve: %v", err)
	}
	_, err := svc.Reserve(ctx, washW1, dateD1, "09:00", userU2, "polish")
	if !errors.Is(err, repository.ErrAlreadyBooked) {
		t.Fatalf("expected ErrAlreadyBooked, got %v", err)
	}
	// The original booking must be untouched.
	slot, err := svc.Cancel(ctx, ledger.slots[0].ID, userU1)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if slot.Time != "09:00" {
		t.Fatalf("cancelled wrong slot: %+v", slot)
	}
}

func TestReserveUnknownCarWashMutatesNothing(t *testing.T) {
	ledger := newFakeLedger()
	ledger.seed(washW1, dateD1, "09:00")
	svc, _ := newTestService(ledger)

	_, err := svc.Reserve(context.Background(), 999, dateD1, "09:00", userU1, "wax")
	if !errors.Is(err, repository.ErrCarWashNotFound) {
		t.Fatalf("expected ErrCarWashNotFound, got %v", err)
	}
	if ledger.reserveCalls != 0 {
		t.Fatalf("ledger touched %d times for unknown car wash", ledger.reserveCalls)
	}
}

func TestReserveUnknownAccount(t *testing.T) {
	ledger := newFakeLedger()
	ledger.seed(washW1, dateD1, "09:00")
	svc, _ := newTestService(ledger)

	_, err := svc.Reserve(context.Background(), washW1, dateD1, "09:00", 999, "wax")
	if !errors.Is(err, repository.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	if ledger.reserveCalls != 0 {
		t.Fatalf("ledger touched for unknown account")
	}
}

func TestReserveUnseededDate(t *testing.T) {
	ledger := newFakeLedger()
	ledger.seed(washW1, dateD1, "09:00")
	svc, _ := newTestService(ledger)

	_, err := svc.Reserve(context.Background(), washW1, "2025-06-02", "09:00", userU1, "wax")
	if !errors.Is(err, repository.ErrNoAvailabilityForDate) {
		t.Fatalf("expected ErrNoAvailabilityForDate, got %v", err)
	}
}

func TestReserveUnknownTime(t *testing.T) {
	ledger := newFakeLedger()
	ledger.seed(washW1, dateD1, "09:00")
	svc, _ := newTestService(ledger)

	_, err := svc.Reserve(context.Background(), washW1, dateD1, "23:00", userU1, "wax")
	if !errors.Is(err, repository.ErrSlotNotFound) {
		t.Fatalf("expected ErrSlotNotFound, got %v", err)
	}
}

func TestCancelRoundTrip(t *testing.T) {
	ledger := newFakeLedger()
	ledger.seed(washW1, dateD1, "09:00", "10:00")
	svc, pub := newTestService(ledger)
	ctx := context.Background()

	slot, err := svc.Reserve(ctx, washW1, dateD1, "09:00", userU1, "wax")
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if _, err := svc.Cancel(ctx, slot.ID, userU1); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	avail, err := svc.ListAvailable(ctx, washW1, dateD1)
	if err != nil {
		t.Fatalf("ListAvailable: %v", err)
	}
	if len(avail) != 2 || avail[0].Time != "09:00" {
		t.Fatalf("expected 09:00 available again, got %+v", avail)
	}

	// Available -> Booked -> Available -> Booked.
	if _, err := svc.Reserve(ctx, washW1, dateD1, "09:00", userU2, "polish"); err != nil {
		t.Fatalf("re-Reserve after Cancel: %v", err)
	}

	var cancelled int
	for _, ev := range pub.events {
		if ev.Type == queue.EventSlotCancelled {
			cancelled++
		}
	}
	if cancelled != 1 {
		t.Fatalf("expected one cancelled event, got %d", cancelled)
	}
}

func TestCancelAvailableSlotIsNotSilentSuccess(t *testing.T) {
	ledger := newFakeLedger()
	ledger.seed(washW1, dateD1, "09:00")
	svc, _ := newTestService(ledger)

	_, err := svc.Cancel(context.Background(), ledger.slots[0].ID, userU1)
	if !errors.Is(err, repository.ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}
}

func TestCancelUnknownSlot(t *testing.T) {
	svc, _ := newTestService(newFakeLedger())

	_, err := svc.Cancel(context.Background(), 12345, userU1)
	if !errors.Is(err, repository.ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}
}

func TestCancelForeignBookingForbidden(t *testing.T) {
	ledger := newFakeLedger()
	ledger.seed(washW1, dateD1, "09:00")
	svc, pub := newTestService(ledger)
	ctx := context.Background()

	slot, err := svc.Reserve(ctx, washW1, dateD1, "09:00", userU1, "wax")
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	_, err = svc.Cancel(ctx, slot.ID, userU2)
	if !errors.Is(err, repository.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	// The booking must survive the foreign cancel attempt.
	if got := ledger.slots[0]; got.Status != model.SlotStatusBooked || got.BookedBy == nil || *got.BookedBy != userU1 {
		t.Fatalf("booking mutated by foreign cancel: %+v", got)
	}
	for _, ev := range pub.events {
		if ev.Type == queue.EventSlotCancelled {
			t.Fatalf("cancelled event published for a rejected cancel")
		}
	}
	// The holder can still cancel.
	if _, err := svc.Cancel(ctx, slot.ID, userU1); err != nil {
		t.Fatalf("Cancel by holder: %v", err)
	}
}

func TestListAvailableOmitsBookedAndSorts(t *testing.T) {
	ledger := newFakeLedger()
	ledger.seed(washW1, dateD1, "10:00", "08:00", "09:00")
	svc, _ := newTestService(ledger)
	ctx := context.Background()

	if _, err := svc.Reserve(ctx, washW1, dateD1, "09:00", userU1, "wax"); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	avail, err := svc.ListAvailable(ctx, washW1, dateD1)
	if err != nil {
		t.Fatalf("ListAvailable: %v", err)
	}
	if len(avail) != 2 {
		t.Fatalf("expected 2 available slots, got %d", len(avail))
	}
	if avail[0].Time != "08:00" || avail[1].Time != "10:00" {
		t.Fatalf("availability not sorted by time: %+v", avail)
	}
}

func TestListAvailableEmptyForUnseededDate(t *testing.T) {
	svc, _ := newTestService(newFakeLedger())

	avail, err := svc.ListAvailable(context.Background(), washW1, "2030-01-01")
	if err != nil {
		t.Fatalf("ListAvailable on absent ledger must not error, got %v", err)
	}
	if len(avail) != 0 {
		t.Fatalf("expected empty availability, got %+v", avail)
	}
}

func TestConcurrentReserveHasExactlyOneWinner(t *testing.T) {
	ledger := newFakeLedger()
	ledger.seed(washW1, dateD1, "09:00")
	svc, _ := newTestService(ledger)

	const n = 32
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Reserve(context.Background(), washW1, dateD1, "09:00", userU1, "wax")
		}(i)
	}
	wg.Wait()

	var wins, losses int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, repository.ErrAlreadyBooked):
			losses++
		default:
			t.Fatalf("unexpected error under contention: %v", err)
		}
	}
	if wins != 1 || losses != n-1 {
		t.Fatalf("expected 1 winner and %d ErrAlreadyBooked, got %d/%d", n-1, wins, losses)
	}
}

// A successful reserve must return the slot exactly as its own
// transition wrote it, even when cancels race against it.
func TestReserveReturnsOwnTransition(t *testing.T) {
	ledger := newFakeLedger()
	ledger.seed(washW1, dateD1, "09:00")
	svc, _ := newTestService(ledger)
	ctx := context.Background()
	slotID := ledger.slots[0].ID

	const rounds = 100
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			slot, err := svc.Reserve(ctx, washW1, dateD1, "09:00", userU1, "wax")
			if err != nil {
				continue
			}
			if slot.Status != model.SlotStatusBooked || slot.BookedBy == nil || *slot.BookedBy != userU1 {
				t.Errorf("reserve returned a slot it did not write: %+v", slot)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			_, _ = svc.Cancel(ctx, slotID, userU1)
		}
	}()
	wg.Wait()
}

func TestMyBookings(t *testing.T) {
	ledger := newFakeLedger()
	ledger.seed(washW1, dateD1, "09:00", "10:00")
	svc, _ := newTestService(ledger)
	ctx := context.Background()

	if _, err := svc.Reserve(ctx, washW1, dateD1, "10:00", userU1, "wax"); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	mine, err := svc.MyBookings(ctx, userU1)
	if err != nil {
		t.Fatalf("MyBookings: %v", err)
	}
	if len(mine) != 1 || mine[0].Time != "10:00" || mine[0].Service != "wax" {
		t.Fatalf("unexpected bookings: %+v", mine)
	}
	other, err := svc.MyBookings(ctx, userU2)
	if err != nil {
		t.Fatalf("MyBookings: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected no bookings for other user, got %+v", other)
	}
}
