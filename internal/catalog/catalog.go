package catalog

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/thetoretto/hotpoint-bookings/internal/booking"
	"github.com/thetoretto/hotpoint-bookings/internal/domain"
)

// Memory is an in-memory reference-data catalog used in dev mode and
// tests. The postgres catalog is the production implementation.
type Memory struct {
	Routes    []domain.Route
	Vehicles  []domain.Vehicle
	Seats     []domain.Seat
	TimeSlots []domain.TimeSlot
	Extras    []domain.Extra
}

func (m *Memory) Route(_ context.Context, id int64) (*domain.Route, error) {
	for i := range m.Routes {
		if m.Routes[i].ID == id {
			r := m.Routes[i]
			return &r, nil
		}
	}
	return nil, nil
}

func (m *Memory) Vehicle(_ context.Context, id int64) (*domain.Vehicle, error) {
	for i := range m.Vehicles {
		if m.Vehicles[i].ID == id {
			v := m.Vehicles[i]
			return &v, nil
		}
	}
	return nil, nil
}

func (m *Memory) RouteVehicles(_ context.Context, routeID int64) ([]domain.Vehicle, error) {
	var out []domain.Vehicle
	for _, v := range m.Vehicles {
		if v.RouteID == routeID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *Memory) VehicleSeats(_ context.Context, vehicleID int64) ([]domain.Seat, error) {
	var out []domain.Seat
	for _, s := range m.Seats {
		if s.VehicleID == vehicleID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *Memory) TimeSlot(_ context.Context, id int64) (*domain.TimeSlot, error) {
	for i := range m.TimeSlots {
		if m.TimeSlots[i].ID == id {
			t := m.TimeSlots[i]
			return &t, nil
		}
	}
	return nil, nil
}

func (m *Memory) RouteTimeSlots(_ context.Context, routeID int64) ([]domain.TimeSlot, error) {
	var out []domain.TimeSlot
	for _, t := range m.TimeSlots {
		if t.RouteID == routeID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DepartsAt.Before(out[j].DepartsAt) })
	return out, nil
}

func (m *Memory) Extra(_ context.Context, id int64) (*domain.Extra, error) {
	for i := range m.Extras {
		if m.Extras[i].ID == id {
			e := m.Extras[i]
			return &e, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListRoutes(_ context.Context) ([]domain.Route, error) {
	return append([]domain.Route(nil), m.Routes...), nil
}

func (m *Memory) ListExtras(_ context.Context) ([]domain.Extra, error) {
	return append([]domain.Extra(nil), m.Extras...), nil
}

type slotSeat struct {
	slotID int64
	seatID int64
}

// MemoryFinalizer confirms bookings in memory. It enforces the same
// slot+seat uniqueness the postgres finalizer gets from its unique
// constraint, and is idempotent per session token.
type MemoryFinalizer struct {
	mu        sync.Mutex
	taken     map[slotSeat]string // -> booking id
	bySession map[string]string   // session token -> booking id
	Confirmed []domain.ConfirmedBooking
}

func NewMemoryFinalizer() *MemoryFinalizer {
	return &MemoryFinalizer{
		taken:     make(map[slotSeat]string),
		bySession: make(map[string]string),
	}
}

func (f *MemoryFinalizer) Confirm(_ context.Context, snap *booking.Snapshot) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if id, ok := f.bySession[snap.SessionToken]; ok {
		return id, nil
	}

	key := slotSeat{slotID: snap.TimeSlotID, seatID: snap.SeatID}
	if _, ok := f.taken[key]; ok {
		return "", booking.ErrSeatTaken
	}

	id := uuid.NewString()
	f.taken[key] = id
	f.bySession[snap.SessionToken] = id
	f.Confirmed = append(f.Confirmed, domain.ConfirmedBooking{
		ID:             id,
		UserID:         snap.UserID,
		Status:         domain.BookingConfirmed,
		RouteID:        snap.RouteID,
		VehicleID:      snap.VehicleID,
		SeatID:         snap.SeatID,
		TimeSlotID:     snap.TimeSlotID,
		DoorstepPickup: snap.DoorstepPickup,
		PickupAddress:  snap.PickupAddress,
		Extras:         snap.Extras,
		DiscountCode:   snap.DiscountCode,
		Fare:           snap.Fare,
		CreatedAt:      time.Now().UTC(),
	})
	return id, nil
}

func (f *MemoryFinalizer) GetByID(_ context.Context, id string) (*domain.ConfirmedBooking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.Confirmed {
		if f.Confirmed[i].ID == id {
			b := f.Confirmed[i]
			return &b, nil
		}
	}
	return nil, nil
}

func (f *MemoryFinalizer) List(_ context.Context, limit, offset int) ([]domain.ConfirmedBooking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return pageNewestFirst(f.Confirmed, limit, offset, func(domain.ConfirmedBooking) bool { return true }), nil
}

func (f *MemoryFinalizer) ListByUser(_ context.Context, userID int64, limit, offset int) ([]domain.ConfirmedBooking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return pageNewestFirst(f.Confirmed, limit, offset, func(b domain.ConfirmedBooking) bool {
		return b.UserID != nil && *b.UserID == userID
	}), nil
}

// pageNewestFirst walks the confirmed slice backwards, matching the
// created_at DESC ordering the postgres repo uses.
func pageNewestFirst(all []domain.ConfirmedBooking, limit, offset int, match func(domain.ConfirmedBooking) bool) []domain.ConfirmedBooking {
	var out []domain.ConfirmedBooking
	skipped := 0
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		if !match(all[i]) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		out = append(out, all[i])
	}
	return out
}
