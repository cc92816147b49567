package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/thetoretto/hotpoint-bookings/internal/domain"
)

// Session is the mutable state of one in-progress booking. One rider,
// one active flow: operations are never issued concurrently against the
// same session. Selections are populated in strict order (route →
// vehicle → seat → time slot), and once Completed is true the session
// is frozen except for idempotent re-completion.
type Session struct {
	Token  string `json:"token"`
	UserID *int64 `json:"user_id,omitempty"`

	Route    *domain.Route    `json:"route,omitempty"`
	Vehicle  *domain.Vehicle  `json:"vehicle,omitempty"`
	Seat     *domain.Seat     `json:"seat,omitempty"`
	TimeSlot *domain.TimeSlot `json:"time_slot,omitempty"`

	DoorstepPickup bool   `json:"doorstep_pickup"`
	PickupAddress  string `json:"pickup_address,omitempty"`

	Extras []domain.SelectedExtra `json:"extras,omitempty"`

	DiscountCode   string `json:"discount_code,omitempty"`
	DiscountAmount int64  `json:"discount_amount"` // minor units

	Completed bool   `json:"completed"`
	BookingID string `json:"booking_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot is the immutable view of a session handed to the finalization
// backend.
type Snapshot struct {
	SessionToken   string
	UserID         *int64
	RouteID        int64
	VehicleID      int64
	SeatID         int64
	TimeSlotID     int64
	DoorstepPickup bool
	PickupAddress  string
	Extras         []domain.SelectedExtra
	DiscountCode   string
	Fare           domain.FareBreakdown
}

// Catalog supplies the reference data the flow validates selections
// against. Implementations are read-only.
type Catalog interface {
	Route(ctx context.Context, id int64) (*domain.Route, error)
	Vehicle(ctx context.Context, id int64) (*domain.Vehicle, error)
	VehicleSeats(ctx context.Context, vehicleID int64) ([]domain.Seat, error)
	TimeSlot(ctx context.Context, id int64) (*domain.TimeSlot, error)
	Extra(ctx context.Context, id int64) (*domain.Extra, error)
}

// Finalizer is the authoritative backend that turns a session snapshot
// into a confirmed booking. It must reject with ErrSeatTaken (wrapped or
// not) when the seat was confirmed by someone else since selection.
type Finalizer interface {
	Confirm(ctx context.Context, snap *Snapshot) (bookingID string, err error)
}

// Flow drives booking sessions through the ordered steps. It holds no
// per-session state; all mutable state lives on the Session.
type Flow struct {
	catalog   Catalog
	rules     *DiscountRules
	pricing   Pricing
	finalizer Finalizer
}

func NewFlow(catalog Catalog, rules *DiscountRules, pricing Pricing, finalizer Finalizer) *Flow {
	if rules == nil {
		rules = DefaultDiscountRules()
	}
	return &Flow{
		catalog:   catalog,
		rules:     rules,
		pricing:   pricing,
		finalizer: finalizer,
	}
}

// NewSession starts an empty booking session. userID is nil for guests.
func (f *Flow) NewSession(userID *int64) *Session {
	now := time.Now().UTC()
	return &Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SelectRoute is always allowed before completion. Changing the route
// invalidates every downstream selection, so vehicle, seat, slot,
// extras and discount are all cleared.
func (f *Flow) SelectRoute(ctx context.Context, s *Session, routeID int64) error {
	if s.Completed {
		return ErrSessionFinalized
	}
	route, err := f.catalog.Route(ctx, routeID)
	if err != nil {
		return fmt.Errorf("lookup route %d: %w", routeID, err)
	}
	if route == nil {
		return ErrNoRoute
	}

	s.Route = route
	s.Vehicle = nil
	s.Seat = nil
	s.TimeSlot = nil
	s.Extras = nil
	s.DiscountCode = ""
	s.DiscountAmount = 0
	s.touch()
	return nil
}

// SelectVehicle requires a route and clears any prior seat and slot,
// since they belong to the previous vehicle.
func (f *Flow) SelectVehicle(ctx context.Context, s *Session, vehicleID int64) error {
	if s.Completed {
		return ErrSessionFinalized
	}
	if s.Route == nil {
		return ErrNoRoute
	}
	vehicle, err := f.catalog.Vehicle(ctx, vehicleID)
	if err != nil {
		return fmt.Errorf("lookup vehicle %d: %w", vehicleID, err)
	}
	if vehicle == nil || vehicle.RouteID != s.Route.ID {
		return ErrUnknownVehicle
	}

	s.Vehicle = vehicle
	s.Seat = nil
	s.TimeSlot = nil
	s.touch()
	return nil
}

// SelectSeat requires a vehicle. Selection is optimistic: it does not
// lock the seat globally, it only records the choice on this session.
// Re-selecting replaces the previous seat, so at most one seat is ever
// selected per session.
func (f *Flow) SelectSeat(ctx context.Context, s *Session, seatID int64) error {
	if s.Completed {
		return ErrSessionFinalized
	}
	if s.Vehicle == nil {
		return ErrNoVehicle
	}
	seats, err := f.catalog.VehicleSeats(ctx, s.Vehicle.ID)
	if err != nil {
		return fmt.Errorf("lookup seats for vehicle %d: %w", s.Vehicle.ID, err)
	}
	seat, ok := NewSeatMap(seats).Get(seatID)
	if !ok {
		return ErrUnknownSeat
	}
	if !seat.Available {
		return ErrSeatUnavailable
	}

	s.Seat = &seat
	s.touch()
	return nil
}

// SelectTimeSlot requires a seat and validates the slot against the
// selected route and vehicle.
func (f *Flow) SelectTimeSlot(ctx context.Context, s *Session, slotID int64) error {
	if s.Completed {
		return ErrSessionFinalized
	}
	if s.Seat == nil {
		return ErrNoSeat
	}
	slot, err := f.catalog.TimeSlot(ctx, slotID)
	if err != nil {
		return fmt.Errorf("lookup time slot %d: %w", slotID, err)
	}
	if slot == nil || slot.RouteID != s.Route.ID || slot.VehicleID != s.Vehicle.ID {
		return ErrUnknownTimeSlot
	}

	s.TimeSlot = slot
	s.touch()
	return nil
}

// SetDoorstepPickup enables or disables the doorstep pickup add-on. An
// address is required when enabling; on failure the prior values are
// kept.
func (f *Flow) SetDoorstepPickup(s *Session, enabled bool, address string) error {
	if s.Completed {
		return ErrSessionFinalized
	}
	address = strings.TrimSpace(address)
	if enabled && address == "" {
		return ErrMissingAddress
	}
	s.DoorstepPickup = enabled
	if !enabled {
		address = ""
	}
	s.PickupAddress = address
	s.touch()
	return nil
}

// ToggleExtra sets the quantity of one extra. Quantity zero removes it,
// a negative quantity is rejected, and order of first insertion is kept
// for display.
func (f *Flow) ToggleExtra(ctx context.Context, s *Session, extraID int64, quantity int) error {
	if s.Completed {
		return ErrSessionFinalized
	}
	if quantity < 0 {
		return ErrInvalidQuantity
	}

	if quantity == 0 {
		for i, se := range s.Extras {
			if se.Extra.ID == extraID {
				s.Extras = append(s.Extras[:i], s.Extras[i+1:]...)
				s.touch()
				break
			}
		}
		return nil
	}

	for i, se := range s.Extras {
		if se.Extra.ID == extraID {
			s.Extras[i].Quantity = quantity
			s.touch()
			return nil
		}
	}

	extra, err := f.catalog.Extra(ctx, extraID)
	if err != nil {
		return fmt.Errorf("lookup extra %d: %w", extraID, err)
	}
	if extra == nil {
		return ErrUnknownExtra
	}
	s.Extras = append(s.Extras, domain.SelectedExtra{Extra: *extra, Quantity: quantity})
	s.touch()
	return nil
}

// ApplyDiscount resolves a code and stores the resulting amount on the
// session. Reapplying the same code recomputes it; a different valid
// code replaces the previous one. Codes never stack.
func (f *Flow) ApplyDiscount(s *Session, code string) error {
	if s.Completed {
		return ErrSessionFinalized
	}
	rule, normalized, err := f.rules.Resolve(code)
	if err != nil {
		return err
	}

	// Percentage rules apply to base fare + extras, never to fees.
	base := ComputeFare(&Session{
		Route:    s.Route,
		Seat:     s.Seat,
		TimeSlot: s.TimeSlot,
		Extras:   s.Extras,
	}, Pricing{})
	s.DiscountCode = normalized
	s.DiscountAmount = rule.Amount(base.BaseFare + base.ExtrasTotal)
	s.touch()
	return nil
}

// Fare returns the current derived fare breakdown.
func (f *Flow) Fare(s *Session) domain.FareBreakdown {
	return ComputeFare(s, f.pricing)
}

// Complete finalizes the session through the backend. It requires
// route, vehicle, seat and time slot. On success the booking identifier
// is recorded and the session freezes. Completing an already-completed
// session is a no-op returning the same identifier, so a double submit
// cannot create a second booking. A backend seat rejection surfaces as
// ErrSeatTaken and leaves the session open and retryable.
func (f *Flow) Complete(ctx context.Context, s *Session) (string, error) {
	if s.Completed {
		return s.BookingID, nil
	}
	if s.Route == nil || s.Vehicle == nil || s.Seat == nil || s.TimeSlot == nil {
		return "", ErrIncompleteSelection
	}

	snap := &Snapshot{
		SessionToken:   s.Token,
		UserID:         s.UserID,
		RouteID:        s.Route.ID,
		VehicleID:      s.Vehicle.ID,
		SeatID:         s.Seat.ID,
		TimeSlotID:     s.TimeSlot.ID,
		DoorstepPickup: s.DoorstepPickup,
		PickupAddress:  s.PickupAddress,
		Extras:         append([]domain.SelectedExtra(nil), s.Extras...),
		DiscountCode:   s.DiscountCode,
		Fare:           ComputeFare(s, f.pricing),
	}

	bookingID, err := f.finalizer.Confirm(ctx, snap)
	if err != nil {
		return "", err
	}

	s.BookingID = bookingID
	s.Completed = true
	s.touch()
	return bookingID, nil
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now().UTC()
}
