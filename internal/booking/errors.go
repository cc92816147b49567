package booking

import "errors"

// Expected booking-flow failures. Every operation returns one of these
// (possibly wrapped) instead of panicking; the session is always left in
// its last valid state.
var (
	// Step preconditions.
	ErrNoRoute   = errors.New("no route selected")
	ErrNoVehicle = errors.New("no vehicle selected")
	ErrNoSeat    = errors.New("no seat selected")

	// Seat selection.
	ErrSeatUnavailable = errors.New("seat is not available")
	// ErrSeatTaken means the backend rejected the seat at finalization.
	// The session stays open so the rider can pick another seat and retry.
	ErrSeatTaken = errors.New("seat no longer available")

	// Doorstep pickup and extras.
	ErrMissingAddress  = errors.New("pickup address is required")
	ErrInvalidQuantity = errors.New("extra quantity cannot be negative")

	// Discount codes.
	ErrEmptyCode   = errors.New("discount code is empty")
	ErrUnknownCode = errors.New("discount code is not recognized")

	// Finalization.
	ErrIncompleteSelection = errors.New("booking selection is incomplete")
	ErrSessionFinalized    = errors.New("session is already finalized")

	ErrUnknownVehicle  = errors.New("vehicle does not serve the selected route")
	ErrUnknownSeat     = errors.New("seat does not belong to the selected vehicle")
	ErrUnknownTimeSlot = errors.New("time slot does not match the selected route")
	ErrUnknownExtra    = errors.New("extra is not in the catalog")
)
