package domain

import "time"

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCanceled  BookingStatus = "canceled"
)

func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch BookingStatus(s) {
	case BookingConfirmed, BookingCompleted, BookingCanceled:
		return BookingStatus(s), true
	default:
		return "", false
	}
}

// ConfirmedBooking is the immutable record produced when a booking
// session finalizes. There is no pending state: a row only exists once
// the backend accepted the seat.
type ConfirmedBooking struct {
	ID             string          `json:"id"` // opaque booking identifier
	UserID         *int64          `json:"user_id,omitempty"`
	Status         BookingStatus   `json:"status"`
	RouteID        int64           `json:"route_id"`
	VehicleID      int64           `json:"vehicle_id"`
	SeatID         int64           `json:"seat_id"`
	TimeSlotID     int64           `json:"time_slot_id"`
	DoorstepPickup bool            `json:"doorstep_pickup"`
	PickupAddress  string          `json:"pickup_address,omitempty"`
	Extras         []SelectedExtra `json:"extras,omitempty"`
	DiscountCode   string          `json:"discount_code,omitempty"`
	Fare           FareBreakdown   `json:"fare"`
	CreatedAt      time.Time       `json:"created_at"`
}
