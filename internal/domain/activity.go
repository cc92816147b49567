package domain

import "time"

// TripStatus is the lifecycle status of a historical or scheduled trip.
type TripStatus string

const (
	TripScheduled  TripStatus = "scheduled"
	TripInProgress TripStatus = "in_progress"
	TripCompleted  TripStatus = "completed"
	TripCancelled  TripStatus = "cancelled"
	TripDelayed    TripStatus = "delayed"
)

func ParseTripStatus(s string) (TripStatus, bool) {
	switch TripStatus(s) {
	case TripScheduled, TripInProgress, TripCompleted, TripCancelled, TripDelayed:
		return TripStatus(s), true
	default:
		return "", false
	}
}

// Label returns the human-readable status label shown in dashboards and
// matched by free-text search. Unrecognized values fall back to "Unknown".
func (s TripStatus) Label() string {
	switch s {
	case TripScheduled:
		return "Scheduled"
	case TripInProgress:
		return "In Progress"
	case TripCompleted:
		return "Completed"
	case TripCancelled:
		return "Cancelled"
	case TripDelayed:
		return "Delayed"
	default:
		return "Unknown"
	}
}

// TripActivity is a read-only trip record used by the activity query
// engine. Produced by the backend; never mutated here.
type TripActivity struct {
	ID            int64      `json:"id"`
	From          string     `json:"from"`
	To            string     `json:"to"`
	DepartsAt     time.Time  `json:"departs_at"`
	Price         int64      `json:"price"` // minor units
	Status        TripStatus `json:"status"`
	Passengers    int        `json:"passengers"`
	DriverName    string     `json:"driver_name,omitempty"`
	PaymentMethod string     `json:"payment_method,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
