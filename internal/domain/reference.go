package domain

import "time"

// Reference data supplied by the catalog. The booking core only reads
// these; it never creates or mutates them.

type Route struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Origin       string  `json:"origin"`
	Destination  string  `json:"destination"`
	DistanceKm   float64 `json:"distance_km"`
	DurationMin  int     `json:"duration_min"`
	DefaultPrice int64   `json:"default_price"` // per seat, minor units; fallback when a slot has no price
}

type Vehicle struct {
	ID           int64    `json:"id"`
	RouteID      int64    `json:"route_id"`
	Model        string   `json:"model"`
	LicensePlate string   `json:"license_plate"`
	Capacity     int      `json:"capacity"`
	Features     []string `json:"features,omitempty"`
}

type Seat struct {
	ID         int64  `json:"id"`
	VehicleID  int64  `json:"vehicle_id"`
	Label      string `json:"label"` // e.g. "2A"
	Row        int    `json:"row"`
	Col        int    `json:"col"`
	Available  bool   `json:"available"`
	Accessible bool   `json:"accessible"`
	PriceDelta int64  `json:"price_delta"` // minor units, may be negative
}

type TimeSlot struct {
	ID           int64     `json:"id"`
	RouteID      int64     `json:"route_id"`
	VehicleID    int64     `json:"vehicle_id"`
	DriverID     *int64    `json:"driver_id,omitempty"`
	DepartsAt    time.Time `json:"departs_at"`
	Confirmed    int       `json:"confirmed"` // confirmed bookings on this slot
	Pending      int       `json:"pending"`
	PricePerSeat int64     `json:"price_per_seat"` // minor units; 0 means use route default
}

type Extra struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"` // minor units
}

// SelectedExtra pairs a catalog extra with a quantity chosen by the rider.
type SelectedExtra struct {
	Extra    Extra `json:"extra"`
	Quantity int   `json:"quantity"`
}

// FareBreakdown is the derived pricing of a booking session. All amounts
// are integer minor units (cents).
type FareBreakdown struct {
	BaseFare    int64 `json:"base_fare"`
	Fees        int64 `json:"fees"`
	ExtrasTotal int64 `json:"extras_total"`
	PickupFee   int64 `json:"pickup_fee"`
	Discount    int64 `json:"discount"`
	Total       int64 `json:"total"`
}
