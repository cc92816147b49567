package catalog

import (
	"time"

	"github.com/thetoretto/hotpoint-bookings/internal/domain"
)

// Seed returns a small fixture catalog for dev mode and tests.
func Seed() *Memory {
	depart := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Hour)
	driverID := int64(7)

	m := &Memory{
		Routes: []domain.Route{
			{ID: 1, Name: "Kigali - Huye", Origin: "Kigali", Destination: "Huye", DistanceKm: 133, DurationMin: 165, DefaultPrice: 5000},
			{ID: 2, Name: "Kigali - Musanze", Origin: "Kigali", Destination: "Musanze", DistanceKm: 106, DurationMin: 140, DefaultPrice: 4500},
		},
		Vehicles: []domain.Vehicle{
			{ID: 10, RouteID: 1, Model: "Toyota Coaster", LicensePlate: "RAD 452 B", Capacity: 8, Features: []string{"wifi", "ac"}},
			{ID: 11, RouteID: 2, Model: "Toyota Hiace", LicensePlate: "RAC 118 C", Capacity: 6, Features: []string{"ac"}},
		},
		TimeSlots: []domain.TimeSlot{
			{ID: 100, RouteID: 1, VehicleID: 10, DriverID: &driverID, DepartsAt: depart, PricePerSeat: 5500},
			{ID: 101, RouteID: 1, VehicleID: 10, DepartsAt: depart.Add(4 * time.Hour)}, // falls back to route price
			{ID: 102, RouteID: 2, VehicleID: 11, DepartsAt: depart, PricePerSeat: 4800},
		},
		Extras: []domain.Extra{
			{ID: 200, Name: "Extra luggage", UnitPrice: 1000},
			{ID: 201, Name: "Travel insurance", UnitPrice: 750},
			{ID: 202, Name: "Onboard snack", UnitPrice: 400},
		},
	}

	for _, v := range m.Vehicles {
		cols := 2
		for i := 0; i < v.Capacity; i++ {
			row := i/cols + 1
			col := i%cols + 1
			m.Seats = append(m.Seats, domain.Seat{
				ID:         v.ID*100 + int64(i) + 1,
				VehicleID:  v.ID,
				Label:      seatLabel(row, col),
				Row:        row,
				Col:        col,
				Available:  i != 2, // one pre-sold seat per vehicle
				Accessible: row == 1,
			})
		}
	}
	return m
}

func seatLabel(row, col int) string {
	return string(rune('0'+row)) + string(rune('A'+col-1))
}
