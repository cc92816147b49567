package booking_test

import (
	"testing"

	"github.com/thetoretto/hotpoint-bookings/internal/booking"
	"github.com/thetoretto/hotpoint-bookings/internal/domain"
)

func TestComputeFare(t *testing.T) {
	route := &domain.Route{ID: 1, DefaultPrice: 4000}
	slot := &domain.TimeSlot{ID: 100, PricePerSeat: 5000}
	extras := []domain.SelectedExtra{
		{Extra: domain.Extra{ID: 200, UnitPrice: 1000}, Quantity: 2},
		{Extra: domain.Extra{ID: 201, UnitPrice: 750}, Quantity: 1},
	}

	tests := []struct {
		name    string
		session booking.Session
		pricing booking.Pricing
		want    domain.FareBreakdown
	}{
		{
			name:    "slot price plus service fee",
			session: booking.Session{Route: route, TimeSlot: slot},
			pricing: booking.Pricing{ServiceFee: 500},
			want:    domain.FareBreakdown{BaseFare: 5000, Fees: 500, Total: 5500},
		},
		{
			name:    "route default when slot has no price",
			session: booking.Session{Route: route, TimeSlot: &domain.TimeSlot{ID: 101}},
			pricing: booking.Pricing{ServiceFee: 500},
			want:    domain.FareBreakdown{BaseFare: 4000, Fees: 500, Total: 4500},
		},
		{
			name: "seat delta added to base fare",
			session: booking.Session{
				Route:    route,
				TimeSlot: slot,
				Seat:     &domain.Seat{ID: 1001, PriceDelta: 300},
			},
			pricing: booking.Pricing{ServiceFee: 500},
			want:    domain.FareBreakdown{BaseFare: 5300, Fees: 500, Total: 5800},
		},
		{
			name:    "extras and doorstep pickup",
			session: booking.Session{Route: route, TimeSlot: slot, Extras: extras, DoorstepPickup: true},
			pricing: booking.Pricing{ServiceFee: 500, DoorstepPickupFee: 1500},
			want:    domain.FareBreakdown{BaseFare: 5000, Fees: 500, ExtrasTotal: 2750, PickupFee: 1500, Total: 9750},
		},
		{
			name:    "discount subtracted",
			session: booking.Session{Route: route, TimeSlot: slot, DiscountAmount: 1000},
			pricing: booking.Pricing{ServiceFee: 500},
			want:    domain.FareBreakdown{BaseFare: 5000, Fees: 500, Discount: 1000, Total: 4500},
		},
		{
			name:    "total floors at zero",
			session: booking.Session{Route: route, TimeSlot: slot, DiscountAmount: 100000},
			pricing: booking.Pricing{ServiceFee: 500},
			want:    domain.FareBreakdown{BaseFare: 5000, Fees: 500, Discount: 100000, Total: 0},
		},
		{
			name:    "empty session is just the fee",
			session: booking.Session{},
			pricing: booking.Pricing{ServiceFee: 500},
			want:    domain.FareBreakdown{Fees: 500, Total: 500},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := booking.ComputeFare(&tt.session, tt.pricing)
			if got != tt.want {
				t.Errorf("ComputeFare() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestComputeFareIsIdempotent(t *testing.T) {
	s := booking.Session{
		Route:          &domain.Route{ID: 1, DefaultPrice: 4000},
		TimeSlot:       &domain.TimeSlot{ID: 100, PricePerSeat: 5000},
		Extras:         []domain.SelectedExtra{{Extra: domain.Extra{ID: 200, UnitPrice: 1000}, Quantity: 1}},
		DoorstepPickup: true,
		DiscountAmount: 600,
	}
	p := booking.Pricing{ServiceFee: 500, DoorstepPickupFee: 1500}

	first := booking.ComputeFare(&s, p)
	second := booking.ComputeFare(&s, p)
	if first != second {
		t.Errorf("repeated ComputeFare differs: %+v vs %+v", first, second)
	}
}
