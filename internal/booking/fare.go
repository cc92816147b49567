package booking

import "github.com/thetoretto/hotpoint-bookings/internal/domain"

// Pricing holds the configuration-supplied fee constants. Amounts are
// integer minor units (cents).
type Pricing struct {
	ServiceFee        int64
	DoorstepPickupFee int64
}

// ComputeFare derives the fare breakdown from the current session state.
// Pure: it never mutates the session and returns the same breakdown for
// the same state, so callers may invoke it on every selection change.
func ComputeFare(s *Session, p Pricing) domain.FareBreakdown {
	b := domain.FareBreakdown{
		Fees:     p.ServiceFee,
		Discount: s.DiscountAmount,
	}

	switch {
	case s.TimeSlot != nil && s.TimeSlot.PricePerSeat > 0:
		b.BaseFare = s.TimeSlot.PricePerSeat
	case s.Route != nil:
		b.BaseFare = s.Route.DefaultPrice
	}
	if s.Seat != nil {
		b.BaseFare += s.Seat.PriceDelta
	}

	for _, se := range s.Extras {
		b.ExtrasTotal += se.Extra.UnitPrice * int64(se.Quantity)
	}

	if s.DoorstepPickup {
		b.PickupFee = p.DoorstepPickupFee
	}

	total := b.BaseFare + b.Fees + b.ExtrasTotal + b.PickupFee - b.Discount
	if total < 0 {
		total = 0
	}
	b.Total = total
	return b
}
