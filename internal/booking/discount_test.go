package booking_test

import (
	"context"
	"errors"
	"testing"

	"github.com/thetoretto/hotpoint-bookings/internal/booking"
)

func TestResolveDiscount(t *testing.T) {
	rules := booking.NewDiscountRules([]booking.DiscountRule{
		{Code: "TEN", Percent: 10},
		{Code: "FLAT5", Flat: 500},
	})

	tests := []struct {
		name     string
		code     string
		subtotal int64
		want     int64
		wantErr  error
	}{
		{name: "percent rule", code: "TEN", subtotal: 6000, want: 600},
		{name: "flat rule", code: "FLAT5", subtotal: 6000, want: 500},
		{name: "code is case insensitive", code: "  ten ", subtotal: 6000, want: 600},
		{name: "blank code", code: "   ", wantErr: booking.ErrEmptyCode},
		{name: "unknown code", code: "NOPE", wantErr: booking.ErrUnknownCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, _, err := rules.Resolve(tt.code)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Resolve(%q) error = %v, want %v", tt.code, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q): %v", tt.code, err)
			}
			if got := rule.Amount(tt.subtotal); got != tt.want {
				t.Errorf("Amount(%d) = %d, want %d", tt.subtotal, got, tt.want)
			}
		})
	}
}

func TestApplyDiscountReplacesPrevious(t *testing.T) {
	flow, _ := newTestFlow(t)
	s := flow.NewSession(nil)
	advance(t, flow, s)

	// Slot 100 prices the seat at 5500.
	if err := flow.ApplyDiscount(s, "welcome10"); err != nil {
		t.Fatalf("ApplyDiscount: %v", err)
	}
	if s.DiscountCode != "WELCOME10" {
		t.Errorf("stored code = %q, want normalized WELCOME10", s.DiscountCode)
	}
	if s.DiscountAmount != 550 {
		t.Errorf("discount = %d, want 550", s.DiscountAmount)
	}

	// Reapplying the same code recomputes the same amount.
	if err := flow.ApplyDiscount(s, "WELCOME10"); err != nil {
		t.Fatalf("reapply: %v", err)
	}
	if s.DiscountAmount != 550 {
		t.Errorf("reapplied discount = %d, want 550", s.DiscountAmount)
	}

	// A different valid code replaces the previous one, no stacking.
	if err := flow.ApplyDiscount(s, "RIDE5"); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if s.DiscountCode != "RIDE5" || s.DiscountAmount != 500 {
		t.Errorf("got %q/%d, want RIDE5/500", s.DiscountCode, s.DiscountAmount)
	}

	// A failed apply keeps the last valid discount.
	if err := flow.ApplyDiscount(s, "BOGUS"); !errors.Is(err, booking.ErrUnknownCode) {
		t.Fatalf("got %v, want ErrUnknownCode", err)
	}
	if s.DiscountCode != "RIDE5" || s.DiscountAmount != 500 {
		t.Errorf("failed apply must keep prior discount, got %q/%d", s.DiscountCode, s.DiscountAmount)
	}
}

func TestDiscountAppliesToBaseAndExtrasOnly(t *testing.T) {
	flow, _ := newTestFlow(t)
	ctx := context.Background()
	s := flow.NewSession(nil)
	advance(t, flow, s)

	if err := flow.ToggleExtra(ctx, s, 200, 1); err != nil { // 1000
		t.Fatalf("ToggleExtra: %v", err)
	}
	if err := flow.SetDoorstepPickup(s, true, "KN 5 Rd"); err != nil {
		t.Fatalf("SetDoorstepPickup: %v", err)
	}
	if err := flow.ApplyDiscount(s, "WELCOME10"); err != nil {
		t.Fatalf("ApplyDiscount: %v", err)
	}

	// 10% of base (5500) + extras (1000); fees and pickup excluded.
	if s.DiscountAmount != 650 {
		t.Errorf("discount = %d, want 650", s.DiscountAmount)
	}

	fare := flow.Fare(s)
	want := int64(5500 + 500 + 1000 + 1500 - 650)
	if fare.Total != want {
		t.Errorf("total = %d, want %d", fare.Total, want)
	}
}
