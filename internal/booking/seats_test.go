package booking_test

import (
	"testing"

	"github.com/thetoretto/hotpoint-bookings/internal/booking"
	"github.com/thetoretto/hotpoint-bookings/internal/domain"
)

func TestSeatMapOrdering(t *testing.T) {
	seats := []domain.Seat{
		{ID: 4, Row: 2, Col: 2, Label: "2B"},
		{ID: 1, Row: 1, Col: 1, Label: "1A"},
		{ID: 3, Row: 2, Col: 1, Label: "2A"},
		{ID: 2, Row: 1, Col: 2, Label: "1B"},
	}

	got := booking.NewSeatMap(seats).List()
	wantLabels := []string{"1A", "1B", "2A", "2B"}
	if len(got) != len(wantLabels) {
		t.Fatalf("List() returned %d seats, want %d", len(got), len(wantLabels))
	}
	for i, w := range wantLabels {
		if got[i].Label != w {
			t.Errorf("List()[%d] = %s, want %s", i, got[i].Label, w)
		}
	}
}

func TestSeatMapGet(t *testing.T) {
	m := booking.NewSeatMap([]domain.Seat{
		{ID: 1, Row: 1, Col: 1, Available: true},
		{ID: 2, Row: 1, Col: 2},
	})

	if s, ok := m.Get(2); !ok || s.ID != 2 {
		t.Errorf("Get(2) = %+v, %v", s, ok)
	}
	if _, ok := m.Get(99); ok {
		t.Error("Get(99) found a seat that does not exist")
	}
}

func TestSeatMapAccessible(t *testing.T) {
	m := booking.NewSeatMap([]domain.Seat{
		{ID: 1, Row: 1, Col: 1, Accessible: true},
		{ID: 2, Row: 1, Col: 2},
		{ID: 3, Row: 2, Col: 1, Accessible: true},
	})

	acc := m.Accessible()
	if len(acc) != 2 || acc[0].ID != 1 || acc[1].ID != 3 {
		t.Errorf("Accessible() = %+v", acc)
	}
}
