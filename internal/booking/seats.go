package booking

import (
	"sort"

	"github.com/thetoretto/hotpoint-bookings/internal/domain"
)

// SeatMap is the seat layout of one vehicle in deterministic display
// order. Seat selection through the flow is optimistic and per-session:
// two concurrent sessions may both pick the same seat here, and the
// conflict is only resolved by the finalization backend.
type SeatMap struct {
	seats []domain.Seat
}

func NewSeatMap(seats []domain.Seat) *SeatMap {
	ordered := make([]domain.Seat, len(seats))
	copy(ordered, seats)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Row != ordered[j].Row {
			return ordered[i].Row < ordered[j].Row
		}
		if ordered[i].Col != ordered[j].Col {
			return ordered[i].Col < ordered[j].Col
		}
		return ordered[i].ID < ordered[j].ID
	})
	return &SeatMap{seats: ordered}
}

// List returns seats ordered by row, then column.
func (m *SeatMap) List() []domain.Seat {
	out := make([]domain.Seat, len(m.seats))
	copy(out, m.seats)
	return out
}

func (m *SeatMap) Get(id int64) (domain.Seat, bool) {
	for _, s := range m.seats {
		if s.ID == id {
			return s, true
		}
	}
	return domain.Seat{}, false
}

// Accessible returns the accessible seats in display order.
func (m *SeatMap) Accessible() []domain.Seat {
	var out []domain.Seat
	for _, s := range m.seats {
		if s.Accessible {
			out = append(out, s)
		}
	}
	return out
}
