package activity_test

import (
	"testing"
	"time"

	"github.com/thetoretto/hotpoint-bookings/internal/activity"
	"github.com/thetoretto/hotpoint-bookings/internal/domain"
)

var testNow = time.Date(2025, time.March, 12, 15, 0, 0, 0, time.UTC) // a Wednesday

func newTestEngine() *activity.Engine {
	return activity.NewEngineAt(func() time.Time { return testNow })
}

func fixtures() []domain.TripActivity {
	mk := func(id int64, from, to string, departs time.Time, status domain.TripStatus) domain.TripActivity {
		return domain.TripActivity{
			ID: id, From: from, To: to, DepartsAt: departs,
			Status: status, Passengers: 1, UpdatedAt: departs,
		}
	}
	return []domain.TripActivity{
		mk(1, "Kigali", "Huye", testNow.Add(-2*time.Hour), domain.TripCompleted),
		mk(2, "Kigali", "Musanze", testNow.AddDate(0, 0, -1), domain.TripCompleted),
		mk(3, "Huye", "Kigali", testNow.AddDate(0, 0, -8), domain.TripCancelled),
		mk(4, "Musanze", "Kigali", testNow.AddDate(0, 0, 1), domain.TripScheduled),
		mk(5, "Kigali", "Rubavu", testNow.AddDate(0, 0, -20), domain.TripCompleted),
		mk(6, "Rubavu", "Kigali", testNow.Add(3*time.Hour), domain.TripDelayed),
		mk(7, "Kigali", "Huye", testNow.AddDate(0, -2, 0), domain.TripCompleted),
	}
}

func TestQueryPagination(t *testing.T) {
	e := newTestEngine()
	acts := fixtures()

	page1 := e.Query(acts, activity.Params{Status: "all", Date: activity.DateAll, Page: 1, PageSize: 5})
	if len(page1.Items) != 5 || page1.TotalPages != 2 || page1.TotalCount != 7 {
		t.Fatalf("page 1: items=%d totalPages=%d totalCount=%d, want 5/2/7",
			len(page1.Items), page1.TotalPages, page1.TotalCount)
	}

	page2 := e.Query(acts, activity.Params{Status: "all", Date: activity.DateAll, Page: 2, PageSize: 5})
	if len(page2.Items) != 2 || page2.Page != 2 {
		t.Fatalf("page 2: items=%d page=%d, want 2/2", len(page2.Items), page2.Page)
	}

	// Pages out of range clamp to the valid window.
	if got := e.Query(acts, activity.Params{Page: 99}); got.Page != 2 {
		t.Errorf("page 99 clamped to %d, want 2", got.Page)
	}
	if got := e.Query(acts, activity.Params{Page: -3}); got.Page != 1 {
		t.Errorf("page -3 clamped to %d, want 1", got.Page)
	}
}

func TestQuerySortsMostRecentFirst(t *testing.T) {
	e := newTestEngine()
	got := e.Query(fixtures(), activity.Params{Page: 1})

	wantOrder := []int64{4, 6, 1, 2, 3}
	for i, id := range wantOrder {
		if got.Items[i].ID != id {
			t.Fatalf("Items[%d].ID = %d, want %d (full page: %+v)", i, got.Items[i].ID, id, got.Items)
		}
	}
}

func TestQueryStatusFilter(t *testing.T) {
	e := newTestEngine()
	got := e.Query(fixtures(), activity.Params{Status: "completed"})
	if got.TotalCount != 4 {
		t.Fatalf("completed count = %d, want 4", got.TotalCount)
	}
	for _, it := range got.Items {
		if it.Status != domain.TripCompleted {
			t.Errorf("unexpected status %s in filtered result", it.Status)
		}
	}
}

func TestQueryDateFilters(t *testing.T) {
	e := newTestEngine()
	acts := fixtures()

	tests := []struct {
		date activity.DateRange
		want int
	}{
		{activity.DateToday, 2},  // ids 1, 6
		{activity.DateWeek, 4},   // ids 1, 2, 4, 6 (Wed ±, same ISO week)
		{activity.DateMonth, 5},  // all of March: 1, 2, 3, 4, 6
		{activity.DateAll, 7},
	}
	for _, tt := range tests {
		got := e.Query(acts, activity.Params{Date: tt.date})
		if got.TotalCount != tt.want {
			t.Errorf("date=%s count = %d, want %d", tt.date, got.TotalCount, tt.want)
		}
	}
}

func TestQuerySearch(t *testing.T) {
	e := newTestEngine()
	acts := fixtures()
	acts[0].DriverName = "Jean Bosco"
	acts[1].PaymentMethod = "mobile money"
	acts[2].Notes = "refund issued"

	tests := []struct {
		search string
		want   int
	}{
		{"musanze", 2},        // from/to matching, case-insensitive
		{"  Jean ", 1},        // driver name, trimmed
		{"mobile", 1},         // payment method
		{"refund", 1},         // notes
		{"delayed", 1},        // human status label
		{"", 7},               // empty matches all
		{"nomatch-xyz", 0},
	}
	for _, tt := range tests {
		got := e.Query(acts, activity.Params{Search: tt.search})
		if got.TotalCount != tt.want {
			t.Errorf("search=%q count = %d, want %d", tt.search, got.TotalCount, tt.want)
		}
	}
}

func TestQueryEmptyResult(t *testing.T) {
	e := newTestEngine()
	got := e.Query(fixtures(), activity.Params{Status: "in_progress"})
	if got.TotalPages != 0 || got.TotalCount != 0 || len(got.Items) != 0 {
		t.Fatalf("empty match: %+v, want zero items and TotalPages=0", got)
	}
}

func TestQueryDeterminism(t *testing.T) {
	e := newTestEngine()
	acts := fixtures()
	p := activity.Params{Search: "kigali", Status: "all", Date: activity.DateMonth, Page: 1}

	a := e.Query(acts, p)
	b := e.Query(acts, p)
	if a.TotalCount != b.TotalCount || len(a.Items) != len(b.Items) {
		t.Fatal("repeated query differs")
	}
	for i := range a.Items {
		if a.Items[i].ID != b.Items[i].ID {
			t.Fatalf("repeated query order differs at %d", i)
		}
	}
}
