// Package activity filters, sorts and paginates trip activity records
// for the rider and driver dashboards. It is read-only: records come in
// from the repository and are never mutated.
package activity

import (
	"sort"
	"strings"
	"time"

	"github.com/thetoretto/hotpoint-bookings/internal/domain"
)

// DefaultPageSize matches the dashboard page length.
const DefaultPageSize = 5

// DateRange restricts activities to a calendar window around "now".
type DateRange string

const (
	DateAll   DateRange = "all"
	DateToday DateRange = "today"
	DateWeek  DateRange = "week"
	DateMonth DateRange = "month"
)

func ParseDateRange(s string) (DateRange, bool) {
	switch DateRange(s) {
	case "", DateAll:
		return DateAll, true
	case DateToday, DateWeek, DateMonth:
		return DateRange(s), true
	default:
		return "", false
	}
}

// Params are the query inputs. Status is a trip status value or "all".
type Params struct {
	Search   string
	Status   string
	Date     DateRange
	Page     int
	PageSize int
}

type Result struct {
	Items      []domain.TripActivity `json:"items"`
	Page       int                   `json:"page"`
	TotalPages int                   `json:"total_pages"`
	TotalCount int                   `json:"total_count"`
}

// Engine runs activity queries. The clock is injectable so the relative
// date filters are deterministic under test.
type Engine struct {
	now func() time.Time
}

func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

func NewEngineAt(now func() time.Time) *Engine {
	return &Engine{now: now}
}

// Query applies search, status and date filters, sorts by departure
// (most recent first), and paginates. Same inputs and same "now" always
// produce the same result.
func (e *Engine) Query(activities []domain.TripActivity, p Params) Result {
	search := strings.ToLower(strings.TrimSpace(p.Search))
	now := e.now()

	var filtered []domain.TripActivity
	for _, a := range activities {
		if !matchesStatus(a, p.Status) {
			continue
		}
		if !matchesDate(a, p.Date, now) {
			continue
		}
		if search != "" && !matchesSearch(a, search) {
			continue
		}
		filtered = append(filtered, a)
	}

	sort.Slice(filtered, func(i, j int) bool {
		if !filtered[i].DepartsAt.Equal(filtered[j].DepartsAt) {
			return filtered[i].DepartsAt.After(filtered[j].DepartsAt)
		}
		return filtered[i].ID > filtered[j].ID
	})

	pageSize := p.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	total := len(filtered)
	if total == 0 {
		return Result{Items: []domain.TripActivity{}, Page: 1, TotalPages: 0, TotalCount: 0}
	}

	totalPages := (total + pageSize - 1) / pageSize
	page := p.Page
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if end > total {
		end = total
	}

	items := make([]domain.TripActivity, end-start)
	copy(items, filtered[start:end])
	return Result{Items: items, Page: page, TotalPages: totalPages, TotalCount: total}
}

func matchesStatus(a domain.TripActivity, status string) bool {
	if status == "" || status == "all" {
		return true
	}
	return string(a.Status) == status
}

// matchesDate compares calendar days only; time of day is ignored.
// "week" is the ISO week containing now (Monday through Sunday) and
// "month" the calendar month, both boundary-day inclusive.
func matchesDate(a domain.TripActivity, r DateRange, now time.Time) bool {
	day := a.DepartsAt.In(now.Location())
	switch r {
	case DateToday:
		return sameDay(day, now)
	case DateWeek:
		y1, w1 := day.ISOWeek()
		y2, w2 := now.ISOWeek()
		return y1 == y2 && w1 == w2
	case DateMonth:
		return day.Year() == now.Year() && day.Month() == now.Month()
	default:
		return true
	}
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

func matchesSearch(a domain.TripActivity, search string) bool {
	fields := []string{
		a.From,
		a.To,
		a.DriverName,
		a.PaymentMethod,
		a.Notes,
		a.Status.Label(),
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}
