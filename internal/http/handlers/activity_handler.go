package handlers

import (
	"net/http"
	"strconv"

	"github.com/thetoretto/hotpoint-bookings/internal/activity"
	"github.com/thetoretto/hotpoint-bookings/internal/domain"
	"github.com/thetoretto/hotpoint-bookings/internal/http/middleware"
	"github.com/thetoretto/hotpoint-bookings/internal/http/response"
	"github.com/thetoretto/hotpoint-bookings/pkg/auth"
	"github.com/thetoretto/hotpoint-bookings/pkg/logger"
)

// ListActivities serves the trip activity dashboard. Drivers see the
// trips they drive, everyone else the trips they ride.
func (h *Handlers) ListActivities(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)

	var (
		all []domain.TripActivity
		err error
	)
	if claims.Role == auth.RoleDriver {
		all, err = h.activities.ListByDriver(r.Context(), claims.Sub)
	} else {
		all, err = h.activities.ListByUser(r.Context(), claims.Sub)
	}
	if err != nil {
		logger.ErrorContext(r.Context(), "list activities", "user_id", claims.Sub, "error", err)
		response.InternalError(w, "could not list activities")
		return
	}

	params, ok := activityParams(w, r)
	if !ok {
		return
	}
	response.WriteJSON(w, http.StatusOK, h.engine.Query(all, params))
}

func activityParams(w http.ResponseWriter, r *http.Request) (activity.Params, bool) {
	q := r.URL.Query()
	p := activity.Params{
		Search: q.Get("search"),
		Status: q.Get("status"),
		Date:   activity.DateAll,
		Page:   1,
	}
	if v := q.Get("date"); v != "" {
		d, ok := activity.ParseDateRange(v)
		if !ok {
			response.BadRequest(w, "date must be one of all, today, week, month")
			return activity.Params{}, false
		}
		p.Date = d
	}
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			response.BadRequest(w, "page must be a number")
			return activity.Params{}, false
		}
		p.Page = n
	}
	if v := q.Get("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 50 {
			p.PageSize = n
		}
	}
	return p, true
}
