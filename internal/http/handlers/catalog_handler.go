package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/thetoretto/hotpoint-bookings/internal/booking"
	"github.com/thetoretto/hotpoint-bookings/internal/domain"
	"github.com/thetoretto/hotpoint-bookings/internal/http/response"
	"github.com/thetoretto/hotpoint-bookings/pkg/logger"
)

func (h *Handlers) ListRoutes(w http.ResponseWriter, r *http.Request) {
	routes, err := h.catalog.ListRoutes(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "list routes", "error", err)
		response.InternalError(w, "could not list routes")
		return
	}
	if routes == nil {
		routes = []domain.Route{}
	}
	response.WriteJSON(w, http.StatusOK, map[string]any{"items": routes})
}

func (h *Handlers) ListRouteVehicles(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	vehicles, err := h.catalog.RouteVehicles(r.Context(), id)
	if err != nil {
		logger.ErrorContext(r.Context(), "list route vehicles", "route_id", id, "error", err)
		response.InternalError(w, "could not list vehicles")
		return
	}
	if vehicles == nil {
		vehicles = []domain.Vehicle{}
	}
	response.WriteJSON(w, http.StatusOK, map[string]any{"items": vehicles})
}

func (h *Handlers) ListRouteTimeSlots(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	slots, err := h.catalog.RouteTimeSlots(r.Context(), id)
	if err != nil {
		logger.ErrorContext(r.Context(), "list route time slots", "route_id", id, "error", err)
		response.InternalError(w, "could not list time slots")
		return
	}
	if slots == nil {
		slots = []domain.TimeSlot{}
	}
	response.WriteJSON(w, http.StatusOK, map[string]any{"items": slots})
}

// ListVehicleSeats returns the vehicle's seats in cabin order, so the
// client can render the seat map row by row.
func (h *Handlers) ListVehicleSeats(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	seats, err := h.catalog.VehicleSeats(r.Context(), id)
	if err != nil {
		logger.ErrorContext(r.Context(), "list vehicle seats", "vehicle_id", id, "error", err)
		response.InternalError(w, "could not list seats")
		return
	}
	ordered := booking.NewSeatMap(seats).List()
	if ordered == nil {
		ordered = []domain.Seat{}
	}
	response.WriteJSON(w, http.StatusOK, map[string]any{"items": ordered})
}

func (h *Handlers) ListExtras(w http.ResponseWriter, r *http.Request) {
	extras, err := h.catalog.ListExtras(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "list extras", "error", err)
		response.InternalError(w, "could not list extras")
		return
	}
	if extras == nil {
		extras = []domain.Extra{}
	}
	response.WriteJSON(w, http.StatusOK, map[string]any{"items": extras})
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, "invalid id")
		return 0, false
	}
	return id, true
}
