package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/thetoretto/hotpoint-bookings/internal/domain"
	"github.com/thetoretto/hotpoint-bookings/internal/http/response"
	"github.com/thetoretto/hotpoint-bookings/pkg/logger"
)

func (h *Handlers) ListAllBookings(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r, 20)
	items, err := h.bookings.List(r.Context(), limit, offset)
	if err != nil {
		logger.ErrorContext(r.Context(), "list bookings", "error", err)
		response.InternalError(w, "could not list bookings")
		return
	}
	if items == nil {
		items = []domain.ConfirmedBooking{}
	}
	response.WriteJSON(w, http.StatusOK, map[string]any{"items": items, "limit": limit, "offset": offset})
}

func (h *Handlers) GetBooking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	b, err := h.bookings.GetByID(r.Context(), id)
	if err != nil {
		logger.ErrorContext(r.Context(), "get booking", "booking_id", id, "error", err)
		response.InternalError(w, "could not load booking")
		return
	}
	if b == nil {
		response.NotFound(w, "booking not found")
		return
	}
	response.WriteJSON(w, http.StatusOK, b)
}
