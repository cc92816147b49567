package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/thetoretto/hotpoint-bookings/internal/booking"
	"github.com/thetoretto/hotpoint-bookings/internal/domain"
	"github.com/thetoretto/hotpoint-bookings/internal/http/middleware"
	"github.com/thetoretto/hotpoint-bookings/internal/http/response"
	"github.com/thetoretto/hotpoint-bookings/internal/platform/payments"
	"github.com/thetoretto/hotpoint-bookings/internal/platform/sessionstore"
	"github.com/thetoretto/hotpoint-bookings/pkg/events"
	"github.com/thetoretto/hotpoint-bookings/pkg/logger"
)

// SessionResponse is the session plus its current fare, returned from
// every flow endpoint so clients never compute prices themselves.
type SessionResponse struct {
	Session *booking.Session     `json:"session"`
	Fare    domain.FareBreakdown `json:"fare"`
}

type CompleteResponse struct {
	BookingID string               `json:"booking_id"`
	Fare      domain.FareBreakdown `json:"fare"`
	Payment   *payments.Intent     `json:"payment,omitempty"`
	Session   *booking.Session     `json:"session"`
}

func (h *Handlers) sessionResponse(s *booking.Session) SessionResponse {
	return SessionResponse{Session: s, Fare: h.flow.Fare(s)}
}

func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	s := h.flow.NewSession(userID(r))
	if err := h.sessions.Save(r.Context(), s); err != nil {
		logger.ErrorContext(r.Context(), "save session", "error", err)
		response.InternalError(w, "could not create session")
		return
	}
	response.WriteJSON(w, http.StatusCreated, h.sessionResponse(s))
}

func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	response.WriteJSON(w, http.StatusOK, h.sessionResponse(s))
}

func (h *Handlers) SetRoute(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RouteID int64 `json:"route_id"`
	}
	h.mutateSession(w, r, &req, func(s *booking.Session) error {
		return h.flow.SelectRoute(r.Context(), s, req.RouteID)
	})
}

func (h *Handlers) SetVehicle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VehicleID int64 `json:"vehicle_id"`
	}
	h.mutateSession(w, r, &req, func(s *booking.Session) error {
		return h.flow.SelectVehicle(r.Context(), s, req.VehicleID)
	})
}

func (h *Handlers) SetSeat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SeatID int64 `json:"seat_id"`
	}
	h.mutateSession(w, r, &req, func(s *booking.Session) error {
		return h.flow.SelectSeat(r.Context(), s, req.SeatID)
	})
}

func (h *Handlers) SetTimeSlot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TimeSlotID int64 `json:"time_slot_id"`
	}
	h.mutateSession(w, r, &req, func(s *booking.Session) error {
		return h.flow.SelectTimeSlot(r.Context(), s, req.TimeSlotID)
	})
}

func (h *Handlers) SetDoorstepPickup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled bool   `json:"enabled"`
		Address string `json:"address"`
	}
	h.mutateSession(w, r, &req, func(s *booking.Session) error {
		return h.flow.SetDoorstepPickup(s, req.Enabled, req.Address)
	})
}

func (h *Handlers) SetExtra(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ExtraID  int64 `json:"extra_id"`
		Quantity int   `json:"quantity"`
	}
	h.mutateSession(w, r, &req, func(s *booking.Session) error {
		return h.flow.ToggleExtra(r.Context(), s, req.ExtraID, req.Quantity)
	})
}

func (h *Handlers) ApplyDiscount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	h.mutateSession(w, r, &req, func(s *booking.Session) error {
		return h.flow.ApplyDiscount(s, req.Code)
	})
}

func (h *Handlers) CompleteBooking(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	alreadyCompleted := s.Completed

	bookingID, err := h.flow.Complete(ctx, s)
	if err != nil {
		response.BookingError(w, err)
		return
	}
	fare := h.flow.Fare(s)

	if err := h.sessions.Save(ctx, s); err != nil {
		// The booking is confirmed; a stale session copy only costs the
		// client a redundant retry, which completion absorbs.
		logger.ErrorContext(ctx, "save completed session", "token", s.Token, "error", err)
	}

	resp := CompleteResponse{BookingID: bookingID, Fare: fare, Session: s}
	if fare.Total > 0 && h.payments != nil {
		intent, err := h.payments.CreateIntent(ctx, bookingID, fare.Total)
		if err != nil {
			logger.ErrorContext(ctx, "create payment intent", "booking_id", bookingID, "error", err)
		} else {
			resp.Payment = intent
		}
	}

	if !alreadyCompleted {
		h.publishConfirmed(r, s, bookingID, fare)
	}
	response.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handlers) AbandonSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := chi.URLParam(r, "token")
	if err := h.sessions.Delete(ctx, token); err != nil && !errors.Is(err, sessionstore.ErrNotFound) {
		logger.ErrorContext(ctx, "delete session", "token", token, "error", err)
		response.InternalError(w, "could not abandon session")
		return
	}
	if err := h.bus.Publish(ctx, events.BookingAbandoned, events.BookingAbandonedEvent{
		SessionToken: token,
		AbandonedAt:  time.Now().UTC(),
	}); err != nil {
		logger.WarnContext(ctx, "publish abandoned event", "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) ListMyBookings(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)
	limit, offset := pageParams(r, 20)
	items, err := h.bookings.ListByUser(r.Context(), claims.Sub, limit, offset)
	if err != nil {
		logger.ErrorContext(r.Context(), "list user bookings", "error", err)
		response.InternalError(w, "could not list bookings")
		return
	}
	if items == nil {
		items = []domain.ConfirmedBooking{}
	}
	response.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handlers) publishConfirmed(r *http.Request, s *booking.Session, bookingID string, fare domain.FareBreakdown) {
	ctx := r.Context()
	ev := events.BookingConfirmedEvent{
		BookingID:      bookingID,
		UserID:         s.UserID,
		TotalAmount:    fare.Total,
		DoorstepPickup: s.DoorstepPickup,
		ConfirmedAt:    time.Now().UTC(),
	}
	if s.Route != nil {
		ev.RouteName = s.Route.Name
	}
	if s.Seat != nil {
		ev.SeatLabel = s.Seat.Label
	}
	if s.TimeSlot != nil {
		ev.DepartsAt = s.TimeSlot.DepartsAt
	}
	if err := h.bus.Publish(ctx, events.BookingConfirmed, ev); err != nil {
		logger.WarnContext(ctx, "publish confirmed event", "booking_id", bookingID, "error", err)
	}

	claims := middleware.Claims(r)
	if claims == nil || claims.Email == "" {
		return
	}
	notify := events.NotificationEvent{
		Recipient: claims.Email,
		Subject:   "Your booking is confirmed",
		Template:  "booking_confirmation",
		Data: map[string]interface{}{
			"booking_id":   bookingID,
			"route_name":   ev.RouteName,
			"seat_label":   ev.SeatLabel,
			"total_amount": fare.Total,
		},
	}
	if err := h.bus.Publish(ctx, events.NotifySend, notify); err != nil {
		logger.WarnContext(ctx, "publish notification", "booking_id", bookingID, "error", err)
	}
}

// loadSession fetches the session named in the URL, writing the error
// response itself when it cannot.
func (h *Handlers) loadSession(w http.ResponseWriter, r *http.Request) (*booking.Session, bool) {
	token := chi.URLParam(r, "token")
	s, err := h.sessions.Get(r.Context(), token)
	if err != nil {
		if errors.Is(err, sessionstore.ErrNotFound) {
			response.NotFound(w, "booking session not found or expired")
		} else {
			logger.ErrorContext(r.Context(), "load session", "token", token, "error", err)
			response.InternalError(w, "could not load session")
		}
		return nil, false
	}
	return s, true
}

// mutateSession is the shared decode / load / apply / save path for the
// flow's step endpoints.
func (h *Handlers) mutateSession(w http.ResponseWriter, r *http.Request, req any, apply func(*booking.Session) error) {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	s, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	if err := apply(s); err != nil {
		response.BookingError(w, err)
		return
	}
	if err := h.sessions.Save(r.Context(), s); err != nil {
		logger.ErrorContext(r.Context(), "save session", "token", s.Token, "error", err)
		response.InternalError(w, "could not save session")
		return
	}
	response.WriteJSON(w, http.StatusOK, h.sessionResponse(s))
}

func pageParams(r *http.Request, defaultLimit int) (limit, offset int) {
	limit = defaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
