package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/thetoretto/hotpoint-bookings/internal/booking"
	"github.com/thetoretto/hotpoint-bookings/internal/platform/sessionstore"
	"github.com/thetoretto/hotpoint-bookings/pkg/logger"
)

// ErrorResponse is the structured JSON error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// Error codes surfaced to the frontend.
const (
	CodeInvalidInput        = "INVALID_INPUT"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeRateLimit           = "RATE_LIMIT_EXCEEDED"
	CodeInternalError       = "INTERNAL_ERROR"
	CodeEmailExists         = "EMAIL_EXISTS"
	CodePreconditionFailed  = "PRECONDITION_FAILED"
	CodeSeatUnavailable     = "SEAT_UNAVAILABLE"
	CodeSeatTaken           = "SEAT_NO_LONGER_AVAILABLE"
	CodeMissingAddress      = "MISSING_ADDRESS"
	CodeInvalidQuantity     = "INVALID_QUANTITY"
	CodeEmptyCode           = "EMPTY_DISCOUNT_CODE"
	CodeInvalidCode         = "INVALID_DISCOUNT_CODE"
	CodeIncompleteSelection = "INCOMPLETE_SELECTION"
	CodeSessionFinalized    = "SESSION_FINALIZED"
	CodeUnavailable         = "SERVICE_UNAVAILABLE"
)

// WriteJSON writes a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

// WriteError writes a structured JSON error response.
func WriteError(w http.ResponseWriter, statusCode int, message string, code string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message, Code: code})
}

func BadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message, CodeInvalidInput)
}

func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, message, CodeUnauthorized)
}

func Forbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, message, CodeForbidden)
}

func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, message, CodeNotFound)
}

func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, message, CodeInternalError)
}

func RateLimit(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusTooManyRequests, message, CodeRateLimit)
}

// BookingError maps booking-flow errors to HTTP responses. Every
// expected failure from the flow lands here; anything unmatched is a
// 500.
func BookingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sessionstore.ErrNotFound):
		WriteError(w, http.StatusNotFound, "booking session not found or expired", CodeNotFound)
	case errors.Is(err, booking.ErrNoRoute),
		errors.Is(err, booking.ErrNoVehicle),
		errors.Is(err, booking.ErrNoSeat):
		WriteError(w, http.StatusConflict, err.Error(), CodePreconditionFailed)
	case errors.Is(err, booking.ErrSeatUnavailable):
		WriteError(w, http.StatusConflict, err.Error(), CodeSeatUnavailable)
	case errors.Is(err, booking.ErrSeatTaken):
		WriteError(w, http.StatusConflict, err.Error(), CodeSeatTaken)
	case errors.Is(err, booking.ErrMissingAddress):
		WriteError(w, http.StatusBadRequest, err.Error(), CodeMissingAddress)
	case errors.Is(err, booking.ErrInvalidQuantity):
		WriteError(w, http.StatusBadRequest, err.Error(), CodeInvalidQuantity)
	case errors.Is(err, booking.ErrEmptyCode):
		WriteError(w, http.StatusBadRequest, err.Error(), CodeEmptyCode)
	case errors.Is(err, booking.ErrUnknownCode):
		WriteError(w, http.StatusUnprocessableEntity, err.Error(), CodeInvalidCode)
	case errors.Is(err, booking.ErrIncompleteSelection):
		WriteError(w, http.StatusConflict, err.Error(), CodeIncompleteSelection)
	case errors.Is(err, booking.ErrSessionFinalized):
		WriteError(w, http.StatusConflict, err.Error(), CodeSessionFinalized)
	case errors.Is(err, booking.ErrUnknownVehicle),
		errors.Is(err, booking.ErrUnknownSeat),
		errors.Is(err, booking.ErrUnknownTimeSlot),
		errors.Is(err, booking.ErrUnknownExtra):
		WriteError(w, http.StatusUnprocessableEntity, err.Error(), CodeInvalidInput)
	default:
		InternalError(w, "internal error")
	}
}
