package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/thetoretto/hotpoint-bookings/internal/activity"
	"github.com/thetoretto/hotpoint-bookings/internal/booking"
	"github.com/thetoretto/hotpoint-bookings/internal/domain"
	"github.com/thetoretto/hotpoint-bookings/internal/http/middleware"
	"github.com/thetoretto/hotpoint-bookings/internal/platform/payments"
	"github.com/thetoretto/hotpoint-bookings/internal/platform/sessionstore"
	"github.com/thetoretto/hotpoint-bookings/internal/repo/postgres"
	"github.com/thetoretto/hotpoint-bookings/pkg/auth"
	"github.com/thetoretto/hotpoint-bookings/pkg/config"
	"github.com/thetoretto/hotpoint-bookings/pkg/events"
)

// CatalogReader is the catalog surface the HTTP layer serves from. Both
// the postgres catalog and the in-memory dev catalog satisfy it.
type CatalogReader interface {
	booking.Catalog
	ListRoutes(ctx context.Context) ([]domain.Route, error)
	RouteVehicles(ctx context.Context, routeID int64) ([]domain.Vehicle, error)
	RouteTimeSlots(ctx context.Context, routeID int64) ([]domain.TimeSlot, error)
	ListExtras(ctx context.Context) ([]domain.Extra, error)
}

// ActivityLister supplies trip activity records for the dashboards.
type ActivityLister interface {
	ListByUser(ctx context.Context, userID int64) ([]domain.TripActivity, error)
	ListByDriver(ctx context.Context, driverID int64) ([]domain.TripActivity, error)
}

// BookingReader serves confirmed bookings to riders and admins.
type BookingReader interface {
	GetByID(ctx context.Context, id string) (*domain.ConfirmedBooking, error)
	List(ctx context.Context, limit, offset int) ([]domain.ConfirmedBooking, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.ConfirmedBooking, error)
}

type Handlers struct {
	cfg        *config.Config
	flow       *booking.Flow
	sessions   sessionstore.Store
	catalog    CatalogReader
	engine     *activity.Engine
	activities ActivityLister
	bookings   BookingReader
	users      postgres.UsersRepo
	payments   payments.Provider
	bus        events.Publisher
}

func New(
	cfg *config.Config,
	flow *booking.Flow,
	sessions sessionstore.Store,
	cat CatalogReader,
	engine *activity.Engine,
	activities ActivityLister,
	bookings BookingReader,
	users postgres.UsersRepo,
	pay payments.Provider,
	bus events.Publisher,
) *Handlers {
	return &Handlers{
		cfg:        cfg,
		flow:       flow,
		sessions:   sessions,
		catalog:    cat,
		engine:     engine,
		activities: activities,
		bookings:   bookings,
		users:      users,
		payments:   pay,
		bus:        bus,
	}
}

// Routes assembles the API router. authLimiter and discountLimiter may
// be nil (dev mode), in which case those groups run unlimited.
func (h *Handlers) Routes(authLimiter, discountLimiter *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()
	secret := h.cfg.Auth.JWTSecret

	r.Route("/auth", func(r chi.Router) {
		if authLimiter != nil {
			r.Use(authLimiter.Middleware())
		}
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
	})

	r.Route("/catalog", func(r chi.Router) {
		r.Get("/routes", h.ListRoutes)
		r.Get("/routes/{id}/vehicles", h.ListRouteVehicles)
		r.Get("/routes/{id}/time-slots", h.ListRouteTimeSlots)
		r.Get("/vehicles/{id}/seats", h.ListVehicleSeats)
		r.Get("/extras", h.ListExtras)
	})

	r.Route("/bookings", func(r chi.Router) {
		r.Use(middleware.OptionalJWT(secret))
		r.Post("/sessions", h.CreateSession)
		r.Route("/sessions/{token}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Delete("/", h.AbandonSession)
			r.Put("/route", h.SetRoute)
			r.Put("/vehicle", h.SetVehicle)
			r.Put("/seat", h.SetSeat)
			r.Put("/time-slot", h.SetTimeSlot)
			r.Put("/pickup", h.SetDoorstepPickup)
			r.Put("/extras", h.SetExtra)
			if discountLimiter != nil {
				r.With(discountLimiter.Middleware()).Post("/discount", h.ApplyDiscount)
			} else {
				r.Post("/discount", h.ApplyDiscount)
			}
			r.Post("/complete", h.CompleteBooking)
		})
		r.With(middleware.RequireJWT(secret, "")).Get("/", h.ListMyBookings)
	})

	r.With(middleware.RequireJWT(secret, "")).Get("/activities", h.ListActivities)

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireJWT(secret, auth.RoleAdmin))
		r.Get("/bookings", h.ListAllBookings)
		r.Get("/bookings/{id}", h.GetBooking)
	})

	return r
}

// userID returns the authenticated user id, or nil for guests.
func userID(r *http.Request) *int64 {
	claims := middleware.Claims(r)
	if claims == nil {
		return nil
	}
	id := claims.Sub
	return &id
}
