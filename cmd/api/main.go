package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/thetoretto/hotpoint-bookings/internal/activity"
	"github.com/thetoretto/hotpoint-bookings/internal/booking"
	"github.com/thetoretto/hotpoint-bookings/internal/catalog"
	"github.com/thetoretto/hotpoint-bookings/internal/domain"
	"github.com/thetoretto/hotpoint-bookings/internal/http/handlers"
	"github.com/thetoretto/hotpoint-bookings/internal/http/middleware"
	"github.com/thetoretto/hotpoint-bookings/internal/platform/mailer"
	"github.com/thetoretto/hotpoint-bookings/internal/platform/payments"
	"github.com/thetoretto/hotpoint-bookings/internal/platform/sessionstore"
	"github.com/thetoretto/hotpoint-bookings/internal/repo/postgres"
	"github.com/thetoretto/hotpoint-bookings/pkg/config"
	"github.com/thetoretto/hotpoint-bookings/pkg/database"
	"github.com/thetoretto/hotpoint-bookings/pkg/events"
	"github.com/thetoretto/hotpoint-bookings/pkg/logger"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	var (
		pool      *pgxpool.Pool
		cat       handlers.CatalogReader
		finalizer booking.Finalizer
		bookings  handlers.BookingReader
		acts      handlers.ActivityLister
		users     postgres.UsersRepo
		sessions  sessionstore.Store
	)

	if cfg.Server.DevMode {
		logger.Warn("dev mode: in-memory catalog, sessions and bookings; no postgres")
		mem := catalog.Seed()
		memFinal := catalog.NewMemoryFinalizer()
		cat = mem
		finalizer = memFinal
		bookings = memFinal
		acts = noActivities{}
		sessions = sessionstore.NewMemoryStore(cfg.Redis.SessionTTL)
	} else {
		var err error
		pool, err = database.Connect(ctx, cfg.Database)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		cat = postgres.NewCatalogRepo(pool)
		finalizer = postgres.NewBookingsRepo(pool)
		bookings = postgres.NewBookingsRepo(pool)
		acts = postgres.NewActivityRepo(pool)
		users = postgres.NewUsersRepo(pool)

		sessions, err = sessionstore.NewRedisStore(cfg.Redis.URL, cfg.Redis.SessionTTL)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
	}

	var bus events.EventBus = events.NopBus{}
	if cfg.NATS.Enabled {
		natsBus, err := events.NewNATSEventBus(cfg.NATS.URL)
		if err != nil {
			logger.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer natsBus.Close()
		bus = natsBus
	}

	var mail mailer.Service
	if cfg.Email.DevMode {
		mail = mailer.NewDevMailer()
	} else {
		mail = mailer.NewMailer(cfg.Email.MailerSendKey, cfg.Email.FromName, cfg.Email.FromEmail)
	}
	startNotifier(bus, mail)

	var pay payments.Provider
	if cfg.Stripe.Enabled {
		pay = payments.NewStripeProvider(cfg.Stripe.SecretKey, cfg.Stripe.Currency)
	} else {
		pay = payments.NewDisabledProvider(cfg.Stripe.Currency)
	}

	flow := booking.NewFlow(cat, nil, booking.Pricing{
		ServiceFee:        cfg.Pricing.ServiceFee,
		DoorstepPickupFee: cfg.Pricing.DoorstepPickupFee,
	}, finalizer)

	h := handlers.New(cfg, flow, sessions, cat, activity.NewEngine(), acts, bookings, users, pay, bus)

	var authLimiter, discountLimiter *middleware.RateLimiter
	if pool != nil {
		authLimiter = middleware.NewRateLimiter(pool, middleware.RateLimitConfig{
			Requests: 10,
			Window:   time.Minute,
		})
		discountLimiter = middleware.NewRateLimiter(pool, middleware.RateLimitConfig{
			Requests: 20,
			Window:   time.Minute,
		})
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Mount("/v1", h.Routes(authLimiter, discountLimiter))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	logger.Info("starting api", "port", cfg.Server.Port, "dev_mode", cfg.Server.DevMode)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// startNotifier sends the confirmation email for every notify.send
// event. With the NopBus this subscribes to nothing.
func startNotifier(bus events.EventBus, mail mailer.Service) {
	err := bus.QueueSubscribe(events.NotifySend, "notify", func(msg *events.Message) {
		var ev events.NotificationEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			logger.Error("decode notification event", "error", err)
			return
		}
		bookingID, _ := ev.Data["booking_id"].(string)
		routeName, _ := ev.Data["route_name"].(string)
		seatLabel, _ := ev.Data["seat_label"].(string)
		total, _ := ev.Data["total_amount"].(float64)
		if err := mail.SendBookingConfirmation(ev.Recipient, bookingID, routeName, seatLabel, int64(total)); err != nil {
			logger.Error("send confirmation email", "booking_id", bookingID, "error", err)
		}
	})
	if err != nil {
		logger.Error("subscribe notify.send", "error", err)
	}
}

// noActivities backs the dev-mode dashboard, which has no trip history.
type noActivities struct{}

func (noActivities) ListByUser(context.Context, int64) ([]domain.TripActivity, error) {
	return nil, nil
}

func (noActivities) ListByDriver(context.Context, int64) ([]domain.TripActivity, error) {
	return nil, nil
}
