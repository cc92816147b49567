package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thetoretto/hotpoint-bookings/internal/booking"
	"github.com/thetoretto/hotpoint-bookings/internal/domain"
)

// BookingsRepo persists confirmed bookings and acts as the finalization
// backend for the booking flow. The bookings table carries a UNIQUE
// (time_slot_id, seat_id) constraint; a violation there is the only
// place seat double-booking is actually resolved.
type BookingsRepo struct {
	pool *pgxpool.Pool
}

func NewBookingsRepo(pool *pgxpool.Pool) *BookingsRepo {
	return &BookingsRepo{pool: pool}
}

const bookingCols = `id, session_token, user_id, status, route_id, vehicle_id, seat_id, time_slot_id,
doorstep_pickup, pickup_address, extras, discount_code,
base_fare, fees, extras_total, pickup_fee, discount, total, created_at`

// Confirm implements booking.Finalizer. Re-confirming the same session
// token returns the already-issued booking id, so a double submit never
// inserts twice.
func (r *BookingsRepo) Confirm(ctx context.Context, snap *booking.Snapshot) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var existing string
	err := r.pool.QueryRow(ctx,
		`SELECT id FROM bookings WHERE session_token=$1`, snap.SessionToken,
	).Scan(&existing)
	if err == nil {
		return existing, nil
	}
	if err != pgx.ErrNoRows {
		return "", err
	}

	extras, err := json.Marshal(snap.Extras)
	if err != nil {
		return "", fmt.Errorf("encode extras: %w", err)
	}

	const q = `INSERT INTO bookings (
		id, session_token, user_id, status, route_id, vehicle_id, seat_id, time_slot_id,
		doorstep_pickup, pickup_address, extras, discount_code,
		base_fare, fees, extras_total, pickup_fee, discount, total
	) VALUES ($1,$2,$3,'confirmed',$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`

	id := uuid.NewString()
	_, err = r.pool.Exec(ctx, q, id, snap.SessionToken, snap.UserID,
		snap.RouteID, snap.VehicleID, snap.SeatID, snap.TimeSlotID,
		snap.DoorstepPickup, snap.PickupAddress, extras, snap.DiscountCode,
		snap.Fare.BaseFare, snap.Fare.Fees, snap.Fare.ExtrasTotal,
		snap.Fare.PickupFee, snap.Fare.Discount, snap.Fare.Total,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation on (time_slot_id, seat_id)
			return "", booking.ErrSeatTaken
		}
		return "", err
	}
	return id, nil
}

func (r *BookingsRepo) GetByID(ctx context.Context, id string) (*domain.ConfirmedBooking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	b, err := scanBooking(r.pool.QueryRow(ctx, q, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return b, err
}

func (r *BookingsRepo) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.ConfirmedBooking, error) {
	limit, offset = clampPage(limit, offset)
	const q = `SELECT ` + bookingCols + ` FROM bookings
WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.list(ctx, q, userID, limit, offset)
}

func (r *BookingsRepo) List(ctx context.Context, limit, offset int) ([]domain.ConfirmedBooking, error) {
	limit, offset = clampPage(limit, offset)
	const q = `SELECT ` + bookingCols + ` FROM bookings ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	return r.list(ctx, q, limit, offset)
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (r *BookingsRepo) list(ctx context.Context, q string, args ...any) ([]domain.ConfirmedBooking, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ConfirmedBooking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*domain.ConfirmedBooking, error) {
	var (
		b          domain.ConfirmedBooking
		sessionTok string
		extras     []byte
	)
	err := row.Scan(
		&b.ID, &sessionTok, &b.UserID, &b.Status, &b.RouteID, &b.VehicleID, &b.SeatID, &b.TimeSlotID,
		&b.DoorstepPickup, &b.PickupAddress, &extras, &b.DiscountCode,
		&b.Fare.BaseFare, &b.Fare.Fees, &b.Fare.ExtrasTotal, &b.Fare.PickupFee,
		&b.Fare.Discount, &b.Fare.Total, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(extras) > 0 {
		if err := json.Unmarshal(extras, &b.Extras); err != nil {
			return nil, fmt.Errorf("decode extras for booking %s: %w", b.ID, err)
		}
	}
	return &b, nil
}
