package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thetoretto/hotpoint-bookings/internal/domain"
)

// CatalogRepo serves the read-only reference data (routes, vehicles,
// seats, time slots, extras). It satisfies booking.Catalog.
type CatalogRepo struct {
	pool *pgxpool.Pool
}

func NewCatalogRepo(pool *pgxpool.Pool) *CatalogRepo {
	return &CatalogRepo{pool: pool}
}

const routeCols = `id, name, origin, destination, distance_km, duration_min, default_price`

func (r *CatalogRepo) Route(ctx context.Context, id int64) (*domain.Route, error) {
	const q = `SELECT ` + routeCols + ` FROM routes WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var rt domain.Route
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&rt.ID, &rt.Name, &rt.Origin, &rt.Destination, &rt.DistanceKm, &rt.DurationMin, &rt.DefaultPrice,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

func (r *CatalogRepo) ListRoutes(ctx context.Context) ([]domain.Route, error) {
	const q = `SELECT ` + routeCols + ` FROM routes ORDER BY name`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Route
	for rows.Next() {
		var rt domain.Route
		if err := rows.Scan(
			&rt.ID, &rt.Name, &rt.Origin, &rt.Destination, &rt.DistanceKm, &rt.DurationMin, &rt.DefaultPrice,
		); err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

const vehicleCols = `id, route_id, model, license_plate, capacity, features`

func (r *CatalogRepo) Vehicle(ctx context.Context, id int64) (*domain.Vehicle, error) {
	const q = `SELECT ` + vehicleCols + ` FROM vehicles WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var v domain.Vehicle
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&v.ID, &v.RouteID, &v.Model, &v.LicensePlate, &v.Capacity, &v.Features,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *CatalogRepo) RouteVehicles(ctx context.Context, routeID int64) ([]domain.Vehicle, error) {
	const q = `SELECT ` + vehicleCols + ` FROM vehicles WHERE route_id=$1 ORDER BY id`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, routeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Vehicle
	for rows.Next() {
		var v domain.Vehicle
		if err := rows.Scan(&v.ID, &v.RouteID, &v.Model, &v.LicensePlate, &v.Capacity, &v.Features); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

const seatCols = `id, vehicle_id, label, row, col, available, accessible, price_delta`

func (r *CatalogRepo) VehicleSeats(ctx context.Context, vehicleID int64) ([]domain.Seat, error) {
	const q = `SELECT ` + seatCols + ` FROM seats WHERE vehicle_id=$1 ORDER BY row, col`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, vehicleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Seat
	for rows.Next() {
		var s domain.Seat
		if err := rows.Scan(
			&s.ID, &s.VehicleID, &s.Label, &s.Row, &s.Col, &s.Available, &s.Accessible, &s.PriceDelta,
		); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

const slotCols = `id, route_id, vehicle_id, driver_id, departs_at, confirmed, pending, price_per_seat`

func (r *CatalogRepo) TimeSlot(ctx context.Context, id int64) (*domain.TimeSlot, error) {
	const q = `SELECT ` + slotCols + ` FROM time_slots WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var t domain.TimeSlot
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&t.ID, &t.RouteID, &t.VehicleID, &t.DriverID, &t.DepartsAt, &t.Confirmed, &t.Pending, &t.PricePerSeat,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *CatalogRepo) RouteTimeSlots(ctx context.Context, routeID int64) ([]domain.TimeSlot, error) {
	const q = `SELECT ` + slotCols + ` FROM time_slots WHERE route_id=$1 ORDER BY departs_at`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, routeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.TimeSlot
	for rows.Next() {
		var t domain.TimeSlot
		if err := rows.Scan(
			&t.ID, &t.RouteID, &t.VehicleID, &t.DriverID, &t.DepartsAt, &t.Confirmed, &t.Pending, &t.PricePerSeat,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *CatalogRepo) Extra(ctx context.Context, id int64) (*domain.Extra, error) {
	const q = `SELECT id, name, unit_price FROM extras WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var e domain.Extra
	err := r.pool.QueryRow(ctx, q, id).Scan(&e.ID, &e.Name, &e.UnitPrice)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *CatalogRepo) ListExtras(ctx context.Context) ([]domain.Extra, error) {
	const q = `SELECT id, name, unit_price FROM extras ORDER BY id`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Extra
	for rows.Next() {
		var e domain.Extra
		if err := rows.Scan(&e.ID, &e.Name, &e.UnitPrice); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
