package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thetoretto/hotpoint-bookings/internal/domain"
)

// ActivityRepo reads trip activity records. Filtering and pagination
// happen in the activity query engine, not in SQL: the dashboards need
// search across computed labels, and activity volumes per user are
// small.
type ActivityRepo struct {
	pool *pgxpool.Pool
}

func NewActivityRepo(pool *pgxpool.Pool) *ActivityRepo {
	return &ActivityRepo{pool: pool}
}

const activityCols = `id, from_location, to_location, departs_at, price, status,
passengers, driver_name, payment_method, notes, updated_at`

func (r *ActivityRepo) ListByUser(ctx context.Context, userID int64) ([]domain.TripActivity, error) {
	const q = `SELECT ` + activityCols + ` FROM trip_activities WHERE user_id=$1 ORDER BY departs_at DESC`
	return r.list(ctx, q, userID)
}

func (r *ActivityRepo) ListByDriver(ctx context.Context, driverID int64) ([]domain.TripActivity, error) {
	const q = `SELECT ` + activityCols + ` FROM trip_activities WHERE driver_id=$1 ORDER BY departs_at DESC`
	return r.list(ctx, q, driverID)
}

func (r *ActivityRepo) list(ctx context.Context, q string, args ...any) ([]domain.TripActivity, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.TripActivity
	for rows.Next() {
		var (
			a      domain.TripActivity
			status string
		)
		if err := rows.Scan(
			&a.ID, &a.From, &a.To, &a.DepartsAt, &a.Price, &status,
			&a.Passengers, &a.DriverName, &a.PaymentMethod, &a.Notes, &a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		// Unrecognized statuses pass through; Label() renders them Unknown.
		a.Status = domain.TripStatus(status)
		out = append(out, a)
	}
	return out, rows.Err()
}
