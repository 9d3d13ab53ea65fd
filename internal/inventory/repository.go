package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const vehicleColumns = `id, make, model, year, price, mileage, vin, status, created_at`

func scanVehicle(row pgx.Row) (Vehicle, error) {
	var v Vehicle
	err := row.Scan(&v.ID, &v.Make, &v.Model, &v.Year, &v.Price, &v.Mileage, &v.VIN, &v.Status, &v.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Vehicle{}, ErrNotFound
	}
	return v, err
}

type CreateVehicleParams struct {
	Make    string
	Model   string
	Year    int
	Price   float64
	Mileage *int
	VIN     *string
}

func (r *Repository) CreateVehicle(ctx context.Context, p CreateVehicleParams) (Vehicle, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO vehicles (make, model, year, price, mileage, vin)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+vehicleColumns,
		p.Make, p.Model, p.Year, p.Price, p.Mileage, p.VIN,
	)
	return scanVehicle(row)
}

func (r *Repository) GetVehicle(ctx context.Context, id uuid.UUID) (Vehicle, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`, id)
	return scanVehicle(row)
}

// VehicleFilter narrows the stock list. Zero values mean no filtering.
type VehicleFilter struct {
	Status   VehicleStatus
	Make     string
	MaxPrice *float64
	Limit    int
}

func (r *Repository) ListVehicles(ctx context.Context, f VehicleFilter) ([]Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles`
	var conditions []string
	var args []any

	addCondition := func(expr string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(expr, len(args)))
	}

	if f.Status != "" {
		addCondition("status = $%d", f.Status)
	}
	if f.Make != "" {
		addCondition("make ILIKE $%d", f.Make)
	}
	if f.MaxPrice != nil {
		addCondition("price <= $%d", *f.MaxPrice)
	}

	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}

	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// ListInStock returns the sellable stock, used by the matcher.
func (r *Repository) ListInStock(ctx context.Context) ([]Vehicle, error) {
	return r.ListVehicles(ctx, VehicleFilter{Status: StatusInStock, Limit: 500})
}

func (r *Repository) UpdateVehicleStatus(ctx context.Context, id uuid.UUID, status VehicleStatus) (Vehicle, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE vehicles SET status = $2 WHERE id = $1 RETURNING `+vehicleColumns,
		id, status)
	return scanVehicle(row)
}

func (r *Repository) DeleteVehicle(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const interestColumns = `id, lead_id, vehicle_id, make, model, min_year, max_price, created_at`

func scanInterest(row pgx.Row) (Interest, error) {
	var in Interest
	err := row.Scan(&in.ID, &in.LeadID, &in.VehicleID, &in.Make, &in.Model, &in.MinYear, &in.MaxPrice, &in.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Interest{}, ErrNotFound
	}
	return in, err
}

type CreateInterestParams struct {
	LeadID    uuid.UUID
	VehicleID *uuid.UUID
	Make      *string
	Model     *string
	MinYear   *int
	MaxPrice  *float64
}

func (r *Repository) CreateInterest(ctx context.Context, p CreateInterestParams) (Interest, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO vehicle_interests (lead_id, vehicle_id, make, model, min_year, max_price)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+interestColumns,
		p.LeadID, p.VehicleID, p.Make, p.Model, p.MinYear, p.MaxPrice,
	)
	return scanInterest(row)
}

func (r *Repository) ListInterests(ctx context.Context, leadID uuid.UUID) ([]Interest, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+interestColumns+`
		 FROM vehicle_interests
		 WHERE lead_id = $1
		 ORDER BY created_at`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Interest
	for rows.Next() {
		in, err := scanInterest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

func (r *Repository) DeleteInterest(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM vehicle_interests WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
