package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agriguru/agriguru-backend/services/advisory/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OfficerRepository interface {
	List(ctx context.Context) ([]*domain.Officer, error)
	FindByID(ctx context.Context, id int64) (*domain.Officer, error)
	Create(ctx context.Context, req *domain.CreateOfficerRequest) (*domain.Officer, error)
	Update(ctx context.Context, id int64, req *domain.UpdateOfficerRequest) (*domain.Officer, error)
	Delete(ctx context.Context, id int64) error
}

type officerRepository struct {
	pool *pgxpool.Pool
}

func NewOfficerRepository(pool *pgxpool.Pool) OfficerRepository {
	return &officerRepository{pool: pool}
}

const officerCols = `id, name, designation, district, office, phone, email, address,
	specialization, latitude, longitude, created_at, updated_at`

func scanOfficer(row pgx.Row) (*domain.Officer, error) {
	var o domain.Officer
	err := row.Scan(&o.ID, &o.Name, &o.Designation, &o.District, &o.Office, &o.Phone,
		&o.Email, &o.Address, &o.Specialization,
		&o.Location.Latitude, &o.Location.Longitude, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *officerRepository) List(ctx context.Context) ([]*domain.Officer, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT `+officerCols+` FROM ado_officers ORDER BY district, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list officers: %w", err)
	}
	defer rows.Close()

	var officers []*domain.Officer
	for rows.Next() {
		o, err := scanOfficer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan officer: %w", err)
		}
		officers = append(officers, o)
	}
	return officers, rows.Err()
}

func (r *officerRepository) FindByID(ctx context.Context, id int64) (*domain.Officer, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	o, err := scanOfficer(r.pool.QueryRow(ctx,
		`SELECT `+officerCols+` FROM ado_officers WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find officer: %w", err)
	}
	return o, nil
}

func (r *officerRepository) Create(ctx context.Context, req *domain.CreateOfficerRequest) (*domain.Officer, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	o, err := scanOfficer(r.pool.QueryRow(ctx, `
		INSERT INTO ado_officers (name, designation, district, office, phone, email,
			address, specialization, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+officerCols,
		req.Name, req.Designation, req.District, req.Office, req.Phone, req.Email,
		req.Address, req.Specialization, req.Location.Latitude, req.Location.Longitude))
	if err != nil {
		return nil, fmt.Errorf("failed to create officer: %w", err)
	}
	return o, nil
}

func (r *officerRepository) Update(ctx context.Context, id int64, req *domain.UpdateOfficerRequest) (*domain.Officer, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var lat, lng *float64
	if req.Location != nil {
		lat = &req.Location.Latitude
		lng = &req.Location.Longitude
	}

	o, err := scanOfficer(r.pool.QueryRow(ctx, `
		UPDATE ado_officers SET
			name = COALESCE($2, name),
			designation = COALESCE($3, designation),
			district = COALESCE($4, district),
			office = COALESCE($5, office),
			phone = COALESCE($6, phone),
			email = COALESCE($7, email),
			address = COALESCE($8, address),
			specialization = COALESCE($9, specialization),
			latitude = COALESCE($10, latitude),
			longitude = COALESCE($11, longitude),
			updated_at = now()
		WHERE id = $1
		RETURNING `+officerCols,
		id, req.Name, req.Designation, req.District, req.Office, req.Phone,
		req.Email, req.Address, req.Specialization, lat, lng))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrOfficerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update officer: %w", err)
	}
	return o, nil
}

func (r *officerRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM ado_officers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete officer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOfficerNotFound
	}
	return nil
}
