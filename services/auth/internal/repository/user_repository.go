package repository

import (
	"context"
	"time"

	"github.com/agriguru/agriguru-backend/services/auth/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository interface {
	Create(ctx context.Context, req *domain.CreateUserRequest, passwordHash string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, id int64, req *domain.UpdateProfileRequest) (*domain.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdatePasswordByEmail(ctx context.Context, email, passwordHash string) (int64, error)
	TouchLastLogin(ctx context.Context, id int64) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userCols = `id, email, password_hash, full_name, phone, is_active,
	farm_location, farm_size, crops, language_preference,
	last_login, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Phone, &u.IsActive,
		&u.Profile.FarmLocation, &u.Profile.FarmSize, &u.Profile.Crops, &u.Profile.LanguagePreference,
		&u.LastLogin, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) Create(ctx context.Context, req *domain.CreateUserRequest, passwordHash string) (*domain.User, error) {
	const q = `
		INSERT INTO users (email, password_hash, full_name, phone, is_active, crops, language_preference)
		VALUES ($1, $2, $3, $4, true, '{}', 'en')
		RETURNING ` + userCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanUser(r.pool.QueryRow(ctx, q, req.Email, passwordHash, req.FullName, req.Phone))
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE email = $1`
	return r.findOne(ctx, q, email)
}

func (r *userRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE id = $1`
	return r.findOne(ctx, q, id)
}

// findOne runs a single-row lookup, retrying once on a transient error
// before surfacing a storage failure. ErrNoRows maps to (nil, nil).
func (r *userRepository) findOne(ctx context.Context, q string, arg any) (*domain.User, error) {
	var u *domain.User
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		qctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		u, err = scanUser(r.pool.QueryRow(qctx, q, arg))
		cancel()
		if err == nil || err == pgx.ErrNoRows || ctx.Err() != nil {
			break
		}
	}
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return u, err
}

func (r *userRepository) UpdateProfile(ctx context.Context, id int64, req *domain.UpdateProfileRequest) (*domain.User, error) {
	const q = `
		UPDATE users
		SET
			farm_location = COALESCE($2, farm_location),
			farm_size = COALESCE($3, farm_size),
			crops = COALESCE($4, crops),
			language_preference = COALESCE($5, language_preference),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + userCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	u, err := scanUser(r.pool.QueryRow(ctx, q, id, req.FarmLocation, req.FarmSize, req.Crops, req.LanguagePreference))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return u, err
}

func (r *userRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	const q = `
		UPDATE users
		SET password_hash = $2, updated_at = now()
		WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id, passwordHash)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) UpdatePasswordByEmail(ctx context.Context, email, passwordHash string) (int64, error) {
	const q = `
		UPDATE users
		SET password_hash = $2, updated_at = now()
		WHERE email = $1
		RETURNING id`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var id int64
	err := r.pool.QueryRow(ctx, q, email, passwordHash).Scan(&id)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	return id, err
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id int64) error {
	const q = `UPDATE users SET last_login = now() WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, id)
	return err
}
