package repository

import (
	"context"
	"time"

	"github.com/agriguru/agriguru-backend/services/auth/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OTPRepository interface {
	// Replace atomically invalidates every prior code for (email, purpose)
	// and stores the new one. Single statement, so two concurrent
	// issuances cannot leave two live codes.
	Replace(ctx context.Context, email string, purpose domain.Purpose, codeHash string, expiresAt time.Time) (int64, error)

	// Consume marks the matching live code consumed and reports whether a
	// row was actually claimed. The match, validity check, and mark are
	// one conditional UPDATE: of N concurrent verifiers exactly one wins.
	Consume(ctx context.Context, email string, purpose domain.Purpose, codeHash string, maxAttempts int) (bool, error)

	// RecordFailedAttempt bumps the attempt counter on the live code so a
	// guessing client exhausts it before the code space.
	RecordFailedAttempt(ctx context.Context, email string, purpose domain.Purpose) error

	DeleteExpired(ctx context.Context) (int64, error)
}

type otpRepository struct {
	pool *pgxpool.Pool
}

func NewOTPRepository(pool *pgxpool.Pool) OTPRepository {
	return &otpRepository{pool: pool}
}

func (r *otpRepository) Replace(ctx context.Context, email string, purpose domain.Purpose, codeHash string, expiresAt time.Time) (int64, error) {
	const q = `
		WITH purged AS (
			DELETE FROM otp_codes
			WHERE email = $1 AND purpose = $2
		)
		INSERT INTO otp_codes (email, purpose, code_hash, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var id int64
	err := r.pool.QueryRow(ctx, q, email, purpose, codeHash, expiresAt).Scan(&id)
	return id, err
}

func (r *otpRepository) Consume(ctx context.Context, email string, purpose domain.Purpose, codeHash string, maxAttempts int) (bool, error) {
	const q = `
		UPDATE otp_codes
		SET consumed_at = now()
		WHERE email = $1
		  AND purpose = $2
		  AND code_hash = $3
		  AND consumed_at IS NULL
		  AND expires_at > now()
		  AND attempts < $4
		RETURNING id`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var id int64
	err := r.pool.QueryRow(ctx, q, email, purpose, codeHash, maxAttempts).Scan(&id)
	if err == pgx.ErrNoRows {
		return false, nil // wrong code, expired, consumed, or attempt cap hit
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *otpRepository) RecordFailedAttempt(ctx context.Context, email string, purpose domain.Purpose) error {
	const q = `
		UPDATE otp_codes
		SET attempts = attempts + 1
		WHERE email = $1
		  AND purpose = $2
		  AND consumed_at IS NULL
		  AND expires_at > now()`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, email, purpose)
	return err
}

func (r *otpRepository) DeleteExpired(ctx context.Context) (int64, error) {
	const q = `
		DELETE FROM otp_codes
		WHERE (consumed_at IS NOT NULL AND consumed_at < now() - interval '7 days')
		   OR (consumed_at IS NULL AND expires_at < now() - interval '1 day')`

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected(), nil
}
