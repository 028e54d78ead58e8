package repository

import (
	"context"
	"time"

	"github.com/agriguru/agriguru-backend/services/auth/internal/domain"
	"github.com/redis/go-redis/v9"
)

// TicketRepository records that an email passed OTP verification for a
// purpose, so the follow-up request (create the account, set the new
// password) can complete without presenting the already-consumed code.
// Tickets are one-shot: Redeem removes the grant atomically.
type TicketRepository interface {
	Grant(ctx context.Context, purpose domain.Purpose, email string, ttl time.Duration) error
	Redeem(ctx context.Context, purpose domain.Purpose, email string) (bool, error)
}

type ticketRepository struct {
	client *redis.Client
}

func NewTicketRepository(client *redis.Client) TicketRepository {
	return &ticketRepository{client: client}
}

func ticketKey(purpose domain.Purpose, email string) string {
	return "otp_verified:" + string(purpose) + ":" + email
}

func (r *ticketRepository) Grant(ctx context.Context, purpose domain.Purpose, email string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return r.client.Set(ctx, ticketKey(purpose, email), "1", ttl).Err()
}

func (r *ticketRepository) Redeem(ctx context.Context, purpose domain.Purpose, email string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	// GETDEL so two concurrent redeemers cannot both succeed.
	res, err := r.client.GetDel(ctx, ticketKey(purpose, email)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return res != "", nil
}
