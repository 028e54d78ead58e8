package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionRepository is the server-side session store. A session id maps
// to the user id that owns it; deleting the key revokes the session
// immediately, whatever the lifetime of the token that references it.
type SessionRepository interface {
	Create(ctx context.Context, sessionID string, userID int64, ttl time.Duration) error
	Lookup(ctx context.Context, sessionID string) (int64, bool, error)
	Delete(ctx context.Context, sessionID string) error
}

type sessionRepository struct {
	client *redis.Client
}

func NewSessionRepository(client *redis.Client) SessionRepository {
	return &sessionRepository{client: client}
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID
}

func (r *sessionRepository) Create(ctx context.Context, sessionID string, userID int64, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return r.client.Set(ctx, sessionKey(sessionID), strconv.FormatInt(userID, 10), ttl).Err()
}

func (r *sessionRepository) Lookup(ctx context.Context, sessionID string) (int64, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	val, err := r.client.Get(ctx, sessionKey(sessionID)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return userID, true, nil
}

func (r *sessionRepository) Delete(ctx context.Context, sessionID string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return r.client.Del(ctx, sessionKey(sessionID)).Err()
}
