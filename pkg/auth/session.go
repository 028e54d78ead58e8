package auth

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionCookie is the browser-facing carrier of the session token.
// API clients may send the same token as a Bearer header instead.
const SessionCookie = "agriguru_session"

// SessionStore answers whether the session a token names is still
// live. The auth service owns session writes; every other service only
// reads, so revocation there takes effect everywhere at once.
type SessionStore interface {
	Lookup(ctx context.Context, sessionID string) (int64, bool, error)
}

type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

// Lookup reads the session key the auth service writes on login.
func (s *RedisSessionStore) Lookup(ctx context.Context, sessionID string) (int64, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	val, err := s.client.Get(ctx, "session:"+sessionID).Result()
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

// TokenFromRequest pulls the session token from the Bearer header or
// the session cookie.
func TokenFromRequest(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}
