package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/agriguru/agriguru-backend/services/assistant/internal/domain"
	"github.com/redis/go-redis/v9"
)

// HistoryRepository keeps a bounded per-user conversation log in Redis.
// New entries land at the head; the list is trimmed so it never grows
// past the configured limit.
type HistoryRepository interface {
	Append(ctx context.Context, userID int64, entry *domain.HistoryEntry, limit int, ttl time.Duration) error
	Recent(ctx context.Context, userID int64, limit int) ([]*domain.HistoryEntry, error)
	Clear(ctx context.Context, userID int64) error
}

type historyRepository struct {
	client *redis.Client
}

func NewHistoryRepository(client *redis.Client) HistoryRepository {
	return &historyRepository{client: client}
}

func historyKey(userID int64) string {
	return "chat_history:" + strconv.FormatInt(userID, 10)
}

func (r *historyRepository) Append(ctx context.Context, userID int64, entry *domain.HistoryEntry, limit int, ttl time.Duration) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode history entry: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	key := historyKey(userID)
	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, key, payload)
	pipe.LTrim(ctx, key, 0, int64(limit-1))
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store history entry: %w", err)
	}
	return nil
}

func (r *historyRepository) Recent(ctx context.Context, userID int64, limit int) ([]*domain.HistoryEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	raw, err := r.client.LRange(ctx, historyKey(userID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	entries := make([]*domain.HistoryEntry, 0, len(raw))
	for _, item := range raw {
		var e domain.HistoryEntry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			continue
		}
		entries = append(entries, &e)
	}
	return entries, nil
}

func (r *historyRepository) Clear(ctx context.Context, userID int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return r.client.Del(ctx, historyKey(userID)).Err()
}
