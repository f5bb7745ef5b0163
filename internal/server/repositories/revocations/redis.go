package revocations

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

const redisKeyPrefix = "authkeeper:revoked:"

// RedisLedger keeps revocation entries in Redis. Each entry is stored under
// its token id with a TTL equal to the token's remaining lifetime, so Redis
// expires entries exactly when they stop mattering and Sweep has nothing
// left to do.
type RedisLedger struct {
	client *redis.Client
}

// NewRedisLedger constructs a ledger over the given client.
func NewRedisLedger(client *redis.Client) *RedisLedger {
	return &RedisLedger{client: client}
}

type redisEntry struct {
	UserID    int64     `json:"user_id"`
	Kind      string    `json:"kind"`
	Reason    string    `json:"reason,omitempty"`
	RevokedAt time.Time `json:"revoked_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Revoke stores the entry with SETNX semantics; a duplicate token id keeps
// the original entry. An already-expired token needs no entry at all.
func (l *RedisLedger) Revoke(ctx context.Context, entry *models.RevocationEntry) error {
	ttl := time.Until(entry.ExpiresAt)
	if ttl <= 0 {
		return nil
	}

	payload, err := json.Marshal(redisEntry{
		UserID:    entry.UserID,
		Kind:      entry.Kind,
		Reason:    entry.Reason,
		RevokedAt: entry.RevokedAt,
		ExpiresAt: entry.ExpiresAt,
	})
	if err != nil {
		return err
	}

	if err := l.client.SetNX(ctx, redisKeyPrefix+entry.TokenID, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

// IsRevoked fails closed: a connection error yields (true, err).
func (l *RedisLedger) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := l.client.Exists(ctx, redisKeyPrefix+tokenID).Result()
	if err != nil {
		return true, fmt.Errorf("redis error: %w", err)
	}
	return n > 0, nil
}

// Sweep is a no-op; key TTLs already remove entries at their original
// expiry.
func (l *RedisLedger) Sweep(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}
