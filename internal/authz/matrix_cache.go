package authz

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultMatrixTTL bounds staleness of cached matrix rows.
const DefaultMatrixTTL = 5 * time.Minute

// CachedMatrix is a redis read-through cache over a MatrixSource. The warmup
// job primes it; any cache failure degrades to the underlying source, and a
// source failure degrades to the guard's fail-closed defaults.
type CachedMatrix struct {
	client *redis.Client
	next   MatrixSource
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedMatrix decorates next with a redis cache.
func NewCachedMatrix(client *redis.Client, next MatrixSource, ttl time.Duration, logger *slog.Logger) *CachedMatrix {
	if ttl <= 0 {
		ttl = DefaultMatrixTTL
	}
	return &CachedMatrix{client: client, next: next, ttl: ttl, logger: logger}
}

// MatrixEntries serves matrix rows from redis, falling back to the source.
func (c *CachedMatrix) MatrixEntries(ctx context.Context, role Role) ([]MatrixEntry, error) {
	key := c.key(role)
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var entries []MatrixEntry
		if jsonErr := json.Unmarshal(payload, &entries); jsonErr == nil {
			return entries, nil
		}
		// Corrupt payload: drop it and reload from source.
		_ = c.client.Del(ctx, key).Err()
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("authz: matrix cache read", slog.String("role", string(role)), slog.Any("error", err))
	}

	entries, err := c.next.MatrixEntries(ctx, role)
	if err != nil {
		return nil, err
	}
	c.put(ctx, role, entries)
	return entries, nil
}

// Warm primes the cache for every canonical role.
func (c *CachedMatrix) Warm(ctx context.Context) error {
	for _, role := range CanonicalRoles() {
		entries, err := c.next.MatrixEntries(ctx, role)
		if err != nil {
			return err
		}
		c.put(ctx, role, entries)
	}
	return nil
}

func (c *CachedMatrix) put(ctx context.Context, role Role, entries []MatrixEntry) {
	data, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(role), data, c.ttl).Err(); err != nil {
		c.logger.Warn("authz: matrix cache write", slog.String("role", string(role)), slog.Any("error", err))
	}
}

func (c *CachedMatrix) key(role Role) string {
	return "authz:matrix:" + string(role)
}

var _ MatrixSource = (*CachedMatrix)(nil)
