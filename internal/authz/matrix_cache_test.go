package authz

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestCachedMatrixReadThrough(t *testing.T) {
	store := newMemStore()
	store.matrix[RoleHRAdmin] = []MatrixEntry{
		{Role: "hr_admin", Module: "documents", Visible: true, Actions: []string{"view"}},
	}
	client := newTestRedis(t)
	cache := NewCachedMatrix(client, store, time.Minute, testLogger())
	ctx := context.Background()

	entries, err := cache.MatrixEntries(ctx, RoleHRAdmin)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, 1, store.matrixReads)

	entries, err = cache.MatrixEntries(ctx, RoleHRAdmin)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, 1, store.matrixReads, "second read must be served from redis")
}

func TestCachedMatrixCorruptPayloadReloaded(t *testing.T) {
	store := newMemStore()
	store.matrix[RoleAdmin] = []MatrixEntry{
		{Role: "admin", Module: "budget", Visible: true},
	}
	client := newTestRedis(t)
	cache := NewCachedMatrix(client, store, time.Minute, testLogger())
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "authz:matrix:admin", "{not json", 0).Err())

	entries, err := cache.MatrixEntries(ctx, RoleAdmin)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "budget", entries[0].Module)

	// The corrupt payload was replaced with a good one.
	entries, err = cache.MatrixEntries(ctx, RoleAdmin)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, 1, store.matrixReads)
}

func TestCachedMatrixWarm(t *testing.T) {
	store := newMemStore()
	for _, role := range CanonicalRoles() {
		store.matrix[role] = []MatrixEntry{{Role: string(role), Module: "dashboard", Visible: true}}
	}
	client := newTestRedis(t)
	cache := NewCachedMatrix(client, store, time.Minute, testLogger())
	ctx := context.Background()

	require.NoError(t, cache.Warm(ctx))
	require.Equal(t, len(CanonicalRoles()), store.matrixReads)

	for _, role := range CanonicalRoles() {
		_, err := cache.MatrixEntries(ctx, role)
		require.NoError(t, err)
	}
	require.Equal(t, len(CanonicalRoles()), store.matrixReads, "warmed roles must not hit the source")
}

func TestCachedMatrixSetsTTL(t *testing.T) {
	store := newMemStore()
	store.matrix[RoleEmployee] = []MatrixEntry{{Role: "employee", Module: "tasks", Visible: true}}
	client := newTestRedis(t)
	cache := NewCachedMatrix(client, store, 10*time.Minute, testLogger())

	_, err := cache.MatrixEntries(context.Background(), RoleEmployee)
	require.NoError(t, err)

	ttl := client.TTL(context.Background(), "authz:matrix:employee").Val()
	require.Greater(t, ttl, time.Duration(0))
	require.LessOrEqual(t, ttl, 10*time.Minute)
}

func TestCachedMatrixSourceFailurePropagates(t *testing.T) {
	store := newMemStore()
	store.failReads = true
	client := newTestRedis(t)
	cache := NewCachedMatrix(client, store, time.Minute, testLogger())

	_, err := cache.MatrixEntries(context.Background(), RoleAdmin)
	require.Error(t, err)
}
