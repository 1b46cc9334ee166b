package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/parley/pkg/adapters/redis"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupClient(t *testing.T) *backend.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return backend.NewClient(&backend.Options{Addr: mr.Addr()})
}

func TestRedisStore_Contract(t *testing.T) {
	store := redis.NewFromClient(setupClient(t))
	ports.RunSessionStoreContract(t, store)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})

	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	callID := "call-ttl"

	err := store.Save(ctx, &domain.Snapshot{
		CallID: callID,
		State:  "greeting",
		Data:   map[string]string{"first_name": "Maria"},
	})
	require.NoError(t, err)

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, callID)

	// Fast forward time in miniredis for key expiration.
	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, callID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	// Lazy index pruning keys off time.Now(), so wait past the TTL before
	// asserting the expired entry is gone from List.
	time.Sleep(1200 * time.Millisecond)

	ids, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()
	callID := "my-call"

	require.NoError(t, store.Save(ctx, &domain.Snapshot{CallID: callID, State: "greeting"}))

	assert.True(t, mr.Exists("custom:app:my-call"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, callID)
}

func TestLocker_MutualExclusion(t *testing.T) {
	client := setupClient(t)
	locker := redis.NewLocker(client, "parley:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "call-1", 5*time.Second)
	require.NoError(t, err)

	// A second acquisition must block until the first is released.
	blocked, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(blocked, "call-1", 5*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock(ctx))

	unlock2, err := locker.Lock(ctx, "call-1", 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, unlock2(ctx))
}

func TestLocker_IndependentKeys(t *testing.T) {
	client := setupClient(t)
	locker := redis.NewLocker(client, "parley:")
	ctx := context.Background()

	unlockA, err := locker.Lock(ctx, "call-a", 5*time.Second)
	require.NoError(t, err)
	defer func() { _ = unlockA(ctx) }()

	unlockB, err := locker.Lock(ctx, "call-b", 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, unlockB(ctx))
}
