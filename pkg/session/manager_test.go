package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/parley/pkg/adapters/memory"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot(callID string) *domain.Snapshot {
	return &domain.Snapshot{
		CallID:    callID,
		Workflow:  "intake",
		State:     "greeting",
		Data:      map[string]string{"first_name": "Maria"},
		UpdatedAt: time.Now().UTC(),
	}
}

func TestManager_CreateAndGet(t *testing.T) {
	m := NewManager(memory.NewStore())
	ctx := context.Background()

	require.NoError(t, m.Create(ctx, testSnapshot("call-1")))

	snap, err := m.Get(ctx, "call-1")
	require.NoError(t, err)
	assert.Equal(t, "greeting", snap.State)
}

func TestManager_CreateDuplicate(t *testing.T) {
	m := NewManager(memory.NewStore())
	ctx := context.Background()

	require.NoError(t, m.Create(ctx, testSnapshot("call-1")))
	err := m.Create(ctx, testSnapshot("call-1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestManager_GetMissing(t *testing.T) {
	m := NewManager(memory.NewStore())

	_, err := m.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_SaveOverwrites(t *testing.T) {
	m := NewManager(memory.NewStore())
	ctx := context.Background()

	require.NoError(t, m.Create(ctx, testSnapshot("call-1")))

	updated := testSnapshot("call-1")
	updated.State = "wrap_up"
	require.NoError(t, m.Save(ctx, updated))

	snap, err := m.Get(ctx, "call-1")
	require.NoError(t, err)
	assert.Equal(t, "wrap_up", snap.State)
}

func TestManager_Delete(t *testing.T) {
	m := NewManager(memory.NewStore())
	ctx := context.Background()

	require.NoError(t, m.Create(ctx, testSnapshot("call-1")))
	require.NoError(t, m.Delete(ctx, "call-1"))

	_, err := m.Get(ctx, "call-1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_List(t *testing.T) {
	m := NewManager(memory.NewStore())
	ctx := context.Background()

	require.NoError(t, m.Create(ctx, testSnapshot("call-a")))
	require.NoError(t, m.Create(ctx, testSnapshot("call-b")))

	ids, err := m.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"call-a", "call-b"}, ids)
}

// WithLock must serialize sections for the same call. The counter would race
// without mutual exclusion; run with -race to catch regressions.
func TestManager_WithLockSerializesPerCall(t *testing.T) {
	m := NewManager(memory.NewStore())
	ctx := context.Background()

	var counter int
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.WithLock(ctx, "call-1", func(context.Context) error {
				counter++
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}

func TestManager_WithLockReleasesEntries(t *testing.T) {
	m := NewManager(memory.NewStore())
	ctx := context.Background()

	require.NoError(t, m.WithLock(ctx, "call-1", func(context.Context) error { return nil }))
	require.NoError(t, m.WithLock(ctx, "call-2", func(context.Context) error { return nil }))

	m.mu.Lock()
	defer m.mu.Unlock()
	assert.Empty(t, m.locks, "lock entries must be garbage collected at zero refs")
}

type recordingLocker struct {
	mu       sync.Mutex
	locked   []string
	unlocked []string
}

func (l *recordingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	l.locked = append(l.locked, key)
	l.mu.Unlock()
	return func(context.Context) error {
		l.mu.Lock()
		l.unlocked = append(l.unlocked, key)
		l.mu.Unlock()
		return nil
	}, nil
}

func TestManager_WithLockUsesDistributedLocker(t *testing.T) {
	locker := &recordingLocker{}
	m := NewManager(memory.NewStore(), WithLocker(locker))

	require.NoError(t, m.WithLock(context.Background(), "call-1", func(context.Context) error { return nil }))

	assert.Equal(t, []string{"call-1"}, locker.locked)
	assert.Equal(t, []string{"call-1"}, locker.unlocked)
}
