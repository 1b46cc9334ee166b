package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"
	"time"

	"github.com/aretw0/parley/pkg/adapters/memory"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func callSnapshot(callID string) *domain.Snapshot {
	return &domain.Snapshot{
		CallID:   callID,
		Workflow: "eligibility_verification",
		State:    "verify",
		Data: map[string]string{
			"first_name": "Maria",
			"member_id":  "A123456",
		},
		History: []domain.Message{
			{Role: domain.RoleSystem, Content: "Verify eligibility for Maria."},
			{Role: domain.RoleUser, Content: "One moment please."},
		},
		UpdatedAt: time.Now().UTC(),
	}
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	key := generateKey(t)
	secureStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})(underlying)

	ctx := context.Background()
	require.NoError(t, secureStore.Save(ctx, callSnapshot("call-1")))

	// The backing store must only ever see the opaque envelope.
	stored, err := underlying.Load(ctx, "call-1")
	require.NoError(t, err)
	assert.Empty(t, stored.State)
	assert.Empty(t, stored.History)
	assert.NotContains(t, stored.Data, "member_id")
	assert.Contains(t, stored.Data, "__encrypted__")
	assert.Equal(t, "eligibility_verification", stored.Workflow, "workflow stays visible for monitoring")

	loaded, err := secureStore.Load(ctx, "call-1")
	require.NoError(t, err)
	assert.Equal(t, "verify", loaded.State)
	assert.Equal(t, "A123456", loaded.Data["member_id"])
	assert.Len(t, loaded.History, 2)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)

	ctx := context.Background()
	oldStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlying)
	require.NoError(t, oldStore.Save(ctx, callSnapshot("call-1")))

	rotated := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlying)

	loaded, err := rotated.Load(ctx, "call-1")
	require.NoError(t, err)
	assert.Equal(t, "verify", loaded.State)

	// A save through the rotated store re-seals with the new key, after which
	// the old key alone can no longer open it.
	require.NoError(t, rotated.Save(ctx, loaded))
	_, err = oldStore.Load(ctx, "call-1")
	assert.Error(t, err)
}

func TestEncryptionMiddleware_PlainSnapshotFailsClosed(t *testing.T) {
	underlying := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, underlying.Save(ctx, callSnapshot("call-1")))

	secureStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	_, err := secureStore.Load(ctx, "call-1")
	assert.ErrorContains(t, err, "missing encrypted data envelope")
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	assert.Panics(t, func() {
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	})
}
