package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/parley/pkg/adapters/memory"
	"github.com/aretw0/parley/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPIIMiddleware_Masking(t *testing.T) {
	underlying := memory.NewStore()
	secureStore := middleware.NewPIIMiddleware([]string{"ssn", "dob"})(underlying)

	ctx := context.Background()
	snap := callSnapshot("call-1")
	snap.Data["ssn"] = "999-99-9999"
	snap.Data["dob"] = "1980-03-15"

	require.NoError(t, secureStore.Save(ctx, snap))

	assert.Equal(t, "999-99-9999", snap.Data["ssn"], "in-memory snapshot must stay intact")

	stored, err := underlying.Load(ctx, "call-1")
	require.NoError(t, err)
	assert.Equal(t, "Maria", stored.Data["first_name"])
	assert.Equal(t, middleware.Masked, stored.Data["ssn"])
	assert.Equal(t, middleware.Masked, stored.Data["dob"])
}

func TestChain_OrdersOutermostFirst(t *testing.T) {
	underlying := memory.NewStore()
	store := middleware.Chain(underlying,
		middleware.NewPIIMiddleware([]string{"ssn"}),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)}),
	)

	ctx := context.Background()
	snap := callSnapshot("call-1")
	snap.Data["ssn"] = "999-99-9999"
	require.NoError(t, store.Save(ctx, snap))

	// Masked before sealing: the decrypted copy carries the mask.
	loaded, err := store.Load(ctx, "call-1")
	require.NoError(t, err)
	assert.Equal(t, middleware.Masked, loaded.Data["ssn"])
	assert.Equal(t, "A123456", loaded.Data["member_id"])
}
