package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract verifies that a SessionStore implementation adheres
// to the interface contract. Every adapter's test suite runs it.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	callID := "contract-call-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		snap := &domain.Snapshot{
			CallID:   callID,
			Workflow: "eligibility_verification",
			State:    "greeting",
			Data:     map[string]string{"first_name": "Maria"},
			History: []domain.Message{
				{Role: domain.RoleSystem, Content: "You are Sarah."},
			},
			UpdatedAt: time.Now().UTC(),
		}

		require.NoError(t, store.Save(ctx, snap))

		loaded, err := store.Load(ctx, callID)
		require.NoError(t, err)
		assert.Equal(t, snap.State, loaded.State)
		assert.Equal(t, "Maria", loaded.Data["first_name"])
		require.Len(t, loaded.History, 1)
		assert.Equal(t, domain.RoleSystem, loaded.History[0].Role)
	})

	t.Run("Load isolates the stored snapshot", func(t *testing.T) {
		loaded, err := store.Load(ctx, callID)
		require.NoError(t, err)

		loaded.Data["first_name"] = "mutated"
		again, err := store.Load(ctx, callID)
		require.NoError(t, err)
		assert.Equal(t, "Maria", again.Data["first_name"])
	})

	t.Run("Load non-existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+callID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, &domain.Snapshot{CallID: callID, State: "greeting"}))
		require.NoError(t, store.Delete(ctx, callID))

		_, err := store.Load(ctx, callID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("List", func(t *testing.T) {
		id1 := callID + "-1"
		id2 := callID + "-2"
		require.NoError(t, store.Save(ctx, &domain.Snapshot{CallID: id1, State: "greeting"}))
		require.NoError(t, store.Save(ctx, &domain.Snapshot{CallID: id2, State: "greeting"}))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
