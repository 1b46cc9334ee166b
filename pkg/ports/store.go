package ports

import (
	"context"

	"github.com/aretw0/parley/pkg/domain"
)

// SessionStore persists call snapshots, enabling a call to be resumed on
// another process (e.g. after a webhook lands on a different replica).
type SessionStore interface {
	// Save persists the snapshot under its call ID.
	Save(ctx context.Context, snapshot *domain.Snapshot) error

	// Load retrieves the snapshot for a call ID.
	// Returns domain.ErrSessionNotFound if the call does not exist.
	Load(ctx context.Context, callID string) (*domain.Snapshot, error)

	// Delete removes the snapshot for a call ID.
	Delete(ctx context.Context, callID string) error

	// List returns the IDs of every stored call.
	List(ctx context.Context) ([]string, error)
}
