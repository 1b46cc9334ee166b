package ports

import "context"

// SchemaSource supplies the two documents a workflow is loaded from.
// This decouples the storage layer (filesystem, Loam repository, memory)
// from schema parsing.
type SchemaSource interface {
	// Definition returns the raw workflow definition document.
	Definition(ctx context.Context) ([]byte, error)

	// Prompts returns the raw prompt-text document.
	Prompts(ctx context.Context) ([]byte, error)
}
