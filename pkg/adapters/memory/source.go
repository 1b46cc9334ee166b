package memory

import "context"

// Source implements ports.SchemaSource from in-memory documents. Intended
// for tests and embedded workflows.
type Source struct {
	definition []byte
	prompts    []byte
}

// NewSource creates a schema source from raw document bytes.
func NewSource(definition, prompts []byte) *Source {
	return &Source{
		definition: append([]byte(nil), definition...),
		prompts:    append([]byte(nil), prompts...),
	}
}

// Definition returns the raw workflow definition document.
func (s *Source) Definition(ctx context.Context) ([]byte, error) {
	return s.definition, nil
}

// Prompts returns the raw prompt-text document.
func (s *Source) Prompts(ctx context.Context) ([]byte, error) {
	return s.prompts, nil
}
