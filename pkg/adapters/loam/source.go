package loam

import (
	"context"
	"fmt"

	"github.com/aretw0/loam"
)

// Source adapts a Loam document repository to ports.SchemaSource: the
// workflow definition and prompt document live as two documents in one
// repository, which gives authors versioned, frontmatter-tagged files
// instead of loose paths.
type Source struct {
	Repo *loam.TypedRepository[DocumentMetadata]
}

// New creates a new Loam schema source.
func New(repo *loam.TypedRepository[DocumentMetadata]) *Source {
	return &Source{Repo: repo}
}

// Definition returns the raw workflow definition document.
func (s *Source) Definition(ctx context.Context) ([]byte, error) {
	return s.find(ctx, KindDefinition, DefaultDefinitionID)
}

// Prompts returns the raw prompt-text document.
func (s *Source) Prompts(ctx context.Context) ([]byte, error) {
	return s.find(ctx, KindPrompts, DefaultPromptsID)
}

// find locates the document for a kind. An explicit kind marker in the
// frontmatter wins over the conventional ID; two documents claiming the same
// kind is a configuration error.
func (s *Source) find(ctx context.Context, kind, fallbackID string) ([]byte, error) {
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	var matched string
	var content []byte
	for _, doc := range docs {
		if doc.Data.Kind != kind {
			continue
		}
		if matched != "" {
			return nil, fmt.Errorf("documents %q and %q both declare kind %q", matched, doc.ID, kind)
		}
		matched = doc.ID
		content = []byte(doc.Content)
	}
	if matched != "" {
		return content, nil
	}

	doc, err := s.Repo.Get(ctx, fallbackID)
	if err != nil {
		return nil, fmt.Errorf("no document declares kind %q and %q not found: %w", kind, fallbackID, err)
	}
	return []byte(doc.Content), nil
}

// Watch emits the ID of any changed document, letting a serving host reload
// the workflow without restarting.
func (s *Source) Watch(ctx context.Context) (<-chan string, error) {
	events, err := s.Repo.Watch(ctx, "**/*.{md,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- evt.ID:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}
