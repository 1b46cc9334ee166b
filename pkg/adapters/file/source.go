package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Source implements ports.SchemaSource from two files on disk.
type Source struct {
	definitionPath string
	promptsPath    string
}

// New creates a filesystem schema source from the two document paths.
func New(definitionPath, promptsPath string) *Source {
	return &Source{
		definitionPath: definitionPath,
		promptsPath:    promptsPath,
	}
}

// Definition returns the raw workflow definition document.
func (s *Source) Definition(ctx context.Context) ([]byte, error) {
	return readFile(s.definitionPath)
}

// Prompts returns the raw prompt-text document.
func (s *Source) Prompts(ctx context.Context) ([]byte, error) {
	return readFile(s.promptsPath)
}

func readFile(path string) ([]byte, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path %q: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", abs, err)
	}
	return data, nil
}
