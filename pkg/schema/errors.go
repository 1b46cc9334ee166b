package schema

import "fmt"

// ValidationError reports the first structural problem found while loading a
// workflow. It is always fatal: a workflow must not go live with an invalid
// schema.
type ValidationError struct {
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schema validation failed: %s: %s", e.Field, e.Detail)
}

func invalidf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Detail: fmt.Sprintf(format, args...)}
}
