package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a call ID cannot be found in a store.
var ErrSessionNotFound = errors.New("session not found")

// StateNotFoundError reports a lookup of a state name that is not part of the
// loaded schema. Given load-time validation this indicates a programming or
// configuration defect, so callers should treat it as fatal rather than retry.
type StateNotFoundError struct {
	Name string
}

func (e *StateNotFoundError) Error() string {
	return fmt.Sprintf("state not found: %q", e.Name)
}
