package session

import (
	"time"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/prompt"
	"github.com/aretw0/parley/pkg/schema"
	"github.com/aretw0/parley/pkg/speech"
)

// Context is the per-call conversation context: the current state name and
// the session's data. One Context exists per active call; it is owned by that
// call's state manager and must not be shared across sessions.
//
// The current state is mutated only through TransitionTo, which the state
// manager calls after validating policy. Everything else is read-only.
type Context struct {
	schema   *schema.Schema
	renderer *prompt.Renderer

	callID    string
	current   string
	raw       map[string]string
	formatted map[string]string
}

// NewContext creates the context for one call, formatting the session data
// exactly once. The current state starts at the schema's initial state.
func NewContext(s *schema.Schema, r *prompt.Renderer, callID string, data map[string]string) *Context {
	raw := make(map[string]string, len(data))
	for k, v := range data {
		raw[k] = v
	}
	return &Context{
		schema:    s,
		renderer:  r,
		callID:    callID,
		current:   s.InitialState,
		raw:       raw,
		formatted: speech.New(s.Data).Apply(raw),
	}
}

// CallID returns the call this context belongs to.
func (c *Context) CallID() string { return c.callID }

// Current returns the current state name.
func (c *Context) Current() string { return c.current }

// Data returns the formatted session data (original keys plus derived
// "_spoken" keys). Callers must treat it as read-only.
func (c *Context) Data() map[string]string { return c.formatted }

// TransitionTo validates that the target state exists and then moves the
// context there. An unknown target propagates *domain.StateNotFoundError:
// given load-time validation it indicates a defect, never user input.
func (c *Context) TransitionTo(state, reason string) error {
	if !c.schema.HasState(state) {
		return &domain.StateNotFoundError{Name: state}
	}
	c.current = state
	return nil
}

// RenderPrompt renders the prompt for the current state against the cached
// formatted data.
func (c *Context) RenderPrompt() (string, error) {
	return c.renderer.RenderState(c.current, c.formatted)
}

// Snapshot captures the context's persistent parts. History and outcome are
// filled in by the state manager.
func (c *Context) Snapshot() *domain.Snapshot {
	data := make(map[string]string, len(c.raw))
	for k, v := range c.raw {
		data[k] = v
	}
	return &domain.Snapshot{
		CallID:    c.callID,
		Workflow:  c.schema.Workflow.Name,
		State:     c.current,
		Data:      data,
		UpdatedAt: time.Now().UTC(),
	}
}
