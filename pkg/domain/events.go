package domain

import (
	"context"
	"time"
)

// EventType defines the category of a lifecycle event.
type EventType string

const (
	EventStateEnter         EventType = "state_enter"
	EventStateLeave         EventType = "state_leave"
	EventTransitionRejected EventType = "transition_rejected"
	EventDirectiveEmitted   EventType = "directive_emitted"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	CallID    string    `json:"call_id"`
}

// StateEvent represents entry into or exit from a conversation state.
type StateEvent struct {
	EventBase
	State  string `json:"state"`
	Reason string `json:"reason,omitempty"`
}

// RejectionEvent represents a model-proposed transition that policy refused:
// either the current state is not LLM-directed or the target is outside the
// state's whitelist. Rejections are observability data, not errors.
type RejectionEvent struct {
	EventBase
	From   string `json:"from"`
	Target string `json:"target"`
	Cause  string `json:"cause"`
}

// DirectiveEvent represents a directive handed to the voice runtime.
type DirectiveEvent struct {
	EventBase
	Directive Directive `json:"directive"`
}

// LifecycleHooks defines callbacks for engine observability. Any nil hook is
// simply skipped. Hooks run synchronously on the session's turn path and must
// be fast and non-blocking.
type LifecycleHooks struct {
	OnStateEnter         func(context.Context, *StateEvent)
	OnStateLeave         func(context.Context, *StateEvent)
	OnTransitionRejected func(context.Context, *RejectionEvent)
	OnDirective          func(context.Context, *DirectiveEvent)
}
