package domain

// Transition reasons. Keyword rules carry free-form reasons from the schema;
// these well-known values additionally drive the history policy when a
// transition re-enters the workflow's entry state.
const (
	// ReasonNavigationComplete marks phone-tree navigation finishing: the
	// transcript accumulated while navigating is noise and is discarded.
	ReasonNavigationComplete = "navigation_complete"

	// ReasonHumanAnswered marks a live contact picking up mid-navigation.
	ReasonHumanAnswered = "human_answered"

	// ReasonModelRequested marks a transition the model asked for via an
	// inline marker.
	ReasonModelRequested = "llm_requested"
)

// EndCallTarget is the special transition target that denotes graceful call
// termination instead of a state change.
const EndCallTarget = "end_call"
