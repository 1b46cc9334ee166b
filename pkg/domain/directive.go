package domain

// DirectiveType defines the category of an outbound instruction.
type DirectiveType string

const (
	// DirectiveSetModel requests the runtime to switch the active model tier.
	// Payload: ModelSelection
	DirectiveSetModel DirectiveType = "set_model"

	// DirectiveSetTools requests the runtime to replace the enabled tool set.
	// Payload: ToolSelection
	DirectiveSetTools DirectiveType = "set_tools"

	// DirectiveReplaceHistory requests the runtime to swap the message history
	// and, optionally, immediately re-invoke the model.
	// Payload: HistoryUpdate
	DirectiveReplaceHistory DirectiveType = "replace_history"

	// DirectiveResetMonitors requests the runtime to reset auxiliary monitors
	// tied to conversation progress (e.g. silence or stall watchdogs).
	// Payload: nil
	DirectiveResetMonitors DirectiveType = "reset_monitors"

	// DirectiveEndCall requests a graceful call termination.
	// Payload: EndCall
	DirectiveEndCall DirectiveType = "end_call"
)

// Directive is a one-way instruction from the engine to the voice runtime.
// Directives are data, not calls: the runtime decides how (and whether) to
// apply them.
type Directive struct {
	Type    DirectiveType `json:"type"`
	Payload any           `json:"payload,omitempty"`
}

// Model tiers. The hosting runtime maps these symbolic tiers to concrete
// model identifiers; the engine only decides which tier should be active.
const (
	// ModelConversational is the capability-rich tier used in states that
	// require tool access.
	ModelConversational = "conversational"

	// ModelClassifier is the lightweight tier used in low-stakes states
	// where the model only classifies or navigates.
	ModelClassifier = "classifier"
)

// ModelSelection is the payload of DirectiveSetModel.
type ModelSelection struct {
	Model string `json:"model"`
}

// ToolSelection is the payload of DirectiveSetTools.
// An empty Tools list means "disable all tools".
type ToolSelection struct {
	Tools []string `json:"tools"`
}

// HistoryUpdate is the payload of DirectiveReplaceHistory.
type HistoryUpdate struct {
	Messages []Message `json:"messages"`

	// AutoInvoke signals that the runtime should call the model immediately
	// with the new history instead of waiting for the next utterance.
	AutoInvoke bool `json:"auto_invoke"`
}

// Call outcomes persisted when a conversation terminates.
const (
	OutcomeCompleted = "completed"
)

// EndCall is the payload of DirectiveEndCall.
type EndCall struct {
	Outcome string `json:"outcome"`
}
