package domain

// Rejection causes reported when a model-proposed transition is refused.
const (
	CauseNotLLMDirected = "state_not_llm_directed"
	CauseNotAllowed     = "target_not_allowed"
	CauseCallEnded      = "call_ended"
)

// TurnResult is what one processed turn produced: the directives the voice
// runtime must apply, plus transition metadata for logging and persistence.
type TurnResult struct {
	Transitioned bool        `json:"transitioned"`
	From         string      `json:"from"`
	To           string      `json:"to"`
	Reason       string      `json:"reason,omitempty"`
	Ended        bool        `json:"ended,omitempty"`
	Directives   []Directive `json:"directives,omitempty"`
}
