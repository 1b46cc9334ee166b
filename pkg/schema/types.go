package schema

// Workflow identifies one configured calling scenario.
type Workflow struct {
	Name     string `yaml:"name" json:"name"`
	Version  string `yaml:"version" json:"version"`
	ClientID string `yaml:"client_id" json:"client_id"`
}

// Persona is the voice identity substituted into every rendered prompt.
type Persona struct {
	Name    string `yaml:"name" json:"name"`
	Role    string `yaml:"role" json:"role"`
	Company string `yaml:"company" json:"company"`
}

// FormatKind selects one of the closed set of spoken-rendering strategies.
type FormatKind string

const (
	// FormatDate renders a date as natural speech ("March fifteenth, 1980").
	FormatDate FormatKind = "date"
	// FormatDigits speaks every digit individually ("nine nine two one three").
	FormatDigits FormatKind = "digits"
	// FormatDigitsGrouped speaks digits in comma-separated groups.
	FormatDigitsGrouped FormatKind = "digits_grouped"
	// FormatSpell spells letters (optionally phonetically) and groups digits.
	FormatSpell FormatKind = "spell"
)

// DefaultGroups is the digit grouping used when a rule does not override it.
// 3-3-4 matches North American phone-number cadence.
var DefaultGroups = []int{3, 3, 4}

// FormatRule describes how one field is turned into its spoken variant.
type FormatRule struct {
	Kind FormatKind `yaml:"kind" json:"kind"`

	// Groups overrides DefaultGroups for grouped-digit kinds.
	Groups []int `yaml:"groups,omitempty" json:"groups,omitempty"`

	// Phonetic switches letter spelling to the NATO alphabet.
	Phonetic bool `yaml:"phonetic,omitempty" json:"phonetic,omitempty"`
}

// DataSchema describes the per-session record a workflow operates on.
type DataSchema struct {
	Entity   string                `yaml:"entity" json:"entity"`
	Required []string              `yaml:"required" json:"required"`
	Formats  map[string]FormatRule `yaml:"formats" json:"formats"`
}

// StateDefinition is one named point in the conversation.
type StateDefinition struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// PromptsRef names the prompt-set this state renders.
	PromptsRef string `yaml:"prompts_ref" json:"prompts_ref"`

	// DataAccess whitelists the session fields this state's prompt may see.
	DataAccess []string `yaml:"data_access,omitempty" json:"data_access,omitempty"`

	// AllowedTransitions whitelists the states the model may request from here.
	AllowedTransitions []string `yaml:"allowed_transitions,omitempty" json:"allowed_transitions,omitempty"`

	// LLMDirected permits the model to request transitions at all.
	LLMDirected bool `yaml:"llm_directed,omitempty" json:"llm_directed,omitempty"`

	// EntryPoint marks greeting-like states for the history policy.
	EntryPoint bool `yaml:"entry_point,omitempty" json:"entry_point,omitempty"`

	// Terminal marks sink states.
	Terminal bool `yaml:"terminal,omitempty" json:"terminal,omitempty"`

	// Recovery marks connection/stuck states that are entered without
	// model or tool side effects.
	Recovery bool `yaml:"recovery,omitempty" json:"recovery,omitempty"`

	// Tools lists the function names that must be enabled while here.
	Tools []string `yaml:"tools,omitempty" json:"tools,omitempty"`
}

// MatchMode controls how a keyword trigger combines its keywords.
type MatchMode string

const (
	// MatchAny fires when at least one keyword matches the utterance.
	MatchAny MatchMode = "any"
	// MatchAll fires only when every keyword matches the utterance.
	MatchAll MatchMode = "all"
)

// TriggerKeywords is the keyword-detection trigger kind.
const TriggerKeywords = "keywords"

// KeywordTrigger is the decoded parameter set of a "keywords" trigger.
type KeywordTrigger struct {
	Keywords []string  `mapstructure:"keywords" json:"keywords"`
	Match    MatchMode `mapstructure:"match" json:"match"`
}

// Trigger carries the raw trigger definition. Params stays schema-extensible:
// new trigger kinds only add a decoded form here and a dispatch arm in the
// state manager, never changes to its core loop.
type Trigger struct {
	Kind   string         `yaml:"kind" json:"kind"`
	Params map[string]any `yaml:",inline" json:"params,omitempty"`

	// Keywords is the decoded form when Kind == TriggerKeywords,
	// populated during Load.
	Keywords *KeywordTrigger `yaml:"-" json:"-"`
}

// TransitionRule is a keyword-triggered transition, independent of any
// model-proposed transitions.
type TransitionRule struct {
	FromState   string  `yaml:"from_state" json:"from_state"`
	ToState     string  `yaml:"to_state" json:"to_state"`
	Trigger     Trigger `yaml:"trigger" json:"trigger"`
	Reason      string  `yaml:"reason" json:"reason"`
	Description string  `yaml:"description,omitempty" json:"description,omitempty"`
}

// PromptSet maps a section name ("system", "task") to its template text.
type PromptSet map[string]string

// Prompt section names rendered per state, in order.
const (
	SectionSystem = "system"
	SectionTask   = "task"
)

// Schema is the immutable in-memory representation of one workflow.
// It is shared read-only across every concurrent session; nothing in it is
// mutated after Load returns.
type Schema struct {
	Workflow     Workflow
	Persona      Persona
	Data         DataSchema
	InitialState string
	States       []StateDefinition
	Rules        []TransitionRule
	Prompts      map[string]PromptSet

	// GlobalInstructions is the schema-level template injected into every
	// state render. May be empty.
	GlobalInstructions string

	states       map[string]int
	rulesByState map[string][]TransitionRule
}
