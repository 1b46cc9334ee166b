package dsl

import "github.com/aretw0/parley/pkg/schema"

// StateBuilder provides a fluent API for configuring one state.
type StateBuilder struct {
	def     schema.StateDefinition
	builder *Builder
}

// System sets the state's system prompt template. The prompt set is stored
// under "<state>_prompts" and referenced automatically.
func (s *StateBuilder) System(template string) *StateBuilder {
	s.promptSet()[schema.SectionSystem] = template
	return s
}

// Task sets the state's task section template.
func (s *StateBuilder) Task(template string) *StateBuilder {
	s.promptSet()[schema.SectionTask] = template
	return s
}

func (s *StateBuilder) promptSet() schema.PromptSet {
	if s.def.PromptsRef == "" {
		s.def.PromptsRef = s.def.Name + "_prompts"
	}
	ps, ok := s.builder.prompts[s.def.PromptsRef]
	if !ok {
		ps = schema.PromptSet{}
		s.builder.prompts[s.def.PromptsRef] = ps
	}
	return ps
}

// PromptsRef points the state at a shared prompt set instead of its own.
func (s *StateBuilder) PromptsRef(ref string) *StateBuilder {
	s.def.PromptsRef = ref
	return s
}

// Describe sets the state's description.
func (s *StateBuilder) Describe(text string) *StateBuilder {
	s.def.Description = text
	return s
}

// Access whitelists the session data fields this state's prompt may see.
func (s *StateBuilder) Access(fields ...string) *StateBuilder {
	s.def.DataAccess = append(s.def.DataAccess, fields...)
	return s
}

// AllowTo whitelists the states the model may request from here and marks
// the state as model-directed.
func (s *StateBuilder) AllowTo(states ...string) *StateBuilder {
	s.def.AllowedTransitions = append(s.def.AllowedTransitions, states...)
	s.def.LLMDirected = true
	return s
}

// Tools lists the function names enabled while the conversation is here.
func (s *StateBuilder) Tools(names ...string) *StateBuilder {
	s.def.Tools = append(s.def.Tools, names...)
	return s
}

// Entry marks the state as an entry point for the history policy.
func (s *StateBuilder) Entry() *StateBuilder {
	s.def.EntryPoint = true
	return s
}

// Terminal marks the state as a sink.
func (s *StateBuilder) Terminal() *StateBuilder {
	s.def.Terminal = true
	return s
}

// Recovery marks the state as a connection-recovery state, entered without
// model or tool side effects.
func (s *StateBuilder) Recovery() *StateBuilder {
	s.def.Recovery = true
	return s
}

// On adds a keyword rule from this state: when any keyword is heard, the
// conversation moves to target.
func (s *StateBuilder) On(keywords []string, target, reason string) *StateBuilder {
	return s.rule(keywords, schema.MatchAny, target, reason)
}

// OnAll adds a keyword rule that fires only when every keyword is heard.
func (s *StateBuilder) OnAll(keywords []string, target, reason string) *StateBuilder {
	return s.rule(keywords, schema.MatchAll, target, reason)
}

func (s *StateBuilder) rule(keywords []string, match schema.MatchMode, target, reason string) *StateBuilder {
	s.builder.rules = append(s.builder.rules, schema.TransitionRule{
		FromState: s.def.Name,
		ToState:   target,
		Trigger: schema.Trigger{
			Kind: schema.TriggerKeywords,
			Params: map[string]any{
				"keywords": keywords,
				"match":    string(match),
			},
		},
		Reason: reason,
	})
	return s
}

// And returns the parent builder for continued chaining.
func (s *StateBuilder) And() *Builder {
	return s.builder
}
