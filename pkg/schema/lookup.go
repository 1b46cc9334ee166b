package schema

import "github.com/aretw0/parley/pkg/domain"

// State returns the definition for name. A miss is a configuration or
// programming defect and surfaces as *domain.StateNotFoundError.
func (s *Schema) State(name string) (StateDefinition, error) {
	i, ok := s.states[name]
	if !ok {
		return StateDefinition{}, &domain.StateNotFoundError{Name: name}
	}
	return s.States[i], nil
}

// HasState reports whether name is defined.
func (s *Schema) HasState(name string) bool {
	_, ok := s.states[name]
	return ok
}

// PromptsFor returns the prompt sections for the named state, failing if the
// state is unknown. Dangling references cannot occur post-Load.
func (s *Schema) PromptsFor(name string) (PromptSet, error) {
	st, err := s.State(name)
	if err != nil {
		return nil, err
	}
	return s.Prompts[st.PromptsRef], nil
}

// AllowedTransitions returns the transition whitelist for name. It is a pure
// lookup consulted opportunistically during the turn loop, so unknown and
// terminal states yield an empty list rather than an error.
func (s *Schema) AllowedTransitions(name string) []string {
	i, ok := s.states[name]
	if !ok {
		return nil
	}
	return s.States[i].AllowedTransitions
}

// RulesFrom returns the keyword transition rules scoped to name. Unknown
// states yield an empty list.
func (s *Schema) RulesFrom(name string) []TransitionRule {
	return s.rulesByState[name]
}

// IsEntry reports whether name is greeting-like for history policy: either
// flagged entry_point or the workflow's initial state.
func (s *Schema) IsEntry(name string) bool {
	i, ok := s.states[name]
	if !ok {
		return false
	}
	return s.States[i].EntryPoint || name == s.InitialState
}
