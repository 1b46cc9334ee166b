package schema

import "github.com/aretw0/parley/pkg/domain"

// validate enforces the load-time invariants: every reference between
// states, rules and prompt sets must resolve. The first problem wins.
func (s *Schema) validate() error {
	if s.Workflow.Name == "" {
		return invalidf("workflow.name", "workflow name is required")
	}
	if len(s.States) == 0 {
		return invalidf("states.definitions", "at least one state is required")
	}
	if s.InitialState == "" {
		return invalidf("states.initial", "initial state is required")
	}
	if _, ok := s.states[s.InitialState]; !ok {
		return invalidf("states.initial", "initial state %q is not defined", s.InitialState)
	}

	for _, st := range s.States {
		field := "states." + st.Name
		if st.PromptsRef == "" {
			return invalidf(field+".prompts_ref", "prompt reference is required")
		}
		if _, ok := s.Prompts[st.PromptsRef]; !ok {
			return invalidf(field+".prompts_ref", "dangling prompt reference %q", st.PromptsRef)
		}
		for _, target := range st.AllowedTransitions {
			// end_call is a control target, not a state.
			if target == domain.EndCallTarget {
				continue
			}
			if _, ok := s.states[target]; !ok {
				return invalidf(field+".allowed_transitions", "transition to unknown state %q", target)
			}
		}
	}

	for i, r := range s.Rules {
		if _, ok := s.states[r.FromState]; !ok {
			return invalidf(ruleField(i, "from_state"), "unknown state %q", r.FromState)
		}
		if _, ok := s.states[r.ToState]; !ok {
			return invalidf(ruleField(i, "to_state"), "unknown state %q", r.ToState)
		}
		if kt := r.Trigger.Keywords; kt != nil {
			if len(kt.Keywords) == 0 {
				return invalidf(ruleField(i, "trigger.keywords"), "keyword list must not be empty")
			}
			if kt.Match != MatchAny && kt.Match != MatchAll {
				return invalidf(ruleField(i, "trigger.match"), "match mode must be %q or %q, got %q", MatchAny, MatchAll, kt.Match)
			}
		}
	}

	for field, rule := range s.Data.Formats {
		f := "data.formats." + field
		switch rule.Kind {
		case FormatDate, FormatDigits, FormatDigitsGrouped, FormatSpell:
		default:
			return invalidf(f+".kind", "unknown format kind %q", rule.Kind)
		}
		for _, g := range rule.Groups {
			if g <= 0 {
				return invalidf(f+".groups", "group sizes must be positive, got %d", g)
			}
		}
	}

	return nil
}
