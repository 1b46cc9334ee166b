package schema

import (
	"bytes"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// definitionDoc mirrors the YAML layout of a workflow definition document.
type definitionDoc struct {
	Workflow Workflow         `yaml:"workflow"`
	Persona  Persona          `yaml:"persona"`
	Data     DataSchema       `yaml:"data"`
	States   statesDoc        `yaml:"states"`
	Rules    []TransitionRule `yaml:"rules"`
}

type statesDoc struct {
	Initial     string            `yaml:"initial"`
	Definitions []StateDefinition `yaml:"definitions"`
}

// promptDoc mirrors the YAML layout of a prompt-text document.
type promptDoc struct {
	Global  string               `yaml:"global"`
	Prompts map[string]PromptSet `yaml:"prompts"`
}

// Load parses and validates the two workflow documents into an immutable
// Schema. The first structural problem found is returned as a
// *ValidationError; a schema is never usable in an inconsistent state.
func Load(definition, prompts []byte) (*Schema, error) {
	var def definitionDoc
	if err := decodeStrict(definition, &def); err != nil {
		return nil, fmt.Errorf("parsing definition document: %w", err)
	}

	var pd promptDoc
	if err := decodeStrict(prompts, &pd); err != nil {
		return nil, fmt.Errorf("parsing prompt document: %w", err)
	}

	s := &Schema{
		Workflow:           def.Workflow,
		Persona:            def.Persona,
		Data:               def.Data,
		InitialState:       def.States.Initial,
		States:             def.States.Definitions,
		Rules:              def.Rules,
		Prompts:            pd.Prompts,
		GlobalInstructions: pd.Global,
	}
	if s.Prompts == nil {
		s.Prompts = map[string]PromptSet{}
	}

	if err := s.buildIndexes(); err != nil {
		return nil, err
	}
	if err := s.decodeTriggers(); err != nil {
		return nil, err
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// decodeStrict rejects unknown document keys so typos surface at load time
// instead of silently dropping configuration.
func decodeStrict(doc []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(doc))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return err
	}
	return nil
}

func (s *Schema) buildIndexes() error {
	s.states = make(map[string]int, len(s.States))
	for i, st := range s.States {
		if st.Name == "" {
			return invalidf(fmt.Sprintf("states.definitions[%d]", i), "state name is required")
		}
		if _, dup := s.states[st.Name]; dup {
			return invalidf("states."+st.Name, "duplicate state name")
		}
		s.states[st.Name] = i
	}

	s.rulesByState = make(map[string][]TransitionRule)
	for _, r := range s.Rules {
		s.rulesByState[r.FromState] = append(s.rulesByState[r.FromState], r)
	}
	return nil
}

// decodeTriggers resolves each rule's raw parameter map into its typed form.
func (s *Schema) decodeTriggers() error {
	for i := range s.Rules {
		r := &s.Rules[i]
		switch r.Trigger.Kind {
		case TriggerKeywords:
			var kt KeywordTrigger
			if err := mapstructure.Decode(r.Trigger.Params, &kt); err != nil {
				return invalidf(ruleField(i, "trigger"), "decoding keyword trigger: %v", err)
			}
			if kt.Match == "" {
				kt.Match = MatchAny
			}
			r.Trigger.Keywords = &kt
		case "":
			return invalidf(ruleField(i, "trigger.kind"), "trigger kind is required")
		default:
			return invalidf(ruleField(i, "trigger.kind"), "unknown trigger kind %q", r.Trigger.Kind)
		}
	}
	return nil
}

func ruleField(i int, suffix string) string {
	return fmt.Sprintf("rules[%d].%s", i, suffix)
}
