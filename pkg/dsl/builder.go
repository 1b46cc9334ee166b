package dsl

import (
	"fmt"

	"github.com/aretw0/parley/pkg/schema"
	"gopkg.in/yaml.v3"
)

// Builder assembles a workflow definition programmatically, as an alternative
// to authoring the YAML documents by hand. Useful for tests and for embedding
// small workflows directly in Go code.
type Builder struct {
	workflow schema.Workflow
	persona  schema.Persona
	data     schema.DataSchema

	initial string
	order   []string
	states  map[string]*StateBuilder
	rules   []schema.TransitionRule

	global  string
	prompts map[string]schema.PromptSet
}

// New creates a builder for a workflow with the given name. The first state
// added becomes the initial state unless Initial overrides it.
func New(name string) *Builder {
	return &Builder{
		workflow: schema.Workflow{Name: name, Version: "1.0"},
		states:   make(map[string]*StateBuilder),
		prompts:  make(map[string]schema.PromptSet),
	}
}

// Version sets the workflow version.
func (b *Builder) Version(v string) *Builder {
	b.workflow.Version = v
	return b
}

// ClientID tags the workflow with the client it belongs to.
func (b *Builder) ClientID(id string) *Builder {
	b.workflow.ClientID = id
	return b
}

// Persona sets the voice identity substituted into every prompt.
func (b *Builder) Persona(name, role, company string) *Builder {
	b.persona = schema.Persona{Name: name, Role: role, Company: company}
	return b
}

// Entity names the per-session record the workflow operates on.
func (b *Builder) Entity(entity string) *Builder {
	b.data.Entity = entity
	return b
}

// Require marks session data fields as mandatory at session start.
func (b *Builder) Require(fields ...string) *Builder {
	b.data.Required = append(b.data.Required, fields...)
	return b
}

// Format attaches a spoken-rendering rule to a data field.
func (b *Builder) Format(field string, rule schema.FormatRule) *Builder {
	if b.data.Formats == nil {
		b.data.Formats = make(map[string]schema.FormatRule)
	}
	b.data.Formats[field] = rule
	return b
}

// Global sets the schema-level instruction template injected into every
// state render.
func (b *Builder) Global(text string) *Builder {
	b.global = text
	return b
}

// Initial overrides which state the conversation starts in.
func (b *Builder) Initial(name string) *Builder {
	b.initial = name
	return b
}

// State creates a new state in the workflow, or returns the existing builder
// when the name was already added.
func (b *Builder) State(name string) *StateBuilder {
	if sb, ok := b.states[name]; ok {
		return sb
	}
	sb := &StateBuilder{
		def:     schema.StateDefinition{Name: name},
		builder: b,
	}
	b.states[name] = sb
	b.order = append(b.order, name)
	if b.initial == "" {
		b.initial = name
	}
	return sb
}

// Definition marshals the workflow definition document.
func (b *Builder) Definition() ([]byte, error) {
	defs := make([]schema.StateDefinition, 0, len(b.order))
	for _, name := range b.order {
		defs = append(defs, b.states[name].def)
	}
	doc := definitionDoc{
		Workflow: b.workflow,
		Persona:  b.persona,
		Data:     b.data,
		States:   statesDoc{Initial: b.initial, Definitions: defs},
		Rules:    b.rules,
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshaling definition: %w", err)
	}
	return out, nil
}

// Prompts marshals the prompt-text document.
func (b *Builder) Prompts() ([]byte, error) {
	doc := promptDoc{Global: b.global, Prompts: b.prompts}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshaling prompts: %w", err)
	}
	return out, nil
}

// Build compiles the builder into a validated schema. All load-time checks
// apply, so an inconsistent builder fails here, not at call time.
func (b *Builder) Build() (*schema.Schema, error) {
	definition, err := b.Definition()
	if err != nil {
		return nil, err
	}
	prompts, err := b.Prompts()
	if err != nil {
		return nil, err
	}
	return schema.Load(definition, prompts)
}

type definitionDoc struct {
	Workflow schema.Workflow         `yaml:"workflow"`
	Persona  schema.Persona          `yaml:"persona"`
	Data     schema.DataSchema       `yaml:"data"`
	States   statesDoc               `yaml:"states"`
	Rules    []schema.TransitionRule `yaml:"rules,omitempty"`
}

type statesDoc struct {
	Initial     string                   `yaml:"initial"`
	Definitions []schema.StateDefinition `yaml:"definitions"`
}

type promptDoc struct {
	Global  string                      `yaml:"global,omitempty"`
	Prompts map[string]schema.PromptSet `yaml:"prompts"`
}
