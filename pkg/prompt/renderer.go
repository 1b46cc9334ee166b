package prompt

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/aretw0/parley/pkg/schema"
	"github.com/aretw0/parley/pkg/speech"
)

// Context keys injected into every render.
const (
	KeyPersonaName    = "persona_name"
	KeyPersonaRole    = "persona_role"
	KeyPersonaCompany = "persona_company"

	// KeyGlobalInstructions carries the rendered schema-level instructions
	// into each state template.
	KeyGlobalInstructions = "global_instructions"
)

// sectionOrder fixes the concatenation order of rendered sections.
var sectionOrder = []string{schema.SectionSystem, schema.SectionTask}

type templateKey struct {
	state   string
	section string
}

// Renderer holds the precompiled templates for one workflow. It is immutable
// after construction and safe for concurrent use by every session.
type Renderer struct {
	schema    *schema.Schema
	templates map[templateKey]*template.Template
	global    *template.Template
}

// NewRenderer compiles every prompt template referenced by the schema's
// states, plus the schema-level global-instructions template. Compilation
// failures are configuration errors and abort workflow startup.
func NewRenderer(s *schema.Schema) (*Renderer, error) {
	r := &Renderer{
		schema:    s,
		templates: make(map[templateKey]*template.Template),
	}

	for _, st := range s.States {
		sections := s.Prompts[st.PromptsRef]
		for _, section := range sectionOrder {
			text, ok := sections[section]
			if !ok || strings.TrimSpace(text) == "" {
				continue
			}
			tmpl, err := compile(st.Name+"/"+section, text)
			if err != nil {
				return nil, fmt.Errorf("compiling prompt %s/%s: %w", st.Name, section, err)
			}
			r.templates[templateKey{st.Name, section}] = tmpl
		}
	}

	if strings.TrimSpace(s.GlobalInstructions) != "" {
		tmpl, err := compile("global_instructions", s.GlobalInstructions)
		if err != nil {
			return nil, fmt.Errorf("compiling global instructions: %w", err)
		}
		r.global = tmpl
	}

	return r, nil
}

// compile parses one template with missing keys rendering as empty strings:
// a template referencing an absent variable must degrade, never crash a turn.
func compile(name, text string) (*template.Template, error) {
	return template.New(name).Option("missingkey=zero").Parse(text)
}

// RenderState renders the prompt for one state against the session's
// formatted data.
//
// The state context is restricted: persona fields plus only the fields the
// state's data_access whitelist grants (and their spoken variants). Fields
// outside the whitelist never reach the template, even when present in the
// data — a state's prompt cannot leak a field the schema didn't grant it.
// Global instructions are the one exception: they render against the full
// data and are injected as a single variable.
func (r *Renderer) RenderState(stateName string, formatted map[string]string) (string, error) {
	st, err := r.schema.State(stateName)
	if err != nil {
		return "", err
	}

	restricted := r.personaContext()
	for _, field := range st.DataAccess {
		if v, ok := formatted[field]; ok {
			restricted[field] = v
		}
		spoken := field + speech.SpokenSuffix
		if v, ok := formatted[spoken]; ok {
			restricted[spoken] = v
		}
	}

	if r.global != nil {
		full := r.personaContext()
		for k, v := range formatted {
			full[k] = v
		}
		rendered, err := execute(r.global, full)
		if err != nil {
			return "", fmt.Errorf("rendering global instructions: %w", err)
		}
		restricted[KeyGlobalInstructions] = rendered
	}

	var parts []string
	for _, section := range sectionOrder {
		tmpl, ok := r.templates[templateKey{stateName, section}]
		if !ok {
			continue
		}
		rendered, err := execute(tmpl, restricted)
		if err != nil {
			return "", fmt.Errorf("rendering %s/%s: %w", stateName, section, err)
		}
		if rendered != "" {
			parts = append(parts, rendered)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

func (r *Renderer) personaContext() map[string]string {
	p := r.schema.Persona
	return map[string]string{
		KeyPersonaName:    p.Name,
		KeyPersonaRole:    p.Role,
		KeyPersonaCompany: p.Company,
	}
}

func execute(tmpl *template.Template, data map[string]string) (string, error) {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", err
	}
	return strings.TrimSpace(sb.String()), nil
}
