package prompt_test

import (
	"testing"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/prompt"
	"github.com/aretw0/parley/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rendererDefinition = `
workflow: {name: w}
persona:
  name: Sarah
  role: billing assistant
  company: Acme Health
states:
  initial: greeting
  definitions:
    - name: greeting
      prompts_ref: greeting_prompts
      data_access: [first_name]
    - name: verify
      prompts_ref: verify_prompts
      data_access: [first_name, member_id]
    - name: quiet
      prompts_ref: quiet_prompts
`

const rendererPrompts = `
global: |
  Calling about {{.first_name}} (member {{.member_id}}). Stay in character as {{.persona_name}}.
prompts:
  greeting_prompts:
    system: |
      You are {{.persona_name}}, a {{.persona_role}} with {{.persona_company}}.
      {{.global_instructions}}
      Greet the office and mention {{.first_name}} only.
    task: |
      Confirm you reached the right department.
  verify_prompts:
    system: |
      Verify member {{.member_id_spoken}} for {{.first_name}}.
  quiet_prompts:
    system: |
      Say nothing about {{.member_id}}.
`

func newRenderer(t *testing.T) *prompt.Renderer {
	t.Helper()
	s, err := schema.Load([]byte(rendererDefinition), []byte(rendererPrompts))
	require.NoError(t, err)
	r, err := prompt.NewRenderer(s)
	require.NoError(t, err)
	return r
}

func sessionData() map[string]string {
	return map[string]string{
		"first_name":       "Maria",
		"member_id":        "1234567890",
		"member_id_spoken": "one two three, four five six, seven eight nine zero",
	}
}

func TestRenderState_SectionsJoined(t *testing.T) {
	r := newRenderer(t)

	out, err := r.RenderState("greeting", sessionData())
	require.NoError(t, err)

	assert.Contains(t, out, "You are Sarah, a billing assistant with Acme Health.")
	assert.Contains(t, out, "Confirm you reached the right department.")
	assert.Contains(t, out, "\n\n", "system and task sections separated by a blank line")
}

func TestRenderState_DataMinimization(t *testing.T) {
	r := newRenderer(t)
	data := sessionData()

	out, err := r.RenderState("quiet", data)
	require.NoError(t, err)

	// quiet has no data_access: the member id must not leak even though the
	// template references it and the data contains it.
	assert.NotContains(t, out, data["member_id"])
	assert.Equal(t, "Say nothing about .", out)
}

func TestRenderState_GlobalInstructionsAreUnrestricted(t *testing.T) {
	r := newRenderer(t)
	data := sessionData()

	out, err := r.RenderState("greeting", data)
	require.NoError(t, err)

	// greeting may not access member_id directly, but the injected global
	// instructions may reference any field.
	assert.Contains(t, out, "Calling about Maria (member 1234567890).")
}

func TestRenderState_SpokenVariantsFollowWhitelist(t *testing.T) {
	r := newRenderer(t)

	out, err := r.RenderState("verify", sessionData())
	require.NoError(t, err)

	assert.Contains(t, out, "Verify member one two three, four five six, seven eight nine zero for Maria.")
}

func TestRenderState_MissingVariableRendersEmpty(t *testing.T) {
	r := newRenderer(t)

	out, err := r.RenderState("verify", map[string]string{"first_name": "Maria"})
	require.NoError(t, err)

	assert.Contains(t, out, "Verify member  for Maria.")
}

func TestRenderState_Deterministic(t *testing.T) {
	r := newRenderer(t)
	data := sessionData()

	first, err := r.RenderState("greeting", data)
	require.NoError(t, err)
	second, err := r.RenderState("greeting", data)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRenderState_UnknownState(t *testing.T) {
	r := newRenderer(t)

	_, err := r.RenderState("ghost", sessionData())

	var notFound *domain.StateNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestNewRenderer_BadTemplateFailsLoad(t *testing.T) {
	s, err := schema.Load([]byte(rendererDefinition), []byte(`
prompts:
  greeting_prompts:
    system: "{{.unclosed"
  verify_prompts:
    system: ok
  quiet_prompts:
    system: ok
`))
	require.NoError(t, err)

	_, err = prompt.NewRenderer(s)
	require.Error(t, err)
}
