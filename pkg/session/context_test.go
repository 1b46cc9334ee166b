package session

import (
	"testing"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/prompt"
	"github.com/aretw0/parley/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const definitionYAML = `
workflow:
  name: intake
  version: "1.0"
persona:
  name: Sarah
  role: scheduling assistant
  company: Acme Health
data:
  entity: patient
  required: [first_name]
  formats:
    dob: { kind: date }
states:
  initial: greeting
  definitions:
    - name: greeting
      prompts_ref: greeting_prompts
      data_access: [first_name, dob]
      allowed_transitions: [wrap_up]
      llm_directed: true
      entry_point: true
    - name: wrap_up
      prompts_ref: wrap_up_prompts
`

const promptsYAML = `
prompts:
  greeting_prompts:
    system: "Greet {{.first_name}}, born {{.dob_spoken}}."
  wrap_up_prompts:
    system: "Wrap up the call."
`

func newTestContext(t *testing.T, data map[string]string) *Context {
	t.Helper()
	s, err := schema.Load([]byte(definitionYAML), []byte(promptsYAML))
	require.NoError(t, err)
	r, err := prompt.NewRenderer(s)
	require.NoError(t, err)
	return NewContext(s, r, "call-42", data)
}

func TestNewContext_StartsAtInitialState(t *testing.T) {
	ctx := newTestContext(t, map[string]string{"first_name": "Maria"})

	assert.Equal(t, "call-42", ctx.CallID())
	assert.Equal(t, "greeting", ctx.Current())
}

func TestNewContext_FormatsDataOnce(t *testing.T) {
	ctx := newTestContext(t, map[string]string{
		"first_name": "Maria",
		"dob":        "1980-03-15",
	})

	data := ctx.Data()
	assert.Equal(t, "Maria", data["first_name"])
	assert.Equal(t, "March fifteenth, 1980", data["dob_spoken"])
}

func TestNewContext_CopiesCallerData(t *testing.T) {
	input := map[string]string{"first_name": "Maria"}
	ctx := newTestContext(t, input)

	input["first_name"] = "changed"
	assert.Equal(t, "Maria", ctx.Snapshot().Data["first_name"])
}

func TestTransitionTo(t *testing.T) {
	ctx := newTestContext(t, map[string]string{"first_name": "Maria"})

	require.NoError(t, ctx.TransitionTo("wrap_up", "model_requested"))
	assert.Equal(t, "wrap_up", ctx.Current())
}

func TestTransitionTo_UnknownState(t *testing.T) {
	ctx := newTestContext(t, map[string]string{"first_name": "Maria"})

	err := ctx.TransitionTo("nope", "model_requested")
	var notFound *domain.StateNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "nope", notFound.Name)
	assert.Equal(t, "greeting", ctx.Current(), "failed transition must not move the context")
}

func TestRenderPrompt(t *testing.T) {
	ctx := newTestContext(t, map[string]string{
		"first_name": "Maria",
		"dob":        "1980-03-15",
	})

	out, err := ctx.RenderPrompt()
	require.NoError(t, err)
	assert.Equal(t, "Greet Maria, born March fifteenth, 1980.", out)
}

func TestSnapshot_CarriesRawData(t *testing.T) {
	ctx := newTestContext(t, map[string]string{
		"first_name": "Maria",
		"dob":        "1980-03-15",
	})
	require.NoError(t, ctx.TransitionTo("wrap_up", "model_requested"))

	snap := ctx.Snapshot()
	assert.Equal(t, "call-42", snap.CallID)
	assert.Equal(t, "intake", snap.Workflow)
	assert.Equal(t, "wrap_up", snap.State)
	assert.Equal(t, "1980-03-15", snap.Data["dob"], "snapshot keeps raw values, not spoken forms")
	assert.NotContains(t, snap.Data, "dob_spoken")
	assert.False(t, snap.UpdatedAt.IsZero())
}
