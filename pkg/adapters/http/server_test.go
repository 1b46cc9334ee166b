package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/parley"
	httpadapter "github.com/aretw0/parley/pkg/adapters/http"
	"github.com/aretw0/parley/pkg/adapters/memory"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const definitionYAML = `
workflow: {name: eligibility_verification}
persona: {name: Sarah, role: billing assistant, company: Acme Health}
data:
  entity: patient
  required: [first_name]
  formats: {}
states:
  initial: greeting
  definitions:
    - name: greeting
      prompts_ref: greeting_prompts
      data_access: [first_name]
      allowed_transitions: [verify, end_call]
      llm_directed: true
      entry_point: true
    - name: verify
      prompts_ref: verify_prompts
      data_access: [first_name]
      llm_directed: true
      tools: [lookup_member]
    - name: on_hold
      prompts_ref: hold_prompts
rules:
  - from_state: greeting
    to_state: on_hold
    trigger: {kind: keywords, keywords: ["one moment"]}
    reason: hold_detected
`

const promptsYAML = `
prompts:
  greeting_prompts:
    system: "Greet the office. The patient is {{.first_name}}."
  verify_prompts:
    system: "Verify eligibility for {{.first_name}}."
  hold_prompts:
    system: "Wait quietly."
`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	workflow, err := parley.Load([]byte(definitionYAML), []byte(promptsYAML))
	require.NoError(t, err)

	sessions := session.NewManager(memory.NewStore())
	srv := httptest.NewServer(httpadapter.NewHandler(workflow, sessions))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func createCall(t *testing.T, srv *httptest.Server, callID string) httpadapter.CallResponse {
	t.Helper()
	resp := postJSON(t, srv.URL+"/calls", httpadapter.CreateCallRequest{
		CallID: callID,
		Data:   map[string]string{"first_name": "Maria"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[httpadapter.CallResponse](t, resp)
}

func TestCreateCall(t *testing.T) {
	srv := newTestServer(t)

	created := createCall(t, srv, "call-1")
	assert.Equal(t, "greeting", created.State)
	assert.Contains(t, created.Prompt, "Maria")

	// Creating the same call again conflicts.
	resp := postJSON(t, srv.URL+"/calls", httpadapter.CreateCallRequest{CallID: "call-1"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCreateCall_RequiresCallID(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/calls", httpadapter.CreateCallRequest{})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAssistantTurn_Transition(t *testing.T) {
	srv := newTestServer(t)
	createCall(t, srv, "call-1")

	resp := postJSON(t, srv.URL+"/calls/call-1/assistant", httpadapter.TurnRequest{
		Text: "Let me pull that up. <next_state>verify</next_state>",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	result := decode[domain.TurnResult](t, resp)
	assert.True(t, result.Transitioned)
	assert.Equal(t, "verify", result.To)
	assert.NotEmpty(t, result.Directives)

	// The transition persisted across requests.
	getResp, err := http.Get(srv.URL + "/calls/call-1")
	require.NoError(t, err)
	snap := decode[domain.Snapshot](t, getResp)
	assert.Equal(t, "verify", snap.State)
}

func TestUserUtterance_KeywordRule(t *testing.T) {
	srv := newTestServer(t)
	createCall(t, srv, "call-1")

	resp := postJSON(t, srv.URL+"/calls/call-1/user", httpadapter.TurnRequest{
		Text: "Sure, one moment please.",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	result := decode[domain.TurnResult](t, resp)
	assert.True(t, result.Transitioned)
	assert.Equal(t, "on_hold", result.To)
}

func TestTurn_UnknownCall(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/calls/ghost/assistant", httpadapter.TurnRequest{Text: "hi"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetPrompt(t *testing.T) {
	srv := newTestServer(t)
	createCall(t, srv, "call-1")

	resp, err := http.Get(srv.URL + "/calls/call-1/prompt")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	call := decode[httpadapter.CallResponse](t, resp)
	assert.Equal(t, "greeting", call.State)
	assert.Contains(t, call.Prompt, "Greet the office")
}

func TestDeleteCall(t *testing.T) {
	srv := newTestServer(t)
	createCall(t, srv, "call-1")

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/calls/call-1", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	getResp, err := http.Get(srv.URL + "/calls/call-1")
	require.NoError(t, err)
	getResp.Body.Close()
	assert.Equal(t, http.StatusNotFound, getResp.StatusCode)
}

func TestGraphAndHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/graph")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "flowchart TD")

	healthResp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	health := decode[map[string]string](t, healthResp)
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "eligibility_verification", health["workflow"])
}
