// Package mcp exposes a workflow over the Model Context Protocol, giving
// prompt engineers authoring tools: render any state's prompt, simulate
// turns against a scratch session and inspect the state graph.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/presentation/graph"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// SimulationResponse is the structured result of the simulation tools.
type SimulationResponse struct {
	State        string             `json:"state" jsonschema_description:"State after the simulated turn"`
	Transitioned bool               `json:"transitioned" jsonschema_description:"Whether the turn caused a transition"`
	Reason       string             `json:"reason,omitempty" jsonschema_description:"Transition reason"`
	Ended        bool               `json:"ended,omitempty" jsonschema_description:"Whether the call terminated"`
	Prompt       string             `json:"prompt" jsonschema_description:"Active system prompt after the turn"`
	Directives   []domain.Directive `json:"directives,omitempty" jsonschema_description:"Directives the turn emitted"`
}

// PromptResponse is the structured result of render_prompt.
type PromptResponse struct {
	State  string `json:"state" jsonschema_description:"The rendered state"`
	Prompt string `json:"prompt" jsonschema_description:"The rendered system prompt"`
}

// Server wraps a workflow and exposes it as an MCP server.
type Server struct {
	workflow  *parley.Workflow
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server for one workflow.
func NewServer(workflow *parley.Workflow) *Server {
	s := &Server{
		workflow:  workflow,
		mcpServer: server.NewMCPServer("parley-mcp", strings.TrimSpace(parley.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	renderTool := mcp.NewTool("render_prompt",
		mcp.WithDescription("Render the system prompt for a state against sample session data."),
		mcp.WithString("state", mcp.Description("State name (defaults to the initial state)")),
		mcp.WithString("data", mcp.Description("JSON object of session data fields (optional)")),
		mcp.WithOutputSchema[PromptResponse](),
	)
	s.mcpServer.AddTool(renderTool, mcp.NewStructuredToolHandler(s.handleRenderPrompt))

	utteranceTool := mcp.NewTool("simulate_utterance",
		mcp.WithDescription("Simulate a user utterance from a state and report the resulting transition and directives."),
		mcp.WithString("text", mcp.Required(), mcp.Description("The user utterance")),
		mcp.WithString("state", mcp.Description("Starting state (defaults to the initial state)")),
		mcp.WithString("data", mcp.Description("JSON object of session data fields (optional)")),
		mcp.WithOutputSchema[SimulationResponse](),
	)
	s.mcpServer.AddTool(utteranceTool, mcp.NewStructuredToolHandler(s.handleSimulateUtterance))

	assistantTool := mcp.NewTool("simulate_assistant_turn",
		mcp.WithDescription("Simulate assistant output (optionally carrying a <next_state> marker) from a state."),
		mcp.WithString("text", mcp.Required(), mcp.Description("The assistant output")),
		mcp.WithString("state", mcp.Description("Starting state (defaults to the initial state)")),
		mcp.WithString("data", mcp.Description("JSON object of session data fields (optional)")),
		mcp.WithOutputSchema[SimulationResponse](),
	)
	s.mcpServer.AddTool(assistantTool, mcp.NewStructuredToolHandler(s.handleSimulateAssistantTurn))

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the workflow state graph as a Mermaid flowchart."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(graph.Mermaid(s.workflow.Schema())), nil
	})
}

// scratchSession builds a throwaway session positioned at the requested
// state. Simulations never touch a store.
func (s *Server) scratchSession(args map[string]interface{}) (*parley.Session, error) {
	data := map[string]string{}
	if raw, ok := args["data"].(string); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			return nil, fmt.Errorf("invalid data JSON: %w", err)
		}
	}

	snap := &domain.Snapshot{
		CallID: "mcp-simulation",
		Data:   data,
	}
	if state, ok := args["state"].(string); ok {
		snap.State = state
	}
	return s.workflow.Resume(snap)
}

func (s *Server) handleRenderPrompt(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (PromptResponse, error) {
	sess, err := s.scratchSession(args)
	if err != nil {
		return PromptResponse{}, err
	}
	return PromptResponse{
		State:  sess.State(),
		Prompt: sess.Prompt(),
	}, nil
}

func (s *Server) handleSimulateUtterance(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SimulationResponse, error) {
	return s.simulate(ctx, args, func(sess *parley.Session, text string) (*domain.TurnResult, error) {
		return sess.HandleUserUtterance(ctx, text)
	})
}

func (s *Server) handleSimulateAssistantTurn(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SimulationResponse, error) {
	return s.simulate(ctx, args, func(sess *parley.Session, text string) (*domain.TurnResult, error) {
		return sess.HandleAssistantTurn(ctx, text)
	})
}

func (s *Server) simulate(ctx context.Context, args map[string]interface{}, apply func(*parley.Session, string) (*domain.TurnResult, error)) (SimulationResponse, error) {
	text, _ := args["text"].(string)
	if text == "" {
		return SimulationResponse{}, fmt.Errorf("text is required")
	}

	sess, err := s.scratchSession(args)
	if err != nil {
		return SimulationResponse{}, err
	}

	result, err := apply(sess, text)
	if err != nil {
		return SimulationResponse{}, fmt.Errorf("simulation failed: %w", err)
	}

	return SimulationResponse{
		State:        sess.State(),
		Transitioned: result.Transitioned,
		Reason:       result.Reason,
		Ended:        result.Ended,
		Prompt:       sess.Prompt(),
		Directives:   result.Directives,
	}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("parley://graph", "Workflow State Graph",
		mcp.WithMIMEType("text/plain"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "parley://graph",
				MIMEType: "text/plain",
				Text:     graph.Mermaid(s.workflow.Schema()),
			},
		}, nil
	})
}
