// Package http exposes a workflow to the voice-runtime glue over REST: it
// creates and resumes call sessions against a session store, applies turns
// under the per-call lock and returns the resulting directives as JSON.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/internal/presentation/graph"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/session"
	"github.com/go-chi/chi/v5"
)

// Server routes engine operations for one workflow. Each turn request loads
// the call's snapshot, replays it into a session, applies the turn and saves
// the snapshot back, all under the session manager's per-call lock. That
// keeps the server replica-safe: no live session outlasts a request.
type Server struct {
	workflow *parley.Workflow
	sessions *session.Manager
	logger   *slog.Logger
}

// ServerOption configures the Server.
type ServerOption func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) { s.logger = logger }
}

// NewHandler creates the HTTP handler for one workflow.
func NewHandler(workflow *parley.Workflow, sessions *session.Manager, opts ...ServerOption) http.Handler {
	s := &Server{
		workflow: workflow,
		sessions: sessions,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/graph", s.GetGraph)
	r.Route("/calls", func(r chi.Router) {
		r.Post("/", s.CreateCall)
		r.Get("/", s.ListCalls)
		r.Route("/{callID}", func(r chi.Router) {
			r.Get("/", s.GetCall)
			r.Delete("/", s.DeleteCall)
			r.Get("/prompt", s.GetPrompt)
			r.Post("/assistant", s.AssistantTurn)
			r.Post("/user", s.UserUtterance)
		})
	})
	return r
}

// CreateCallRequest is the body of POST /calls.
type CreateCallRequest struct {
	CallID string            `json:"call_id"`
	Data   map[string]string `json:"data"`
}

// CallResponse describes a call's current position.
type CallResponse struct {
	CallID string `json:"call_id"`
	State  string `json:"state"`
	Ended  bool   `json:"ended,omitempty"`
	Prompt string `json:"prompt,omitempty"`
}

// TurnRequest is the body of the two turn endpoints.
type TurnRequest struct {
	Text string `json:"text"`
}

// CreateCall handles POST /calls.
func (s *Server) CreateCall(w http.ResponseWriter, r *http.Request) {
	var body CreateCallRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if body.CallID == "" {
		http.Error(w, "call_id is required", http.StatusBadRequest)
		return
	}

	sess, err := s.workflow.NewSession(body.CallID, body.Data)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to start session: %v", err), http.StatusInternalServerError)
		s.logger.Error("session start failed", "call_id", body.CallID, "err", err)
		return
	}

	if err := s.sessions.Create(r.Context(), sess.Snapshot()); err != nil {
		http.Error(w, fmt.Sprintf("Failed to create call: %v", err), http.StatusConflict)
		return
	}

	s.writeJSON(w, http.StatusCreated, CallResponse{
		CallID: body.CallID,
		State:  sess.State(),
		Prompt: sess.Prompt(),
	})
}

// ListCalls handles GET /calls.
func (s *Server) ListCalls(w http.ResponseWriter, r *http.Request) {
	ids, err := s.sessions.List(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("List error: %v", err), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"calls": ids})
}

// GetCall handles GET /calls/{callID}.
func (s *Server) GetCall(w http.ResponseWriter, r *http.Request) {
	callID := chi.URLParam(r, "callID")
	snap, err := s.sessions.Get(r.Context(), callID)
	if err != nil {
		s.callError(w, callID, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

// DeleteCall handles DELETE /calls/{callID}.
func (s *Server) DeleteCall(w http.ResponseWriter, r *http.Request) {
	callID := chi.URLParam(r, "callID")
	if err := s.sessions.Delete(r.Context(), callID); err != nil {
		s.callError(w, callID, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetPrompt handles GET /calls/{callID}/prompt.
func (s *Server) GetPrompt(w http.ResponseWriter, r *http.Request) {
	callID := chi.URLParam(r, "callID")

	snap, err := s.sessions.Get(r.Context(), callID)
	if err != nil {
		s.callError(w, callID, err)
		return
	}
	sess, err := s.workflow.Resume(snap)
	if err != nil {
		http.Error(w, fmt.Sprintf("Resume error: %v", err), http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, CallResponse{
		CallID: callID,
		State:  sess.State(),
		Ended:  sess.Ended(),
		Prompt: sess.Prompt(),
	})
}

// AssistantTurn handles POST /calls/{callID}/assistant.
func (s *Server) AssistantTurn(w http.ResponseWriter, r *http.Request) {
	s.handleTurn(w, r, func(sess *parley.Session, text string) (*domain.TurnResult, error) {
		return sess.HandleAssistantTurn(r.Context(), text)
	})
}

// UserUtterance handles POST /calls/{callID}/user.
func (s *Server) UserUtterance(w http.ResponseWriter, r *http.Request) {
	s.handleTurn(w, r, func(sess *parley.Session, text string) (*domain.TurnResult, error) {
		return sess.HandleUserUtterance(r.Context(), text)
	})
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request, apply func(*parley.Session, string) (*domain.TurnResult, error)) {
	callID := chi.URLParam(r, "callID")

	var body TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var result *domain.TurnResult
	err := s.sessions.WithLock(r.Context(), callID, func(ctx context.Context) error {
		snap, err := s.sessions.Store().Load(ctx, callID)
		if err != nil {
			return err
		}
		sess, err := s.workflow.Resume(snap)
		if err != nil {
			return err
		}
		result, err = apply(sess, body.Text)
		if err != nil {
			return err
		}
		return s.sessions.Store().Save(ctx, sess.Snapshot())
	})
	if err != nil {
		s.callError(w, callID, err)
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

// GetGraph handles GET /graph, rendering the workflow as a mermaid flowchart.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, graph.Mermaid(s.workflow.Schema()))
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"workflow": s.workflow.Name,
		"version":  parley.Version,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) callError(w http.ResponseWriter, callID string, err error) {
	if errors.Is(err, domain.ErrSessionNotFound) {
		http.Error(w, "Call not found", http.StatusNotFound)
		return
	}
	http.Error(w, fmt.Sprintf("Internal error: %v", err), http.StatusInternalServerError)
	s.logger.Error("call operation failed", "call_id", callID, "err", err)
}
