package parley

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/aretw0/loam"
	"github.com/aretw0/parley/internal/runtime"
	loamadapter "github.com/aretw0/parley/pkg/adapters/loam"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/aretw0/parley/pkg/prompt"
	"github.com/aretw0/parley/pkg/schema"
	"github.com/aretw0/parley/pkg/session"
)

// Version is the library version, injected at build time for releases.
var Version = "0.4.0-dev"

// Workflow is the high-level entry point for the Parley library: one loaded,
// validated calling scenario. It is immutable and shared by every session
// spawned from it.
type Workflow struct {
	schema   *schema.Schema
	renderer *prompt.Renderer
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	clock    func() time.Time

	// Name identifies the workflow in logs, taken from its definition.
	Name string
}

// Option defines a functional option for configuring the Workflow.
type Option func(*Workflow)

// WithLifecycleHooks registers observability hooks, invoked synchronously on
// every session's turn path.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(w *Workflow) {
		w.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Workflow) {
		w.logger = logger
	}
}

// WithClock overrides the event timestamp source for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(w *Workflow) {
		w.clock = now
	}
}

// Load parses and validates the two workflow documents. All schema problems
// surface here, before any call starts.
func Load(definition, prompts []byte, opts ...Option) (*Workflow, error) {
	s, err := schema.Load(definition, prompts)
	if err != nil {
		return nil, err
	}

	r, err := prompt.NewRenderer(s)
	if err != nil {
		return nil, err
	}

	w := &Workflow{
		schema:   s,
		renderer: r,
		Name:     s.Workflow.Name,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if w.Name != "" {
		w.logger = w.logger.With("workflow", w.Name)
	}

	w.logger.Info("workflow loaded",
		"version", s.Workflow.Version,
		"states", len(s.States),
		"rules", len(s.Rules),
	)
	return w, nil
}

// LoadFrom loads a workflow from a schema source (filesystem, Loam
// repository, memory).
func LoadFrom(ctx context.Context, src ports.SchemaSource, opts ...Option) (*Workflow, error) {
	definition, err := src.Definition(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading workflow definition: %w", err)
	}
	prompts, err := src.Prompts(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading prompt document: %w", err)
	}
	return Load(definition, prompts, opts...)
}

// Open loads a workflow from a Loam document repository at the given path.
// Strict mode keeps YAML scalar types consistent across adapters, and the
// engine only ever reads the repository.
func Open(repoPath string, opts ...Option) (*Workflow, error) {
	absPath, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}

	src := loamadapter.New(loam.NewTypedRepository[loamadapter.DocumentMetadata](repo))
	return LoadFrom(context.Background(), src, opts...)
}

// Schema exposes the loaded workflow schema for inspection tooling.
func (w *Workflow) Schema() *schema.Schema {
	return w.schema
}

// Observe returns a copy of the workflow with the hooks attached, leaving
// the receiver untouched. Used when hook construction needs the loaded
// workflow, e.g. metrics labeled by workflow name.
func (w *Workflow) Observe(hooks domain.LifecycleHooks) *Workflow {
	out := *w
	out.hooks = hooks
	return &out
}

// States exposes the state definitions for introspection and graph tooling.
func (w *Workflow) States() []schema.StateDefinition {
	return w.schema.States
}

// managerOptions assembles the runtime options shared by NewSession and
// Resume.
func (w *Workflow) managerOptions(extra ...runtime.Option) []runtime.Option {
	opts := []runtime.Option{
		runtime.WithLogger(w.logger),
		runtime.WithHooks(w.hooks),
	}
	if w.clock != nil {
		opts = append(opts, runtime.WithClock(w.clock))
	}
	return append(opts, extra...)
}

// NewSession starts a conversation for one call. The data map is the
// session's record; it is copied and formatted once.
func (w *Workflow) NewSession(callID string, data map[string]string) (*Session, error) {
	sess := session.NewContext(w.schema, w.renderer, callID, data)
	mgr, err := runtime.NewManager(w.schema, sess, w.managerOptions()...)
	if err != nil {
		return nil, err
	}
	w.logger.Info("session started", "call_id", callID, "state", sess.Current())
	return &Session{mgr: mgr}, nil
}

// Resume rebuilds a session from a persisted snapshot, typically after a
// webhook landed on a different replica.
func (w *Workflow) Resume(snap *domain.Snapshot) (*Session, error) {
	if snap.Workflow != "" && snap.Workflow != w.schema.Workflow.Name {
		return nil, fmt.Errorf("snapshot belongs to workflow %q, not %q", snap.Workflow, w.schema.Workflow.Name)
	}

	sess := session.NewContext(w.schema, w.renderer, snap.CallID, snap.Data)
	if snap.State != "" && snap.State != sess.Current() {
		if err := sess.TransitionTo(snap.State, "resumed"); err != nil {
			return nil, err
		}
	}

	mgr, err := runtime.NewManager(w.schema, sess, w.managerOptions(
		runtime.WithTranscript(snap.History),
		runtime.WithOutcome(snap.Outcome),
	)...)
	if err != nil {
		return nil, err
	}
	w.logger.Info("session resumed", "call_id", snap.CallID, "state", sess.Current())
	return &Session{mgr: mgr}, nil
}

// Session is one live conversation. It is not safe for concurrent use; wrap
// turn handling in a session.Manager when webhooks may land concurrently.
type Session struct {
	mgr *runtime.Manager
}

// State returns the current state name.
func (s *Session) State() string { return s.mgr.State() }

// CallID returns the call this session belongs to.
func (s *Session) CallID() string { return s.mgr.CallID() }

// Prompt returns the active system prompt.
func (s *Session) Prompt() string {
	h := s.mgr.History()
	if len(h) > 0 && h[0].Role == domain.RoleSystem {
		return h[0].Content
	}
	return ""
}

// Ended reports whether the call has terminated.
func (s *Session) Ended() bool { return s.mgr.Ended() }

// History returns a copy of the current message history. The first entry is
// always the active system prompt.
func (s *Session) History() []domain.Message { return s.mgr.History() }

// Snapshot captures the session for persistence.
func (s *Session) Snapshot() *domain.Snapshot { return s.mgr.Snapshot() }

// HandleAssistantTurn processes one assistant turn, applying any transition
// marker it carries.
func (s *Session) HandleAssistantTurn(ctx context.Context, text string) (*domain.TurnResult, error) {
	return s.mgr.HandleAssistantTurn(ctx, text)
}

// HandleUserUtterance processes one user utterance, evaluating the current
// state's keyword rules.
func (s *Session) HandleUserUtterance(ctx context.Context, utterance string) (*domain.TurnResult, error) {
	return s.mgr.HandleUserUtterance(ctx, utterance)
}
