package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/schema"
	"github.com/aretw0/parley/pkg/session"
)

// Manager is the per-call state machine interpreter. It consumes assistant
// output and user utterances, decides transitions against the workflow's
// policy and emits directives. It never calls a model or a tool itself.
//
// A Manager is owned by exactly one call and is not safe for concurrent use;
// the session layer serializes turns per call.
type Manager struct {
	schema *schema.Schema
	sess   *session.Context

	logger *slog.Logger
	hooks  domain.LifecycleHooks
	now    func() time.Time

	history     []domain.Message
	pendingUser int
	outcome     string
	ended       bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the manager's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithHooks registers lifecycle callbacks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Manager) { m.hooks = hooks }
}

// WithClock overrides the event timestamp source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithTranscript seeds the manager with a prior transcript when resuming a
// persisted call. The slice is copied.
func WithTranscript(history []domain.Message) Option {
	return func(m *Manager) {
		m.history = append([]domain.Message(nil), history...)
	}
}

// WithOutcome restores a terminal outcome when resuming a persisted call.
// A non-empty outcome marks the call as ended.
func WithOutcome(outcome string) Option {
	return func(m *Manager) {
		m.outcome = outcome
		m.ended = outcome != ""
	}
}

// NewManager creates the interpreter for one call. Unless a transcript is
// restored, the history starts with the rendered prompt of the context's
// current state.
func NewManager(s *schema.Schema, sess *session.Context, opts ...Option) (*Manager, error) {
	m := &Manager{
		schema: s,
		sess:   sess,
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.history == nil {
		prompt, err := sess.RenderPrompt()
		if err != nil {
			return nil, fmt.Errorf("failed to render initial prompt: %w", err)
		}
		m.history = []domain.Message{{Role: domain.RoleSystem, Content: prompt}}
	}
	return m, nil
}

// State returns the current state name.
func (m *Manager) State() string { return m.sess.Current() }

// CallID returns the call this manager belongs to.
func (m *Manager) CallID() string { return m.sess.CallID() }

// Ended reports whether the call has terminated.
func (m *Manager) Ended() bool { return m.ended }

// History returns a copy of the current message history.
func (m *Manager) History() []domain.Message {
	return append([]domain.Message(nil), m.history...)
}

// Snapshot captures the call for persistence: context plus transcript and
// outcome.
func (m *Manager) Snapshot() *domain.Snapshot {
	snap := m.sess.Snapshot()
	snap.History = m.History()
	snap.Outcome = m.outcome
	return snap
}

// HandleAssistantTurn records one assistant turn and applies any transition
// marker it carries. Output without a marker is a plain conversational turn
// and produces no directives.
func (m *Manager) HandleAssistantTurn(ctx context.Context, text string) (*domain.TurnResult, error) {
	m.history = append(m.history, domain.Message{
		Role:    domain.RoleAssistant,
		Content: StripMarker(text),
	})
	// The assistant has now responded to whatever the user said.
	m.pendingUser = 0

	req := ParseMarker(text)
	if !req.Requested {
		return &domain.TurnResult{From: m.sess.Current(), To: m.sess.Current()}, nil
	}
	return m.handleRequest(ctx, req)
}

func (m *Manager) handleRequest(ctx context.Context, req TransitionRequest) (*domain.TurnResult, error) {
	from := m.sess.Current()
	if m.ended {
		m.reject(ctx, from, req.Target, domain.CauseCallEnded)
		return &domain.TurnResult{From: from, To: from, Ended: true}, nil
	}

	st, err := m.schema.State(from)
	if err != nil {
		return nil, err
	}
	if !st.LLMDirected {
		m.reject(ctx, from, req.Target, domain.CauseNotLLMDirected)
		return &domain.TurnResult{From: from, To: from}, nil
	}

	if req.Target == domain.EndCallTarget {
		return m.endCall(ctx, from), nil
	}

	if !contains(st.AllowedTransitions, req.Target) {
		m.reject(ctx, from, req.Target, domain.CauseNotAllowed)
		return &domain.TurnResult{From: from, To: from}, nil
	}

	return m.executeTransition(ctx, req.Target, domain.ReasonModelRequested)
}

// HandleUserUtterance records one user utterance and evaluates the current
// state's keyword rules against it. The first matching rule wins.
func (m *Manager) HandleUserUtterance(ctx context.Context, utterance string) (*domain.TurnResult, error) {
	m.history = append(m.history, domain.Message{
		Role:    domain.RoleUser,
		Content: utterance,
	})
	m.pendingUser++

	from := m.sess.Current()
	if m.ended {
		return &domain.TurnResult{From: from, To: from, Ended: true}, nil
	}

	for _, rule := range m.schema.RulesFrom(from) {
		if !matchRule(rule, utterance) {
			continue
		}
		m.logger.Debug("keyword rule matched",
			"call_id", m.sess.CallID(),
			"from", from,
			"to", rule.ToState,
			"reason", rule.Reason,
		)
		return m.executeTransition(ctx, rule.ToState, rule.Reason)
	}
	return &domain.TurnResult{From: from, To: from}, nil
}

// executeTransition moves the context to target and assembles the directive
// batch: model/tool selection first, then the rebuilt history carrying the
// freshly rendered prompt. Recovery states transition silently.
func (m *Manager) executeTransition(ctx context.Context, target, reason string) (*domain.TurnResult, error) {
	from := m.sess.Current()
	st, err := m.schema.State(target)
	if err != nil {
		return nil, err
	}

	m.fireStateLeave(ctx, from)
	if err := m.sess.TransitionTo(target, reason); err != nil {
		return nil, err
	}
	m.fireStateEnter(ctx, target, reason)

	m.logger.Info("state transition",
		"call_id", m.sess.CallID(),
		"from", from,
		"to", target,
		"reason", reason,
	)

	res := &domain.TurnResult{Transitioned: true, From: from, To: target, Reason: reason}
	if st.Recovery {
		return res, nil
	}

	if len(st.Tools) > 0 {
		res.Directives = append(res.Directives,
			domain.Directive{Type: domain.DirectiveSetModel, Payload: domain.ModelSelection{Model: domain.ModelConversational}},
			domain.Directive{Type: domain.DirectiveSetTools, Payload: domain.ToolSelection{Tools: st.Tools}},
		)
	} else {
		res.Directives = append(res.Directives,
			domain.Directive{Type: domain.DirectiveSetModel, Payload: domain.ModelSelection{Model: domain.ModelClassifier}},
			domain.Directive{Type: domain.DirectiveSetTools, Payload: domain.ToolSelection{}},
			domain.Directive{Type: domain.DirectiveResetMonitors},
		)
	}

	prompt, err := m.sess.RenderPrompt()
	if err != nil {
		return nil, fmt.Errorf("failed to render prompt for %s: %w", target, err)
	}
	if len(st.Tools) > 0 && m.sess.CallID() != "" {
		// Tool calls need the call identity that prompt minimization
		// otherwise withholds.
		prompt += "\n\nCall reference: " + m.sess.CallID()
	}

	keep, autoInvoke := historyPolicy(m.schema, st, reason, m.pendingUser)
	m.history = rebuildHistory(m.history, prompt, keep)
	if autoInvoke {
		m.pendingUser = 0
	}
	res.Directives = append(res.Directives, domain.Directive{
		Type:    domain.DirectiveReplaceHistory,
		Payload: domain.HistoryUpdate{Messages: m.History(), AutoInvoke: autoInvoke},
	})

	m.fireDirectives(ctx, res.Directives)
	return res, nil
}

// endCall terminates the conversation. The sentinel target bypasses the
// transition whitelist; the context stays in its final real state.
func (m *Manager) endCall(ctx context.Context, from string) *domain.TurnResult {
	m.ended = true
	m.outcome = domain.OutcomeCompleted

	m.logger.Info("call ended",
		"call_id", m.sess.CallID(),
		"state", from,
		"outcome", m.outcome,
	)

	res := &domain.TurnResult{
		From:  from,
		To:    from,
		Ended: true,
		Directives: []domain.Directive{
			{Type: domain.DirectiveEndCall, Payload: domain.EndCall{Outcome: m.outcome}},
		},
	}
	m.fireDirectives(ctx, res.Directives)
	return res
}

func (m *Manager) reject(ctx context.Context, from, target, cause string) {
	m.logger.Warn("transition rejected",
		"call_id", m.sess.CallID(),
		"from", from,
		"target", target,
		"cause", cause,
	)
	if m.hooks.OnTransitionRejected != nil {
		m.hooks.OnTransitionRejected(ctx, &domain.RejectionEvent{
			EventBase: m.eventBase(domain.EventTransitionRejected),
			From:      from,
			Target:    target,
			Cause:     cause,
		})
	}
}

func (m *Manager) fireStateLeave(ctx context.Context, state string) {
	if m.hooks.OnStateLeave == nil {
		return
	}
	m.hooks.OnStateLeave(ctx, &domain.StateEvent{
		EventBase: m.eventBase(domain.EventStateLeave),
		State:     state,
	})
}

func (m *Manager) fireStateEnter(ctx context.Context, state, reason string) {
	if m.hooks.OnStateEnter == nil {
		return
	}
	m.hooks.OnStateEnter(ctx, &domain.StateEvent{
		EventBase: m.eventBase(domain.EventStateEnter),
		State:     state,
		Reason:    reason,
	})
}

func (m *Manager) fireDirectives(ctx context.Context, directives []domain.Directive) {
	if m.hooks.OnDirective == nil {
		return
	}
	for _, d := range directives {
		m.hooks.OnDirective(ctx, &domain.DirectiveEvent{
			EventBase: m.eventBase(domain.EventDirectiveEmitted),
			Directive: d,
		})
	}
}

func (m *Manager) eventBase(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: m.now(), Type: t, CallID: m.sess.CallID()}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
