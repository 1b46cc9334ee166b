package observability

import (
	"context"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for one workflow.
type Metrics struct {
	stateEntries *prometheus.CounterVec
	rejections   *prometheus.CounterVec
	directives   *prometheus.CounterVec
	callsEnded   *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg. Pass
// prometheus.DefaultRegisterer for the process-global registry.
func NewMetrics(reg prometheus.Registerer, workflow string) *Metrics {
	labels := prometheus.Labels{"workflow": workflow}
	factory := promauto.With(reg)

	return &Metrics{
		stateEntries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "parley",
			Name:        "state_entries_total",
			Help:        "State entries by state and transition reason.",
			ConstLabels: labels,
		}, []string{"state", "reason"}),

		rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "parley",
			Name:        "transition_rejections_total",
			Help:        "Model-proposed transitions refused by policy.",
			ConstLabels: labels,
		}, []string{"from", "cause"}),

		directives: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "parley",
			Name:        "directives_total",
			Help:        "Directives emitted to the voice runtime.",
			ConstLabels: labels,
		}, []string{"type"}),

		callsEnded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "parley",
			Name:        "calls_ended_total",
			Help:        "Calls terminated, by outcome.",
			ConstLabels: labels,
		}, []string{"outcome"}),
	}
}

// Hooks returns lifecycle hooks that feed the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStateEnter: func(_ context.Context, ev *domain.StateEvent) {
			m.stateEntries.WithLabelValues(ev.State, ev.Reason).Inc()
		},
		OnTransitionRejected: func(_ context.Context, ev *domain.RejectionEvent) {
			m.rejections.WithLabelValues(ev.From, ev.Cause).Inc()
		},
		OnDirective: func(_ context.Context, ev *domain.DirectiveEvent) {
			m.directives.WithLabelValues(string(ev.Directive.Type)).Inc()
			if ev.Directive.Type == domain.DirectiveEndCall {
				if payload, ok := ev.Directive.Payload.(domain.EndCall); ok {
					m.callsEnded.WithLabelValues(payload.Outcome).Inc()
				}
			}
		},
	}
}

// Chain combines hook sets; every non-nil callback fires in order.
func Chain(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStateEnter: func(ctx context.Context, ev *domain.StateEvent) {
			for _, h := range hooks {
				if h.OnStateEnter != nil {
					h.OnStateEnter(ctx, ev)
				}
			}
		},
		OnStateLeave: func(ctx context.Context, ev *domain.StateEvent) {
			for _, h := range hooks {
				if h.OnStateLeave != nil {
					h.OnStateLeave(ctx, ev)
				}
			}
		},
		OnTransitionRejected: func(ctx context.Context, ev *domain.RejectionEvent) {
			for _, h := range hooks {
				if h.OnTransitionRejected != nil {
					h.OnTransitionRejected(ctx, ev)
				}
			}
		},
		OnDirective: func(ctx context.Context, ev *domain.DirectiveEvent) {
			for _, h := range hooks {
				if h.OnDirective != nil {
					h.OnDirective(ctx, ev)
				}
			}
		},
	}
}
