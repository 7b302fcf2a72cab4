package observability

import (
	"context"
	"strconv"

	"github.com/aretw0/dumpling/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of the wizard.
type Metrics struct {
	StepVisits     *prometheus.CounterVec
	AdvanceBlocked *prometheus.CounterVec
	Generation     *prometheus.HistogramVec
	Deliveries     *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
// Pass prometheus.DefaultRegisterer to expose them on the default handler.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		StepVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dumpling_step_visits_total",
				Help: "Total number of step entries",
			},
			[]string{"phase", "kind"},
		),
		AdvanceBlocked: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dumpling_advance_blocked_total",
				Help: "Advances rejected because the current step was incomplete",
			},
			[]string{"index"},
		),
		Generation: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dumpling_generation_duration_seconds",
				Help:    "Duration of recipe generation",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		Deliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dumpling_deliveries_total",
				Help: "Recipe deliveries by channel and outcome",
			},
			[]string{"channel", "outcome"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.StepVisits, m.AdvanceBlocked, m.Generation, m.Deliveries)
	}
	return m
}

// Hooks returns lifecycle hooks that feed the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(_ context.Context, e *domain.StepEvent) {
			m.StepVisits.WithLabelValues(string(e.Phase), e.Kind).Inc()
		},
		OnAdvanceBlocked: func(_ context.Context, e *domain.StepEvent) {
			m.AdvanceBlocked.WithLabelValues(strconv.Itoa(e.Index)).Inc()
		},
		OnGenerate: func(_ context.Context, e *domain.GenerateEvent) {
			m.Generation.WithLabelValues(outcome(e.IsError)).Observe(e.Duration.Seconds())
		},
		OnDelivery: func(_ context.Context, e *domain.DeliveryEvent) {
			m.Deliveries.WithLabelValues(string(e.Channel), outcome(e.IsError)).Inc()
		},
	}
}

func outcome(isErr bool) string {
	if isErr {
		return "error"
	}
	return "success"
}
