package observability

import (
	"context"

	"github.com/aretw0/pixelpilot/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exports scheduler events as Prometheus series.
type Metrics struct {
	Ticks          prometheus.Counter
	TickDuration   prometheus.Histogram
	Overruns       prometheus.Counter
	NodeFaults     *prometheus.CounterVec
	RuleFaults     *prometheus.CounterVec
	ProviderErrors *prometheus.CounterVec
	ActionsFired   prometheus.Counter
	Running        prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pixelpilot_ticks_total",
			Help: "Total number of completed ticks",
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pixelpilot_tick_duration_seconds",
			Help:    "Wall time spent evaluating one tick",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .02, .033, .05, .1, .25},
		}),
		Overruns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pixelpilot_tick_overruns_total",
			Help: "Ticks that took longer than the target period",
		}),
		NodeFaults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pixelpilot_node_faults_total",
			Help: "Node evaluation faults",
		}, []string{"node_id"}),
		RuleFaults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pixelpilot_rule_faults_total",
			Help: "Rule evaluation faults",
		}, []string{"rule_id"}),
		ProviderErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pixelpilot_provider_errors_total",
			Help: "Capability provider failures",
		}, []string{"provider"}),
		ActionsFired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pixelpilot_actions_fired_total",
			Help: "Output nodes and rules whose actions ran",
		}),
		Running: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pixelpilot_engine_running",
			Help: "1 while the tick loop is running",
		}),
	}
	reg.MustRegister(m.Ticks, m.TickDuration, m.Overruns, m.NodeFaults, m.RuleFaults, m.ProviderErrors, m.ActionsFired, m.Running)
	return m
}

func (m *Metrics) Emit(_ context.Context, ev domain.Event) {
	switch ev.Type {
	case domain.EventEngineStarted:
		m.Running.Set(1)
	case domain.EventEngineStopped:
		m.Running.Set(0)
	case domain.EventTickFinished:
		m.Ticks.Inc()
		m.TickDuration.Observe(ev.Duration.Seconds())
		if ev.Overrun {
			m.Overruns.Inc()
		}
	case domain.EventNodeFault:
		m.NodeFaults.WithLabelValues(ev.NodeID).Inc()
	case domain.EventRuleFault:
		m.RuleFaults.WithLabelValues(ev.RuleID).Inc()
	case domain.EventProviderError:
		m.ProviderErrors.WithLabelValues(ev.Provider).Inc()
	case domain.EventActionFired:
		m.ActionsFired.Inc()
	}
}
