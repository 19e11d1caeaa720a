package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusObserver turns events into collectors on a registry.
type PrometheusObserver struct {
	Turns          *prometheus.CounterVec
	Transitions    *prometheus.CounterVec
	Escalations    *prometheus.CounterVec
	Defaults       *prometheus.CounterVec
	LookupDuration *prometheus.HistogramVec
	SubmitDuration *prometheus.HistogramVec
	SubmitAttempts prometheus.Histogram
	OutboxEntries  *prometheus.CounterVec
	Evicted        prometheus.Counter
	ActiveSessions prometheus.Gauge
}

// NewPrometheusObserver registers its collectors on reg. A nil reg uses the
// default registerer.
func NewPrometheusObserver(reg prometheus.Registerer) *PrometheusObserver {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &PrometheusObserver{
		Turns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "complaintline_turns_total",
			Help: "Dialogue turns handled, by step and outcome",
		}, []string{"step", "outcome"}),
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "complaintline_transitions_total",
			Help: "Step transitions",
		}, []string{"from", "to"}),
		Escalations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "complaintline_escalations_total",
			Help: "Calls handed to a human agent, by step and cause",
		}, []string{"step", "cause"}),
		Defaults: f.NewCounterVec(prometheus.CounterOpts{
			Name: "complaintline_defaults_applied_total",
			Help: "Steps that gave up and applied a safe default",
		}, []string{"step"}),
		LookupDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "complaintline_lookup_duration_seconds",
			Help:    "Customer lookup latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind", "result"}),
		SubmitDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "complaintline_submit_duration_seconds",
			Help:    "Complaint submission latency including retries",
			Buckets: prometheus.DefBuckets,
		}, []string{"result"}),
		SubmitAttempts: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "complaintline_submit_attempts",
			Help:    "Attempts spent per submission",
			Buckets: []float64{1, 2, 3, 4, 5},
		}),
		OutboxEntries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "complaintline_outbox_entries_total",
			Help: "Failed submissions queued for reconciliation",
		}, []string{"result"}),
		Evicted: f.NewCounter(prometheus.CounterOpts{
			Name: "complaintline_sessions_evicted_total",
			Help: "Idle sessions reclaimed",
		}),
		ActiveSessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "complaintline_sessions_active",
			Help: "Sessions currently held in the store",
		}),
	}
}

func (p *PrometheusObserver) RecordEvent(ev MetricsEvent) {
	tag := func(k string) string {
		if v := ev.Tags[k]; v != "" {
			return v
		}
		return "none"
	}
	switch ev.Name {
	case EventTurn:
		p.Turns.WithLabelValues(tag("step"), tag("outcome")).Inc()
	case EventTransition:
		p.Transitions.WithLabelValues(tag("from"), tag("to")).Inc()
	case EventEscalation:
		p.Escalations.WithLabelValues(tag("step"), tag("cause")).Inc()
	case EventDefault:
		p.Defaults.WithLabelValues(tag("step")).Inc()
	case EventLookup:
		p.LookupDuration.WithLabelValues(tag("kind"), tag("result")).Observe(ev.Value)
	case EventSubmit:
		p.SubmitDuration.WithLabelValues(tag("result")).Observe(ev.Value)
		if n, ok := ev.Fields["attempts"].(int); ok {
			p.SubmitAttempts.Observe(float64(n))
		}
	case EventOutbox:
		p.OutboxEntries.WithLabelValues(tag("result")).Inc()
	case EventEvicted:
		p.Evicted.Add(ev.Value)
	case EventSessions:
		p.ActiveSessions.Set(ev.Value)
	}
}
