// Package metrics exposes Prometheus collectors for the validation pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iiroan/formwatch/internal/validate"
)

// Pipeline collects per-field pipeline counters. A nil *Pipeline records
// nothing, so callers never need to check.
type Pipeline struct {
	Edits          *prometheus.CounterVec
	DebounceFired  *prometheus.CounterVec
	SyntaxFailures *prometheus.CounterVec
	RemoteChecks   *prometheus.CounterVec
	RemoteCanceled *prometheus.CounterVec
	StaleDiscarded *prometheus.CounterVec
	Verdicts       *prometheus.CounterVec
	RemoteLatency  *prometheus.HistogramVec
	EnabledForms   prometheus.Gauge
	ActiveForms    prometheus.Gauge
}

// RemoteLatencyBuckets covers network round trips from 10ms to 10s, in seconds.
var RemoteLatencyBuckets = []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// NewPipeline registers pipeline collectors on registerer.
func NewPipeline(namespace string, registerer prometheus.Registerer) *Pipeline {
	factory := promauto.With(registerer)
	fieldLabels := []string{"field"}

	return &Pipeline{
		Edits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "edits_total",
			Help:      "Raw text edits received per field",
		}, fieldLabels),
		DebounceFired: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "debounce_fired_total",
			Help:      "Debounce windows that elapsed and triggered validation",
		}, fieldLabels),
		SyntaxFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "syntax_failures_total",
			Help:      "Debounced values rejected by the syntactic rule",
		}, fieldLabels),
		RemoteChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "remote_checks_total",
			Help:      "Availability checks issued",
		}, fieldLabels),
		RemoteCanceled: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "remote_canceled_total",
			Help:      "In-flight availability checks canceled by a newer edit or shutdown",
		}, fieldLabels),
		StaleDiscarded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stale_discarded_total",
			Help:      "Availability results dropped because a newer generation exists",
		}, fieldLabels),
		Verdicts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "verdicts_total",
			Help:      "Field verdicts published, by validity",
		}, []string{"field", "valid"}),
		RemoteLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "remote_check_seconds",
			Help:      "Latency of availability checks that were delivered",
			Buckets:   RemoteLatencyBuckets,
		}, fieldLabels),
		EnabledForms: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "form",
			Name:      "submit_enabled",
			Help:      "Running forms whose submit control is enabled",
		}),
		ActiveForms: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "form",
			Name:      "active",
			Help:      "Forms currently running",
		}),
	}
}

func (m *Pipeline) RecordEdit(kind validate.Kind) {
	if m == nil {
		return
	}
	m.Edits.WithLabelValues(kind.String()).Inc()
}

func (m *Pipeline) RecordDebounce(kind validate.Kind) {
	if m == nil {
		return
	}
	m.DebounceFired.WithLabelValues(kind.String()).Inc()
}

func (m *Pipeline) RecordSyntaxFailure(kind validate.Kind) {
	if m == nil {
		return
	}
	m.SyntaxFailures.WithLabelValues(kind.String()).Inc()
}

func (m *Pipeline) RecordRemoteCheck(kind validate.Kind) {
	if m == nil {
		return
	}
	m.RemoteChecks.WithLabelValues(kind.String()).Inc()
}

func (m *Pipeline) RecordRemoteCanceled(kind validate.Kind) {
	if m == nil {
		return
	}
	m.RemoteCanceled.WithLabelValues(kind.String()).Inc()
}

func (m *Pipeline) RecordStale(kind validate.Kind) {
	if m == nil {
		return
	}
	m.StaleDiscarded.WithLabelValues(kind.String()).Inc()
}

func (m *Pipeline) RecordRemoteLatency(kind validate.Kind, d time.Duration) {
	if m == nil {
		return
	}
	m.RemoteLatency.WithLabelValues(kind.String()).Observe(d.Seconds())
}

func (m *Pipeline) RecordVerdict(kind validate.Kind, valid bool) {
	if m == nil {
		return
	}
	label := "false"
	if valid {
		label = "true"
	}
	m.Verdicts.WithLabelValues(kind.String(), label).Inc()
}

// RecordSubmit moves one form's submit state from was to now. Forms share the
// gauge, so only transitions change it.
func (m *Pipeline) RecordSubmit(was, now bool) {
	if m == nil || was == now {
		return
	}
	if now {
		m.EnabledForms.Inc()
		return
	}
	m.EnabledForms.Dec()
}

func (m *Pipeline) FormStarted() {
	if m == nil {
		return
	}
	m.ActiveForms.Inc()
}

func (m *Pipeline) FormStopped() {
	if m == nil {
		return
	}
	m.ActiveForms.Dec()
}
