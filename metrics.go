package orrery

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects the counters of the model. A nil *Metrics records nothing.
type Metrics struct {
	frames        prometheus.Counter
	highlights    *prometheus.CounterVec
	dialogOpens   *prometheus.CounterVec
	traceFailures *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "orrery",
			Name:      "frames_total",
			Help:      "Interaction frames resolved",
		}),
		highlights: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orrery",
			Name:      "highlights_total",
			Help:      "Times a body became highlighted",
		}, []string{"body"}),
		dialogOpens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orrery",
			Name:      "dialog_opens_total",
			Help:      "Times the detail dialog was opened",
		}, []string{"body"}),
		traceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orrery",
			Name:      "trace_failures_total",
			Help:      "Orbit traces which could not be computed",
		}, []string{"body"}),
	}
	reg.MustRegister(m.frames, m.highlights, m.dialogOpens, m.traceFailures)
	return m
}

// Frame counts one resolved frame.
func (m *Metrics) Frame() {
	if m == nil {
		return
	}
	m.frames.Inc()
}

// Highlight counts a body becoming highlighted.
func (m *Metrics) Highlight(key BodyKey) {
	if m == nil {
		return
	}
	m.highlights.WithLabelValues(string(key)).Inc()
}

// DialogOpened counts a dialog opening.
func (m *Metrics) DialogOpened(key BodyKey) {
	if m == nil {
		return
	}
	m.dialogOpens.WithLabelValues(string(key)).Inc()
}

// TraceFailed counts a failed orbit trace.
func (m *Metrics) TraceFailed(key BodyKey) {
	if m == nil {
		return
	}
	m.traceFailures.WithLabelValues(string(key)).Inc()
}
