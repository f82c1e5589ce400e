package scanner

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts lookups per source and resolutions per outcome.
type Metrics struct {
	lookups     *prometheus.CounterVec
	resolutions *prometheus.CounterVec
	duration    prometheus.Histogram
}

// NewMetrics registers the resolver metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "freshsave_resolver_lookups_total",
				Help: "Source lookups by result (hit, not_found, transport, malformed)",
			},
			[]string{"source", "result"},
		),
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "freshsave_resolver_resolutions_total",
				Help: "Completed resolutions by outcome and answering source",
			},
			[]string{"outcome", "source"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "freshsave_resolver_resolution_duration_seconds",
				Help:    "End to end resolution latency",
				Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
		),
	}
	reg.MustRegister(m.lookups, m.resolutions, m.duration)
	return m
}

func (m *Metrics) hit(source string) {
	if m != nil {
		m.lookups.WithLabelValues(source, "hit").Inc()
	}
}

func (m *Metrics) miss(e *ResolutionError) {
	if m != nil {
		m.lookups.WithLabelValues(e.Source, string(e.Kind)).Inc()
	}
}

func (m *Metrics) resolved(r Report) {
	if m == nil {
		return
	}
	source := r.Source
	if source == "" {
		source = "none"
	}
	m.resolutions.WithLabelValues(string(r.Outcome), source).Inc()
	m.duration.Observe(r.Duration.Seconds())
}

// Outcome is the caller-visible result of one resolution.
type Outcome string

const (
	OutcomeFound    Outcome = "found"
	OutcomeNotFound Outcome = "not_found"
)

// Report describes one finished resolution, including the misses that were
// hidden from the caller.
type Report struct {
	Barcode  string
	Outcome  Outcome
	Source   string
	Failures []*ResolutionError
	Duration time.Duration
}

// LookupFailures counts the transport and malformed misses. Plain not_found
// misses are expected and not counted.
func (r Report) LookupFailures() int {
	n := 0
	for _, f := range r.Failures {
		if f.Kind != KindNotFound {
			n++
		}
	}
	return n
}
