// Package metric exposes Prometheus instrumentation for a codebook database.
//
// A nil *Metrics is valid and records nothing, so callers never check
// whether instrumentation is enabled.
package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "codebook"

// Metrics holds the collectors for one database.
type Metrics struct {
	edits           *prometheus.CounterVec // By op (add/replace/remove)
	cascades        prometheus.Counter
	cascadeTargets  prometheus.Counter
	cascadeDuration prometheus.Histogram
	indexSize       prometheus.Gauge
	vocabSize       prometheus.Gauge
	dependents      prometheus.Gauge
	journalWrites   *prometheus.CounterVec // By status (ok/error)
}

// New creates the collectors and registers them with reg.
// A nil reg disables metrics and returns nil.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		return nil, nil
	}

	m := &Metrics{
		edits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "vocab",
			Name:      "edits_total",
			Help:      "Vocabulary edits applied, by operation",
		}, []string{"op"}),

		cascades: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cascade",
			Name:      "runs_total",
			Help:      "Cascade updates run for vocabulary edits",
		}),

		cascadeTargets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cascade",
			Name:      "dependents_updated_total",
			Help:      "Data values and predicates updated by cascades",
		}),

		cascadeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "cascade",
			Name:      "duration_seconds",
			Help:      "Cascade duration in seconds",
			Buckets:   []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
		}),

		indexSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "index",
			Name:      "entries",
			Help:      "Entities currently in the index",
		}),

		vocabSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "vocab",
			Name:      "elements",
			Help:      "Vocabulary elements currently registered",
		}),

		dependents: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cascade",
			Name:      "dependents",
			Help:      "Data values and predicates currently registered for cascades",
		}),

		journalWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "journal",
			Name:      "writes_total",
			Help:      "Journal appends, by status",
		}, []string{"status"}),
	}

	for _, c := range []prometheus.Collector{
		m.edits, m.cascades, m.cascadeTargets, m.cascadeDuration,
		m.indexSize, m.vocabSize, m.dependents, m.journalWrites,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// RecordEdit counts one vocabulary edit.
func (m *Metrics) RecordEdit(op string) {
	if m == nil {
		return
	}
	m.edits.WithLabelValues(op).Inc()
}

// RecordCascade records one cascade run that updated n dependents.
func (m *Metrics) RecordCascade(n int, d time.Duration) {
	if m == nil {
		return
	}
	m.cascades.Inc()
	m.cascadeTargets.Add(float64(n))
	m.cascadeDuration.Observe(d.Seconds())
}

// SetIndexSize records the number of indexed entities.
func (m *Metrics) SetIndexSize(n int) {
	if m == nil {
		return
	}
	m.indexSize.Set(float64(n))
}

// SetVocabSize records the number of registered vocabulary elements.
func (m *Metrics) SetVocabSize(n int) {
	if m == nil {
		return
	}
	m.vocabSize.Set(float64(n))
}

// SetDependents records the number of registered dependents.
func (m *Metrics) SetDependents(n int) {
	if m == nil {
		return
	}
	m.dependents.Set(float64(n))
}

// RecordJournalWrite counts one journal append.
func (m *Metrics) RecordJournalWrite(err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.journalWrites.WithLabelValues(status).Inc()
}
