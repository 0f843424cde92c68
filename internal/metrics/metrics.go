// Package metrics provides Prometheus instrumentation for crawls, feed loads and runs.
// All Manager methods are safe to call on a nil receiver, so components can run uninstrumented.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ptsradar"

// Skip and drop reasons used as label values.
const (
	ReasonMissingCells = "missing_cells"
	ReasonMissingCode  = "missing_code"
	ReasonNoCode       = "no_code"
	ReasonNoURL        = "no_url"
	ReasonDuplicate    = "duplicate"
)

// Manager holds the collectors for one registry.
type Manager struct {
	pagesFetched         prometheus.Counter
	equityRowsParsed     prometheus.Counter
	equityRowsSkipped    *prometheus.CounterVec
	disclosuresLoaded    prometheus.Counter
	disclosuresDropped   *prometheus.CounterVec
	feedPayloadsRepaired prometheus.Counter
	runs                 *prometheus.CounterVec
	runDuration          prometheus.Histogram
}

// NewManager creates the collectors and registers them on reg.
// A nil reg creates unregistered collectors.
func NewManager(reg prometheus.Registerer) *Manager {
	m := &Manager{
		pagesFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "crawl",
			Name:      "pages_fetched_total",
			Help:      "Ranking pages fetched.",
		}),
		equityRowsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "crawl",
			Name:      "equity_rows_parsed_total",
			Help:      "Equity rows parsed from ranking pages.",
		}),
		equityRowsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "crawl",
			Name:      "equity_rows_skipped_total",
			Help:      "Table rows skipped while parsing ranking pages.",
		}, []string{"reason"}),
		disclosuresLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "disclosures_loaded_total",
			Help:      "Disclosure rows retained after load.",
		}),
		disclosuresDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "disclosures_dropped_total",
			Help:      "Disclosure items dropped at load.",
		}, []string{"reason"}),
		feedPayloadsRepaired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "payloads_repaired_total",
			Help:      "Feed payloads that only decoded after JSON repair.",
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Acquisition runs by outcome.",
		}, []string{"status"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of acquisition runs.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.pagesFetched,
			m.equityRowsParsed,
			m.equityRowsSkipped,
			m.disclosuresLoaded,
			m.disclosuresDropped,
			m.feedPayloadsRepaired,
			m.runs,
			m.runDuration,
		)
	}
	return m
}

// PageFetched records one fetched ranking page and the rows it yielded.
func (m *Manager) PageFetched(parsed int) {
	if m == nil {
		return
	}
	m.pagesFetched.Inc()
	m.equityRowsParsed.Add(float64(parsed))
}

// RowsSkipped records table rows skipped for reason.
func (m *Manager) RowsSkipped(reason string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.equityRowsSkipped.WithLabelValues(reason).Add(float64(n))
}

// DisclosuresLoaded records retained disclosure rows.
func (m *Manager) DisclosuresLoaded(n int) {
	if m == nil {
		return
	}
	m.disclosuresLoaded.Add(float64(n))
}

// DisclosuresDropped records disclosure items dropped for reason.
func (m *Manager) DisclosuresDropped(reason string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.disclosuresDropped.WithLabelValues(reason).Add(float64(n))
}

// PayloadRepaired records a feed payload rescued by JSON repair.
func (m *Manager) PayloadRepaired() {
	if m == nil {
		return
	}
	m.feedPayloadsRepaired.Inc()
}

// RunFinished records the outcome and duration of one run.
func (m *Manager) RunFinished(err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.runs.WithLabelValues(status).Inc()
	m.runDuration.Observe(elapsed.Seconds())
}
