package tilize

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors updated by an Engine. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	TilesMatched    prometheus.Counter
	Runs            *prometheus.CounterVec
	MatchSeconds    prometheus.Histogram
	WorkersDegraded prometheus.Counter
	FramesPresented prometheus.Counter
	FramesDropped   prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		TilesMatched: f.NewCounter(prometheus.CounterOpts{
			Namespace: "tilize",
			Name:      "tiles_matched_total",
			Help:      "Input tiles matched against the pattern library",
		}),
		Runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tilize",
			Name:      "runs_total",
			Help:      "Completed process runs by outcome",
		}, []string{"outcome"}),
		MatchSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tilize",
			Name:      "match_duration_seconds",
			Help:      "Time to search one tile",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		WorkersDegraded: f.NewCounter(prometheus.CounterOpts{
			Namespace: "tilize",
			Name:      "workers_degraded_total",
			Help:      "Workers that failed to start; their range ran inline",
		}),
		FramesPresented: f.NewCounter(prometheus.CounterOpts{
			Namespace: "tilize",
			Subsystem: "display",
			Name:      "frames_presented_total",
			Help:      "Preview frames handed to the presenter",
		}),
		FramesDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: "tilize",
			Subsystem: "display",
			Name:      "frames_dropped_total",
			Help:      "Preview presents skipped because one was in flight or throttled",
		}),
	}
}

func (m *Metrics) tileMatched(d time.Duration) {
	if m == nil {
		return
	}
	m.TilesMatched.Inc()
	m.MatchSeconds.Observe(d.Seconds())
}

func (m *Metrics) runFinished(s Status) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(s.String()).Inc()
}

func (m *Metrics) workerDegraded() {
	if m == nil {
		return
	}
	m.WorkersDegraded.Inc()
}

// FramePresented records a completed present.
func (m *Metrics) FramePresented() {
	if m == nil {
		return
	}
	m.FramesPresented.Inc()
}

// FrameDropped records a skipped present.
func (m *Metrics) FrameDropped() {
	if m == nil {
		return
	}
	m.FramesDropped.Inc()
}
