package tilize

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestMetrics(t *testing.T) *Metrics {
	t.Helper()
	return NewMetrics(prometheus.NewRegistry())
}

func counterValue(t *testing.T, c prometheus.Collector) float64 {
	t.Helper()
	return testutil.ToFloat64(c)
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.tileMatched(time.Millisecond)
	m.runFinished(StatusSuccess)
	m.workerDegraded()
	m.FramePresented()
	m.FrameDropped()
}

func TestMetricsRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.tileMatched(time.Millisecond)
	m.runFinished(StatusCancelled)
	m.FrameDropped()

	if got := testutil.ToFloat64(m.TilesMatched); got != 1 {
		t.Errorf("Expected 1 tile matched, got %v", got)
	}
	if got := testutil.ToFloat64(m.Runs.WithLabelValues("cancelled")); got != 1 {
		t.Errorf("Expected 1 cancelled run, got %v", got)
	}
	if got := testutil.ToFloat64(m.FramesDropped); got != 1 {
		t.Errorf("Expected 1 dropped frame, got %v", got)
	}
	n, err := testutil.GatherAndCount(reg, "tilize_match_duration_seconds")
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected histogram to be registered, got %d series", n)
	}
}

func TestNewMetricsTwicePanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)
	defer func() {
		if recover() == nil {
			t.Error("Expected duplicate registration to panic")
		}
	}()
	NewMetrics(reg)
}
