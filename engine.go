package tilize

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// DisplaySink receives live preview updates. Blit copies a tile into the
// sink's frame at pixel offset (x, y), clipping to the frame. Present
// attempts to show the frame and must never block the caller on a present
// already in flight: it returns false when the frame was skipped.
type DisplaySink interface {
	Blit(x, y int, tile *PixelBuffer)
	Present() bool
}

// Engine holds everything one process run shares read-only between
// workers: the matcher (pattern library and palette), worker count and the
// optional display and metrics.
type Engine struct {
	matcher *Matcher
	workers int
	display DisplaySink
	metrics *Metrics
	spawn   SpawnFunc
	onTile  ProgressFunc
}

// ProgressFunc is called after each matched tile with the number of tiles
// finished so far in the run. It is called concurrently from all workers.
type ProgressFunc func(done, total int)

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithWorkers sets the number of workers. Values below 1 mean 1.
func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		e.workers = max(n, 1)
	}
}

// WithDisplay wires a live preview sink.
func WithDisplay(d DisplaySink) EngineOption {
	return func(e *Engine) {
		e.display = d
	}
}

// WithMetrics records run metrics into m.
func WithMetrics(m *Metrics) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithSpawner overrides how workers 1..n-1 are started.
func WithSpawner(f SpawnFunc) EngineOption {
	return func(e *Engine) {
		e.spawn = f
	}
}

// WithProgress reports per-tile progress to f.
func WithProgress(f ProgressFunc) EngineOption {
	return func(e *Engine) {
		e.onTile = f
	}
}

// NewEngine creates an engine with one worker unless configured otherwise.
func NewEngine(patterns *PatternLibrary, palette *Palette, opts ...EngineOption) (*Engine, error) {
	m, err := NewMatcher(patterns, palette)
	if err != nil {
		return nil, err
	}
	e := &Engine{matcher: m, workers: 1}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Matcher returns the engine's matcher.
func (e *Engine) Matcher() *Matcher {
	return e.matcher
}

// Workers returns the configured worker count.
func (e *Engine) Workers() int {
	return e.workers
}

// Stats describes a finished run.
type Stats struct {
	RunID     string
	Tiles     int
	Scheduler SchedulerStats
	Elapsed   time.Duration
}

// Result is the outcome of Process. Output is set only when Status is
// StatusSuccess.
type Result struct {
	Outcome
	Output *PixelBuffer
	Stats
}

// Process mosaics input. The returned error is reserved for setup failures
// that happen before any tile is touched; failures and cancellation during
// matching are reported in the Result. A cancelled or failed run discards
// all work and produces no output.
func (e *Engine) Process(input *PixelBuffer, token *CancellationToken) (*Result, error) {
	begin := time.Now()
	runID := uuid.NewString()
	log := Logger().With("run_id", runID)

	patterns := e.matcher.Patterns()
	atlas, err := AtlasFromBuffer(input, patterns.TileWidth(), patterns.TileHeight())
	if err != nil {
		return nil, fmt.Errorf("failed to split input image: %w", err)
	}
	log.Info("processing image",
		"width", input.Width, "height", input.Height,
		"tiles", atlas.TileCount(), "patterns", patterns.Len(),
		"colors", e.matcher.Palette().Len(), "workers", e.workers)

	if e.display != nil {
		e.display.Blit(0, 0, input)
		e.display.Present()
	}

	var done atomic.Int64
	sched := Scheduler{Workers: e.workers, Spawn: e.spawn, metrics: e.metrics}
	outcome, schedStats := sched.Run(atlas.TileCount(), token, func(i int) error {
		if err := e.processTile(atlas, i); err != nil {
			return err
		}
		if e.onTile != nil {
			e.onTile(int(done.Add(1)), atlas.TileCount())
		}
		return nil
	})

	res := &Result{
		Outcome: outcome,
		Stats: Stats{
			RunID:     runID,
			Tiles:     atlas.TileCount(),
			Scheduler: schedStats,
		},
	}
	if outcome.Status == StatusSuccess {
		out, err := atlas.ToBuffer()
		if err != nil {
			res.Outcome = Outcome{Status: StatusFailed, Err: fmt.Errorf("failed to reassemble output: %w", err)}
		} else {
			res.Output = out
		}
	}
	res.Elapsed = time.Since(begin)
	e.metrics.runFinished(res.Status)

	if res.Status == StatusFailed {
		log.Error("processing failed", "error", res.Err, "elapsed", res.Elapsed)
	} else {
		log.Info("processing finished", "outcome", res.Status, "elapsed", res.Elapsed,
			"spawned", schedStats.Spawned, "degraded", schedStats.Degraded)
	}
	return res, nil
}

func (e *Engine) processTile(atlas *Atlas, i int) error {
	start := time.Now()
	_, rendered, err := e.matcher.MatchTile(atlas.TileAt(i))
	if err != nil {
		return err
	}
	tx, ty := i%atlas.TilesX, i/atlas.TilesX
	if err := atlas.SetTile(tx, ty, rendered); err != nil {
		return err
	}
	e.metrics.tileMatched(time.Since(start))

	if e.display != nil {
		x, y := atlas.TileOrigin(i)
		e.display.Blit(x, y, rendered)
		e.display.Present()
	}
	return nil
}
