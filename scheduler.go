package tilize

import (
	"errors"
	"fmt"
	"sync"
)

// Status is the outcome of one worker or of a whole run.
type Status int

const (
	// StatusSuccess means every tile in range was processed.
	StatusSuccess Status = iota
	// StatusCancelled means the cancellation token was observed. It is
	// not an error.
	StatusCancelled
	// StatusFailed means a tile could not be processed.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusCancelled:
		return "cancelled"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Outcome is a tagged worker result. Err is set only for StatusFailed.
type Outcome struct {
	Status Status
	Err    error
}

// Combine reduces worker outcomes: the first failure wins, otherwise any
// cancellation, otherwise success.
func Combine(outcomes ...Outcome) Outcome {
	result := Outcome{Status: StatusSuccess}
	for _, o := range outcomes {
		switch o.Status {
		case StatusFailed:
			return o
		case StatusCancelled:
			result = o
		}
	}
	return result
}

// Partition returns the half-open tile range [start, end) of worker i out
// of n. The n ranges cover [0, total) exactly, in order, without overlap.
func Partition(total, n, i int) (start, end int) {
	return total * i / n, total * (i + 1) / n
}

// SpawnFunc starts run concurrently. A non-nil error means run was not
// started and will never be called by the spawner.
type SpawnFunc func(run func()) error

func spawnGoroutine(run func()) error {
	go run()
	return nil
}

// ErrWorkerPanic wraps a panic recovered while processing a tile.
var ErrWorkerPanic = errors.New("tilize: worker panic")

// TileFunc processes one tile index.
type TileFunc func(index int) error

// SchedulerStats describes how a run was parallelised.
type SchedulerStats struct {
	Workers  int // ranges the tiles were split into
	Spawned  int // ranges that ran on their own goroutine
	Degraded int // ranges whose goroutine failed to start
}

// Scheduler splits tile indices into contiguous ranges and runs one worker
// per range. Worker 0 runs on the calling goroutine.
type Scheduler struct {
	// Workers is the requested parallelism. Values below 1 mean 1.
	Workers int
	// Spawn starts workers 1..n-1. Nil means a plain goroutine.
	Spawn SpawnFunc

	metrics *Metrics
}

// Run processes tiles [0, total) with fn and blocks until every worker has
// finished. Each worker checks token before every tile.
//
// When a worker fails to start, the run continues with the workers that
// did. The orphaned range is processed on the calling goroutine after
// worker 0's own range, so every tile is still covered.
func (s *Scheduler) Run(total int, token *CancellationToken, fn TileFunc) (Outcome, SchedulerStats) {
	n := max(s.Workers, 1)
	if total <= 0 {
		return Outcome{Status: StatusSuccess}, SchedulerStats{Workers: 0}
	}
	n = min(n, total)
	spawn := s.Spawn
	if spawn == nil {
		spawn = spawnGoroutine
	}

	stats := SchedulerStats{Workers: n}
	outcomes := make([]Outcome, n)
	var orphans []int
	var wg sync.WaitGroup

	for i := 1; i < n; i++ {
		i := i
		start, end := Partition(total, n, i)
		wg.Add(1)
		err := spawn(func() {
			defer wg.Done()
			outcomes[i] = runRange(i, start, end, token, fn)
		})
		if err != nil {
			wg.Done()
			orphans = append(orphans, i)
			stats.Degraded++
			Logger().Warn("worker failed to start, continuing with fewer workers",
				"worker", i, "start", start, "end", end, "error", err)
			s.metrics.workerDegraded()
			continue
		}
		stats.Spawned++
	}

	start, end := Partition(total, n, 0)
	outcomes[0] = runRange(0, start, end, token, fn)
	for _, i := range orphans {
		start, end := Partition(total, n, i)
		outcomes[i] = runRange(i, start, end, token, fn)
	}

	wg.Wait()
	return Combine(outcomes...), stats
}

func runRange(worker, start, end int, token *CancellationToken, fn TileFunc) Outcome {
	log := Logger()
	log.Debug("worker started", "worker", worker, "start", start, "end", end)
	for i := start; i < end; i++ {
		if token.Cancelled() {
			log.Debug("worker cancelled", "worker", worker, "tile", i)
			return Outcome{Status: StatusCancelled}
		}
		if err := callTile(fn, i); err != nil {
			log.Debug("worker failed", "worker", worker, "tile", i, "error", err)
			return Outcome{Status: StatusFailed, Err: fmt.Errorf("tile %d: %w", i, err)}
		}
	}
	log.Debug("worker finished", "worker", worker)
	return Outcome{Status: StatusSuccess}
}

func callTile(fn TileFunc, i int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrWorkerPanic, r)
		}
	}()
	return fn(i)
}
