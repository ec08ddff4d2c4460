package rendering

import "raycaster/internal/threading/core"

const (
	// inlineColumns is the largest sweep cast on the calling goroutine.
	inlineColumns = 8
	minBatchSize  = 4
	maxBatchSize  = 32
)

// ParallelRenderer spreads per-column ray casts over a worker pool.
type ParallelRenderer struct {
	workerPool *core.WorkerPool
}

// NewParallelRenderer creates a parallel renderer with one worker per CPU
func NewParallelRenderer() *ParallelRenderer {
	return NewParallelRendererWithWorkers(0)
}

// NewParallelRendererWithWorkers creates a parallel renderer with its own
// pool of workers goroutines; 0 selects one per CPU.
func NewParallelRendererWithWorkers(workers int) *ParallelRenderer {
	pool := core.NewWorkerPool(workers)
	pool.Start()
	return &ParallelRenderer{workerPool: pool}
}

// CastColumns runs cast for every column in [0, columns) and returns the
// results in column order. cast must be safe to call concurrently.
//
// Very small sweeps run inline; larger ones are split into batches of 4 to
// 32 columns on the worker pool. CastColumns returns once every column is done.
func CastColumns[T any](pr *ParallelRenderer, columns int, cast func(column int) T) []T {
	if columns <= 0 {
		return nil
	}
	// Single allocation for results
	results := make([]T, columns)

	// Very small workloads: process inline to avoid synchronization overhead
	if columns <= inlineColumns {
		for c := range results {
			results[c] = cast(c)
		}
		return results
	}

	pr.workerPool.ParallelFor(0, columns, pr.BatchSize(columns), func(lo, hi int) {
		for c := lo; c < hi; c++ {
			results[c] = cast(c)
		}
	})
	return results
}

// BatchSize returns how many columns one pool job casts for a sweep of columns.
func (pr *ParallelRenderer) BatchSize(columns int) int {
	return min(max(columns/pr.workerPool.GetNumWorkers(), minBatchSize), maxBatchSize)
}

// Workers returns the size of the worker pool.
func (pr *ParallelRenderer) Workers() int {
	return pr.workerPool.GetNumWorkers()
}

// PoolStats returns the counters of the underlying worker pool.
func (pr *ParallelRenderer) PoolStats() core.PoolStats {
	return pr.workerPool.Stats()
}

// Stop shuts down the parallel renderer
func (pr *ParallelRenderer) Stop() {
	pr.workerPool.Stop()
}
