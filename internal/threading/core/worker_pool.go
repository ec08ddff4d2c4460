package core

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool runs jobs on a fixed set of goroutines. The ray caster submits
// one job per batch of screen columns.
type WorkerPool struct {
	numWorkers int
	jobQueue   chan func()
	wg         sync.WaitGroup
	quit       chan struct{}
	stopOnce   sync.Once
	active     atomic.Int32
	completed  atomic.Uint64
}

// PoolStats is a snapshot of the pool counters.
type PoolStats struct {
	Workers   int
	Active    int32
	Queued    int32
	Completed uint64
}

// NewWorkerPool creates a pool of numWorkers goroutines; 0 or less selects
// one per CPU. Call Start before submitting.
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	return &WorkerPool{
		numWorkers: numWorkers,
		jobQueue:   make(chan func(), numWorkers*2),
		quit:       make(chan struct{}),
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.numWorkers; i++ {
		go wp.worker()
	}
}

func (wp *WorkerPool) worker() {
	for {
		select {
		case job := <-wp.jobQueue:
			wp.active.Add(1)
			job()
			wp.active.Add(-1)
			wp.completed.Add(1)
			wp.wg.Done()
		case <-wp.quit:
			return
		}
	}
}

// Submit queues a job, blocking while the queue is full.
func (wp *WorkerPool) Submit(job func()) {
	wp.wg.Add(1)
	wp.jobQueue <- job
}

// Wait blocks until every submitted job has run.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

// Stop shuts down the workers. Calling it more than once is harmless.
func (wp *WorkerPool) Stop() {
	wp.stopOnce.Do(func() { close(wp.quit) })
}

// ParallelFor splits [start, end) into batches of at most batch indices and
// runs fn once per batch on the pool. A batch of 0 or less spreads the range
// evenly over the workers.
func (wp *WorkerPool) ParallelFor(start, end, batch int, fn func(lo, hi int)) {
	wp.ParallelForWithContext(context.Background(), start, end, batch, fn)
}

// ParallelForWithContext is ParallelFor with cancellation: batches that have
// not started when ctx is done are skipped. It returns once every batch it
// submitted has finished, without waiting on unrelated jobs.
func (wp *WorkerPool) ParallelForWithContext(ctx context.Context, start, end, batch int, fn func(lo, hi int)) {
	if start >= end {
		return
	}
	if batch <= 0 {
		batch = max(1, (end-start)/wp.numWorkers)
	}

	var done sync.WaitGroup
	for i := start; i < end; i += batch {
		lo, hi := i, min(i+batch, end)
		done.Add(1)
		wp.Submit(func() {
			defer done.Done()
			if ctx.Err() != nil {
				return
			}
			fn(lo, hi)
		})
	}
	done.Wait()
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// Stats returns the current counters. Queued counts jobs waiting for a worker.
func (wp *WorkerPool) Stats() PoolStats {
	return PoolStats{
		Workers:   wp.numWorkers,
		Active:    wp.active.Load(),
		Queued:    int32(len(wp.jobQueue)),
		Completed: wp.completed.Load(),
	}
}
