package bvh

import (
	"runtime"

	"github.com/achilleasa/polaris-bvh/log"
	"golang.org/x/sync/semaphore"
)

// WorkerPool runs background builds on a bounded number of goroutines.
type WorkerPool struct {
	logger log.Logger
	sem    *semaphore.Weighted
	size   int
}

// Create a pool that runs at most size jobs concurrently. If size is <= 0
// the pool size is set to the number of available CPUs.
func NewWorkerPool(size int) *WorkerPool {
	if size <= 0 {
		size = runtime.NumCPU()
	}

	return &WorkerPool{
		logger: log.New("bvh worker pool"),
		sem:    semaphore.NewWeighted(int64(size)),
		size:   size,
	}
}

// Get the max number of concurrent jobs.
func (p *WorkerPool) Size() int {
	return p.size
}

// Start job on a new worker. The call never blocks; if all workers are busy
// it returns ErrWorkerUnavailable and the job is not run.
func (p *WorkerPool) Go(job func()) error {
	if p == nil || !p.sem.TryAcquire(1) {
		return ErrWorkerUnavailable
	}

	go func() {
		defer p.sem.Release(1)
		job()
	}()
	return nil
}
