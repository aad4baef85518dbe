package collector

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ppiankov/logspectre/internal/models"
)

// workspaceJob is one workspace whose query set needs running.
type workspaceJob struct {
	index    int
	metadata models.WorkspaceMetadata
}

// workspaceResult carries the collected data or the error that stopped it.
type workspaceResult struct {
	index int
	data  models.WorkspaceData
	err   error
}

// WorkerPool fans workspace query batches out to a bounded set of
// workers. A pool is started once, fed through Submit, stopped once and
// drained through Results; it is not reusable.
type WorkerPool struct {
	workers int
	process func(ctx context.Context, job workspaceJob) workspaceResult
	jobs    chan workspaceJob
	results chan workspaceResult
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewWorkerPool creates a pool applying process to every submitted job.
func NewWorkerPool(workers int, process func(ctx context.Context, job workspaceJob) workspaceResult) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	return &WorkerPool{
		workers: workers,
		process: process,
		jobs:    make(chan workspaceJob, workers*2),
		results: make(chan workspaceResult, workers*2),
	}
}

// Start launches the workers.
func (p *WorkerPool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.run()
		}()
	}
}

func (p *WorkerPool) run() {
	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			p.results <- p.runJob(job)
		}
	}
}

// runJob converts a panicking process function into an error result so
// one bad workspace cannot take a worker down.
func (p *WorkerPool) runJob(job workspaceJob) (res workspaceResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("worker panic recovered",
				slog.Int("workspace_index", job.index),
				slog.String("panic", fmt.Sprint(r)),
			)
			res = workspaceResult{
				index: job.index,
				err:   fmt.Errorf("workspace %s: collection panic: %v", job.metadata.Name, r),
			}
		}
	}()
	return p.process(p.ctx, job)
}

// Submit queues one job. Jobs are dropped once the pool context is done.
func (p *WorkerPool) Submit(job workspaceJob) {
	select {
	case <-p.ctx.Done():
	case p.jobs <- job:
	}
}

// Results returns the channel collected results arrive on. It closes
// after Stop.
func (p *WorkerPool) Results() <-chan workspaceResult {
	return p.results
}

// Stop closes the job queue, waits for the workers and closes the
// results channel. Call it from the submitting goroutine while another
// goroutine drains Results.
func (p *WorkerPool) Stop() {
	close(p.jobs)
	p.wg.Wait()
	close(p.results)
	p.cancel()
}
