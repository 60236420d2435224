package enrich

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"rentalscout/internal/models"
)

// Job is one result set waiting for enrichment.
type Job struct {
	Key string
	Set *models.SearchResultSet
}

// RunFunc processes a job.
type RunFunc func(ctx context.Context, job Job) error

// QueueOptions sizes the queue.
type QueueOptions struct {
	Size       int           // pending jobs before Submit starts dropping
	Workers    int           // concurrent jobs, each with its own browser
	JobTimeout time.Duration // 0 means no limit
}

// QueueStats is a snapshot for the admin endpoint.
type QueueStats struct {
	Pending   int   `json:"pending"`
	Capacity  int   `json:"capacity"`
	Workers   int   `json:"workers"`
	Active    int64 `json:"active"`
	Submitted int64 `json:"submitted"`
	Dropped   int64 `json:"dropped"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
}

// Queue runs jobs on background workers, detached from the request that submitted them.
type Queue struct {
	jobs    chan Job
	run     RunFunc
	opts    QueueOptions
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool

	active, submitted, dropped, completed, failed atomic.Int64
}

// NewQueue starts the workers.
func NewQueue(run RunFunc, opts QueueOptions) *Queue {
	if opts.Size <= 0 {
		opts.Size = 32
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		jobs:   make(chan Job, opts.Size),
		run:    run,
		opts:   opts,
		ctx:    ctx,
		cancel: cancel,
	}
	for i := 0; i < opts.Workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
	return q
}

// Submit enqueues job without blocking. It returns false when the queue is full or
// shut down; the job is dropped.
func (q *Queue) Submit(job Job) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.dropped.Add(1)
		return false
	}

	select {
	case q.jobs <- job:
		q.submitted.Add(1)
		return true
	default:
		q.dropped.Add(1)
		log.Printf("⚠️  [queue] full, dropping enrichment for %s", job.Key)
		return false
	}
}

func (q *Queue) worker(id int) {
	defer q.wg.Done()
	for job := range q.jobs {
		q.process(id, job)
	}
}

func (q *Queue) process(id int, job Job) {
	q.active.Add(1)
	defer q.active.Add(-1)

	ctx := q.ctx
	if q.opts.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.opts.JobTimeout)
		defer cancel()
	}

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return q.run(ctx, job)
	}()

	if err != nil {
		q.failed.Add(1)
		log.Printf("❌ [queue] worker %d: enrichment for %s failed: %v", id, job.Key, err)
		return
	}
	q.completed.Add(1)
}

// Shutdown stops accepting jobs and waits for pending ones to finish. If ctx ends
// first, running jobs are cancelled and ctx's error is returned.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.cancel()
		return nil
	case <-ctx.Done():
		q.cancel()
		return ctx.Err()
	}
}

// Stats returns current counters.
func (q *Queue) Stats() QueueStats {
	return QueueStats{
		Pending:   len(q.jobs),
		Capacity:  cap(q.jobs),
		Workers:   q.opts.Workers,
		Active:    q.active.Load(),
		Submitted: q.submitted.Load(),
		Dropped:   q.dropped.Load(),
		Completed: q.completed.Load(),
		Failed:    q.failed.Load(),
	}
}
