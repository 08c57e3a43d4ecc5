// Package sched is the in-process host for the pipeline's schedulable units:
// a bounded worker pool fed by a channel, with a timer-backed requeue for
// resume-after continuations. The pipeline imposes no other concurrency
// structure; anything submitted here must be safe to run independently.
package sched

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Task is one independently schedulable unit of work.
type Task func(ctx context.Context)

type Queue struct {
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Task
	wg   sync.WaitGroup
	once sync.Once

	mu      sync.Mutex
	closed  bool
	timers  sync.WaitGroup
	senders sync.WaitGroup
}

type Option func(*Queue)

func WithWorkers(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.ch = make(chan Task, n)
		}
	}
}
func WithTaskTimeout(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func New(logger *slog.Logger, opts ...Option) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &Queue{
		logger:  logger,
		workers: 4,
		timeout: 3 * time.Minute,
		ch:      make(chan Task, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *Queue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("worker started", "worker_id", workerID)

				for task := range q.ch {
					ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
					task(ctx)
					cancel()
				}

				q.logger.Debug("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

// Submit enqueues a task for immediate execution. Submitting after Shutdown
// is a logged no-op. Submit never blocks the caller: tasks themselves submit
// fan-out work from inside workers, and a blocking send there would leave
// every worker waiting as a sender with nobody left to drain the channel.
func (q *Queue) Submit(task Task) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.logger.Warn("cannot submit: queue is shutting down")
		return
	}
	q.senders.Add(1)
	q.mu.Unlock()

	select {
	case q.ch <- task:
		q.senders.Done()
	default:
		q.logger.Warn("queue full, deferring enqueue")
		go func() {
			defer q.senders.Done()
			q.ch <- task
		}()
	}
}

// SubmitAfter schedules a task to be enqueued once the delay elapses. This is
// the requeue half of the resume-after contract: the caller hands over a
// continuation and this queue re-invokes it, arbitrarily far in wall-clock
// time if the delay says so.
func (q *Queue) SubmitAfter(delay time.Duration, task Task) {
	if delay <= 0 {
		q.Submit(task)
		return
	}
	q.timers.Add(1)
	time.AfterFunc(delay, func() {
		defer q.timers.Done()
		q.Submit(task)
	})
}

// Shutdown waits for pending timers, refuses new submissions, waits out
// in-flight senders, then closes the queue and drains the workers. Bounded
// by ctx. Senders are counted before the closed flag flips, so no send can
// race the channel close.
func (q *Queue) Shutdown(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		q.timers.Wait()

		q.mu.Lock()
		first := !q.closed
		q.closed = true
		q.mu.Unlock()

		if first {
			// Workers are still draining, so deferred sends finish.
			q.senders.Wait()
			close(q.ch)
		}

		q.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
