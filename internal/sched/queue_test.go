package sched

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSubmitExecutesTask(t *testing.T) {
	q := New(nil, WithWorkers(2))
	defer q.Shutdown(context.Background())

	done := make(chan struct{})
	q.Submit(func(ctx context.Context) { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task never ran")
	}
}

func TestSubmitAfterDelays(t *testing.T) {
	q := New(nil, WithWorkers(1))
	defer q.Shutdown(context.Background())

	start := time.Now()
	done := make(chan struct{})
	q.SubmitAfter(100*time.Millisecond, func(ctx context.Context) { close(done) })

	select {
	case <-done:
		if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
			t.Errorf("task ran after %v, want >= 100ms", elapsed)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("delayed task never ran")
	}
}

func TestSubmitAfterZeroDelayRunsImmediately(t *testing.T) {
	q := New(nil, WithWorkers(1))
	defer q.Shutdown(context.Background())

	done := make(chan struct{})
	q.SubmitAfter(0, func(ctx context.Context) { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task never ran")
	}
}

func TestSubmitFromWorkerFanOutDoesNotDeadlock(t *testing.T) {
	// A task running on the only worker submits siblings past the queue
	// capacity, the shape of per-item fan-out after a completed batch.
	q := New(nil, WithWorkers(1), WithQueueSize(1))
	defer q.Shutdown(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	q.Submit(func(ctx context.Context) {
		defer wg.Done()
		for i := 0; i < 8; i++ {
			wg.Add(1)
			q.Submit(func(ctx context.Context) { wg.Done() })
		}
	})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("fan-out from a worker never drained; Submit blocked the only worker")
	}
}

func TestSubmitBeyondCapacityDoesNotBlockCaller(t *testing.T) {
	q := New(nil, WithWorkers(1), WithQueueSize(1))
	defer q.Shutdown(context.Background())

	release := make(chan struct{})
	var ran atomic.Int32

	// Park the worker so every following Submit overflows the buffer.
	q.Submit(func(ctx context.Context) { <-release })

	submitted := make(chan struct{})
	go func() {
		for i := 0; i < 32; i++ {
			q.Submit(func(ctx context.Context) { ran.Add(1) })
		}
		close(submitted)
	}()

	select {
	case <-submitted:
	case <-time.After(2 * time.Second):
		t.Fatal("Submit blocked the caller on a saturated queue")
	}

	close(release)
	deadline := time.Now().Add(3 * time.Second)
	for ran.Load() != 32 {
		if time.Now().After(deadline) {
			t.Fatalf("drained %d of 32 overflow tasks", ran.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestShutdownDrainsDeferredEnqueues(t *testing.T) {
	q := New(nil, WithWorkers(1), WithQueueSize(1))

	release := make(chan struct{})
	var ran atomic.Int32

	q.Submit(func(ctx context.Context) { <-release })
	for i := 0; i < 10; i++ {
		q.Submit(func(ctx context.Context) { ran.Add(1) })
	}

	go func() {
		time.Sleep(50 * time.Millisecond)
		close(release)
	}()
	q.Shutdown(context.Background())

	if got := ran.Load(); got != 10 {
		t.Errorf("ran = %d, want 10; shutdown dropped deferred tasks", got)
	}
}

func TestShutdownDrainsPendingWork(t *testing.T) {
	q := New(nil, WithWorkers(2))

	var ran atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		q.Submit(func(ctx context.Context) {
			defer wg.Done()
			ran.Add(1)
		})
	}
	wg.Wait()
	q.Shutdown(context.Background())

	if got := ran.Load(); got != 20 {
		t.Errorf("ran = %d, want 20", got)
	}
}

func TestShutdownWaitsForTimers(t *testing.T) {
	q := New(nil, WithWorkers(1))

	done := make(chan struct{})
	q.SubmitAfter(50*time.Millisecond, func(ctx context.Context) { close(done) })
	q.Shutdown(context.Background())

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("shutdown completed before pending timer fired")
	}
}

func TestSubmitAfterShutdownIsNoOp(t *testing.T) {
	q := New(nil, WithWorkers(1))
	q.Shutdown(context.Background())

	// Must not panic on the closed channel.
	q.Submit(func(ctx context.Context) { t.Error("task ran after shutdown") })
	time.Sleep(50 * time.Millisecond)
}

func TestTaskContextCarriesTimeout(t *testing.T) {
	q := New(nil, WithWorkers(1), WithTaskTimeout(time.Minute))
	defer q.Shutdown(context.Background())

	done := make(chan struct{})
	q.Submit(func(ctx context.Context) {
		defer close(done)
		if _, ok := ctx.Deadline(); !ok {
			t.Error("task context has no deadline")
		}
	})
	<-done
}
