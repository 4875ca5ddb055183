package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// countJob increments a shared counter when executed
type countJob struct {
	counter *int64
	err     error
	delay   time.Duration
}

type countResult struct {
	err error
}

func (r *countResult) GetError() error { return r.err }

func (j *countJob) Execute(ctx context.Context) Result {
	if j.delay > 0 {
		select {
		case <-ctx.Done():
			return &countResult{err: ctx.Err()}
		case <-time.After(j.delay):
		}
	}
	atomic.AddInt64(j.counter, 1)
	return &countResult{err: j.err}
}

func TestPool_ExecutesAllJobs(t *testing.T) {
	pool := NewPool(4)
	pool.Start()

	var counter int64
	const jobs = 20
	for i := 0; i < jobs; i++ {
		pool.Submit(&countJob{counter: &counter})
	}

	results := pool.Wait()

	if got := atomic.LoadInt64(&counter); got != jobs {
		t.Errorf("Expected %d executions, got %d", jobs, got)
	}
	if len(results) != jobs {
		t.Errorf("Expected %d results, got %d", jobs, len(results))
	}
}

func TestPool_CollectsErrors(t *testing.T) {
	pool := NewPool(2)
	pool.Start()

	var counter int64
	pool.Submit(&countJob{counter: &counter})
	pool.Submit(&countJob{counter: &counter, err: errors.New("boom")})

	results := pool.Wait()

	var failed int
	for _, r := range results {
		if r.GetError() != nil {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf("Expected 1 failed result, got %d", failed)
	}
}

func TestPool_ZeroWorkersDefaultsToOne(t *testing.T) {
	pool := NewPool(0)
	pool.Start()

	var counter int64
	pool.Submit(&countJob{counter: &counter})
	pool.Wait()

	if counter != 1 {
		t.Errorf("Expected 1 execution, got %d", counter)
	}
}

func TestPool_ShutdownAbandonsQueuedJobs(t *testing.T) {
	pool := NewPool(1)
	pool.Start()

	var counter int64
	for i := 0; i < 10; i++ {
		pool.Submit(&countJob{counter: &counter, delay: 50 * time.Millisecond})
	}

	time.Sleep(10 * time.Millisecond)
	pool.Shutdown()

	if got := atomic.LoadInt64(&counter); got >= 10 {
		t.Errorf("Expected shutdown to abandon queued jobs, but all %d ran", got)
	}
}
