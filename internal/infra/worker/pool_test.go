//go:build !integration

package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func TestPoolRunsSubmittedTasks(t *testing.T) {
	p := NewPool(2, newTestLogger())
	p.Start(context.Background())

	var n int32
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		if err := p.Submit(func(context.Context) error {
			defer wg.Done()
			atomic.AddInt32(&n, 1)
			return nil
		}); err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
	}
	wg.Wait()
	p.Stop()
	if atomic.LoadInt32(&n) != 5 {
		t.Errorf("expected 5 tasks run, got %d", n)
	}
}

func TestPoolDispatchWhenSaturated(t *testing.T) {
	p := NewPool(1, newTestLogger())
	// not started: the queue fills up and Dispatch must fall back to a goroutine
	block := func(context.Context) error { return nil }
	for i := 0; i < 4; i++ {
		if err := p.Submit(block); err != nil {
			t.Fatalf("expected queue capacity, but got: %v", err)
		}
	}
	if err := p.Submit(block); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected queue full, but got: %v", err)
	}

	done := make(chan struct{})
	if err := p.Dispatch(func(context.Context) error { close(done); return nil }); err != nil {
		t.Fatalf("expected dispatch to succeed, but got: %v", err)
	}
	<-done
	p.Stop()
}

func TestPoolStopDrainsAndRejects(t *testing.T) {
	p := NewPool(1, newTestLogger())
	var ran int32
	for i := 0; i < 3; i++ {
		_ = p.Submit(func(context.Context) error { atomic.AddInt32(&ran, 1); return nil })
	}
	p.Start(context.Background())
	p.Stop()
	if atomic.LoadInt32(&ran) != 3 {
		t.Errorf("expected queued tasks drained, got %d", ran)
	}
	if err := p.Submit(func(context.Context) error { return nil }); !errors.Is(err, ErrStopped) {
		t.Errorf("expected stopped error, but got: %v", err)
	}
	p.Stop()
}

func TestPoolRecoversPanics(t *testing.T) {
	p := NewPool(1, newTestLogger())
	p.Start(context.Background())
	_ = p.Submit(func(context.Context) error { panic("boom") })
	done := make(chan struct{})
	_ = p.Submit(func(context.Context) error { close(done); return nil })
	<-done
	p.Stop()
}

func TestPoolRunsQueuedTasksAfterCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPool(1, newTestLogger())
	var ran int32
	task := func(context.Context) error {
		atomic.AddInt32(&ran, 1)
		return nil
	}
	for i := 0; i < 3; i++ {
		if err := p.Submit(task); err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
	}
	cancel()
	p.Start(ctx)
	if err := p.Submit(task); err != nil {
		t.Fatalf("expected no error, but got: %v", err)
	}

	p.Stop()

	if got := atomic.LoadInt32(&ran); got != 4 {
		t.Errorf("expected every queued task to run, got %d", got)
	}
}
