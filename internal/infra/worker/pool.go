// File: internal/infra/worker/pool.go
package worker

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
)

// A small worker pool for work that must outlive the request that started it.

type Task func(ctx context.Context) error

var (
	ErrQueueFull = errors.New("worker queue full")
	ErrStopped   = errors.New("worker pool stopped")
)

type Pool struct {
	wg   sync.WaitGroup
	jobs chan Task
	quit chan struct{}
	n    int
	log  zerolog.Logger

	mu      sync.RWMutex
	ctx     context.Context
	stopped bool
}

func NewPool(workers int, logger *zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{
		jobs: make(chan Task, workers*4),
		quit: make(chan struct{}),
		n:    workers,
		log:  logger.With().Str("component", "worker_pool").Logger(),
		ctx:  context.Background(),
	}
}

// Start launches the workers. Tasks run with ctx, not with the context of
// whoever submitted them.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	p.ctx = ctx
	p.mu.Unlock()
	for i := 0; i < p.n; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					// Queued tasks still run; they get a context that is not cancelled.
					if n := p.drain(context.WithoutCancel(ctx), id); n > 0 {
						p.log.Warn().Int("worker", id).Int("tasks", n).Msg("drained queued tasks after cancellation")
					}
					return
				case <-p.quit:
					p.drain(ctx, id)
					return
				case task := <-p.jobs:
					p.run(ctx, id, task)
				}
			}
		}(i)
	}
}

// drain runs whatever is still queued and reports how many tasks it ran.
func (p *Pool) drain(ctx context.Context, id int) int {
	n := 0
	for {
		select {
		case task := <-p.jobs:
			p.run(ctx, id, task)
			n++
		default:
			return n
		}
	}
}

func (p *Pool) run(ctx context.Context, id int, task Task) {
	if task == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().Interface("panic", r).Int("worker", id).Msg("task panicked")
		}
	}()
	if err := task(ctx); err != nil {
		p.log.Error().Err(err).Int("worker", id).Msg("task error")
	}
}

// Stop stops accepting work, drains the queue and waits for every task,
// including detached ones, to finish.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.quit)
	ctx := p.ctx
	p.mu.Unlock()
	p.wg.Wait()
	// Workers that exited on cancellation leave behind anything queued after.
	if n := p.drain(context.WithoutCancel(ctx), -1); n > 0 {
		p.log.Warn().Int("tasks", n).Msg("ran tasks queued after the workers exited")
	}
}

func (p *Pool) Submit(task Task) error {
	if task == nil {
		return errors.New("nil task")
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrStopped
	}
	select {
	case p.jobs <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// Dispatch queues task, or runs it on its own goroutine when the queue is
// full, so callers never wait for a worker.
func (p *Pool) Dispatch(task Task) error {
	err := p.Submit(task)
	if !errors.Is(err, ErrQueueFull) {
		return err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrStopped
	}
	p.log.Warn().Msg("queue full, running task detached")
	p.wg.Add(1)
	go func(ctx context.Context) {
		defer p.wg.Done()
		p.run(ctx, -1, task)
	}(p.ctx)
	return nil
}
