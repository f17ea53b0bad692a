// Package queue runs queued sessions on a bounded worker pool. Sessions wait
// in a fixed-capacity channel; each worker claims one at a time and executes
// it to a terminal state.
package queue

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/helmsman-ai/helmsman/pkg/config"
	"github.com/helmsman-ai/helmsman/pkg/session"
)

var (
	// ErrQueueFull is returned when the pending queue has no room.
	ErrQueueFull = errors.New("session queue is full")
	// ErrPoolStopped is returned when enqueueing after Stop.
	ErrPoolStopped = errors.New("worker pool is stopped")
)

const (
	defaultWorkers        = 2
	defaultMaxQueuedTasks = 100
)

// Executor runs one session to completion.
type Executor interface {
	Execute(ctx context.Context, s *session.Session) error
}

// Pool owns the pending session queue and its workers.
type Pool struct {
	executor Executor
	pending  chan *session.Session

	mu     sync.Mutex
	active int

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	logger *slog.Logger
}

// NewPool creates a pool sized by the queue configuration.
func NewPool(executor Executor, cfg config.QueueConfig) *Pool {
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	capacity := cfg.MaxQueuedTasks
	if capacity <= 0 {
		capacity = defaultMaxQueuedTasks
	}
	p := &Pool{
		executor: executor,
		pending:  make(chan *session.Session, capacity),
		stopCh:   make(chan struct{}),
		logger:   slog.With("component", "queue"),
	}
	p.startWorkers(workers)
	return p
}

func (p *Pool) startWorkers(n int) {
	for i := 0; i < n; i++ {
		w := &worker{id: i, pool: p, logger: p.logger.With("worker_id", i)}
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			w.run()
		}()
	}
	p.logger.Info("Worker pool started", "workers", n, "queue_capacity", cap(p.pending))
}

// Enqueue adds a session to the pending queue without blocking.
func (p *Pool) Enqueue(s *session.Session) error {
	select {
	case <-p.stopCh:
		return ErrPoolStopped
	default:
	}
	select {
	case p.pending <- s:
		p.logger.Debug("Session queued", "session_id", s.ID, "queued", len(p.pending))
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop shuts the pool down: running sessions are cancelled and workers exit.
// Blocks until every worker has returned. Idempotent.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.logger.Info("Stopping worker pool")
		close(p.stopCh)
	})
	p.wg.Wait()
	p.logger.Info("Worker pool stopped")
}

// QueuedCount returns the number of sessions waiting for a worker.
func (p *Pool) QueuedCount() int {
	return len(p.pending)
}

// ActiveCount returns the number of sessions currently executing.
func (p *Pool) ActiveCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

func (p *Pool) markActive(delta int) {
	p.mu.Lock()
	p.active += delta
	p.mu.Unlock()
}
