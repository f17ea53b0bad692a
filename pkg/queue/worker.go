package queue

import (
	"context"
	"log/slog"

	"github.com/helmsman-ai/helmsman/pkg/session"
)

// worker claims pending sessions one at a time and executes them.
type worker struct {
	id     int
	pool   *Pool
	logger *slog.Logger
}

func (w *worker) run() {
	for {
		select {
		case <-w.pool.stopCh:
			return
		case s := <-w.pool.pending:
			w.process(s)
		}
	}
}

// process executes one session. The session context is cancelled when the
// session is cancelled through its API or when the pool stops.
func (w *worker) process(s *session.Session) {
	if s.Status() != session.StatusQueued {
		// Cancelled while waiting in the queue.
		w.logger.Info("Skipping session no longer queued", "session_id", s.ID, "status", s.Status())
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Pool shutdown cancels the running session.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-w.pool.stopCh:
			cancel()
		case <-done:
		}
	}()

	s.Begin(cancel)
	w.pool.markActive(1)
	defer w.pool.markActive(-1)

	w.logger.Info("Session execution started", "session_id", s.ID)
	err := w.pool.executor.Execute(ctx, s)
	s.Finish(err)

	switch s.Status() {
	case session.StatusCompleted:
		w.logger.Info("Session completed", "session_id", s.ID)
	case session.StatusCancelled:
		w.logger.Info("Session cancelled", "session_id", s.ID)
	default:
		w.logger.Error("Session failed", "session_id", s.ID, "error", err)
	}
}
