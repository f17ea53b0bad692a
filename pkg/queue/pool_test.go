package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helmsman-ai/helmsman/pkg/config"
	"github.com/helmsman-ai/helmsman/pkg/models"
	"github.com/helmsman-ai/helmsman/pkg/session"
)

// blockingExecutor holds every session until released or the context ends.
type blockingExecutor struct {
	mu      sync.Mutex
	started []string
	release chan struct{}
	result  error
}

func newBlockingExecutor() *blockingExecutor {
	return &blockingExecutor{release: make(chan struct{})}
}

func (e *blockingExecutor) Execute(ctx context.Context, s *session.Session) error {
	e.mu.Lock()
	e.started = append(e.started, s.ID)
	e.mu.Unlock()
	select {
	case <-e.release:
		return e.result
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *blockingExecutor) startedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.started)
}

type instantExecutor struct {
	mu   sync.Mutex
	runs int
	err  error
}

func (e *instantExecutor) Execute(_ context.Context, _ *session.Session) error {
	e.mu.Lock()
	e.runs++
	e.mu.Unlock()
	return e.err
}

func (e *instantExecutor) runCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.runs
}

func testSession(id string) *session.Session {
	m := session.NewManager(config.SessionConfig{
		MaxStallsBeforeReplan: 3,
		MaxReplans:            3,
		MaxJSONRetries:        3,
		RetrieveRelevantPlans: config.RetrievePlansOff,
		Language:              "en",
	})
	s, err := m.Create("task "+id, []models.Attachment(nil), nil)
	if err != nil {
		panic(err)
	}
	return s
}

func TestPoolExecutesQueuedSessions(t *testing.T) {
	exec := &instantExecutor{}
	pool := NewPool(exec, config.QueueConfig{Workers: 2, MaxQueuedTasks: 10})
	defer pool.Stop()

	sessions := make([]*session.Session, 0, 5)
	for i := 0; i < 5; i++ {
		s := testSession(fmt.Sprint(i))
		sessions = append(sessions, s)
		require.NoError(t, pool.Enqueue(s))
	}

	require.Eventually(t, func() bool { return exec.runCount() == 5 }, 2*time.Second, 10*time.Millisecond)
	for _, s := range sessions {
		assert.Eventually(t, func() bool { return s.Status() == session.StatusCompleted },
			time.Second, 10*time.Millisecond)
	}
}

func TestPoolMarksFailedSessions(t *testing.T) {
	exec := &instantExecutor{err: fmt.Errorf("boom")}
	pool := NewPool(exec, config.QueueConfig{Workers: 1, MaxQueuedTasks: 10})
	defer pool.Stop()

	s := testSession("f")
	require.NoError(t, pool.Enqueue(s))
	require.Eventually(t, func() bool { return s.Status() == session.StatusFailed },
		time.Second, 10*time.Millisecond)
	assert.Equal(t, "boom", s.View().Error)
}

func TestPoolEnqueueRejectsWhenFull(t *testing.T) {
	exec := newBlockingExecutor()
	defer close(exec.release)
	pool := NewPool(exec, config.QueueConfig{Workers: 1, MaxQueuedTasks: 1})
	defer pool.Stop()

	// First session occupies the worker, second fills the queue.
	require.NoError(t, pool.Enqueue(testSession("a")))
	require.Eventually(t, func() bool { return exec.startedCount() == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, pool.Enqueue(testSession("b")))

	err := pool.Enqueue(testSession("c"))
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Equal(t, 1, pool.QueuedCount())
	assert.Equal(t, 1, pool.ActiveCount())
}

func TestPoolSkipsSessionsCancelledWhileQueued(t *testing.T) {
	exec := &instantExecutor{}
	pool := NewPool(exec, config.QueueConfig{Workers: 1, MaxQueuedTasks: 10})
	defer pool.Stop()

	s := testSession("x")
	require.True(t, s.Cancel())
	require.NoError(t, pool.Enqueue(s))

	other := testSession("y")
	require.NoError(t, pool.Enqueue(other))
	require.Eventually(t, func() bool { return other.Status() == session.StatusCompleted },
		time.Second, 10*time.Millisecond)

	assert.Equal(t, session.StatusCancelled, s.Status())
	assert.Equal(t, 1, exec.runCount(), "cancelled session must not reach the executor")
}

func TestPoolStopCancelsRunningSessions(t *testing.T) {
	exec := newBlockingExecutor()
	pool := NewPool(exec, config.QueueConfig{Workers: 1, MaxQueuedTasks: 10})

	s := testSession("r")
	require.NoError(t, pool.Enqueue(s))
	require.Eventually(t, func() bool { return exec.startedCount() == 1 }, time.Second, 10*time.Millisecond)

	done := make(chan struct{})
	go func() {
		pool.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pool.Stop did not return")
	}
	assert.Equal(t, session.StatusCancelled, s.Status())
}

func TestPoolEnqueueAfterStop(t *testing.T) {
	pool := NewPool(&instantExecutor{}, config.QueueConfig{Workers: 1, MaxQueuedTasks: 1})
	pool.Stop()
	assert.ErrorIs(t, pool.Enqueue(testSession("z")), ErrPoolStopped)
}

func TestPoolCancelViaSessionAPI(t *testing.T) {
	exec := newBlockingExecutor()
	defer close(exec.release)
	pool := NewPool(exec, config.QueueConfig{Workers: 1, MaxQueuedTasks: 10})
	defer pool.Stop()

	s := testSession("c")
	require.NoError(t, pool.Enqueue(s))
	require.Eventually(t, func() bool { return exec.startedCount() == 1 }, time.Second, 10*time.Millisecond)

	require.True(t, s.Cancel())
	require.Eventually(t, func() bool { return s.Status() == session.StatusCancelled },
		time.Second, 10*time.Millisecond)
}
