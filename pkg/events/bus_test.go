package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishAssignsMonotonicSeq(t *testing.T) {
	bus := NewBus()

	first := bus.Publish("s1", EventTypeSessionStatus, SessionStatusPayload{Status: SessionStatusPlanning})
	second := bus.Publish("s1", EventTypeProgress, ProgressPayload{StepIndex: 0})
	other := bus.Publish("s2", EventTypeSessionStatus, SessionStatusPayload{Status: SessionStatusPlanning})

	assert.Equal(t, int64(1), first.Seq)
	assert.Equal(t, int64(2), second.Seq)
	// Sequences are per session.
	assert.Equal(t, int64(1), other.Seq)
	assert.Equal(t, int64(2), bus.LastSeq("s1"))
}

func TestSubscribeReplaysThenStreams(t *testing.T) {
	bus := NewBus()
	bus.Publish("s1", EventTypeSessionStatus, nil)
	bus.Publish("s1", EventTypePlan, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := bus.Subscribe(ctx, "s1", 0)

	assert.Equal(t, int64(1), (<-ch).Seq)
	assert.Equal(t, int64(2), (<-ch).Seq)

	bus.Publish("s1", EventTypeFinalAnswer, FinalAnswerPayload{Answer: "done"})
	live := <-ch
	assert.Equal(t, int64(3), live.Seq)
	assert.Equal(t, EventTypeFinalAnswer, live.Type)
}

func TestSubscribeFromOffset(t *testing.T) {
	bus := NewBus()
	for i := 0; i < 5; i++ {
		bus.Publish("s1", EventTypeProgress, nil)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := bus.Subscribe(ctx, "s1", 3)

	assert.Equal(t, int64(4), (<-ch).Seq)
	assert.Equal(t, int64(5), (<-ch).Seq)
}

func TestSlowSubscriberLosesNothing(t *testing.T) {
	bus := NewBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := bus.Subscribe(ctx, "s1", 0)

	const total = 500
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < total; i++ {
			bus.Publish("s1", EventTypeStreamChunk, StreamChunkPayload{Delta: "x"})
		}
		bus.CloseSession("s1")
	}()

	var seqs []int64
	for evt := range ch {
		seqs = append(seqs, evt.Seq)
	}
	wg.Wait()

	require.Len(t, seqs, total)
	for i, seq := range seqs {
		assert.Equal(t, int64(i+1), seq)
	}
}

func TestCloseSessionDrainsSubscribers(t *testing.T) {
	bus := NewBus()
	bus.Publish("s1", EventTypeSessionStatus, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := bus.Subscribe(ctx, "s1", 0)

	<-ch
	bus.CloseSession("s1")

	select {
	case _, open := <-ch:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("subscriber channel did not close after session close")
	}

	// Publish after close is a no-op.
	evt := bus.Publish("s1", EventTypeProgress, nil)
	assert.Zero(t, evt.Seq)
}

func TestSubscribeCancellation(t *testing.T) {
	bus := NewBus()
	ctx, cancel := context.WithCancel(context.Background())
	ch := bus.Subscribe(ctx, "s1", 0)

	cancel()
	select {
	case _, open := <-ch:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("subscriber channel did not close after cancellation")
	}
}

func TestEventsCatchupQuery(t *testing.T) {
	bus := NewBus()
	for i := 0; i < 4; i++ {
		bus.Publish("s1", EventTypeProgress, nil)
	}

	all := bus.Events("s1", 0)
	require.Len(t, all, 4)

	tail := bus.Events("s1", 2)
	require.Len(t, tail, 2)
	assert.Equal(t, int64(3), tail[0].Seq)

	assert.Empty(t, bus.Events("s1", 99))
}
