package checkpoint

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helmsman-ai/helmsman/pkg/sentinel"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	loaded, err := store.Load(ctx, "sess-1", 0)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	state := &sentinel.State{
		SessionID:               "sess-1",
		StepIndex:               0,
		ExecutionsCompleted:     2,
		LastCheckResult:         false,
		NextWakeTime:            time.Now().Add(time.Minute),
		CurrentSleepSeconds:     60,
		AccumulatedObservations: []string{"first", "second"},
	}
	require.NoError(t, store.Save(ctx, state))

	loaded, err = store.Load(ctx, "sess-1", 0)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 2, loaded.ExecutionsCompleted)
	assert.Equal(t, []string{"first", "second"}, loaded.AccumulatedObservations)

	// The stored copy is isolated from later mutation.
	state.AccumulatedObservations[0] = "mutated"
	loaded, err = store.Load(ctx, "sess-1", 0)
	require.NoError(t, err)
	assert.Equal(t, "first", loaded.AccumulatedObservations[0])

	require.NoError(t, store.Delete(ctx, "sess-1", 0))
	loaded, err = store.Load(ctx, "sess-1", 0)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestMemoryStoreKeysBySessionAndStep(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Save(ctx, &sentinel.State{SessionID: "a", StepIndex: 1, ExecutionsCompleted: 1}))
	require.NoError(t, store.Save(ctx, &sentinel.State{SessionID: "a", StepIndex: 2, ExecutionsCompleted: 2}))
	require.NoError(t, store.Save(ctx, &sentinel.State{SessionID: "b", StepIndex: 1, ExecutionsCompleted: 3}))

	loaded, err := store.Load(ctx, "a", 2)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 2, loaded.ExecutionsCompleted)

	loaded, err = store.Load(ctx, "b", 2)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}
