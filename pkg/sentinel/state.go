package sentinel

import (
	"context"
	"time"
)

// State is the progress record of one running sentinel step. It is
// checkpointed after every execution so long-running sentinels survive
// process restarts.
type State struct {
	SessionID string `json:"session_id"`
	StepIndex int    `json:"step_index"`

	ExecutionsCompleted int       `json:"executions_completed"`
	LastCheckResult     bool      `json:"last_check_result"`
	NextWakeTime        time.Time `json:"next_wake_time"`
	CurrentSleepSeconds int       `json:"current_sleep_seconds"`

	AccumulatedObservations []string `json:"accumulated_observations"`
}

// Store persists sentinel state between executions. Load returns nil with no
// error when no checkpoint exists.
type Store interface {
	Save(ctx context.Context, state *State) error
	Load(ctx context.Context, sessionID string, stepIndex int) (*State, error)
	Delete(ctx context.Context, sessionID string, stepIndex int) error
}
