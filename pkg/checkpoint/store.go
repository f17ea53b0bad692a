// Package checkpoint persists sentinel step state so long-running monitors
// survive process restarts. The PostgreSQL store is used when a database is
// configured; the in-memory store covers everything else.
package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helmsman-ai/helmsman/pkg/sentinel"
)

// PostgresStore is a sentinel.Store backed by PostgreSQL.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgresStore connects to the database, applies pending migrations, and
// returns the store.
func NewPostgresStore(ctx context.Context, url string) (*PostgresStore, error) {
	if err := runMigrations(url); err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("Checkpoint store connected")
	return &PostgresStore{pool: pool, logger: slog.With("component", "checkpoint")}, nil
}

// Save upserts the state row for (session, step).
func (s *PostgresStore) Save(ctx context.Context, state *sentinel.State) error {
	observations, err := json.Marshal(state.AccumulatedObservations)
	if err != nil {
		return fmt.Errorf("marshal observations: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO sentinel_states (
			session_id, step_index, executions_completed, last_check_result,
			next_wake_time, current_sleep_seconds, accumulated_observations, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (session_id, step_index) DO UPDATE SET
			executions_completed = EXCLUDED.executions_completed,
			last_check_result = EXCLUDED.last_check_result,
			next_wake_time = EXCLUDED.next_wake_time,
			current_sleep_seconds = EXCLUDED.current_sleep_seconds,
			accumulated_observations = EXCLUDED.accumulated_observations,
			updated_at = now()`,
		state.SessionID, state.StepIndex, state.ExecutionsCompleted, state.LastCheckResult,
		state.NextWakeTime, state.CurrentSleepSeconds, observations)
	if err != nil {
		return fmt.Errorf("save sentinel state: %w", err)
	}
	return nil
}

// Load fetches the state for (session, step). Returns nil when no checkpoint
// exists.
func (s *PostgresStore) Load(ctx context.Context, sessionID string, stepIndex int) (*sentinel.State, error) {
	state := &sentinel.State{SessionID: sessionID, StepIndex: stepIndex}
	var observations []byte

	err := s.pool.QueryRow(ctx, `
		SELECT executions_completed, last_check_result, next_wake_time,
		       current_sleep_seconds, accumulated_observations
		FROM sentinel_states
		WHERE session_id = $1 AND step_index = $2`,
		sessionID, stepIndex).Scan(
		&state.ExecutionsCompleted, &state.LastCheckResult, &state.NextWakeTime,
		&state.CurrentSleepSeconds, &observations)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load sentinel state: %w", err)
	}

	if err := json.Unmarshal(observations, &state.AccumulatedObservations); err != nil {
		return nil, fmt.Errorf("unmarshal observations: %w", err)
	}
	return state, nil
}

// Delete removes the checkpoint for a completed or abandoned step.
func (s *PostgresStore) Delete(ctx context.Context, sessionID string, stepIndex int) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM sentinel_states WHERE session_id = $1 AND step_index = $2`,
		sessionID, stepIndex)
	if err != nil {
		return fmt.Errorf("delete sentinel state: %w", err)
	}
	return nil
}

// Ping verifies database connectivity for health checks.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}
