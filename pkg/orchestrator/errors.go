package orchestrator

import (
	"context"
	"errors"

	"github.com/helmsman-ai/helmsman/pkg/plan"
	"github.com/helmsman-ai/helmsman/pkg/protocol"
	"github.com/helmsman-ai/helmsman/pkg/team"
)

var (
	// ErrAgentFailure marks an agent turn that raised or timed out. Counted
	// as a stall for the current step.
	ErrAgentFailure = errors.New("agent failure")

	// ErrLoopDetected marks three consecutive identical instructions to the
	// same agent on the same step. Forces a replan.
	ErrLoopDetected = errors.New("repeated identical instruction")

	// ErrResourceFailure marks a session resource (container, store) that
	// could not be acquired. Terminal.
	ErrResourceFailure = errors.New("resource failure")

	// ErrNotAcceptingInput is returned when input is submitted to a session
	// that has already terminated.
	ErrNotAcceptingInput = errors.New("session is not accepting input")
)

// errorKind maps an error to its user-facing taxonomy name for
// session.error events.
func errorKind(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.Is(err, plan.ErrUnknownAgent), errors.Is(err, team.ErrAgentNotFound):
		return "unknown_agent"
	case errors.Is(err, protocol.ErrProtocolFailure):
		return "protocol_failure"
	case errors.Is(err, ErrLoopDetected):
		return "loop_detected"
	case errors.Is(err, ErrResourceFailure):
		return "resource_failure"
	case errors.Is(err, ErrAgentFailure), errors.Is(err, team.ErrDispatchTimeout),
		errors.Is(err, team.ErrNoFinalResponse), errors.Is(err, context.DeadlineExceeded):
		return "agent_failure"
	default:
		return "internal_error"
	}
}
