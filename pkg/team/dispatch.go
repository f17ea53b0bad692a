package team

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/helmsman-ai/helmsman/pkg/models"
)

var (
	ErrDispatchTimeout = errors.New("agent dispatch timed out")
	ErrNoFinalResponse = errors.New("agent stream ended without a final response")
)

// StreamObserver receives agent stream items as they arrive, before the
// terminal response is collected. The event bus implements this.
type StreamObserver interface {
	ObserveStreamItem(agentName string, item StreamItem)
}

// DispatchResult is the outcome of one agent turn.
type DispatchResult struct {
	// Response is the agent's terminal chat message.
	Response models.ChatMessage
	// Events are the intermediate messages emitted during the turn,
	// in arrival order (chunks excluded).
	Events []models.ChatMessage
}

// Dispatcher forwards instruction messages to agents, relays their streamed
// events to an observer, and collects the terminal response under a per-turn
// wall-clock timeout.
type Dispatcher struct {
	registry *Registry
	observer StreamObserver
	timeout  time.Duration
}

// NewDispatcher creates a dispatcher. timeout bounds each agent turn;
// zero disables the per-turn timeout. observer may be nil.
func NewDispatcher(registry *Registry, observer StreamObserver, timeout time.Duration) *Dispatcher {
	return &Dispatcher{registry: registry, observer: observer, timeout: timeout}
}

// Dispatch sends the message sequence to the named agent and blocks until
// the turn ends. The last message in the slice is the instruction.
func (d *Dispatcher) Dispatch(ctx context.Context, agentName string, messages []models.ChatMessage) (*DispatchResult, error) {
	agent, ok := d.registry.Get(agentName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, agentName)
	}

	turnCtx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		turnCtx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	logger := slog.With("agent", agentName)
	logger.Debug("Dispatching instruction", "messages", len(messages))

	items, errs := agent.Stream(turnCtx, messages)

	result := &DispatchResult{}
	var final *models.ChatMessage
	for items != nil || errs != nil {
		select {
		case item, ok := <-items:
			if !ok {
				items = nil
				continue
			}
			if d.observer != nil {
				d.observer.ObserveStreamItem(agentName, item)
			}
			switch item.Kind {
			case StreamEvent:
				result.Events = append(result.Events, item.Message)
			case StreamFinal:
				msg := item.Message
				final = &msg
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if err != nil {
				if errors.Is(err, context.DeadlineExceeded) || errors.Is(turnCtx.Err(), context.DeadlineExceeded) {
					return nil, fmt.Errorf("%w: %s after %v", ErrDispatchTimeout, agentName, d.timeout)
				}
				return nil, fmt.Errorf("agent %s: %w", agentName, err)
			}
		case <-turnCtx.Done():
			if errors.Is(turnCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
				return nil, fmt.Errorf("%w: %s after %v", ErrDispatchTimeout, agentName, d.timeout)
			}
			return nil, turnCtx.Err()
		}
	}

	if final == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoFinalResponse, agentName)
	}
	result.Response = *final
	logger.Debug("Agent turn complete", "events", len(result.Events))
	return result, nil
}
