package orchestrator

import (
	"github.com/helmsman-ai/helmsman/pkg/events"
	"github.com/helmsman-ai/helmsman/pkg/team"
)

// BusObserver forwards agent stream items onto the session event stream as
// they arrive. Chunks become stream.chunk events; intermediate messages
// become non-final agent.message events. The terminal response is published
// by the orchestrator itself after the turn completes.
type BusObserver struct {
	bus       *events.Bus
	sessionID string
}

// NewBusObserver creates a stream observer publishing to the session channel.
func NewBusObserver(bus *events.Bus, sessionID string) *BusObserver {
	return &BusObserver{bus: bus, sessionID: sessionID}
}

// ObserveStreamItem implements team.StreamObserver.
func (o *BusObserver) ObserveStreamItem(agentName string, item team.StreamItem) {
	switch item.Kind {
	case team.StreamChunk:
		o.bus.Publish(o.sessionID, events.EventTypeStreamChunk, events.StreamChunkPayload{
			AgentName: agentName,
			Delta:     item.Message.Content,
		})
	case team.StreamEvent:
		o.bus.Publish(o.sessionID, events.EventTypeAgentMessage, events.AgentMessagePayload{
			AgentName: agentName,
			Kind:      string(item.Message.Kind),
			Content:   item.Message.Content,
			Final:     false,
		})
	}
}
