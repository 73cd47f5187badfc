package localchat

// Event is a sealed interface representing a streaming event.
// Events are purely semantic. Transport/protocol errors come from
// Next()'s error return, not from events.
// The unexported marker method prevents external implementations.
type Event interface {
	event()
}

// EventTextDelta is one fragment of the reply text.
type EventTextDelta struct {
	Delta string
}

func (EventTextDelta) event() {}

// EventThinkingDelta is one fragment of reasoning text emitted by reasoning
// models ahead of the reply. It is display-only and never part of the reply.
type EventThinkingDelta struct {
	Delta string
}

func (EventThinkingDelta) event() {}

// Interface compliance checks.
var (
	_ Event = EventTextDelta{}
	_ Event = EventThinkingDelta{}
)
