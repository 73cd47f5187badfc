package localchat

import "time"

// Turn is one user message paired with the assistant reply produced for it.
// Turns only exist as complete pairs: a failed exchange never becomes a Turn.
type Turn struct {
	User      string
	Assistant string
	Timestamp time.Time
}

// Messages expands the turn into its user and assistant messages.
func (t Turn) Messages() []Message {
	return []Message{UserMessage(t.User), AssistantMessage(t.Assistant)}
}

// History is an ordered sequence of turns, oldest first.
type History []Turn

// Messages flattens the history into messages in conversation order.
func (h History) Messages() []Message {
	if len(h) == 0 {
		return nil
	}
	msgs := make([]Message, 0, 2*len(h))
	for _, t := range h {
		msgs = append(msgs, t.Messages()...)
	}
	return msgs
}
