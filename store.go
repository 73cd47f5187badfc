package localchat

import (
	"slices"
	"time"
)

// Store owns the conversation history and enforces the sliding window:
// after every commit it holds at most limit turns, dropping the oldest
// first. It is the only writer of the history.
//
// Store is not safe for concurrent use. Turns are serialized by the caller,
// so the history is only touched between turns.
type Store struct {
	limit int
	turns History
}

// NewStore creates a Store retaining at most limit turns, seeded with turns
// from a resumed session. A seed longer than limit keeps its newest turns.
// A negative limit is treated as zero.
func NewStore(limit int, seed ...Turn) *Store {
	s := &Store{limit: max(limit, 0)}
	s.turns = slices.Clone(History(seed))
	s.truncate()
	return s
}

// Snapshot returns a copy of the current history, oldest first.
func (s *Store) Snapshot() History {
	return slices.Clone(s.turns)
}

// Commit appends the completed exchange and evicts the oldest turns until the
// history fits the limit. With a limit of zero the history stays empty.
// It returns the committed turn.
func (s *Store) Commit(userText, assistantText string) Turn {
	t := Turn{
		User:      userText,
		Assistant: assistantText,
		Timestamp: time.Now(),
	}
	s.turns = append(s.turns, t)
	s.truncate()
	return t
}

// Len returns the number of retained turns.
func (s *Store) Len() int { return len(s.turns) }

// Limit returns the maximum number of retained turns.
func (s *Store) Limit() int { return s.limit }

func (s *Store) truncate() {
	if excess := len(s.turns) - s.limit; excess > 0 {
		// Copy so evicted turns do not stay reachable through the backing array.
		s.turns = slices.Clone(s.turns[excess:])
	}
}
