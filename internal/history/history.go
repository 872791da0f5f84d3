package history

import (
	"sync"
	"time"
)

// Role identifies the author of a turn.
type Role string

// Roles recorded in the conversation log.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// DefaultMaxExchanges is the default number of user/assistant exchange
// pairs retained; the store holds at most twice this many turns.
const DefaultMaxExchanges = 10

// Turn is one message in the conversation log. Turns are immutable once
// appended.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Store is a bounded, ordered log of conversation turns. It is safe for
// concurrent use.
type Store struct {
	mu            sync.Mutex
	turns         []Turn
	maxExchanges  int
	lastProcessed time.Time
	now           func() time.Time
}

// NewStore creates a store retaining at most maxExchanges user/assistant
// pairs (2*maxExchanges turns). A non-positive value selects
// DefaultMaxExchanges.
func NewStore(maxExchanges int) *Store {
	if maxExchanges <= 0 {
		maxExchanges = DefaultMaxExchanges
	}
	return &Store{
		maxExchanges: maxExchanges,
		now:          time.Now,
	}
}

// Append records a turn with the current timestamp. If the log exceeds its
// bound the oldest turns are evicted first.
func (s *Store) Append(role Role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.turns = append(s.turns, Turn{
		Role:      role,
		Content:   content,
		Timestamp: s.now(),
	})
	s.lastProcessed = s.now()

	if max := s.maxExchanges * 2; len(s.turns) > max {
		s.turns = append(s.turns[:0:0], s.turns[len(s.turns)-max:]...)
	}
}

// Recent returns up to limit of the most recent turns in chronological
// order (oldest first), ready for prompt replay.
func (s *Store) Recent(limit int) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 || limit > len(s.turns) {
		limit = len(s.turns)
	}
	out := make([]Turn, limit)
	copy(out, s.turns[len(s.turns)-limit:])
	return out
}

// All returns a copy of the full log in chronological order.
func (s *Store) All() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Len returns the number of turns currently retained.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.turns)
}

// LastProcessed returns the timestamp of the most recent append, or the
// zero time if the store is empty or has been cleared.
func (s *Store) LastProcessed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastProcessed
}

// Clear resets the store to empty and clears the last-processed marker.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = nil
	s.lastProcessed = time.Time{}
}
