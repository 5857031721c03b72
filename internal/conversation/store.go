package conversation

import "sync"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one user or assistant message in a question's history.
type Turn struct {
	Role    string
	Content string
}

// Store keeps the turn history for the current question. Debug requests append to it;
// a brand-new question resets it. The orchestrator is the only writer, but reads can
// come from HTTP handlers, so access is guarded.
type Store struct {
	mu    sync.Mutex
	turns []Turn
}

func NewStore() *Store { return &Store{} }

// Reset drops all history. Called when a new non-debug question starts.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = nil
}

// Append adds one turn to the history.
func (s *Store) Append(role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, Turn{Role: role, Content: content})
}

// Turns returns a copy of the ordered history.
func (s *Store) Turns() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// LastAssistant returns the most recent assistant reply, if any.
func (s *Store) LastAssistant() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.turns) - 1; i >= 0; i-- {
		if s.turns[i].Role == RoleAssistant {
			return s.turns[i].Content, true
		}
	}
	return "", false
}

// Len reports the number of stored turns.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.turns)
}
