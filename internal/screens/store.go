package screens

import "sync"

// Store holds the two screenshot queues: the main queue feeds initial questions,
// the extra queue feeds debug follow-ups. Order of insertion is semantically
// meaningful (problem text before code) and is always preserved.
type Store struct {
	mu    sync.Mutex
	main  []string
	extra []string
}

func NewStore() *Store { return &Store{} }

func (s *Store) AddMain(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.main = append(s.main, path)
}

func (s *Store) AddExtra(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.extra = append(s.extra, path)
}

// MainQueue returns an order-preserving copy of the main queue.
func (s *Store) MainQueue() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.main...)
}

// ExtraQueue returns an order-preserving copy of the extra queue.
func (s *Store) ExtraQueue() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.extra...)
}

func (s *Store) ClearMain() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.main = nil
}

func (s *Store) ClearExtra() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.extra = nil
}
