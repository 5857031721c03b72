package conversation

import "testing"

func TestStoreAppendAndLastAssistant(t *testing.T) {
	s := NewStore()

	if _, ok := s.LastAssistant(); ok {
		t.Fatal("empty store must report no assistant reply")
	}

	s.Append(RoleUser, "question")
	s.Append(RoleAssistant, "first answer")
	s.Append(RoleUser, "follow-up")
	s.Append(RoleAssistant, "second answer")

	got, ok := s.LastAssistant()
	if !ok || got != "second answer" {
		t.Errorf("LastAssistant = %q, %v; want most recent reply", got, ok)
	}
	if s.Len() != 4 {
		t.Errorf("Len = %d, want 4", s.Len())
	}
}

func TestStoreResetClearsHistory(t *testing.T) {
	s := NewStore()
	s.Append(RoleUser, "q")
	s.Append(RoleAssistant, "a")

	s.Reset()
	if s.Len() != 0 {
		t.Errorf("Len after Reset = %d, want 0", s.Len())
	}
	if _, ok := s.LastAssistant(); ok {
		t.Error("Reset must drop the prior assistant reply")
	}
}

func TestStoreTurnsReturnsCopy(t *testing.T) {
	s := NewStore()
	s.Append(RoleUser, "q")

	turns := s.Turns()
	turns[0].Content = "mutated"

	fresh := s.Turns()
	if fresh[0].Content != "q" {
		t.Error("Turns must return a copy, not the backing slice")
	}
}
