package state

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/promptgram/promptgram/internal/domain"
)

// Selection is the user's working set of chosen messages, unique by id,
// iterated in the order they were first selected. Toggling an id that is
// already present removes it; the remaining order is unchanged.
type Selection struct {
	mu    sync.Mutex
	items []domain.Message
}

func NewSelection() *Selection {
	return &Selection{}
}

// Toggle flips membership for the message's id and reports whether the
// message is selected afterwards.
func (s *Selection) Toggle(msg domain.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.items {
		if m.ID == msg.ID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return false
		}
	}
	s.items = append(s.items, msg)
	return true
}

func (s *Selection) Contains(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.items {
		if m.ID == id {
			return true
		}
	}
	return false
}

// Remove drops the message with the given id, if present.
func (s *Selection) Remove(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.items {
		if m.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

func (s *Selection) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Messages returns a copy of the selection in insertion order.
func (s *Selection) Messages() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Message, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}

// Save parks the selection in a JSON handoff file for the composer.
func (s *Selection) Save(path string) error {
	s.mu.Lock()
	data, err := json.Marshal(s.items)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("marshal selection: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write selection: %w", err)
	}
	return nil
}

// LoadSelection reads a handoff file written by Save and removes it; the
// handoff is single-use and not meant to outlive the next view.
func LoadSelection(path string) (*Selection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read selection: %w", err)
	}
	var items []domain.Message
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse selection: %w", err)
	}
	_ = os.Remove(path)
	return &Selection{items: items}, nil
}
