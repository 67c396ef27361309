package store

import (
	"context"
	"sync"
	"time"

	"github.com/bow-app/intake-bridge-go/internal/model"
)

// MemoryStore is the default process-lifetime store. State survives exactly
// as long as the process does.
type MemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]*model.ConversationState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		conversations: make(map[string]*model.ConversationState),
	}
}

// Get returns a copy of the conversation's state, creating an empty entry on
// first access. It never fails.
func (s *MemoryStore) Get(_ context.Context, conversationID string) (*model.ConversationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.conversations[conversationID]
	if !ok {
		state = model.NewConversationState(conversationID)
		s.conversations[conversationID] = state
	}

	copied := *state
	return &copied, nil
}

// Update applies mutate to the stored entry, creating it first if the
// conversation has never been seen.
func (s *MemoryStore) Update(_ context.Context, conversationID string, mutate func(*model.ConversationState)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.conversations[conversationID]
	if !ok {
		state = model.NewConversationState(conversationID)
		s.conversations[conversationID] = state
	}

	mutate(state)
	state.LastSeenAt = time.Now().UTC()
	return nil
}

// Len reports how many conversations the store is tracking.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversations)
}
