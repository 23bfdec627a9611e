// Package conversation keeps chat history in memory. History is per
// conversation, capped at a fixed number of retained messages, and gone on
// restart.
package conversation

import (
	"sort"
	"sync"
	"time"

	"github.com/legalarch/docai/internal/core/domain"
)

type Store struct {
	mu            sync.Mutex
	conversations map[string][]domain.ChatMessage
	maxMessages   int
}

func NewStore(maxMessages int) *Store {
	if maxMessages <= 0 {
		maxMessages = 12
	}
	return &Store{
		conversations: make(map[string][]domain.ChatMessage),
		maxMessages:   maxMessages,
	}
}

// Append records one message, evicting the oldest when the cap is exceeded.
func (s *Store) Append(conversationID, role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages := append(s.conversations[conversationID], domain.ChatMessage{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	})
	if excess := len(messages) - s.maxMessages; excess > 0 {
		messages = messages[excess:]
	}
	s.conversations[conversationID] = messages
}

// History returns a copy of the conversation's messages, oldest first.
func (s *Store) History(conversationID string) []domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages := s.conversations[conversationID]
	out := make([]domain.ChatMessage, len(messages))
	copy(out, messages)
	return out
}

func (s *Store) Clear(conversationID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[conversationID]; !ok {
		return false
	}
	delete(s.conversations, conversationID)
	return true
}

func (s *Store) List() []domain.ConversationSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.ConversationSummary, 0, len(s.conversations))
	for id, messages := range s.conversations {
		summary := domain.ConversationSummary{
			ConversationID: id,
			MessageCount:   len(messages),
		}
		if n := len(messages); n > 0 {
			summary.LastMessage = messages[n-1].Content
			summary.LastTimestamp = messages[n-1].Timestamp
		}
		out = append(out, summary)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastTimestamp.After(out[j].LastTimestamp)
	})
	return out
}

func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conversations)
}
