package inmem

import (
	"sync"

	"github.com/igolaizola/igobot/internal/memory"
)

// Store keeps conversation histories in memory.
type Store struct {
	lck      sync.RWMutex
	maxPairs int
	contexts map[string][]memory.Message
}

// New returns an in-memory store of conversation histories.
// If maxPairs is greater than zero, only the last maxPairs user/assistant pairs
// are kept for each conversation.
func New(maxPairs int) *Store {
	if maxPairs < 0 {
		maxPairs = 0
	}
	return &Store{
		maxPairs: maxPairs,
		contexts: map[string][]memory.Message{},
	}
}

// Get returns a copy of the conversation history.
func (m *Store) Get(id string) []memory.Message {
	m.lck.RLock()
	defer m.lck.RUnlock()
	msgs := m.contexts[id]
	out := make([]memory.Message, len(msgs))
	copy(out, msgs)
	return out
}

// Append adds the user message and the assistant reply in a single step, so
// readers never see one without the other.
func (m *Store) Append(id, user, assistant string) {
	m.lck.Lock()
	defer m.lck.Unlock()
	msgs := append(m.contexts[id],
		memory.Message{Role: memory.RoleUser, Content: user},
		memory.Message{Role: memory.RoleAssistant, Content: assistant},
	)
	if limit := m.maxPairs * 2; limit > 0 && len(msgs) > limit {
		// Copy so the dropped messages can be collected
		trimmed := make([]memory.Message, limit)
		copy(trimmed, msgs[len(msgs)-limit:])
		msgs = trimmed
	}
	m.contexts[id] = msgs
}

// Clear empties the conversation history, the conversation stays known.
func (m *Store) Clear(id string) {
	m.lck.Lock()
	defer m.lck.Unlock()
	m.contexts[id] = []memory.Message{}
}

// Known reports whether the conversation has been appended to or cleared.
func (m *Store) Known(id string) bool {
	m.lck.RLock()
	defer m.lck.RUnlock()
	_, ok := m.contexts[id]
	return ok
}

// Len returns the number of known conversations.
func (m *Store) Len() int {
	m.lck.RLock()
	defer m.lck.RUnlock()
	return len(m.contexts)
}
