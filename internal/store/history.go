package store

import (
	"sync"

	"github.com/dat2003as/ragAIFullStack/internal/domain"
)

// HistoryStore holds the ordered conversation turns per session. Sequences
// are append-only; clearing a whole session is the only destructive
// operation.
type HistoryStore struct {
	mu    sync.RWMutex
	turns map[string][]domain.Turn
}

// NewHistoryStore creates an empty history store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{turns: make(map[string][]domain.Turn)}
}

// Append pushes a turn onto the session's sequence, creating it lazily.
func (h *HistoryStore) Append(sessionID string, turn domain.Turn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns[sessionID] = append(h.turns[sessionID], turn)
}

// RecentWindow returns the last n turns in insertion order, or all of them
// when fewer exist. n <= 0 yields nil.
func (h *HistoryStore) RecentWindow(sessionID string, n int) []domain.Turn {
	if n <= 0 {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	turns := h.turns[sessionID]
	if len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	out := make([]domain.Turn, len(turns))
	copy(out, turns)
	return out
}

// FullHistory returns a copy of the session's entire sequence.
func (h *HistoryStore) FullHistory(sessionID string) []domain.Turn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	turns := h.turns[sessionID]
	out := make([]domain.Turn, len(turns))
	copy(out, turns)
	return out
}

// Len returns the number of turns recorded for the session.
func (h *HistoryStore) Len(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.turns[sessionID])
}

// Clear removes the session's sequence and returns how many turns were
// dropped.
func (h *HistoryStore) Clear(sessionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := len(h.turns[sessionID])
	delete(h.turns, sessionID)
	return n
}
