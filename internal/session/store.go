// Package session keeps per-session conversation history.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Skufu/medicare-assistant/internal/chat"
)

// ErrInvalidID is returned for an empty session id.
var ErrInvalidID = errors.New("session id is required")

// Store persists bounded conversation histories keyed by session id.
type Store interface {
	// Append adds turns, keeping only the newest chat.MaxHistoryTurns.
	Append(ctx context.Context, id string, turns ...chat.Turn) error
	// History returns the retained turns, oldest first. Unknown ids yield an
	// empty history.
	History(ctx context.Context, id string) ([]chat.Turn, error)
	// Reset forgets a session.
	Reset(ctx context.Context, id string) error
}

// NewID returns a fresh session id.
func NewID() string {
	return uuid.NewString()
}

func checkID(id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidID
	}
	return nil
}

type memoryEntry struct {
	history  *chat.History
	lastSeen time.Time
}

// MemoryStore is an in-process Store. Sessions idle for longer than the TTL
// are dropped lazily.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*memoryEntry
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore creates a store; a non-positive ttl keeps sessions forever.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*memoryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *MemoryStore) Append(_ context.Context, id string, turns ...chat.Turn) error {
	if err := checkID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.lookup(id)
	if entry == nil {
		entry = &memoryEntry{history: chat.NewHistory()}
		s.sessions[id] = entry
	}
	entry.history.Append(turns...)
	entry.lastSeen = s.now()
	return nil
}

func (s *MemoryStore) History(_ context.Context, id string) ([]chat.Turn, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.lookup(id)
	if entry == nil {
		return []chat.Turn{}, nil
	}
	return entry.history.Turns(), nil
}

func (s *MemoryStore) Reset(_ context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

// Len returns the number of live sessions.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.sessions {
		s.lookup(id)
	}
	return len(s.sessions)
}

// lookup returns the entry for id, evicting it if expired. Caller holds mu.
func (s *MemoryStore) lookup(id string) *memoryEntry {
	entry, ok := s.sessions[id]
	if !ok {
		return nil
	}
	if s.ttl > 0 && s.now().Sub(entry.lastSeen) > s.ttl {
		delete(s.sessions, id)
		return nil
	}
	return entry
}
