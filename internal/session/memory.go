package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/farmgate/whatsapp-engine/internal/model"
)

type memoryEntry struct {
	session   model.Session
	expiresAt time.Time
}

// MemoryStore keeps sessions in process. It is not shared across instances.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(ctx context.Context, phone string) model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.current(phone))
}

func (s *MemoryStore) Set(ctx context.Context, phone string, patch Patch) (model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	next := Apply(s.current(phone), patch, now)
	s.entries[phone] = &memoryEntry{session: next, expiresAt: now.Add(s.ttl)}
	return clone(next), nil
}

func (s *MemoryStore) Clear(ctx context.Context, phone string) error {
	s.mu.Lock()
	delete(s.entries, phone)
	s.mu.Unlock()
	return nil
}

// Sweep drops expired sessions and reports how many were removed.
func (s *MemoryStore) Sweep(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var removed int64
	for phone, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, phone)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// current must be called with mu held.
func (s *MemoryStore) current(phone string) model.Session {
	now := s.now()
	e, ok := s.entries[phone]
	if !ok || now.After(e.expiresAt) {
		delete(s.entries, phone)
		return model.NewSession(now)
	}
	return sanitize(e.session, now)
}

func clone(sess model.Session) model.Session {
	raw, err := json.Marshal(sess)
	if err != nil {
		return sess
	}
	var out model.Session
	if err := json.Unmarshal(raw, &out); err != nil {
		return sess
	}
	return sanitize(out, sess.UpdatedAt)
}
