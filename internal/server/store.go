package server

import (
	"sync"
	"time"

	"github.com/ozdemircibaris/youtube-video-generator/internal/pipeline"

	"github.com/google/uuid"
)

// Entry is a stored channel timeline and its prepared query engine.
type Entry struct {
	ID          uuid.UUID
	Channel     string
	Timeline    *pipeline.Timeline
	Highlighter *pipeline.Highlighter
	CreatedAt   time.Time
}

// Store is the persistence abstraction for channel timelines. Putting a
// timeline for a channel replaces the previous one.
type Store interface {
	Get(channel string) (*Entry, bool)
	Put(e *Entry)
	Len() int
}

// InMemoryStore is an in-memory implementation of Store, safe for
// concurrent use.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewInMemoryStore returns a new empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[string]*Entry)}
}

// Get implements Store.Get.
func (s *InMemoryStore) Get(channel string) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[channel]
	return e, ok
}

// Put implements Store.Put.
func (s *InMemoryStore) Put(e *Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[e.Channel] = e
}

// Len implements Store.Len.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
