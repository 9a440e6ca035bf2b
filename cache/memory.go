package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// DefaultCapacity is the number of logins kept by a MemoryStore
const DefaultCapacity = 1000

// MemoryStore is a bounded LRU store with per-entry expiry
type MemoryStore struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element
	lru      *list.List
	now      func() time.Time
}

type memoryItem struct {
	key       string
	entry     Entry
	expiresAt time.Time
}

// NewMemoryStore creates a store holding at most capacity entries
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryStore{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		lru:      list.New(),
		now:      time.Now,
	}
}

// Get returns the entry for key, or ErrMiss when absent or expired
func (s *MemoryStore) Get(ctx context.Context, key string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.items[key]
	if !ok {
		return nil, ErrMiss
	}
	item := elem.Value.(*memoryItem)
	if !s.now().Before(item.expiresAt) {
		s.removeElement(elem)
		return nil, ErrMiss
	}

	s.lru.MoveToFront(elem)
	entry := item.entry
	return &entry, nil
}

// Set stores entry under key for ttl, evicting the least recently used entry when full
func (s *MemoryStore) Set(ctx context.Context, key string, entry Entry, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt := s.now().Add(ttl)
	if elem, ok := s.items[key]; ok {
		item := elem.Value.(*memoryItem)
		item.entry = entry
		item.expiresAt = expiresAt
		s.lru.MoveToFront(elem)
		return nil
	}

	elem := s.lru.PushFront(&memoryItem{key: key, entry: entry, expiresAt: expiresAt})
	s.items[key] = elem

	for s.lru.Len() > s.capacity {
		s.removeElement(s.lru.Back())
	}
	return nil
}

// Len returns the number of entries currently held, expired or not
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lru.Len()
}

// Close drops all entries
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]*list.Element)
	s.lru.Init()
	return nil
}

func (s *MemoryStore) removeElement(elem *list.Element) {
	item := elem.Value.(*memoryItem)
	delete(s.items, item.key)
	s.lru.Remove(elem)
}
