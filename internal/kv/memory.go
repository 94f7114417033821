package kv

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store for local development and tests
// (KV_PROVIDER=memory). TTLs are honored lazily on read.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]memoryValue
	lists  map[string][]string
	now    func() time.Time
}

type memoryValue struct {
	data      string
	expiresAt time.Time // zero means no expiry
}

// Compile-time check: *MemoryStore must satisfy Store.
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]memoryValue),
		lists:  make(map[string][]string),
		now:    time.Now,
	}
}

// SetClock overrides the store's time source. Intended for tests that need
// to exercise TTL expiry without sleeping.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// expired reports whether v is past its expiry. Caller must hold s.mu.
func (s *MemoryStore) expired(v memoryValue) bool {
	return !v.expiresAt.IsZero() && s.now().After(v.expiresAt)
}

// Get returns the value at key, or ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.values[key]
	if !ok || s.expired(v) {
		delete(s.values, key)

		return "", ErrNotFound
	}

	return v.data, nil
}

// Set stores value at key.
func (s *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = s.newValue(value, ttl)

	return nil
}

// SetNX stores value only if key is absent (or its previous value expired).
func (s *MemoryStore) SetNX(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.values[key]; ok && !s.expired(v) {
		return false, nil
	}

	s.values[key] = s.newValue(value, ttl)

	return true, nil
}

// newValue builds a memoryValue with the expiry applied. Caller must hold s.mu.
func (s *MemoryStore) newValue(value string, ttl time.Duration) memoryValue {
	v := memoryValue{data: value}
	if ttl > 0 {
		v.expiresAt = s.now().Add(ttl)
	}

	return v
}

// Delete removes keys from both the value and list namespaces.
func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range keys {
		delete(s.values, k)
		delete(s.lists, k)
	}

	return nil
}

// Exists reports whether key is present.
func (s *MemoryStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.values[key]; ok && !s.expired(v) {
		return true, nil
	}
	if _, ok := s.lists[key]; ok {
		return true, nil
	}

	return false, nil
}

// ListAppend appends values to the list at key.
func (s *MemoryStore) ListAppend(_ context.Context, key string, values ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lists[key] = append(s.lists[key], values...)

	return nil
}

// ListRange returns list elements in [start, stop] with Redis index semantics.
func (s *MemoryStore) ListRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.lists[key]
	n := int64(len(list))

	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if n == 0 || start > stop || start >= n {
		return nil, nil
	}

	out := make([]string, stop-start+1)
	copy(out, list[start:stop+1])

	return out, nil
}

// ListLen returns the length of the list at key.
func (s *MemoryStore) ListLen(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return int64(len(s.lists[key])), nil
}

// ListRemove removes all occurrences of value from the list at key.
func (s *MemoryStore) ListRemove(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.lists[key]
	out := list[:0]
	for _, v := range list {
		if v != value {
			out = append(out, v)
		}
	}

	if len(out) == 0 {
		delete(s.lists, key)
	} else {
		s.lists[key] = out
	}

	return nil
}
