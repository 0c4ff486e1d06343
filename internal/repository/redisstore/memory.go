package redisstore

import (
	"encoding/json"
	"sync"
	"time"
)

// memoryStore is the in-process fallback used when Redis is not connected.
// Values are kept JSON-encoded so callers never share state with the store.
// A zero expiresAt never expires, like a Redis key set without TTL.
type memoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	raw       []byte
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

func newMemoryStore() *memoryStore {
	return &memoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

func (m *memoryStore) get(key string, dst interface{}) (bool, error) {
	m.mu.Lock()
	entry, ok := m.entries[key]
	if ok && entry.expired(m.now()) {
		delete(m.entries, key)
		ok = false
	}
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(entry.raw, dst)
}

func (m *memoryStore) set(key string, v interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	entry := memoryEntry{raw: raw}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()
	return nil
}

func (m *memoryStore) delete(key string) {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
}

// sweep drops expired entries.
func (m *memoryStore) sweep() {
	now := m.now()
	m.mu.Lock()
	for key, entry := range m.entries {
		if entry.expired(now) {
			delete(m.entries, key)
		}
	}
	m.mu.Unlock()
}

func (m *memoryStore) startJanitor(interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.sweep()
			case <-stop:
				return
			}
		}
	}()
}
