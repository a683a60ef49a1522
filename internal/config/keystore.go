package config

import "sync"

// KeyStore holds the current API key. The Figma client reads it on every
// request and the config watcher replaces it when the key rotates.
type KeyStore struct {
	mu     sync.RWMutex
	key    string
	source Source
}

// NewKeyStore creates a store holding key.
func NewKeyStore(key string, source Source) *KeyStore {
	return &KeyStore{key: key, source: source}
}

// APIKey returns the current key.
func (s *KeyStore) APIKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.key
}

// Source reports where the current key came from.
func (s *KeyStore) Source() Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// Set replaces the key. It reports whether the key actually changed.
func (s *KeyStore) Set(key string, source Source) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := s.key != key
	s.key = key
	s.source = source
	return changed
}
