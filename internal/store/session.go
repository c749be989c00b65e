package store

import "sync"

// Session is the process-lifetime store. Values vanish when the client
// exits, matching the session-scoped half of the storage contract.
type Session struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewSession() *Session {
	return &Session{values: make(map[string][]byte)}
}

func (s *Session) Get(key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (s *Session) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	s.values[key] = v
	return nil
}

func (s *Session) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
