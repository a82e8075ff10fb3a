package memory

import (
	"context"
	"sync"

	"scanmyride/storage"
)

// Store keeps client state in process memory. State is lost on restart.
type Store struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

func New() *Store {
	return &Store{data: make(map[string]map[string]string)}
}

func (s *Store) ClientState() storage.IClientStateStorage { return s }

func (s *Store) Close() {}

func (s *Store) Get(_ context.Context, clientID, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[clientID][key]
	return v, ok, nil
}

func (s *Store) Set(_ context.Context, clientID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.data[clientID]
	if !ok {
		m = make(map[string]string)
		s.data[clientID] = m
	}
	m[key] = value
	return nil
}

func (s *Store) Delete(_ context.Context, clientID string, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.data[clientID]
	for _, k := range keys {
		delete(m, k)
	}
	if len(m) == 0 {
		delete(s.data, clientID)
	}
	return nil
}

func (s *Store) Truncate(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]map[string]string)
	return nil
}
