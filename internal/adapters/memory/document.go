// Package memory provides in-memory adapters for tests and embedding.
package memory

import (
	"context"
	"sync"
)

// DocumentStore implements ports.DocumentStorage in memory.
type DocumentStore struct {
	mu    sync.Mutex
	data  []byte
	saves int

	// SaveErr, when set, is returned by Save and the stored bytes are kept.
	SaveErr error
	// LoadErr, when set, is returned by Load.
	LoadErr error
}

// NewDocumentStore creates a store holding initial. Nil means no document.
func NewDocumentStore(initial []byte) *DocumentStore {
	return &DocumentStore{data: clone(initial)}
}

// Load returns a copy of the stored bytes.
func (s *DocumentStore) Load(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	return clone(s.data), nil
}

// Save replaces the stored bytes.
func (s *DocumentStore) Save(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.data = clone(data)
	s.saves++
	return nil
}

// Bytes returns a copy of the stored bytes.
func (s *DocumentStore) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.data)
}

// Saves returns how many times Save succeeded.
func (s *DocumentStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
