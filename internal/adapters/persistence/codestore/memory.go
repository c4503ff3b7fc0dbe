// Package codestore holds the verification code stores: a process-local map
// and a Redis-backed store that relies on key TTLs.
package codestore

import (
	"context"
	"sync"
	"time"

	"microcredit-api/internal/core/domain"
)

// MemoryStore keeps one verification code per email in a map
type MemoryStore struct {
	mu    sync.RWMutex
	store map[string]domain.VerificationCode
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		store: make(map[string]domain.VerificationCode),
	}
}

// Get returns a copy of the stored code or domain.ErrCodeNotFound
func (s *MemoryStore) Get(ctx context.Context, email string) (*domain.VerificationCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.store[email]
	if !ok {
		return nil, domain.ErrCodeNotFound
	}
	return &entry, nil
}

// Set stores code, replacing any previous code for the same email
func (s *MemoryStore) Set(ctx context.Context, code *domain.VerificationCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store[code.Email] = *code
	return nil
}

// Delete removes the code for email; missing keys are not an error
func (s *MemoryStore) Delete(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.store, email)
	return nil
}

// Sweep removes every code that expired before now and returns how many
func (s *MemoryStore) Sweep(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for email, entry := range s.store {
		if entry.ExpiresAt.Before(now) {
			delete(s.store, email)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored codes
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.store)
}
