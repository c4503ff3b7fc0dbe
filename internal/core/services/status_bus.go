package services

import (
	"sync"

	"microcredit-api/internal/core/domain"
)

// StatusBus fans out authentication status changes to subscribers
type StatusBus struct {
	mu   sync.RWMutex
	subs map[int]func(domain.AuthStatus)
	next int
}

// NewStatusBus creates an empty bus
func NewStatusBus() *StatusBus {
	return &StatusBus{subs: make(map[int]func(domain.AuthStatus))}
}

// Subscribe registers fn and returns a func that removes it
func (b *StatusBus) Subscribe(fn func(domain.AuthStatus)) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Publish delivers status to every subscriber synchronously
func (b *StatusBus) Publish(status domain.AuthStatus) {
	b.mu.RLock()
	fns := make([]func(domain.AuthStatus), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(status)
	}
}
