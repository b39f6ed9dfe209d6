package services

import (
	"context"
	"sync"
)

// MockIdempotencyStore is an in-memory implementation of IdempotencyInterface
// for testing
type MockIdempotencyStore struct {
	tokens map[string]string // map of request token to order code
	mu     sync.RWMutex
}

// NewMockIdempotencyStore creates a new mock idempotency store
func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		tokens: make(map[string]string),
	}
}

// SetAsStoreForTesting sets this mock as the global idempotency store for testing
func (m *MockIdempotencyStore) SetAsStoreForTesting() {
	SetIdempotencyStore(m)
}

// Lookup returns the order code previously stored for this token
func (m *MockIdempotencyStore) Lookup(ctx context.Context, token string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	code, ok := m.tokens[token]
	return code, ok
}

// Remember stores the token -> order code mapping. First write wins, matching
// the SetNX semantics of the redis store.
func (m *MockIdempotencyStore) Remember(ctx context.Context, token, orderCode string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.tokens[token]; !exists {
		m.tokens[token] = orderCode
	}
}
