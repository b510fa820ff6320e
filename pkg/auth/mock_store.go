package auth

import (
	"fmt"
	"sync"
)

// MockStore implements TokenStore for testing purposes
type MockStore struct {
	tokens map[string]*Token
	mu     sync.RWMutex

	// Error injection for testing
	StoreError    error
	RetrieveError error
	ListError     error
	DeleteError   error
}

// NewMockStore creates a new mock token store
func NewMockStore() *MockStore {
	return &MockStore{
		tokens: make(map[string]*Token),
	}
}

// Store saves a token to the mock store
func (m *MockStore) Store(token *Token) error {
	if m.StoreError != nil {
		return m.StoreError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if token == nil || token.Profile == "" {
		return ErrInvalidToken
	}

	// Copy to avoid external modifications
	tokenCopy := *token
	m.tokens[token.Profile] = &tokenCopy

	return nil
}

// Retrieve gets a token from the mock store
func (m *MockStore) Retrieve(profile string) (*Token, error) {
	if m.RetrieveError != nil {
		return nil, m.RetrieveError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if profile == "" {
		return nil, ErrInvalidToken
	}

	token, exists := m.tokens[profile]
	if !exists {
		return nil, ErrTokenNotFound
	}

	tokenCopy := *token
	return &tokenCopy, nil
}

// List returns all tokens in the mock store
func (m *MockStore) List() ([]*Token, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	tokens := make([]*Token, 0, len(m.tokens))
	for _, token := range m.tokens {
		tokenCopy := *token
		tokens = append(tokens, &tokenCopy)
	}

	return tokens, nil
}

// Delete removes a token from the mock store
func (m *MockStore) Delete(profile string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if profile == "" {
		return ErrInvalidToken
	}

	if _, exists := m.tokens[profile]; !exists {
		return fmt.Errorf("token not found for profile: %s", profile)
	}

	delete(m.tokens, profile)
	return nil
}

// Exists checks if a token exists in the mock store
func (m *MockStore) Exists(profile string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.tokens[profile]
	return exists
}
