package auth

import (
	"encoding/json"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "hubexport"
	keyringPrefix  = "hubspot_"
)

// KeyringStore implements TokenStore using the system keychain
type KeyringStore struct{}

// NewKeyringStore creates a new keyring-based token store
func NewKeyringStore() (*KeyringStore, error) {
	// Test if keyring is available
	testKey := "test_availability"
	err := keyring.Set(keyringService, testKey, "test")
	if err != nil {
		return nil, fmt.Errorf("keyring not available: %w", err)
	}
	_ = keyring.Delete(keyringService, testKey)

	return &KeyringStore{}, nil
}

// Store saves a token to the system keychain
func (k *KeyringStore) Store(token *Token) error {
	if token == nil || token.Profile == "" {
		return ErrInvalidToken
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	key := keyringPrefix + token.Profile
	if err := keyring.Set(keyringService, key, string(data)); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}

	return nil
}

// Retrieve gets a token from the system keychain
func (k *KeyringStore) Retrieve(profile string) (*Token, error) {
	if profile == "" {
		return nil, ErrInvalidToken
	}

	key := keyringPrefix + profile
	data, err := keyring.Get(keyringService, key)
	if err != nil {
		if err == keyring.ErrNotFound {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to retrieve from keyring: %w", err)
	}

	var token Token
	if err := json.Unmarshal([]byte(data), &token); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token: %w", err)
	}

	return &token, nil
}

// List returns all stored tokens from the keychain. go-keyring cannot
// enumerate keys, so this always returns empty; the encrypted file store
// provides listing.
func (k *KeyringStore) List() ([]*Token, error) {
	return []*Token{}, nil
}

// Delete removes a token from the system keychain
func (k *KeyringStore) Delete(profile string) error {
	if profile == "" {
		return ErrInvalidToken
	}

	key := keyringPrefix + profile
	err := keyring.Delete(keyringService, key)
	if err != nil {
		if err == keyring.ErrNotFound {
			return ErrTokenNotFound
		}
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}

	return nil
}

// Exists checks if a token exists in the keychain
func (k *KeyringStore) Exists(profile string) bool {
	if profile == "" {
		return false
	}

	key := keyringPrefix + profile
	_, err := keyring.Get(keyringService, key)
	return err == nil
}
