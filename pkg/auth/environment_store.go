package auth

import (
	"os"
	"time"
)

// EnvironmentStore implements TokenStore using the HUBSPOT_ACCESS_TOKEN
// environment variable. It is read-only and holds at most one token.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based token store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(token *Token) error {
	return ErrStoreUnavailable
}

// Retrieve gets the token from the environment
func (e *EnvironmentStore) Retrieve(profile string) (*Token, error) {
	accessToken := os.Getenv("HUBSPOT_ACCESS_TOKEN")
	if accessToken == "" {
		return nil, ErrTokenNotFound
	}

	// The environment carries no profile name
	if profile == "" {
		profile = "default"
	}

	return &Token{
		Profile:      profile,
		AccessToken:  accessToken,
		LastModified: time.Now(),
	}, nil
}

// List returns a single token if the environment variable is set
func (e *EnvironmentStore) List() ([]*Token, error) {
	token, err := e.Retrieve("")
	if err != nil {
		return []*Token{}, nil
	}
	return []*Token{token}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(profile string) error {
	return ErrStoreUnavailable
}

// Exists checks if an environment token is set
func (e *EnvironmentStore) Exists(profile string) bool {
	return os.Getenv("HUBSPOT_ACCESS_TOKEN") != ""
}
