package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Token is a stored HubSpot private app access token. Profiles let one
// machine hold tokens for several portals; "default" is used when no profile
// is named.
type Token struct {
	Profile      string    `json:"profile"`
	AccessToken  string    `json:"access_token"`
	LastModified time.Time `json:"last_modified"`
}

// TokenStore is the interface for storing and retrieving access tokens
type TokenStore interface {
	// Store saves a token under its profile name
	Store(token *Token) error

	// Retrieve gets the token for a specific profile
	Retrieve(profile string) (*Token, error)

	// List returns all stored tokens
	List() ([]*Token, error)

	// Delete removes the token for a specific profile
	Delete(profile string) error

	// Exists checks if a token exists for a profile
	Exists(profile string) bool
}

// Manager handles token storage with fallback mechanisms
type Manager struct {
	stores []TokenStore
}

// NewManager creates a token manager with the available storage backends,
// most secure first.
func NewManager() (*Manager, error) {
	var stores []TokenStore

	// Try keyring first (system keychain)
	keyringStore, err := NewKeyringStore()
	if err == nil {
		stores = append(stores, keyringStore)
	}

	// Always add encrypted file store as fallback
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "tokens.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore)

	// Add environment store as last resort
	stores = append(stores, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// Store saves a token using the first store that accepts it
func (m *Manager) Store(token *Token) error {
	if token.Profile == "" {
		token.Profile = "default"
	}
	if token.AccessToken == "" {
		return errors.New("access token is required")
	}

	token.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		if err := store.Store(token); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}

	if lastErr != nil {
		return fmt.Errorf("failed to store token: %w", lastErr)
	}
	return errors.New("no available token stores")
}

// Retrieve gets the token for a profile from the first store that has it
func (m *Manager) Retrieve(profile string) (*Token, error) {
	for _, store := range m.stores {
		if token, err := store.Retrieve(profile); err == nil && token != nil {
			return token, nil
		}
	}
	return nil, fmt.Errorf("token not found for profile: %s", profile)
}

// RetrieveDefault gets the token for the default profile, preferring the
// environment so CI and one-off runs need no stored state.
func (m *Manager) RetrieveDefault() (*Token, error) {
	if envStore, ok := m.stores[len(m.stores)-1].(*EnvironmentStore); ok {
		if token, err := envStore.Retrieve(""); err == nil && token != nil {
			return token, nil
		}
	}

	if token, err := m.Retrieve("default"); err == nil {
		return token, nil
	}

	tokens, err := m.List()
	if err == nil && len(tokens) > 0 {
		return tokens[0], nil
	}

	return nil, errors.New("no token found")
}

// List returns all stored tokens from all stores
func (m *Manager) List() ([]*Token, error) {
	tokenMap := make(map[string]*Token)

	for _, store := range m.stores {
		tokens, err := store.List()
		if err != nil {
			continue
		}
		for _, token := range tokens {
			// Use the most recently modified version
			if existing, ok := tokenMap[token.Profile]; !ok || token.LastModified.After(existing.LastModified) {
				tokenMap[token.Profile] = token
			}
		}
	}

	var result []*Token
	for _, token := range tokenMap {
		result = append(result, token)
	}

	return result, nil
}

// Delete removes a profile's token from all stores
func (m *Manager) Delete(profile string) error {
	var deleted bool
	var lastErr error

	for _, store := range m.stores {
		if err := store.Delete(profile); err == nil {
			deleted = true
		} else {
			lastErr = err
		}
	}

	if !deleted && lastErr != nil {
		return fmt.Errorf("failed to delete token: %w", lastErr)
	}
	if !deleted {
		return fmt.Errorf("token not found for profile: %s", profile)
	}

	return nil
}

// getConfigDir returns the configuration directory path
func getConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "hubexport")
	case "windows":
		configDir = filepath.Join(os.Getenv("APPDATA"), "hubexport")
	default: // Linux and others
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			configDir = filepath.Join(xdgConfig, "hubexport")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config", "hubexport")
		}
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// MaskToken masks all but the first 8 and last 4 characters of a token for
// display in status output and logs.
func MaskToken(s string) string {
	if len(s) <= 12 {
		return "********"
	}
	return s[:8] + "..." + s[len(s)-4:]
}

// Errors
var (
	ErrTokenNotFound    = errors.New("token not found")
	ErrInvalidToken     = errors.New("invalid token")
	ErrStoreUnavailable = errors.New("token store unavailable")
)
