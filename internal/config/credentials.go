package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// Service name for the OS credential store
	credentialService = "figma-mcp"
	// Account holding the Figma personal access token
	apiKeyAccount = "api_key"
)

// ErrNoStoredKey is returned when the credential store holds no key.
var ErrNoStoredKey = errors.New("no Figma API key stored in the OS credential store")

// Credentials stores the API key in the OS credential store (Keychain,
// Secret Service, Windows Credential Manager).
type Credentials struct {
	service string
}

// NewCredentials creates a credential store handle.
func NewCredentials() *Credentials {
	return &Credentials{service: credentialService}
}

// Store saves the key, replacing any previous one.
func (c *Credentials) Store(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("API key cannot be empty")
	}
	if err := keyring.Set(c.service, apiKeyAccount, key); err != nil {
		return fmt.Errorf("failed to store API key in credential store: %w", err)
	}
	return nil
}

// Get returns the stored key or ErrNoStoredKey.
func (c *Credentials) Get() (string, error) {
	key, err := keyring.Get(c.service, apiKeyAccount)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNoStoredKey
		}
		return "", fmt.Errorf("failed to read API key from credential store: %w", err)
	}
	if strings.TrimSpace(key) == "" {
		return "", ErrNoStoredKey
	}
	return key, nil
}

// Delete removes the stored key. Deleting a missing key is not an error.
func (c *Credentials) Delete() error {
	err := keyring.Delete(c.service, apiKeyAccount)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete API key from credential store: %w", err)
	}
	return nil
}

// Has reports whether a key is stored without returning it.
func (c *Credentials) Has() bool {
	_, err := c.Get()
	return err == nil
}
