// Package secrets holds the keys used to seal stored client credentials and
// supports rotating them without a restart.
package secrets

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Strob0t/ClientForge/internal/config"
	"github.com/Strob0t/ClientForge/internal/domain/client"
)

// ErrNoKey is returned when the loader yields no current secret.
var ErrNoKey = errors.New("no vault secret configured")

// Loader returns the current secret followed by any retired secrets that
// may still be needed to open older ciphertexts.
type Loader func() (current string, previous []string, err error)

// Keyring seals with the current key and opens with any known key.
type Keyring struct {
	mu     sync.RWMutex
	keys   [][]byte
	loader Loader
}

// NewKeyring creates a Keyring, calling the loader once to derive the initial keys.
func NewKeyring(loader Loader) (*Keyring, error) {
	keys, err := deriveAll(loader)
	if err != nil {
		return nil, fmt.Errorf("initial key load: %w", err)
	}
	return &Keyring{keys: keys, loader: loader}, nil
}

// Reload re-reads the secrets and swaps the keys atomically.
// On error the existing keys are preserved.
func (k *Keyring) Reload() error {
	keys, err := deriveAll(k.loader)
	if err != nil {
		return fmt.Errorf("reload keys: %w", err)
	}
	k.mu.Lock()
	k.keys = keys
	k.mu.Unlock()
	return nil
}

// Seal encrypts plaintext with the current key.
func (k *Keyring) Seal(plaintext []byte) ([]byte, error) {
	k.mu.RLock()
	key := k.keys[0]
	k.mu.RUnlock()
	return client.Encrypt(plaintext, key)
}

// Open decrypts sealed data, trying the current key first.
func (k *Keyring) Open(sealed []byte) ([]byte, error) {
	k.mu.RLock()
	keys := k.keys
	k.mu.RUnlock()

	var lastErr error
	for _, key := range keys {
		plain, err := client.Decrypt(sealed, key)
		if err == nil {
			return plain, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// KeyCount returns the number of keys able to open ciphertexts.
func (k *Keyring) KeyCount() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.keys)
}

func deriveAll(loader Loader) ([][]byte, error) {
	current, previous, err := loader()
	if err != nil {
		return nil, err
	}
	if current == "" {
		return nil, ErrNoKey
	}
	keys := make([][]byte, 0, 1+len(previous))
	for _, s := range append([]string{current}, previous...) {
		if s == "" {
			continue
		}
		key, err := client.DeriveKey(s)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// StaticLoader serves the secrets from an already loaded configuration.
func StaticLoader(cfg config.Vault) Loader {
	return func() (string, []string, error) {
		return cfg.Secret, cfg.PreviousSecrets, nil
	}
}

// FileLoader re-reads the configuration hierarchy rooted at path on every call.
func FileLoader(path string) Loader {
	return func() (string, []string, error) {
		cfg, err := config.LoadFrom(path)
		if err != nil {
			return "", nil, err
		}
		return cfg.Vault.Secret, cfg.Vault.PreviousSecrets, nil
	}
}
