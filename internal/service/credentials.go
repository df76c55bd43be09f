package service

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	vaultKeySize   = 32
	vaultNonceSize = 24
)

// CredentialVault seals API and payment tokens at rest under a per-device
// key so they are never stored in plaintext. The key lives in a 0600 file
// next to the agent's data and is generated on first use.
type CredentialVault struct {
	keyPath string
}

func NewCredentialVault(keyPath string) *CredentialVault {
	return &CredentialVault{keyPath: keyPath}
}

func (v *CredentialVault) loadOrCreateKey() (*[vaultKeySize]byte, error) {
	var key [vaultKeySize]byte

	data, err := os.ReadFile(v.keyPath)
	if err == nil {
		if len(data) != vaultKeySize {
			return nil, fmt.Errorf("device key file %s has wrong size %d", v.keyPath, len(data))
		}
		copy(key[:], data)
		return &key, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read device key: %w", err)
	}

	if _, err := rand.Read(key[:]); err != nil {
		return nil, fmt.Errorf("failed to generate device key: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(v.keyPath), 0o700); err != nil {
		return nil, err
	}
	if err := os.WriteFile(v.keyPath, key[:], 0o600); err != nil {
		return nil, fmt.Errorf("failed to persist device key: %w", err)
	}
	return &key, nil
}

// Seal encrypts secret and writes it to path.
func (v *CredentialVault) Seal(path string, secret []byte) error {
	key, err := v.loadOrCreateKey()
	if err != nil {
		return err
	}

	var nonce [vaultNonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := secretbox.Seal(nonce[:], secret, &nonce, key)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	if err := os.WriteFile(path, sealed, 0o600); err != nil {
		return fmt.Errorf("failed to write sealed credential: %w", err)
	}
	return nil
}

// Open decrypts a credential previously written by Seal.
func (v *CredentialVault) Open(path string) ([]byte, error) {
	key, err := v.loadOrCreateKey()
	if err != nil {
		return nil, err
	}

	sealed, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sealed credential: %w", err)
	}
	if len(sealed) < vaultNonceSize {
		return nil, fmt.Errorf("sealed credential %s is truncated", path)
	}

	var nonce [vaultNonceSize]byte
	copy(nonce[:], sealed[:vaultNonceSize])

	secret, ok := secretbox.Open(nil, sealed[vaultNonceSize:], &nonce, key)
	if !ok {
		return nil, fmt.Errorf("failed to open sealed credential %s: key mismatch or corrupt data", path)
	}
	return secret, nil
}
