package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVaultSealOpenRoundTrip(t *testing.T) {
	dir := t.TempDir()
	vault := NewCredentialVault(filepath.Join(dir, "device.key"))
	sealedPath := filepath.Join(dir, "api_token.sealed")

	require.NoError(t, vault.Seal(sealedPath, []byte("tok_live_abc123")))

	got, err := vault.Open(sealedPath)
	require.NoError(t, err)
	assert.Equal(t, "tok_live_abc123", string(got))
}

func TestVaultSealedFileIsNotPlaintext(t *testing.T) {
	dir := t.TempDir()
	vault := NewCredentialVault(filepath.Join(dir, "device.key"))
	sealedPath := filepath.Join(dir, "api_token.sealed")

	require.NoError(t, vault.Seal(sealedPath, []byte("tok_live_abc123")))

	raw, err := os.ReadFile(sealedPath)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "tok_live_abc123")
}

func TestVaultKeyFilePermissions(t *testing.T) {
	dir := t.TempDir()
	keyPath := filepath.Join(dir, "device.key")
	vault := NewCredentialVault(keyPath)

	require.NoError(t, vault.Seal(filepath.Join(dir, "x.sealed"), []byte("secret")))

	info, err := os.Stat(keyPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestVaultWrongKeyFailsClosed(t *testing.T) {
	dir := t.TempDir()
	sealedPath := filepath.Join(dir, "api_token.sealed")

	vault := NewCredentialVault(filepath.Join(dir, "device.key"))
	require.NoError(t, vault.Seal(sealedPath, []byte("secret")))

	other := NewCredentialVault(filepath.Join(dir, "other.key"))
	_, err := other.Open(sealedPath)
	assert.Error(t, err)
}

func TestVaultTruncatedCiphertext(t *testing.T) {
	dir := t.TempDir()
	vault := NewCredentialVault(filepath.Join(dir, "device.key"))
	sealedPath := filepath.Join(dir, "short.sealed")
	require.NoError(t, os.WriteFile(sealedPath, []byte("tiny"), 0o600))

	_, err := vault.Open(sealedPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "truncated")
}

func TestVaultBadKeyFileSize(t *testing.T) {
	dir := t.TempDir()
	keyPath := filepath.Join(dir, "device.key")
	require.NoError(t, os.WriteFile(keyPath, []byte("too short"), 0o600))

	vault := NewCredentialVault(keyPath)
	err := vault.Seal(filepath.Join(dir, "x.sealed"), []byte("secret"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wrong size")
}

func TestVaultKeyReuseAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	keyPath := filepath.Join(dir, "device.key")
	sealedPath := filepath.Join(dir, "api_token.sealed")

	require.NoError(t, NewCredentialVault(keyPath).Seal(sealedPath, []byte("secret")))

	got, err := NewCredentialVault(keyPath).Open(sealedPath)
	require.NoError(t, err)
	assert.Equal(t, "secret", string(got))
}
