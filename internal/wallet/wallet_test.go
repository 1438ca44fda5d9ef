package wallet

import (
	"bytes"
	"crypto/ed25519"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeHotkey(t *testing.T, dir, name, hotkey, content string) string {
	t.Helper()
	keyDir := filepath.Join(dir, name, "hotkeys")
	require.NoError(t, os.MkdirAll(keyDir, 0o755))
	path := filepath.Join(keyDir, hotkey)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Success(t *testing.T) {
	dir := t.TempDir()
	seed := bytes.Repeat([]byte{0x42}, ed25519.SeedSize)
	writeHotkey(t, dir, "default", "miner", "0x"+hexOf(seed)+"\n")

	w, err := Load(dir, "default", "miner")
	require.NoError(t, err)
	assert.Equal(t, "default", w.Name)
	assert.Equal(t, "miner", w.Hotkey)
	assert.Len(t, w.Address(), 64)
}

func TestLoad_AddressIsDeterministic(t *testing.T) {
	seed := bytes.Repeat([]byte{0x07}, ed25519.SeedSize)

	a, err := FromSeed(seed)
	require.NoError(t, err)
	b, err := FromSeed(seed)
	require.NoError(t, err)
	assert.Equal(t, a.Address(), b.Address())

	other, err := FromSeed(bytes.Repeat([]byte{0x08}, ed25519.SeedSize))
	require.NoError(t, err)
	assert.NotEqual(t, a.Address(), other.Address())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(t.TempDir(), "default", "absent")
	require.Error(t, err)

	var keyErr *KeyError
	assert.ErrorAs(t, err, &keyErr)
}

func TestLoad_BadSeed(t *testing.T) {
	dir := t.TempDir()
	writeHotkey(t, dir, "default", "short", "abcd")

	_, err := Load(dir, "default", "short")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "32 bytes")

	writeHotkey(t, dir, "default", "nothex", "zzzz")
	_, err = Load(dir, "default", "nothex")
	require.Error(t, err)
}

func TestSign_VerifiesWithPublicKey(t *testing.T) {
	w, err := FromSeed(bytes.Repeat([]byte{0x01}, ed25519.SeedSize))
	require.NoError(t, err)

	msg := []byte("announce payload")
	sig := w.Sign(msg)
	assert.True(t, ed25519.Verify(w.PublicKey(), msg, sig))
}

func TestMintToken_ValidatesWithEdDSA(t *testing.T) {
	w, err := FromSeed(bytes.Repeat([]byte{0x09}, ed25519.SeedSize))
	require.NoError(t, err)

	now := time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC)
	signed, err := w.MintToken(now)
	require.NoError(t, err)

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(signed, claims, func(*jwt.Token) (any, error) {
		return w.PublicKey(), nil
	}, jwt.WithValidMethods([]string{"EdDSA"}), jwt.WithTimeFunc(func() time.Time { return now.Add(time.Minute) }))
	require.NoError(t, err)
	assert.True(t, token.Valid)
	assert.Equal(t, w.Address(), claims.Address)
}

func hexOf(b []byte) string {
	const digits = "0123456789abcdef"
	out := make([]byte, 0, len(b)*2)
	for _, c := range b {
		out = append(out, digits[c>>4], digits[c&0x0f])
	}
	return string(out)
}
