package auth

import (
	"crypto/ed25519"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndParse(t *testing.T) {
	s, err := NewSigner()
	require.NoError(t, err)

	tok, err := s.Sign("adam", time.Now())
	require.NoError(t, err)
	assert.NotEmpty(t, tok)

	sub, err := s.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "adam", sub)
}

func TestTokensAreUnique(t *testing.T) {
	s, err := NewSigner()
	require.NoError(t, err)
	now := time.Now()

	t1, err := s.Sign("adam", now)
	require.NoError(t, err)
	t2, err := s.Sign("adam", now)
	require.NoError(t, err)
	assert.NotEqual(t, t1, t2)
}

func TestParseRejectsForeignKey(t *testing.T) {
	a, err := NewSigner()
	require.NoError(t, err)
	b, err := NewSigner()
	require.NoError(t, err)

	tok, err := a.Sign("adam", time.Now())
	require.NoError(t, err)

	_, err = b.Parse(tok)
	assert.Error(t, err)

	_, err = a.Parse("not-a-token")
	assert.Error(t, err)
}

func TestNewSignerFromFile(t *testing.T) {
	dir := t.TempDir()
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i)
	}
	seedPath := filepath.Join(dir, "seed")
	require.NoError(t, os.WriteFile(seedPath, seed, 0o600))

	keyPath := filepath.Join(dir, "key")
	require.NoError(t, os.WriteFile(keyPath, ed25519.NewKeyFromSeed(seed), 0o600))

	fromSeed, err := NewSignerFromFile(seedPath)
	require.NoError(t, err)
	fromKey, err := NewSignerFromFile(keyPath)
	require.NoError(t, err)

	tok, err := fromSeed.Sign("eve", time.Now())
	require.NoError(t, err)
	sub, err := fromKey.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "eve", sub)

	badPath := filepath.Join(dir, "bad")
	require.NoError(t, os.WriteFile(badPath, []byte("short"), 0o600))
	_, err = NewSignerFromFile(badPath)
	assert.Error(t, err)
}
