package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 64, cfg.SaltSize)
	assert.Equal(t, 32000, cfg.Iterations)
	assert.Equal(t, 12*time.Hour, cfg.SessionExpiry)
	assert.Equal(t, 2, cfg.MinPlayers)
	assert.Equal(t, 5, cfg.MaxPlayers)
	assert.Equal(t, 3, cfg.NameMinLen)
	assert.Equal(t, 24, cfg.NameMaxLen)
	assert.Equal(t, "lobby_events", cfg.EventQueue)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("SESSION_EXPIRY", "30m")
	t.Setenv("PASSWORD_ITERATIONS", "1000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, cfg.SessionExpiry)
	assert.Equal(t, 1000, cfg.Iterations)
}

func TestPostgresRequiresURL(t *testing.T) {
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateBounds(t *testing.T) {
	cfg := Config{
		StoreBackend:  "memory",
		MinPlayers:    4,
		MaxPlayers:    3,
		NameMinLen:    3,
		NameMaxLen:    24,
		SaltSize:      64,
		Iterations:    1,
		SessionExpiry: time.Hour,
	}
	assert.Error(t, cfg.Validate())

	cfg.MaxPlayers = 5
	assert.NoError(t, cfg.Validate())
}
