// internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every knob the lobby server and historian read at startup.
// Values come from the environment; .env files are loaded by godotenv/autoload in main.
type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// StoreBackend selects the credential store: "postgres" or "memory".
	StoreBackend string `env:"STORE_BACKEND" envDefault:"postgres"`
	DatabaseURL  string `env:"DATABASE_URL"`

	// RedisAddr enables the lobby event journal when set.
	RedisAddr  string `env:"REDIS_ADDR"`
	RedisDB    int    `env:"REDIS_DB" envDefault:"0"`
	EventQueue string `env:"LOBBY_EVENT_QUEUE" envDefault:"lobby_events"`

	SaltSize      int           `env:"PASSWORD_SALT_SIZE" envDefault:"64"`
	Iterations    int           `env:"PASSWORD_ITERATIONS" envDefault:"32000"`
	SessionExpiry time.Duration `env:"SESSION_EXPIRY" envDefault:"12h"`
	// TokenKeyPath points at a raw ed25519 private key. A fresh key is generated when empty.
	TokenKeyPath string `env:"TOKEN_PRIVATE_KEY_PATH"`

	MinPlayers  int    `env:"GAME_MIN_PLAYERS" envDefault:"2"`
	MaxPlayers  int    `env:"GAME_MAX_PLAYERS" envDefault:"5"`
	NameMinLen  int    `env:"GAME_NAME_MIN" envDefault:"3"`
	NameMaxLen  int    `env:"GAME_NAME_MAX" envDefault:"24"`
	MatchServer string `env:"MATCH_SERVER_ADDR" envDefault:"127.0.0.1:5501"`

	HistorianBatchSize     int           `env:"HISTORIAN_BATCH_SIZE" envDefault:"20"`
	HistorianFlushInterval time.Duration `env:"HISTORIAN_FLUSH_INTERVAL" envDefault:"500ms"`
}

// Load parses the environment into a Config and checks the bounds that the
// lobby relies on.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the lobby cannot run with.
func (c Config) Validate() error {
	if c.MinPlayers < 2 || c.MaxPlayers < c.MinPlayers {
		return fmt.Errorf("invalid game capacity bounds [%d,%d]", c.MinPlayers, c.MaxPlayers)
	}
	if c.NameMinLen < 1 || c.NameMaxLen < c.NameMinLen {
		return fmt.Errorf("invalid game name bounds [%d,%d]", c.NameMinLen, c.NameMaxLen)
	}
	if c.SaltSize < 16 {
		return fmt.Errorf("salt size %d is too small", c.SaltSize)
	}
	if c.Iterations < 1 {
		return fmt.Errorf("iteration count must be positive, got %d", c.Iterations)
	}
	if c.SessionExpiry <= 0 {
		return fmt.Errorf("session expiry must be positive, got %s", c.SessionExpiry)
	}
	switch c.StoreBackend {
	case "memory":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	return nil
}
