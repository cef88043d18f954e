// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/lobbyd/internal/auth"
	"github.com/jason-s-yu/lobbyd/internal/cache"
	"github.com/jason-s-yu/lobbyd/internal/config"
	"github.com/jason-s-yu/lobbyd/internal/database"
	"github.com/jason-s-yu/lobbyd/internal/handlers"
	"github.com/jason-s-yu/lobbyd/internal/lobby"
	"github.com/jason-s-yu/lobbyd/internal/server"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

// Both database stores satisfy auth.CredentialStore.
var (
	_ auth.CredentialStore = (*database.PostgresStore)(nil)
	_ auth.CredentialStore = (*database.MemoryStore)(nil)
)

func main() {
	logger := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	} else {
		logger.Warnf("unknown LOG_LEVEL %q, using info", cfg.LogLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store auth.CredentialStore
	switch cfg.StoreBackend {
	case "memory":
		logger.Warn("using in-memory credential store; registrations are lost on restart")
		store = database.NewMemoryStore()
	default:
		pool, err := database.ConnectDB(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("database: %v", err)
		}
		defer pool.Close()
		if err := database.CreateTables(ctx, pool); err != nil {
			logger.Fatalf("database: %v", err)
		}
		store = database.NewPostgresStore(pool)
		logger.Info("connected to postgres")
	}

	signer, err := newSigner(cfg.TokenKeyPath)
	if err != nil {
		logger.Fatalf("token signer: %v", err)
	}
	if cfg.TokenKeyPath == "" {
		logger.Warn("TOKEN_PRIVATE_KEY_PATH not set; session tokens will not survive a restart")
	}

	authSvc := auth.NewService(store, signer, nil, auth.Config{
		Params: auth.Params{
			SaltSize:   cfg.SaltSize,
			Iterations: cfg.Iterations,
			KeyLength:  auth.DefaultParams().KeyLength,
		},
		SessionExpiry: cfg.SessionExpiry,
	})

	var journal cache.Recorder = cache.NoopJournal{}
	journalDone := make(chan struct{})
	if cfg.RedisAddr == "" {
		close(journalDone)
	} else {
		rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			logger.Fatalf("redis: %v", err)
		}
		defer rdb.Close()
		j := cache.NewJournal(rdb, cfg.EventQueue, logger)
		go func() {
			defer close(journalDone)
			j.Run(ctx)
		}()
		journal = j
		logger.Infof("journaling lobby events to redis list %q", cfg.EventQueue)
	}

	lob := server.NewLobby(authSvc, logger, server.Options{
		Limits: lobby.Limits{
			MinPlayers: cfg.MinPlayers,
			MaxPlayers: cfg.MaxPlayers,
			NameMinLen: cfg.NameMinLen,
			NameMaxLen: cfg.NameMaxLen,
		},
		MatchServer: cfg.MatchServer,
		Journal:     journal,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewMux(logger, lob),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		lob.Shutdown("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warnf("http shutdown: %v", err)
		}
	}()

	logger.Infof("Running on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("server exited: %v", err)
	}
	<-journalDone
}

func newSigner(keyPath string) (*auth.Signer, error) {
	if keyPath == "" {
		return auth.NewSigner()
	}
	return auth.NewSignerFromFile(keyPath)
}
