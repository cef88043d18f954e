// internal/auth/service.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/jason-s-yu/lobbyd/internal/apperr"
	"github.com/jason-s-yu/lobbyd/internal/models"
)

// CredentialStore persists credentials keyed by username and session tokens keyed
// by token with a username index.
//
// FindCredential returns apperr.ErrUnknownPlayer and FindSession returns
// apperr.ErrSessionNotFound when nothing matches. InsertCredential returns
// apperr.ErrUsernameTaken on a duplicate username. ReplaceSession removes every
// existing session of the token's username before storing it.
type CredentialStore interface {
	InsertCredential(ctx context.Context, cred *models.Credential) error
	FindCredential(ctx context.Context, username string) (*models.Credential, error)
	DeleteCredential(ctx context.Context, username string) error
	ReplaceSession(ctx context.Context, session models.SessionToken) error
	FindSession(ctx context.Context, token string) (*models.SessionToken, error)
	DeleteSessions(ctx context.Context, username string) error
}

// Column widths of the credentials table.
const (
	MaxUsernameLen = 32
	MaxEmailLen    = 128
)

// Clock is swapped out in tests to move session expiry around.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Config controls hashing cost and session lifetime.
type Config struct {
	Params        Params
	SessionExpiry time.Duration
}

// DefaultConfig uses DefaultParams and a 12 hour session expiry.
func DefaultConfig() Config {
	return Config{
		Params:        DefaultParams(),
		SessionExpiry: 12 * time.Hour,
	}
}

// Service registers and verifies credentials and issues and resolves session tokens.
// It is safe for concurrent use if the store is.
type Service struct {
	store  CredentialStore
	signer *Signer
	clock  Clock
	cfg    Config
}

// NewService wires a Service. A nil clock means SystemClock.
func NewService(store CredentialStore, signer *Signer, clock Clock, cfg Config) *Service {
	if clock == nil {
		clock = SystemClock{}
	}
	def := DefaultConfig()
	if cfg.Params.SaltSize == 0 {
		cfg.Params.SaltSize = def.Params.SaltSize
	}
	if cfg.Params.Iterations == 0 {
		cfg.Params.Iterations = def.Params.Iterations
	}
	if cfg.Params.KeyLength == 0 {
		cfg.Params.KeyLength = def.Params.KeyLength
	}
	if cfg.SessionExpiry == 0 {
		cfg.SessionExpiry = def.SessionExpiry
	}
	return &Service{store: store, signer: signer, clock: clock, cfg: cfg}
}

// HasUsername reports whether a credential record exists for username.
func (s *Service) HasUsername(ctx context.Context, username string) (bool, error) {
	_, err := s.store.FindCredential(ctx, username)
	if errors.Is(err, apperr.ErrUnknownPlayer) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Register hashes password and stores a pending credential for username.
func (s *Service) Register(ctx context.Context, username, password, email string) error {
	if username == "" || utf8.RuneCountInString(username) > MaxUsernameLen {
		return apperr.Wrap(apperr.ErrInvalidUsername, username)
	}
	if utf8.RuneCountInString(email) > MaxEmailLen {
		return apperr.ErrInvalidEmail
	}

	taken, err := s.HasUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("lookup credential: %w", err)
	}
	if taken {
		return apperr.Wrap(apperr.ErrUsernameTaken, username)
	}

	salt, hash, err := CreateHash(password, s.cfg.Params)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	cred := &models.Credential{
		Username:     username,
		Salt:         salt,
		PasswordHash: hash,
		Iterations:   s.cfg.Params.Iterations,
		Email:        email,
		Status:       models.CredentialStatusPending,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.store.InsertCredential(ctx, cred); err != nil {
		return fmt.Errorf("insert credential: %w", err)
	}
	return nil
}

// Verify reports whether password matches the stored credential for username.
// An unknown username is not an error, it simply does not verify.
func (s *Service) Verify(ctx context.Context, username, password string) (bool, error) {
	cred, err := s.store.FindCredential(ctx, username)
	if errors.Is(err, apperr.ErrUnknownPlayer) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup credential: %w", err)
	}
	return ComparePasswordAndHash(password, cred.Salt, cred.PasswordHash, cred.Iterations), nil
}

// IssueSession invalidates every prior session of username and returns a new token.
func (s *Service) IssueSession(ctx context.Context, username string) (string, error) {
	now := s.clock.Now()
	token, err := s.signer.Sign(username, now)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	session := models.SessionToken{
		Username:  username,
		Token:     token,
		ExpiresAt: now.Add(s.cfg.SessionExpiry),
	}
	if err := s.store.ReplaceSession(ctx, session); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

// ResolveSession returns the username bound to token.
// It fails with apperr.ErrSessionNotFound for unknown or forged tokens and
// apperr.ErrSessionExpired for tokens past their expiry.
func (s *Service) ResolveSession(ctx context.Context, token string) (string, error) {
	subject, err := s.signer.Parse(token)
	if err != nil {
		return "", apperr.ErrSessionNotFound
	}

	session, err := s.store.FindSession(ctx, token)
	if err != nil {
		if errors.Is(err, apperr.ErrSessionNotFound) {
			return "", apperr.ErrSessionNotFound
		}
		return "", fmt.Errorf("lookup session: %w", err)
	}
	if session.Username != subject {
		return "", apperr.ErrSessionNotFound
	}
	if session.Expired(s.clock.Now()) {
		return "", apperr.ErrSessionExpired
	}
	return session.Username, nil
}

// RevokeSessions deletes every session of username.
func (s *Service) RevokeSessions(ctx context.Context, username string) error {
	return s.store.DeleteSessions(ctx, username)
}

// DeleteRegistration removes the credential and sessions of username.
func (s *Service) DeleteRegistration(ctx context.Context, username string) error {
	if err := s.store.DeleteSessions(ctx, username); err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	if err := s.store.DeleteCredential(ctx, username); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}
