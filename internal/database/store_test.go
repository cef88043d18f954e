package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jason-s-yu/lobbyd/internal/apperr"
	"github.com/jason-s-yu/lobbyd/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// credentialStore is the method set shared by MemoryStore and PostgresStore.
type credentialStore interface {
	InsertCredential(ctx context.Context, cred *models.Credential) error
	FindCredential(ctx context.Context, username string) (*models.Credential, error)
	DeleteCredential(ctx context.Context, username string) error
	ReplaceSession(ctx context.Context, session models.SessionToken) error
	FindSession(ctx context.Context, token string) (*models.SessionToken, error)
	DeleteSessions(ctx context.Context, username string) error
}

func newCredential(name string) *models.Credential {
	return &models.Credential{
		Username:     name,
		Salt:         []byte("0123456789abcdef"),
		PasswordHash: []byte("hash-" + name),
		Iterations:   10,
		Email:        name + "@x",
		Status:       models.CredentialStatusPending,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
}

func runStoreContract(t *testing.T, store credentialStore) {
	ctx := context.Background()

	t.Run("credential round trip", func(t *testing.T) {
		cred := newCredential("adam")
		require.NoError(t, store.InsertCredential(ctx, cred))

		got, err := store.FindCredential(ctx, "adam")
		require.NoError(t, err)
		assert.Equal(t, cred.Salt, got.Salt)
		assert.Equal(t, cred.PasswordHash, got.PasswordHash)
		assert.Equal(t, cred.Iterations, got.Iterations)
		assert.Equal(t, "adam@x", got.Email)
		assert.Equal(t, models.CredentialStatusPending, got.Status)
	})

	t.Run("duplicate username", func(t *testing.T) {
		err := store.InsertCredential(ctx, newCredential("adam"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperr.ErrUsernameTaken))

		got, err := store.FindCredential(ctx, "adam")
		require.NoError(t, err)
		assert.Equal(t, []byte("hash-adam"), got.PasswordHash)
	})

	t.Run("unknown username", func(t *testing.T) {
		_, err := store.FindCredential(ctx, "nobody")
		assert.True(t, errors.Is(err, apperr.ErrUnknownPlayer))
	})

	t.Run("replace session drops prior tokens", func(t *testing.T) {
		exp := time.Now().Add(time.Hour).UTC().Truncate(time.Millisecond)
		require.NoError(t, store.ReplaceSession(ctx, models.SessionToken{Username: "adam", Token: "t1", ExpiresAt: exp}))
		require.NoError(t, store.ReplaceSession(ctx, models.SessionToken{Username: "adam", Token: "t2", ExpiresAt: exp}))

		_, err := store.FindSession(ctx, "t1")
		assert.True(t, errors.Is(err, apperr.ErrSessionNotFound))

		st, err := store.FindSession(ctx, "t2")
		require.NoError(t, err)
		assert.Equal(t, "adam", st.Username)
		assert.True(t, exp.Equal(st.ExpiresAt))
	})

	t.Run("delete sessions and credential", func(t *testing.T) {
		require.NoError(t, store.DeleteSessions(ctx, "adam"))
		_, err := store.FindSession(ctx, "t2")
		assert.True(t, errors.Is(err, apperr.ErrSessionNotFound))

		require.NoError(t, store.DeleteCredential(ctx, "adam"))
		_, err = store.FindCredential(ctx, "adam")
		assert.True(t, errors.Is(err, apperr.ErrUnknownPlayer))

		// deleting twice is not an error
		assert.NoError(t, store.DeleteCredential(ctx, "adam"))
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreContract(t, NewMemoryStore())
}

func TestMemoryStoreCopiesRecords(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	cred := newCredential("eve")
	require.NoError(t, s.InsertCredential(ctx, cred))

	cred.PasswordHash[0] = 'X'
	got, err := s.FindCredential(ctx, "eve")
	require.NoError(t, err)
	assert.Equal(t, byte('h'), got.PasswordHash[0])

	got.Salt[0] = 'X'
	again, err := s.FindCredential(ctx, "eve")
	require.NoError(t, err)
	assert.Equal(t, byte('0'), again.Salt[0])
}

func TestMemoryStoreSessionsAreIsolatedPerUser(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	exp := time.Now().Add(time.Hour)
	require.NoError(t, s.ReplaceSession(ctx, models.SessionToken{Username: "adam", Token: "a", ExpiresAt: exp}))
	require.NoError(t, s.ReplaceSession(ctx, models.SessionToken{Username: "eve", Token: "e", ExpiresAt: exp}))

	require.NoError(t, s.DeleteSessions(ctx, "adam"))

	_, err := s.FindSession(ctx, "a")
	assert.True(t, errors.Is(err, apperr.ErrSessionNotFound))
	st, err := s.FindSession(ctx, "e")
	require.NoError(t, err)
	assert.Equal(t, "eve", st.Username)
}
