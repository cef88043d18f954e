// internal/auth/token.go
package auth

import (
	"crypto/ed25519"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Signer mints and checks session token strings. A token is an EdDSA-signed JWT
// carrying the username as "sub" and a random "jti"; its lifetime lives in the
// session store, not in the token.
type Signer struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
}

// NewSigner generates a fresh ed25519 key pair. Tokens do not survive a restart
// with a generated key.
func NewSigner() (*Signer, error) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ed25519 key pair: %w", err)
	}
	return &Signer{privateKey: priv, publicKey: pub}, nil
}

// NewSignerFromFile reads a raw ed25519 private key (64 bytes) or seed (32 bytes).
func NewSignerFromFile(path string) (*Signer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key file: %w", err)
	}
	var priv ed25519.PrivateKey
	switch len(data) {
	case ed25519.PrivateKeySize:
		priv = ed25519.PrivateKey(data)
	case ed25519.SeedSize:
		priv = ed25519.NewKeyFromSeed(data)
	default:
		return nil, fmt.Errorf("private key file has %d bytes, want %d or %d", len(data), ed25519.PrivateKeySize, ed25519.SeedSize)
	}
	return &Signer{privateKey: priv, publicKey: priv.Public().(ed25519.PublicKey)}, nil
}

// Sign creates a token for username.
func (s *Signer) Sign(username string, issuedAt time.Time) (string, error) {
	jti, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate token id: %w", err)
	}
	claims := jwt.MapClaims{
		"sub": username,
		"jti": jti.String(),
		"iat": issuedAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(s.privateKey)
}

// Parse verifies the signature of tokenString and returns its "sub".
func (s *Signer) Parse(tokenString string) (string, error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.publicKey, nil
	})
	if err != nil {
		return "", fmt.Errorf("jwt parse error: %w", err)
	}
	if !t.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid jwt claims")
	}
	username, ok := claims["sub"].(string)
	if !ok || username == "" {
		return "", fmt.Errorf("missing sub in jwt")
	}
	return username, nil
}
