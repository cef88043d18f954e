package models

import "time"

// CredentialStatusPending is the status every freshly registered account starts in.
const CredentialStatusPending = "pending"

// Credential is the persisted login record for one username.
type Credential struct {
	Username     string    `json:"username"`
	Salt         []byte    `json:"-"`
	PasswordHash []byte    `json:"-"`
	Iterations   int       `json:"-"`
	Email        string    `json:"email"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// SessionToken binds an opaque bearer token to a username until ExpiresAt.
type SessionToken struct {
	Username  string    `json:"username"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the token is past its expiry at now.
func (s SessionToken) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
