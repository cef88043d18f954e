// internal/auth/password.go
package auth

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/pbkdf2"
)

// ErrInvalidParams indicates hashing parameters that would produce a weak or empty key.
var ErrInvalidParams = errors.New("invalid password hashing parameters")

// Params holds PBKDF2-HMAC-SHA512 hashing parameters.
type Params struct {
	SaltSize   int
	Iterations int
	KeyLength  int
}

// DefaultParams is 32000 rounds of HMAC-SHA512 over a 64 byte salt, producing a 512-bit key.
func DefaultParams() Params {
	return Params{
		SaltSize:   64,
		Iterations: 32000,
		KeyLength:  sha512.Size,
	}
}

// generateRandomBytes returns n random bytes or an error.
func generateRandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// CreateHash derives a key from password with a fresh random salt.
// It returns the salt and the derived key; both must be stored to verify later.
func CreateHash(password string, p Params) (salt, hash []byte, err error) {
	if p.SaltSize <= 0 || p.Iterations <= 0 || p.KeyLength <= 0 {
		return nil, nil, ErrInvalidParams
	}
	salt, err = generateRandomBytes(p.SaltSize)
	if err != nil {
		return nil, nil, err
	}
	hash = pbkdf2.Key([]byte(password), salt, p.Iterations, p.KeyLength, sha512.New)
	return salt, hash, nil
}

// ComparePasswordAndHash recomputes the key with the stored salt and iteration
// count and compares it with hash in constant time.
func ComparePasswordAndHash(password string, salt, hash []byte, iterations int) bool {
	if len(hash) == 0 || iterations <= 0 {
		return false
	}
	candidate := pbkdf2.Key([]byte(password), salt, iterations, len(hash), sha512.New)
	return subtle.ConstantTimeCompare(hash, candidate) == 1
}
