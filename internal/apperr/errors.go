// internal/apperr/errors.go
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a domain failure. The dispatcher maps every Kind to a rejection
// message; none of them are fatal to a connection.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindAuth
	KindCredential
	KindCapacity
	KindPermission
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindAuth:
		return "auth"
	case KindCredential:
		return "credential"
	case KindCapacity:
		return "capacity"
	case KindPermission:
		return "permission"
	default:
		return "internal"
	}
}

// Error is a typed domain failure. Sentinels below are compared with errors.Is;
// call sites wrap them with fmt.Errorf("...: %w", err) to add detail.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

var (
	// Validation
	ErrInvalidCapacity = newError(KindValidation, "invalid max players")
	ErrInvalidName     = newError(KindValidation, "invalid name")
	ErrMissingField    = newError(KindValidation, "missing or malformed field")
	ErrInvalidUsername = newError(KindValidation, "invalid username")
	ErrInvalidEmail    = newError(KindValidation, "invalid email")

	// Conflict
	ErrNameInUse      = newError(KindConflict, "name already in use")
	ErrUsernameTaken  = newError(KindConflict, "username already in use")
	ErrAlreadyInGame  = newError(KindConflict, "already in game")
	ErrRepeatedPlayer = newError(KindConflict, "player already in game")
	ErrAlreadyInvited = newError(KindConflict, "player already invited")
	ErrAlreadyBound   = newError(KindConflict, "already logged in")

	// NotFound
	ErrUnknownPlayer   = newError(KindNotFound, "unknown player")
	ErrUnknownGame     = newError(KindNotFound, "unknown game")
	ErrUnknownMember   = newError(KindNotFound, "player not in game")
	ErrNotInvited      = newError(KindNotFound, "player not invited")
	ErrUnknownInvitee  = newError(KindNotFound, "unknown invitee")
	ErrNotInGame       = newError(KindNotFound, "not in game")
	ErrSessionNotFound = newError(KindNotFound, "session not found")
	ErrSessionExpired  = newError(KindNotFound, "session expired")

	// Auth
	ErrNotLoggedIn = newError(KindAuth, "client not logged in")

	// Credential
	ErrPasswordMismatch = newError(KindCredential, "passwords do not match")
	ErrBadCredentials   = newError(KindCredential, "invalid username or password")

	// Capacity
	ErrGameFull = newError(KindCapacity, "game is full")

	// Permission
	ErrNotOwner          = newError(KindPermission, "not the game owner")
	ErrCannotRemoveOwner = newError(KindPermission, "can not remove owner from game")
)

// KindOf reports the Kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Reason returns a client-safe message for err. Internal failures never leak
// their cause.
func Reason(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}

// Wrap attaches a subject (a player or game name) to a sentinel while keeping
// errors.Is working against it.
func Wrap(sentinel *Error, subject string) error {
	return fmt.Errorf("%w: %s", sentinel, subject)
}
