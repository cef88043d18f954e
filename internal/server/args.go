package server

import (
	"strings"

	"github.com/jason-s-yu/lobbyd/internal/protocol"
)

// argError reports a missing or mistyped command argument.
type argError struct {
	field string
}

func (e *argError) Error() string {
	return "missing or malformed field: " + e.field
}

// requireString reads a non-blank string argument.
func requireString(msg protocol.Message, field string) (string, error) {
	v, ok := msg.String(field)
	if !ok || strings.TrimSpace(v) == "" {
		return "", &argError{field: field}
	}
	return v, nil
}

// optionalString reads a string argument that may be absent.
func optionalString(msg protocol.Message, field string) (string, error) {
	v, ok := msg.OptionalString(field)
	if !ok {
		return "", &argError{field: field}
	}
	return v, nil
}

func requireInt(msg protocol.Message, field string) (int, error) {
	v, ok := msg.Int(field)
	if !ok {
		return 0, &argError{field: field}
	}
	return v, nil
}
