package lobby

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Limits bounds game capacity and game name length.
type Limits struct {
	MinPlayers int
	MaxPlayers int
	NameMinLen int
	NameMaxLen int
}

// DefaultLimits allows 2 to 5 players and names of 3 to 24 characters.
func DefaultLimits() Limits {
	return Limits{
		MinPlayers: 2,
		MaxPlayers: 5,
		NameMinLen: 3,
		NameMaxLen: 24,
	}
}

// ValidCapacity reports whether maxPlayers is inside the configured bounds.
func (l Limits) ValidCapacity(maxPlayers int) bool {
	return maxPlayers >= l.MinPlayers && maxPlayers <= l.MaxPlayers
}

// ValidateName trims candidate and reports whether it is an acceptable game name:
// letters, digits, spaces and . _ - ' only.
func (l Limits) ValidateName(candidate string) bool {
	name := strings.TrimSpace(candidate)
	n := utf8.RuneCountInString(name)
	if n < l.NameMinLen || n > l.NameMaxLen {
		return false
	}
	for _, r := range name {
		if !allowedNameRune(r) {
			return false
		}
	}
	return true
}

func allowedNameRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	switch r {
	case ' ', '.', '_', '-', '\'':
		return true
	}
	return false
}
