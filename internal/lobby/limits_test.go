package lobby

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateName(t *testing.T) {
	l := DefaultLimits()

	valid := []string{
		"apple",
		"apple sauce",
		"apple-sauce",
		"apple_sauce",
		"apple.sauce",
		"adam's game",
		"123",
		strings.Repeat("1", 23),
		strings.Repeat("a", 24),
		"  padded  ",
	}
	for _, name := range valid {
		assert.True(t, l.ValidateName(name), "expected %q to be valid", name)
	}

	invalid := []string{
		strings.Repeat("a", 25),
		"***",
		`"abc"`,
		"1",
		"12",
		"     ",
		"",
		"semi;colon",
		"tab\tname",
	}
	for _, name := range invalid {
		assert.False(t, l.ValidateName(name), "expected %q to be invalid", name)
	}
}

func TestValidCapacity(t *testing.T) {
	l := DefaultLimits()
	for _, n := range []int{2, 3, 4, 5} {
		assert.True(t, l.ValidCapacity(n))
	}
	for _, n := range []int{-1, 0, 1, 6, 100} {
		assert.False(t, l.ValidCapacity(n))
	}
}
