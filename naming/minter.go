package naming

import (
	"strings"

	"github.com/google/uuid"
)

// TokenLength is the length of a token produced by UUIDMinter.
const TokenLength = 32

// Minter produces opaque identifiers.
type Minter interface {
	// Mint returns a new token. Tokens are expected to be unique within a run;
	// collisions are not detected.
	Mint() string
}

// MinterFunc adapts an ordinary function to the Minter interface.
type MinterFunc func() string

// Mint calls f().
func (f MinterFunc) Mint() string {
	return f()
}

// UUIDMinter mints random version 4 UUIDs rendered without dashes.
type UUIDMinter struct{}

// Mint returns 32 lowercase hex characters.
func (UUIDMinter) Mint() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// IsToken reports whether s has the shape of a UUIDMinter token.
func IsToken(s string) bool {
	if len(s) != TokenLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
