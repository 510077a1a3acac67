/*
Package randx provides functions for generating cryptographically secure random
tokens and unique identifiers.

It is used for entity identifiers (users, posts, comments) and for the opaque
state tokens exchanged during the OAuth flow.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const (
	// Base62Chars defines the character set used for Base62 encoding (0-9, A-Z, a-z).
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Base62Len is the total number of characters in the Base62 character set (62).
	Base62Len = int64(len(Base62Chars))

	// StateTokenLength is the length of OAuth state tokens.
	StateTokenLength = 24
)

// EntityID generates a standard UUID v4 string used as the primary key for
// users, posts, and comments.
func EntityID() string {
	return uuid.New().String()
}

// StateToken generates a Base62 token for the OAuth state parameter using
// crypto/rand.
func StateToken() (string, error) {
	result := make([]byte, StateTokenLength)

	for i := range StateTokenLength {
		num, err := rand.Int(rand.Reader, big.NewInt(Base62Len))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number for state token: %v", err)
		}

		result[i] = Base62Chars[num.Int64()]
	}

	return string(result), nil
}

// IsValidStateToken checks that the given string has the shape of a token
// produced by StateToken.
func IsValidStateToken(token string) bool {
	if len(token) != StateTokenLength {
		return false
	}

	for _, char := range token {
		if !strings.ContainsRune(Base62Chars, char) {
			return false
		}
	}

	return true
}
