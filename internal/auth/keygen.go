package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
)

// SessionTokenLen is the hex length of a session token (32 random bytes).
const SessionTokenLen = 64

var tokenFormatRegex = regexp.MustCompile(`^[a-f0-9]{64}$`)

// GenerateSessionToken returns a new random session token.
func GenerateSessionToken() (string, error) {
	b := make([]byte, SessionTokenLen/2)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// ValidateTokenFormat checks if a cookie value looks like a session token.
func ValidateTokenFormat(token string) bool {
	return tokenFormatRegex.MatchString(token)
}
