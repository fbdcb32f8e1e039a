package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// NewTokenID generates a cryptographically random 256-bit identifier as a
// 64-character hex string, used as the jti claim of refresh tokens.
func NewTokenID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token id: %w", err)
	}
	return hex.EncodeToString(b), nil
}
