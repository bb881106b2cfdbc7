package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateToken generates a random opaque token with the given prefix.
// Format: prefix_randomhex
// Example: sess_a1b2c3d4e5f6...
func GenerateToken(prefix string) (string, error) {
	b := make([]byte, 32) // 64 char hex
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%s", prefix, hex.EncodeToString(b)), nil
}

// GenerateSessionToken generates a bearer session token: sess_xxx
func GenerateSessionToken() (string, error) {
	return GenerateToken("sess")
}
