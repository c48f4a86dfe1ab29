// Package crypto provides share token generation and hashing.
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Base62 alphabet for token generation
const base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// TokenPrefixLen is the number of leading token characters kept for display.
const TokenPrefixLen = 8

// GenerateShareToken creates a secure random token for bundle share links.
// Returns the token (to be used in URLs) and its hash (to be stored in DB).
// Format: shr_{base62_encoded_24_bytes}
func GenerateShareToken() (token string, hash string, err error) {
	randomBytes := make([]byte, 24)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	token = "shr_" + bytesToBase62(randomBytes)
	hash = HashSHA256(token)

	return token, hash, nil
}

// TokenPrefix returns the display prefix of a token.
func TokenPrefix(token string) string {
	if len(token) <= TokenPrefixLen {
		return token
	}
	return token[:TokenPrefixLen]
}

// HashSHA256 returns the hex-encoded SHA-256 digest of data.
// Share tokens are high-entropy so a plain hash is enough to make
// the stored value useless to anyone reading the database.
func HashSHA256(data string) string {
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// bytesToBase62 converts bytes to a base62 string.
func bytesToBase62(data []byte) string {
	result := make([]byte, len(data))
	for i, b := range data {
		// This isn't perfectly uniform but is sufficient for token generation
		result[i] = base62Chars[b%62]
	}
	return string(result)
}
