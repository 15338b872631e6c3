package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash generates a SHA-256 hash of the input string
func Hash(input string) string {
	hasher := sha256.New()
	hasher.Write([]byte(input))
	return hex.EncodeToString(hasher.Sum(nil))
}

// Fingerprint returns a short, log-safe identifier for a secret.
func Fingerprint(secret string) string {
	if secret == "" {
		return ""
	}
	return Hash(secret)[:8]
}
