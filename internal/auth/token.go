package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
)

// Token format: kb_{secret}
// Example: kb_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b4f8d2e1b9c7a5f3d
const (
	TokenPrefix    = "kb_"
	TokenSecretLen = 48 // hex encoded 24 bytes
)

var (
	// ErrInvalidTokenFormat indicates the token does not look like one we issued.
	ErrInvalidTokenFormat = errors.New("invalid session token format")

	tokenFormatRegex = regexp.MustCompile(`^kb_[a-f0-9]{48}$`)
)

// GeneratedToken contains a freshly issued session token.
type GeneratedToken struct {
	Plaintext string // Returned to the client once
	Hash      string // SHA-256 hex, stored and used for lookups
}

// GenerateToken creates a new opaque session token from crypto/rand.
func GenerateToken() (*GeneratedToken, error) {
	secret := make([]byte, TokenSecretLen/2)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	plaintext := TokenPrefix + hex.EncodeToString(secret)

	return &GeneratedToken{
		Plaintext: plaintext,
		Hash:      HashToken(plaintext),
	}, nil
}

// HashToken returns the SHA-256 hex digest used to store and look up a token.
// Tokens carry 192 bits of entropy, so an unsalted fast hash is sufficient.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ValidateTokenFormat checks if the token matches the issued format.
func ValidateTokenFormat(token string) bool {
	return tokenFormatRegex.MatchString(token)
}

// ParseToken validates the format and returns the lookup hash.
func ParseToken(token string) (string, error) {
	if !ValidateTokenFormat(token) {
		return "", ErrInvalidTokenFormat
	}
	return HashToken(token), nil
}
