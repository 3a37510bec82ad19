package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateInvitationToken returns 32 random bytes as unpadded URL-safe
// base64, suitable for use in an acceptance link.
func GenerateInvitationToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
