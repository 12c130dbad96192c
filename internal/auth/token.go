package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// NewToken returns a 32-character URL-safe random token, used for email
// verification links and password resets.
func NewToken() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// NewTempPassword returns a short random password for accounts created on
// behalf of a user, such as a dentist promoted from a volunteer application.
func NewTempPassword() (string, error) {
	token, err := NewToken()
	if err != nil {
		return "", err
	}
	return token[:12], nil
}
