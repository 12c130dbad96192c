package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	svc := NewSessionService("test-secret", "clinic-test")
	profileID := uuid.New()

	token, err := svc.GenerateToken(profileID, "Maria Silva", "maria@example.com", RoleGuardian, false)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, profileID, claims.ProfileID)
	assert.Equal(t, "Maria Silva", claims.Name)
	assert.Equal(t, "maria@example.com", claims.Email)
	assert.Equal(t, RoleGuardian, claims.Role)
	assert.False(t, claims.RememberMe)
	assert.Equal(t, SessionTTL, claims.TTL())
}

func TestRememberMeExtendsTTL(t *testing.T) {
	svc := NewSessionService("test-secret", "clinic-test")

	token, err := svc.GenerateToken(uuid.New(), "Dr. Souza", "souza@example.com", RoleDentist, true)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.True(t, claims.RememberMe)
	assert.Equal(t, RememberTTL, claims.TTL())

	remaining := time.Until(claims.ExpiresAt.Time)
	assert.Greater(t, remaining, 29*24*time.Hour)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	svc := NewSessionService("secret-a", "clinic-test")
	other := NewSessionService("secret-b", "clinic-test")

	token, err := svc.GenerateToken(uuid.New(), "x", "x@example.com", RoleAdmin, false)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	svc := NewSessionService("test-secret", "clinic-test")

	token, err := svc.GenerateToken(uuid.New(), "x", "x@example.com", RoleGuardian, false)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token + "a")
	assert.Error(t, err)
}

func TestValidateTokenRejectsUnknownRole(t *testing.T) {
	svc := NewSessionService("test-secret", "clinic-test")

	claims := Claims{
		ProfileID: uuid.New(),
		Role:      "superuser",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := NewSessionService("test-secret", "clinic-test")

	claims := Claims{
		ProfileID: uuid.New(),
		Role:      RoleGuardian,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-9 * time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestShouldRenew(t *testing.T) {
	now := time.Now()

	fresh := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{IssuedAt: jwt.NewNumericDate(now)},
	}
	assert.False(t, fresh.ShouldRenew(now))
	assert.False(t, fresh.ShouldRenew(now.Add(3*time.Hour)))

	// Past half the 8h window.
	assert.True(t, fresh.ShouldRenew(now.Add(5*time.Hour)))

	remembered := &Claims{
		RememberMe:       true,
		RegisteredClaims: jwt.RegisteredClaims{IssuedAt: jwt.NewNumericDate(now)},
	}
	assert.False(t, remembered.ShouldRenew(now.Add(5*time.Hour)))
	assert.True(t, remembered.ShouldRenew(now.Add(16*24*time.Hour)))
}
