package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Roles carried by a session. A single session scheme replaces the three
// parallel per-role cookie schemes; the role tag decides what the caller is.
const (
	RoleAdmin    = "admin"
	RoleDentist  = "dentist"
	RoleGuardian = "guardian"
)

const (
	// SessionTTL is the default sliding session lifetime.
	SessionTTL = 8 * time.Hour
	// RememberTTL applies when the caller checked "remember me" at login.
	RememberTTL = 30 * 24 * time.Hour
)

// Claims is the signed session payload. ProfileID points at the row in the
// table matching Role (admins, dentists or guardians).
type Claims struct {
	ProfileID  uuid.UUID `json:"profile_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	RememberMe bool      `json:"remember_me"`
	jwt.RegisteredClaims
}

// TTL returns the session lifetime the claims were issued with.
func (c *Claims) TTL() time.Duration {
	if c.RememberMe {
		return RememberTTL
	}
	return SessionTTL
}

// ShouldRenew reports whether the session has passed half its window and a
// fresh cookie should be issued (sliding expiration).
func (c *Claims) ShouldRenew(now time.Time) bool {
	if c.IssuedAt == nil {
		return false
	}
	return now.Sub(c.IssuedAt.Time) > c.TTL()/2
}

type SessionService struct {
	secretKey []byte
	issuer    string
}

func NewSessionService(secretKey, issuer string) *SessionService {
	return &SessionService{
		secretKey: []byte(secretKey),
		issuer:    issuer,
	}
}

// GenerateToken creates a signed session token for a profile.
func (s *SessionService) GenerateToken(profileID uuid.UUID, name, email, role string, rememberMe bool) (string, error) {
	ttl := SessionTTL
	if rememberMe {
		ttl = RememberTTL
	}

	claims := Claims{
		ProfileID:  profileID,
		Name:       name,
		Email:      email,
		Role:       role,
		RememberMe: rememberMe,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    s.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// ValidateToken validates a session token and returns the claims.
func (s *SessionService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
			return nil, ErrExpiredToken
		}
		switch claims.Role {
		case RoleAdmin, RoleDentist, RoleGuardian:
			return claims, nil
		}
		return nil, ErrInvalidToken
	}

	return nil, ErrInvalidToken
}
