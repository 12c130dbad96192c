package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/SorrisoKids/clinic-go/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	authProfileKey = "auth_profile_id"
	authNameKey    = "auth_name"
	authEmailKey   = "auth_email"
	authRoleKey    = "auth_role"
)

// SessionCookie is the single signed session cookie shared by all roles.
const SessionCookie = "clinic_session"

// Legacy per-role cookie names. Logout expires these as well so stale
// sessions from the old three-scheme setup cannot linger.
var LegacyCookies = []string{"AdminAuth", "DentistaAuth", "ResponsavelAuth"}

// LoginPath maps a role to its login page, used for browser redirects on deny.
func LoginPath(role string) string {
	switch role {
	case auth.RoleAdmin:
		return "/admin/login"
	case auth.RoleDentist:
		return "/auth/dentist/login"
	default:
		return "/login"
	}
}

// secureRequest reports whether the request arrived over TLS, either directly
// or via a TLS-terminating proxy that sets X-Forwarded-Proto.
func secureRequest(c *gin.Context) bool {
	return c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https"
}

// SetSessionCookie writes the session cookie: httpOnly, SameSite=Lax, Secure
// when the request arrived over TLS.
func SetSessionCookie(c *gin.Context, token string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, int(ttl.Seconds()), "/", "", secureRequest(c), true)
}

// ClearSessionCookies expires the session cookie and the legacy role cookies.
func ClearSessionCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", secureRequest(c), true)
	for _, name := range LegacyCookies {
		c.SetCookie(name, "", -1, "/", "", secureRequest(c), true)
	}
}

func wantsHTML(c *gin.Context) bool {
	return c.Request.Method == http.MethodGet &&
		strings.Contains(c.GetHeader("Accept"), "text/html")
}

func deny(c *gin.Context, statusCode int, loginRole, message string) {
	if wantsHTML(c) {
		c.Redirect(http.StatusFound, LoginPath(loginRole))
		c.Abort()
		return
	}
	c.JSON(statusCode, gin.H{"success": false, "error": message})
	c.Abort()
}

// RequireAuth validates the session cookie and sets the caller's identity in
// the gin context. Sessions past half their window are reissued (sliding
// expiration).
func RequireAuth(sessions *auth.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(SessionCookie)
		if err != nil || tokenString == "" {
			deny(c, http.StatusUnauthorized, auth.RoleGuardian, "Authentication required")
			return
		}

		claims, err := sessions.ValidateToken(tokenString)
		if err != nil {
			if err == auth.ErrExpiredToken {
				deny(c, http.StatusUnauthorized, auth.RoleGuardian, "Session has expired")
			} else {
				deny(c, http.StatusUnauthorized, auth.RoleGuardian, "Invalid session")
			}
			return
		}

		if claims.ShouldRenew(time.Now()) {
			if renewed, err := sessions.GenerateToken(
				claims.ProfileID, claims.Name, claims.Email, claims.Role, claims.RememberMe,
			); err == nil {
				SetSessionCookie(c, renewed, claims.TTL())
			}
		}

		c.Set(authProfileKey, claims.ProfileID)
		c.Set(authNameKey, claims.Name)
		c.Set(authEmailKey, claims.Email)
		c.Set(authRoleKey, claims.Role)

		c.Next()
	}
}

// RequireRole allows the request only when the caller's role claim is one of
// the listed roles. Elevated access (admin over guardian data, dentist over
// odontograms) is granted by listing those roles on the route.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetAuthRole(c)
		if !ok {
			deny(c, http.StatusUnauthorized, auth.RoleGuardian, "Authentication required")
			return
		}

		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		loginRole := auth.RoleGuardian
		if len(roles) > 0 {
			loginRole = roles[0]
		}
		deny(c, http.StatusForbidden, loginRole, "Access denied for this role")
	}
}

// GetAuthProfileID retrieves the authenticated profile ID from context.
func GetAuthProfileID(c *gin.Context) (uuid.UUID, bool) {
	val, exists := c.Get(authProfileKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := val.(uuid.UUID)
	return id, ok
}

// GetAuthName retrieves the authenticated display name from context.
func GetAuthName(c *gin.Context) (string, bool) {
	val, exists := c.Get(authNameKey)
	if !exists {
		return "", false
	}
	name, ok := val.(string)
	return name, ok
}

// GetAuthEmail retrieves the authenticated email from context.
func GetAuthEmail(c *gin.Context) (string, bool) {
	val, exists := c.Get(authEmailKey)
	if !exists {
		return "", false
	}
	email, ok := val.(string)
	return email, ok
}

// GetAuthRole retrieves the authenticated role from context.
func GetAuthRole(c *gin.Context) (string, bool) {
	val, exists := c.Get(authRoleKey)
	if !exists {
		return "", false
	}
	role, ok := val.(string)
	return role, ok
}

// IsAdmin reports whether the caller holds the admin role.
func IsAdmin(c *gin.Context) bool {
	role, ok := GetAuthRole(c)
	return ok && role == auth.RoleAdmin
}
