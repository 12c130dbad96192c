package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SorrisoKids/clinic-go/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(sessions *auth.SessionService, roles ...string) (*gin.Engine, *uuid.UUID) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	var seenID uuid.UUID
	handlers := []gin.HandlerFunc{RequireAuth(sessions)}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRole(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		id, _ := GetAuthProfileID(c)
		seenID = id
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	r.GET("/protected", handlers...)
	return r, &seenID
}

func sessionCookie(t *testing.T, sessions *auth.SessionService, id uuid.UUID, role string) *http.Cookie {
	t.Helper()
	token, err := sessions.GenerateToken(id, "Test User", "test@example.com", role, false)
	require.NoError(t, err)
	return &http.Cookie{Name: SessionCookie, Value: token}
}

func TestRequireAuthRejectsMissingCookie(t *testing.T) {
	sessions := auth.NewSessionService("test-secret", "clinic-test")
	router, _ := newTestRouter(sessions)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Authentication required", body["error"])
}

func TestRequireAuthRedirectsBrowsers(t *testing.T) {
	sessions := auth.NewSessionService("test-secret", "clinic-test")
	router, _ := newTestRouter(sessions)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestRequireAuthRejectsTamperedToken(t *testing.T) {
	sessions := auth.NewSessionService("test-secret", "clinic-test")
	router, _ := newTestRouter(sessions)

	cookie := sessionCookie(t, sessions, uuid.New(), auth.RoleGuardian)
	cookie.Value += "x"

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthSetsIdentity(t *testing.T) {
	sessions := auth.NewSessionService("test-secret", "clinic-test")
	router, seenID := newTestRouter(sessions)

	profileID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(sessionCookie(t, sessions, profileID, auth.RoleGuardian))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, profileID, *seenID)
}

func TestRequireRoleAllowsListedRoles(t *testing.T) {
	sessions := auth.NewSessionService("test-secret", "clinic-test")
	router, _ := newTestRouter(sessions, auth.RoleGuardian, auth.RoleAdmin)

	for _, role := range []string{auth.RoleGuardian, auth.RoleAdmin} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.AddCookie(sessionCookie(t, sessions, uuid.New(), role))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equalf(t, http.StatusOK, w.Code, "role %s should be allowed", role)
	}
}

func TestRequireRoleRejectsOtherRoles(t *testing.T) {
	sessions := auth.NewSessionService("test-secret", "clinic-test")
	router, _ := newTestRouter(sessions, auth.RoleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(sessionCookie(t, sessions, uuid.New(), auth.RoleDentist))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRoleRedirectRouting(t *testing.T) {
	sessions := auth.NewSessionService("test-secret", "clinic-test")
	router, _ := newTestRouter(sessions, auth.RoleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Accept", "text/html")
	req.AddCookie(sessionCookie(t, sessions, uuid.New(), auth.RoleGuardian))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/login", w.Header().Get("Location"))
}

func TestSessionCookieSecureFlag(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Plain HTTP: no Secure attribute.
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	SetSessionCookie(c, "token", time.Hour)
	assert.NotContains(t, w.Header().Get("Set-Cookie"), "Secure")

	// Behind a TLS-terminating proxy the forwarded proto marks the cookie
	// Secure even though the local connection has no TLS state.
	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("X-Forwarded-Proto", "https")
	SetSessionCookie(c, "token", time.Hour)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "Secure")
}

func TestLoginPath(t *testing.T) {
	assert.Equal(t, "/admin/login", LoginPath(auth.RoleAdmin))
	assert.Equal(t, "/auth/dentist/login", LoginPath(auth.RoleDentist))
	assert.Equal(t, "/login", LoginPath(auth.RoleGuardian))
	assert.Equal(t, "/login", LoginPath("anything-else"))
}
