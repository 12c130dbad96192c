package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/SorrisoKids/clinic-go/internal/auth"
	"github.com/SorrisoKids/clinic-go/internal/email"
	"github.com/SorrisoKids/clinic-go/internal/middleware"
	"github.com/SorrisoKids/clinic-go/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

type LoginRequest struct {
	Email      string `json:"email" binding:"required"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

type LoginResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

// invalidCredentials is the single reply for every login failure so callers
// cannot distinguish unknown emails from wrong passwords.
func invalidCredentials(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
}

func issueSession(c *gin.Context, sessions *auth.SessionService, id uuid.UUID, name, email, role string, rememberMe bool) bool {
	token, err := sessions.GenerateToken(id, name, email, role, rememberMe)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return false
	}
	ttl := auth.SessionTTL
	if rememberMe {
		ttl = auth.RememberTTL
	}
	middleware.SetSessionCookie(c, token, ttl)
	return true
}

// GuardianLogin authenticates a guardian account. Unverified or inactive
// accounts are treated as invalid credentials.
func GuardianLogin(db *pgxpool.Pool, sessions *auth.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
			return
		}

		addr := models.NormalizeEmail(req.Email)

		var (
			id            uuid.UUID
			name          string
			passwordHash  string
			active        bool
			emailVerified bool
		)
		err := db.QueryRow(c.Request.Context(), `
			SELECT id, name, password_hash, active, email_verified
			FROM guardians
			WHERE email = $1
		`, addr).Scan(&id, &name, &passwordHash, &active, &emailVerified)

		if err != nil || !active || !emailVerified || !auth.CheckPassword(req.Password, passwordHash) {
			invalidCredentials(c)
			return
		}

		if !issueSession(c, sessions, id, name, addr, auth.RoleGuardian, req.RememberMe) {
			return
		}
		c.JSON(http.StatusOK, LoginResponse{ID: id, Name: name, Email: addr, Role: auth.RoleGuardian})
	}
}

// DentistLogin authenticates a dentist account.
func DentistLogin(db *pgxpool.Pool, sessions *auth.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
			return
		}

		addr := models.NormalizeEmail(req.Email)

		var (
			id           uuid.UUID
			name         string
			passwordHash string
			active       bool
		)
		err := db.QueryRow(c.Request.Context(), `
			SELECT id, name, password_hash, active
			FROM dentists
			WHERE email = $1
		`, addr).Scan(&id, &name, &passwordHash, &active)

		if err != nil || !active || !auth.CheckPassword(req.Password, passwordHash) {
			invalidCredentials(c)
			return
		}

		if !issueSession(c, sessions, id, name, addr, auth.RoleDentist, req.RememberMe) {
			return
		}
		c.JSON(http.StatusOK, LoginResponse{ID: id, Name: name, Email: addr, Role: auth.RoleDentist})
	}
}

// AdminLogin authenticates an admin account.
func AdminLogin(db *pgxpool.Pool, sessions *auth.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
			return
		}

		addr := models.NormalizeEmail(req.Email)

		var (
			id           uuid.UUID
			name         string
			passwordHash string
			active       bool
		)
		err := db.QueryRow(c.Request.Context(), `
			SELECT id, name, password_hash, active
			FROM admins
			WHERE email = $1
		`, addr).Scan(&id, &name, &passwordHash, &active)

		if err != nil || !active || !auth.CheckPassword(req.Password, passwordHash) {
			invalidCredentials(c)
			return
		}

		if !issueSession(c, sessions, id, name, addr, auth.RoleAdmin, req.RememberMe) {
			return
		}
		c.JSON(http.StatusOK, LoginResponse{ID: id, Name: name, Email: addr, Role: auth.RoleAdmin})
	}
}

// Logout clears the session cookie. The legacy per-role cookies are expired
// too as a fallback safety measure.
func Logout(c *gin.Context) {
	middleware.ClearSessionCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// accountTableForEmail finds which role table holds the email, checking
// guardians, dentists and admins in that order.
func accountTableForEmail(c *gin.Context, db *pgxpool.Pool, email string) (string, bool) {
	for _, table := range []string{"guardians", "dentists", "admins"} {
		var exists bool
		err := db.QueryRow(c.Request.Context(),
			"SELECT EXISTS(SELECT 1 FROM "+table+" WHERE email = $1)", email,
		).Scan(&exists)
		if err == nil && exists {
			return table, true
		}
	}
	return "", false
}

// ForgotPassword issues a single-use reset token when the email matches any
// account. It always replies 200 to prevent account enumeration.
func ForgotPassword(db *pgxpool.Pool, emails *email.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ForgotPasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
			return
		}

		addr := models.NormalizeEmail(req.Email)
		reply := gin.H{"message": "If the email is registered, a reset link has been sent"}

		if _, found := accountTableForEmail(c, db, addr); !found {
			c.JSON(http.StatusOK, reply)
			return
		}

		token, err := auth.NewToken()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create reset token"})
			return
		}

		_, err = db.Exec(c.Request.Context(), `
			INSERT INTO password_reset_tokens (id, email, token, created_at, expires_at, used)
			VALUES ($1, $2, $3, NOW(), NOW() + interval '1 hour', false)
		`, uuid.New(), addr, token)
		if err != nil {
			log.Error().Err(err).Msg("failed to store reset token")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create reset token"})
			return
		}

		go emails.SendPasswordReset(addr, token)

		c.JSON(http.StatusOK, reply)
	}
}

// ResetPassword consumes a reset token and replaces the account's password.
// A token works exactly once; expired and consumed tokens get the same reply.
func ResetPassword(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ResetPasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
			return
		}

		var reset models.PasswordResetToken
		err := db.QueryRow(c.Request.Context(), `
			SELECT id, email, token, created_at, expires_at, used
			FROM password_reset_tokens
			WHERE token = $1
		`, req.Token).Scan(&reset.ID, &reset.Email, &reset.Token, &reset.CreatedAt, &reset.ExpiresAt, &reset.Used)

		if errors.Is(err, pgx.ErrNoRows) || (err == nil && !reset.Usable(time.Now())) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Reset link is expired or invalid"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up reset token"})
			return
		}

		table, found := accountTableForEmail(c, db, reset.Email)
		if !found {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Reset link is expired or invalid"})
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}

		tx, err := db.Begin(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
			return
		}
		defer tx.Rollback(c.Request.Context())

		// Consume the token first; the row lock makes a concurrent second
		// redeem lose.
		tag, err := tx.Exec(c.Request.Context(), `
			UPDATE password_reset_tokens SET used = true
			WHERE id = $1 AND used = false
		`, reset.ID)
		if err != nil || tag.RowsAffected() == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Reset link is expired or invalid"})
			return
		}

		_, err = tx.Exec(c.Request.Context(),
			"UPDATE "+table+" SET password_hash = $1 WHERE email = $2",
			hash, reset.Email,
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update password"})
			return
		}

		if err = tx.Commit(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
	}
}
