package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/SorrisoKids/clinic-go/internal/auth"
	"github.com/SorrisoKids/clinic-go/internal/email"
	"github.com/SorrisoKids/clinic-go/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegisterGuardian handles guardian self-registration with at least one
// child. Guardian and children are written in one transaction; the account
// starts inactive and unverified until the emailed token is redeemed.
func RegisterGuardian(db *pgxpool.Pool, emails *email.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.GuardianRegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}

		cpf := models.NormalizeDocument(req.CPF)
		phone := models.NormalizeDocument(req.Phone)
		addr := models.NormalizeEmail(req.Email)

		if !models.ValidCPF(cpf) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid guardian CPF"})
			return
		}
		for _, child := range req.Children {
			if !models.ValidCPF(models.NormalizeDocument(child.CPF)) {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid CPF for child %s", child.Name)})
				return
			}
			if !models.ValidRelationship(child.Relationship) {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid relationship for child %s", child.Name)})
				return
			}
			if _, err := time.Parse("2006-01-02", child.BirthDate); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid birth date for child %s. Use YYYY-MM-DD", child.Name)})
				return
			}
		}

		// Reject intra-submission duplicate child CPFs before touching the
		// database.
		if dup := models.DuplicateChildCPF(req.Children); dup != "" {
			c.JSON(http.StatusConflict, gin.H{"error": "Duplicate child CPF in submission: " + dup})
			return
		}

		// Uniqueness pre-checks, all against normalized values.
		var exists bool
		err := db.QueryRow(c.Request.Context(), `
			SELECT EXISTS(SELECT 1 FROM guardians WHERE cpf = $1 OR email = $2 OR phone = $3)
		`, cpf, addr, phone).Scan(&exists)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check guardian uniqueness"})
			return
		}
		if exists {
			c.JSON(http.StatusConflict, gin.H{"error": "CPF, email or phone already registered"})
			return
		}

		for _, child := range req.Children {
			childCPF := models.NormalizeDocument(child.CPF)
			err := db.QueryRow(c.Request.Context(),
				"SELECT EXISTS(SELECT 1 FROM children WHERE cpf = $1)", childCPF,
			).Scan(&exists)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check child uniqueness"})
				return
			}
			if exists {
				c.JSON(http.StatusConflict, gin.H{"error": "Child CPF already registered: " + childCPF})
				return
			}
		}

		passwordHash, err := auth.HashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}

		verificationToken, err := auth.NewToken()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create verification token"})
			return
		}

		tx, err := db.Begin(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
			return
		}
		defer tx.Rollback(c.Request.Context())

		guardianID := uuid.New()
		_, err = tx.Exec(c.Request.Context(), `
			INSERT INTO guardians (
				id, name, cpf, phone, email, address, active,
				password_hash, email_verified, verification_token, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, false, $7, false, $8, NOW())
		`, guardianID, req.Name, cpf, phone, addr, req.Address, passwordHash, verificationToken)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create guardian", "details": err.Error()})
			return
		}

		for _, child := range req.Children {
			birthDate, _ := time.Parse("2006-01-02", child.BirthDate)
			_, err = tx.Exec(c.Request.Context(), `
				INSERT INTO children (id, name, cpf, birth_date, relationship, active, guardian_id)
				VALUES ($1, $2, $3, $4, $5, true, $6)
			`, uuid.New(), child.Name, models.NormalizeDocument(child.CPF), birthDate, child.Relationship, guardianID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create child", "details": err.Error()})
				return
			}
		}

		if err = tx.Commit(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
			return
		}

		// Best-effort: a failed send never fails the registration.
		go emails.SendVerification(addr, req.Name, verificationToken)

		c.JSON(http.StatusCreated, gin.H{
			"id":      guardianID,
			"message": "Registration received. Check your email to activate the account.",
		})
	}
}

// VerifyEmail redeems a verification token. Valid only while unused and less
// than 24 hours old; success activates the guardian and clears the token.
func VerifyEmail(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Verification token required"})
			return
		}

		var guardianID uuid.UUID
		err := db.QueryRow(c.Request.Context(), `
			UPDATE guardians
			SET active = true, email_verified = true, verification_token = NULL
			WHERE verification_token = $1
			  AND email_verified = false
			  AND created_at > NOW() - interval '24 hours'
			RETURNING id
		`, token).Scan(&guardianID)

		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Verification link is expired or invalid"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify email"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"id": guardianID, "message": "Email verified. You can now sign in."})
	}
}

// ListGuardians returns all guardians (admin only).
func ListGuardians(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := `
			SELECT id, name, cpf, phone, email, active, email_verified, created_at
			FROM guardians
			ORDER BY name ASC
		`
		rows, err := db.Query(c.Request.Context(), query)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query guardians"})
			return
		}
		defer rows.Close()

		guardians := []models.GuardianListResponse{}
		for rows.Next() {
			var g models.GuardianListResponse
			if err := rows.Scan(&g.ID, &g.Name, &g.CPF, &g.Phone, &g.Email, &g.Active, &g.EmailVerified, &g.CreatedAt); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse guardian data"})
				return
			}
			guardians = append(guardians, g)
		}

		c.JSON(http.StatusOK, gin.H{"guardians": guardians, "count": len(guardians)})
	}
}

// GetGuardian returns one guardian with children (admin only).
func GetGuardian(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		guardianID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid guardian ID format"})
			return
		}

		var g models.Guardian
		err = db.QueryRow(c.Request.Context(), `
			SELECT id, name, cpf, phone, email, address, active, email_verified, created_at
			FROM guardians
			WHERE id = $1
		`, guardianID).Scan(&g.ID, &g.Name, &g.CPF, &g.Phone, &g.Email, &g.Address, &g.Active, &g.EmailVerified, &g.CreatedAt)

		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Guardian not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query guardian"})
			return
		}

		children, err := loadChildren(c, db, guardianID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query children"})
			return
		}

		c.JSON(http.StatusOK, g.ToDetailResponse(children))
	}
}

// UpdateGuardian is the admin-only guardian edit; unlike self-service it may
// change email, CPF and the active flag.
func UpdateGuardian(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		guardianID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid guardian ID format"})
			return
		}

		var req models.GuardianAdminUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}

		var exists bool
		err = db.QueryRow(c.Request.Context(), "SELECT EXISTS(SELECT 1 FROM guardians WHERE id = $1)", guardianID).Scan(&exists)
		if err != nil || !exists {
			c.JSON(http.StatusNotFound, gin.H{"error": "Guardian not found"})
			return
		}

		// Build dynamic UPDATE query
		updates := []string{}
		args := []interface{}{}
		argIndex := 1

		if req.Name != nil {
			updates = append(updates, fmt.Sprintf("name = $%d", argIndex))
			args = append(args, *req.Name)
			argIndex++
		}

		if req.Phone != nil {
			phone := models.NormalizeDocument(*req.Phone)
			if taken, err := otherGuardianHoldsPhone(c, db, guardianID, phone); err != nil || taken {
				c.JSON(http.StatusConflict, gin.H{"error": "Phone number already in use"})
				return
			}
			updates = append(updates, fmt.Sprintf("phone = $%d", argIndex))
			args = append(args, phone)
			argIndex++
		}

		if req.Address != nil {
			updates = append(updates, fmt.Sprintf("address = $%d", argIndex))
			args = append(args, *req.Address)
			argIndex++
		}

		if req.Email != nil {
			addr := models.NormalizeEmail(*req.Email)
			var taken bool
			err = db.QueryRow(c.Request.Context(),
				"SELECT EXISTS(SELECT 1 FROM guardians WHERE email = $1 AND id <> $2)", addr, guardianID,
			).Scan(&taken)
			if err != nil || taken {
				c.JSON(http.StatusConflict, gin.H{"error": "Email already in use"})
				return
			}
			updates = append(updates, fmt.Sprintf("email = $%d", argIndex))
			args = append(args, addr)
			argIndex++
		}

		if req.CPF != nil {
			cpf := models.NormalizeDocument(*req.CPF)
			if !models.ValidCPF(cpf) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid CPF"})
				return
			}
			var taken bool
			err = db.QueryRow(c.Request.Context(),
				"SELECT EXISTS(SELECT 1 FROM guardians WHERE cpf = $1 AND id <> $2)", cpf, guardianID,
			).Scan(&taken)
			if err != nil || taken {
				c.JSON(http.StatusConflict, gin.H{"error": "CPF already in use"})
				return
			}
			updates = append(updates, fmt.Sprintf("cpf = $%d", argIndex))
			args = append(args, cpf)
			argIndex++
		}

		if req.Active != nil {
			updates = append(updates, fmt.Sprintf("active = $%d", argIndex))
			args = append(args, *req.Active)
			argIndex++
		}

		if len(updates) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
			return
		}

		args = append(args, guardianID)
		query := fmt.Sprintf(`
			UPDATE guardians
			SET %s
			WHERE id = $%d
			RETURNING id, name, cpf, phone, email, active, email_verified, created_at
		`, strings.Join(updates, ", "), argIndex)

		var g models.GuardianListResponse
		err = db.QueryRow(c.Request.Context(), query, args...).Scan(
			&g.ID, &g.Name, &g.CPF, &g.Phone, &g.Email, &g.Active, &g.EmailVerified, &g.CreatedAt,
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update guardian", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"guardian": g, "message": "Guardian updated successfully"})
	}
}

// DeleteGuardian removes a guardian and, via cascade, their children
// (admin only).
func DeleteGuardian(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		guardianID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid guardian ID format"})
			return
		}

		tag, err := db.Exec(c.Request.Context(), "DELETE FROM guardians WHERE id = $1", guardianID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete guardian", "details": err.Error()})
			return
		}
		if tag.RowsAffected() == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Guardian not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Guardian deleted successfully"})
	}
}

func loadChildren(c *gin.Context, db *pgxpool.Pool, guardianID uuid.UUID) ([]models.Child, error) {
	rows, err := db.Query(c.Request.Context(), `
		SELECT id, name, cpf, birth_date, relationship, active, guardian_id
		FROM children
		WHERE guardian_id = $1
		ORDER BY name ASC
	`, guardianID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	children := []models.Child{}
	for rows.Next() {
		var child models.Child
		if err := rows.Scan(&child.ID, &child.Name, &child.CPF, &child.BirthDate,
			&child.Relationship, &child.Active, &child.GuardianID); err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

func otherGuardianHoldsPhone(c *gin.Context, db *pgxpool.Pool, guardianID uuid.UUID, phone string) (bool, error) {
	var taken bool
	err := db.QueryRow(c.Request.Context(),
		"SELECT EXISTS(SELECT 1 FROM guardians WHERE phone = $1 AND id <> $2)", phone, guardianID,
	).Scan(&taken)
	return taken, err
}
