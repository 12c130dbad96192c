package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/SorrisoKids/clinic-go/internal/auth"
	"github.com/SorrisoKids/clinic-go/internal/middleware"
	"github.com/SorrisoKids/clinic-go/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GetProfile returns the authenticated guardian with their children.
func GetProfile(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		guardianID, ok := middleware.GetAuthProfileID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		var g models.Guardian
		err := db.QueryRow(c.Request.Context(), `
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

// UpdateProfile is guardian self-service: name, phone and address only.
// Email, CPF and the active flag stay admin-only.
func UpdateProfile(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		guardianID, ok := middleware.GetAuthProfileID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		var req models.GuardianProfileUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}

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
			taken, err := otherGuardianHoldsPhone(c, db, guardianID, phone)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check phone uniqueness"})
				return
			}
			if taken {
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
		err := db.QueryRow(c.Request.Context(), query, args...).Scan(
			&g.ID, &g.Name, &g.CPF, &g.Phone, &g.Email, &g.Active, &g.EmailVerified, &g.CreatedAt,
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"guardian": g, "message": "Profile updated successfully"})
	}
}

// ChangePassword rehashes the guardian's password after re-verifying the
// current one.
func ChangePassword(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		guardianID, ok := middleware.GetAuthProfileID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		var req models.PasswordChangeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}

		var currentHash string
		err := db.QueryRow(c.Request.Context(),
			"SELECT password_hash FROM guardians WHERE id = $1", guardianID,
		).Scan(&currentHash)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Guardian not found"})
			return
		}

		if !auth.CheckPassword(req.CurrentPassword, currentHash) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Current password is incorrect"})
			return
		}

		newHash, err := auth.HashPassword(req.NewPassword)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}

		_, err = db.Exec(c.Request.Context(),
			"UPDATE guardians SET password_hash = $1 WHERE id = $2", newHash, guardianID,
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update password"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
	}
}

// ListMyChildren returns the guardian's children.
func ListMyChildren(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		guardianID, ok := middleware.GetAuthProfileID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		children, err := loadChildren(c, db, guardianID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query children"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"children": children, "count": len(children)})
	}
}

// CreateChild adds a child to the authenticated guardian.
func CreateChild(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		guardianID, ok := middleware.GetAuthProfileID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		createChildForGuardian(c, db, guardianID)
	}
}

// AdminCreateChild adds a child to the guardian named in the URL (admin only).
func AdminCreateChild(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		guardianID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid guardian ID format"})
			return
		}

		var exists bool
		err = db.QueryRow(c.Request.Context(),
			"SELECT EXISTS(SELECT 1 FROM guardians WHERE id = $1)", guardianID,
		).Scan(&exists)
		if err != nil || !exists {
			c.JSON(http.StatusNotFound, gin.H{"error": "Guardian not found"})
			return
		}

		createChildForGuardian(c, db, guardianID)
	}
}

func createChildForGuardian(c *gin.Context, db *pgxpool.Pool, guardianID uuid.UUID) {
	var req models.ChildCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	cpf := models.NormalizeDocument(req.CPF)
	if !models.ValidCPF(cpf) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid child CPF"})
		return
	}
	if !models.ValidRelationship(req.Relationship) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid relationship"})
		return
	}
	birthDate, err := time.Parse("2006-01-02", req.BirthDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid birth date. Use YYYY-MM-DD"})
		return
	}

	var exists bool
	err = db.QueryRow(c.Request.Context(),
		"SELECT EXISTS(SELECT 1 FROM children WHERE cpf = $1)", cpf,
	).Scan(&exists)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check child uniqueness"})
		return
	}
	if exists {
		c.JSON(http.StatusConflict, gin.H{"error": "Child CPF already registered"})
		return
	}

	childID := uuid.New()
	_, err = db.Exec(c.Request.Context(), `
		INSERT INTO children (id, name, cpf, birth_date, relationship, active, guardian_id)
		VALUES ($1, $2, $3, $4, $5, true, $6)
	`, childID, req.Name, cpf, birthDate, req.Relationship, guardianID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create child", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": childID, "message": "Child added successfully"})
}

// childForCaller loads a child and enforces ownership: guardians may only
// touch their own children, admins any.
func childForCaller(c *gin.Context, db *pgxpool.Pool, childID uuid.UUID) (*models.Child, bool) {
	var child models.Child
	err := db.QueryRow(c.Request.Context(), `
		SELECT id, name, cpf, birth_date, relationship, active, guardian_id
		FROM children
		WHERE id = $1
	`, childID).Scan(&child.ID, &child.Name, &child.CPF, &child.BirthDate,
		&child.Relationship, &child.Active, &child.GuardianID)

	if errors.Is(err, pgx.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Child not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query child"})
		return nil, false
	}

	if !middleware.IsAdmin(c) {
		guardianID, ok := middleware.GetAuthProfileID(c)
		if !ok || child.GuardianID != guardianID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Child does not belong to this guardian"})
			return nil, false
		}
	}

	return &child, true
}

// UpdateChild edits a child owned by the caller.
func UpdateChild(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		childID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid child ID format"})
			return
		}

		child, ok := childForCaller(c, db, childID)
		if !ok {
			return
		}

		var req models.ChildUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}

		updates := []string{}
		args := []interface{}{}
		argIndex := 1

		if req.Name != nil {
			updates = append(updates, fmt.Sprintf("name = $%d", argIndex))
			args = append(args, *req.Name)
			argIndex++
		}

		if req.BirthDate != nil {
			birthDate, err := time.Parse("2006-01-02", *req.BirthDate)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid birth date. Use YYYY-MM-DD"})
				return
			}
			updates = append(updates, fmt.Sprintf("birth_date = $%d", argIndex))
			args = append(args, birthDate)
			argIndex++
		}

		if req.Relationship != nil {
			if !models.ValidRelationship(*req.Relationship) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid relationship"})
				return
			}
			updates = append(updates, fmt.Sprintf("relationship = $%d", argIndex))
			args = append(args, *req.Relationship)
			argIndex++
		}

		if len(updates) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
			return
		}

		args = append(args, child.ID)
		query := fmt.Sprintf("UPDATE children SET %s WHERE id = $%d", strings.Join(updates, ", "), argIndex)

		if _, err := db.Exec(c.Request.Context(), query, args...); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update child", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Child updated successfully"})
	}
}

// DeactivateChild soft-removes a child. Blocked when it is the guardian's
// last active child: an active guardian always keeps at least one.
func DeactivateChild(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		childID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid child ID format"})
			return
		}

		child, ok := childForCaller(c, db, childID)
		if !ok {
			return
		}

		if !child.Active {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Child is already inactive"})
			return
		}

		tx, err := db.Begin(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
			return
		}
		defer tx.Rollback(c.Request.Context())

		// Count inside the transaction so concurrent deactivations cannot
		// both pass the check.
		var activeCount int
		err = tx.QueryRow(c.Request.Context(), `
			SELECT COUNT(*) FROM (
				SELECT id FROM children
				WHERE guardian_id = $1 AND active = true
				FOR UPDATE
			) locked
		`, child.GuardianID).Scan(&activeCount)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count active children"})
			return
		}

		if activeCount <= 1 {
			c.JSON(http.StatusConflict, gin.H{"error": "Cannot remove the guardian's last active child"})
			return
		}

		if _, err := tx.Exec(c.Request.Context(),
			"UPDATE children SET active = false WHERE id = $1", child.ID,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate child", "details": err.Error()})
			return
		}

		if err = tx.Commit(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Child removed successfully"})
	}
}
