package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/SorrisoKids/clinic-go/internal/auth"
	"github.com/SorrisoKids/clinic-go/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ListDentists returns all dentists (admin only).
func ListDentists(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := db.Query(c.Request.Context(), `
			SELECT id, name, cro, email, phone, active
			FROM dentists
			ORDER BY name ASC
		`)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query dentists"})
			return
		}
		defer rows.Close()

		dentists := []models.DentistListResponse{}
		for rows.Next() {
			var d models.DentistListResponse
			if err := rows.Scan(&d.ID, &d.Name, &d.CRO, &d.Email, &d.Phone, &d.Active); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse dentist data"})
				return
			}
			dentists = append(dentists, d)
		}

		c.JSON(http.StatusOK, gin.H{"dentists": dentists, "count": len(dentists)})
	}
}

// GetDentist returns one dentist (admin only).
func GetDentist(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		dentistID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid dentist ID format"})
			return
		}

		var d models.Dentist
		err = db.QueryRow(c.Request.Context(), `
			SELECT id, name, cpf, cro, email, phone, address, active, created_at
			FROM dentists
			WHERE id = $1
		`, dentistID).Scan(&d.ID, &d.Name, &d.CPF, &d.CRO, &d.Email, &d.Phone, &d.Address, &d.Active, &d.CreatedAt)

		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Dentist not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query dentist"})
			return
		}

		c.JSON(http.StatusOK, d)
	}
}

// CreateDentist creates a dentist account (admin only).
func CreateDentist(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.DentistCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}

		cpf := models.NormalizeDocument(req.CPF)
		cro := models.NormalizeDocument(req.CRO)
		phone := models.NormalizeDocument(req.Phone)
		addr := models.NormalizeEmail(req.Email)

		if !models.ValidCPF(cpf) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid CPF"})
			return
		}

		var exists bool
		err := db.QueryRow(c.Request.Context(),
			"SELECT EXISTS(SELECT 1 FROM dentists WHERE cro = $1 OR email = $2)", cro, addr,
		).Scan(&exists)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check dentist uniqueness"})
			return
		}
		if exists {
			c.JSON(http.StatusConflict, gin.H{"error": "CRO or email already registered"})
			return
		}

		passwordHash, err := auth.HashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}

		dentistID := uuid.New()
		_, err = db.Exec(c.Request.Context(), `
			INSERT INTO dentists (id, name, cpf, cro, email, phone, address, active, password_hash, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, true, $8, NOW())
		`, dentistID, req.Name, cpf, cro, addr, phone, req.Address, passwordHash)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create dentist", "details": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"id": dentistID, "message": "Dentist created successfully"})
	}
}

// UpdateDentist edits a dentist (admin only).
func UpdateDentist(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		dentistID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid dentist ID format"})
			return
		}

		var req models.DentistUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}

		var exists bool
		err = db.QueryRow(c.Request.Context(), "SELECT EXISTS(SELECT 1 FROM dentists WHERE id = $1)", dentistID).Scan(&exists)
		if err != nil || !exists {
			c.JSON(http.StatusNotFound, gin.H{"error": "Dentist not found"})
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

		if req.CPF != nil {
			cpf := models.NormalizeDocument(*req.CPF)
			if !models.ValidCPF(cpf) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid CPF"})
				return
			}
			updates = append(updates, fmt.Sprintf("cpf = $%d", argIndex))
			args = append(args, cpf)
			argIndex++
		}

		if req.CRO != nil {
			cro := models.NormalizeDocument(*req.CRO)
			var taken bool
			err = db.QueryRow(c.Request.Context(),
				"SELECT EXISTS(SELECT 1 FROM dentists WHERE cro = $1 AND id <> $2)", cro, dentistID,
			).Scan(&taken)
			if err != nil || taken {
				c.JSON(http.StatusConflict, gin.H{"error": "CRO already in use"})
				return
			}
			updates = append(updates, fmt.Sprintf("cro = $%d", argIndex))
			args = append(args, cro)
			argIndex++
		}

		if req.Email != nil {
			addr := models.NormalizeEmail(*req.Email)
			var taken bool
			err = db.QueryRow(c.Request.Context(),
				"SELECT EXISTS(SELECT 1 FROM dentists WHERE email = $1 AND id <> $2)", addr, dentistID,
			).Scan(&taken)
			if err != nil || taken {
				c.JSON(http.StatusConflict, gin.H{"error": "Email already in use"})
				return
			}
			updates = append(updates, fmt.Sprintf("email = $%d", argIndex))
			args = append(args, addr)
			argIndex++
		}

		if req.Phone != nil {
			updates = append(updates, fmt.Sprintf("phone = $%d", argIndex))
			args = append(args, models.NormalizeDocument(*req.Phone))
			argIndex++
		}

		if req.Address != nil {
			updates = append(updates, fmt.Sprintf("address = $%d", argIndex))
			args = append(args, *req.Address)
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

		args = append(args, dentistID)
		query := fmt.Sprintf(`
			UPDATE dentists
			SET %s
			WHERE id = $%d
			RETURNING id, name, cro, email, phone, active
		`, strings.Join(updates, ", "), argIndex)

		var d models.DentistListResponse
		err = db.QueryRow(c.Request.Context(), query, args...).Scan(
			&d.ID, &d.Name, &d.CRO, &d.Email, &d.Phone, &d.Active,
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update dentist", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"dentist": d, "message": "Dentist updated successfully"})
	}
}

// DeleteDentist soft-deactivates a dentist (admin only).
func DeleteDentist(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		dentistID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid dentist ID format"})
			return
		}

		tag, err := db.Exec(c.Request.Context(),
			"UPDATE dentists SET active = false WHERE id = $1", dentistID,
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete dentist", "details": err.Error()})
			return
		}
		if tag.RowsAffected() == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Dentist not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Dentist deactivated successfully"})
	}
}
