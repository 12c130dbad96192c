package handlers

import (
	"errors"
	"net/http"

	"github.com/SorrisoKids/clinic-go/internal/auth"
	"github.com/SorrisoKids/clinic-go/internal/email"
	"github.com/SorrisoKids/clinic-go/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ApplyVolunteer receives a public volunteer-dentist application.
func ApplyVolunteer(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.VolunteerApplyRequest
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
			"SELECT EXISTS(SELECT 1 FROM volunteer_applications WHERE email = $1)", addr,
		).Scan(&exists)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check application"})
			return
		}
		if exists {
			c.JSON(http.StatusConflict, gin.H{"error": "An application with this email already exists"})
			return
		}

		applicationID := uuid.New()
		_, err = db.Exec(c.Request.Context(), `
			INSERT INTO volunteer_applications (
				id, name, email, phone, cro, cpf, address, message,
				submitted_at, status, viewed
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), $9, false)
		`, applicationID, req.Name, addr, phone, cro, cpf, req.Address, req.Message, models.ApplicationPending)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit application", "details": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"id":      applicationID,
			"message": "Application received. We will get back to you by email.",
		})
	}
}

// ListVolunteers returns applications for triage, optionally by status
// (admin only).
func ListVolunteers(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := `
			SELECT id, name, email, phone, cro, cpf, address, message,
			       submitted_at, status, viewed, responded_at, admin_note
			FROM volunteer_applications
		`
		args := []interface{}{}

		if status := c.Query("status"); status != "" {
			if !models.ValidApplicationStatus(status) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
				return
			}
			query += " WHERE status = $1"
			args = append(args, status)
		}
		query += " ORDER BY submitted_at DESC"

		rows, err := db.Query(c.Request.Context(), query, args...)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query applications"})
			return
		}
		defer rows.Close()

		applications := []models.VolunteerApplication{}
		for rows.Next() {
			var a models.VolunteerApplication
			if err := rows.Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.CRO, &a.CPF, &a.Address,
				&a.Message, &a.SubmittedAt, &a.Status, &a.Viewed, &a.RespondedAt, &a.AdminNote); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse application data"})
				return
			}
			applications = append(applications, a)
		}

		c.JSON(http.StatusOK, gin.H{"applications": applications, "count": len(applications)})
	}
}

// GetVolunteer returns one application and marks it viewed (admin only).
func GetVolunteer(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		applicationID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application ID format"})
			return
		}

		var a models.VolunteerApplication
		err = db.QueryRow(c.Request.Context(), `
			UPDATE volunteer_applications
			SET viewed = true
			WHERE id = $1
			RETURNING id, name, email, phone, cro, cpf, address, message,
			          submitted_at, status, viewed, responded_at, admin_note
		`, applicationID).Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.CRO, &a.CPF, &a.Address,
			&a.Message, &a.SubmittedAt, &a.Status, &a.Viewed, &a.RespondedAt, &a.AdminNote)

		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query application"})
			return
		}

		c.JSON(http.StatusOK, a)
	}
}

// ApproveVolunteer promotes a pending application into a dentist account in
// one transaction, then emails the new credentials best-effort (admin only).
func ApproveVolunteer(db *pgxpool.Pool, emails *email.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		applicationID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application ID format"})
			return
		}

		var req models.VolunteerDecisionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			req = models.VolunteerDecisionRequest{}
		}

		tx, err := db.Begin(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
			return
		}
		defer tx.Rollback(c.Request.Context())

		var a models.VolunteerApplication
		err = tx.QueryRow(c.Request.Context(), `
			SELECT id, name, email, phone, cro, cpf, address, status
			FROM volunteer_applications
			WHERE id = $1
			FOR UPDATE
		`, applicationID).Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.CRO, &a.CPF, &a.Address, &a.Status)

		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query application"})
			return
		}

		if a.Status != models.ApplicationPending {
			c.JSON(http.StatusConflict, gin.H{"error": "Application has already been decided"})
			return
		}

		var taken bool
		err = tx.QueryRow(c.Request.Context(),
			"SELECT EXISTS(SELECT 1 FROM dentists WHERE email = $1 OR cro = $2)", a.Email, a.CRO,
		).Scan(&taken)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check dentist uniqueness"})
			return
		}
		if taken {
			c.JSON(http.StatusConflict, gin.H{"error": "A dentist with this email or CRO already exists"})
			return
		}

		tempPassword, err := auth.NewTempPassword()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate credentials"})
			return
		}
		passwordHash, err := auth.HashPassword(tempPassword)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}

		dentistID := uuid.New()
		_, err = tx.Exec(c.Request.Context(), `
			INSERT INTO dentists (id, name, cpf, cro, email, phone, address, active, password_hash, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, true, $8, NOW())
		`, dentistID, a.Name, a.CPF, a.CRO, a.Email, a.Phone, a.Address, passwordHash)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create dentist", "details": err.Error()})
			return
		}

		_, err = tx.Exec(c.Request.Context(), `
			UPDATE volunteer_applications
			SET status = $1, responded_at = NOW(), admin_note = $2
			WHERE id = $3
		`, models.ApplicationApproved, req.AdminNote, applicationID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update application", "details": err.Error()})
			return
		}

		if err = tx.Commit(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
			return
		}

		go emails.SendDentistWelcome(a.Email, a.Name, tempPassword)

		c.JSON(http.StatusOK, gin.H{
			"dentist_id": dentistID,
			"message":    "Application approved and dentist account created",
		})
	}
}

// RejectVolunteer marks a pending application rejected with an optional note
// (admin only).
func RejectVolunteer(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		applicationID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application ID format"})
			return
		}

		var req models.VolunteerDecisionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			req = models.VolunteerDecisionRequest{}
		}

		tag, err := db.Exec(c.Request.Context(), `
			UPDATE volunteer_applications
			SET status = $1, responded_at = NOW(), admin_note = $2
			WHERE id = $3 AND status = $4
		`, models.ApplicationRejected, req.AdminNote, applicationID, models.ApplicationPending)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update application", "details": err.Error()})
			return
		}
		if tag.RowsAffected() == 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "Application not found or already decided"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Application rejected"})
	}
}
