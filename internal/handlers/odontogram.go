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

// GetChildOdontogram returns a child's dental chart, creating it on first
// access. Guardians may only read their own children's charts; dentists and
// admins may read any.
func GetChildOdontogram(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		childID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid child ID format"})
			return
		}

		var (
			childName  string
			guardianID uuid.UUID
		)
		err = db.QueryRow(c.Request.Context(),
			"SELECT name, guardian_id FROM children WHERE id = $1", childID,
		).Scan(&childName, &guardianID)
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Child not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query child"})
			return
		}

		role, _ := middleware.GetAuthRole(c)
		if role == auth.RoleGuardian {
			callerID, ok := middleware.GetAuthProfileID(c)
			if !ok || guardianID != callerID {
				c.JSON(http.StatusForbidden, gin.H{"error": "Child does not belong to this guardian"})
				return
			}
		}

		var o models.Odontogram
		err = db.QueryRow(c.Request.Context(), `
			SELECT id, child_id, general_notes, created_at, updated_at
			FROM odontograms
			WHERE child_id = $1
		`, childID).Scan(&o.ID, &o.ChildID, &o.GeneralNotes, &o.CreatedAt, &o.UpdatedAt)

		if errors.Is(err, pgx.ErrNoRows) {
			// Lazy creation: one chart per child, empty notes. The unique
			// index on child_id makes a concurrent first access converge on
			// one row.
			err = db.QueryRow(c.Request.Context(), `
				INSERT INTO odontograms (id, child_id, general_notes, created_at, updated_at)
				VALUES ($1, $2, '', NOW(), NOW())
				ON CONFLICT (child_id) DO UPDATE SET child_id = EXCLUDED.child_id
				RETURNING id, child_id, general_notes, created_at, updated_at
			`, uuid.New(), childID).Scan(&o.ID, &o.ChildID, &o.GeneralNotes, &o.CreatedAt, &o.UpdatedAt)
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load odontogram", "details": err.Error()})
			return
		}

		rows, err := db.Query(c.Request.Context(), `
			SELECT id, odontogram_id, tooth_number, treatment_type, tooth_face,
			       status, treatment_date, notes, dentist_id
			FROM tooth_treatments
			WHERE odontogram_id = $1
			ORDER BY tooth_number ASC, treatment_date ASC NULLS LAST
		`, o.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query treatments"})
			return
		}
		defer rows.Close()

		treatments := []models.ToothTreatment{}
		for rows.Next() {
			var t models.ToothTreatment
			if err := rows.Scan(&t.ID, &t.OdontogramID, &t.ToothNumber, &t.TreatmentType,
				&t.ToothFace, &t.Status, &t.TreatmentDate, &t.Notes, &t.DentistID); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse treatment data"})
				return
			}
			treatments = append(treatments, t)
		}

		c.JSON(http.StatusOK, models.OdontogramResponse{
			ID:           o.ID,
			ChildID:      o.ChildID,
			ChildName:    childName,
			GeneralNotes: o.GeneralNotes,
			CreatedAt:    o.CreatedAt,
			UpdatedAt:    o.UpdatedAt,
			Treatments:   treatments,
		})
	}
}

func parseTreatmentDate(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// AddTreatment appends a per-tooth entry to a chart and refreshes the
// chart's updated_at in the same transaction. Dentist or admin only.
func AddTreatment(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		odontogramID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid odontogram ID format"})
			return
		}

		var req models.TreatmentCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}

		if !models.ValidToothNumber(req.ToothNumber) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Tooth number must be within FDI range 11-85"})
			return
		}
		if req.ToothFace != nil && !models.ValidToothFace(*req.ToothFace) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tooth face"})
			return
		}
		status := req.Status
		if status == "" {
			status = models.StatusPlanned
		}
		if !models.ValidTreatmentStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid treatment status"})
			return
		}
		treatmentDate, err := parseTreatmentDate(req.TreatmentDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid treatment date. Use YYYY-MM-DD"})
			return
		}

		var exists bool
		err = db.QueryRow(c.Request.Context(),
			"SELECT EXISTS(SELECT 1 FROM odontograms WHERE id = $1)", odontogramID,
		).Scan(&exists)
		if err != nil || !exists {
			c.JSON(http.StatusNotFound, gin.H{"error": "Odontogram not found"})
			return
		}

		tx, err := db.Begin(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
			return
		}
		defer tx.Rollback(c.Request.Context())

		treatmentID := uuid.New()
		_, err = tx.Exec(c.Request.Context(), `
			INSERT INTO tooth_treatments (
				id, odontogram_id, tooth_number, treatment_type, tooth_face,
				status, treatment_date, notes, dentist_id
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, treatmentID, odontogramID, req.ToothNumber, req.TreatmentType,
			req.ToothFace, status, treatmentDate, req.Notes, req.DentistID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create treatment", "details": err.Error()})
			return
		}

		if err := touchOdontogram(c, tx, odontogramID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update odontogram timestamp"})
			return
		}

		if err = tx.Commit(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"id": treatmentID, "message": "Treatment added successfully"})
	}
}

// UpdateTreatment edits a treatment entry. Status may only move forward
// (planned, in progress, completed); the parent chart's updated_at is
// refreshed in the same transaction.
func UpdateTreatment(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		treatmentID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid treatment ID format"})
			return
		}

		var req models.TreatmentUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}

		var (
			odontogramID  uuid.UUID
			currentStatus string
		)
		err = db.QueryRow(c.Request.Context(),
			"SELECT odontogram_id, status FROM tooth_treatments WHERE id = $1", treatmentID,
		).Scan(&odontogramID, &currentStatus)
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Treatment not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query treatment"})
			return
		}

		updates := []string{}
		args := []interface{}{}
		argIndex := 1

		if req.ToothNumber != nil {
			if !models.ValidToothNumber(*req.ToothNumber) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Tooth number must be within FDI range 11-85"})
				return
			}
			updates = append(updates, fmt.Sprintf("tooth_number = $%d", argIndex))
			args = append(args, *req.ToothNumber)
			argIndex++
		}

		if req.TreatmentType != nil {
			updates = append(updates, fmt.Sprintf("treatment_type = $%d", argIndex))
			args = append(args, *req.TreatmentType)
			argIndex++
		}

		if req.ToothFace != nil {
			if !models.ValidToothFace(*req.ToothFace) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tooth face"})
				return
			}
			updates = append(updates, fmt.Sprintf("tooth_face = $%d", argIndex))
			args = append(args, *req.ToothFace)
			argIndex++
		}

		if req.Status != nil {
			if !models.ValidTreatmentStatus(*req.Status) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid treatment status"})
				return
			}
			if !models.CanTransitionStatus(currentStatus, *req.Status) {
				c.JSON(http.StatusConflict, gin.H{
					"error": fmt.Sprintf("Cannot move treatment status from %s back to %s", currentStatus, *req.Status),
				})
				return
			}
			updates = append(updates, fmt.Sprintf("status = $%d", argIndex))
			args = append(args, *req.Status)
			argIndex++
		}

		if req.TreatmentDate != nil {
			treatmentDate, err := parseTreatmentDate(req.TreatmentDate)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid treatment date. Use YYYY-MM-DD"})
				return
			}
			updates = append(updates, fmt.Sprintf("treatment_date = $%d", argIndex))
			args = append(args, treatmentDate)
			argIndex++
		}

		if req.Notes != nil {
			updates = append(updates, fmt.Sprintf("notes = $%d", argIndex))
			args = append(args, req.Notes)
			argIndex++
		}

		if req.DentistID != nil {
			updates = append(updates, fmt.Sprintf("dentist_id = $%d", argIndex))
			args = append(args, req.DentistID)
			argIndex++
		}

		if len(updates) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
			return
		}

		tx, err := db.Begin(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
			return
		}
		defer tx.Rollback(c.Request.Context())

		args = append(args, treatmentID)
		query := fmt.Sprintf("UPDATE tooth_treatments SET %s WHERE id = $%d", strings.Join(updates, ", "), argIndex)
		if _, err := tx.Exec(c.Request.Context(), query, args...); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update treatment", "details": err.Error()})
			return
		}

		if err := touchOdontogram(c, tx, odontogramID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update odontogram timestamp"})
			return
		}

		if err = tx.Commit(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Treatment updated successfully"})
	}
}

// RemoveTreatment deletes a treatment entry and refreshes the parent chart's
// updated_at.
func RemoveTreatment(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		treatmentID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid treatment ID format"})
			return
		}

		var odontogramID uuid.UUID
		err = db.QueryRow(c.Request.Context(),
			"SELECT odontogram_id FROM tooth_treatments WHERE id = $1", treatmentID,
		).Scan(&odontogramID)
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Treatment not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query treatment"})
			return
		}

		tx, err := db.Begin(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
			return
		}
		defer tx.Rollback(c.Request.Context())

		if _, err := tx.Exec(c.Request.Context(), "DELETE FROM tooth_treatments WHERE id = $1", treatmentID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete treatment", "details": err.Error()})
			return
		}

		if err := touchOdontogram(c, tx, odontogramID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update odontogram timestamp"})
			return
		}

		if err = tx.Commit(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Treatment removed successfully"})
	}
}

// UpdateOdontogramNotes replaces the chart's general notes. Dentist or admin
// only; refreshes updated_at.
func UpdateOdontogramNotes(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		odontogramID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid odontogram ID format"})
			return
		}

		var req models.OdontogramNotesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}

		tag, err := db.Exec(c.Request.Context(), `
			UPDATE odontograms
			SET general_notes = $1, updated_at = NOW()
			WHERE id = $2
		`, req.GeneralNotes, odontogramID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notes", "details": err.Error()})
			return
		}
		if tag.RowsAffected() == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Odontogram not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Notes updated successfully"})
	}
}

func touchOdontogram(c *gin.Context, tx pgx.Tx, odontogramID uuid.UUID) error {
	_, err := tx.Exec(c.Request.Context(),
		"UPDATE odontograms SET updated_at = NOW() WHERE id = $1", odontogramID,
	)
	return err
}
