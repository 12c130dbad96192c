package handlers

import (
	"errors"
	"fmt"
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
)

// slotFree checks inside a transaction that an active schedule block exists
// for (dentist, date, start) and that no appointment occupies it yet. The
// block row is locked so two concurrent bookings for the same slot serialize
// and the loser sees the winner's appointment. The excludeAppointment ID
// skips the caller's own row when rescheduling.
func slotFree(c *gin.Context, tx pgx.Tx, dentistID uuid.UUID, date time.Time, start string, excludeAppointment uuid.UUID) (bool, error) {
	var blockID uuid.UUID
	err := tx.QueryRow(c.Request.Context(), `
		SELECT id FROM schedule_blocks
		WHERE dentist_id = $1 AND date = $2 AND start_time = $3 AND active = true
		FOR UPDATE
	`, dentistID, date, start).Scan(&blockID)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var taken bool
	err = tx.QueryRow(c.Request.Context(), `
		SELECT EXISTS(
			SELECT 1 FROM appointments
			WHERE dentist_id = $1 AND date = $2 AND start_time = $3 AND id <> $4
		)
	`, dentistID, date, start, excludeAppointment).Scan(&taken)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

// BookAppointment books a child into a dentist's slot. Guardians may only
// book their own children; admins may book for any child. The slot must have
// an active schedule block and no existing appointment, checked in the same
// transaction as the insert.
func BookAppointment(db *pgxpool.Pool, emails *email.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.AppointmentCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}

		date, err := models.ParseAppointmentDate(req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
			return
		}
		startTime, err := models.NormalizeSlotTime(req.StartTime)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start time. Use HH:MM"})
			return
		}

		tx, err := db.Begin(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
			return
		}
		defer tx.Rollback(c.Request.Context())

		var (
			childName     string
			childActive   bool
			ownerID       uuid.UUID
			guardianEmail string
		)
		err = tx.QueryRow(c.Request.Context(), `
			SELECT ch.name, ch.active, g.id, g.email
			FROM children ch
			JOIN guardians g ON g.id = ch.guardian_id
			WHERE ch.id = $1
		`, req.ChildID).Scan(&childName, &childActive, &ownerID, &guardianEmail)

		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Child not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query child"})
			return
		}
		if !childActive {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Child is inactive"})
			return
		}

		// Ownership: rejected before any write.
		if !middleware.IsAdmin(c) {
			callerID, ok := middleware.GetAuthProfileID(c)
			if !ok || ownerID != callerID {
				c.JSON(http.StatusForbidden, gin.H{"error": "Child does not belong to this guardian"})
				return
			}
		}

		var dentistName string
		err = tx.QueryRow(c.Request.Context(),
			"SELECT name FROM dentists WHERE id = $1 AND active = true", req.DentistID,
		).Scan(&dentistName)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Dentist not found"})
			return
		}

		free, err := slotFree(c, tx, req.DentistID, date, startTime, uuid.Nil)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check slot availability"})
			return
		}
		if !free {
			c.JSON(http.StatusConflict, gin.H{"error": "Slot is not available"})
			return
		}

		appointmentID := uuid.New()
		_, err = tx.Exec(c.Request.Context(), `
			INSERT INTO appointments (id, date, start_time, dentist_id, child_id, created_at)
			VALUES ($1, $2, $3, $4, $5, NOW())
		`, appointmentID, date, startTime, req.DentistID, req.ChildID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create appointment", "details": err.Error()})
			return
		}

		if err = tx.Commit(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
			return
		}

		go emails.SendAppointmentConfirmation(guardianEmail, childName, dentistName, req.Date, startTime)

		c.JSON(http.StatusCreated, gin.H{
			"id":         appointmentID,
			"date":       req.Date,
			"start_time": startTime,
			"message":    "Appointment booked successfully",
		})
	}
}

// appointmentForCaller loads an appointment and enforces that the caller may
// act on it: the owning guardian or an admin.
func appointmentForCaller(c *gin.Context, db *pgxpool.Pool, appointmentID uuid.UUID) (*models.Appointment, bool) {
	var (
		appt    models.Appointment
		date    time.Time
		ownerID uuid.UUID
	)
	err := db.QueryRow(c.Request.Context(), `
		SELECT a.id, a.date, a.start_time, a.dentist_id, a.child_id, ch.guardian_id
		FROM appointments a
		JOIN children ch ON ch.id = a.child_id
		WHERE a.id = $1
	`, appointmentID).Scan(&appt.ID, &date, &appt.StartTime, &appt.DentistID, &appt.ChildID, &ownerID)

	if errors.Is(err, pgx.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Appointment not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query appointment"})
		return nil, false
	}
	appt.Date = date.Format("2006-01-02")

	if !middleware.IsAdmin(c) {
		callerID, ok := middleware.GetAuthProfileID(c)
		if !ok || ownerID != callerID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Appointment does not belong to this guardian"})
			return nil, false
		}
	}

	return &appt, true
}

// CancelAppointment deletes a booking, freeing its slot.
func CancelAppointment(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		appointmentID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment ID format"})
			return
		}

		appt, ok := appointmentForCaller(c, db, appointmentID)
		if !ok {
			return
		}

		if _, err := db.Exec(c.Request.Context(), "DELETE FROM appointments WHERE id = $1", appt.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel appointment", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Appointment cancelled successfully"})
	}
}

// RescheduleAppointment moves a booking to another free slot, optionally with
// a different dentist. The availability checks run in the update transaction.
func RescheduleAppointment(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		appointmentID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment ID format"})
			return
		}

		appt, ok := appointmentForCaller(c, db, appointmentID)
		if !ok {
			return
		}

		var req models.AppointmentRescheduleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}

		date, err := models.ParseAppointmentDate(req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
			return
		}
		startTime, err := models.NormalizeSlotTime(req.StartTime)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start time. Use HH:MM"})
			return
		}

		dentistID := appt.DentistID
		if req.DentistID != nil {
			dentistID = *req.DentistID
		}

		tx, err := db.Begin(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
			return
		}
		defer tx.Rollback(c.Request.Context())

		free, err := slotFree(c, tx, dentistID, date, startTime, appt.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check slot availability"})
			return
		}
		if !free {
			c.JSON(http.StatusConflict, gin.H{"error": "Slot is not available"})
			return
		}

		_, err = tx.Exec(c.Request.Context(), `
			UPDATE appointments
			SET date = $1, start_time = $2, dentist_id = $3
			WHERE id = $4
		`, date, startTime, dentistID, appt.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reschedule appointment", "details": err.Error()})
			return
		}

		if err = tx.Commit(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"id":         appt.ID,
			"date":       req.Date,
			"start_time": startTime,
			"dentist_id": dentistID,
			"message":    "Appointment rescheduled successfully",
		})
	}
}

// ListAppointments returns bookings scoped by role: guardians see their
// children's, dentists their own, admins everything. Optional date filter.
func ListAppointments(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := middleware.GetAuthRole(c)
		profileID, _ := middleware.GetAuthProfileID(c)

		query := `
			SELECT a.id, a.date, a.start_time, a.dentist_id, d.name, a.child_id, ch.name, a.created_at
			FROM appointments a
			JOIN dentists d ON d.id = a.dentist_id
			JOIN children ch ON ch.id = a.child_id
		`
		where := []string{}
		args := []interface{}{}

		switch role {
		case auth.RoleGuardian:
			args = append(args, profileID)
			where = append(where, "ch.guardian_id = $1")
		case auth.RoleDentist:
			args = append(args, profileID)
			where = append(where, "a.dentist_id = $1")
		}

		if dateParam := c.Query("date"); dateParam != "" {
			date, err := models.ParseAppointmentDate(dateParam)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
				return
			}
			args = append(args, date)
			where = append(where, fmt.Sprintf("a.date = $%d", len(args)))
		}

		for i, cond := range where {
			if i == 0 {
				query += " WHERE " + cond
			} else {
				query += " AND " + cond
			}
		}
		query += " ORDER BY a.date ASC, a.start_time ASC"

		rows, err := db.Query(c.Request.Context(), query, args...)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query appointments", "details": err.Error()})
			return
		}
		defer rows.Close()

		appointments := []models.AppointmentListResponse{}
		for rows.Next() {
			var (
				a    models.AppointmentListResponse
				date time.Time
			)
			if err := rows.Scan(&a.ID, &date, &a.StartTime, &a.DentistID, &a.DentistName,
				&a.ChildID, &a.ChildName, &a.CreatedAt); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse appointment data"})
				return
			}
			a.Date = date.Format("2006-01-02")
			appointments = append(appointments, a)
		}

		c.JSON(http.StatusOK, gin.H{"appointments": appointments, "count": len(appointments)})
	}
}
