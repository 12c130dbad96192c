package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/SorrisoKids/clinic-go/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CreateScheduleBlocks creates a batch of one-hour blocks for a dentist on a
// date. Duplicates, both within the batch and against existing rows, are
// skipped and counted; the batch never partial-fails. All inserts share one
// transaction so the reported counts always match persisted state.
func CreateScheduleBlocks(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ScheduleCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}

		date, err := models.ParseAppointmentDate(req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
			return
		}

		normalized := make([]string, 0, len(req.StartTimes))
		for _, start := range req.StartTimes {
			canon, err := models.NormalizeSlotTime(start)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start time: " + start + ". Use HH:MM"})
				return
			}
			normalized = append(normalized, canon)
		}

		var dentistExists bool
		err = db.QueryRow(c.Request.Context(),
			"SELECT EXISTS(SELECT 1 FROM dentists WHERE id = $1 AND active = true)", req.DentistID,
		).Scan(&dentistExists)
		if err != nil || !dentistExists {
			c.JSON(http.StatusNotFound, gin.H{"error": "Dentist not found"})
			return
		}

		startTimes, skipped := models.DedupeStartTimes(normalized)
		result := models.ScheduleCreateResult{DuplicatesSkipped: skipped}

		tx, err := db.Begin(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
			return
		}
		defer tx.Rollback(c.Request.Context())

		for _, start := range startTimes {
			var exists bool
			err = tx.QueryRow(c.Request.Context(), `
				SELECT EXISTS(
					SELECT 1 FROM schedule_blocks
					WHERE dentist_id = $1 AND date = $2 AND start_time = $3
				)
			`, req.DentistID, date, start).Scan(&exists)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check schedule block", "details": err.Error()})
				return
			}
			if exists {
				result.DuplicatesSkipped++
				continue
			}

			end, _ := models.SlotEnd(start)
			_, err = tx.Exec(c.Request.Context(), `
				INSERT INTO schedule_blocks (id, dentist_id, date, start_time, end_time, active, created_at)
				VALUES ($1, $2, $3, $4, $5, true, NOW())
			`, uuid.New(), req.DentistID, date, start, end)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create schedule block", "details": err.Error()})
				return
			}
			result.Created++
		}

		if err = tx.Commit(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"created":            result.Created,
			"duplicates_skipped": result.DuplicatesSkipped,
			"message":            "Schedule blocks processed",
		})
	}
}

// DeleteScheduleBlock removes a block unless an appointment occupies the same
// dentist, date and start time.
func DeleteScheduleBlock(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		blockID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid schedule block ID format"})
			return
		}

		var block models.ScheduleBlock
		var date time.Time
		err = db.QueryRow(c.Request.Context(), `
			SELECT id, dentist_id, date, start_time
			FROM schedule_blocks
			WHERE id = $1
		`, blockID).Scan(&block.ID, &block.DentistID, &date, &block.StartTime)

		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Schedule block not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query schedule block"})
			return
		}

		var booked bool
		err = db.QueryRow(c.Request.Context(), `
			SELECT EXISTS(
				SELECT 1 FROM appointments
				WHERE dentist_id = $1 AND date = $2 AND start_time = $3
			)
		`, block.DentistID, date, block.StartTime).Scan(&booked)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check bookings"})
			return
		}
		if booked {
			c.JSON(http.StatusConflict, gin.H{"error": "Cannot delete a schedule block with a booked appointment"})
			return
		}

		if _, err := db.Exec(c.Request.Context(), "DELETE FROM schedule_blocks WHERE id = $1", blockID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete schedule block", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Schedule block deleted successfully"})
	}
}

// MonthlyCalendar returns the month's blocks grouped by date, then dentist.
// Read projection only; no state changes.
func MonthlyCalendar(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		year, err := strconv.Atoi(c.Query("year"))
		if err != nil || year < 2000 || year > 2100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid year"})
			return
		}
		month, err := strconv.Atoi(c.Query("month"))
		if err != nil || month < 1 || month > 12 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid month"})
			return
		}

		firstDay := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		nextMonth := firstDay.AddDate(0, 1, 0)

		rows, err := db.Query(c.Request.Context(), `
			SELECT s.id, s.date, s.start_time, s.end_time, s.dentist_id, d.name,
			       EXISTS(
			           SELECT 1 FROM appointments a
			           WHERE a.dentist_id = s.dentist_id AND a.date = s.date AND a.start_time = s.start_time
			       ) AS booked
			FROM schedule_blocks s
			JOIN dentists d ON d.id = s.dentist_id
			WHERE s.date >= $1 AND s.date < $2 AND s.active = true
			ORDER BY s.date ASC, d.name ASC, s.start_time ASC
		`, firstDay, nextMonth)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query schedule", "details": err.Error()})
			return
		}
		defer rows.Close()

		days := []models.CalendarDay{}
		for rows.Next() {
			var (
				slot        models.CalendarSlot
				date        time.Time
				dentistID   uuid.UUID
				dentistName string
			)
			if err := rows.Scan(&slot.ID, &date, &slot.StartTime, &slot.EndTime, &dentistID, &dentistName, &slot.Booked); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse schedule data"})
				return
			}

			dateStr := date.Format("2006-01-02")
			if len(days) == 0 || days[len(days)-1].Date != dateStr {
				days = append(days, models.CalendarDay{Date: dateStr, Dentists: []models.CalendarDentist{}})
			}
			day := &days[len(days)-1]

			if len(day.Dentists) == 0 || day.Dentists[len(day.Dentists)-1].DentistID != dentistID {
				day.Dentists = append(day.Dentists, models.CalendarDentist{
					DentistID:   dentistID,
					DentistName: dentistName,
					Slots:       []models.CalendarSlot{},
				})
			}
			dentist := &day.Dentists[len(day.Dentists)-1]
			dentist.Slots = append(dentist.Slots, slot)
		}

		c.JSON(http.StatusOK, models.MonthlyCalendarResponse{Year: year, Month: month, Days: days})
	}
}

// AvailableSlots lists active blocks on a date with no booked appointment,
// optionally filtered to one dentist.
func AvailableSlots(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		date, err := models.ParseAppointmentDate(c.Query("date"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
			return
		}

		query := `
			SELECT s.id, s.dentist_id, d.name, s.start_time, s.end_time
			FROM schedule_blocks s
			JOIN dentists d ON d.id = s.dentist_id
			LEFT JOIN appointments a
			       ON a.dentist_id = s.dentist_id AND a.date = s.date AND a.start_time = s.start_time
			WHERE s.date = $1 AND s.active = true AND d.active = true AND a.id IS NULL
		`
		args := []interface{}{date}

		if dentistParam := c.Query("dentist_id"); dentistParam != "" {
			dentistID, err := uuid.Parse(dentistParam)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid dentist ID format"})
				return
			}
			query += " AND s.dentist_id = $2"
			args = append(args, dentistID)
		}
		query += " ORDER BY d.name ASC, s.start_time ASC"

		rows, err := db.Query(c.Request.Context(), query, args...)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query available slots"})
			return
		}
		defer rows.Close()

		type availableSlot struct {
			ID          uuid.UUID `json:"id"`
			DentistID   uuid.UUID `json:"dentist_id"`
			DentistName string    `json:"dentist_name"`
			StartTime   string    `json:"start_time"`
			EndTime     string    `json:"end_time"`
		}

		slots := []availableSlot{}
		for rows.Next() {
			var s availableSlot
			if err := rows.Scan(&s.ID, &s.DentistID, &s.DentistName, &s.StartTime, &s.EndTime); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse slot data"})
				return
			}
			slots = append(slots, s)
		}

		c.JSON(http.StatusOK, gin.H{
			"date":  date.Format("2006-01-02"),
			"slots": slots,
			"count": len(slots),
		})
	}
}
