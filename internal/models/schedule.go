package models

import (
	"time"

	"github.com/google/uuid"
)

// SlotDuration is the fixed length of a bookable schedule block.
const SlotDuration = time.Hour

// ScheduleBlock is one bookable hour on a specific date for one dentist.
type ScheduleBlock struct {
	ID        uuid.UUID `json:"id" db:"id"`
	DentistID uuid.UUID `json:"dentist_id" db:"dentist_id"`
	Date      string    `json:"date" db:"date"`
	StartTime string    `json:"start_time" db:"start_time"`
	EndTime   string    `json:"end_time" db:"end_time"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ScheduleCreateRequest creates a batch of blocks for one dentist and date.
// Times use HH:MM.
type ScheduleCreateRequest struct {
	DentistID  uuid.UUID `json:"dentist_id" binding:"required"`
	Date       string    `json:"date" binding:"required"`
	StartTimes []string  `json:"start_times" binding:"required,min=1"`
}

// ScheduleCreateResult reports how a batch went. The batch never
// partial-fails: duplicates are skipped and counted.
type ScheduleCreateResult struct {
	Created           int `json:"created"`
	DuplicatesSkipped int `json:"duplicates_skipped"`
}

// CalendarSlot is one block in the monthly calendar projection.
type CalendarSlot struct {
	ID        uuid.UUID `json:"id"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Booked    bool      `json:"booked"`
}

// CalendarDentist groups a dentist's slots within one day.
type CalendarDentist struct {
	DentistID   uuid.UUID      `json:"dentist_id"`
	DentistName string         `json:"dentist_name"`
	Slots       []CalendarSlot `json:"slots"`
}

// CalendarDay groups all dentists with slots on one date.
type CalendarDay struct {
	Date     string            `json:"date"`
	Dentists []CalendarDentist `json:"dentists"`
}

// MonthlyCalendarResponse is the API response for calendar queries.
type MonthlyCalendarResponse struct {
	Year  int           `json:"year"`
	Month int           `json:"month"`
	Days  []CalendarDay `json:"days"`
}

// ParseSlotTime parses an HH:MM start time.
func ParseSlotTime(value string) (time.Time, error) {
	return time.Parse("15:04", value)
}

// NormalizeSlotTime parses an HH:MM start time and returns it zero-padded.
// time.Parse accepts "8:00", so the canonical form is what gets stored and
// compared; otherwise "8:00" and "08:00" would count as two distinct slots.
func NormalizeSlotTime(value string) (string, error) {
	t, err := ParseSlotTime(value)
	if err != nil {
		return "", err
	}
	return t.Format("15:04"), nil
}

// SlotEnd derives the end of a block from its HH:MM start.
func SlotEnd(start string) (string, error) {
	t, err := ParseSlotTime(start)
	if err != nil {
		return "", err
	}
	return t.Add(SlotDuration).Format("15:04"), nil
}

// DedupeStartTimes drops repeated start times within one submission,
// preserving order, and reports how many were dropped.
func DedupeStartTimes(times []string) ([]string, int) {
	seen := make(map[string]bool, len(times))
	unique := make([]string, 0, len(times))
	skipped := 0
	for _, t := range times {
		if seen[t] {
			skipped++
			continue
		}
		seen[t] = true
		unique = append(unique, t)
	}
	return unique, skipped
}
