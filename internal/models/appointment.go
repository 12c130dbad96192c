package models

import (
	"time"

	"github.com/google/uuid"
)

// Appointment is a confirmed booking of a child into a dentist's slot.
type Appointment struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Date      string    `json:"date" db:"date"`
	StartTime string    `json:"start_time" db:"start_time"`
	DentistID uuid.UUID `json:"dentist_id" db:"dentist_id"`
	ChildID   uuid.UUID `json:"child_id" db:"child_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type AppointmentCreateRequest struct {
	ChildID   uuid.UUID `json:"child_id" binding:"required"`
	DentistID uuid.UUID `json:"dentist_id" binding:"required"`
	Date      string    `json:"date" binding:"required"`
	StartTime string    `json:"start_time" binding:"required"`
}

// AppointmentRescheduleRequest moves a booking to another slot, optionally
// with a different dentist.
type AppointmentRescheduleRequest struct {
	DentistID *uuid.UUID `json:"dentist_id,omitempty"`
	Date      string     `json:"date" binding:"required"`
	StartTime string     `json:"start_time" binding:"required"`
}

// AppointmentListResponse includes display names for rendering.
type AppointmentListResponse struct {
	ID          uuid.UUID `json:"id"`
	Date        string    `json:"date"`
	StartTime   string    `json:"start_time"`
	DentistID   uuid.UUID `json:"dentist_id"`
	DentistName string    `json:"dentist_name"`
	ChildID     uuid.UUID `json:"child_id"`
	ChildName   string    `json:"child_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// ParseAppointmentDate validates a YYYY-MM-DD calendar date.
func ParseAppointmentDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}
