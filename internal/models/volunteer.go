package models

import (
	"time"

	"github.com/google/uuid"
)

// Volunteer application statuses.
const (
	ApplicationPending  = "pending"
	ApplicationApproved = "approved"
	ApplicationRejected = "rejected"
)

// ValidApplicationStatus reports whether s is a known triage status.
func ValidApplicationStatus(s string) bool {
	return s == ApplicationPending || s == ApplicationApproved || s == ApplicationRejected
}

// VolunteerApplication is a dentist's request to join the clinic. On approval
// it is promoted into a Dentist record.
type VolunteerApplication struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Email       string     `json:"email" db:"email"`
	Phone       string     `json:"phone" db:"phone"`
	CRO         string     `json:"cro" db:"cro"`
	CPF         string     `json:"cpf" db:"cpf"`
	Address     string     `json:"address" db:"address"`
	Message     string     `json:"message" db:"message"`
	SubmittedAt time.Time  `json:"submitted_at" db:"submitted_at"`
	Status      string     `json:"status" db:"status"`
	Viewed      bool       `json:"viewed" db:"viewed"`
	RespondedAt *time.Time `json:"responded_at,omitempty" db:"responded_at"`
	AdminNote   *string    `json:"admin_note,omitempty" db:"admin_note"`
}

type VolunteerApplyRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone" binding:"required"`
	CRO     string `json:"cro" binding:"required"`
	CPF     string `json:"cpf" binding:"required"`
	Address string `json:"address"`
	Message string `json:"message"`
}

// VolunteerDecisionRequest carries the admin's note on approve/reject.
type VolunteerDecisionRequest struct {
	AdminNote *string `json:"admin_note,omitempty"`
}
