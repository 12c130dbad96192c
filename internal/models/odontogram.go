package models

import (
	"time"

	"github.com/google/uuid"
)

// Odontogram is a child's dental chart, created lazily on first access.
type Odontogram struct {
	ID           uuid.UUID `json:"id" db:"id"`
	ChildID      uuid.UUID `json:"child_id" db:"child_id"`
	GeneralNotes string    `json:"general_notes" db:"general_notes"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Tooth faces.
const (
	FaceOcclusal = "occlusal"
	FaceBuccal   = "buccal"
	FaceLingual  = "lingual"
	FaceMesial   = "mesial"
	FaceDistal   = "distal"
)

var toothFaces = map[string]bool{
	FaceOcclusal: true,
	FaceBuccal:   true,
	FaceLingual:  true,
	FaceMesial:   true,
	FaceDistal:   true,
}

// ValidToothFace reports whether f is a known tooth face.
func ValidToothFace(f string) bool {
	return toothFaces[f]
}

// ValidToothNumber reports whether n is within the FDI numbering used for the
// chart: quadrants 1-8, tooth position 1-8, bounded to 11-85.
func ValidToothNumber(n int) bool {
	if n < 11 || n > 85 {
		return false
	}
	pos := n % 10
	return pos >= 1 && pos <= 8
}

// Treatment statuses, ordered. Transitions only move forward.
const (
	StatusPlanned    = "planned"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

var statusOrder = map[string]int{
	StatusPlanned:    0,
	StatusInProgress: 1,
	StatusCompleted:  2,
}

// ValidTreatmentStatus reports whether s is a known treatment status.
func ValidTreatmentStatus(s string) bool {
	_, ok := statusOrder[s]
	return ok
}

// CanTransitionStatus reports whether a treatment may move from one status to
// another. Staying put and skipping forward are allowed; moving backwards is
// not.
func CanTransitionStatus(from, to string) bool {
	f, ok := statusOrder[from]
	if !ok {
		return false
	}
	t, ok := statusOrder[to]
	if !ok {
		return false
	}
	return t >= f
}

// ToothTreatment is one timestamped per-tooth entry on a chart.
type ToothTreatment struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	OdontogramID  uuid.UUID  `json:"odontogram_id" db:"odontogram_id"`
	ToothNumber   int        `json:"tooth_number" db:"tooth_number"`
	TreatmentType string     `json:"treatment_type" db:"treatment_type"`
	ToothFace     *string    `json:"tooth_face,omitempty" db:"tooth_face"`
	Status        string     `json:"status" db:"status"`
	TreatmentDate *time.Time `json:"treatment_date,omitempty" db:"treatment_date"`
	Notes         *string    `json:"notes,omitempty" db:"notes"`
	DentistID     *uuid.UUID `json:"dentist_id,omitempty" db:"dentist_id"`
}

type TreatmentCreateRequest struct {
	ToothNumber   int        `json:"tooth_number" binding:"required"`
	TreatmentType string     `json:"treatment_type" binding:"required"`
	ToothFace     *string    `json:"tooth_face,omitempty"`
	Status        string     `json:"status,omitempty"`
	TreatmentDate *string    `json:"treatment_date,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
	DentistID     *uuid.UUID `json:"dentist_id,omitempty"`
}

type TreatmentUpdateRequest struct {
	ToothNumber   *int       `json:"tooth_number,omitempty"`
	TreatmentType *string    `json:"treatment_type,omitempty"`
	ToothFace     *string    `json:"tooth_face,omitempty"`
	Status        *string    `json:"status,omitempty"`
	TreatmentDate *string    `json:"treatment_date,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
	DentistID     *uuid.UUID `json:"dentist_id,omitempty"`
}

// OdontogramNotesRequest updates the chart's general notes.
type OdontogramNotesRequest struct {
	GeneralNotes string `json:"general_notes"`
}

// OdontogramResponse is the chart plus its treatment entries.
type OdontogramResponse struct {
	ID           uuid.UUID        `json:"id"`
	ChildID      uuid.UUID        `json:"child_id"`
	ChildName    string           `json:"child_name"`
	GeneralNotes string           `json:"general_notes"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	Treatments   []ToothTreatment `json:"treatments"`
}
