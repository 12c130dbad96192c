package models

import (
	"time"

	"github.com/google/uuid"
)

// Relationship of the guardian to the child.
const (
	RelationshipFather        = "father"
	RelationshipMother        = "mother"
	RelationshipGrandfather   = "grandfather"
	RelationshipGrandmother   = "grandmother"
	RelationshipUncle         = "uncle"
	RelationshipAunt          = "aunt"
	RelationshipSibling       = "sibling"
	RelationshipLegalGuardian = "legal_guardian"
)

var relationships = map[string]bool{
	RelationshipFather:        true,
	RelationshipMother:        true,
	RelationshipGrandfather:   true,
	RelationshipGrandmother:   true,
	RelationshipUncle:         true,
	RelationshipAunt:          true,
	RelationshipSibling:       true,
	RelationshipLegalGuardian: true,
}

// ValidRelationship reports whether r is a known guardian-child relationship.
func ValidRelationship(r string) bool {
	return relationships[r]
}

// Child is a minor dependent owned by exactly one guardian.
type Child struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	CPF          string    `json:"cpf" db:"cpf"`
	BirthDate    time.Time `json:"birth_date" db:"birth_date"`
	Relationship string    `json:"relationship" db:"relationship"`
	Active       bool      `json:"active" db:"active"`
	GuardianID   uuid.UUID `json:"guardian_id" db:"guardian_id"`
}

// ChildCreateRequest is a child entry inside registration or child creation.
// BirthDate uses YYYY-MM-DD.
type ChildCreateRequest struct {
	Name         string `json:"name" binding:"required"`
	CPF          string `json:"cpf" binding:"required"`
	BirthDate    string `json:"birth_date" binding:"required"`
	Relationship string `json:"relationship" binding:"required"`
}

// ChildUpdateRequest covers partial child edits.
type ChildUpdateRequest struct {
	Name         *string `json:"name,omitempty"`
	BirthDate    *string `json:"birth_date,omitempty"`
	Relationship *string `json:"relationship,omitempty"`
}
