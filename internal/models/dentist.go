package models

import (
	"time"

	"github.com/google/uuid"
)

// Dentist is a clinical staff account, possibly promoted from a volunteer
// application.
type Dentist struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	CPF          string    `json:"cpf" db:"cpf"`
	CRO          string    `json:"cro" db:"cro"`
	Email        string    `json:"email" db:"email"`
	Phone        string    `json:"phone" db:"phone"`
	Address      string    `json:"address" db:"address"`
	Active       bool      `json:"active" db:"active"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type DentistCreateRequest struct {
	Name     string `json:"name" binding:"required"`
	CPF      string `json:"cpf" binding:"required"`
	CRO      string `json:"cro" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required"`
	Address  string `json:"address"`
	Password string `json:"password" binding:"required,min=8"`
}

type DentistUpdateRequest struct {
	Name    *string `json:"name,omitempty"`
	CPF     *string `json:"cpf,omitempty"`
	CRO     *string `json:"cro,omitempty"`
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
	Active  *bool   `json:"active,omitempty"`
}

// DentistListResponse is the simplified response for dentist lists.
type DentistListResponse struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	CRO    string    `json:"cro"`
	Email  string    `json:"email"`
	Phone  string    `json:"phone"`
	Active bool      `json:"active"`
}

// ToListResponse converts Dentist to DentistListResponse
func (d *Dentist) ToListResponse() DentistListResponse {
	return DentistListResponse{
		ID:     d.ID,
		Name:   d.Name,
		CRO:    d.CRO,
		Email:  d.Email,
		Phone:  d.Phone,
		Active: d.Active,
	}
}
