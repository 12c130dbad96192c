package models

import (
	"time"

	"github.com/google/uuid"
)

// Guardian is a registering adult account that owns one or more children.
type Guardian struct {
	ID                uuid.UUID `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	CPF               string    `json:"cpf" db:"cpf"`
	Phone             string    `json:"phone" db:"phone"`
	Email             string    `json:"email" db:"email"`
	Address           string    `json:"address" db:"address"`
	Active            bool      `json:"active" db:"active"`
	PasswordHash      string    `json:"-" db:"password_hash"`
	EmailVerified     bool      `json:"email_verified" db:"email_verified"`
	VerificationToken *string   `json:"-" db:"verification_token"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

// GuardianRegisterRequest is the self-registration payload. At least one
// child is required.
type GuardianRegisterRequest struct {
	Name     string               `json:"name" binding:"required"`
	CPF      string               `json:"cpf" binding:"required"`
	Phone    string               `json:"phone" binding:"required"`
	Email    string               `json:"email" binding:"required,email"`
	Address  string               `json:"address" binding:"required"`
	Password string               `json:"password" binding:"required,min=8"`
	Children []ChildCreateRequest `json:"children" binding:"required,min=1,dive"`
}

// GuardianProfileUpdateRequest covers self-service edits. Email, CPF and the
// active flag are not self-editable.
type GuardianProfileUpdateRequest struct {
	Name    *string `json:"name,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
}

// GuardianAdminUpdateRequest covers admin edits, which may also change email,
// CPF and the active flag.
type GuardianAdminUpdateRequest struct {
	Name    *string `json:"name,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
	Email   *string `json:"email,omitempty"`
	CPF     *string `json:"cpf,omitempty"`
	Active  *bool   `json:"active,omitempty"`
}

// PasswordChangeRequest requires re-verification of the current password.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// GuardianListResponse is the simplified response for guardian lists.
type GuardianListResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	CPF           string    `json:"cpf"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email"`
	Active        bool      `json:"active"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

// GuardianDetailResponse includes the guardian's children.
type GuardianDetailResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	CPF           string    `json:"cpf"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email"`
	Address       string    `json:"address"`
	Active        bool      `json:"active"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	Children      []Child   `json:"children"`
}

// ToListResponse converts Guardian to GuardianListResponse
func (g *Guardian) ToListResponse() GuardianListResponse {
	return GuardianListResponse{
		ID:            g.ID,
		Name:          g.Name,
		CPF:           g.CPF,
		Phone:         g.Phone,
		Email:         g.Email,
		Active:        g.Active,
		EmailVerified: g.EmailVerified,
		CreatedAt:     g.CreatedAt,
	}
}

// ToDetailResponse converts Guardian plus children to GuardianDetailResponse
func (g *Guardian) ToDetailResponse(children []Child) GuardianDetailResponse {
	return GuardianDetailResponse{
		ID:            g.ID,
		Name:          g.Name,
		CPF:           g.CPF,
		Phone:         g.Phone,
		Email:         g.Email,
		Address:       g.Address,
		Active:        g.Active,
		EmailVerified: g.EmailVerified,
		CreatedAt:     g.CreatedAt,
		Children:      children,
	}
}
