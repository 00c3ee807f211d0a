package dto

import (
	"time"

	"github.com/yigit/uniconsult/internal/app/models"
	"github.com/yigit/uniconsult/internal/pkg/helpers"
)

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest is a self-registration. Admin accounts cannot be created this way.
type RegisterRequest struct {
	Name       string          `json:"name" binding:"required,notblank,max=255"`
	Email      string          `json:"email" binding:"required,email"`
	Password   string          `json:"password" binding:"required,min=8"`
	Role       models.RoleType `json:"role" binding:"required,oneof=student faculty"`
	StudentID  string          `json:"student_id" binding:"omitempty,max=64"`
	FacultyID  string          `json:"faculty_id" binding:"omitempty,max=64"`
	Department string          `json:"department" binding:"omitempty,max=255"`
}

// NewUser maps the request onto a user, keeping only the identifiers that
// belong to the chosen role
func (r *RegisterRequest) NewUser() *models.User {
	u := &models.User{
		Name:     r.Name,
		Email:    r.Email,
		RoleType: r.Role,
	}
	switch r.Role {
	case models.RoleStudent:
		u.StudentID = helpers.NilIfBlank(r.StudentID)
	case models.RoleFaculty:
		u.FacultyID = helpers.NilIfBlank(r.FacultyID)
		u.Department = helpers.NilIfBlank(r.Department)
	}
	return u
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType" example:"Bearer"`
	ExpiresIn   int64     `json:"expiresIn"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token TokenResponse `json:"token"`
	User  UserResponse  `json:"user"`
}
