package dto

import (
	"time"

	"github.com/yigit/uniconsult/internal/app/models"
)

// UserResponse is the public shape of a user. It never carries the password.
type UserResponse struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Role       models.RoleType `json:"role"`
	StudentID  *string         `json:"student_id,omitempty"`
	FacultyID  *string         `json:"faculty_id,omitempty"`
	Department *string         `json:"department,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// NewUserResponse maps a user model into its response form
func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.RoleType,
		StudentID:  u.StudentID,
		FacultyID:  u.FacultyID,
		Department: u.Department,
		CreatedAt:  u.CreatedAt,
	}
}

// NewUserResponses maps a slice of users
func NewUserResponses(users []*models.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}

// CreateFacultyRequest is the admin-issued faculty account form. All fields are required.
type CreateFacultyRequest struct {
	Name       string `json:"name" binding:"required,notblank,max=255"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	FacultyID  string `json:"faculty_id" binding:"required,notblank,max=64"`
	Department string `json:"department" binding:"required,notblank,max=255"`
}

// NewUser maps the request onto a faculty user
func (r *CreateFacultyRequest) NewUser() *models.User {
	facultyID := r.FacultyID
	department := r.Department
	return &models.User{
		Name:       r.Name,
		Email:      r.Email,
		RoleType:   models.RoleFaculty,
		FacultyID:  &facultyID,
		Department: &department,
	}
}
