package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID         int64     `json:"id" db:"id" example:"1"`
	Name       string    `json:"name" db:"name" example:"Dr. Ada Lovelace"`
	Email      string    `json:"email" db:"email" example:"ada@uniconsult.com"`
	Password   string    `json:"-" db:"password"` // bcrypt hash, never serialised
	RoleType   RoleType  `json:"role" db:"role" example:"faculty"`
	StudentID  *string   `json:"student_id,omitempty" db:"student_id" example:"S1001"`
	FacultyID  *string   `json:"faculty_id,omitempty" db:"faculty_id" example:"F001"`
	Department *string   `json:"department,omitempty" db:"department" example:"Computer Science"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// IsFaculty reports whether the user holds the faculty role
func (u *User) IsFaculty() bool {
	return u != nil && u.RoleType == RoleFaculty
}

// IsStudent reports whether the user holds the student role
func (u *User) IsStudent() bool {
	return u != nil && u.RoleType == RoleStudent
}
