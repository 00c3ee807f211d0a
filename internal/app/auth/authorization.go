// Package auth holds the authorization rules shared by services. Authentication
// (tokens, passwords) lives in internal/pkg/auth.
package auth

import (
	"github.com/yigit/uniconsult/internal/app/models"
	"github.com/yigit/uniconsult/internal/pkg/apperrors"
)

// Principal is the verified caller of an operation
type Principal struct {
	UserID int64
	Role   models.RoleType
}

// NewPrincipal builds a principal from a loaded user
func NewPrincipal(u *models.User) Principal {
	return Principal{UserID: u.ID, Role: u.RoleType}
}

func (p Principal) IsAdmin() bool   { return p.Role == models.RoleAdmin }
func (p Principal) IsFaculty() bool { return p.Role == models.RoleFaculty }
func (p Principal) IsStudent() bool { return p.Role == models.RoleStudent }

// ListScope is which consultations a caller asked for. Exactly one field is set.
type ListScope struct {
	StudentID int64
	FacultyID int64
	All       bool
}

// CanListConsultations enforces own-records access for students and faculty.
// all=true is reserved for admins.
func CanListConsultations(p Principal, scope ListScope) error {
	if p.IsAdmin() {
		return nil
	}
	switch {
	case scope.All:
		return apperrors.NewForbiddenError("Only administrators can list all consultations")
	case scope.StudentID != 0:
		if p.IsStudent() && scope.StudentID == p.UserID {
			return nil
		}
		return apperrors.NewForbiddenError("You can only view your own consultations")
	case scope.FacultyID != 0:
		if p.IsFaculty() && scope.FacultyID == p.UserID {
			return nil
		}
		return apperrors.NewForbiddenError("You can only view your own consultations")
	}
	return apperrors.NewForbiddenError("You can only view your own consultations")
}

// CanBookFor allows students to book only for themselves
func CanBookFor(p Principal, studentID int64) error {
	if !p.IsStudent() {
		return apperrors.NewForbiddenError("Only students can book consultations")
	}
	if p.UserID != studentID {
		return apperrors.NewForbiddenError("You can only book consultations for yourself")
	}
	return nil
}

// CanCancel requires the caller to be a participant acting in their own role
func CanCancel(p Principal, c *models.Consultation, cancelledBy models.RoleType) error {
	if cancelledBy != p.Role {
		return apperrors.NewForbiddenError("cancelled_by_role does not match your role")
	}
	switch p.Role {
	case models.RoleStudent:
		if c.StudentID == p.UserID {
			return nil
		}
	case models.RoleFaculty:
		if c.FacultyID == p.UserID {
			return nil
		}
	}
	return apperrors.NewForbiddenError("You are not a participant of this consultation")
}

// CanComplete allows only the consultation's faculty member
func CanComplete(p Principal, c *models.Consultation) error {
	if p.IsFaculty() && c.FacultyID == p.UserID {
		return nil
	}
	return apperrors.NewForbiddenError("Only the consultation's faculty member can complete it")
}

// CanSetStatus allows faculty to update themselves and admins anyone
func CanSetStatus(p Principal, facultyID int64) error {
	if p.IsAdmin() || (p.IsFaculty() && p.UserID == facultyID) {
		return nil
	}
	return apperrors.NewForbiddenError("You can only update your own status")
}
