package models

import "time"

// Consultation is a booking between one student and one faculty member at one instant
type Consultation struct {
	ID              int64              `json:"id" db:"id"`
	StudentID       int64              `json:"student_id" db:"student_id"`
	FacultyID       int64              `json:"faculty_id" db:"faculty_id"`
	Datetime        time.Time          `json:"datetime" db:"datetime"`
	Status          ConsultationStatus `json:"status" db:"status" example:"Scheduled"`
	Reason          *string            `json:"reason,omitempty" db:"reason"`
	CancelledByRole *RoleType          `json:"cancelled_by_role,omitempty" db:"cancelled_by_role"`
	CreatedAt       time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at" db:"updated_at"`

	// Populated by list queries
	StudentName string `json:"student_name,omitempty" db:"student_name"`
	FacultyName string `json:"faculty_name,omitempty" db:"faculty_name"`
}

// HasParticipant reports whether userID is the student or the faculty member of c
func (c *Consultation) HasParticipant(userID int64) bool {
	return c.StudentID == userID || c.FacultyID == userID
}

// Counterpart returns the other participant of c from userID's point of view
func (c *Consultation) Counterpart(userID int64) int64 {
	if c.StudentID == userID {
		return c.FacultyID
	}
	return c.StudentID
}

// ConsultationFilter selects consultations for listing. Zero values mean "no constraint".
type ConsultationFilter struct {
	StudentID int64
	FacultyID int64
	Status    ConsultationStatus
}

// SlotInstant normalises a requested consultation time: UTC, whole seconds
func SlotInstant(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
