package models

import "time"

// FacultyStatus is the single current availability row of a faculty member
type FacultyStatus struct {
	ID          int64              `json:"id" db:"id"`
	FacultyID   int64              `json:"faculty_id" db:"faculty_id"`
	Status      AvailabilityStatus `json:"status" db:"status" example:"Available"`
	LastUpdated time.Time          `json:"last_updated" db:"last_updated"`
	FacultyName string             `json:"name,omitempty" db:"name"`
}
