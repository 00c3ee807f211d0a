package dto

import (
	"time"

	"github.com/yigit/uniconsult/internal/app/models"
)

// SetStatusRequest updates a faculty member's availability
type SetStatusRequest struct {
	FacultyID int64                     `json:"faculty_id" binding:"required,min=1"`
	Status    models.AvailabilityStatus `json:"status" binding:"required,availability"`
}

// FacultyStatusResponse is a status row joined with the owner's name
type FacultyStatusResponse struct {
	FacultyID   int64                     `json:"faculty_id"`
	Name        string                    `json:"name,omitempty"`
	Status      models.AvailabilityStatus `json:"status"`
	LastUpdated time.Time                 `json:"last_updated"`
}

// NewFacultyStatusResponse maps a status model
func NewFacultyStatusResponse(s *models.FacultyStatus) FacultyStatusResponse {
	return FacultyStatusResponse{
		FacultyID:   s.FacultyID,
		Name:        s.FacultyName,
		Status:      s.Status,
		LastUpdated: s.LastUpdated,
	}
}

// NewFacultyStatusResponses maps a slice of statuses
func NewFacultyStatusResponses(list []*models.FacultyStatus) []FacultyStatusResponse {
	out := make([]FacultyStatusResponse, 0, len(list))
	for _, s := range list {
		out = append(out, NewFacultyStatusResponse(s))
	}
	return out
}
