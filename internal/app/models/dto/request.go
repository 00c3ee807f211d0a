package dto

import "github.com/yigit/uniconsult/internal/app/models"

// BookConsultationRequest books a slot. Datetime accepts RFC 3339 or a
// datetime-local value read as UTC.
type BookConsultationRequest struct {
	StudentID int64  `json:"student_id" binding:"required,min=1"`
	FacultyID int64  `json:"faculty_id" binding:"required,min=1"`
	Datetime  string `json:"datetime" binding:"required" example:"2030-03-04T10:30:00Z"`
}

// CancelConsultationRequest cancels a scheduled consultation
type CancelConsultationRequest struct {
	Reason          string          `json:"reason" binding:"required,notblank,max=1000"`
	CancelledByRole models.RoleType `json:"cancelled_by_role" binding:"required,oneof=student faculty"`
}

// ListConsultationsQuery is the query string of GET /consultations
type ListConsultationsQuery struct {
	StudentID int64                     `form:"student_id" binding:"omitempty,min=1"`
	FacultyID int64                     `form:"faculty_id" binding:"omitempty,min=1"`
	All       bool                      `form:"all"`
	Status    models.ConsultationStatus `form:"status" binding:"omitempty,consultation_status"`
}

// ReportQuery narrows the admin consultation report
type ReportQuery struct {
	FacultyID int64                     `form:"faculty_id" binding:"omitempty,min=1"`
	Status    models.ConsultationStatus `form:"status" binding:"omitempty,consultation_status"`
}
