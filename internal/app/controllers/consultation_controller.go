package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	authz "github.com/yigit/uniconsult/internal/app/auth"
	"github.com/yigit/uniconsult/internal/app/models/dto"
	"github.com/yigit/uniconsult/internal/app/services"
	"github.com/yigit/uniconsult/internal/middleware"
	"github.com/yigit/uniconsult/internal/pkg/helpers"
)

// ConsultationController handles consultation booking and lifecycle endpoints
type ConsultationController struct {
	consultationService services.ConsultationService
	logger              zerolog.Logger
}

// NewConsultationController creates a new ConsultationController
func NewConsultationController(consultationService services.ConsultationService, logger zerolog.Logger) *ConsultationController {
	return &ConsultationController{
		consultationService: consultationService,
		logger:              logger,
	}
}

// ListConsultations godoc
// @Summary List consultations
// @Description Returns consultations newest slot first. Exactly one of student_id, faculty_id or all=true is required; students and faculty may only list their own, all=true is admin only.
// @Tags consultations
// @Produce json
// @Security BearerAuth
// @Param student_id query int false "Student user ID"
// @Param faculty_id query int false "Faculty user ID"
// @Param all query bool false "List every consultation (admin)"
// @Param status query string false "Filter by status" Enums(Scheduled, Cancelled, Completed)
// @Success 200 {object} dto.APIResponse{data=[]models.Consultation} "Consultations"
// @Failure 400 {object} dto.ErrorResponse "Missing or conflicting filters"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 403 {object} dto.ErrorResponse "Not your consultations"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /consultations [get]
func (c *ConsultationController) ListConsultations(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	var q dto.ListConsultationsQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	list, err := c.consultationService.List(ctx.Request.Context(), p, services.ListParams{
		ListScope: authz.ListScope{StudentID: q.StudentID, FacultyID: q.FacultyID, All: q.All},
		Status:    q.Status,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(list))
}

// BookConsultation godoc
// @Summary Book a consultation
// @Description Books a future slot with a faculty member. A slot holds at most one scheduled consultation.
// @Tags consultations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BookConsultationRequest true "Booking"
// @Success 201 {object} dto.APIResponse{data=models.Consultation} "Consultation booked"
// @Failure 400 {object} dto.ErrorResponse "Invalid datetime, past slot or unknown faculty member"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 403 {object} dto.ErrorResponse "Students book only for themselves"
// @Failure 409 {object} dto.ErrorResponse "Time slot already booked"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /consultations [post]
func (c *ConsultationController) BookConsultation(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	var req dto.BookConsultationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	at, err := helpers.ParseDateTime(req.Datetime)
	if err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "datetime must be a valid date and time").
			WithField("datetime").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}

	consultation, err := c.consultationService.Book(ctx.Request.Context(), p, req.StudentID, req.FacultyID, at)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Success:   true,
		Message:   "Consultation booked",
		Data:      consultation,
		Timestamp: time.Now(),
	})
}

// CancelConsultation godoc
// @Summary Cancel a consultation
// @Description Cancels a scheduled consultation. The caller must be its student or faculty member and cancelled_by_role must match the caller.
// @Tags consultations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Consultation ID"
// @Param request body dto.CancelConsultationRequest true "Cancellation"
// @Success 200 {object} dto.APIResponse{data=models.Consultation} "Consultation cancelled"
// @Failure 400 {object} dto.ErrorResponse "Missing reason or role"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 403 {object} dto.ErrorResponse "Not a participant"
// @Failure 404 {object} dto.ErrorResponse "Consultation does not exist or is not scheduled"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /consultations/{id}/cancel [patch]
func (c *ConsultationController) CancelConsultation(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.CancelConsultationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	consultation, err := c.consultationService.Cancel(ctx.Request.Context(), p, id, req.Reason, req.CancelledByRole)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Success:   true,
		Message:   "Consultation cancelled",
		Data:      consultation,
		Timestamp: time.Now(),
	})
}

// CompleteConsultation godoc
// @Summary Complete a consultation
// @Description Marks a scheduled consultation as held. Only its faculty member may do so.
// @Tags consultations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Consultation ID"
// @Success 200 {object} dto.APIResponse{data=models.Consultation} "Consultation completed"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 403 {object} dto.ErrorResponse "Not the consultation's faculty member"
// @Failure 404 {object} dto.ErrorResponse "Consultation does not exist or is not scheduled"
// @Router /consultations/{id}/complete [patch]
func (c *ConsultationController) CompleteConsultation(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	consultation, err := c.consultationService.Complete(ctx.Request.Context(), p, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{
		Success:   true,
		Message:   "Consultation completed",
		Data:      consultation,
		Timestamp: time.Now(),
	})
}
