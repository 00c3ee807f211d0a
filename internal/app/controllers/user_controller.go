package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/uniconsult/internal/app/models/dto"
	"github.com/yigit/uniconsult/internal/app/services"
	"github.com/yigit/uniconsult/internal/middleware"
)

// AdminController handles administrator endpoints
type AdminController struct {
	adminService services.AdminService
	logger       zerolog.Logger
}

// NewAdminController creates a new AdminController
func NewAdminController(adminService services.AdminService, logger zerolog.Logger) *AdminController {
	return &AdminController{
		adminService: adminService,
		logger:       logger,
	}
}

// ListFaculty godoc
// @Summary List faculty accounts
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.UserResponse} "Faculty members ordered by name"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Router /admin/faculty [get]
func (c *AdminController) ListFaculty(ctx *gin.Context) {
	users, err := c.adminService.ListFaculty(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewUserResponses(users)))
}

// CreateFaculty godoc
// @Summary Create a faculty account
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateFacultyRequest true "Faculty account"
// @Success 201 {object} dto.APIResponse{data=dto.UserResponse} "Faculty account created"
// @Failure 400 {object} dto.ErrorResponse "Missing fields"
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Failure 409 {object} dto.ErrorResponse "Email or faculty ID already exists"
// @Router /admin/faculty [post]
func (c *AdminController) CreateFaculty(ctx *gin.Context) {
	var req dto.CreateFacultyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	user, err := c.adminService.CreateFaculty(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Success:   true,
		Message:   "Faculty account created",
		Data:      dto.NewUserResponse(user),
		Timestamp: time.Now(),
	})
}

// DeleteFaculty godoc
// @Summary Delete a faculty account
// @Description Removes the account with its status and every consultation it took part in
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Faculty user ID"
// @Success 200 {object} dto.APIResponse "Faculty account deleted"
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Failure 404 {object} dto.ErrorResponse "Faculty member not found"
// @Router /admin/faculty/{id} [delete]
func (c *AdminController) DeleteFaculty(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.adminService.DeleteFaculty(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{
		Success:   true,
		Message:   "Faculty account deleted",
		Timestamp: time.Now(),
	})
}

// ListUsers godoc
// @Summary List every user
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.UserResponse} "Users ordered by role and name"
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Router /admin/users [get]
func (c *AdminController) ListUsers(ctx *gin.Context) {
	users, err := c.adminService.ListUsers(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewUserResponses(users)))
}

// ConsultationReport godoc
// @Summary Consultation report
// @Description Consultations with totals per status and per faculty member, plus current faculty availability
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param faculty_id query int false "Only this faculty member"
// @Param status query string false "Only this status" Enums(Scheduled, Cancelled, Completed)
// @Success 200 {object} dto.APIResponse{data=models.ConsultationReport} "Report"
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Router /admin/reports/consultations [get]
func (c *AdminController) ConsultationReport(ctx *gin.Context) {
	var q dto.ReportQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	report, err := c.adminService.ConsultationReport(ctx.Request.Context(), q.FacultyID, q.Status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(report))
}
