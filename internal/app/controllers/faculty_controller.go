package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/uniconsult/internal/app/models/dto"
	"github.com/yigit/uniconsult/internal/app/services"
	"github.com/yigit/uniconsult/internal/middleware"
)

// FacultyStatusController serves faculty availability
type FacultyStatusController struct {
	statusService services.FacultyStatusService
	logger        zerolog.Logger
}

// NewFacultyStatusController creates a new FacultyStatusController
func NewFacultyStatusController(statusService services.FacultyStatusService, logger zerolog.Logger) *FacultyStatusController {
	return &FacultyStatusController{
		statusService: statusService,
		logger:        logger,
	}
}

// ListStatuses godoc
// @Summary List faculty availability
// @Description Current status of every faculty member ordered by name
// @Tags faculty
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.FacultyStatusResponse} "Faculty statuses"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /faculty/status [get]
func (c *FacultyStatusController) ListStatuses(ctx *gin.Context) {
	statuses, err := c.statusService.ListStatuses(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewFacultyStatusResponses(statuses)))
}

// SetStatus godoc
// @Summary Update faculty availability
// @Description Faculty update their own status; admins may update anyone's. Subscribers of /faculty/status/ws are notified.
// @Tags faculty
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SetStatusRequest true "New status"
// @Success 200 {object} dto.APIResponse{data=dto.FacultyStatusResponse} "Status updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid status"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 403 {object} dto.ErrorResponse "Not your status"
// @Failure 404 {object} dto.ErrorResponse "Faculty member not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /faculty/status [post]
func (c *FacultyStatusController) SetStatus(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	var req dto.SetStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	status, err := c.statusService.SetStatus(ctx.Request.Context(), p, req.FacultyID, req.Status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewFacultyStatusResponse(status)))
}
