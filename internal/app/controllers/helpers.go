package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	authz "github.com/yigit/uniconsult/internal/app/auth"
	"github.com/yigit/uniconsult/internal/app/models/dto"
	"github.com/yigit/uniconsult/internal/middleware"
)

// principal returns the verified caller or writes a 401
func principal(ctx *gin.Context) (authz.Principal, bool) {
	p, ok := middleware.Principal(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
	}
	return p, ok
}

// pathID parses a positive int64 path parameter or writes a 400
func pathID(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name).WithField(name)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return 0, false
	}
	return id, true
}
