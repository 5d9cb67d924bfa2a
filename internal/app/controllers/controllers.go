// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/eparask/courselab/internal/app/models/dto"
	"github.com/eparask/courselab/internal/middleware"
)

// pathID parses a positive int64 path parameter. On failure it writes a 400
// response and returns ok=false.
func pathID(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid path parameter")
		errorDetail = errorDetail.WithField(name).WithDetails(name + " must be a positive integer")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}

// currentUserID reads the authenticated user's ID from the request context.
// On failure it writes a 401 response and returns ok=false.
func currentUserID(ctx *gin.Context) (int64, bool) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return userID, true
}

// queryInt parses an optional integer query parameter, returning def when
// the parameter is absent or malformed.
func queryInt(ctx *gin.Context, name string, def int) int {
	raw := ctx.Query(name)
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return value
}

// queryCourseFilter parses the optional course offering filter. Absent or
// "0" means no filter.
func queryCourseFilter(ctx *gin.Context) *int64 {
	raw := ctx.Query("course")
	if raw == "" || raw == "0" {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil
	}
	return &id
}
