package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/eparask/courselab/internal/app/models/dto"
	"github.com/eparask/courselab/internal/app/services"
	"github.com/eparask/courselab/internal/middleware"
)

// DashboardController serves the teacher dashboard aggregates
type DashboardController struct {
	dashboardService *services.DashboardService
	logger           zerolog.Logger
}

// NewDashboardController creates a new DashboardController
func NewDashboardController(dashboardService *services.DashboardService, logger zerolog.Logger) *DashboardController {
	return &DashboardController{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// GetStats returns aggregated statistics over the caller's offerings
// @Summary Teacher dashboard statistics
// @Description Aggregates counts, grading progress and a weekly grading trend over the caller's offerings, optionally narrowed to one offering
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param days query int false "Upcoming window in days (3, 7, 14 or 30)" default(7)
// @Param course query int false "Course semester ID to narrow to; 0 or absent means all owned"
// @Success 200 {object} dto.APIResponse{data=models.DashboardStats} "Dashboard statistics"
// @Router /teacher/dashboard [get]
func (c *DashboardController) GetStats(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	days := services.NormalizeDays(queryInt(ctx, "days", services.DefaultDashboardDays))
	courseFilter := queryCourseFilter(ctx)

	stats, err := c.dashboardService.ComputeStats(ctx.Request.Context(), userID, days, courseFilter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(stats))
}
