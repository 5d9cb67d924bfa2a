package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/eparask/courselab/internal/app/services"
	"github.com/eparask/courselab/internal/middleware"
)

// ExportController serves dashboard and offering exports as CSV or XLSX
// downloads
type ExportController struct {
	dashboardService *services.DashboardService
	exportService    *services.ExportService
	logger           zerolog.Logger
}

// NewExportController creates a new ExportController
func NewExportController(
	dashboardService *services.DashboardService,
	exportService *services.ExportService,
	logger zerolog.Logger,
) *ExportController {
	return &ExportController{
		dashboardService: dashboardService,
		exportService:    exportService,
		logger:           logger,
	}
}

// ExportDashboard downloads the dashboard statistics as a file
// @Summary Export dashboard statistics
// @Description Streams the dashboard aggregates as CSV or XLSX; a failed workbook build falls back to CSV
// @Tags export
// @Produce text/csv
// @Security BearerAuth
// @Param days query int false "Upcoming window in days (3, 7, 14 or 30)" default(7)
// @Param course query int false "Course semester ID to narrow to; 0 or absent means all owned"
// @Param format query string false "csv or xlsx" default(csv)
// @Success 200 {file} file "Exported statistics"
// @Router /teacher/dashboard/export [get]
func (c *ExportController) ExportDashboard(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	days := services.NormalizeDays(queryInt(ctx, "days", services.DefaultDashboardDays))
	courseFilter := queryCourseFilter(ctx)
	format := ctx.DefaultQuery("format", services.FormatCSV)

	stats, err := c.dashboardService.ComputeStats(ctx.Request.Context(), userID, days, courseFilter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	file, err := c.exportService.ExportDashboard(ctx.Request.Context(), stats, days, courseFilter, format)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	writeFile(ctx, file)
}

// ExportCourseSemester downloads one offering's full data as a file
// @Summary Export a course offering
// @Description Streams the offering's sessions, participations, lab grades and final assignment results as CSV or XLSX
// @Tags export
// @Produce text/csv
// @Security BearerAuth
// @Param id path int true "Course semester ID"
// @Param format query string false "csv or xlsx" default(csv)
// @Success 200 {file} file "Exported offering"
// @Failure 404 {object} dto.ErrorResponse "Offering not found"
// @Router /teacher/course-semesters/{id}/export [get]
func (c *ExportController) ExportCourseSemester(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	semesterID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	format := ctx.DefaultQuery("format", services.FormatCSV)

	file, err := c.exportService.ExportCourseSemester(ctx.Request.Context(), semesterID, userID, format)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	writeFile(ctx, file)
}

func writeFile(ctx *gin.Context, file *services.ExportFile) {
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", file.Filename))
	ctx.Data(http.StatusOK, file.ContentType, file.Content)
}
