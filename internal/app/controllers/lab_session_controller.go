package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/eparask/courselab/internal/app/models/dto"
	"github.com/eparask/courselab/internal/app/services"
	"github.com/eparask/courselab/internal/middleware"
)

// LabSessionController handles lab sessions, their reports and rosters
type LabSessionController struct {
	sessionService *services.LabSessionService
	logger         zerolog.Logger
}

// NewLabSessionController creates a new LabSessionController
func NewLabSessionController(sessionService *services.LabSessionService, logger zerolog.Logger) *LabSessionController {
	return &LabSessionController{
		sessionService: sessionService,
		logger:         logger,
	}
}

// CreateSession adds a lab session to an offering
// @Summary Create a lab session
// @Description Creates a session and its paired report in one step
// @Tags lab-sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course semester ID"
// @Param request body dto.CreateLabSessionRequest true "Session details"
// @Success 201 {object} dto.APIResponse{data=models.LabSession} "Session created with report"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format or date"
// @Failure 404 {object} dto.ErrorResponse "Offering not found"
// @Failure 409 {object} dto.ErrorResponse "Session name already used in that week"
// @Router /teacher/course-semesters/{id}/lab-sessions [post]
func (c *LabSessionController) CreateSession(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	semesterID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.CreateLabSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	session, err := c.sessionService.CreateSession(ctx.Request.Context(), semesterID, userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(session))
}

// ListSessions returns an offering's lab sessions
// @Summary List lab sessions
// @Tags lab-sessions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course semester ID"
// @Success 200 {object} dto.APIResponse{data=[]models.LabSession} "Sessions with reports"
// @Failure 404 {object} dto.ErrorResponse "Offering not found"
// @Router /teacher/course-semesters/{id}/lab-sessions [get]
func (c *LabSessionController) ListSessions(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	semesterID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	sessions, err := c.sessionService.ListSessions(ctx.Request.Context(), semesterID, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(sessions))
}

// DeleteSession removes a lab session together with its report and roster
// @Summary Delete a lab session
// @Tags lab-sessions
// @Produce json
// @Security BearerAuth
// @Param sessionId path int true "Lab session ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Session deleted"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /teacher/lab-sessions/{sessionId} [delete]
func (c *LabSessionController) DeleteSession(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	sessionID, ok := pathID(ctx, "sessionId")
	if !ok {
		return
	}

	if err := c.sessionService.DeleteSession(ctx.Request.Context(), sessionID, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SuccessResponse{Message: "lab session deleted"}))
}

// UpdateReport edits the report paired with a session
// @Summary Update a lab report
// @Tags lab-sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sessionId path int true "Lab session ID"
// @Param request body dto.UpdateLabReportRequest true "Report changes"
// @Success 200 {object} dto.APIResponse{data=models.LabReport} "Updated report"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format or date"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /teacher/lab-sessions/{sessionId}/report [put]
func (c *LabSessionController) UpdateReport(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	sessionID, ok := pathID(ctx, "sessionId")
	if !ok {
		return
	}

	var req dto.UpdateLabReportRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	report, err := c.sessionService.UpdateReport(ctx.Request.Context(), sessionID, userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(report))
}

// GetRoster returns per-student attendance and grades for a session
// @Summary Get a session roster
// @Tags lab-sessions
// @Produce json
// @Security BearerAuth
// @Param sessionId path int true "Lab session ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.RosterRow} "Roster rows"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /teacher/lab-sessions/{sessionId}/roster [get]
func (c *LabSessionController) GetRoster(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	sessionID, ok := pathID(ctx, "sessionId")
	if !ok {
		return
	}

	roster, err := c.sessionService.GetRoster(ctx.Request.Context(), sessionID, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(roster))
}

// UpdateRoster applies a batch of attendance and grade changes
// @Summary Update a session roster
// @Description Applies attendance and grade entries; grades are clamped to the report's max and entries for non-enrolled students are skipped
// @Tags lab-sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sessionId path int true "Lab session ID"
// @Param request body dto.UpdateRosterRequest true "Roster entries"
// @Success 200 {object} dto.APIResponse{data=[]dto.RosterRow} "Roster after the update"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /teacher/lab-sessions/{sessionId}/roster [put]
func (c *LabSessionController) UpdateRoster(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	sessionID, ok := pathID(ctx, "sessionId")
	if !ok {
		return
	}

	var req dto.UpdateRosterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	roster, err := c.sessionService.UpdateRoster(ctx.Request.Context(), sessionID, userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(roster))
}
