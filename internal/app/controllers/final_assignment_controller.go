package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/eparask/courselab/internal/app/models/dto"
	"github.com/eparask/courselab/internal/app/services"
	"github.com/eparask/courselab/internal/middleware"
)

// FinalAssignmentController handles the final assignment of an offering and
// its per-student results
type FinalAssignmentController struct {
	faService *services.FinalAssignmentService
	logger    zerolog.Logger
}

// NewFinalAssignmentController creates a new FinalAssignmentController
func NewFinalAssignmentController(faService *services.FinalAssignmentService, logger zerolog.Logger) *FinalAssignmentController {
	return &FinalAssignmentController{
		faService: faService,
		logger:    logger,
	}
}

// Create attaches a final assignment to an offering
// @Summary Create the final assignment
// @Description Each offering has at most one final assignment
// @Tags final-assignment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course semester ID"
// @Param request body dto.FinalAssignmentRequest true "Assignment details"
// @Success 201 {object} dto.APIResponse{data=models.FinalAssignment} "Assignment created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format or date"
// @Failure 404 {object} dto.ErrorResponse "Offering not found"
// @Failure 409 {object} dto.ErrorResponse "Assignment already exists"
// @Router /teacher/course-semesters/{id}/final-assignment [post]
func (c *FinalAssignmentController) Create(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	semesterID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.FinalAssignmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	assignment, err := c.faService.Create(ctx.Request.Context(), semesterID, userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(assignment))
}

// Get returns the offering's final assignment
// @Summary Get the final assignment
// @Tags final-assignment
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course semester ID"
// @Success 200 {object} dto.APIResponse{data=models.FinalAssignment} "Assignment"
// @Failure 404 {object} dto.ErrorResponse "Offering or assignment not found"
// @Router /teacher/course-semesters/{id}/final-assignment [get]
func (c *FinalAssignmentController) Get(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	semesterID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	assignment, err := c.faService.Get(ctx.Request.Context(), semesterID, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(assignment))
}

// Update edits the offering's final assignment
// @Summary Update the final assignment
// @Tags final-assignment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course semester ID"
// @Param request body dto.FinalAssignmentRequest true "Assignment changes"
// @Success 200 {object} dto.APIResponse{data=models.FinalAssignment} "Updated assignment"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format or date"
// @Failure 404 {object} dto.ErrorResponse "Offering or assignment not found"
// @Router /teacher/course-semesters/{id}/final-assignment [put]
func (c *FinalAssignmentController) Update(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	semesterID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.FinalAssignmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	assignment, err := c.faService.Update(ctx.Request.Context(), semesterID, userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(assignment))
}

// Delete removes the offering's final assignment and all results
// @Summary Delete the final assignment
// @Tags final-assignment
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course semester ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Assignment deleted"
// @Failure 404 {object} dto.ErrorResponse "Offering or assignment not found"
// @Router /teacher/course-semesters/{id}/final-assignment [delete]
func (c *FinalAssignmentController) Delete(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	semesterID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.faService.Delete(ctx.Request.Context(), semesterID, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SuccessResponse{Message: "final assignment deleted"}))
}

// ListResults returns per-student final assignment results
// @Summary List final assignment results
// @Tags final-assignment
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course semester ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.FinalResultRow} "Result rows"
// @Failure 404 {object} dto.ErrorResponse "Offering or assignment not found"
// @Router /teacher/course-semesters/{id}/final-assignment/results [get]
func (c *FinalAssignmentController) ListResults(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	semesterID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	results, err := c.faService.ListResults(ctx.Request.Context(), semesterID, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(results))
}

// UpdateResults applies a batch of submission and grade changes
// @Summary Update final assignment results
// @Description Applies submitted flags and grades; grades are clamped to the assignment's max and entries for non-enrolled students are skipped
// @Tags final-assignment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course semester ID"
// @Param request body dto.UpdateFinalResultsRequest true "Result entries"
// @Success 200 {object} dto.APIResponse{data=[]dto.FinalResultRow} "Results after the update"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 404 {object} dto.ErrorResponse "Offering or assignment not found"
// @Router /teacher/course-semesters/{id}/final-assignment/results [put]
func (c *FinalAssignmentController) UpdateResults(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	semesterID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateFinalResultsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	results, err := c.faService.UpdateResults(ctx.Request.Context(), semesterID, userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(results))
}
