package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/eparask/courselab/internal/app/models/dto"
	"github.com/eparask/courselab/internal/app/services"
	"github.com/eparask/courselab/internal/middleware"
)

// CourseSemesterController handles a teacher's course offerings and their
// enrollment rosters
type CourseSemesterController struct {
	csService *services.CourseSemesterService
	logger    zerolog.Logger
}

// NewCourseSemesterController creates a new CourseSemesterController
func NewCourseSemesterController(csService *services.CourseSemesterService, logger zerolog.Logger) *CourseSemesterController {
	return &CourseSemesterController{
		csService: csService,
		logger:    logger,
	}
}

// Create opens a new offering of a catalog course
// @Summary Create a course offering
// @Description Opens a (course, year, semester) offering owned by the caller
// @Tags course-semesters
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCourseSemesterRequest true "Offering details"
// @Success 201 {object} dto.APIResponse{data=models.CourseSemester} "Offering created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 404 {object} dto.ErrorResponse "Catalog course not found"
// @Failure 409 {object} dto.ErrorResponse "Offering already exists"
// @Router /teacher/course-semesters [post]
func (c *CourseSemesterController) Create(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req dto.CreateCourseSemesterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	semester, err := c.csService.Create(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(semester))
}

// List returns the caller's offerings
// @Summary List own course offerings
// @Tags course-semesters
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.CourseSemester} "Owned offerings"
// @Router /teacher/course-semesters [get]
func (c *CourseSemesterController) List(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	semesters, err := c.csService.ListOwned(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(semesters))
}

// Get returns one owned offering
// @Summary Get a course offering
// @Tags course-semesters
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course semester ID"
// @Success 200 {object} dto.APIResponse{data=models.CourseSemester} "Offering"
// @Failure 404 {object} dto.ErrorResponse "Offering not found"
// @Router /teacher/course-semesters/{id} [get]
func (c *CourseSemesterController) Get(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	semesterID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	semester, err := c.csService.GetOwned(ctx.Request.Context(), semesterID, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(semester))
}

// Delete removes an owned offering and everything under it
// @Summary Delete a course offering
// @Tags course-semesters
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course semester ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Offering deleted"
// @Failure 404 {object} dto.ErrorResponse "Offering not found"
// @Router /teacher/course-semesters/{id} [delete]
func (c *CourseSemesterController) Delete(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	semesterID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.csService.Delete(ctx.Request.Context(), semesterID, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SuccessResponse{Message: "course semester deleted"}))
}

// EnrollStudent adds a student to an offering's roster
// @Summary Enroll a student
// @Description Adds a student account to the offering, honoring the enrollment limit
// @Tags course-semesters
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course semester ID"
// @Param request body dto.EnrollStudentRequest true "Student to enroll"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Student enrolled"
// @Failure 400 {object} dto.ErrorResponse "Account is not a student"
// @Failure 404 {object} dto.ErrorResponse "Offering or student not found"
// @Failure 409 {object} dto.ErrorResponse "Already enrolled or offering full"
// @Router /teacher/course-semesters/{id}/students [post]
func (c *CourseSemesterController) EnrollStudent(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	semesterID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.EnrollStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	if err := c.csService.EnrollStudent(ctx.Request.Context(), semesterID, userID, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SuccessResponse{Message: "student enrolled"}))
}

// UnenrollStudent removes a student from an offering's roster
// @Summary Unenroll a student
// @Tags course-semesters
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course semester ID"
// @Param studentId path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Student removed"
// @Failure 404 {object} dto.ErrorResponse "Offering not found or student not enrolled"
// @Router /teacher/course-semesters/{id}/students/{studentId} [delete]
func (c *CourseSemesterController) UnenrollStudent(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	semesterID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	studentID, ok := pathID(ctx, "studentId")
	if !ok {
		return
	}

	if err := c.csService.UnenrollStudent(ctx.Request.Context(), semesterID, userID, studentID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SuccessResponse{Message: "student removed"}))
}

// ListStudents returns the enrolled students of an offering
// @Summary List enrolled students
// @Tags course-semesters
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course semester ID"
// @Success 200 {object} dto.APIResponse{data=[]models.User} "Enrolled students"
// @Failure 404 {object} dto.ErrorResponse "Offering not found"
// @Router /teacher/course-semesters/{id}/students [get]
func (c *CourseSemesterController) ListStudents(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	semesterID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	students, err := c.csService.ListStudents(ctx.Request.Context(), semesterID, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(students))
}
