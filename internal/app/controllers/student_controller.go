package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/eparask/courselab/internal/app/models/dto"
	"github.com/eparask/courselab/internal/app/services"
	"github.com/eparask/courselab/internal/middleware"
)

// StudentController serves the student's own view of enrolled offerings
type StudentController struct {
	studentService *services.StudentService
	logger         zerolog.Logger
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService *services.StudentService, logger zerolog.Logger) *StudentController {
	return &StudentController{
		studentService: studentService,
		logger:         logger,
	}
}

// ListMyCourses returns the offerings the student is enrolled in
// @Summary List own enrollments
// @Tags student
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.CourseSemester} "Enrolled offerings"
// @Router /student/courses [get]
func (c *StudentController) ListMyCourses(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	semesters, err := c.studentService.ListMyCourses(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(semesters))
}

// GetMyCourseDetail returns the student's sessions, attendance and grades
// for one enrolled offering
// @Summary Get own course detail
// @Description Returns per-session presence and grades, overall attendance percentage and the final assignment result
// @Tags student
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course semester ID"
// @Success 200 {object} dto.APIResponse{data=dto.StudentCourseDetail} "Course detail"
// @Failure 404 {object} dto.ErrorResponse "Offering not found or not enrolled"
// @Router /student/courses/{id} [get]
func (c *StudentController) GetMyCourseDetail(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	semesterID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	detail, err := c.studentService.GetMyCourseDetail(ctx.Request.Context(), semesterID, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(detail))
}
