package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/eparask/courselab/internal/app/controllers"
	"github.com/eparask/courselab/internal/app/models"
	"github.com/eparask/courselab/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	courseController *controllers.CourseController,
	csController *controllers.CourseSemesterController,
	sessionController *controllers.LabSessionController,
	faController *controllers.FinalAssignmentController,
	dashboardController *controllers.DashboardController,
	exportController *controllers.ExportController,
	studentController *controllers.StudentController,
	authMiddleware *middleware.AuthMiddleware,
) {
	v1 := router.Group("/api/v1")

	// --- Public auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/refresh", authController.RefreshToken)
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.POST("/auth/logout", authController.Logout)
		authenticated.GET("/auth/me", authController.GetProfile)

		// Course catalog, readable by any authenticated user
		authenticated.GET("/courses", courseController.ListCourses)
		authenticated.GET("/courses/:id", courseController.GetCourse)

		// Teacher-only routes
		teacher := authenticated.Group("/teacher")
		teacher.Use(authMiddleware.RoleRequired(string(models.RoleTeacher)))
		{
			semesters := teacher.Group("/course-semesters")
			{
				semesters.POST("", csController.Create)
				semesters.GET("", csController.List)
				semesters.GET("/:id", csController.Get)
				semesters.DELETE("/:id", csController.Delete)

				semesters.GET("/:id/students", csController.ListStudents)
				semesters.POST("/:id/students", csController.EnrollStudent)
				semesters.DELETE("/:id/students/:studentId", csController.UnenrollStudent)

				semesters.POST("/:id/lab-sessions", sessionController.CreateSession)
				semesters.GET("/:id/lab-sessions", sessionController.ListSessions)

				semesters.POST("/:id/final-assignment", faController.Create)
				semesters.GET("/:id/final-assignment", faController.Get)
				semesters.PUT("/:id/final-assignment", faController.Update)
				semesters.DELETE("/:id/final-assignment", faController.Delete)
				semesters.GET("/:id/final-assignment/results", faController.ListResults)
				semesters.PUT("/:id/final-assignment/results", faController.UpdateResults)

				semesters.GET("/:id/export", exportController.ExportCourseSemester)
			}

			sessions := teacher.Group("/lab-sessions")
			{
				sessions.DELETE("/:sessionId", sessionController.DeleteSession)
				sessions.PUT("/:sessionId/report", sessionController.UpdateReport)
				sessions.GET("/:sessionId/roster", sessionController.GetRoster)
				sessions.PUT("/:sessionId/roster", sessionController.UpdateRoster)
			}

			teacher.GET("/dashboard", dashboardController.GetStats)
			teacher.GET("/dashboard/export", exportController.ExportDashboard)
		}

		// Student-only routes
		student := authenticated.Group("/student")
		student.Use(authMiddleware.RoleRequired(string(models.RoleStudent)))
		{
			student.GET("/courses", studentController.ListMyCourses)
			student.GET("/courses/:id", studentController.GetMyCourseDetail)
		}
	}
}
