package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/eparask/courselab/internal/app/models"
	"github.com/eparask/courselab/internal/app/repositories"
)

// CourseService exposes the read-only course catalog
type CourseService struct {
	courseRepo repositories.CourseRepository
	logger     zerolog.Logger
}

// NewCourseService creates a new CourseService
func NewCourseService(courseRepo repositories.CourseRepository, logger zerolog.Logger) *CourseService {
	return &CourseService{
		courseRepo: courseRepo,
		logger:     logger,
	}
}

// ListCourses returns the seeded catalog ordered by code
func (s *CourseService) ListCourses(ctx context.Context) ([]*models.Course, error) {
	return s.courseRepo.ListCourses(ctx)
}

// GetCourse returns one catalog course
func (s *CourseService) GetCourse(ctx context.Context, courseID int64) (*models.Course, error) {
	return s.courseRepo.GetCourseByID(ctx, courseID)
}
