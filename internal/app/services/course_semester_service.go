package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/eparask/courselab/internal/app/models"
	"github.com/eparask/courselab/internal/app/models/dto"
	"github.com/eparask/courselab/internal/app/repositories"
	"github.com/eparask/courselab/internal/pkg/apperrors"
)

// CourseSemesterService handles teacher-owned course offerings and their
// enrollment list
type CourseSemesterService struct {
	csRepo     repositories.CourseSemesterRepository
	courseRepo repositories.CourseRepository
	userRepo   repositories.UserRepository
	logger     zerolog.Logger
}

// NewCourseSemesterService creates a new CourseSemesterService
func NewCourseSemesterService(
	csRepo repositories.CourseSemesterRepository,
	courseRepo repositories.CourseRepository,
	userRepo repositories.UserRepository,
	logger zerolog.Logger,
) *CourseSemesterService {
	return &CourseSemesterService{
		csRepo:     csRepo,
		courseRepo: courseRepo,
		userRepo:   userRepo,
		logger:     logger,
	}
}

// Create opens a new offering of a catalog course owned by the teacher
func (s *CourseSemesterService) Create(ctx context.Context, ownerID int64, req *dto.CreateCourseSemesterRequest) (*models.CourseSemester, error) {
	if !models.ValidSemester(req.Semester) {
		return nil, apperrors.NewBadRequestError("semester must be WINTER or SPRING")
	}

	course, err := s.courseRepo.GetCourseByID(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}

	cs := &models.CourseSemester{
		CourseID:        course.ID,
		Year:            req.Year,
		Semester:        req.Semester,
		EnrollmentLimit: req.EnrollmentLimit,
		OwnerID:         ownerID,
	}

	if _, err := s.csRepo.Create(ctx, cs); err != nil {
		return nil, err
	}

	cs.Course = course
	s.logger.Info().Int64("semesterID", cs.ID).Str("course", course.Code).Int("year", cs.Year).Msg("Course offering created")

	return cs, nil
}

// ListOwned returns the teacher's offerings
func (s *CourseSemesterService) ListOwned(ctx context.Context, ownerID int64) ([]*models.CourseSemester, error) {
	return s.csRepo.ListByOwner(ctx, ownerID)
}

// GetOwned fetches one offering and enforces ownership. A foreign offering
// is reported as not found, not as forbidden.
func (s *CourseSemesterService) GetOwned(ctx context.Context, semesterID, ownerID int64) (*models.CourseSemester, error) {
	return ownedSemester(ctx, s.csRepo, semesterID, ownerID)
}

// ownedSemester fetches an offering and hides foreign ones behind not found
func ownedSemester(ctx context.Context, csRepo repositories.CourseSemesterRepository, semesterID, ownerID int64) (*models.CourseSemester, error) {
	cs, err := csRepo.GetByID(ctx, semesterID)
	if err != nil {
		return nil, err
	}
	if cs.OwnerID != ownerID {
		return nil, apperrors.ErrCourseSemesterNotFound
	}
	return cs, nil
}

// Delete removes an owned offering with all dependent data
func (s *CourseSemesterService) Delete(ctx context.Context, semesterID, ownerID int64) error {
	if _, err := s.GetOwned(ctx, semesterID, ownerID); err != nil {
		return err
	}
	return s.csRepo.Delete(ctx, semesterID)
}

// EnrollStudent adds a student to an owned offering, honoring the
// enrollment limit when one is set
func (s *CourseSemesterService) EnrollStudent(ctx context.Context, semesterID, ownerID int64, req *dto.EnrollStudentRequest) error {
	cs, err := s.GetOwned(ctx, semesterID, ownerID)
	if err != nil {
		return err
	}

	student, err := s.userRepo.GetUserByID(ctx, req.StudentID)
	if err != nil {
		return err
	}
	if !student.IsStudent() {
		return apperrors.NewBadRequestError("only students can be enrolled")
	}

	if cs.EnrollmentLimit != nil {
		count, err := s.csRepo.CountStudents(ctx, semesterID)
		if err != nil {
			return err
		}
		if count >= *cs.EnrollmentLimit {
			return apperrors.ErrEnrollmentFull
		}
	}

	if err := s.csRepo.EnrollStudent(ctx, semesterID, student.ID); err != nil {
		return err
	}

	s.logger.Info().Int64("semesterID", semesterID).Int64("studentID", student.ID).Msg("Student enrolled")
	return nil
}

// UnenrollStudent removes a student from an owned offering
func (s *CourseSemesterService) UnenrollStudent(ctx context.Context, semesterID, ownerID, studentID int64) error {
	if _, err := s.GetOwned(ctx, semesterID, ownerID); err != nil {
		return err
	}
	return s.csRepo.UnenrollStudent(ctx, semesterID, studentID)
}

// ListStudents returns the students enrolled in an owned offering
func (s *CourseSemesterService) ListStudents(ctx context.Context, semesterID, ownerID int64) ([]*models.User, error) {
	if _, err := s.GetOwned(ctx, semesterID, ownerID); err != nil {
		return nil, err
	}
	return s.csRepo.ListStudents(ctx, semesterID)
}
