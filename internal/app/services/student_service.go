package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/eparask/courselab/internal/app/models"
	"github.com/eparask/courselab/internal/app/models/dto"
	"github.com/eparask/courselab/internal/app/repositories"
	"github.com/eparask/courselab/internal/pkg/apperrors"
)

// StudentService exposes a student's own view of the offerings they are
// enrolled in. Students only ever see their own attendance and grades.
type StudentService struct {
	csRepo    repositories.CourseSemesterRepository
	faRepo    repositories.FinalAssignmentRepository
	statsRepo repositories.StatsRepository
	logger    zerolog.Logger
}

// NewStudentService creates a new StudentService
func NewStudentService(
	csRepo repositories.CourseSemesterRepository,
	faRepo repositories.FinalAssignmentRepository,
	statsRepo repositories.StatsRepository,
	logger zerolog.Logger,
) *StudentService {
	return &StudentService{
		csRepo:    csRepo,
		faRepo:    faRepo,
		statsRepo: statsRepo,
		logger:    logger,
	}
}

// ListMyCourses returns the offerings the student is enrolled in
func (s *StudentService) ListMyCourses(ctx context.Context, studentID int64) ([]*models.CourseSemester, error) {
	return s.csRepo.ListByStudent(ctx, studentID)
}

// GetMyCourseDetail returns the student's own per-session attendance and
// grades for one offering plus their final assignment state. An offering
// the student is not enrolled in is reported as not found.
func (s *StudentService) GetMyCourseDetail(ctx context.Context, semesterID, studentID int64) (*dto.StudentCourseDetail, error) {
	cs, err := s.csRepo.GetByID(ctx, semesterID)
	if err != nil {
		return nil, err
	}

	enrolled, err := s.csRepo.IsStudentEnrolled(ctx, semesterID, studentID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, apperrors.ErrCourseSemesterNotFound
	}

	rows, err := s.statsRepo.StudentSessionRows(ctx, semesterID, studentID)
	if err != nil {
		return nil, err
	}

	detail := &dto.StudentCourseDetail{
		CourseSemester: cs,
		Rows:           rows,
		AttendancePct:  attendancePct(rows),
	}

	fa, err := s.faRepo.GetBySemesterID(ctx, semesterID)
	if err != nil {
		if err != apperrors.ErrFinalAssignmentNotFound {
			return nil, err
		}
		return detail, nil
	}
	detail.Assignment = fa

	results, err := s.faRepo.ListResults(ctx, fa.ID, semesterID)
	if err != nil {
		return nil, err
	}
	for _, row := range results {
		if row.StudentID == studentID {
			detail.Result = &models.FinalAssignmentResult{
				FinalAssignmentID: fa.ID,
				StudentID:         studentID,
				Submitted:         row.Submitted,
				Grade:             row.Grade,
			}
			break
		}
	}

	return detail, nil
}

// attendancePct computes the rounded share of attended sessions; exact
// halves round up. Nil when there are no sessions at all.
func attendancePct(rows []dto.StudentSessionRow) *int {
	if len(rows) == 0 {
		return nil
	}
	present := 0
	for _, row := range rows {
		if row.Present {
			present++
		}
	}
	pct := (present*100 + len(rows)/2) / len(rows)
	return &pct
}
