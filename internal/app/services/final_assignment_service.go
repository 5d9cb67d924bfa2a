package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/eparask/courselab/internal/app/models"
	"github.com/eparask/courselab/internal/app/models/dto"
	"github.com/eparask/courselab/internal/app/repositories"
	"github.com/eparask/courselab/internal/pkg/apperrors"
	"github.com/eparask/courselab/internal/pkg/helpers"
)

// FinalAssignmentService handles the single final assignment attached to an
// offering and its per-student results
type FinalAssignmentService struct {
	faRepo repositories.FinalAssignmentRepository
	csRepo repositories.CourseSemesterRepository
	logger zerolog.Logger
}

// NewFinalAssignmentService creates a new FinalAssignmentService
func NewFinalAssignmentService(
	faRepo repositories.FinalAssignmentRepository,
	csRepo repositories.CourseSemesterRepository,
	logger zerolog.Logger,
) *FinalAssignmentService {
	return &FinalAssignmentService{
		faRepo: faRepo,
		csRepo: csRepo,
		logger: logger,
	}
}

// Create attaches the final assignment to an owned offering
func (s *FinalAssignmentService) Create(ctx context.Context, semesterID, ownerID int64, req *dto.FinalAssignmentRequest) (*models.FinalAssignment, error) {
	if _, err := ownedSemester(ctx, s.csRepo, semesterID, ownerID); err != nil {
		return nil, err
	}

	dueDate, err := helpers.ParseDate(req.DueDate)
	if err != nil {
		return nil, apperrors.NewBadRequestError(err.Error())
	}

	fa := &models.FinalAssignment{
		CourseSemesterID: semesterID,
		Title:            req.Title,
		MaxGrade:         req.MaxGrade,
		DueDate:          dueDate,
	}

	if _, err := s.faRepo.Create(ctx, fa); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("assignmentID", fa.ID).Int64("semesterID", semesterID).Msg("Final assignment created")
	return fa, nil
}

// Get returns the offering's final assignment
func (s *FinalAssignmentService) Get(ctx context.Context, semesterID, ownerID int64) (*models.FinalAssignment, error) {
	if _, err := ownedSemester(ctx, s.csRepo, semesterID, ownerID); err != nil {
		return nil, err
	}
	return s.faRepo.GetBySemesterID(ctx, semesterID)
}

// Update edits the offering's final assignment.
// An enlarged or reduced max grade only affects future writes; stored
// grades were clamped against the max grade in force at write time.
func (s *FinalAssignmentService) Update(ctx context.Context, semesterID, ownerID int64, req *dto.FinalAssignmentRequest) (*models.FinalAssignment, error) {
	fa, err := s.Get(ctx, semesterID, ownerID)
	if err != nil {
		return nil, err
	}

	dueDate, err := helpers.ParseDate(req.DueDate)
	if err != nil {
		return nil, apperrors.NewBadRequestError(err.Error())
	}

	fa.Title = req.Title
	fa.MaxGrade = req.MaxGrade
	fa.DueDate = dueDate

	if err := s.faRepo.Update(ctx, fa); err != nil {
		return nil, err
	}

	return fa, nil
}

// Delete removes the offering's final assignment with its results
func (s *FinalAssignmentService) Delete(ctx context.Context, semesterID, ownerID int64) error {
	fa, err := s.Get(ctx, semesterID, ownerID)
	if err != nil {
		return err
	}
	return s.faRepo.Delete(ctx, fa.ID)
}

// ListResults returns the per-student submission state, one row per
// enrolled student
func (s *FinalAssignmentService) ListResults(ctx context.Context, semesterID, ownerID int64) ([]dto.FinalResultRow, error) {
	fa, err := s.Get(ctx, semesterID, ownerID)
	if err != nil {
		return nil, err
	}
	return s.faRepo.ListResults(ctx, fa.ID, semesterID)
}

// UpdateResults applies a batch of submission/grade entries. Grades are
// clamped to [0, max grade]; entries for students not enrolled in the
// offering are skipped.
func (s *FinalAssignmentService) UpdateResults(ctx context.Context, semesterID, ownerID int64, req *dto.UpdateFinalResultsRequest) ([]dto.FinalResultRow, error) {
	fa, err := s.Get(ctx, semesterID, ownerID)
	if err != nil {
		return nil, err
	}

	for _, entry := range req.Entries {
		enrolled, err := s.csRepo.IsStudentEnrolled(ctx, semesterID, entry.StudentID)
		if err != nil {
			return nil, err
		}
		if !enrolled {
			s.logger.Warn().Int64("assignmentID", fa.ID).Int64("studentID", entry.StudentID).Msg("Skipping result entry for student not enrolled")
			continue
		}

		grade := models.ClampGrade(entry.Grade, fa.MaxGrade)
		if err := s.faRepo.UpsertResult(ctx, fa.ID, entry.StudentID, entry.Submitted, grade); err != nil {
			return nil, err
		}
	}

	return s.faRepo.ListResults(ctx, fa.ID, semesterID)
}
