package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/eparask/courselab/internal/app/models"
	"github.com/eparask/courselab/internal/app/models/dto"
	"github.com/eparask/courselab/internal/app/repositories"
	"github.com/eparask/courselab/internal/pkg/apperrors"
	"github.com/eparask/courselab/internal/pkg/helpers"
)

// LabSessionService handles lab sessions, the reports paired with them and
// per-student attendance and grading
type LabSessionService struct {
	sessionRepo repositories.LabSessionRepository
	csRepo      repositories.CourseSemesterRepository
	logger      zerolog.Logger
}

// NewLabSessionService creates a new LabSessionService
func NewLabSessionService(
	sessionRepo repositories.LabSessionRepository,
	csRepo repositories.CourseSemesterRepository,
	logger zerolog.Logger,
) *LabSessionService {
	return &LabSessionService{
		sessionRepo: sessionRepo,
		csRepo:      csRepo,
		logger:      logger,
	}
}

// CreateSession creates a session in an owned offering together with its
// report. The report defaults to "Report: {name}", the standard max grade
// and the session date as due date.
func (s *LabSessionService) CreateSession(ctx context.Context, semesterID, ownerID int64, req *dto.CreateLabSessionRequest) (*models.LabSession, error) {
	if _, err := ownedSemester(ctx, s.csRepo, semesterID, ownerID); err != nil {
		return nil, err
	}

	date, err := helpers.ParseDate(req.Date)
	if err != nil {
		return nil, apperrors.NewBadRequestError(err.Error())
	}

	session := &models.LabSession{
		CourseSemesterID: semesterID,
		Name:             req.Name,
		Week:             req.Week,
		Date:             date,
	}
	report := &models.LabReport{
		Title:    fmt.Sprintf("Report: %s", req.Name),
		MaxGrade: models.DefaultReportMaxGrade,
		DueDate:  date,
	}

	if err := s.sessionRepo.CreateWithReport(ctx, session, report); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("sessionID", session.ID).Int64("semesterID", semesterID).Int("week", session.Week).Msg("Lab session created")
	return session, nil
}

// ListSessions returns an owned offering's sessions with their reports
func (s *LabSessionService) ListSessions(ctx context.Context, semesterID, ownerID int64) ([]*models.LabSession, error) {
	if _, err := ownedSemester(ctx, s.csRepo, semesterID, ownerID); err != nil {
		return nil, err
	}
	return s.sessionRepo.ListBySemester(ctx, semesterID)
}

// DeleteSession removes a session from an owned offering
func (s *LabSessionService) DeleteSession(ctx context.Context, sessionID, ownerID int64) error {
	if _, err := s.getOwnedSession(ctx, sessionID, ownerID); err != nil {
		return err
	}
	return s.sessionRepo.Delete(ctx, sessionID)
}

// UpdateReport edits the report paired with a session
func (s *LabSessionService) UpdateReport(ctx context.Context, sessionID, ownerID int64, req *dto.UpdateLabReportRequest) (*models.LabReport, error) {
	session, err := s.getOwnedSession(ctx, sessionID, ownerID)
	if err != nil {
		return nil, err
	}

	dueDate, err := helpers.ParseDate(req.DueDate)
	if err != nil {
		return nil, apperrors.NewBadRequestError(err.Error())
	}

	report := session.Report
	report.Title = req.Title
	report.MaxGrade = req.MaxGrade
	report.DueDate = dueDate

	if err := s.sessionRepo.UpdateReport(ctx, report); err != nil {
		return nil, err
	}

	return report, nil
}

// GetRoster returns the attendance and grade state of every enrolled
// student for one session
func (s *LabSessionService) GetRoster(ctx context.Context, sessionID, ownerID int64) ([]dto.RosterRow, error) {
	if _, err := s.getOwnedSession(ctx, sessionID, ownerID); err != nil {
		return nil, err
	}
	return s.sessionRepo.GetRoster(ctx, sessionID)
}

// UpdateRoster applies a batch of attendance and grade entries. Grades are
// clamped to [0, report max grade]; entries for students not enrolled in
// the offering are skipped.
func (s *LabSessionService) UpdateRoster(ctx context.Context, sessionID, ownerID int64, req *dto.UpdateRosterRequest) ([]dto.RosterRow, error) {
	session, err := s.getOwnedSession(ctx, sessionID, ownerID)
	if err != nil {
		return nil, err
	}

	for _, entry := range req.Entries {
		enrolled, err := s.csRepo.IsStudentEnrolled(ctx, session.CourseSemesterID, entry.StudentID)
		if err != nil {
			return nil, err
		}
		if !enrolled {
			s.logger.Warn().Int64("sessionID", sessionID).Int64("studentID", entry.StudentID).Msg("Skipping roster entry for student not enrolled")
			continue
		}

		if err := s.sessionRepo.UpsertParticipation(ctx, sessionID, entry.StudentID, entry.Present); err != nil {
			return nil, err
		}

		grade := models.ClampGrade(entry.Grade, session.Report.MaxGrade)
		if err := s.sessionRepo.UpsertGrade(ctx, session.Report.ID, entry.StudentID, grade); err != nil {
			return nil, err
		}
	}

	return s.sessionRepo.GetRoster(ctx, sessionID)
}

func (s *LabSessionService) getOwnedSession(ctx context.Context, sessionID, ownerID int64) (*models.LabSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if _, err := ownedSemester(ctx, s.csRepo, session.CourseSemesterID, ownerID); err != nil {
		return nil, err
	}
	return session, nil
}
