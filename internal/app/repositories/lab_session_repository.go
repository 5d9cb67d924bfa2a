package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/eparask/courselab/internal/app/models"
	"github.com/eparask/courselab/internal/app/models/dto"
	"github.com/eparask/courselab/internal/db"
	"github.com/eparask/courselab/internal/pkg/apperrors"
	"github.com/eparask/courselab/internal/pkg/dberrors"
	"github.com/eparask/courselab/internal/pkg/logger"
)

// labSessionRepository handles lab session database operations
type labSessionRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewLabSessionRepository creates a new LabSessionRepository
func NewLabSessionRepository(database *db.PostgresDB) LabSessionRepository {
	return &labSessionRepository{
		db: database,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateWithReport inserts a session and its paired report in one transaction.
// The session never exists without a report.
func (r *labSessionRepository) CreateWithReport(ctx context.Context, session *models.LabSession, report *models.LabReport) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sessionSQL, sessionArgs, err := r.sb.Insert("lab_sessions").
			Columns("course_semester_id", "name", "week", "date", "created_at").
			Values(session.CourseSemesterID, session.Name, session.Week, session.Date, time.Now()).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create session query: %w", err)
		}

		if err := tx.QueryRow(ctx, sessionSQL, sessionArgs...).Scan(&session.ID); err != nil {
			if dberrors.IsDuplicateConstraintError(err, "uq_lab_sessions_name_week") {
				return apperrors.ErrLabSessionExists
			}
			logger.Error().Err(err).Int64("semesterID", session.CourseSemesterID).Msg("Error executing create session query")
			return fmt.Errorf("error creating lab session: %w", err)
		}

		report.SessionID = session.ID

		reportSQL, reportArgs, err := r.sb.Insert("lab_reports").
			Columns("lab_session_id", "title", "max_grade", "due_date").
			Values(report.SessionID, report.Title, report.MaxGrade, report.DueDate).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create report query: %w", err)
		}

		if err := tx.QueryRow(ctx, reportSQL, reportArgs...).Scan(&report.ID); err != nil {
			logger.Error().Err(err).Int64("sessionID", session.ID).Msg("Error executing create report query")
			return fmt.Errorf("error creating lab report: %w", err)
		}

		session.Report = report
		return nil
	})
}

// GetByID retrieves a session together with its report
func (r *labSessionRepository) GetByID(ctx context.Context, id int64) (*models.LabSession, error) {
	sql, args, err := r.sessionSelect().
		Where(squirrel.Eq{"ls.id": id}).
		Limit(1).
		ToSql()

	if err != nil {
		logger.Error().Err(err).Msg("Error building get session SQL")
		return nil, fmt.Errorf("failed to build get session query: %w", err)
	}

	session, err := r.scanSession(r.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrLabSessionNotFound
		}
		logger.Error().Err(err).Int64("sessionID", id).Msg("Error scanning session row")
		return nil, fmt.Errorf("error retrieving lab session: %w", err)
	}

	return session, nil
}

// ListBySemester returns an offering's sessions with their reports,
// ordered by week then date
func (r *labSessionRepository) ListBySemester(ctx context.Context, semesterID int64) ([]*models.LabSession, error) {
	sql, args, err := r.sessionSelect().
		Where(squirrel.Eq{"ls.course_semester_id": semesterID}).
		OrderBy("ls.week ASC", "ls.date ASC").
		ToSql()

	if err != nil {
		logger.Error().Err(err).Msg("Error building list sessions SQL")
		return nil, fmt.Errorf("failed to build list sessions query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("semesterID", semesterID).Msg("Error executing list sessions query")
		return nil, fmt.Errorf("error listing lab sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.LabSession
	for rows.Next() {
		session, err := r.scanSession(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning session row")
			return nil, fmt.Errorf("error scanning lab session: %w", err)
		}
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}

// Delete removes a session; the report, attendance and grades cascade
func (r *labSessionRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("lab_sessions").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		logger.Error().Err(err).Msg("Error building delete session SQL")
		return fmt.Errorf("failed to build delete session query: %w", err)
	}

	cmdTag, err := r.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("sessionID", id).Msg("Error executing delete session query")
		return fmt.Errorf("error deleting lab session: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrLabSessionNotFound
	}

	return nil
}

// UpdateReport updates a report's title, max grade and due date
func (r *labSessionRepository) UpdateReport(ctx context.Context, report *models.LabReport) error {
	sql, args, err := r.sb.Update("lab_reports").
		Set("title", report.Title).
		Set("max_grade", report.MaxGrade).
		Set("due_date", report.DueDate).
		Where(squirrel.Eq{"id": report.ID}).
		ToSql()

	if err != nil {
		logger.Error().Err(err).Msg("Error building update report SQL")
		return fmt.Errorf("failed to build update report query: %w", err)
	}

	cmdTag, err := r.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("reportID", report.ID).Msg("Error executing update report query")
		return fmt.Errorf("error updating lab report: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrLabReportNotFound
	}

	return nil
}

// GetRoster returns the per-student attendance and grade state for a
// session, covering every student enrolled in the session's offering
func (r *labSessionRepository) GetRoster(ctx context.Context, sessionID int64) ([]dto.RosterRow, error) {
	sql, args, err := r.sb.Select(
		"u.id", "u.username",
		"COALESCE(lp.present, FALSE)",
		"lrg.grade").
		From("lab_sessions ls").
		Join("course_semester_students css ON css.course_semester_id = ls.course_semester_id").
		Join("users u ON u.id = css.student_id").
		JoinClause("LEFT JOIN lab_reports lr ON lr.lab_session_id = ls.id").
		JoinClause("LEFT JOIN lab_participations lp ON lp.lab_session_id = ls.id AND lp.student_id = u.id").
		JoinClause("LEFT JOIN lab_report_grades lrg ON lrg.lab_report_id = lr.id AND lrg.student_id = u.id").
		Where(squirrel.Eq{"ls.id": sessionID}).
		OrderBy("u.username ASC").
		ToSql()

	if err != nil {
		logger.Error().Err(err).Msg("Error building roster SQL")
		return nil, fmt.Errorf("failed to build roster query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("sessionID", sessionID).Msg("Error executing roster query")
		return nil, fmt.Errorf("error retrieving roster: %w", err)
	}
	defer rows.Close()

	var roster []dto.RosterRow
	for rows.Next() {
		var row dto.RosterRow
		if err := rows.Scan(&row.StudentID, &row.Username, &row.Present, &row.Grade); err != nil {
			return nil, fmt.Errorf("error scanning roster row: %w", err)
		}
		roster = append(roster, row)
	}

	return roster, rows.Err()
}

// UpsertParticipation records attendance for one (session, student) pair
func (r *labSessionRepository) UpsertParticipation(ctx context.Context, sessionID, studentID int64, present bool) error {
	sql, args, err := r.sb.Insert("lab_participations").
		Columns("lab_session_id", "student_id", "present").
		Values(sessionID, studentID, present).
		Suffix("ON CONFLICT ON CONSTRAINT uq_lab_participations DO UPDATE SET present = EXCLUDED.present").
		ToSql()

	if err != nil {
		logger.Error().Err(err).Msg("Error building upsert participation SQL")
		return fmt.Errorf("failed to build upsert participation query: %w", err)
	}

	_, err = r.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("sessionID", sessionID).Int64("studentID", studentID).Msg("Error executing upsert participation query")
		return fmt.Errorf("error recording participation: %w", err)
	}

	return nil
}

// UpsertGrade records a lab report grade for one (report, student) pair
func (r *labSessionRepository) UpsertGrade(ctx context.Context, reportID, studentID int64, grade *int) error {
	sql, args, err := r.sb.Insert("lab_report_grades").
		Columns("lab_report_id", "student_id", "grade", "graded_at").
		Values(reportID, studentID, grade, time.Now()).
		Suffix("ON CONFLICT ON CONSTRAINT uq_lab_report_grades DO UPDATE SET grade = EXCLUDED.grade, graded_at = EXCLUDED.graded_at").
		ToSql()

	if err != nil {
		logger.Error().Err(err).Msg("Error building upsert grade SQL")
		return fmt.Errorf("failed to build upsert grade query: %w", err)
	}

	_, err = r.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("reportID", reportID).Int64("studentID", studentID).Msg("Error executing upsert grade query")
		return fmt.Errorf("error recording lab grade: %w", err)
	}

	return nil
}

func (r *labSessionRepository) sessionSelect() squirrel.SelectBuilder {
	return r.sb.Select(
		"ls.id", "ls.course_semester_id", "ls.name", "ls.week", "ls.date",
		"lr.id", "lr.title", "lr.max_grade", "lr.due_date").
		From("lab_sessions ls").
		Join("lab_reports lr ON lr.lab_session_id = ls.id")
}

func (r *labSessionRepository) scanSession(row pgx.Row) (*models.LabSession, error) {
	session := &models.LabSession{Report: &models.LabReport{}}
	err := row.Scan(
		&session.ID, &session.CourseSemesterID, &session.Name, &session.Week, &session.Date,
		&session.Report.ID, &session.Report.Title, &session.Report.MaxGrade, &session.Report.DueDate,
	)
	if err != nil {
		return nil, err
	}
	session.Report.SessionID = session.ID
	return session, nil
}
