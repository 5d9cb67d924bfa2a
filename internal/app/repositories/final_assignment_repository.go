package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eparask/courselab/internal/app/models"
	"github.com/eparask/courselab/internal/app/models/dto"
	"github.com/eparask/courselab/internal/pkg/apperrors"
	"github.com/eparask/courselab/internal/pkg/dberrors"
	"github.com/eparask/courselab/internal/pkg/logger"
)

// finalAssignmentRepository handles final assignment database operations
type finalAssignmentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewFinalAssignmentRepository creates a new FinalAssignmentRepository
func NewFinalAssignmentRepository(db *pgxpool.Pool) FinalAssignmentRepository {
	return &finalAssignmentRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts the offering's final assignment and returns its ID
func (r *finalAssignmentRepository) Create(ctx context.Context, fa *models.FinalAssignment) (int64, error) {
	sql, args, err := r.sb.Insert("final_assignments").
		Columns("course_semester_id", "title", "max_grade", "due_date").
		Values(fa.CourseSemesterID, fa.Title, fa.MaxGrade, fa.DueDate).
		Suffix("RETURNING id").
		ToSql()

	if err != nil {
		logger.Error().Err(err).Msg("Error building create final assignment SQL")
		return 0, fmt.Errorf("failed to build create final assignment query: %w", err)
	}

	var id int64
	err = r.db.QueryRow(ctx, sql, args...).Scan(&id)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "uq_final_assignments_semester") {
			return 0, apperrors.ErrFinalAssignmentExists
		}
		logger.Error().Err(err).Int64("semesterID", fa.CourseSemesterID).Msg("Error executing create final assignment query")
		return 0, fmt.Errorf("error creating final assignment: %w", err)
	}

	fa.ID = id
	return id, nil
}

// GetBySemesterID retrieves the offering's final assignment
func (r *finalAssignmentRepository) GetBySemesterID(ctx context.Context, semesterID int64) (*models.FinalAssignment, error) {
	sql, args, err := r.sb.Select("id", "course_semester_id", "title", "max_grade", "due_date").
		From("final_assignments").
		Where(squirrel.Eq{"course_semester_id": semesterID}).
		Limit(1).
		ToSql()

	if err != nil {
		logger.Error().Err(err).Msg("Error building get final assignment SQL")
		return nil, fmt.Errorf("failed to build get final assignment query: %w", err)
	}

	fa := &models.FinalAssignment{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&fa.ID, &fa.CourseSemesterID, &fa.Title, &fa.MaxGrade, &fa.DueDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrFinalAssignmentNotFound
		}
		logger.Error().Err(err).Int64("semesterID", semesterID).Msg("Error scanning final assignment row")
		return nil, fmt.Errorf("error retrieving final assignment: %w", err)
	}

	return fa, nil
}

// Update updates the assignment's title, max grade and due date
func (r *finalAssignmentRepository) Update(ctx context.Context, fa *models.FinalAssignment) error {
	sql, args, err := r.sb.Update("final_assignments").
		Set("title", fa.Title).
		Set("max_grade", fa.MaxGrade).
		Set("due_date", fa.DueDate).
		Where(squirrel.Eq{"id": fa.ID}).
		ToSql()

	if err != nil {
		logger.Error().Err(err).Msg("Error building update final assignment SQL")
		return fmt.Errorf("failed to build update final assignment query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("assignmentID", fa.ID).Msg("Error executing update final assignment query")
		return fmt.Errorf("error updating final assignment: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrFinalAssignmentNotFound
	}

	return nil
}

// Delete removes the assignment; its results cascade
func (r *finalAssignmentRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("final_assignments").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		logger.Error().Err(err).Msg("Error building delete final assignment SQL")
		return fmt.Errorf("failed to build delete final assignment query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("assignmentID", id).Msg("Error executing delete final assignment query")
		return fmt.Errorf("error deleting final assignment: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrFinalAssignmentNotFound
	}

	return nil
}

// ListResults returns the per-student submission state for an assignment,
// covering every student enrolled in the offering
func (r *finalAssignmentRepository) ListResults(ctx context.Context, assignmentID, semesterID int64) ([]dto.FinalResultRow, error) {
	sql, args, err := r.sb.Select(
		"u.id", "u.username",
		"COALESCE(far.submitted, FALSE)",
		"far.grade").
		From("course_semester_students css").
		Join("users u ON u.id = css.student_id").
		JoinClause("LEFT JOIN final_assignment_results far ON far.final_assignment_id = ? AND far.student_id = u.id", assignmentID).
		Where(squirrel.Eq{"css.course_semester_id": semesterID}).
		OrderBy("u.username ASC").
		ToSql()

	if err != nil {
		logger.Error().Err(err).Msg("Error building list results SQL")
		return nil, fmt.Errorf("failed to build list results query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("assignmentID", assignmentID).Msg("Error executing list results query")
		return nil, fmt.Errorf("error listing final assignment results: %w", err)
	}
	defer rows.Close()

	var result []dto.FinalResultRow
	for rows.Next() {
		var row dto.FinalResultRow
		if err := rows.Scan(&row.StudentID, &row.Username, &row.Submitted, &row.Grade); err != nil {
			return nil, fmt.Errorf("error scanning result row: %w", err)
		}
		result = append(result, row)
	}

	return result, rows.Err()
}

// UpsertResult records one (assignment, student) submission state.
// Callers clamp the grade before handing it over.
func (r *finalAssignmentRepository) UpsertResult(ctx context.Context, assignmentID, studentID int64, submitted bool, grade *int) error {
	sql, args, err := r.sb.Insert("final_assignment_results").
		Columns("final_assignment_id", "student_id", "submitted", "grade", "updated_at").
		Values(assignmentID, studentID, submitted, grade, time.Now()).
		Suffix("ON CONFLICT ON CONSTRAINT uq_final_assignment_results DO UPDATE SET submitted = EXCLUDED.submitted, grade = EXCLUDED.grade, updated_at = EXCLUDED.updated_at").
		ToSql()

	if err != nil {
		logger.Error().Err(err).Msg("Error building upsert result SQL")
		return fmt.Errorf("failed to build upsert result query: %w", err)
	}

	_, err = r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("assignmentID", assignmentID).Int64("studentID", studentID).Msg("Error executing upsert result query")
		return fmt.Errorf("error recording final assignment result: %w", err)
	}

	return nil
}
