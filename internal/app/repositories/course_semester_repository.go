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
	"github.com/eparask/courselab/internal/pkg/apperrors"
	"github.com/eparask/courselab/internal/pkg/dberrors"
	"github.com/eparask/courselab/internal/pkg/logger"
)

// courseSemesterRepository handles course offering database operations
type courseSemesterRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCourseSemesterRepository creates a new CourseSemesterRepository
func NewCourseSemesterRepository(db *pgxpool.Pool) CourseSemesterRepository {
	return &courseSemesterRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new course offering and returns its ID
func (r *courseSemesterRepository) Create(ctx context.Context, cs *models.CourseSemester) (int64, error) {
	sql, args, err := r.sb.Insert("course_semesters").
		Columns("course_id", "year", "semester", "enrollment_limit", "owner_id", "created_at").
		Values(cs.CourseID, cs.Year, cs.Semester, cs.EnrollmentLimit, cs.OwnerID, time.Now()).
		Suffix("RETURNING id").
		ToSql()

	if err != nil {
		logger.Error().Err(err).Msg("Error building create course semester SQL")
		return 0, fmt.Errorf("failed to build create course semester query: %w", err)
	}

	var id int64
	err = r.db.QueryRow(ctx, sql, args...).Scan(&id)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "uq_course_semesters_offering") {
			return 0, apperrors.ErrCourseSemesterExists
		}
		logger.Error().Err(err).Int64("courseID", cs.CourseID).Msg("Error executing create course semester query")
		return 0, fmt.Errorf("error creating course semester: %w", err)
	}

	cs.ID = id
	return id, nil
}

// GetByID retrieves an offering joined with its catalog course
func (r *courseSemesterRepository) GetByID(ctx context.Context, id int64) (*models.CourseSemester, error) {
	sql, args, err := r.semesterSelect().
		Where(squirrel.Eq{"cs.id": id}).
		Limit(1).
		ToSql()

	if err != nil {
		logger.Error().Err(err).Msg("Error building get course semester SQL")
		return nil, fmt.Errorf("failed to build get course semester query: %w", err)
	}

	cs, err := r.scanSemester(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCourseSemesterNotFound
		}
		logger.Error().Err(err).Int64("semesterID", id).Msg("Error scanning course semester row")
		return nil, fmt.Errorf("error retrieving course semester: %w", err)
	}

	return cs, nil
}

// ListByOwner returns the offerings taught by one teacher ordered by course code
func (r *courseSemesterRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*models.CourseSemester, error) {
	sql, args, err := r.semesterSelect().
		Where(squirrel.Eq{"cs.owner_id": ownerID}).
		OrderBy("c.code ASC", "cs.year DESC").
		ToSql()

	if err != nil {
		logger.Error().Err(err).Msg("Error building list by owner SQL")
		return nil, fmt.Errorf("failed to build list by owner query: %w", err)
	}

	return r.querySemesters(ctx, sql, args)
}

// ListByStudent returns the offerings a student is enrolled in
func (r *courseSemesterRepository) ListByStudent(ctx context.Context, studentID int64) ([]*models.CourseSemester, error) {
	sql, args, err := r.semesterSelect().
		Join("course_semester_students css ON css.course_semester_id = cs.id").
		Where(squirrel.Eq{"css.student_id": studentID}).
		OrderBy("c.code ASC", "cs.year DESC").
		ToSql()

	if err != nil {
		logger.Error().Err(err).Msg("Error building list by student SQL")
		return nil, fmt.Errorf("failed to build list by student query: %w", err)
	}

	return r.querySemesters(ctx, sql, args)
}

// ListOwnedIDs returns just the IDs of a teacher's offerings
func (r *courseSemesterRepository) ListOwnedIDs(ctx context.Context, ownerID int64) ([]int64, error) {
	sql, args, err := r.sb.Select("id").
		From("course_semesters").
		Where(squirrel.Eq{"owner_id": ownerID}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		logger.Error().Err(err).Msg("Error building list owned IDs SQL")
		return nil, fmt.Errorf("failed to build list owned IDs query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("ownerID", ownerID).Msg("Error executing list owned IDs query")
		return nil, fmt.Errorf("error listing owned offerings: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning offering ID: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// Delete removes an offering; dependent rows cascade
func (r *courseSemesterRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("course_semesters").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		logger.Error().Err(err).Msg("Error building delete course semester SQL")
		return fmt.Errorf("failed to build delete course semester query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("semesterID", id).Msg("Error executing delete course semester query")
		return fmt.Errorf("error deleting course semester: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrCourseSemesterNotFound
	}

	return nil
}

// EnrollStudent adds a student to an offering
func (r *courseSemesterRepository) EnrollStudent(ctx context.Context, semesterID, studentID int64) error {
	sql, args, err := r.sb.Insert("course_semester_students").
		Columns("course_semester_id", "student_id", "enrolled_at").
		Values(semesterID, studentID, time.Now()).
		ToSql()

	if err != nil {
		logger.Error().Err(err).Msg("Error building enroll student SQL")
		return fmt.Errorf("failed to build enroll student query: %w", err)
	}

	_, err = r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "uq_course_semester_students") {
			return apperrors.ErrAlreadyEnrolled
		}
		logger.Error().Err(err).Int64("semesterID", semesterID).Int64("studentID", studentID).Msg("Error executing enroll student query")
		return fmt.Errorf("error enrolling student: %w", err)
	}

	return nil
}

// UnenrollStudent removes a student from an offering
func (r *courseSemesterRepository) UnenrollStudent(ctx context.Context, semesterID, studentID int64) error {
	sql, args, err := r.sb.Delete("course_semester_students").
		Where(squirrel.Eq{"course_semester_id": semesterID, "student_id": studentID}).
		ToSql()

	if err != nil {
		logger.Error().Err(err).Msg("Error building unenroll student SQL")
		return fmt.Errorf("failed to build unenroll student query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("semesterID", semesterID).Int64("studentID", studentID).Msg("Error executing unenroll student query")
		return fmt.Errorf("error unenrolling student: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotEnrolled
	}

	return nil
}

// IsStudentEnrolled checks membership of a student in an offering
func (r *courseSemesterRepository) IsStudentEnrolled(ctx context.Context, semesterID, studentID int64) (bool, error) {
	sql, args, err := r.sb.Select("1").
		From("course_semester_students").
		Where(squirrel.Eq{"course_semester_id": semesterID, "student_id": studentID}).
		Prefix("SELECT EXISTS (").
		Suffix(")").
		ToSql()

	if err != nil {
		logger.Error().Err(err).Msg("Error building enrollment check SQL")
		return false, fmt.Errorf("failed to build enrollment check query: %w", err)
	}

	var exists bool
	err = r.db.QueryRow(ctx, sql, args...).Scan(&exists)
	if err != nil {
		logger.Error().Err(err).Int64("semesterID", semesterID).Msg("Error executing enrollment check query")
		return false, fmt.Errorf("error checking enrollment: %w", err)
	}

	return exists, nil
}

// CountStudents counts students enrolled in an offering
func (r *courseSemesterRepository) CountStudents(ctx context.Context, semesterID int64) (int, error) {
	sql, args, err := r.sb.Select("COUNT(*)").
		From("course_semester_students").
		Where(squirrel.Eq{"course_semester_id": semesterID}).
		ToSql()

	if err != nil {
		logger.Error().Err(err).Msg("Error building count students SQL")
		return 0, fmt.Errorf("failed to build count students query: %w", err)
	}

	var count int
	err = r.db.QueryRow(ctx, sql, args...).Scan(&count)
	if err != nil {
		logger.Error().Err(err).Int64("semesterID", semesterID).Msg("Error executing count students query")
		return 0, fmt.Errorf("error counting students: %w", err)
	}

	return count, nil
}

// ListStudents returns the students enrolled in an offering ordered by username
func (r *courseSemesterRepository) ListStudents(ctx context.Context, semesterID int64) ([]*models.User, error) {
	sql, args, err := r.sb.Select("u.id", "u.username", "u.email", "u.role").
		From("course_semester_students css").
		Join("users u ON u.id = css.student_id").
		Where(squirrel.Eq{"css.course_semester_id": semesterID}).
		OrderBy("u.username ASC").
		ToSql()

	if err != nil {
		logger.Error().Err(err).Msg("Error building list students SQL")
		return nil, fmt.Errorf("failed to build list students query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("semesterID", semesterID).Msg("Error executing list students query")
		return nil, fmt.Errorf("error listing students: %w", err)
	}
	defer rows.Close()

	var students []*models.User
	for rows.Next() {
		student := &models.User{}
		if err := rows.Scan(&student.ID, &student.Username, &student.Email, &student.Role); err != nil {
			return nil, fmt.Errorf("error scanning student row: %w", err)
		}
		students = append(students, student)
	}

	return students, rows.Err()
}

func (r *courseSemesterRepository) semesterSelect() squirrel.SelectBuilder {
	return r.sb.Select(
		"cs.id", "cs.course_id", "cs.year", "cs.semester", "cs.enrollment_limit", "cs.owner_id",
		"c.id", "c.code", "c.title").
		From("course_semesters cs").
		Join("courses c ON c.id = cs.course_id")
}

func (r *courseSemesterRepository) scanSemester(row pgx.Row) (*models.CourseSemester, error) {
	cs := &models.CourseSemester{Course: &models.Course{}}
	err := row.Scan(
		&cs.ID, &cs.CourseID, &cs.Year, &cs.Semester, &cs.EnrollmentLimit, &cs.OwnerID,
		&cs.Course.ID, &cs.Course.Code, &cs.Course.Title,
	)
	if err != nil {
		return nil, err
	}
	return cs, nil
}

func (r *courseSemesterRepository) querySemesters(ctx context.Context, sql string, args []interface{}) ([]*models.CourseSemester, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing course semester list query")
		return nil, fmt.Errorf("error listing course semesters: %w", err)
	}
	defer rows.Close()

	var result []*models.CourseSemester
	for rows.Next() {
		cs, err := r.scanSemester(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning course semester row")
			return nil, fmt.Errorf("error scanning course semester: %w", err)
		}
		result = append(result, cs)
	}

	return result, rows.Err()
}
