package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eparask/courselab/internal/app/models"
	"github.com/eparask/courselab/internal/app/models/dto"
	"github.com/eparask/courselab/internal/pkg/helpers"
	"github.com/eparask/courselab/internal/pkg/logger"
)

// statsRepository computes dashboard aggregates and export rows
type statsRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewStatsRepository creates a new StatsRepository
func NewStatsRepository(db *pgxpool.Pool) StatsRepository {
	return &statsRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CountUniqueStudents counts distinct students across the given offerings
func (r *statsRepository) CountUniqueStudents(ctx context.Context, semesterIDs []int64) (int, error) {
	if len(semesterIDs) == 0 {
		return 0, nil
	}

	sql, args, err := r.sb.Select("COUNT(DISTINCT student_id)").
		From("course_semester_students").
		Where(squirrel.Eq{"course_semester_id": semesterIDs}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build unique students query: %w", err)
	}

	return r.scanCount(ctx, sql, args, "unique students")
}

// CountSessionsBetween counts sessions dated inside [from, to] inclusive
func (r *statsRepository) CountSessionsBetween(ctx context.Context, semesterIDs []int64, from, to time.Time) (int, error) {
	if len(semesterIDs) == 0 {
		return 0, nil
	}

	sql, args, err := r.sb.Select("COUNT(*)").
		From("lab_sessions").
		Where(squirrel.Eq{"course_semester_id": semesterIDs}).
		Where(squirrel.GtOrEq{"date": from}).
		Where(squirrel.LtOrEq{"date": to}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build sessions between query: %w", err)
	}

	return r.scanCount(ctx, sql, args, "sessions between")
}

// CountLabGrades counts graded and ungraded lab report grade rows
func (r *statsRepository) CountLabGrades(ctx context.Context, semesterIDs []int64) (done, null int, err error) {
	if len(semesterIDs) == 0 {
		return 0, 0, nil
	}

	sql, args, err := r.sb.Select(
		"COUNT(*) FILTER (WHERE lrg.grade IS NOT NULL)",
		"COUNT(*) FILTER (WHERE lrg.grade IS NULL)").
		From("lab_report_grades lrg").
		Join("lab_reports lr ON lr.id = lrg.lab_report_id").
		Join("lab_sessions ls ON ls.id = lr.lab_session_id").
		Where(squirrel.Eq{"ls.course_semester_id": semesterIDs}).
		ToSql()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to build lab grades query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&done, &null)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing lab grades query")
		return 0, 0, fmt.Errorf("error counting lab grades: %w", err)
	}

	return done, null, nil
}

// FinalAssignmentStats aggregates submission counts and the grade average.
// The average is nil when no graded result exists.
func (r *statsRepository) FinalAssignmentStats(ctx context.Context, semesterIDs []int64) (submitted, graded int, avg *float64, err error) {
	if len(semesterIDs) == 0 {
		return 0, 0, nil, nil
	}

	sql, args, err := r.sb.Select(
		"COUNT(*) FILTER (WHERE far.submitted)",
		"COUNT(*) FILTER (WHERE far.grade IS NOT NULL)",
		"AVG(far.grade)").
		From("final_assignment_results far").
		Join("final_assignments fa ON fa.id = far.final_assignment_id").
		Where(squirrel.Eq{"fa.course_semester_id": semesterIDs}).
		ToSql()
	if err != nil {
		return 0, 0, nil, fmt.Errorf("failed to build final assignment stats query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&submitted, &graded, &avg)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing final assignment stats query")
		return 0, 0, nil, fmt.Errorf("error aggregating final assignment stats: %w", err)
	}

	return submitted, graded, avg, nil
}

// CountOverdueUngradedSessions counts sessions dated before the cutoff that
// still carry at least one ungraded report grade row
func (r *statsRepository) CountOverdueUngradedSessions(ctx context.Context, semesterIDs []int64, before time.Time) (int, error) {
	if len(semesterIDs) == 0 {
		return 0, nil
	}

	sql, args, err := r.sb.Select("COUNT(*)").
		From("lab_sessions ls").
		Where(squirrel.Eq{"ls.course_semester_id": semesterIDs}).
		Where(squirrel.Lt{"ls.date": before}).
		Where(squirrel.Expr(`EXISTS (
			SELECT 1 FROM lab_report_grades lrg
			JOIN lab_reports lr ON lr.id = lrg.lab_report_id
			WHERE lr.lab_session_id = ls.id AND lrg.grade IS NULL
		)`)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build overdue ungraded query: %w", err)
	}

	return r.scanCount(ctx, sql, args, "overdue ungraded sessions")
}

// CountNoAttendanceSessions counts sessions without a single attendance row
func (r *statsRepository) CountNoAttendanceSessions(ctx context.Context, semesterIDs []int64) (int, error) {
	if len(semesterIDs) == 0 {
		return 0, nil
	}

	sql, args, err := r.sb.Select("COUNT(*)").
		From("lab_sessions ls").
		Where(squirrel.Eq{"ls.course_semester_id": semesterIDs}).
		Where(squirrel.Expr(`NOT EXISTS (
			SELECT 1 FROM lab_participations lp WHERE lp.lab_session_id = ls.id
		)`)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build no attendance query: %w", err)
	}

	return r.scanCount(ctx, sql, args, "no attendance sessions")
}

// PerCourseRows returns the per-offering breakdown ordered by course code
func (r *statsRepository) PerCourseRows(ctx context.Context, semesterIDs []int64, from, to time.Time) ([]models.CourseStatsRow, error) {
	if len(semesterIDs) == 0 {
		return nil, nil
	}

	sql, args, err := r.sb.Select("cs.id", "c.code", "c.title", "cs.year").
		Column(squirrel.Expr(`(SELECT COUNT(*) FROM course_semester_students css
			WHERE css.course_semester_id = cs.id)`)).
		Column(squirrel.Expr(`(SELECT COUNT(*) FROM lab_sessions ls
			WHERE ls.course_semester_id = cs.id AND ls.date >= ? AND ls.date <= ?)`, from, to)).
		Column(squirrel.Expr(`(SELECT COUNT(*) FROM lab_report_grades lrg
			JOIN lab_reports lr ON lr.id = lrg.lab_report_id
			JOIN lab_sessions ls ON ls.id = lr.lab_session_id
			WHERE ls.course_semester_id = cs.id AND lrg.grade IS NOT NULL)`)).
		Column(squirrel.Expr(`(SELECT COUNT(*) FROM lab_report_grades lrg
			JOIN lab_reports lr ON lr.id = lrg.lab_report_id
			JOIN lab_sessions ls ON ls.id = lr.lab_session_id
			WHERE ls.course_semester_id = cs.id AND lrg.grade IS NULL)`)).
		Column(squirrel.Expr(`(SELECT COUNT(*) FROM final_assignment_results far
			JOIN final_assignments fa ON fa.id = far.final_assignment_id
			WHERE fa.course_semester_id = cs.id AND far.submitted)`)).
		Column(squirrel.Expr(`(SELECT COUNT(*) FROM final_assignment_results far
			JOIN final_assignments fa ON fa.id = far.final_assignment_id
			WHERE fa.course_semester_id = cs.id AND far.grade IS NOT NULL)`)).
		From("course_semesters cs").
		Join("courses c ON c.id = cs.course_id").
		Where(squirrel.Eq{"cs.id": semesterIDs}).
		OrderBy("c.code ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build per course rows query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing per course rows query")
		return nil, fmt.Errorf("error computing per course rows: %w", err)
	}
	defer rows.Close()

	var result []models.CourseStatsRow
	for rows.Next() {
		var row models.CourseStatsRow
		if err := rows.Scan(
			&row.CourseSemesterID, &row.CourseCode, &row.CourseTitle, &row.Year,
			&row.StudentsCount, &row.UpcomingSessions,
			&row.LabDone, &row.LabNull, &row.FaSub, &row.FaGrd,
		); err != nil {
			return nil, fmt.Errorf("error scanning per course row: %w", err)
		}
		result = append(result, row)
	}

	return result, rows.Err()
}

// CountGradedBetween counts graded lab report grade rows whose session is
// dated inside [from, to] inclusive
func (r *statsRepository) CountGradedBetween(ctx context.Context, semesterIDs []int64, from, to time.Time) (int, error) {
	if len(semesterIDs) == 0 {
		return 0, nil
	}

	sql, args, err := r.sb.Select("COUNT(*)").
		From("lab_report_grades lrg").
		Join("lab_reports lr ON lr.id = lrg.lab_report_id").
		Join("lab_sessions ls ON ls.id = lr.lab_session_id").
		Where(squirrel.Eq{"ls.course_semester_id": semesterIDs}).
		Where("lrg.grade IS NOT NULL").
		Where(squirrel.GtOrEq{"ls.date": from}).
		Where(squirrel.LtOrEq{"ls.date": to}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build graded between query: %w", err)
	}

	return r.scanCount(ctx, sql, args, "graded between")
}

// SessionExportRows returns the per-session export lines for one offering
func (r *statsRepository) SessionExportRows(ctx context.Context, semesterID int64) ([]models.SessionExportRow, error) {
	sql, args, err := r.sb.Select("ls.week", "ls.name", "ls.date").
		Column(squirrel.Expr(`(SELECT COUNT(*) FROM lab_participations lp
			WHERE lp.lab_session_id = ls.id AND lp.present)`)).
		Column(squirrel.Expr(`(SELECT COUNT(*) FROM lab_report_grades lrg
			JOIN lab_reports lr ON lr.id = lrg.lab_report_id
			WHERE lr.lab_session_id = ls.id AND lrg.grade IS NOT NULL)`)).
		From("lab_sessions ls").
		Where(squirrel.Eq{"ls.course_semester_id": semesterID}).
		OrderBy("ls.week ASC", "ls.date ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build session export query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("semesterID", semesterID).Msg("Error executing session export query")
		return nil, fmt.Errorf("error listing session export rows: %w", err)
	}
	defer rows.Close()

	var result []models.SessionExportRow
	for rows.Next() {
		var row models.SessionExportRow
		var date time.Time
		if err := rows.Scan(&row.Week, &row.Name, &date, &row.PresentCount, &row.GradedCount); err != nil {
			return nil, fmt.Errorf("error scanning session export row: %w", err)
		}
		row.Date = helpers.FormatDate(date)
		result = append(result, row)
	}

	return result, rows.Err()
}

// ParticipationExportRows returns the attendance export lines for one offering
func (r *statsRepository) ParticipationExportRows(ctx context.Context, semesterID int64) ([]models.ParticipationExportRow, error) {
	sql, args, err := r.sb.Select("ls.week", "u.username", "lp.present").
		From("lab_participations lp").
		Join("lab_sessions ls ON ls.id = lp.lab_session_id").
		Join("users u ON u.id = lp.student_id").
		Where(squirrel.Eq{"ls.course_semester_id": semesterID}).
		OrderBy("ls.week ASC", "u.username ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build participation export query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("semesterID", semesterID).Msg("Error executing participation export query")
		return nil, fmt.Errorf("error listing participation export rows: %w", err)
	}
	defer rows.Close()

	var result []models.ParticipationExportRow
	for rows.Next() {
		var row models.ParticipationExportRow
		if err := rows.Scan(&row.Week, &row.Student, &row.Present); err != nil {
			return nil, fmt.Errorf("error scanning participation export row: %w", err)
		}
		result = append(result, row)
	}

	return result, rows.Err()
}

// GradeExportRows returns the lab grade export lines for one offering
func (r *statsRepository) GradeExportRows(ctx context.Context, semesterID int64) ([]models.GradeExportRow, error) {
	sql, args, err := r.sb.Select("ls.week", "u.username", "lrg.grade").
		From("lab_report_grades lrg").
		Join("lab_reports lr ON lr.id = lrg.lab_report_id").
		Join("lab_sessions ls ON ls.id = lr.lab_session_id").
		Join("users u ON u.id = lrg.student_id").
		Where(squirrel.Eq{"ls.course_semester_id": semesterID}).
		OrderBy("ls.week ASC", "u.username ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build grade export query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("semesterID", semesterID).Msg("Error executing grade export query")
		return nil, fmt.Errorf("error listing grade export rows: %w", err)
	}
	defer rows.Close()

	var result []models.GradeExportRow
	for rows.Next() {
		var row models.GradeExportRow
		if err := rows.Scan(&row.Week, &row.Student, &row.Grade); err != nil {
			return nil, fmt.Errorf("error scanning grade export row: %w", err)
		}
		result = append(result, row)
	}

	return result, rows.Err()
}

// FinalResultExportRows returns the final assignment export lines for one
// offering, one line per enrolled student. Empty when the offering has no
// final assignment.
func (r *statsRepository) FinalResultExportRows(ctx context.Context, semesterID int64) ([]models.FinalResultExportRow, error) {
	sql, args, err := r.sb.Select(
		"u.username",
		"COALESCE(far.submitted, FALSE)",
		"far.grade").
		From("final_assignments fa").
		Join("course_semester_students css ON css.course_semester_id = fa.course_semester_id").
		Join("users u ON u.id = css.student_id").
		JoinClause("LEFT JOIN final_assignment_results far ON far.final_assignment_id = fa.id AND far.student_id = u.id").
		Where(squirrel.Eq{"fa.course_semester_id": semesterID}).
		OrderBy("u.username ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build final result export query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("semesterID", semesterID).Msg("Error executing final result export query")
		return nil, fmt.Errorf("error listing final result export rows: %w", err)
	}
	defer rows.Close()

	var result []models.FinalResultExportRow
	for rows.Next() {
		var row models.FinalResultExportRow
		if err := rows.Scan(&row.Student, &row.Submitted, &row.Grade); err != nil {
			return nil, fmt.Errorf("error scanning final result export row: %w", err)
		}
		result = append(result, row)
	}

	return result, rows.Err()
}

// StudentSessionRows returns one student's view of an offering's sessions
func (r *statsRepository) StudentSessionRows(ctx context.Context, semesterID, studentID int64) ([]dto.StudentSessionRow, error) {
	sql, args, err := r.sb.Select(
		"ls.id", "ls.course_semester_id", "ls.name", "ls.week", "ls.date",
		"lr.id", "lr.title", "lr.max_grade", "lr.due_date",
		"COALESCE(lp.present, FALSE)",
		"lrg.grade").
		From("lab_sessions ls").
		Join("lab_reports lr ON lr.lab_session_id = ls.id").
		JoinClause("LEFT JOIN lab_participations lp ON lp.lab_session_id = ls.id AND lp.student_id = ?", studentID).
		JoinClause("LEFT JOIN lab_report_grades lrg ON lrg.lab_report_id = lr.id AND lrg.student_id = ?", studentID).
		Where(squirrel.Eq{"ls.course_semester_id": semesterID}).
		OrderBy("ls.week ASC", "ls.date ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build student session rows query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("semesterID", semesterID).Int64("studentID", studentID).Msg("Error executing student session rows query")
		return nil, fmt.Errorf("error listing student session rows: %w", err)
	}
	defer rows.Close()

	var result []dto.StudentSessionRow
	for rows.Next() {
		session := &models.LabSession{Report: &models.LabReport{}}
		var row dto.StudentSessionRow
		if err := rows.Scan(
			&session.ID, &session.CourseSemesterID, &session.Name, &session.Week, &session.Date,
			&session.Report.ID, &session.Report.Title, &session.Report.MaxGrade, &session.Report.DueDate,
			&row.Present, &row.Grade,
		); err != nil {
			return nil, fmt.Errorf("error scanning student session row: %w", err)
		}
		session.Report.SessionID = session.ID
		row.Session = session
		result = append(result, row)
	}

	return result, rows.Err()
}

func (r *statsRepository) scanCount(ctx context.Context, sql string, args []interface{}, what string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, sql, args...).Scan(&count)
	if err != nil {
		logger.Error().Err(err).Str("query", what).Msg("Error executing count query")
		return 0, fmt.Errorf("error counting %s: %w", what, err)
	}
	return count, nil
}
