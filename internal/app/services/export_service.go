package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/eparask/courselab/internal/app/models"
	"github.com/eparask/courselab/internal/app/repositories"
)

// Export content types
const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// FormatXLSX selects workbook output; anything else falls back to CSV
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

// utf8BOM prefixes CSV exports so spreadsheet tools detect the encoding
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ExportFile is a rendered export ready to be served as a download
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// WorkbookFactory builds an empty spreadsheet workbook. Swappable so tests
// can simulate workbook support being unavailable.
type WorkbookFactory func() (*excelize.File, error)

// ExportService renders dashboard statistics and per-offering data as CSV
// or XLSX downloads. When XLSX rendering is unavailable or fails, the
// service silently falls back to CSV rather than erroring.
type ExportService struct {
	csRepo      repositories.CourseSemesterRepository
	statsRepo   repositories.StatsRepository
	newWorkbook WorkbookFactory
	logger      zerolog.Logger
}

// NewExportService creates a new ExportService
func NewExportService(
	csRepo repositories.CourseSemesterRepository,
	statsRepo repositories.StatsRepository,
	logger zerolog.Logger,
) *ExportService {
	return &ExportService{
		csRepo:      csRepo,
		statsRepo:   statsRepo,
		newWorkbook: func() (*excelize.File, error) { return excelize.NewFile(), nil },
		logger:      logger,
	}
}

// ExportDashboard renders precomputed dashboard stats. The course filter
// only affects the filename; the stats are aggregated upstream.
func (s *ExportService) ExportDashboard(ctx context.Context, stats *models.DashboardStats, days int, courseSemesterID *int64, format string) (*ExportFile, error) {
	course := "all"
	if courseSemesterID != nil {
		course = strconv.FormatInt(*courseSemesterID, 10)
	}
	base := fmt.Sprintf("dashboard_stats_d%d_c%s", days, course)

	if format == FormatXLSX {
		content, err := s.dashboardXLSX(stats)
		if err == nil {
			return &ExportFile{
				Filename:    base + ".xlsx",
				ContentType: ContentTypeXLSX,
				Content:     content,
			}, nil
		}
		s.logger.Warn().Err(err).Msg("XLSX rendering failed, falling back to CSV")
	}

	content, err := s.dashboardCSV(stats)
	if err != nil {
		return nil, err
	}
	return &ExportFile{
		Filename:    base + ".csv",
		ContentType: ContentTypeCSV,
		Content:     content,
	}, nil
}

// ExportCourseSemester renders one owned offering's sessions, attendance,
// lab grades and final assignment results
func (s *ExportService) ExportCourseSemester(ctx context.Context, semesterID, ownerID int64, format string) (*ExportFile, error) {
	cs, err := ownedSemester(ctx, s.csRepo, semesterID, ownerID)
	if err != nil {
		return nil, err
	}

	sessions, err := s.statsRepo.SessionExportRows(ctx, semesterID)
	if err != nil {
		return nil, err
	}
	participations, err := s.statsRepo.ParticipationExportRows(ctx, semesterID)
	if err != nil {
		return nil, err
	}
	grades, err := s.statsRepo.GradeExportRows(ctx, semesterID)
	if err != nil {
		return nil, err
	}
	finals, err := s.statsRepo.FinalResultExportRows(ctx, semesterID)
	if err != nil {
		return nil, err
	}

	base := fmt.Sprintf("course_semester_%d", semesterID)

	if format == FormatXLSX {
		content, err := s.courseXLSX(cs, sessions, participations, grades, finals)
		if err == nil {
			return &ExportFile{
				Filename:    base + ".xlsx",
				ContentType: ContentTypeXLSX,
				Content:     content,
			}, nil
		}
		s.logger.Warn().Err(err).Msg("XLSX rendering failed, falling back to CSV")
	}

	content, err := s.courseCSV(cs, sessions, participations, grades, finals)
	if err != nil {
		return nil, err
	}
	return &ExportFile{
		Filename:    base + ".csv",
		ContentType: ContentTypeCSV,
		Content:     content,
	}, nil
}

func (s *ExportService) dashboardCSV(stats *models.DashboardStats) ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.Write(utf8BOM)
	w := csv.NewWriter(buf)

	if err := w.Write([]string{"key", "value"}); err != nil {
		return nil, err
	}
	for _, kv := range dashboardKeyValues(stats) {
		if err := w.Write(kv); err != nil {
			return nil, err
		}
	}

	if err := w.Write([]string{}); err != nil {
		return nil, err
	}
	if err := w.Write(perCourseHeader()); err != nil {
		return nil, err
	}
	for _, row := range stats.PerCourse {
		if err := w.Write(perCourseValues(row)); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *ExportService) dashboardXLSX(stats *models.DashboardStats) ([]byte, error) {
	f, err := s.newWorkbook()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	summary := "Summary"
	if err := f.SetSheetName(f.GetSheetName(0), summary); err != nil {
		return nil, err
	}

	if err := setRow(f, summary, 1, []interface{}{"key", "value"}); err != nil {
		return nil, err
	}
	for i, kv := range dashboardKeyValues(stats) {
		if err := setRow(f, summary, i+2, []interface{}{kv[0], kv[1]}); err != nil {
			return nil, err
		}
	}

	perCourse := "Per Course"
	if _, err := f.NewSheet(perCourse); err != nil {
		return nil, err
	}
	header := perCourseHeader()
	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := setRow(f, perCourse, 1, headerRow); err != nil {
		return nil, err
	}
	for i, row := range stats.PerCourse {
		if err := setRow(f, perCourse, i+2, []interface{}{
			row.CourseCode, row.CourseTitle, row.Year, row.StudentsCount,
			row.UpcomingSessions, row.LabDone, row.LabNull, row.FaSub, row.FaGrd,
		}); err != nil {
			return nil, err
		}
	}

	trend := "Trend"
	if _, err := f.NewSheet(trend); err != nil {
		return nil, err
	}
	if err := setRow(f, trend, 1, []interface{}{"weeks_ago", "graded"}); err != nil {
		return nil, err
	}
	for i, count := range stats.AttendanceTrend {
		if err := setRow(f, trend, i+2, []interface{}{len(stats.AttendanceTrend) - i, count}); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *ExportService) courseCSV(
	cs *models.CourseSemester,
	sessions []models.SessionExportRow,
	participations []models.ParticipationExportRow,
	grades []models.GradeExportRow,
	finals []models.FinalResultExportRow,
) ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.Write(utf8BOM)
	w := csv.NewWriter(buf)

	if err := w.Write([]string{"course_code", "course_title", "year", "semester"}); err != nil {
		return nil, err
	}
	if err := w.Write([]string{cs.Course.Code, cs.Course.Title, strconv.Itoa(cs.Year), string(cs.Semester)}); err != nil {
		return nil, err
	}

	writeSection := func(header []string, rows [][]string) error {
		if err := w.Write([]string{}); err != nil {
			return err
		}
		if err := w.Write(header); err != nil {
			return err
		}
		for _, row := range rows {
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	}

	sessionRows := make([][]string, len(sessions))
	for i, row := range sessions {
		sessionRows[i] = []string{
			strconv.Itoa(row.Week), row.Name, row.Date,
			strconv.Itoa(row.PresentCount), strconv.Itoa(row.GradedCount),
		}
	}
	if err := writeSection([]string{"sessions: week", "name", "date", "present_count", "graded_count"}, sessionRows); err != nil {
		return nil, err
	}

	participationRows := make([][]string, len(participations))
	for i, row := range participations {
		participationRows[i] = []string{
			strconv.Itoa(row.Week), row.Student, strconv.FormatBool(row.Present),
		}
	}
	if err := writeSection([]string{"participations: week", "student", "present"}, participationRows); err != nil {
		return nil, err
	}

	gradeRows := make([][]string, len(grades))
	for i, row := range grades {
		gradeRows[i] = []string{
			strconv.Itoa(row.Week), row.Student, formatGrade(row.Grade),
		}
	}
	if err := writeSection([]string{"lab_grades: week", "student", "grade"}, gradeRows); err != nil {
		return nil, err
	}

	finalRows := make([][]string, len(finals))
	for i, row := range finals {
		finalRows[i] = []string{
			row.Student, strconv.FormatBool(row.Submitted), formatGrade(row.Grade),
		}
	}
	if err := writeSection([]string{"final_assignment: student", "submitted", "grade"}, finalRows); err != nil {
		return nil, err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *ExportService) courseXLSX(
	cs *models.CourseSemester,
	sessions []models.SessionExportRow,
	participations []models.ParticipationExportRow,
	grades []models.GradeExportRow,
	finals []models.FinalResultExportRow,
) ([]byte, error) {
	f, err := s.newWorkbook()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	course := "Course"
	if err := f.SetSheetName(f.GetSheetName(0), course); err != nil {
		return nil, err
	}
	if err := setRow(f, course, 1, []interface{}{"course_code", "course_title", "year", "semester"}); err != nil {
		return nil, err
	}
	if err := setRow(f, course, 2, []interface{}{cs.Course.Code, cs.Course.Title, cs.Year, string(cs.Semester)}); err != nil {
		return nil, err
	}

	sheet := func(name string, header []interface{}, rows [][]interface{}) error {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
		if err := setRow(f, name, 1, header); err != nil {
			return err
		}
		for i, row := range rows {
			if err := setRow(f, name, i+2, row); err != nil {
				return err
			}
		}
		return nil
	}

	sessionRows := make([][]interface{}, len(sessions))
	for i, row := range sessions {
		sessionRows[i] = []interface{}{row.Week, row.Name, row.Date, row.PresentCount, row.GradedCount}
	}
	if err := sheet("Sessions", []interface{}{"week", "name", "date", "present_count", "graded_count"}, sessionRows); err != nil {
		return nil, err
	}

	participationRows := make([][]interface{}, len(participations))
	for i, row := range participations {
		participationRows[i] = []interface{}{row.Week, row.Student, row.Present}
	}
	if err := sheet("Participations", []interface{}{"week", "student", "present"}, participationRows); err != nil {
		return nil, err
	}

	gradeRows := make([][]interface{}, len(grades))
	for i, row := range grades {
		gradeRows[i] = []interface{}{row.Week, row.Student, gradeCell(row.Grade)}
	}
	if err := sheet("Lab Grades", []interface{}{"week", "student", "grade"}, gradeRows); err != nil {
		return nil, err
	}

	finalRows := make([][]interface{}, len(finals))
	for i, row := range finals {
		finalRows[i] = []interface{}{row.Student, row.Submitted, gradeCell(row.Grade)}
	}
	if err := sheet("Final Assignment", []interface{}{"student", "submitted", "grade"}, finalRows); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func dashboardKeyValues(stats *models.DashboardStats) [][]string {
	trend := ""
	for i, count := range stats.AttendanceTrend {
		if i > 0 {
			trend += ";"
		}
		trend += strconv.Itoa(count)
	}

	faAvg := ""
	if stats.FaAvg != nil {
		faAvg = strconv.FormatFloat(*stats.FaAvg, 'f', -1, 64)
	}

	return [][]string{
		{"active_courses", strconv.Itoa(stats.ActiveCourses)},
		{"unique_students", strconv.Itoa(stats.UniqueStudents)},
		{"upcoming_labs", strconv.Itoa(stats.UpcomingLabs)},
		{"lab_grades_done", strconv.Itoa(stats.LabGradesDone)},
		{"lab_grades_null", strconv.Itoa(stats.LabGradesNull)},
		{"fa_submitted", strconv.Itoa(stats.FaSubmitted)},
		{"fa_graded", strconv.Itoa(stats.FaGraded)},
		{"fa_avg", faAvg},
		{"overdue_ungraded", strconv.Itoa(stats.OverdueUngraded)},
		{"no_attendance_sessions", strconv.Itoa(stats.NoAttendanceSessions)},
		{"attendance_trend", trend},
	}
}

func perCourseHeader() []string {
	return []string{
		"course_code", "course_title", "year", "students",
		"upcoming_sessions", "lab_done", "lab_null", "fa_sub", "fa_grd",
	}
}

func perCourseValues(row models.CourseStatsRow) []string {
	return []string{
		row.CourseCode, row.CourseTitle, strconv.Itoa(row.Year), strconv.Itoa(row.StudentsCount),
		strconv.Itoa(row.UpcomingSessions), strconv.Itoa(row.LabDone), strconv.Itoa(row.LabNull),
		strconv.Itoa(row.FaSub), strconv.Itoa(row.FaGrd),
	}
}

func formatGrade(grade *int) string {
	if grade == nil {
		return ""
	}
	return strconv.Itoa(*grade)
}

func gradeCell(grade *int) interface{} {
	if grade == nil {
		return nil
	}
	return *grade
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}
