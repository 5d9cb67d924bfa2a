package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/eparask/courselab/internal/app/models"
	"github.com/eparask/courselab/internal/pkg/apperrors"
)

func setupTestExportService() (*ExportService, *mockCourseSemesterRepo, *mockStatsRepo) {
	users := newMockUserRepo()
	csRepo := newMockCourseSemesterRepo(users)
	statsRepo := newMockStatsRepo()
	svc := NewExportService(csRepo, statsRepo, zerolog.Nop())
	return svc, csRepo, statsRepo
}

func TestExportService_ExportDashboard_CSV(t *testing.T) {
	svc, _, _ := setupTestExportService()

	stats := &models.DashboardStats{
		ActiveCourses:   3,
		UniqueStudents:  25,
		AttendanceTrend: [4]int{1, 2, 3, 4},
		PerCourse: []models.CourseStatsRow{
			{CourseCode: "CS101", CourseTitle: "Intro", Year: 2025, StudentsCount: 10},
		},
	}

	file, err := svc.ExportDashboard(context.Background(), stats, 7, nil, FormatCSV)
	if err != nil {
		t.Fatalf("ExportDashboard: %v", err)
	}

	if file.Filename != "dashboard_stats_d7_call.csv" {
		t.Errorf("filename = %q, want dashboard_stats_d7_call.csv", file.Filename)
	}
	if file.ContentType != ContentTypeCSV {
		t.Errorf("content type = %q", file.ContentType)
	}
	if !bytes.HasPrefix(file.Content, utf8BOM) {
		t.Error("CSV content missing UTF-8 BOM")
	}

	body := string(file.Content)
	for _, want := range []string{
		"key,value",
		"active_courses,3",
		"unique_students,25",
		"attendance_trend,1;2;3;4",
		"fa_avg,",
		"course_code,course_title,year,students,upcoming_sessions,lab_done,lab_null,fa_sub,fa_grd",
		"CS101,Intro,2025,10",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("CSV missing %q\n%s", want, body)
		}
	}
}

func TestExportService_ExportDashboard_FilenameWithCourseFilter(t *testing.T) {
	svc, _, _ := setupTestExportService()

	courseID := int64(42)
	file, err := svc.ExportDashboard(context.Background(), &models.DashboardStats{}, 14, &courseID, FormatCSV)
	if err != nil {
		t.Fatalf("ExportDashboard: %v", err)
	}
	if file.Filename != "dashboard_stats_d14_c42.csv" {
		t.Errorf("filename = %q, want dashboard_stats_d14_c42.csv", file.Filename)
	}
}

func TestExportService_ExportDashboard_XLSX(t *testing.T) {
	svc, _, _ := setupTestExportService()

	stats := &models.DashboardStats{
		ActiveCourses: 1,
		PerCourse:     []models.CourseStatsRow{{CourseCode: "CS101"}},
	}

	file, err := svc.ExportDashboard(context.Background(), stats, 7, nil, FormatXLSX)
	if err != nil {
		t.Fatalf("ExportDashboard: %v", err)
	}
	if file.Filename != "dashboard_stats_d7_call.xlsx" {
		t.Errorf("filename = %q, want dashboard_stats_d7_call.xlsx", file.Filename)
	}
	if file.ContentType != ContentTypeXLSX {
		t.Errorf("content type = %q", file.ContentType)
	}
	if len(file.Content) == 0 {
		t.Error("XLSX content is empty")
	}
}

func TestExportService_ExportDashboard_XLSXFallsBackToCSV(t *testing.T) {
	svc, _, _ := setupTestExportService()
	svc.newWorkbook = func() (*excelize.File, error) {
		return nil, errors.New("workbook unavailable")
	}

	file, err := svc.ExportDashboard(context.Background(), &models.DashboardStats{}, 7, nil, FormatXLSX)
	if err != nil {
		t.Fatalf("ExportDashboard: %v", err)
	}
	if file.Filename != "dashboard_stats_d7_call.csv" {
		t.Errorf("fallback filename = %q, want CSV", file.Filename)
	}
	if file.ContentType != ContentTypeCSV {
		t.Errorf("fallback content type = %q, want CSV", file.ContentType)
	}
}

func TestExportService_ExportCourseSemester_CSV(t *testing.T) {
	svc, csRepo, statsRepo := setupTestExportService()
	cs := csRepo.addSemester(&models.CourseSemester{
		OwnerID:  1,
		Year:     2025,
		Semester: models.SemesterSpring,
		Course:   &models.Course{Code: "CS101", Title: "Intro"},
	})

	grade := 8
	statsRepo.sessionRows = []models.SessionExportRow{
		{Week: 1, Name: "Lab 1", Date: "2025-03-01", PresentCount: 5, GradedCount: 3},
	}
	statsRepo.participationRows = []models.ParticipationExportRow{
		{Week: 1, Student: "alice", Present: true},
	}
	statsRepo.gradeRows = []models.GradeExportRow{
		{Week: 1, Student: "alice", Grade: &grade},
		{Week: 1, Student: "bob", Grade: nil},
	}
	statsRepo.finalRows = []models.FinalResultExportRow{
		{Student: "alice", Submitted: true, Grade: nil},
	}

	file, err := svc.ExportCourseSemester(context.Background(), cs.ID, 1, FormatCSV)
	if err != nil {
		t.Fatalf("ExportCourseSemester: %v", err)
	}

	wantName := "course_semester_1.csv"
	if file.Filename != wantName {
		t.Errorf("filename = %q, want %q", file.Filename, wantName)
	}

	body := string(file.Content)
	for _, want := range []string{
		"course_code,course_title,year,semester",
		"CS101,Intro,2025,SPRING",
		"sessions: week,name,date,present_count,graded_count",
		"1,Lab 1,2025-03-01,5,3",
		"participations: week,student,present",
		"1,alice,true",
		"lab_grades: week,student,grade",
		"1,alice,8",
		"1,bob,",
		"final_assignment: student,submitted,grade",
		"alice,true,",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("CSV missing %q\n%s", want, body)
		}
	}
}

func TestExportService_ExportCourseSemester_ForeignOffering(t *testing.T) {
	svc, csRepo, _ := setupTestExportService()
	cs := csRepo.addSemester(&models.CourseSemester{
		OwnerID: 2,
		Course:  &models.Course{Code: "CS101"},
	})

	_, err := svc.ExportCourseSemester(context.Background(), cs.ID, 1, FormatCSV)
	if !errors.Is(err, apperrors.ErrCourseSemesterNotFound) {
		t.Errorf("expected ErrCourseSemesterNotFound, got %v", err)
	}
}

func TestExportService_ExportCourseSemester_XLSX(t *testing.T) {
	svc, csRepo, _ := setupTestExportService()
	cs := csRepo.addSemester(&models.CourseSemester{
		OwnerID:  1,
		Year:     2025,
		Semester: models.SemesterWinter,
		Course:   &models.Course{Code: "CS101", Title: "Intro"},
	})

	file, err := svc.ExportCourseSemester(context.Background(), cs.ID, 1, FormatXLSX)
	if err != nil {
		t.Fatalf("ExportCourseSemester: %v", err)
	}
	if file.Filename != "course_semester_1.xlsx" {
		t.Errorf("filename = %q", file.Filename)
	}
	if len(file.Content) == 0 {
		t.Error("XLSX content is empty")
	}
}
