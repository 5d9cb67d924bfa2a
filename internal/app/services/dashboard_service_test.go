package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/eparask/courselab/internal/app/models"
)

func setupTestDashboardService() (*DashboardService, *mockCourseSemesterRepo, *mockStatsRepo, *mockUserRepo) {
	users := newMockUserRepo()
	csRepo := newMockCourseSemesterRepo(users)
	statsRepo := newMockStatsRepo()
	svc := NewDashboardService(csRepo, statsRepo, nil, time.Minute, zerolog.Nop())
	svc.now = func() time.Time {
		return time.Date(2025, 3, 15, 13, 45, 0, 0, time.UTC)
	}
	return svc, csRepo, statsRepo, users
}

func TestNormalizeDays(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{3, 3}, {7, 7}, {14, 14}, {30, 30},
		{0, 7}, {5, 7}, {-1, 7}, {365, 7},
	}
	for _, tc := range cases {
		if got := NormalizeDays(tc.in); got != tc.want {
			t.Errorf("NormalizeDays(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestDashboardService_ComputeStats_Windows(t *testing.T) {
	svc, csRepo, statsRepo, _ := setupTestDashboardService()
	csRepo.addSemester(&models.CourseSemester{OwnerID: 1})

	_, err := svc.ComputeStats(context.Background(), 1, 14, nil)
	if err != nil {
		t.Fatalf("ComputeStats: %v", err)
	}

	today := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	if statsRepo.upcomingWindow == nil {
		t.Fatal("expected CountSessionsBetween to be called")
	}
	if !statsRepo.upcomingWindow.from.Equal(today) {
		t.Errorf("upcoming window from = %v, want %v", statsRepo.upcomingWindow.from, today)
	}
	wantTo := today.AddDate(0, 0, 14)
	if !statsRepo.upcomingWindow.to.Equal(wantTo) {
		t.Errorf("upcoming window to = %v, want %v", statsRepo.upcomingWindow.to, wantTo)
	}

	if statsRepo.overdueBefore == nil {
		t.Fatal("expected CountOverdueUngradedSessions to be called")
	}
	wantCutoff := today.AddDate(0, 0, -7)
	if !statsRepo.overdueBefore.Equal(wantCutoff) {
		t.Errorf("overdue cutoff = %v, want %v", *statsRepo.overdueBefore, wantCutoff)
	}
}

func TestDashboardService_ComputeStats_TrendBuckets(t *testing.T) {
	svc, csRepo, statsRepo, _ := setupTestDashboardService()
	csRepo.addSemester(&models.CourseSemester{OwnerID: 1})

	// today is 2025-03-15; buckets start at -28, -21, -14, -7 days
	statsRepo.gradedByFrom["2025-02-15"] = 2 // 4 weeks ago
	statsRepo.gradedByFrom["2025-02-22"] = 0 // 3 weeks ago
	statsRepo.gradedByFrom["2025-03-01"] = 5 // 2 weeks ago
	statsRepo.gradedByFrom["2025-03-08"] = 1 // last week

	stats, err := svc.ComputeStats(context.Background(), 1, 7, nil)
	if err != nil {
		t.Fatalf("ComputeStats: %v", err)
	}

	want := [4]int{2, 0, 5, 1}
	if stats.AttendanceTrend != want {
		t.Errorf("AttendanceTrend = %v, want %v (oldest first)", stats.AttendanceTrend, want)
	}

	if len(statsRepo.gradedWindows) != 4 {
		t.Fatalf("expected 4 trend windows, got %d", len(statsRepo.gradedWindows))
	}
	// each bucket covers 7 calendar days inclusive
	for i, w := range statsRepo.gradedWindows {
		if got := w.to.Sub(w.from); got != 6*24*time.Hour {
			t.Errorf("bucket %d spans %v, want 6 days", i, got)
		}
	}
	first := statsRepo.gradedWindows[0]
	if first.from.Format("2006-01-02") != "2025-02-15" {
		t.Errorf("first bucket starts %s, want 2025-02-15", first.from.Format("2006-01-02"))
	}
}

func TestDashboardService_ComputeStats_ForeignFilterIgnored(t *testing.T) {
	svc, csRepo, statsRepo, _ := setupTestDashboardService()
	owned1 := csRepo.addSemester(&models.CourseSemester{OwnerID: 1})
	owned2 := csRepo.addSemester(&models.CourseSemester{OwnerID: 1})
	foreign := csRepo.addSemester(&models.CourseSemester{OwnerID: 2})

	stats, err := svc.ComputeStats(context.Background(), 1, 7, &foreign.ID)
	if err != nil {
		t.Fatalf("ComputeStats: %v", err)
	}

	// a filter naming someone else's offering keeps the full owned scope
	if len(statsRepo.lastScope) != 2 {
		t.Fatalf("scope = %v, want both owned offerings", statsRepo.lastScope)
	}
	if statsRepo.lastScope[0] != owned1.ID || statsRepo.lastScope[1] != owned2.ID {
		t.Errorf("scope = %v, want [%d %d]", statsRepo.lastScope, owned1.ID, owned2.ID)
	}
	if stats.ActiveCourses != 2 {
		t.Errorf("ActiveCourses = %d, want 2", stats.ActiveCourses)
	}
}

func TestDashboardService_ComputeStats_OwnedFilterNarrows(t *testing.T) {
	svc, csRepo, statsRepo, _ := setupTestDashboardService()
	csRepo.addSemester(&models.CourseSemester{OwnerID: 1})
	target := csRepo.addSemester(&models.CourseSemester{OwnerID: 1})

	stats, err := svc.ComputeStats(context.Background(), 1, 7, &target.ID)
	if err != nil {
		t.Fatalf("ComputeStats: %v", err)
	}

	if len(statsRepo.lastScope) != 1 || statsRepo.lastScope[0] != target.ID {
		t.Errorf("scope = %v, want [%d]", statsRepo.lastScope, target.ID)
	}
	if stats.ActiveCourses != 1 {
		t.Errorf("ActiveCourses = %d, want 1", stats.ActiveCourses)
	}
}

func TestDashboardService_ComputeStats_FillsCounts(t *testing.T) {
	svc, csRepo, statsRepo, _ := setupTestDashboardService()
	csRepo.addSemester(&models.CourseSemester{OwnerID: 1})

	avg := 7.5
	statsRepo.uniqueStudents = 12
	statsRepo.upcoming = 3
	statsRepo.labDone = 20
	statsRepo.labNull = 4
	statsRepo.faSubmitted = 9
	statsRepo.faGraded = 6
	statsRepo.faAvg = &avg
	statsRepo.overdue = 2
	statsRepo.noAttendance = 1
	statsRepo.perCourse = []models.CourseStatsRow{{CourseCode: "CS101"}}

	stats, err := svc.ComputeStats(context.Background(), 1, 7, nil)
	if err != nil {
		t.Fatalf("ComputeStats: %v", err)
	}

	if stats.UniqueStudents != 12 || stats.UpcomingLabs != 3 ||
		stats.LabGradesDone != 20 || stats.LabGradesNull != 4 ||
		stats.FaSubmitted != 9 || stats.FaGraded != 6 ||
		stats.OverdueUngraded != 2 || stats.NoAttendanceSessions != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats.FaAvg == nil || *stats.FaAvg != 7.5 {
		t.Errorf("FaAvg = %v, want 7.5", stats.FaAvg)
	}
	if len(stats.PerCourse) != 1 || stats.PerCourse[0].CourseCode != "CS101" {
		t.Errorf("PerCourse = %v", stats.PerCourse)
	}
}

func TestDashboardService_ComputeStats_NoOfferings(t *testing.T) {
	svc, _, _, _ := setupTestDashboardService()

	stats, err := svc.ComputeStats(context.Background(), 1, 7, nil)
	if err != nil {
		t.Fatalf("ComputeStats: %v", err)
	}
	if stats.ActiveCourses != 0 {
		t.Errorf("ActiveCourses = %d, want 0", stats.ActiveCourses)
	}
}
