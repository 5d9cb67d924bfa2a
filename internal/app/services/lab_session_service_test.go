package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/eparask/courselab/internal/app/models"
	"github.com/eparask/courselab/internal/app/models/dto"
	"github.com/eparask/courselab/internal/pkg/apperrors"
)

func setupTestLabSessionService() (*LabSessionService, *mockLabSessionRepo, *mockCourseSemesterRepo, *mockUserRepo) {
	users := newMockUserRepo()
	csRepo := newMockCourseSemesterRepo(users)
	sessionRepo := newMockLabSessionRepo(csRepo)
	svc := NewLabSessionService(sessionRepo, csRepo, zerolog.Nop())
	return svc, sessionRepo, csRepo, users
}

func TestLabSessionService_CreateSession_AutoReport(t *testing.T) {
	svc, _, csRepo, _ := setupTestLabSessionService()
	cs := csRepo.addSemester(&models.CourseSemester{OwnerID: 1})

	session, err := svc.CreateSession(context.Background(), cs.ID, 1, &dto.CreateLabSessionRequest{
		Name: "Pointers",
		Week: 3,
		Date: "2025-03-10",
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	if session.Report == nil {
		t.Fatal("expected the paired report to be created")
	}
	if session.Report.Title != "Report: Pointers" {
		t.Errorf("report title = %q, want \"Report: Pointers\"", session.Report.Title)
	}
	if session.Report.MaxGrade != models.DefaultReportMaxGrade {
		t.Errorf("report max grade = %d, want %d", session.Report.MaxGrade, models.DefaultReportMaxGrade)
	}
	wantDate := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	if !session.Date.Equal(wantDate) {
		t.Errorf("session date = %v, want %v", session.Date, wantDate)
	}
	if !session.Report.DueDate.Equal(wantDate) {
		t.Errorf("report due date = %v, want the session date", session.Report.DueDate)
	}
}

func TestLabSessionService_CreateSession_BadDate(t *testing.T) {
	svc, _, csRepo, _ := setupTestLabSessionService()
	cs := csRepo.addSemester(&models.CourseSemester{OwnerID: 1})

	_, err := svc.CreateSession(context.Background(), cs.ID, 1, &dto.CreateLabSessionRequest{
		Name: "Lab", Week: 1, Date: "10/03/2025",
	})
	if !errors.Is(err, apperrors.ErrBadRequest) {
		t.Errorf("expected bad request for malformed date, got %v", err)
	}
}

func TestLabSessionService_CreateSession_ForeignOffering(t *testing.T) {
	svc, _, csRepo, _ := setupTestLabSessionService()
	cs := csRepo.addSemester(&models.CourseSemester{OwnerID: 2})

	_, err := svc.CreateSession(context.Background(), cs.ID, 1, &dto.CreateLabSessionRequest{
		Name: "Lab", Week: 1, Date: "2025-03-10",
	})
	if !errors.Is(err, apperrors.ErrCourseSemesterNotFound) {
		t.Errorf("expected ErrCourseSemesterNotFound for foreign offering, got %v", err)
	}
}

func TestLabSessionService_CreateSession_DuplicateNameWeek(t *testing.T) {
	svc, _, csRepo, _ := setupTestLabSessionService()
	cs := csRepo.addSemester(&models.CourseSemester{OwnerID: 1})

	req := &dto.CreateLabSessionRequest{Name: "Lab", Week: 1, Date: "2025-03-10"}
	if _, err := svc.CreateSession(context.Background(), cs.ID, 1, req); err != nil {
		t.Fatalf("first CreateSession: %v", err)
	}
	_, err := svc.CreateSession(context.Background(), cs.ID, 1, req)
	if !errors.Is(err, apperrors.ErrLabSessionExists) {
		t.Errorf("expected ErrLabSessionExists, got %v", err)
	}
}

func TestLabSessionService_UpdateRoster_ClampsGrades(t *testing.T) {
	svc, _, csRepo, users := setupTestLabSessionService()
	cs := csRepo.addSemester(&models.CourseSemester{OwnerID: 1})
	alice := users.addUser("alice", models.RoleStudent)
	bob := users.addUser("bob", models.RoleStudent)
	csRepo.enrollments[cs.ID][alice.ID] = true
	csRepo.enrollments[cs.ID][bob.ID] = true

	session, err := svc.CreateSession(context.Background(), cs.ID, 1, &dto.CreateLabSessionRequest{
		Name: "Lab", Week: 1, Date: "2025-03-10",
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	over := 150
	under := -3
	roster, err := svc.UpdateRoster(context.Background(), session.ID, 1, &dto.UpdateRosterRequest{
		Entries: []dto.RosterEntry{
			{StudentID: alice.ID, Present: true, Grade: &over},
			{StudentID: bob.ID, Present: false, Grade: &under},
		},
	})
	if err != nil {
		t.Fatalf("UpdateRoster: %v", err)
	}

	byStudent := map[int64]dto.RosterRow{}
	for _, row := range roster {
		byStudent[row.StudentID] = row
	}
	if row := byStudent[alice.ID]; row.Grade == nil || *row.Grade != models.DefaultReportMaxGrade {
		t.Errorf("alice grade = %v, want clamped to %d", row.Grade, models.DefaultReportMaxGrade)
	}
	if row := byStudent[bob.ID]; row.Grade == nil || *row.Grade != 0 {
		t.Errorf("bob grade = %v, want clamped to 0", row.Grade)
	}
	if !byStudent[alice.ID].Present || byStudent[bob.ID].Present {
		t.Error("presence flags not applied")
	}
}

func TestLabSessionService_UpdateRoster_SkipsNonEnrolled(t *testing.T) {
	svc, sessionRepo, csRepo, users := setupTestLabSessionService()
	cs := csRepo.addSemester(&models.CourseSemester{OwnerID: 1})
	alice := users.addUser("alice", models.RoleStudent)
	outsider := users.addUser("zoe", models.RoleStudent)
	csRepo.enrollments[cs.ID][alice.ID] = true

	session, err := svc.CreateSession(context.Background(), cs.ID, 1, &dto.CreateLabSessionRequest{
		Name: "Lab", Week: 1, Date: "2025-03-10",
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	grade := 5
	roster, err := svc.UpdateRoster(context.Background(), session.ID, 1, &dto.UpdateRosterRequest{
		Entries: []dto.RosterEntry{
			{StudentID: alice.ID, Present: true, Grade: &grade},
			{StudentID: outsider.ID, Present: true, Grade: &grade},
		},
	})
	if err != nil {
		t.Fatalf("UpdateRoster: %v", err)
	}

	if len(roster) != 1 || roster[0].StudentID != alice.ID {
		t.Fatalf("roster = %v, want only the enrolled student", roster)
	}
	if _, ok := sessionRepo.participations[session.ID][outsider.ID]; ok {
		t.Error("non-enrolled student's participation was written")
	}

	// A batch consisting only of non-enrolled rows still succeeds; every
	// row is dropped and nothing new is stored.
	roster, err = svc.UpdateRoster(context.Background(), session.ID, 1, &dto.UpdateRosterRequest{
		Entries: []dto.RosterEntry{{StudentID: outsider.ID, Present: true, Grade: &grade}},
	})
	if err != nil {
		t.Fatalf("UpdateRoster with only non-enrolled rows: %v", err)
	}
	if len(roster) != 1 || roster[0].StudentID != alice.ID {
		t.Errorf("roster = %v, want unchanged", roster)
	}
}

func TestLabSessionService_UpdateRoster_NilGradeStaysNil(t *testing.T) {
	svc, _, csRepo, users := setupTestLabSessionService()
	cs := csRepo.addSemester(&models.CourseSemester{OwnerID: 1})
	alice := users.addUser("alice", models.RoleStudent)
	csRepo.enrollments[cs.ID][alice.ID] = true

	session, err := svc.CreateSession(context.Background(), cs.ID, 1, &dto.CreateLabSessionRequest{
		Name: "Lab", Week: 1, Date: "2025-03-10",
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	roster, err := svc.UpdateRoster(context.Background(), session.ID, 1, &dto.UpdateRosterRequest{
		Entries: []dto.RosterEntry{{StudentID: alice.ID, Present: true}},
	})
	if err != nil {
		t.Fatalf("UpdateRoster: %v", err)
	}
	if roster[0].Grade != nil {
		t.Errorf("grade = %v, want nil (ungraded)", roster[0].Grade)
	}
}

func TestLabSessionService_UpdateReport(t *testing.T) {
	svc, _, csRepo, _ := setupTestLabSessionService()
	cs := csRepo.addSemester(&models.CourseSemester{OwnerID: 1})

	session, err := svc.CreateSession(context.Background(), cs.ID, 1, &dto.CreateLabSessionRequest{
		Name: "Lab", Week: 1, Date: "2025-03-10",
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	report, err := svc.UpdateReport(context.Background(), session.ID, 1, &dto.UpdateLabReportRequest{
		Title:    "Final write-up",
		MaxGrade: 20,
		DueDate:  "2025-03-17",
	})
	if err != nil {
		t.Fatalf("UpdateReport: %v", err)
	}

	if report.Title != "Final write-up" || report.MaxGrade != 20 {
		t.Errorf("report = %+v", report)
	}
	wantDue := time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)
	if !report.DueDate.Equal(wantDue) {
		t.Errorf("due date = %v, want %v", report.DueDate, wantDue)
	}
}

func TestLabSessionService_DeleteSession_ForeignOwner(t *testing.T) {
	svc, _, csRepo, _ := setupTestLabSessionService()
	cs := csRepo.addSemester(&models.CourseSemester{OwnerID: 1})

	session, err := svc.CreateSession(context.Background(), cs.ID, 1, &dto.CreateLabSessionRequest{
		Name: "Lab", Week: 1, Date: "2025-03-10",
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	err = svc.DeleteSession(context.Background(), session.ID, 99)
	if !errors.Is(err, apperrors.ErrCourseSemesterNotFound) {
		t.Errorf("expected not found for foreign owner, got %v", err)
	}
}
