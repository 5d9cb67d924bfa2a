package repositories

import (
	"context"
	"time"

	"github.com/eparask/courselab/internal/app/models"
	"github.com/eparask/courselab/internal/app/models/dto"
	"github.com/eparask/courselab/internal/db"
)

// UserRepository handles user persistence.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) (int64, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	UpdateLastLogin(ctx context.Context, userID int64) error
}

// TokenRepository handles refresh token persistence.
type TokenRepository interface {
	CreateToken(ctx context.Context, token string, userID int64, expiryDate time.Time) error
	GetTokenByValue(ctx context.Context, token string) (int64, time.Time, bool, error)
	RevokeToken(ctx context.Context, token string) error
	RevokeAllUserTokens(ctx context.Context, userID int64) error
	CleanupExpiredTokens(ctx context.Context) (int64, error)
}

// CourseRepository reads the seeded course catalog.
type CourseRepository interface {
	ListCourses(ctx context.Context) ([]*models.Course, error)
	GetCourseByID(ctx context.Context, id int64) (*models.Course, error)
}

// CourseSemesterRepository handles offerings and their enrollments.
type CourseSemesterRepository interface {
	Create(ctx context.Context, cs *models.CourseSemester) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.CourseSemester, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.CourseSemester, error)
	ListByStudent(ctx context.Context, studentID int64) ([]*models.CourseSemester, error)
	ListOwnedIDs(ctx context.Context, ownerID int64) ([]int64, error)
	Delete(ctx context.Context, id int64) error
	EnrollStudent(ctx context.Context, semesterID, studentID int64) error
	UnenrollStudent(ctx context.Context, semesterID, studentID int64) error
	IsStudentEnrolled(ctx context.Context, semesterID, studentID int64) (bool, error)
	CountStudents(ctx context.Context, semesterID int64) (int, error)
	ListStudents(ctx context.Context, semesterID int64) ([]*models.User, error)
}

// LabSessionRepository handles lab sessions, their paired reports and
// per-student attendance and grades.
type LabSessionRepository interface {
	CreateWithReport(ctx context.Context, session *models.LabSession, report *models.LabReport) error
	GetByID(ctx context.Context, id int64) (*models.LabSession, error)
	ListBySemester(ctx context.Context, semesterID int64) ([]*models.LabSession, error)
	Delete(ctx context.Context, id int64) error
	UpdateReport(ctx context.Context, report *models.LabReport) error
	GetRoster(ctx context.Context, sessionID int64) ([]dto.RosterRow, error)
	UpsertParticipation(ctx context.Context, sessionID, studentID int64, present bool) error
	UpsertGrade(ctx context.Context, reportID, studentID int64, grade *int) error
}

// FinalAssignmentRepository handles final assignments and their results.
type FinalAssignmentRepository interface {
	Create(ctx context.Context, fa *models.FinalAssignment) (int64, error)
	GetBySemesterID(ctx context.Context, semesterID int64) (*models.FinalAssignment, error)
	Update(ctx context.Context, fa *models.FinalAssignment) error
	Delete(ctx context.Context, id int64) error
	ListResults(ctx context.Context, assignmentID, semesterID int64) ([]dto.FinalResultRow, error)
	UpsertResult(ctx context.Context, assignmentID, studentID int64, submitted bool, grade *int) error
}

// StatsRepository provides the aggregate counts behind the teacher dashboard
// and the raw rows behind course-scoped exports. All scoped methods take the
// offering IDs the caller already verified ownership of.
type StatsRepository interface {
	CountUniqueStudents(ctx context.Context, semesterIDs []int64) (int, error)
	CountSessionsBetween(ctx context.Context, semesterIDs []int64, from, to time.Time) (int, error)
	CountLabGrades(ctx context.Context, semesterIDs []int64) (done, null int, err error)
	FinalAssignmentStats(ctx context.Context, semesterIDs []int64) (submitted, graded int, avg *float64, err error)
	CountOverdueUngradedSessions(ctx context.Context, semesterIDs []int64, before time.Time) (int, error)
	CountNoAttendanceSessions(ctx context.Context, semesterIDs []int64) (int, error)
	PerCourseRows(ctx context.Context, semesterIDs []int64, from, to time.Time) ([]models.CourseStatsRow, error)
	CountGradedBetween(ctx context.Context, semesterIDs []int64, from, to time.Time) (int, error)

	SessionExportRows(ctx context.Context, semesterID int64) ([]models.SessionExportRow, error)
	ParticipationExportRows(ctx context.Context, semesterID int64) ([]models.ParticipationExportRow, error)
	GradeExportRows(ctx context.Context, semesterID int64) ([]models.GradeExportRow, error)
	FinalResultExportRows(ctx context.Context, semesterID int64) ([]models.FinalResultExportRow, error)
	StudentSessionRows(ctx context.Context, semesterID, studentID int64) ([]dto.StudentSessionRow, error)
}

// Repositories bundles all repository implementations for dependency wiring.
type Repositories struct {
	User            UserRepository
	Token           TokenRepository
	Course          CourseRepository
	CourseSemester  CourseSemesterRepository
	LabSession      LabSessionRepository
	FinalAssignment FinalAssignmentRepository
	Stats           StatsRepository
}

// NewRepositories creates all repositories backed by the given database.
func NewRepositories(database *db.PostgresDB) *Repositories {
	return &Repositories{
		User:            NewUserRepository(database.Pool),
		Token:           NewTokenRepository(database.Pool),
		Course:          NewCourseRepository(database.Pool),
		CourseSemester:  NewCourseSemesterRepository(database.Pool),
		LabSession:      NewLabSessionRepository(database),
		FinalAssignment: NewFinalAssignmentRepository(database.Pool),
		Stats:           NewStatsRepository(database.Pool),
	}
}
