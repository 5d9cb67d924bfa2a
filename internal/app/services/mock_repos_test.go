package services

import (
	"context"
	"sort"
	"time"

	"github.com/eparask/courselab/internal/app/models"
	"github.com/eparask/courselab/internal/app/models/dto"
	"github.com/eparask/courselab/internal/pkg/apperrors"
)

// In-memory repository fakes shared by the service tests.

// --- mock UserRepository ---

type mockUserRepo struct {
	users  map[int64]*models.User
	nextID int64
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[int64]*models.User), nextID: 1}
}

func (m *mockUserRepo) addUser(username string, role models.RoleType) *models.User {
	u := &models.User{ID: m.nextID, Username: username, Role: role}
	m.users[u.ID] = u
	m.nextID++
	return u
}

func (m *mockUserRepo) CreateUser(_ context.Context, user *models.User) (int64, error) {
	for _, u := range m.users {
		if u.Username == user.Username {
			return 0, apperrors.ErrUsernameAlreadyTaken
		}
	}
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = user
	return user.ID, nil
}

func (m *mockUserRepo) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, apperrors.ErrUserNotFound
}

func (m *mockUserRepo) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (m *mockUserRepo) UsernameExists(_ context.Context, username string) (bool, error) {
	for _, u := range m.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) UpdateLastLogin(_ context.Context, userID int64) error {
	u, ok := m.users[userID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	now := time.Now()
	u.LastLoginAt = &now
	return nil
}

// --- mock TokenRepository ---

type storedToken struct {
	userID  int64
	expiry  time.Time
	revoked bool
}

type mockTokenRepo struct {
	tokens map[string]*storedToken
}

func newMockTokenRepo() *mockTokenRepo {
	return &mockTokenRepo{tokens: make(map[string]*storedToken)}
}

func (m *mockTokenRepo) CreateToken(_ context.Context, token string, userID int64, expiryDate time.Time) error {
	m.tokens[token] = &storedToken{userID: userID, expiry: expiryDate}
	return nil
}

func (m *mockTokenRepo) GetTokenByValue(_ context.Context, token string) (int64, time.Time, bool, error) {
	t, ok := m.tokens[token]
	if !ok {
		return 0, time.Time{}, false, apperrors.ErrTokenNotFound
	}
	if t.revoked {
		return 0, time.Time{}, false, apperrors.ErrTokenRevoked
	}
	if time.Now().After(t.expiry) {
		return 0, time.Time{}, false, apperrors.ErrTokenExpired
	}
	return t.userID, t.expiry, t.revoked, nil
}

func (m *mockTokenRepo) RevokeToken(_ context.Context, token string) error {
	t, ok := m.tokens[token]
	if !ok {
		return apperrors.ErrTokenNotFound
	}
	t.revoked = true
	return nil
}

func (m *mockTokenRepo) RevokeAllUserTokens(_ context.Context, userID int64) error {
	for _, t := range m.tokens {
		if t.userID == userID {
			t.revoked = true
		}
	}
	return nil
}

func (m *mockTokenRepo) CleanupExpiredTokens(_ context.Context) (int64, error) {
	var n int64
	for k, t := range m.tokens {
		if time.Now().After(t.expiry) {
			delete(m.tokens, k)
			n++
		}
	}
	return n, nil
}

// --- mock CourseRepository ---

type mockCourseRepo struct {
	courses map[int64]*models.Course
}

func newMockCourseRepo(courses ...*models.Course) *mockCourseRepo {
	m := &mockCourseRepo{courses: make(map[int64]*models.Course)}
	for i, c := range courses {
		if c.ID == 0 {
			c.ID = int64(i + 1)
		}
		m.courses[c.ID] = c
	}
	return m
}

func (m *mockCourseRepo) ListCourses(_ context.Context) ([]*models.Course, error) {
	var result []*models.Course
	for _, c := range m.courses {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (m *mockCourseRepo) GetCourseByID(_ context.Context, id int64) (*models.Course, error) {
	if c, ok := m.courses[id]; ok {
		return c, nil
	}
	return nil, apperrors.ErrCourseNotFound
}

// --- mock CourseSemesterRepository ---

type mockCourseSemesterRepo struct {
	semesters   map[int64]*models.CourseSemester
	enrollments map[int64]map[int64]bool // semesterID -> studentID set
	users       *mockUserRepo
	nextID      int64
}

func newMockCourseSemesterRepo(users *mockUserRepo) *mockCourseSemesterRepo {
	return &mockCourseSemesterRepo{
		semesters:   make(map[int64]*models.CourseSemester),
		enrollments: make(map[int64]map[int64]bool),
		users:       users,
		nextID:      1,
	}
}

func (m *mockCourseSemesterRepo) addSemester(cs *models.CourseSemester) *models.CourseSemester {
	if cs.ID == 0 {
		cs.ID = m.nextID
	}
	if cs.ID >= m.nextID {
		m.nextID = cs.ID + 1
	}
	m.semesters[cs.ID] = cs
	m.enrollments[cs.ID] = make(map[int64]bool)
	return cs
}

func (m *mockCourseSemesterRepo) Create(_ context.Context, cs *models.CourseSemester) (int64, error) {
	for _, existing := range m.semesters {
		if existing.CourseID == cs.CourseID && existing.Year == cs.Year &&
			existing.Semester == cs.Semester && existing.OwnerID == cs.OwnerID {
			return 0, apperrors.ErrCourseSemesterExists
		}
	}
	m.addSemester(cs)
	return cs.ID, nil
}

func (m *mockCourseSemesterRepo) GetByID(_ context.Context, id int64) (*models.CourseSemester, error) {
	if cs, ok := m.semesters[id]; ok {
		return cs, nil
	}
	return nil, apperrors.ErrCourseSemesterNotFound
}

func (m *mockCourseSemesterRepo) ListByOwner(_ context.Context, ownerID int64) ([]*models.CourseSemester, error) {
	var result []*models.CourseSemester
	for _, cs := range m.semesters {
		if cs.OwnerID == ownerID {
			result = append(result, cs)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockCourseSemesterRepo) ListByStudent(_ context.Context, studentID int64) ([]*models.CourseSemester, error) {
	var result []*models.CourseSemester
	for semID, students := range m.enrollments {
		if students[studentID] {
			result = append(result, m.semesters[semID])
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockCourseSemesterRepo) ListOwnedIDs(_ context.Context, ownerID int64) ([]int64, error) {
	var ids []int64
	for _, cs := range m.semesters {
		if cs.OwnerID == ownerID {
			ids = append(ids, cs.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *mockCourseSemesterRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.semesters[id]; !ok {
		return apperrors.ErrCourseSemesterNotFound
	}
	delete(m.semesters, id)
	delete(m.enrollments, id)
	return nil
}

func (m *mockCourseSemesterRepo) EnrollStudent(_ context.Context, semesterID, studentID int64) error {
	students, ok := m.enrollments[semesterID]
	if !ok {
		return apperrors.ErrCourseSemesterNotFound
	}
	if students[studentID] {
		return apperrors.ErrAlreadyEnrolled
	}
	students[studentID] = true
	return nil
}

func (m *mockCourseSemesterRepo) UnenrollStudent(_ context.Context, semesterID, studentID int64) error {
	students, ok := m.enrollments[semesterID]
	if !ok || !students[studentID] {
		return apperrors.ErrNotEnrolled
	}
	delete(students, studentID)
	return nil
}

func (m *mockCourseSemesterRepo) IsStudentEnrolled(_ context.Context, semesterID, studentID int64) (bool, error) {
	return m.enrollments[semesterID][studentID], nil
}

func (m *mockCourseSemesterRepo) CountStudents(_ context.Context, semesterID int64) (int, error) {
	return len(m.enrollments[semesterID]), nil
}

func (m *mockCourseSemesterRepo) ListStudents(_ context.Context, semesterID int64) ([]*models.User, error) {
	var result []*models.User
	for studentID := range m.enrollments[semesterID] {
		if u, ok := m.users.users[studentID]; ok {
			result = append(result, u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Username < result[j].Username })
	return result, nil
}

// --- mock LabSessionRepository ---

type mockLabSessionRepo struct {
	sessions       map[int64]*models.LabSession
	participations map[int64]map[int64]bool // sessionID -> studentID -> present
	grades         map[int64]map[int64]*int // reportID -> studentID -> grade
	cs             *mockCourseSemesterRepo
	nextID         int64
}

func newMockLabSessionRepo(cs *mockCourseSemesterRepo) *mockLabSessionRepo {
	return &mockLabSessionRepo{
		sessions:       make(map[int64]*models.LabSession),
		participations: make(map[int64]map[int64]bool),
		grades:         make(map[int64]map[int64]*int),
		cs:             cs,
		nextID:         1,
	}
}

func (m *mockLabSessionRepo) CreateWithReport(_ context.Context, session *models.LabSession, report *models.LabReport) error {
	for _, existing := range m.sessions {
		if existing.CourseSemesterID == session.CourseSemesterID &&
			existing.Name == session.Name && existing.Week == session.Week {
			return apperrors.ErrLabSessionExists
		}
	}
	session.ID = m.nextID
	report.ID = m.nextID
	report.SessionID = session.ID
	session.Report = report
	m.nextID++
	m.sessions[session.ID] = session
	m.participations[session.ID] = make(map[int64]bool)
	m.grades[report.ID] = make(map[int64]*int)
	return nil
}

func (m *mockLabSessionRepo) GetByID(_ context.Context, id int64) (*models.LabSession, error) {
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, apperrors.ErrLabSessionNotFound
}

func (m *mockLabSessionRepo) ListBySemester(_ context.Context, semesterID int64) ([]*models.LabSession, error) {
	var result []*models.LabSession
	for _, s := range m.sessions {
		if s.CourseSemesterID == semesterID {
			result = append(result, s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Week < result[j].Week })
	return result, nil
}

func (m *mockLabSessionRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.sessions[id]; !ok {
		return apperrors.ErrLabSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *mockLabSessionRepo) UpdateReport(_ context.Context, report *models.LabReport) error {
	for _, s := range m.sessions {
		if s.Report != nil && s.Report.ID == report.ID {
			s.Report = report
			return nil
		}
	}
	return apperrors.ErrLabReportNotFound
}

func (m *mockLabSessionRepo) GetRoster(_ context.Context, sessionID int64) ([]dto.RosterRow, error) {
	session, ok := m.sessions[sessionID]
	if !ok {
		return nil, apperrors.ErrLabSessionNotFound
	}
	students, err := m.cs.ListStudents(context.Background(), session.CourseSemesterID)
	if err != nil {
		return nil, err
	}
	rows := make([]dto.RosterRow, 0, len(students))
	for _, student := range students {
		rows = append(rows, dto.RosterRow{
			StudentID: student.ID,
			Username:  student.Username,
			Present:   m.participations[sessionID][student.ID],
			Grade:     m.grades[session.Report.ID][student.ID],
		})
	}
	return rows, nil
}

func (m *mockLabSessionRepo) UpsertParticipation(_ context.Context, sessionID, studentID int64, present bool) error {
	if _, ok := m.participations[sessionID]; !ok {
		return apperrors.ErrLabSessionNotFound
	}
	m.participations[sessionID][studentID] = present
	return nil
}

func (m *mockLabSessionRepo) UpsertGrade(_ context.Context, reportID, studentID int64, grade *int) error {
	if _, ok := m.grades[reportID]; !ok {
		return apperrors.ErrLabReportNotFound
	}
	m.grades[reportID][studentID] = grade
	return nil
}

// --- mock FinalAssignmentRepository ---

type mockFinalAssignmentRepo struct {
	assignments map[int64]*models.FinalAssignment                 // semesterID -> assignment
	results     map[int64]map[int64]*models.FinalAssignmentResult // assignmentID -> studentID -> result
	cs          *mockCourseSemesterRepo
	nextID      int64
}

func newMockFinalAssignmentRepo(cs *mockCourseSemesterRepo) *mockFinalAssignmentRepo {
	return &mockFinalAssignmentRepo{
		assignments: make(map[int64]*models.FinalAssignment),
		results:     make(map[int64]map[int64]*models.FinalAssignmentResult),
		cs:          cs,
		nextID:      1,
	}
}

func (m *mockFinalAssignmentRepo) Create(_ context.Context, fa *models.FinalAssignment) (int64, error) {
	if _, ok := m.assignments[fa.CourseSemesterID]; ok {
		return 0, apperrors.ErrFinalAssignmentExists
	}
	fa.ID = m.nextID
	m.nextID++
	m.assignments[fa.CourseSemesterID] = fa
	m.results[fa.ID] = make(map[int64]*models.FinalAssignmentResult)
	return fa.ID, nil
}

func (m *mockFinalAssignmentRepo) GetBySemesterID(_ context.Context, semesterID int64) (*models.FinalAssignment, error) {
	if fa, ok := m.assignments[semesterID]; ok {
		return fa, nil
	}
	return nil, apperrors.ErrFinalAssignmentNotFound
}

func (m *mockFinalAssignmentRepo) Update(_ context.Context, fa *models.FinalAssignment) error {
	if _, ok := m.assignments[fa.CourseSemesterID]; !ok {
		return apperrors.ErrFinalAssignmentNotFound
	}
	m.assignments[fa.CourseSemesterID] = fa
	return nil
}

func (m *mockFinalAssignmentRepo) Delete(_ context.Context, id int64) error {
	for semID, fa := range m.assignments {
		if fa.ID == id {
			delete(m.assignments, semID)
			delete(m.results, id)
			return nil
		}
	}
	return apperrors.ErrFinalAssignmentNotFound
}

func (m *mockFinalAssignmentRepo) ListResults(_ context.Context, assignmentID, semesterID int64) ([]dto.FinalResultRow, error) {
	students, err := m.cs.ListStudents(context.Background(), semesterID)
	if err != nil {
		return nil, err
	}
	rows := make([]dto.FinalResultRow, 0, len(students))
	for _, student := range students {
		row := dto.FinalResultRow{StudentID: student.ID, Username: student.Username}
		if result, ok := m.results[assignmentID][student.ID]; ok {
			row.Submitted = result.Submitted
			row.Grade = result.Grade
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (m *mockFinalAssignmentRepo) UpsertResult(_ context.Context, assignmentID, studentID int64, submitted bool, grade *int) error {
	if _, ok := m.results[assignmentID]; !ok {
		return apperrors.ErrFinalAssignmentNotFound
	}
	m.results[assignmentID][studentID] = &models.FinalAssignmentResult{
		FinalAssignmentID: assignmentID,
		StudentID:         studentID,
		Submitted:         submitted,
		Grade:             grade,
	}
	return nil
}

// --- mock StatsRepository ---

type window struct {
	from, to time.Time
}

type mockStatsRepo struct {
	uniqueStudents int
	upcoming       int
	labDone        int
	labNull        int
	faSubmitted    int
	faGraded       int
	faAvg          *float64
	overdue        int
	noAttendance   int
	perCourse      []models.CourseStatsRow
	gradedByFrom   map[string]int // keyed by from date (YYYY-MM-DD)

	sessionRows       []models.SessionExportRow
	participationRows []models.ParticipationExportRow
	gradeRows         []models.GradeExportRow
	finalRows         []models.FinalResultExportRow
	studentRows       []dto.StudentSessionRow

	lastScope      []int64
	upcomingWindow *window
	overdueBefore  *time.Time
	gradedWindows  []window
}

func newMockStatsRepo() *mockStatsRepo {
	return &mockStatsRepo{gradedByFrom: make(map[string]int)}
}

func (m *mockStatsRepo) CountUniqueStudents(_ context.Context, semesterIDs []int64) (int, error) {
	m.lastScope = semesterIDs
	return m.uniqueStudents, nil
}

func (m *mockStatsRepo) CountSessionsBetween(_ context.Context, _ []int64, from, to time.Time) (int, error) {
	m.upcomingWindow = &window{from: from, to: to}
	return m.upcoming, nil
}

func (m *mockStatsRepo) CountLabGrades(_ context.Context, _ []int64) (int, int, error) {
	return m.labDone, m.labNull, nil
}

func (m *mockStatsRepo) FinalAssignmentStats(_ context.Context, _ []int64) (int, int, *float64, error) {
	return m.faSubmitted, m.faGraded, m.faAvg, nil
}

func (m *mockStatsRepo) CountOverdueUngradedSessions(_ context.Context, _ []int64, before time.Time) (int, error) {
	m.overdueBefore = &before
	return m.overdue, nil
}

func (m *mockStatsRepo) CountNoAttendanceSessions(_ context.Context, _ []int64) (int, error) {
	return m.noAttendance, nil
}

func (m *mockStatsRepo) PerCourseRows(_ context.Context, _ []int64, _, _ time.Time) ([]models.CourseStatsRow, error) {
	return m.perCourse, nil
}

func (m *mockStatsRepo) CountGradedBetween(_ context.Context, _ []int64, from, to time.Time) (int, error) {
	m.gradedWindows = append(m.gradedWindows, window{from: from, to: to})
	return m.gradedByFrom[from.Format("2006-01-02")], nil
}

func (m *mockStatsRepo) SessionExportRows(_ context.Context, _ int64) ([]models.SessionExportRow, error) {
	return m.sessionRows, nil
}

func (m *mockStatsRepo) ParticipationExportRows(_ context.Context, _ int64) ([]models.ParticipationExportRow, error) {
	return m.participationRows, nil
}

func (m *mockStatsRepo) GradeExportRows(_ context.Context, _ int64) ([]models.GradeExportRow, error) {
	return m.gradeRows, nil
}

func (m *mockStatsRepo) FinalResultExportRows(_ context.Context, _ int64) ([]models.FinalResultExportRow, error) {
	return m.finalRows, nil
}

func (m *mockStatsRepo) StudentSessionRows(_ context.Context, _, _ int64) ([]dto.StudentSessionRow, error) {
	return m.studentRows, nil
}
