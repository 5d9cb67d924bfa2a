package models

// CourseStatsRow is the per-offering breakdown attached to the dashboard
// stats, ordered by course code ascending.
type CourseStatsRow struct {
	CourseSemesterID int64  `json:"courseSemesterId" db:"course_semester_id"`
	CourseCode       string `json:"courseCode" db:"course_code"`
	CourseTitle      string `json:"courseTitle" db:"course_title"`
	Year             int    `json:"year" db:"year"`
	StudentsCount    int    `json:"studentsCount" db:"students_count"`
	UpcomingSessions int    `json:"upcomingSessions" db:"upcoming_sessions"`
	LabDone          int    `json:"labDone" db:"lab_done"`
	LabNull          int    `json:"labNull" db:"lab_null"`
	FaSub            int    `json:"faSub" db:"fa_sub"`
	FaGrd            int    `json:"faGrd" db:"fa_grd"`
}

// DashboardStats is the aggregated bag of counts, averages and trend values
// computed for one teacher over an optional day window and course filter.
// Purely derived from store state; deterministic given "today".
type DashboardStats struct {
	ActiveCourses        int              `json:"activeCourses"`
	UniqueStudents       int              `json:"uniqueStudents"`
	UpcomingLabs         int              `json:"upcomingLabs"`
	LabGradesDone        int              `json:"labGradesDone"`
	LabGradesNull        int              `json:"labGradesNull"`
	FaSubmitted          int              `json:"faSubmitted"`
	FaGraded             int              `json:"faGraded"`
	FaAvg                *float64         `json:"faAvg"` // nil when no graded results exist
	OverdueUngraded      int              `json:"overdueUngraded"`
	NoAttendanceSessions int              `json:"noAttendanceSessions"`
	PerCourse            []CourseStatsRow `json:"perCourse"`
	AttendanceTrend      [4]int           `json:"attendanceTrend"` // oldest bucket first
}

// SessionExportRow is one session line of the course-scoped export.
type SessionExportRow struct {
	Week         int    `json:"week" db:"week"`
	Name         string `json:"name" db:"name"`
	Date         string `json:"date" db:"date"`
	PresentCount int    `json:"presentCount" db:"present_count"`
	GradedCount  int    `json:"gradedCount" db:"graded_count"`
}

// ParticipationExportRow is one attendance line of the course-scoped export.
type ParticipationExportRow struct {
	Week    int    `json:"week" db:"week"`
	Student string `json:"student" db:"student"`
	Present bool   `json:"present" db:"present"`
}

// GradeExportRow is one lab grade line of the course-scoped export.
type GradeExportRow struct {
	Week    int    `json:"week" db:"week"`
	Student string `json:"student" db:"student"`
	Grade   *int   `json:"grade" db:"grade"`
}

// FinalResultExportRow is one final assignment result line of the
// course-scoped export.
type FinalResultExportRow struct {
	Student   string `json:"student" db:"student"`
	Submitted bool   `json:"submitted" db:"submitted"`
	Grade     *int   `json:"grade" db:"grade"`
}
