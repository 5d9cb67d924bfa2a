package dto

import "github.com/eparask/courselab/internal/app/models"

// CreateCourseSemesterRequest represents a new offering of a catalog course
type CreateCourseSemesterRequest struct {
	CourseID        int64           `json:"courseId" binding:"required,min=1"`
	Year            int             `json:"year" binding:"required,min=2000,max=2100"`
	Semester        models.Semester `json:"semester" binding:"required,oneof=WINTER SPRING"`
	EnrollmentLimit *int            `json:"enrollmentLimit,omitempty" binding:"omitempty,min=1"`
}

// EnrollStudentRequest identifies the student to enroll in an offering
type EnrollStudentRequest struct {
	StudentID int64 `json:"studentId" binding:"required,min=1"`
}

// CreateLabSessionRequest represents a new lab session. Creating a session
// always creates its paired report as well.
type CreateLabSessionRequest struct {
	Name string `json:"name" binding:"required"`
	Week int    `json:"week" binding:"required,min=1"`
	Date string `json:"date" binding:"required" example:"2025-01-07"` // ISO date (YYYY-MM-DD)
}

// UpdateLabReportRequest edits the report paired with a session
type UpdateLabReportRequest struct {
	Title    string `json:"title" binding:"required"`
	MaxGrade int    `json:"maxGrade" binding:"required,min=1"`
	DueDate  string `json:"dueDate" binding:"required" example:"2025-01-14"`
}

// RosterEntry is one (student, present, grade) tuple of a batch roster
// update; grades are clamped server-side to the report's max grade.
type RosterEntry struct {
	StudentID int64 `json:"studentId" binding:"required,min=1"`
	Present   bool  `json:"present"`
	Grade     *int  `json:"grade,omitempty"`
}

// UpdateRosterRequest is the batch attendance/grade submission for a session
type UpdateRosterRequest struct {
	Entries []RosterEntry `json:"entries" binding:"required,dive"`
}

// RosterRow is the per-student state returned for a session roster
type RosterRow struct {
	StudentID int64  `json:"studentId"`
	Username  string `json:"username"`
	Present   bool   `json:"present"`
	Grade     *int   `json:"grade"`
}

// LabSessionResponse bundles a session with its auto-provisioned report
type LabSessionResponse struct {
	Session *models.LabSession `json:"session"`
	Report  *models.LabReport  `json:"report"`
}

// FinalAssignmentRequest creates or updates the offering's final assignment
type FinalAssignmentRequest struct {
	Title    string `json:"title" binding:"required"`
	MaxGrade int    `json:"maxGrade" binding:"required,min=1"`
	DueDate  string `json:"dueDate" binding:"required" example:"2025-06-30"`
}

// FinalResultEntry is one (student, submitted, grade) tuple of a batch
// final-assignment result update
type FinalResultEntry struct {
	StudentID int64 `json:"studentId" binding:"required,min=1"`
	Submitted bool  `json:"submitted"`
	Grade     *int  `json:"grade,omitempty"`
}

// UpdateFinalResultsRequest is the batch final-assignment result submission
type UpdateFinalResultsRequest struct {
	Entries []FinalResultEntry `json:"entries" binding:"required,dive"`
}

// FinalResultRow is the per-student final assignment state for teachers
type FinalResultRow struct {
	StudentID int64  `json:"studentId"`
	Username  string `json:"username"`
	Submitted bool   `json:"submitted"`
	Grade     *int   `json:"grade"`
}

// StudentSessionRow is one session as seen by an enrolled student
type StudentSessionRow struct {
	Session *models.LabSession `json:"session"`
	Present bool               `json:"present"`
	Grade   *int               `json:"grade"`
}

// StudentCourseDetail is the enrolled student's view of one offering
type StudentCourseDetail struct {
	CourseSemester *models.CourseSemester        `json:"courseSemester"`
	Rows           []StudentSessionRow           `json:"rows"`
	AttendancePct  *int                          `json:"attendancePct"` // nil when there are no sessions
	Assignment     *models.FinalAssignment       `json:"finalAssignment"`
	Result         *models.FinalAssignmentResult `json:"finalAssignmentResult"`
}
