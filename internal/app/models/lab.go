package models

import "time"

// LabSession belongs to exactly one CourseSemester.
// Invariant: (course_semester, name, week) unique, week >= 1.
// Creating a session always yields a paired LabReport in the same
// transaction; the pair is returned together by the session repository.
type LabSession struct {
	ID               int64     `json:"id" db:"id"`
	CourseSemesterID int64     `json:"courseSemesterId" db:"course_semester_id"`
	Name             string    `json:"name" db:"name"`
	Week             int       `json:"week" db:"week"`
	Date             time.Time `json:"date" db:"date"`

	// Relations (populated when needed)
	Report *LabReport `json:"report,omitempty"`
}

// LabReport is one-to-one with a LabSession. Its due date starts as the
// session date but is editable independently afterwards.
type LabReport struct {
	ID        int64     `json:"id" db:"id"`
	SessionID int64     `json:"sessionId" db:"session_id"`
	Title     string    `json:"title" db:"title"`
	MaxGrade  int       `json:"maxGrade" db:"max_grade"`
	DueDate   time.Time `json:"dueDate" db:"due_date"`
}

// DefaultReportMaxGrade is the max grade given to auto-provisioned reports.
const DefaultReportMaxGrade = 10

// LabParticipation records per (session, student) attendance.
type LabParticipation struct {
	ID        int64 `json:"id" db:"id"`
	SessionID int64 `json:"sessionId" db:"session_id"`
	StudentID int64 `json:"studentId" db:"student_id"`
	Present   bool  `json:"present" db:"present"`
}

// LabReportGrade records a per (report, student) grade; nil grade = ungraded.
type LabReportGrade struct {
	ID          int64 `json:"id" db:"id"`
	LabReportID int64 `json:"labReportId" db:"lab_report_id"`
	StudentID   int64 `json:"studentId" db:"student_id"`
	Grade       *int  `json:"grade,omitempty" db:"grade"`
}
