package models

import "time"

// FinalAssignment is one-to-one with a CourseSemester.
type FinalAssignment struct {
	ID               int64     `json:"id" db:"id"`
	CourseSemesterID int64     `json:"courseSemesterId" db:"course_semester_id"`
	Title            string    `json:"title" db:"title"`
	MaxGrade         int       `json:"maxGrade" db:"max_grade"`
	DueDate          time.Time `json:"dueDate" db:"due_date"`
}

// FinalAssignmentResult tracks per (assignment, student) submission and grade.
// Grades are clamped to [0, assignment max grade] on write, never rejected.
type FinalAssignmentResult struct {
	ID                int64 `json:"id" db:"id"`
	FinalAssignmentID int64 `json:"finalAssignmentId" db:"final_assignment_id"`
	StudentID         int64 `json:"studentId" db:"student_id"`
	Submitted         bool  `json:"submitted" db:"submitted"`
	Grade             *int  `json:"grade,omitempty" db:"grade"`
}

// ClampGrade bounds a candidate grade to [0, maxGrade]. A nil grade stays nil.
func ClampGrade(grade *int, maxGrade int) *int {
	if grade == nil {
		return nil
	}
	g := *grade
	if g < 0 {
		g = 0
	}
	if g > maxGrade {
		g = maxGrade
	}
	return &g
}
