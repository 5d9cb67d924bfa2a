package models

// RoleType defines the user role type
type RoleType string

const (
	RoleStudent RoleType = "STUDENT"
	RoleTeacher RoleType = "TEACHER"
)

// Semester represents the half of the academic year an offering runs in
type Semester string

// Semester constants
const (
	SemesterWinter Semester = "WINTER"
	SemesterSpring Semester = "SPRING"
)

// ValidSemester reports whether s is one of the known semester values.
func ValidSemester(s Semester) bool {
	return s == SemesterWinter || s == SemesterSpring
}
