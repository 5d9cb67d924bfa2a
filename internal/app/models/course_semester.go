package models

// CourseSemester represents a specific offering of a course taught by one
// owning teacher in a given (year, semester) pair.
// Invariant: (course, year, semester, owner) is unique.
type CourseSemester struct {
	ID              int64    `json:"id" db:"id"`
	CourseID        int64    `json:"courseId" db:"course_id"`
	Year            int      `json:"year" db:"year"`
	Semester        Semester `json:"semester" db:"semester"`
	EnrollmentLimit *int     `json:"enrollmentLimit,omitempty" db:"enrollment_limit"` // Nullable cap
	OwnerID         int64    `json:"ownerId" db:"owner_id"`

	// Relations (populated when needed)
	Course   *Course `json:"course,omitempty"`
	Owner    *User   `json:"owner,omitempty"`
	Students []*User `json:"students,omitempty"`
}
