package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID          int64      `json:"id" db:"id" example:"1"`                                                  // Unique identifier for the user
	Username    string     `json:"username" db:"username" example:"teach01"`                                // Login identity; unique
	Email       *string    `json:"email,omitempty" db:"email" example:"user@school.edu"`                    // Optional, non-unique email address
	Password    string     `json:"-" db:"password"`                                                         // Hashed password (excluded from JSON)
	Role        RoleType   `json:"role" db:"role" example:"TEACHER"`                                        // STUDENT or TEACHER, mutually exclusive
	CreatedAt   time.Time  `json:"createdAt" db:"created_at" example:"2024-01-01T10:00:00Z"`                // Timestamp when the user was created
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at" example:"2024-01-02T15:30:00Z"`                // Timestamp when the user was last updated
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at" example:"2024-04-20T18:00:00Z"` // Timestamp of the last login (nullable)
}

// IsTeacher reports whether the user carries the teacher role.
func (u *User) IsTeacher() bool {
	return u != nil && u.Role == RoleTeacher
}

// IsStudent reports whether the user carries the student role.
func (u *User) IsStudent() bool {
	return u != nil && u.Role == RoleStudent
}
