package models

// Course represents a catalog entry teachers pick offerings from.
// Reference data: created by administrators (seed), immutable over the API.
type Course struct {
	ID    int64  `json:"id" db:"id"`
	Code  string `json:"code" db:"code"`
	Title string `json:"title" db:"title"`
}
