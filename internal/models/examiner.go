package models

import (
	"time"
)

// Examiner is a read model over the external roster. The grading service
// never mutates it.
type Examiner struct {
	ID        string    `json:"id" db:"id"`
	FullName  string    `json:"full_name" db:"full_name"`
	Email     string    `json:"email" db:"email"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ExaminerLoad pairs an examiner with their open-assignment count.
type ExaminerLoad struct {
	ExaminerID string `json:"examiner_id"`
	Load       int    `json:"load"`
}
