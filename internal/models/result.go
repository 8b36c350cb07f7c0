package models

import (
	"encoding/json"
	"time"
)

type Result struct {
	ID              string          `json:"id" db:"id"`
	AssignmentID    string          `json:"assignment_id" db:"assignment_id"`
	ExaminerID      string          `json:"examiner_id" db:"examiner_id"`
	Score           float64         `json:"score" db:"score"`
	Comments        string          `json:"comments" db:"comments"`
	RubricSnapshot  json.RawMessage `json:"rubric_snapshot,omitempty" db:"rubric_snapshot"`
	GradingDuration *int            `json:"grading_duration,omitempty" db:"grading_duration"` // seconds
	IsFinal         bool            `json:"is_final" db:"is_final"`
	GradedAt        time.Time       `json:"graded_at" db:"graded_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// BlockResult is a result joined with the round number of its assignment,
// used to order a block's results chronologically for consensus.
type BlockResult struct {
	Result
	RoundNumber int `json:"round_number" db:"round_number"`
}
