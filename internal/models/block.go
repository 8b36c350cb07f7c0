package models

import (
	"time"
)

type Block struct {
	Code      string    `json:"code" db:"code"`
	ExamID    string    `json:"exam_id" db:"exam_id"`
	SubjectID string    `json:"subject_id" db:"subject_id"`
	MaxScore  float64   `json:"max_score" db:"max_score"`
	Status    string    `json:"status" db:"status"` // pending, assigned, graded, completed
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type BlockStatus string

const (
	BlockStatusPending   BlockStatus = "pending"
	BlockStatusAssigned  BlockStatus = "assigned"
	BlockStatusGraded    BlockStatus = "graded"
	BlockStatusCompleted BlockStatus = "completed"
)

func (bs BlockStatus) String() string {
	return string(bs)
}
