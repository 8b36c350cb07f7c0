package models

import (
	"encoding/json"
	"time"
)

// Data Transfer Objects

type AutoAssignRequest struct {
	BlockCodes        []string   `json:"block_codes" validate:"required,min=1"`
	RequestedBy       string     `json:"requested_by" validate:"required"`
	Priority          string     `json:"priority,omitempty"`
	Deadline          *time.Time `json:"deadline,omitempty"`
	ExaminersPerBlock int        `json:"examiners_per_block,omitempty"`
}

type AssignmentSuccess struct {
	BlockCode    string `json:"block_code"`
	ExaminerID   string `json:"examiner_id"`
	RoundNumber  int    `json:"round_number"`
	AssignmentID string `json:"assignment_id"`
}

type AssignmentFailure struct {
	BlockCode string `json:"block_code"`
	Reason    string `json:"reason"`
}

// AutoAssignResponse always carries both lists; callers must not assume
// all-or-nothing.
type AutoAssignResponse struct {
	Successes []AssignmentSuccess `json:"successes"`
	Failures  []AssignmentFailure `json:"failures"`
}

func (r *AutoAssignResponse) AllAssigned() bool {
	return len(r.Failures) == 0
}

type CreateAssignmentRequest struct {
	BlockCode   string     `json:"block_code" validate:"required"`
	ExaminerID  string     `json:"examiner_id" validate:"required,uuid"`
	RoundNumber int        `json:"round_number" validate:"required,gt=0"`
	Priority    string     `json:"priority,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	AssignedBy  string     `json:"assigned_by" validate:"required"`
}

type UpdateAssignmentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=assigned in_progress completed overdue"`
}

type SubmitResultRequest struct {
	AssignmentID    string          `json:"assignment_id" validate:"required,uuid"`
	ExaminerID      string          `json:"examiner_id" validate:"required,uuid"`
	Score           float64         `json:"score" validate:"gte=0"`
	Comments        string          `json:"comments,omitempty"`
	RubricSnapshot  json.RawMessage `json:"rubric_snapshot,omitempty"`
	GradingDuration *int            `json:"grading_duration,omitempty"`
}

type UpdateResultRequest struct {
	Score    *float64 `json:"score,omitempty"`
	Comments *string  `json:"comments,omitempty"`
}

type PendingBlocksFilter struct {
	SubjectID string `json:"subject_id,omitempty"`
	ExamID    string `json:"exam_id,omitempty"`
}
