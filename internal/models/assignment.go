package models

import (
	"time"
)

type Assignment struct {
	ID          string     `json:"id" db:"id"`
	BlockCode   string     `json:"block_code" db:"block_code"`
	ExaminerID  string     `json:"examiner_id" db:"examiner_id"`
	RoundNumber int        `json:"round_number" db:"round_number"`
	Priority    string     `json:"priority" db:"priority"` // low, medium, high
	Deadline    *time.Time `json:"deadline,omitempty" db:"deadline"`
	Status      string     `json:"status" db:"status"` // assigned, in_progress, completed, overdue
	AssignedBy  string     `json:"assigned_by" db:"assigned_by"`
	AssignedAt  time.Time  `json:"assigned_at" db:"assigned_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

type AssignmentStatus string

const (
	AssignmentStatusAssigned   AssignmentStatus = "assigned"
	AssignmentStatusInProgress AssignmentStatus = "in_progress"
	AssignmentStatusCompleted  AssignmentStatus = "completed"
	AssignmentStatusOverdue    AssignmentStatus = "overdue"
)

func (as AssignmentStatus) String() string {
	return string(as)
}

func IsValidAssignmentStatus(status string) bool {
	switch status {
	case "assigned", "in_progress", "completed", "overdue":
		return true
	default:
		return false
	}
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) String() string {
	return string(p)
}

func IsValidPriority(priority string) bool {
	switch priority {
	case "low", "medium", "high":
		return true
	default:
		return false
	}
}

// CanTransitionStatus reports whether an assignment may move from one status
// to another. Completed is terminal in both modes. Lenient mode otherwise
// allows any overwrite; strict mode enforces the forward transition table.
func CanTransitionStatus(from, to string, strict bool) bool {
	if !IsValidAssignmentStatus(to) {
		return false
	}
	if from == to {
		return true
	}
	if from == AssignmentStatusCompleted.String() {
		return false
	}
	if !strict {
		return true
	}

	switch from {
	case AssignmentStatusAssigned.String():
		return to == AssignmentStatusInProgress.String() ||
			to == AssignmentStatusCompleted.String() ||
			to == AssignmentStatusOverdue.String()
	case AssignmentStatusInProgress.String():
		return to == AssignmentStatusCompleted.String() ||
			to == AssignmentStatusOverdue.String()
	case AssignmentStatusOverdue.String():
		return to == AssignmentStatusInProgress.String() ||
			to == AssignmentStatusCompleted.String()
	default:
		return false
	}
}

type AssignmentStats struct {
	Total      int `json:"total" db:"total"`
	Assigned   int `json:"assigned" db:"assigned"`
	InProgress int `json:"in_progress" db:"in_progress"`
	Completed  int `json:"completed" db:"completed"`
	Overdue    int `json:"overdue" db:"overdue"`
}
