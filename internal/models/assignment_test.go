package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quangtus/HeThongChamThi-sub000/internal/models"
)

func TestCanTransitionStatusStrict(t *testing.T) {
	tests := []struct {
		from string
		to   string
		want bool
	}{
		{"assigned", "in_progress", true},
		{"assigned", "completed", true},
		{"assigned", "overdue", true},
		{"in_progress", "completed", true},
		{"in_progress", "overdue", true},
		{"in_progress", "assigned", false},
		{"overdue", "in_progress", true},
		{"overdue", "completed", true},
		{"overdue", "assigned", false},
		{"completed", "assigned", false},
		{"completed", "in_progress", false},
		{"completed", "overdue", false},
		{"assigned", "assigned", true},
		{"completed", "completed", true},
		{"assigned", "done", false},
		{"assigned", "", false},
	}

	for _, tt := range tests {
		got := models.CanTransitionStatus(tt.from, tt.to, true)
		assert.Equal(t, tt.want, got, "strict %s -> %s", tt.from, tt.to)
	}
}

func TestCanTransitionStatusLenient(t *testing.T) {
	tests := []struct {
		from string
		to   string
		want bool
	}{
		{"assigned", "overdue", true},
		{"overdue", "assigned", true},
		{"in_progress", "assigned", true},
		{"completed", "assigned", false},
		{"completed", "completed", true},
		{"assigned", "done", false},
	}

	for _, tt := range tests {
		got := models.CanTransitionStatus(tt.from, tt.to, false)
		assert.Equal(t, tt.want, got, "lenient %s -> %s", tt.from, tt.to)
	}
}

func TestIsValidAssignmentStatus(t *testing.T) {
	for _, status := range []string{"assigned", "in_progress", "completed", "overdue"} {
		assert.True(t, models.IsValidAssignmentStatus(status), status)
	}
	for _, status := range []string{"", "done", "ASSIGNED", "pending"} {
		assert.False(t, models.IsValidAssignmentStatus(status), status)
	}
}

func TestIsValidPriority(t *testing.T) {
	for _, priority := range []string{"low", "medium", "high"} {
		assert.True(t, models.IsValidPriority(priority), priority)
	}
	for _, priority := range []string{"", "urgent", "HIGH"} {
		assert.False(t, models.IsValidPriority(priority), priority)
	}
}
