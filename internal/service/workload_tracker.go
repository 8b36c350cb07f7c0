package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/quangtus/HeThongChamThi-sub000/internal/models"
	"github.com/quangtus/HeThongChamThi-sub000/internal/repository"
)

// WorkloadTracker computes examiner load for the scheduler. It is a pure
// read over the assignment store and the roster; rankings are recomputed on
// every call, never cached.
type WorkloadTracker interface {
	CurrentLoad(ctx context.Context, examinerID string) (int, error)
	EligibleExaminers(ctx context.Context, blockCode string) ([]models.ExaminerLoad, error)
}

type workloadTracker struct {
	assignmentRepo repository.AssignmentRepository
	examinerRepo   repository.ExaminerRepository
	logger         zerolog.Logger
}

func NewWorkloadTracker(
	assignmentRepo repository.AssignmentRepository,
	examinerRepo repository.ExaminerRepository,
	logger zerolog.Logger,
) WorkloadTracker {
	return &workloadTracker{
		assignmentRepo: assignmentRepo,
		examinerRepo:   examinerRepo,
		logger:         logger,
	}
}

// CurrentLoad counts an examiner's assignments in status assigned or
// in_progress.
func (t *workloadTracker) CurrentLoad(ctx context.Context, examinerID string) (int, error) {
	count, err := t.assignmentRepo.CountOpenByExaminer(ctx, examinerID)
	if err != nil {
		return 0, fmt.Errorf("failed to count open assignments: %w", err)
	}
	return count, nil
}

// EligibleExaminers lists active examiners not yet assigned to the block,
// ordered by open-assignment count ascending. Ties break on examiner ID so
// the ordering is deterministic.
func (t *workloadTracker) EligibleExaminers(ctx context.Context, blockCode string) ([]models.ExaminerLoad, error) {
	active, err := t.examinerRepo.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active examiners: %w", err)
	}

	assignments, err := t.assignmentRepo.GetByBlock(ctx, blockCode)
	if err != nil {
		return nil, fmt.Errorf("failed to load block assignments: %w", err)
	}

	assigned := make(map[string]struct{}, len(assignments))
	for _, a := range assignments {
		assigned[a.ExaminerID] = struct{}{}
	}

	loads, err := t.assignmentRepo.OpenCountsByExaminer(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load examiner workloads: %w", err)
	}

	eligible := make([]models.ExaminerLoad, 0, len(active))
	for _, examiner := range active {
		if _, ok := assigned[examiner.ID]; ok {
			continue
		}
		eligible = append(eligible, models.ExaminerLoad{
			ExaminerID: examiner.ID,
			Load:       loads[examiner.ID],
		})
	}

	sort.Slice(eligible, func(i, j int) bool {
		if eligible[i].Load != eligible[j].Load {
			return eligible[i].Load < eligible[j].Load
		}
		return eligible[i].ExaminerID < eligible[j].ExaminerID
	})

	return eligible, nil
}
