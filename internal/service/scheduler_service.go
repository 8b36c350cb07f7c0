package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quangtus/HeThongChamThi-sub000/internal/config"
	"github.com/quangtus/HeThongChamThi-sub000/internal/models"
	"github.com/quangtus/HeThongChamThi-sub000/internal/repository"
)

type SchedulerService interface {
	AutoAssign(ctx context.Context, req *models.AutoAssignRequest) (*models.AutoAssignResponse, error)
	CreateAssignment(ctx context.Context, req *models.CreateAssignmentRequest) (*models.Assignment, error)
	UpdateStatus(ctx context.Context, assignmentID, status string) (*models.Assignment, error)
	DeleteAssignment(ctx context.Context, assignmentID string) error
}

type schedulerService struct {
	assignmentRepo repository.AssignmentRepository
	examinerRepo   repository.ExaminerRepository
	blockRepo      repository.BlockRepository
	tracker        WorkloadTracker
	cfg            config.GradingConfig
	logger         zerolog.Logger
}

func NewSchedulerService(
	assignmentRepo repository.AssignmentRepository,
	examinerRepo repository.ExaminerRepository,
	blockRepo repository.BlockRepository,
	tracker WorkloadTracker,
	cfg config.GradingConfig,
	logger zerolog.Logger,
) SchedulerService {
	return &schedulerService{
		assignmentRepo: assignmentRepo,
		examinerRepo:   examinerRepo,
		blockRepo:      blockRepo,
		tracker:        tracker,
		cfg:            cfg,
		logger:         logger,
	}
}

// AutoAssign assigns examiners to each requested block independently. A
// failure on one block never aborts the others; both lists are always
// returned. The global pool check runs once before any writes so an
// under-supplied pool fails the whole batch fast. It is an optimization
// only: the (block_code, examiner_id) unique constraint is what actually
// prevents double assignment under concurrent batches.
func (s *schedulerService) AutoAssign(ctx context.Context, req *models.AutoAssignRequest) (*models.AutoAssignResponse, error) {
	perBlock := req.ExaminersPerBlock
	if perBlock <= 0 {
		perBlock = s.cfg.ExaminersPerBlock
	}

	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium.String()
	}
	if !models.IsValidPriority(priority) {
		return nil, fmt.Errorf("invalid priority %q", priority)
	}

	active, err := s.examinerRepo.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active examiners: %w", err)
	}
	if len(active) < perBlock {
		return nil, ErrInsufficientExaminers
	}

	resp := &models.AutoAssignResponse{
		Successes: []models.AssignmentSuccess{},
		Failures:  []models.AssignmentFailure{},
	}

	for _, blockCode := range req.BlockCodes {
		s.assignBlock(ctx, blockCode, perBlock, priority, req, resp)
	}

	s.logger.Info().
		Int("blocks", len(req.BlockCodes)).
		Int("assigned", len(resp.Successes)).
		Int("failed", len(resp.Failures)).
		Str("requested_by", req.RequestedBy).
		Msg("Auto-assign batch finished")

	return resp, nil
}

func (s *schedulerService) assignBlock(ctx context.Context, blockCode string, perBlock int, priority string, req *models.AutoAssignRequest, resp *models.AutoAssignResponse) {
	fail := func(reason string) {
		resp.Failures = append(resp.Failures, models.AssignmentFailure{
			BlockCode: blockCode,
			Reason:    reason,
		})
	}

	block, err := s.blockRepo.GetByCode(ctx, blockCode)
	if err != nil {
		s.logger.Error().Err(err).Str("block_code", blockCode).Msg("Failed to load block")
		fail("storage error")
		return
	}
	if block == nil {
		fail("block not found")
		return
	}

	existing, err := s.assignmentRepo.CountByBlock(ctx, blockCode)
	if err != nil {
		s.logger.Error().Err(err).Str("block_code", blockCode).Msg("Failed to count assignments")
		fail("storage error")
		return
	}

	needed := perBlock - existing
	if needed <= 0 {
		fail("already fully assigned")
		return
	}

	eligible, err := s.tracker.EligibleExaminers(ctx, blockCode)
	if err != nil {
		s.logger.Error().Err(err).Str("block_code", blockCode).Msg("Failed to rank examiners")
		fail("storage error")
		return
	}
	if len(eligible) < needed {
		fail("insufficient eligible examiners")
		return
	}

	now := time.Now()
	for i := 0; i < needed; i++ {
		candidate := eligible[i]
		assignment := &models.Assignment{
			ID:          uuid.New().String(),
			BlockCode:   blockCode,
			ExaminerID:  candidate.ExaminerID,
			RoundNumber: existing + i + 1,
			Priority:    priority,
			Deadline:    req.Deadline,
			Status:      models.AssignmentStatusAssigned.String(),
			AssignedBy:  req.RequestedBy,
			AssignedAt:  now,
			UpdatedAt:   now,
		}

		if err := s.assignmentRepo.Create(ctx, assignment); err != nil {
			if errors.Is(err, repository.ErrDuplicateAssignment) {
				// Lost a race with a concurrent batch; the constraint held.
				fail("examiner already assigned concurrently")
			} else {
				s.logger.Error().Err(err).Str("block_code", blockCode).Msg("Failed to create assignment")
				fail("storage error")
			}
			return
		}

		resp.Successes = append(resp.Successes, models.AssignmentSuccess{
			BlockCode:    blockCode,
			ExaminerID:   candidate.ExaminerID,
			RoundNumber:  assignment.RoundNumber,
			AssignmentID: assignment.ID,
		})

		s.logger.Info().
			Str("block_code", blockCode).
			Str("examiner_id", candidate.ExaminerID).
			Int("round_number", assignment.RoundNumber).
			Int("load", candidate.Load).
			Msg("Examiner assigned")
	}

	if block.Status == models.BlockStatusPending.String() {
		if err := s.blockRepo.UpdateStatus(ctx, blockCode, models.BlockStatusAssigned.String()); err != nil {
			s.logger.Error().Err(err).Str("block_code", blockCode).Msg("Failed to signal block assigned")
		}
	}
}

// CreateAssignment creates a single manual assignment. The same uniqueness
// invariant applies: an examiner already on the block is rejected, never
// silently overwritten.
func (s *schedulerService) CreateAssignment(ctx context.Context, req *models.CreateAssignmentRequest) (*models.Assignment, error) {
	if req.RoundNumber <= 0 {
		return nil, fmt.Errorf("round number must be positive, got %d", req.RoundNumber)
	}

	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium.String()
	}
	if !models.IsValidPriority(priority) {
		return nil, fmt.Errorf("invalid priority %q", priority)
	}

	block, err := s.blockRepo.GetByCode(ctx, req.BlockCode)
	if err != nil {
		return nil, fmt.Errorf("failed to load block: %w", err)
	}
	if block == nil {
		return nil, fmt.Errorf("block %s: %w", req.BlockCode, repository.ErrNotFound)
	}

	examiner, err := s.examinerRepo.GetByID(ctx, req.ExaminerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load examiner: %w", err)
	}
	if examiner == nil || !examiner.Active {
		return nil, fmt.Errorf("active examiner %s: %w", req.ExaminerID, repository.ErrNotFound)
	}

	exists, err := s.assignmentRepo.ExistsByBlockAndExaminer(ctx, req.BlockCode, req.ExaminerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing assignment: %w", err)
	}
	if exists {
		return nil, repository.ErrDuplicateAssignment
	}

	now := time.Now()
	assignment := &models.Assignment{
		ID:          uuid.New().String(),
		BlockCode:   req.BlockCode,
		ExaminerID:  req.ExaminerID,
		RoundNumber: req.RoundNumber,
		Priority:    priority,
		Deadline:    req.Deadline,
		Status:      models.AssignmentStatusAssigned.String(),
		AssignedBy:  req.AssignedBy,
		AssignedAt:  now,
		UpdatedAt:   now,
	}

	if err := s.assignmentRepo.Create(ctx, assignment); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("assignment_id", assignment.ID).
		Str("block_code", req.BlockCode).
		Str("examiner_id", req.ExaminerID).
		Int("round_number", req.RoundNumber).
		Msg("Manual assignment created")

	return assignment, nil
}

func (s *schedulerService) UpdateStatus(ctx context.Context, assignmentID, status string) (*models.Assignment, error) {
	if !models.IsValidAssignmentStatus(status) {
		return nil, fmt.Errorf("invalid assignment status %q", status)
	}

	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignment: %w", err)
	}
	if assignment == nil {
		return nil, repository.ErrNotFound
	}

	if !models.CanTransitionStatus(assignment.Status, status, s.cfg.StrictTransitions) {
		return nil, fmt.Errorf("%s -> %s: %w", assignment.Status, status, ErrInvalidTransition)
	}

	if err := s.assignmentRepo.UpdateStatus(ctx, assignmentID, status); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	assignment.Status = status
	return assignment, nil
}

// DeleteAssignment is the explicit administrative removal; the repository
// also removes any orphaned result.
func (s *schedulerService) DeleteAssignment(ctx context.Context, assignmentID string) error {
	if err := s.assignmentRepo.Delete(ctx, assignmentID); err != nil {
		return err
	}

	s.logger.Info().Str("assignment_id", assignmentID).Msg("Assignment removed")
	return nil
}
