package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quangtus/HeThongChamThi-sub000/internal/models"
	"github.com/quangtus/HeThongChamThi-sub000/internal/repository"
)

// ResultService records submitted scores. It never touches assignment
// status; the orchestrator composes the two so a draft (is_final=false)
// stays representable.
type ResultService interface {
	Submit(ctx context.Context, req *models.SubmitResultRequest) (*models.Result, error)
	Update(ctx context.Context, resultID string, req *models.UpdateResultRequest) (*models.Result, error)
	Finalize(ctx context.Context, resultID string) (*models.Result, error)
}

type resultService struct {
	resultRepo     repository.ResultRepository
	assignmentRepo repository.AssignmentRepository
	blockRepo      repository.BlockRepository
	logger         zerolog.Logger
}

func NewResultService(
	resultRepo repository.ResultRepository,
	assignmentRepo repository.AssignmentRepository,
	blockRepo repository.BlockRepository,
	logger zerolog.Logger,
) ResultService {
	return &resultService{
		resultRepo:     resultRepo,
		assignmentRepo: assignmentRepo,
		blockRepo:      blockRepo,
		logger:         logger,
	}
}

func (s *resultService) Submit(ctx context.Context, req *models.SubmitResultRequest) (*models.Result, error) {
	assignment, err := s.assignmentRepo.GetByID(ctx, req.AssignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignment: %w", err)
	}
	if assignment == nil {
		return nil, fmt.Errorf("assignment %s: %w", req.AssignmentID, repository.ErrNotFound)
	}

	if assignment.ExaminerID != req.ExaminerID {
		return nil, ErrWrongExaminer
	}

	if err := s.validateScore(ctx, assignment.BlockCode, req.Score); err != nil {
		return nil, err
	}

	exists, err := s.resultRepo.ExistsByAssignment(ctx, req.AssignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing result: %w", err)
	}
	if exists {
		return nil, repository.ErrDuplicateResult
	}

	now := time.Now()
	result := &models.Result{
		ID:              uuid.New().String(),
		AssignmentID:    req.AssignmentID,
		ExaminerID:      req.ExaminerID,
		Score:           req.Score,
		Comments:        req.Comments,
		RubricSnapshot:  req.RubricSnapshot,
		GradingDuration: req.GradingDuration,
		IsFinal:         false,
		GradedAt:        now,
		UpdatedAt:       now,
	}

	// The unique index on assignment_id is the backstop if two submissions
	// race past the existence check.
	if err := s.resultRepo.Create(ctx, result); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("result_id", result.ID).
		Str("assignment_id", req.AssignmentID).
		Str("examiner_id", req.ExaminerID).
		Float64("score", req.Score).
		Msg("Result submitted")

	return result, nil
}

func (s *resultService) Update(ctx context.Context, resultID string, req *models.UpdateResultRequest) (*models.Result, error) {
	result, err := s.resultRepo.GetByID(ctx, resultID)
	if err != nil {
		return nil, fmt.Errorf("failed to load result: %w", err)
	}
	if result == nil {
		return nil, fmt.Errorf("result %s: %w", resultID, repository.ErrNotFound)
	}
	if result.IsFinal {
		return nil, ErrResultFinal
	}

	if req.Score != nil {
		assignment, err := s.assignmentRepo.GetByID(ctx, result.AssignmentID)
		if err != nil {
			return nil, fmt.Errorf("failed to load assignment: %w", err)
		}
		if assignment == nil {
			return nil, fmt.Errorf("assignment %s: %w", result.AssignmentID, repository.ErrNotFound)
		}
		if err := s.validateScore(ctx, assignment.BlockCode, *req.Score); err != nil {
			return nil, err
		}
		result.Score = *req.Score
	}
	if req.Comments != nil {
		result.Comments = *req.Comments
	}

	if err := s.resultRepo.Update(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to update result: %w", err)
	}

	return result, nil
}

func (s *resultService) Finalize(ctx context.Context, resultID string) (*models.Result, error) {
	result, err := s.resultRepo.GetByID(ctx, resultID)
	if err != nil {
		return nil, fmt.Errorf("failed to load result: %w", err)
	}
	if result == nil {
		return nil, fmt.Errorf("result %s: %w", resultID, repository.ErrNotFound)
	}
	if result.IsFinal {
		return result, nil
	}

	if err := s.resultRepo.Finalize(ctx, resultID); err != nil {
		return nil, fmt.Errorf("failed to finalize result: %w", err)
	}

	result.IsFinal = true

	s.logger.Info().Str("result_id", resultID).Msg("Result finalized")
	return result, nil
}

func (s *resultService) validateScore(ctx context.Context, blockCode string, score float64) error {
	if score < 0 {
		return fmt.Errorf("score %.2f is negative: %w", score, ErrInvalidScore)
	}

	block, err := s.blockRepo.GetByCode(ctx, blockCode)
	if err != nil {
		return fmt.Errorf("failed to load block: %w", err)
	}
	if block != nil && score > block.MaxScore {
		return fmt.Errorf("score %.2f exceeds max %.2f: %w", score, block.MaxScore, ErrInvalidScore)
	}

	return nil
}
