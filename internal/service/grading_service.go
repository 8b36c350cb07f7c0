package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/quangtus/HeThongChamThi-sub000/internal/config"
	"github.com/quangtus/HeThongChamThi-sub000/internal/models"
	"github.com/quangtus/HeThongChamThi-sub000/internal/repository"
	"github.com/quangtus/HeThongChamThi-sub000/internal/service/integration"
)

// GradingService is the facade composing scheduling, result submission and
// consensus resolution.
type GradingService interface {
	AutoAssign(ctx context.Context, req *models.AutoAssignRequest) (*models.AutoAssignResponse, error)
	SubmitResult(ctx context.Context, req *models.SubmitResultRequest) (*models.Result, error)
	Resolve(ctx context.Context, blockCode string, maxDifference float64) (*models.Resolution, error)
	PendingBlocks(ctx context.Context, filter models.PendingBlocksFilter, limit int) ([]models.Block, error)
	AssignmentStats(ctx context.Context, examinerID string) (*models.AssignmentStats, error)
}

type gradingService struct {
	scheduler      SchedulerService
	results        ResultService
	consensus      ConsensusService
	assignmentRepo repository.AssignmentRepository
	resultRepo     repository.ResultRepository
	blockRepo      repository.BlockRepository
	publisher      integration.EventPublisher
	cfg            config.GradingConfig
	logger         zerolog.Logger
}

func NewGradingService(
	scheduler SchedulerService,
	results ResultService,
	consensus ConsensusService,
	assignmentRepo repository.AssignmentRepository,
	resultRepo repository.ResultRepository,
	blockRepo repository.BlockRepository,
	publisher integration.EventPublisher,
	cfg config.GradingConfig,
	logger zerolog.Logger,
) GradingService {
	return &gradingService{
		scheduler:      scheduler,
		results:        results,
		consensus:      consensus,
		assignmentRepo: assignmentRepo,
		resultRepo:     resultRepo,
		blockRepo:      blockRepo,
		publisher:      publisher,
		cfg:            cfg,
		logger:         logger,
	}
}

func (s *gradingService) AutoAssign(ctx context.Context, req *models.AutoAssignRequest) (*models.AutoAssignResponse, error) {
	return s.scheduler.AutoAssign(ctx, req)
}

// SubmitResult persists the score, then completes the assignment and, once
// a second result lands, signals the content store that the block is
// graded. Score recording and status transition stay separate operations.
func (s *gradingService) SubmitResult(ctx context.Context, req *models.SubmitResultRequest) (*models.Result, error) {
	result, err := s.results.Submit(ctx, req)
	if err != nil {
		return nil, err
	}

	if _, err := s.scheduler.UpdateStatus(ctx, req.AssignmentID, models.AssignmentStatusCompleted.String()); err != nil {
		if !errors.Is(err, ErrInvalidTransition) {
			s.logger.Error().Err(err).
				Str("assignment_id", req.AssignmentID).
				Msg("Failed to complete assignment after submission")
		}
	}

	assignment, err := s.assignmentRepo.GetByID(ctx, req.AssignmentID)
	if err != nil || assignment == nil {
		s.logger.Error().Err(err).Str("assignment_id", req.AssignmentID).Msg("Failed to reload assignment")
		return result, nil
	}

	blockResults, err := s.resultRepo.GetByBlock(ctx, assignment.BlockCode)
	if err != nil {
		s.logger.Error().Err(err).Str("block_code", assignment.BlockCode).Msg("Failed to count block results")
		return result, nil
	}

	if len(blockResults) >= 2 {
		if err := s.blockRepo.UpdateStatus(ctx, assignment.BlockCode, models.BlockStatusGraded.String()); err != nil {
			s.logger.Error().Err(err).Str("block_code", assignment.BlockCode).Msg("Failed to signal block graded")
		}
	}

	return result, nil
}

// Resolve computes the consensus verdict and drives the follow-up: a
// needs-third-round verdict schedules exactly one extra assignment (if none
// exists yet), a final verdict signals block completion. The verdict itself
// is still derived purely from results, so repeated calls return the same
// outcome.
func (s *gradingService) Resolve(ctx context.Context, blockCode string, maxDifference float64) (*models.Resolution, error) {
	resolution, err := s.consensus.Resolve(ctx, blockCode, maxDifference)
	if err != nil {
		return nil, err
	}

	switch resolution.Outcome {
	case models.OutcomeNeedsThirdRound:
		s.escalateThirdRound(ctx, blockCode, resolution)
	case models.OutcomeMatched, models.OutcomeResolvedByThird:
		if err := s.blockRepo.UpdateStatus(ctx, blockCode, models.BlockStatusCompleted.String()); err != nil {
			s.logger.Error().Err(err).Str("block_code", blockCode).Msg("Failed to signal block completed")
		}
		s.publishResolved(ctx, resolution)
	}

	return resolution, nil
}

// escalateThirdRound creates the tie-breaking assignment. Requesting one
// more slot than currently exists reuses the greedy lowest-load pick and
// keeps round numbering gap-free.
func (s *gradingService) escalateThirdRound(ctx context.Context, blockCode string, resolution *models.Resolution) {
	existing, err := s.assignmentRepo.CountByBlock(ctx, blockCode)
	if err != nil {
		s.logger.Error().Err(err).Str("block_code", blockCode).Msg("Failed to count assignments for escalation")
		return
	}
	if existing > resolution.ResultCount {
		// A tie-break assignment exists and is awaiting its result.
		return
	}

	resp, err := s.scheduler.AutoAssign(ctx, &models.AutoAssignRequest{
		BlockCodes:        []string{blockCode},
		RequestedBy:       "consensus-resolver",
		Priority:          models.PriorityHigh.String(),
		ExaminersPerBlock: existing + 1,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("block_code", blockCode).Msg("Failed to schedule third round")
		return
	}
	if len(resp.Successes) == 0 {
		s.logger.Warn().
			Str("block_code", blockCode).
			Interface("failures", resp.Failures).
			Msg("Third round could not be scheduled")
		return
	}

	created := resp.Successes[0]
	s.logger.Info().
		Str("block_code", blockCode).
		Str("examiner_id", created.ExaminerID).
		Int("round_number", created.RoundNumber).
		Msg("Third grading round scheduled")

	if s.publisher == nil {
		return
	}

	event := &models.ThirdRoundRequestedEvent{
		BlockCode:    blockCode,
		AssignmentID: created.AssignmentID,
		ExaminerID:   created.ExaminerID,
		Scores:       resolution.Scores,
		Timestamp:    time.Now().Unix(),
	}
	if err := s.publisher.PublishThirdRoundRequested(ctx, event); err != nil {
		s.logger.Error().Err(err).Str("block_code", blockCode).Msg("Failed to publish third round event")
	}
}

func (s *gradingService) publishResolved(ctx context.Context, resolution *models.Resolution) {
	if s.publisher == nil || resolution.FinalScore == nil {
		return
	}

	event := &models.GradingResolvedEvent{
		BlockCode:   resolution.BlockCode,
		Outcome:     resolution.Outcome.String(),
		FinalScore:  *resolution.FinalScore,
		ResultCount: resolution.ResultCount,
		Timestamp:   time.Now().Unix(),
	}
	if err := s.publisher.PublishGradingResolved(ctx, event); err != nil {
		s.logger.Error().Err(err).Str("block_code", resolution.BlockCode).Msg("Failed to publish resolved event")
	}
}

func (s *gradingService) PendingBlocks(ctx context.Context, filter models.PendingBlocksFilter, limit int) ([]models.Block, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}

	blocks, err := s.blockRepo.GetPending(ctx, filter, s.cfg.ExaminersPerBlock, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending blocks: %w", err)
	}

	return blocks, nil
}

func (s *gradingService) AssignmentStats(ctx context.Context, examinerID string) (*models.AssignmentStats, error) {
	stats, err := s.assignmentRepo.Stats(ctx, examinerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignment stats: %w", err)
	}

	return stats, nil
}
