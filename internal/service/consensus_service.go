package service

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/quangtus/HeThongChamThi-sub000/internal/config"
	"github.com/quangtus/HeThongChamThi-sub000/internal/models"
	"github.com/quangtus/HeThongChamThi-sub000/internal/repository"
)

// ConsensusService derives a block's grading verdict from persisted results.
// Resolve is a pure function of store state: no side effects, safe to call
// repeatedly.
type ConsensusService interface {
	Resolve(ctx context.Context, blockCode string, maxDifference float64) (*models.Resolution, error)
}

type consensusService struct {
	resultRepo repository.ResultRepository
	blockRepo  repository.BlockRepository
	cfg        config.GradingConfig
	logger     zerolog.Logger
}

func NewConsensusService(
	resultRepo repository.ResultRepository,
	blockRepo repository.BlockRepository,
	cfg config.GradingConfig,
	logger zerolog.Logger,
) ConsensusService {
	return &consensusService{
		resultRepo: resultRepo,
		blockRepo:  blockRepo,
		cfg:        cfg,
		logger:     logger,
	}
}

// Resolve compares the first two chronological scores against the
// tolerance. Matched pairs average; a pair beyond tolerance waits for a
// third round; once three or more results exist the final score is the mean
// of all of them, the two disagreeing scores included.
func (s *consensusService) Resolve(ctx context.Context, blockCode string, maxDifference float64) (*models.Resolution, error) {
	if maxDifference <= 0 {
		maxDifference = s.cfg.MaxDifference
	}

	exists, err := s.blockRepo.Exists(ctx, blockCode)
	if err != nil {
		return nil, fmt.Errorf("failed to check block: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("block %s: %w", blockCode, repository.ErrNotFound)
	}

	results, err := s.resultRepo.GetByBlock(ctx, blockCode)
	if err != nil {
		return nil, fmt.Errorf("failed to load block results: %w", err)
	}

	scores := make([]float64, 0, len(results))
	for _, r := range results {
		scores = append(scores, r.Score)
	}

	resolution := &models.Resolution{
		BlockCode:     blockCode,
		MaxDifference: maxDifference,
		Scores:        scores,
		ResultCount:   len(scores),
	}

	if len(scores) < 2 {
		resolution.Outcome = models.OutcomePending
		return resolution, nil
	}

	diff := math.Abs(scores[0] - scores[1])
	resolution.Difference = &diff

	switch {
	case diff <= maxDifference:
		resolution.Outcome = models.OutcomeMatched
		final := roundScore((scores[0] + scores[1]) / 2)
		resolution.FinalScore = &final
	case len(scores) >= 3:
		resolution.Outcome = models.OutcomeResolvedByThird
		final := roundScore(mean(scores))
		resolution.FinalScore = &final
	default:
		resolution.Outcome = models.OutcomeNeedsThirdRound
	}

	return resolution, nil
}

func mean(scores []float64) float64 {
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}

// roundScore rounds half-up to 2 decimal places.
func roundScore(score float64) float64 {
	return math.Floor(score*100+0.5) / 100
}
