package service_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quangtus/HeThongChamThi-sub000/internal/config"
	"github.com/quangtus/HeThongChamThi-sub000/internal/models"
	"github.com/quangtus/HeThongChamThi-sub000/internal/repository"
	"github.com/quangtus/HeThongChamThi-sub000/internal/service"
)

// In-memory fakes of the repository interfaces. They mirror the Postgres
// behavior the services rely on, including the unique-constraint mapping.

type fakeExaminerRepo struct {
	examiners []models.Examiner
}

func (f *fakeExaminerRepo) GetByID(ctx context.Context, id string) (*models.Examiner, error) {
	for i := range f.examiners {
		if f.examiners[i].ID == id {
			e := f.examiners[i]
			return &e, nil
		}
	}
	return nil, nil
}

func (f *fakeExaminerRepo) GetActive(ctx context.Context) ([]models.Examiner, error) {
	var active []models.Examiner
	for _, e := range f.examiners {
		if e.Active {
			active = append(active, e)
		}
	}
	return active, nil
}

func (f *fakeExaminerRepo) Exists(ctx context.Context, id string) (bool, error) {
	e, _ := f.GetByID(ctx, id)
	return e != nil, nil
}

type fakeBlockRepo struct {
	blocks      map[string]*models.Block
	assignments *fakeAssignmentRepo
}

func (f *fakeBlockRepo) GetByCode(ctx context.Context, code string) (*models.Block, error) {
	b, ok := f.blocks[code]
	if !ok {
		return nil, nil
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBlockRepo) Exists(ctx context.Context, code string) (bool, error) {
	_, ok := f.blocks[code]
	return ok, nil
}

func (f *fakeBlockRepo) UpdateStatus(ctx context.Context, code, status string) error {
	b, ok := f.blocks[code]
	if !ok {
		return repository.ErrNotFound
	}
	b.Status = status
	return nil
}

func (f *fakeBlockRepo) GetPending(ctx context.Context, filter models.PendingBlocksFilter, examinersPerBlock, limit int) ([]models.Block, error) {
	codes := make([]string, 0, len(f.blocks))
	for code := range f.blocks {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var pending []models.Block
	for _, code := range codes {
		if len(pending) >= limit {
			break
		}
		b := f.blocks[code]
		if filter.SubjectID != "" && b.SubjectID != filter.SubjectID {
			continue
		}
		if filter.ExamID != "" && b.ExamID != filter.ExamID {
			continue
		}
		count, _ := f.assignments.CountByBlock(ctx, code)
		if count < examinersPerBlock {
			pending = append(pending, *b)
		}
	}
	return pending, nil
}

type fakeAssignmentRepo struct {
	mu      sync.Mutex
	items   map[string]*models.Assignment
	results *fakeResultRepo
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{items: make(map[string]*models.Assignment)}
}

func (f *fakeAssignmentRepo) Create(ctx context.Context, assignment *models.Assignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, a := range f.items {
		if a.BlockCode == assignment.BlockCode && a.ExaminerID == assignment.ExaminerID {
			return repository.ErrDuplicateAssignment
		}
	}

	copied := *assignment
	f.items[assignment.ID] = &copied
	return nil
}

func (f *fakeAssignmentRepo) GetByID(ctx context.Context, id string) (*models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	a, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	copied := *a
	return &copied, nil
}

func (f *fakeAssignmentRepo) GetByBlock(ctx context.Context, blockCode string) ([]models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var assignments []models.Assignment
	for _, a := range f.items {
		if a.BlockCode == blockCode {
			assignments = append(assignments, *a)
		}
	}
	sort.Slice(assignments, func(i, j int) bool {
		return assignments[i].RoundNumber < assignments[j].RoundNumber
	})
	return assignments, nil
}

func (f *fakeAssignmentRepo) CountByBlock(ctx context.Context, blockCode string) (int, error) {
	assignments, _ := f.GetByBlock(ctx, blockCode)
	return len(assignments), nil
}

func (f *fakeAssignmentRepo) ExistsByBlockAndExaminer(ctx context.Context, blockCode, examinerID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, a := range f.items {
		if a.BlockCode == blockCode && a.ExaminerID == examinerID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAssignmentRepo) CountOpenByExaminer(ctx context.Context, examinerID string) (int, error) {
	counts, _ := f.OpenCountsByExaminer(ctx)
	return counts[examinerID], nil
}

func (f *fakeAssignmentRepo) OpenCountsByExaminer(ctx context.Context) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	counts := make(map[string]int)
	for _, a := range f.items {
		if a.Status == "assigned" || a.Status == "in_progress" {
			counts[a.ExaminerID]++
		}
	}
	return counts, nil
}

func (f *fakeAssignmentRepo) UpdateStatus(ctx context.Context, id, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	a, ok := f.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.Status = status
	return nil
}

func (f *fakeAssignmentRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.items, id)

	if f.results != nil {
		f.results.deleteByAssignment(id)
	}
	return nil
}

func (f *fakeAssignmentRepo) Stats(ctx context.Context, examinerID string) (*models.AssignmentStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stats := &models.AssignmentStats{}
	for _, a := range f.items {
		if examinerID != "" && a.ExaminerID != examinerID {
			continue
		}
		stats.Total++
		switch a.Status {
		case "assigned":
			stats.Assigned++
		case "in_progress":
			stats.InProgress++
		case "completed":
			stats.Completed++
		case "overdue":
			stats.Overdue++
		}
	}
	return stats, nil
}

type fakeResultRepo struct {
	mu          sync.Mutex
	items       map[string]*models.Result
	assignments *fakeAssignmentRepo
}

func newFakeResultRepo() *fakeResultRepo {
	return &fakeResultRepo{items: make(map[string]*models.Result)}
}

func (f *fakeResultRepo) Create(ctx context.Context, result *models.Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, r := range f.items {
		if r.AssignmentID == result.AssignmentID {
			return repository.ErrDuplicateResult
		}
	}

	copied := *result
	f.items[result.ID] = &copied
	return nil
}

func (f *fakeResultRepo) GetByID(ctx context.Context, id string) (*models.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	copied := *r
	return &copied, nil
}

func (f *fakeResultRepo) GetByAssignment(ctx context.Context, assignmentID string) (*models.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, r := range f.items {
		if r.AssignmentID == assignmentID {
			copied := *r
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeResultRepo) GetByBlock(ctx context.Context, blockCode string) ([]models.BlockResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var results []models.BlockResult
	for _, r := range f.items {
		assignment, _ := f.assignments.GetByID(ctx, r.AssignmentID)
		if assignment == nil || assignment.BlockCode != blockCode {
			continue
		}
		results = append(results, models.BlockResult{
			Result:      *r,
			RoundNumber: assignment.RoundNumber,
		})
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].RoundNumber < results[j].RoundNumber
	})
	return results, nil
}

func (f *fakeResultRepo) ExistsByAssignment(ctx context.Context, assignmentID string) (bool, error) {
	r, _ := f.GetByAssignment(ctx, assignmentID)
	return r != nil, nil
}

func (f *fakeResultRepo) Update(ctx context.Context, result *models.Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.items[result.ID]
	if !ok || r.IsFinal {
		return repository.ErrNotFound
	}
	r.Score = result.Score
	r.Comments = result.Comments
	return nil
}

func (f *fakeResultRepo) Finalize(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.IsFinal = true
	return nil
}

func (f *fakeResultRepo) deleteByAssignment(assignmentID string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for id, r := range f.items {
		if r.AssignmentID == assignmentID {
			delete(f.items, id)
		}
	}
}

type fakePublisher struct {
	mu         sync.Mutex
	thirdRound []models.ThirdRoundRequestedEvent
	resolved   []models.GradingResolvedEvent
}

func (f *fakePublisher) PublishThirdRoundRequested(ctx context.Context, event *models.ThirdRoundRequestedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.thirdRound = append(f.thirdRound, *event)
	return nil
}

func (f *fakePublisher) PublishGradingResolved(ctx context.Context, event *models.GradingResolvedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolved = append(f.resolved, *event)
	return nil
}

func (f *fakePublisher) Close() error {
	return nil
}

type testEnv struct {
	ctx         context.Context
	cfg         config.GradingConfig
	examiners   *fakeExaminerRepo
	blocks      *fakeBlockRepo
	assignments *fakeAssignmentRepo
	results     *fakeResultRepo
	publisher   *fakePublisher
	tracker     service.WorkloadTracker
	scheduler   service.SchedulerService
	resultSvc   service.ResultService
	consensus   service.ConsensusService
	grading     service.GradingService
}

func newTestEnv(cfg config.GradingConfig) *testEnv {
	log := zerolog.Nop()

	examiners := &fakeExaminerRepo{}
	assignments := newFakeAssignmentRepo()
	results := newFakeResultRepo()
	assignments.results = results
	results.assignments = assignments
	blocks := &fakeBlockRepo{
		blocks:      make(map[string]*models.Block),
		assignments: assignments,
	}
	publisher := &fakePublisher{}

	tracker := service.NewWorkloadTracker(assignments, examiners, log)
	scheduler := service.NewSchedulerService(assignments, examiners, blocks, tracker, cfg, log)
	resultSvc := service.NewResultService(results, assignments, blocks, log)
	consensus := service.NewConsensusService(results, blocks, cfg, log)
	grading := service.NewGradingService(
		scheduler, resultSvc, consensus,
		assignments, results, blocks,
		publisher, cfg, log,
	)

	return &testEnv{
		ctx:         context.Background(),
		cfg:         cfg,
		examiners:   examiners,
		blocks:      blocks,
		assignments: assignments,
		results:     results,
		publisher:   publisher,
		tracker:     tracker,
		scheduler:   scheduler,
		resultSvc:   resultSvc,
		consensus:   consensus,
		grading:     grading,
	}
}

func defaultGradingConfig() config.GradingConfig {
	return config.GradingConfig{
		ExaminersPerBlock: 2,
		MaxDifference:     1.0,
		StrictTransitions: false,
	}
}

func (e *testEnv) addExaminer(id string, active bool) {
	now := time.Now()
	e.examiners.examiners = append(e.examiners.examiners, models.Examiner{
		ID:        id,
		FullName:  "Examiner " + id,
		Email:     id + "@example.com",
		Active:    active,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (e *testEnv) addBlock(code string, maxScore float64) {
	now := time.Now()
	e.blocks.blocks[code] = &models.Block{
		Code:      code,
		MaxScore:  maxScore,
		Status:    models.BlockStatusPending.String(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// seedGradedRound plants a completed assignment with its submitted result,
// bypassing the services.
func (e *testEnv) seedGradedRound(blockCode, examinerID string, round int, score float64) {
	now := time.Now()
	assignment := &models.Assignment{
		ID:          uuid.New().String(),
		BlockCode:   blockCode,
		ExaminerID:  examinerID,
		RoundNumber: round,
		Priority:    models.PriorityMedium.String(),
		Status:      models.AssignmentStatusCompleted.String(),
		AssignedBy:  "seed",
		AssignedAt:  now,
		UpdatedAt:   now,
	}
	if err := e.assignments.Create(e.ctx, assignment); err != nil {
		panic(err)
	}

	result := &models.Result{
		ID:           uuid.New().String(),
		AssignmentID: assignment.ID,
		ExaminerID:   examinerID,
		Score:        score,
		GradedAt:     now,
		UpdatedAt:    now,
	}
	if err := e.results.Create(e.ctx, result); err != nil {
		panic(err)
	}
}
