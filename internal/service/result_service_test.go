package service_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quangtus/HeThongChamThi-sub000/internal/models"
	"github.com/quangtus/HeThongChamThi-sub000/internal/repository"
	"github.com/quangtus/HeThongChamThi-sub000/internal/service"
)

func newResultEnv(t *testing.T) (*testEnv, *models.Assignment) {
	t.Helper()

	env := newTestEnv(defaultGradingConfig())
	env.addExaminer("e1", true)
	env.addExaminer("e2", true)
	env.addBlock("B1", 10)

	assignment, err := env.scheduler.CreateAssignment(env.ctx, &models.CreateAssignmentRequest{
		BlockCode:   "B1",
		ExaminerID:  "e1",
		RoundNumber: 1,
		AssignedBy:  "admin",
	})
	require.NoError(t, err)

	return env, assignment
}

func TestSubmitStoresDraftResult(t *testing.T) {
	env, assignment := newResultEnv(t)

	duration := 42
	result, err := env.resultSvc.Submit(env.ctx, &models.SubmitResultRequest{
		AssignmentID:    assignment.ID,
		ExaminerID:      "e1",
		Score:           8.25,
		Comments:        "clean solution",
		RubricSnapshot:  json.RawMessage(`{"criteria":[{"name":"correctness","points":8.25}]}`),
		GradingDuration: &duration,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, result.ID)
	assert.Equal(t, assignment.ID, result.AssignmentID)
	assert.Equal(t, "e1", result.ExaminerID)
	assert.Equal(t, 8.25, result.Score)
	assert.Equal(t, "clean solution", result.Comments)
	assert.False(t, result.IsFinal, "a fresh submission is a draft")

	stored, err := env.results.GetByAssignment(env.ctx, assignment.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, result.ID, stored.ID)
}

func TestSubmitUnknownAssignment(t *testing.T) {
	env, _ := newResultEnv(t)

	_, err := env.resultSvc.Submit(env.ctx, &models.SubmitResultRequest{
		AssignmentID: "no-such-assignment",
		ExaminerID:   "e1",
		Score:        7.0,
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSubmitByWrongExaminer(t *testing.T) {
	env, assignment := newResultEnv(t)

	_, err := env.resultSvc.Submit(env.ctx, &models.SubmitResultRequest{
		AssignmentID: assignment.ID,
		ExaminerID:   "e2",
		Score:        7.0,
	})
	assert.ErrorIs(t, err, service.ErrWrongExaminer)

	stored, _ := env.results.GetByAssignment(env.ctx, assignment.ID)
	assert.Nil(t, stored, "rejected submission must not persist")
}

func TestSubmitDuplicateResult(t *testing.T) {
	env, assignment := newResultEnv(t)

	req := &models.SubmitResultRequest{
		AssignmentID: assignment.ID,
		ExaminerID:   "e1",
		Score:        7.0,
	}

	_, err := env.resultSvc.Submit(env.ctx, req)
	require.NoError(t, err)

	req.Score = 8.0
	_, err = env.resultSvc.Submit(env.ctx, req)
	assert.ErrorIs(t, err, repository.ErrDuplicateResult)
}

func TestSubmitScoreValidation(t *testing.T) {
	env, assignment := newResultEnv(t)

	_, err := env.resultSvc.Submit(env.ctx, &models.SubmitResultRequest{
		AssignmentID: assignment.ID, ExaminerID: "e1", Score: -0.5,
	})
	assert.ErrorIs(t, err, service.ErrInvalidScore)

	_, err = env.resultSvc.Submit(env.ctx, &models.SubmitResultRequest{
		AssignmentID: assignment.ID, ExaminerID: "e1", Score: 10.5,
	})
	assert.ErrorIs(t, err, service.ErrInvalidScore, "score above the block max")

	// Both bounds are inclusive.
	_, err = env.resultSvc.Submit(env.ctx, &models.SubmitResultRequest{
		AssignmentID: assignment.ID, ExaminerID: "e1", Score: 10.0,
	})
	assert.NoError(t, err)
}

func TestUpdateDraftResult(t *testing.T) {
	env, assignment := newResultEnv(t)

	result, err := env.resultSvc.Submit(env.ctx, &models.SubmitResultRequest{
		AssignmentID: assignment.ID, ExaminerID: "e1", Score: 7.0,
	})
	require.NoError(t, err)

	score := 7.5
	comments := "revised after rubric check"
	updated, err := env.resultSvc.Update(env.ctx, result.ID, &models.UpdateResultRequest{
		Score:    &score,
		Comments: &comments,
	})
	require.NoError(t, err)
	assert.Equal(t, 7.5, updated.Score)
	assert.Equal(t, comments, updated.Comments)

	bad := 11.0
	_, err = env.resultSvc.Update(env.ctx, result.ID, &models.UpdateResultRequest{Score: &bad})
	assert.ErrorIs(t, err, service.ErrInvalidScore)
}

func TestUpdateFinalResultRejected(t *testing.T) {
	env, assignment := newResultEnv(t)

	result, err := env.resultSvc.Submit(env.ctx, &models.SubmitResultRequest{
		AssignmentID: assignment.ID, ExaminerID: "e1", Score: 7.0,
	})
	require.NoError(t, err)

	_, err = env.resultSvc.Finalize(env.ctx, result.ID)
	require.NoError(t, err)

	score := 8.0
	_, err = env.resultSvc.Update(env.ctx, result.ID, &models.UpdateResultRequest{Score: &score})
	assert.ErrorIs(t, err, service.ErrResultFinal)

	stored, _ := env.results.GetByID(env.ctx, result.ID)
	require.NotNil(t, stored)
	assert.Equal(t, 7.0, stored.Score, "finalized score must not move")
}

func TestUpdateUnknownResult(t *testing.T) {
	env, _ := newResultEnv(t)

	score := 8.0
	_, err := env.resultSvc.Update(env.ctx, "no-such-result", &models.UpdateResultRequest{Score: &score})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestFinalizeIsIdempotent(t *testing.T) {
	env, assignment := newResultEnv(t)

	result, err := env.resultSvc.Submit(env.ctx, &models.SubmitResultRequest{
		AssignmentID: assignment.ID, ExaminerID: "e1", Score: 7.0,
	})
	require.NoError(t, err)

	first, err := env.resultSvc.Finalize(env.ctx, result.ID)
	require.NoError(t, err)
	assert.True(t, first.IsFinal)

	second, err := env.resultSvc.Finalize(env.ctx, result.ID)
	require.NoError(t, err)
	assert.True(t, second.IsFinal)
}
