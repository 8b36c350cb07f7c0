package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog"

	"github.com/quangtus/HeThongChamThi-sub000/internal/models"
)

const resultAssignmentConstraint = "results_assignment_id_key"

type ResultRepository interface {
	Create(ctx context.Context, result *models.Result) error
	GetByID(ctx context.Context, id string) (*models.Result, error)
	GetByAssignment(ctx context.Context, assignmentID string) (*models.Result, error)
	GetByBlock(ctx context.Context, blockCode string) ([]models.BlockResult, error)
	ExistsByAssignment(ctx context.Context, assignmentID string) (bool, error)
	Update(ctx context.Context, result *models.Result) error
	Finalize(ctx context.Context, id string) error
}

type resultRepository struct {
	*PostgresRepository
}

func NewResultRepository(db *sql.DB, logger zerolog.Logger) ResultRepository {
	return &resultRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *resultRepository) Create(ctx context.Context, result *models.Result) error {
	query := `
		INSERT INTO results (id, assignment_id, examiner_id, score, comments, rubric_snapshot, grading_duration, is_final, graded_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		result.ID,
		result.AssignmentID,
		result.ExaminerID,
		result.Score,
		result.Comments,
		nullableJSON(result.RubricSnapshot),
		result.GradingDuration,
		result.IsFinal,
		result.GradedAt,
		result.UpdatedAt,
	)

	if isUniqueViolation(err, resultAssignmentConstraint) {
		return ErrDuplicateResult
	}

	return err
}

func (r *resultRepository) GetByID(ctx context.Context, id string) (*models.Result, error) {
	query := `
		SELECT id, assignment_id, examiner_id, score, comments, rubric_snapshot, grading_duration, is_final, graded_at, updated_at
		FROM results
		WHERE id = $1
	`

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *resultRepository) GetByAssignment(ctx context.Context, assignmentID string) (*models.Result, error) {
	query := `
		SELECT id, assignment_id, examiner_id, score, comments, rubric_snapshot, grading_duration, is_final, graded_at, updated_at
		FROM results
		WHERE assignment_id = $1
	`

	return r.scanOne(r.db.QueryRowContext(ctx, query, assignmentID))
}

// GetByBlock loads all results for a block's assignments ordered by round
// number ascending, the chronological order consensus resolution relies on.
func (r *resultRepository) GetByBlock(ctx context.Context, blockCode string) ([]models.BlockResult, error) {
	query := `
		SELECT
			res.id, res.assignment_id, res.examiner_id, res.score, res.comments,
			res.rubric_snapshot, res.grading_duration, res.is_final, res.graded_at, res.updated_at,
			a.round_number
		FROM results res
		JOIN assignments a ON a.id = res.assignment_id
		WHERE a.block_code = $1
		ORDER BY a.round_number, res.graded_at
	`

	rows, err := r.db.QueryContext(ctx, query, blockCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.BlockResult
	for rows.Next() {
		var result models.BlockResult
		var comments sql.NullString
		var rubric []byte
		err := rows.Scan(
			&result.ID,
			&result.AssignmentID,
			&result.ExaminerID,
			&result.Score,
			&comments,
			&rubric,
			&result.GradingDuration,
			&result.IsFinal,
			&result.GradedAt,
			&result.UpdatedAt,
			&result.RoundNumber,
		)
		if err != nil {
			return nil, err
		}
		result.Comments = comments.String
		result.RubricSnapshot = rubric
		results = append(results, result)
	}

	return results, rows.Err()
}

func (r *resultRepository) ExistsByAssignment(ctx context.Context, assignmentID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM results WHERE assignment_id = $1)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, assignmentID).Scan(&exists)
	return exists, err
}

func (r *resultRepository) Update(ctx context.Context, result *models.Result) error {
	query := `
		UPDATE results
		SET score = $1, comments = $2, updated_at = $3
		WHERE id = $4 AND is_final = FALSE
	`

	res, err := r.db.ExecContext(ctx, query, result.Score, result.Comments, time.Now(), result.ID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *resultRepository) Finalize(ctx context.Context, id string) error {
	query := `
		UPDATE results
		SET is_final = TRUE, updated_at = $1
		WHERE id = $2
	`

	res, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *resultRepository) scanOne(row *sql.Row) (*models.Result, error) {
	result := &models.Result{}
	var comments sql.NullString
	var rubric []byte

	err := row.Scan(
		&result.ID,
		&result.AssignmentID,
		&result.ExaminerID,
		&result.Score,
		&comments,
		&rubric,
		&result.GradingDuration,
		&result.IsFinal,
		&result.GradedAt,
		&result.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	result.Comments = comments.String
	result.RubricSnapshot = rubric
	return result, nil
}

// nullableJSON maps an empty snapshot to NULL so the JSONB column does not
// reject a zero-length payload.
func nullableJSON(raw []byte) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return raw
}
