package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog"

	"github.com/quangtus/HeThongChamThi-sub000/internal/models"
)

// BlockRepository reads blocks owned by the exam-content collaborator.
// The only mutation the engine performs is the status signal.
type BlockRepository interface {
	GetByCode(ctx context.Context, code string) (*models.Block, error)
	Exists(ctx context.Context, code string) (bool, error)
	UpdateStatus(ctx context.Context, code, status string) error
	GetPending(ctx context.Context, filter models.PendingBlocksFilter, examinersPerBlock, limit int) ([]models.Block, error)
}

type blockRepository struct {
	*PostgresRepository
}

func NewBlockRepository(db *sql.DB, logger zerolog.Logger) BlockRepository {
	return &blockRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *blockRepository) GetByCode(ctx context.Context, code string) (*models.Block, error) {
	query := `
		SELECT code, exam_id, subject_id, max_score, status, created_at, updated_at
		FROM blocks
		WHERE code = $1
	`

	block := &models.Block{}
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&block.Code,
		&block.ExamID,
		&block.SubjectID,
		&block.MaxScore,
		&block.Status,
		&block.CreatedAt,
		&block.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return block, err
}

func (r *blockRepository) Exists(ctx context.Context, code string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM blocks WHERE code = $1)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, code).Scan(&exists)
	return exists, err
}

func (r *blockRepository) UpdateStatus(ctx context.Context, code, status string) error {
	query := `
		UPDATE blocks
		SET status = $1, updated_at = $2
		WHERE code = $3
	`

	res, err := r.db.ExecContext(ctx, query, status, time.Now(), code)
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

// GetPending returns blocks that still have fewer assignments than
// examinersPerBlock, optionally filtered by subject or exam.
func (r *blockRepository) GetPending(ctx context.Context, filter models.PendingBlocksFilter, examinersPerBlock, limit int) ([]models.Block, error) {
	query := `
		SELECT
			b.code, b.exam_id, b.subject_id, b.max_score, b.status, b.created_at, b.updated_at
		FROM blocks b
		LEFT JOIN assignments a ON a.block_code = b.code
		WHERE ($1 = '' OR b.subject_id = $1)
			AND ($2 = '' OR b.exam_id = $2)
		GROUP BY b.code
		HAVING COUNT(a.id) < $3
		ORDER BY b.code
		LIMIT $4
	`

	rows, err := r.db.QueryContext(ctx, query, filter.SubjectID, filter.ExamID, examinersPerBlock, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocks []models.Block
	for rows.Next() {
		var block models.Block
		err := rows.Scan(
			&block.Code,
			&block.ExamID,
			&block.SubjectID,
			&block.MaxScore,
			&block.Status,
			&block.CreatedAt,
			&block.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}

	return blocks, rows.Err()
}
