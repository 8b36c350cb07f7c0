package repository

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/quangtus/HeThongChamThi-sub000/internal/models"
)

// ExaminerRepository is a read-only view over the roster collaborator.
type ExaminerRepository interface {
	GetByID(ctx context.Context, id string) (*models.Examiner, error)
	GetActive(ctx context.Context) ([]models.Examiner, error)
	Exists(ctx context.Context, id string) (bool, error)
}

type examinerRepository struct {
	*PostgresRepository
}

func NewExaminerRepository(db *sql.DB, logger zerolog.Logger) ExaminerRepository {
	return &examinerRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *examinerRepository) GetByID(ctx context.Context, id string) (*models.Examiner, error) {
	query := `
		SELECT id, full_name, email, active, created_at, updated_at
		FROM examiners
		WHERE id = $1
	`

	examiner := &models.Examiner{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&examiner.ID,
		&examiner.FullName,
		&examiner.Email,
		&examiner.Active,
		&examiner.CreatedAt,
		&examiner.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return examiner, err
}

func (r *examinerRepository) GetActive(ctx context.Context) ([]models.Examiner, error) {
	query := `
		SELECT id, full_name, email, active, created_at, updated_at
		FROM examiners
		WHERE active = TRUE
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var examiners []models.Examiner
	for rows.Next() {
		var examiner models.Examiner
		err := rows.Scan(
			&examiner.ID,
			&examiner.FullName,
			&examiner.Email,
			&examiner.Active,
			&examiner.CreatedAt,
			&examiner.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		examiners = append(examiners, examiner)
	}

	return examiners, rows.Err()
}

func (r *examinerRepository) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM examiners WHERE id = $1)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, id).Scan(&exists)
	return exists, err
}
