package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog"

	"github.com/quangtus/HeThongChamThi-sub000/internal/models"
)

const assignmentBlockExaminerConstraint = "assignments_block_code_examiner_id_key"

type AssignmentRepository interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	GetByID(ctx context.Context, id string) (*models.Assignment, error)
	GetByBlock(ctx context.Context, blockCode string) ([]models.Assignment, error)
	CountByBlock(ctx context.Context, blockCode string) (int, error)
	ExistsByBlockAndExaminer(ctx context.Context, blockCode, examinerID string) (bool, error)
	CountOpenByExaminer(ctx context.Context, examinerID string) (int, error)
	OpenCountsByExaminer(ctx context.Context) (map[string]int, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, examinerID string) (*models.AssignmentStats, error)
}

type assignmentRepository struct {
	*PostgresRepository
}

func NewAssignmentRepository(db *sql.DB, logger zerolog.Logger) AssignmentRepository {
	return &assignmentRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	query := `
		INSERT INTO assignments (id, block_code, examiner_id, round_number, priority, deadline, status, assigned_by, assigned_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		assignment.ID,
		assignment.BlockCode,
		assignment.ExaminerID,
		assignment.RoundNumber,
		assignment.Priority,
		assignment.Deadline,
		assignment.Status,
		assignment.AssignedBy,
		assignment.AssignedAt,
		assignment.UpdatedAt,
	)

	if isUniqueViolation(err, assignmentBlockExaminerConstraint) {
		return ErrDuplicateAssignment
	}

	return err
}

func (r *assignmentRepository) GetByID(ctx context.Context, id string) (*models.Assignment, error) {
	query := `
		SELECT id, block_code, examiner_id, round_number, priority, deadline, status, assigned_by, assigned_at, updated_at
		FROM assignments
		WHERE id = $1
	`

	assignment := &models.Assignment{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&assignment.ID,
		&assignment.BlockCode,
		&assignment.ExaminerID,
		&assignment.RoundNumber,
		&assignment.Priority,
		&assignment.Deadline,
		&assignment.Status,
		&assignment.AssignedBy,
		&assignment.AssignedAt,
		&assignment.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return assignment, err
}

func (r *assignmentRepository) GetByBlock(ctx context.Context, blockCode string) ([]models.Assignment, error) {
	query := `
		SELECT id, block_code, examiner_id, round_number, priority, deadline, status, assigned_by, assigned_at, updated_at
		FROM assignments
		WHERE block_code = $1
		ORDER BY round_number
	`

	rows, err := r.db.QueryContext(ctx, query, blockCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []models.Assignment
	for rows.Next() {
		var assignment models.Assignment
		err := rows.Scan(
			&assignment.ID,
			&assignment.BlockCode,
			&assignment.ExaminerID,
			&assignment.RoundNumber,
			&assignment.Priority,
			&assignment.Deadline,
			&assignment.Status,
			&assignment.AssignedBy,
			&assignment.AssignedAt,
			&assignment.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, assignment)
	}

	return assignments, rows.Err()
}

func (r *assignmentRepository) CountByBlock(ctx context.Context, blockCode string) (int, error) {
	query := `SELECT COUNT(*) FROM assignments WHERE block_code = $1`
	var count int
	err := r.db.QueryRowContext(ctx, query, blockCode).Scan(&count)
	return count, err
}

func (r *assignmentRepository) ExistsByBlockAndExaminer(ctx context.Context, blockCode, examinerID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM assignments WHERE block_code = $1 AND examiner_id = $2)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, blockCode, examinerID).Scan(&exists)
	return exists, err
}

func (r *assignmentRepository) CountOpenByExaminer(ctx context.Context, examinerID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM assignments
		WHERE examiner_id = $1 AND status IN ('assigned', 'in_progress')
	`

	var count int
	err := r.db.QueryRowContext(ctx, query, examinerID).Scan(&count)
	return count, err
}

// OpenCountsByExaminer returns the open-assignment count per examiner in one
// query. Examiners with no open assignments are absent from the map.
func (r *assignmentRepository) OpenCountsByExaminer(ctx context.Context) (map[string]int, error) {
	query := `
		SELECT examiner_id, COUNT(*)
		FROM assignments
		WHERE status IN ('assigned', 'in_progress')
		GROUP BY examiner_id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var examinerID string
		var count int
		if err := rows.Scan(&examinerID, &count); err != nil {
			return nil, err
		}
		counts[examinerID] = count
	}

	return counts, rows.Err()
}

func (r *assignmentRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `
		UPDATE assignments
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	res, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
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

// Delete removes an assignment and its orphaned result in one transaction.
func (r *assignmentRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM results WHERE assignment_id = $1`, id); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM assignments WHERE id = $1`, id)
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

	return tx.Commit()
}

func (r *assignmentRepository) Stats(ctx context.Context, examinerID string) (*models.AssignmentStats, error) {
	query := `
		SELECT
			COUNT(*) as total,
			COUNT(CASE WHEN status = 'assigned' THEN 1 END) as assigned,
			COUNT(CASE WHEN status = 'in_progress' THEN 1 END) as in_progress,
			COUNT(CASE WHEN status = 'completed' THEN 1 END) as completed,
			COUNT(CASE WHEN status = 'overdue' THEN 1 END) as overdue
		FROM assignments
		WHERE ($1 = '' OR examiner_id = $1)
	`

	stats := &models.AssignmentStats{}
	err := r.db.QueryRowContext(ctx, query, examinerID).Scan(
		&stats.Total,
		&stats.Assigned,
		&stats.InProgress,
		&stats.Completed,
		&stats.Overdue,
	)

	return stats, err
}
