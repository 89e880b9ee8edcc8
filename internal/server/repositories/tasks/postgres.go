// Package tasks provides the PostgreSQL-backed repository for task records.
package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dklimov/taskvault/internal/common"
	"github.com/dklimov/taskvault/internal/dbx"
	"github.com/dklimov/taskvault/internal/server/models"
)

const taskColumns = "id, user_id, title, description, completed, created_at, completed_at"

// PostgresRepository implements task storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanTask(row *sql.Row) (*models.Task, error) {
	task := &models.Task{}
	err := row.Scan(&task.ID, &task.UserID, &task.Title, &task.Description,
		&task.Completed, &task.CreatedAt, &task.CompletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return task, nil
}

func (r *PostgresRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {

	query :=
		`INSERT INTO tasks (id, user_id, title, description)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		task.ID, task.UserID, task.Title, task.Description).Scan(&task.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return task, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	return scanTask(r.db.QueryRowContext(ctx, query, id))
}

// SelectByUser returns the user's tasks, newest first.
func (r *PostgresRepository) SelectByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id
		 LIMIT $2 OFFSET $3
		 `

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to select tasks: %w", err)
	}
	defer rows.Close()

	var result []*models.Task
	for rows.Next() {
		var item models.Task
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.Title, &item.Description,
			&item.Completed, &item.CreatedAt, &item.CompletedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) CountByUser(ctx context.Context, userID string) (Counts, error) {
	query :=
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE completed) FROM tasks
		 WHERE user_id = $1
		 `

	var c Counts
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&c.Total, &c.Completed); err != nil {
		return Counts{}, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, title string, description *string) (*models.Task, error) {
	query :=
		`UPDATE tasks SET title = $2, description = $3
		 WHERE id = $1
		 RETURNING ` + taskColumns

	return scanTask(r.db.QueryRowContext(ctx, query, id, title, description))
}

// SetCompleted updates the flag and its timestamp in one statement, so the
// pair never diverges under concurrent toggles.
func (r *PostgresRepository) SetCompleted(ctx context.Context, id string, completed bool, completedAt *time.Time) (*models.Task, error) {
	query :=
		`UPDATE tasks SET completed = $2, completed_at = $3
		 WHERE id = $1
		 RETURNING ` + taskColumns

	return scanTask(r.db.QueryRowContext(ctx, query, id, completed, completedAt))
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
