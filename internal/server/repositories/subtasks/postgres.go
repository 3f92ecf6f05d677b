// Package subtasks provides the PostgreSQL-backed repository for subtask
// rows. Statements are scoped to the parent task the same way task statements
// are scoped to their owner; the caller is responsible for verifying that the
// parent task belongs to the requesting user before touching subtasks.
package subtasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taskvault/internal/common"
	"github.com/dmitrijs2005/taskvault/internal/dbx"
	"github.com/dmitrijs2005/taskvault/internal/server/models"
)

const subtaskColumns = "id, name, is_completed, due_date, task_id"

// taskScoped appends the parent-task predicate to a statement. The task id is
// always bound as $1; further predicates continue from $2.
func taskScoped(query string) string {
	return query + " WHERE task_id = $1"
}

// PostgresRepository implements subtask storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a subtask and fills in its generated id.
func (r *PostgresRepository) Create(ctx context.Context, subtask *models.Subtask) (*models.Subtask, error) {

	query :=
		`INSERT INTO subtasks (name, is_completed, due_date, task_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		subtask.Name, subtask.IsCompleted, subtask.DueDate, subtask.TaskID).Scan(&subtask.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return subtask, nil
}

// ListByTask returns all subtasks of the task, completed or not, in stable
// id order.
func (r *PostgresRepository) ListByTask(ctx context.Context, taskID int64) ([]*models.Subtask, error) {
	query := taskScoped(`SELECT `+subtaskColumns+` FROM subtasks`) + ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Subtask
	for rows.Next() {
		var item models.Subtask
		if err := rows.Scan(
			&item.ID, &item.Name, &item.IsCompleted, &item.DueDate, &item.TaskID,
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

// GetByID fetches one subtask of the given task.
func (r *PostgresRepository) GetByID(ctx context.Context, taskID, id int64) (*models.Subtask, error) {
	query := taskScoped(`SELECT `+subtaskColumns+` FROM subtasks`) + ` AND id = $2`

	subtask := &models.Subtask{}
	err := r.db.QueryRowContext(ctx, query, taskID, id).Scan(
		&subtask.ID, &subtask.Name, &subtask.IsCompleted, &subtask.DueDate, &subtask.TaskID,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return subtask, nil
}

// Update writes all mutable columns of the subtask.
func (r *PostgresRepository) Update(ctx context.Context, subtask *models.Subtask) error {
	query := taskScoped(
		`UPDATE subtasks
		 SET name = $3, is_completed = $4, due_date = $5`,
	) + ` AND id = $2`

	res, err := r.db.ExecContext(ctx, query,
		subtask.TaskID, subtask.ID,
		subtask.Name, subtask.IsCompleted, subtask.DueDate)
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

// Delete removes one subtask of the given task.
func (r *PostgresRepository) Delete(ctx context.Context, taskID, id int64) error {
	query := taskScoped(`DELETE FROM subtasks`) + ` AND id = $2`

	res, err := r.db.ExecContext(ctx, query, taskID, id)
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
