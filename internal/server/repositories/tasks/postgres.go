// Package tasks provides the PostgreSQL-backed repository for task rows.
//
// Every statement is owner-scoped through a single predicate helper, so a
// task owned by a different user is indistinguishable from a missing one:
// both surface as common.ErrorNotFound.
package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taskvault/internal/common"
	"github.com/dmitrijs2005/taskvault/internal/dbx"
	"github.com/dmitrijs2005/taskvault/internal/server/models"
)

const taskColumns = "id, name, result, finish_time, finish_criteria, resources, start_date, user_id"

// ownerScoped appends the ownership predicate to a statement. The owner id is
// always bound as $1; further predicates continue from $2.
func ownerScoped(query string) string {
	return query + " WHERE user_id = $1"
}

// PostgresRepository implements task storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a task and fills in its generated id.
func (r *PostgresRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {

	query :=
		`INSERT INTO tasks (name, result, finish_time, finish_criteria, resources, start_date, user_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		task.Name, task.Result, task.FinishTime, task.FinishCriteria,
		task.Resources, task.StartDate, task.UserID).Scan(&task.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return task, nil
}

// ListByOwner returns the owner's tasks in stable id order.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Task, error) {
	query := ownerScoped(`SELECT `+taskColumns+` FROM tasks`) + ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Task
	for rows.Next() {
		var item models.Task
		if err := rows.Scan(
			&item.ID, &item.Name, &item.Result, &item.FinishTime,
			&item.FinishCriteria, &item.Resources, &item.StartDate, &item.UserID,
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

// GetByID fetches one task of the given owner.
func (r *PostgresRepository) GetByID(ctx context.Context, ownerID, id int64) (*models.Task, error) {
	query := ownerScoped(`SELECT `+taskColumns+` FROM tasks`) + ` AND id = $2`

	task := &models.Task{}
	err := r.db.QueryRowContext(ctx, query, ownerID, id).Scan(
		&task.ID, &task.Name, &task.Result, &task.FinishTime,
		&task.FinishCriteria, &task.Resources, &task.StartDate, &task.UserID,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return task, nil
}

// Update writes all mutable columns of the task. The merge of partial updates
// happens before this call; the statement itself is unconditional.
func (r *PostgresRepository) Update(ctx context.Context, task *models.Task) error {
	query := ownerScoped(
		`UPDATE tasks
		 SET name = $3, result = $4, finish_time = $5, finish_criteria = $6, resources = $7, start_date = $8`,
	) + ` AND id = $2`

	res, err := r.db.ExecContext(ctx, query,
		task.UserID, task.ID,
		task.Name, task.Result, task.FinishTime, task.FinishCriteria,
		task.Resources, task.StartDate)
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

// Delete removes one task of the given owner. Subtasks go with it via the
// ON DELETE CASCADE foreign key.
func (r *PostgresRepository) Delete(ctx context.Context, ownerID, id int64) error {
	query := ownerScoped(`DELETE FROM tasks`) + ` AND id = $2`

	res, err := r.db.ExecContext(ctx, query, ownerID, id)
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
