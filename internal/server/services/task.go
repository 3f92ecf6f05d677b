package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskvault/internal/common"
	"github.com/dmitrijs2005/taskvault/internal/dbx"
	"github.com/dmitrijs2005/taskvault/internal/server/models"
	"github.com/dmitrijs2005/taskvault/internal/server/repositories/repomanager"
)

// Not-found sentinels for the two stages of subtask ownership checks.
// Both match common.ErrorNotFound; callers that need to tell a missing
// parent from a missing subtask match these directly.
var (
	ErrTaskNotFound    = fmt.Errorf("task: %w", common.ErrorNotFound)
	ErrSubtaskNotFound = fmt.Errorf("subtask: %w", common.ErrorNotFound)
)

// TaskView bundles a task with its eagerly loaded subtasks, matching the
// shape task reads are serialized in.
type TaskView struct {
	Task     *models.Task
	Subtasks []*models.Subtask
}

// TaskService implements the owner-scoped task and subtask operations.
// Every subtask operation verifies that the parent task belongs to the
// caller before touching subtask rows, so a foreign task and a missing task
// report the same common.ErrorNotFound.
type TaskService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewTaskService constructs a TaskService over the given repositories.
func NewTaskService(db *sql.DB, m repomanager.RepositoryManager) *TaskService {
	return &TaskService{db: db, repomanager: m}
}

// nowUTC is a seam for tests that pin the start-date default.
var nowUTC = func() time.Time { return time.Now().UTC() }

// CreateTask stores a new task for the owner. A zero StartDate defaults to
// the current time.
func (s *TaskService) CreateTask(ctx context.Context, ownerID int64, task *models.Task) (*TaskView, error) {
	task.UserID = ownerID
	if task.StartDate.IsZero() {
		task.StartDate = nowUTC()
	}

	repo := s.repomanager.Tasks(s.db)
	created, err := repo.Create(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("error creating task: %w", err)
	}

	// a fresh task has no subtasks yet
	return &TaskView{Task: created, Subtasks: []*models.Subtask{}}, nil
}

// ListTasks returns all tasks of the owner with their subtasks.
func (s *TaskService) ListTasks(ctx context.Context, ownerID int64) ([]*TaskView, error) {
	taskRepo := s.repomanager.Tasks(s.db)
	subtaskRepo := s.repomanager.Subtasks(s.db)

	list, err := taskRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error listing tasks: %w", err)
	}

	result := make([]*TaskView, 0, len(list))
	for _, task := range list {
		subs, err := subtaskRepo.ListByTask(ctx, task.ID)
		if err != nil {
			return nil, fmt.Errorf("error listing subtasks: %w", err)
		}
		if subs == nil {
			subs = []*models.Subtask{}
		}
		result = append(result, &TaskView{Task: task, Subtasks: subs})
	}
	return result, nil
}

// GetTask returns one task of the owner with its subtasks.
func (s *TaskService) GetTask(ctx context.Context, ownerID, taskID int64) (*TaskView, error) {
	task, err := s.repomanager.Tasks(s.db).GetByID(ctx, ownerID, taskID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	subs, err := s.repomanager.Subtasks(s.db).ListByTask(ctx, task.ID)
	if err != nil {
		return nil, fmt.Errorf("error listing subtasks: %w", err)
	}
	if subs == nil {
		subs = []*models.Subtask{}
	}
	return &TaskView{Task: task, Subtasks: subs}, nil
}

// UpdateTask applies a partial update to one task of the owner. The
// read-merge-write runs in a single transaction.
func (s *TaskService) UpdateTask(ctx context.Context, ownerID, taskID int64, patch *models.TaskPatch) (*TaskView, error) {
	var updated *models.Task

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.Tasks(tx)

		task, err := repoTx.GetByID(ctx, ownerID, taskID)
		if err != nil {
			return err
		}

		patch.Apply(task)

		if err := repoTx.Update(ctx, task); err != nil {
			return err
		}

		updated = task
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("error updating task: %w", err)
	}

	subs, err := s.repomanager.Subtasks(s.db).ListByTask(ctx, updated.ID)
	if err != nil {
		return nil, fmt.Errorf("error listing subtasks: %w", err)
	}
	if subs == nil {
		subs = []*models.Subtask{}
	}
	return &TaskView{Task: updated, Subtasks: subs}, nil
}

// DeleteTask removes one task of the owner and returns its last state,
// including the subtasks that were cascade-deleted with it.
func (s *TaskService) DeleteTask(ctx context.Context, ownerID, taskID int64) (*TaskView, error) {
	var view *TaskView

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		taskRepoTx := s.repomanager.Tasks(tx)
		subtaskRepoTx := s.repomanager.Subtasks(tx)

		task, err := taskRepoTx.GetByID(ctx, ownerID, taskID)
		if err != nil {
			return err
		}

		subs, err := subtaskRepoTx.ListByTask(ctx, task.ID)
		if err != nil {
			return err
		}
		if subs == nil {
			subs = []*models.Subtask{}
		}

		if err := taskRepoTx.Delete(ctx, ownerID, taskID); err != nil {
			return err
		}

		view = &TaskView{Task: task, Subtasks: subs}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("error deleting task: %w", err)
	}

	return view, nil
}

// CreateSubtask stores a new subtask under one of the owner's tasks.
// IsCompleted starts at 0 unless the caller provides a value.
func (s *TaskService) CreateSubtask(ctx context.Context, ownerID, taskID int64, subtask *models.Subtask) (*models.Subtask, error) {
	if _, err := s.repomanager.Tasks(s.db).GetByID(ctx, ownerID, taskID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	subtask.TaskID = taskID
	created, err := s.repomanager.Subtasks(s.db).Create(ctx, subtask)
	if err != nil {
		return nil, fmt.Errorf("error creating subtask: %w", err)
	}
	return created, nil
}

// ListSubtasks returns all subtasks of one of the owner's tasks.
func (s *TaskService) ListSubtasks(ctx context.Context, ownerID, taskID int64) ([]*models.Subtask, error) {
	if _, err := s.repomanager.Tasks(s.db).GetByID(ctx, ownerID, taskID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	subs, err := s.repomanager.Subtasks(s.db).ListByTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("error listing subtasks: %w", err)
	}
	if subs == nil {
		subs = []*models.Subtask{}
	}
	return subs, nil
}

// UpdateSubtask applies a partial update to a subtask after the two-stage
// ownership check. The read-merge-write runs in a single transaction.
func (s *TaskService) UpdateSubtask(ctx context.Context, ownerID, taskID, subtaskID int64, patch *models.SubtaskPatch) (*models.Subtask, error) {
	var updated *models.Subtask

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Tasks(tx).GetByID(ctx, ownerID, taskID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return ErrTaskNotFound
			}
			return err
		}

		repoTx := s.repomanager.Subtasks(tx)
		subtask, err := repoTx.GetByID(ctx, taskID, subtaskID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return ErrSubtaskNotFound
			}
			return err
		}

		patch.Apply(subtask)

		if err := repoTx.Update(ctx, subtask); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return ErrSubtaskNotFound
			}
			return err
		}

		updated = subtask
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error updating subtask: %w", err)
	}

	return updated, nil
}

// DeleteSubtask removes a subtask after the two-stage ownership check and
// returns its last state.
func (s *TaskService) DeleteSubtask(ctx context.Context, ownerID, taskID, subtaskID int64) (*models.Subtask, error) {
	var deleted *models.Subtask

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Tasks(tx).GetByID(ctx, ownerID, taskID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return ErrTaskNotFound
			}
			return err
		}

		repoTx := s.repomanager.Subtasks(tx)
		subtask, err := repoTx.GetByID(ctx, taskID, subtaskID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return ErrSubtaskNotFound
			}
			return err
		}

		if err := repoTx.Delete(ctx, taskID, subtaskID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return ErrSubtaskNotFound
			}
			return err
		}

		deleted = subtask
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error deleting subtask: %w", err)
	}

	return deleted, nil
}
