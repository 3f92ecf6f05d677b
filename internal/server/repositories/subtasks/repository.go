package subtasks

import (
	"context"

	"github.com/dmitrijs2005/taskvault/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, subtask *models.Subtask) (*models.Subtask, error)
	ListByTask(ctx context.Context, taskID int64) ([]*models.Subtask, error)
	GetByID(ctx context.Context, taskID, id int64) (*models.Subtask, error)
	Update(ctx context.Context, subtask *models.Subtask) error
	Delete(ctx context.Context, taskID, id int64) error
}
