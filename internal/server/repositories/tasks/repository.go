package tasks

import (
	"context"

	"github.com/dmitrijs2005/taskvault/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.Task, error)
	GetByID(ctx context.Context, ownerID, id int64) (*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, ownerID, id int64) error
}
