package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/taskvault/internal/dbx"
	"github.com/dmitrijs2005/taskvault/internal/server/repositories/subtasks"
	"github.com/dmitrijs2005/taskvault/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/taskvault/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Tasks(db dbx.DBTX) tasks.Repository
	Subtasks(db dbx.DBTX) subtasks.Repository
}
